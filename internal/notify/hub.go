// Package notify delivers committed campaign events to in-process
// observers. The repository outbox is the source of truth: Publish only
// wakes subscribers up, and each subscription reads the outbox from its own
// cursor, so events reach every subscriber in commit order with nothing
// skipped even when publishers race.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"vaquinha/internal/core/domain"
	"vaquinha/internal/core/port"
)

// ErrHubClosed is returned by Subscribe after Close.
var ErrHubClosed = errors.New("notification hub closed")

// Source reads committed events; port.CampaignRepository satisfies it.
type Source interface {
	EventsSince(ctx context.Context, since int64, limit int) ([]domain.Event, error)
	LastSeq(ctx context.Context) (int64, error)
}

// SubscribeOptions selects what a subscription receives.
type SubscribeOptions struct {
	// From is the first sequence number of interest. Zero means only
	// events committed after subscribing.
	From int64
	// CampaignID restricts delivery to one campaign when set.
	CampaignID domain.CampaignID
	// Types restricts delivery to the listed event types when non-empty.
	Types []domain.EventType
}

// Hub fans committed events out to subscriptions.
type Hub struct {
	source    Source
	batchSize int
	buffer    int
	logger    *slog.Logger

	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	head   int64
	closed bool
}

var _ port.EventPublisher = (*Hub)(nil)

// NewHub returns a hub reading from source. buffer is the capacity of each
// subscription channel.
func NewHub(source Source, buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		source:    source,
		batchSize: 256,
		buffer:    buffer,
		logger:    logger,
		subs:      make(map[*Subscription]struct{}),
	}
}

// Publish records the newest sequence number and wakes every subscription.
// It never blocks on slow consumers.
func (h *Hub) Publish(_ context.Context, events []domain.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	for _, e := range events {
		if e.Seq > h.head {
			h.head = e.Seq
		}
	}
	for s := range h.subs {
		s.wake()
	}
	return nil
}

// Subscribe starts a subscription. The returned handle must be cancelled
// when the consumer is done; cancelling ctx does the same.
func (h *Hub) Subscribe(ctx context.Context, opts SubscribeOptions) (*Subscription, error) {
	from := opts.From
	if from <= 0 {
		last, err := h.source.LastSeq(ctx)
		if err != nil {
			return nil, err
		}
		from = last + 1
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	subCtx, cancel := context.WithCancel(ctx)
	s := &Subscription{
		hub:    h,
		opts:   opts,
		cursor: NewCursor(from),
		ch:     make(chan domain.Event, h.buffer),
		signal: make(chan struct{}, 1),
		ctx:    subCtx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	s.wake()
	go s.run()
	return s, nil
}

// Close cancels every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*Subscription, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()
	for _, s := range subs {
		s.Cancel()
	}
}

// Head returns the highest sequence number published so far.
func (h *Hub) Head() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.head
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

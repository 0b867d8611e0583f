package notify

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"vaquinha/internal/core/domain"
)

// Subscription is a handle on a stream of committed events. Events arrive
// on C in commit order, each at most once per subscription.
type Subscription struct {
	hub    *Hub
	opts   SubscribeOptions
	ch     chan domain.Event
	signal chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	cursor Cursor
	err    error
}

// C returns the delivery channel. It is closed when the subscription ends.
func (s *Subscription) C() <-chan domain.Event { return s.ch }

// Cursor returns the last sequence number the subscription has scanned.
// A consumer that resubscribes from Cursor().Next() misses nothing.
func (s *Subscription) Cursor() Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Err returns the reason the subscription ended, if it failed.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Cancel stops the subscription and waits for its goroutine to exit.
func (s *Subscription) Cancel() {
	s.cancel()
	<-s.done
}

// Done is closed once the subscription has stopped.
func (s *Subscription) Done() <-chan struct{} { return s.done }

func (s *Subscription) wake() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *Subscription) run() {
	defer func() {
		s.hub.remove(s)
		close(s.ch)
		close(s.done)
	}()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.signal:
		}
		if err := s.drain(); err != nil {
			if !errors.Is(err, context.Canceled) {
				s.mu.Lock()
				s.err = err
				s.mu.Unlock()
				s.hub.logger.Error("subscription read error",
					slog.Int64("cursor", s.Cursor().Last),
					slog.Any("error", err))
			}
			return
		}
	}
}

// drain reads the outbox from the cursor until it is exhausted.
func (s *Subscription) drain() error {
	for {
		next := s.Cursor().Next()
		events, err := s.hub.source.EventsSince(s.ctx, next, s.hub.batchSize)
		if err != nil {
			return err
		}
		for _, e := range events {
			cur := s.Cursor()
			if !cur.Accept(e.Seq) {
				continue
			}
			if s.matches(e) {
				select {
				case s.ch <- e:
				case <-s.ctx.Done():
					return s.ctx.Err()
				}
			}
			s.mu.Lock()
			s.cursor = cur
			s.mu.Unlock()
		}
		if len(events) < s.hub.batchSize {
			return nil
		}
	}
}

func (s *Subscription) matches(e domain.Event) bool {
	if s.opts.CampaignID != "" && e.CampaignID != s.opts.CampaignID {
		return false
	}
	if len(s.opts.Types) > 0 && !slices.Contains(s.opts.Types, e.Type) {
		return false
	}
	return true
}

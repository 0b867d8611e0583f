// Package memory provides an in-process implementation of
// port.CampaignRepository. Each campaign has its own lock, so transitions of
// one campaign are totally ordered while different campaigns proceed in
// parallel. A single log lock assigns the global commit sequence.
package memory

import (
	"context"
	"fmt"
	"sync"

	"vaquinha/internal/core/domain"
	"vaquinha/internal/core/port"
)

type entry struct {
	mu sync.Mutex
	c  domain.Campaign
}

// CampaignRepository implements port.CampaignRepository in memory.
type CampaignRepository struct {
	mu        sync.RWMutex
	campaigns map[domain.CampaignID]*entry
	order     []domain.CampaignID

	logMu sync.RWMutex
	log   []domain.Event
	seq   int64
}

var _ port.CampaignRepository = (*CampaignRepository)(nil)

// NewCampaignRepository returns an empty repository.
func NewCampaignRepository() *CampaignRepository {
	return &CampaignRepository{campaigns: make(map[domain.CampaignID]*entry)}
}

// Create appends c to the registry and commits its events.
func (r *CampaignRepository) Create(ctx context.Context, c *domain.Campaign, events []domain.Event) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[c.ID]; ok {
		return nil, fmt.Errorf("campaign %s already exists", c.ID)
	}
	c.Position = int64(len(r.order)) + 1
	r.campaigns[c.ID] = &entry{c: *c}
	r.order = append(r.order, c.ID)
	return r.append(events), nil
}

// List returns ids in registry order.
func (r *CampaignRepository) List(ctx context.Context) ([]domain.CampaignID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]domain.CampaignID, len(r.order))
	copy(ids, r.order)
	return ids, nil
}

// ListCampaigns returns snapshots in registry order.
func (r *CampaignRepository) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	ids, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Campaign, 0, len(ids))
	for _, id := range ids {
		c, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

// Get returns a snapshot taken under the campaign lock.
func (r *CampaignRepository) Get(ctx context.Context, id domain.CampaignID) (*domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := r.lookup(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.mu.Lock()
	c := e.c
	e.mu.Unlock()
	return &c, nil
}

// Update applies fn to a copy of the campaign while holding its lock and
// swaps the copy in only when fn succeeds.
func (r *CampaignRepository) Update(ctx context.Context, id domain.CampaignID, fn port.MutateFunc) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e, ok := r.lookup(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.c
	events, err := fn(&next)
	if err != nil {
		return nil, err
	}
	committed := r.append(events)
	e.c = next
	return committed, nil
}

// EventsSince returns committed events with Seq >= since.
func (r *CampaignRepository) EventsSince(ctx context.Context, since int64, limit int) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.logMu.RLock()
	defer r.logMu.RUnlock()
	// Seq n lives at index n-1.
	start := since - 1
	if start < 0 {
		start = 0
	}
	if start >= int64(len(r.log)) {
		return []domain.Event{}, nil
	}
	tail := r.log[start:]
	if limit > 0 && len(tail) > limit {
		tail = tail[:limit]
	}
	out := make([]domain.Event, len(tail))
	copy(out, tail)
	return out, nil
}

// LastSeq returns the highest committed sequence number.
func (r *CampaignRepository) LastSeq(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.logMu.RLock()
	defer r.logMu.RUnlock()
	return r.seq, nil
}

func (r *CampaignRepository) lookup(id domain.CampaignID) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.campaigns[id]
	return e, ok
}

func (r *CampaignRepository) append(events []domain.Event) []domain.Event {
	r.logMu.Lock()
	defer r.logMu.Unlock()
	out := make([]domain.Event, len(events))
	for i, ev := range events {
		r.seq++
		ev.Seq = r.seq
		r.log = append(r.log, ev)
		out[i] = ev
	}
	return out
}

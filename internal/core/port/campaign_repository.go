package port

import (
	"context"

	"vaquinha/internal/core/domain"
)

// MutateFunc applies a state transition to a locked copy of a campaign and
// returns the events it produced. Returning an error discards the copy.
type MutateFunc func(c *domain.Campaign) ([]domain.Event, error)

// CampaignRepository defines the persistence layer for the ledger. It is an
// outbound port in hexagonal architecture. Implementations must be
// concurrency-safe: mutations of one campaign are serialized and each one
// commits the campaign row and its events atomically.
type CampaignRepository interface {
	// Create stores a new campaign at the end of the registry together with
	// its creation events. It assigns Position on c and returns the events
	// with their commit sequence numbers.
	Create(ctx context.Context, c *domain.Campaign, events []domain.Event) ([]domain.Event, error)
	// List returns every campaign id in registry order, oldest first.
	List(ctx context.Context) ([]domain.CampaignID, error)
	// ListCampaigns returns snapshots of every campaign in registry order.
	ListCampaigns(ctx context.Context) ([]domain.Campaign, error)
	// Get returns a snapshot of the campaign or domain.ErrNotFound.
	Get(ctx context.Context, id domain.CampaignID) (*domain.Campaign, error)
	// Update runs fn with serializable isolation against the campaign and
	// persists the result. Either the campaign and all returned events are
	// committed, or nothing is.
	Update(ctx context.Context, id domain.CampaignID, fn MutateFunc) ([]domain.Event, error)
	// EventsSince returns committed events with Seq >= since in commit
	// order. A limit <= 0 means no limit.
	EventsSince(ctx context.Context, since int64, limit int) ([]domain.Event, error)
	// LastSeq returns the highest committed sequence number, zero when the
	// outbox is empty.
	LastSeq(ctx context.Context) (int64, error)
}

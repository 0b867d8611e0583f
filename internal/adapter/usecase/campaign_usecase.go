package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vaquinha/internal/core/domain"
	"vaquinha/internal/core/port"
)

const (
	defaultEventsLimit = 100
	maxEventsLimit     = 1000
)

// CampaignUseCase provides the registry and campaign operations. It
// orchestrates the domain state machine and the repository to implement
// port.CampaignUseCase, and hands committed events to the publisher.
type CampaignUseCase struct {
	repo      port.CampaignRepository
	publisher port.EventPublisher
	logger    *slog.Logger

	now   func() time.Time
	newID func() domain.CampaignID
}

// Option customises a CampaignUseCase.
type Option func(*CampaignUseCase)

// WithClock overrides the time source used to stamp campaigns and events.
func WithClock(now func() time.Time) Option {
	return func(u *CampaignUseCase) { u.now = now }
}

// WithIDGenerator overrides how campaign ids are minted.
func WithIDGenerator(gen func() domain.CampaignID) Option {
	return func(u *CampaignUseCase) { u.newID = gen }
}

// NewCampaignUseCase creates a new usecase over repo. publisher may be nil,
// in which case events are only kept in the repository outbox.
func NewCampaignUseCase(repo port.CampaignRepository, publisher port.EventPublisher, logger *slog.Logger, opts ...Option) *CampaignUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	u := &CampaignUseCase{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() domain.CampaignID { return domain.CampaignID(uuid.NewString()) },
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Create validates the request, builds an open campaign and appends it to
// the registry.
func (u *CampaignUseCase) Create(ctx context.Context, req port.CreateCampaignReq) (*domain.Campaign, error) {
	c, created, err := domain.NewCampaign(u.newID(), req.Title, req.Description, req.Goal, req.Organizer, u.now())
	if err != nil {
		return nil, err
	}
	events, err := u.repo.Create(ctx, c, []domain.Event{created})
	if err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	u.logger.InfoContext(ctx, "campaign created",
		slog.String("campaign_id", c.ID.String()),
		slog.String("organizer", c.Organizer.String()),
		slog.String("goal", c.Goal.String()))
	u.publish(ctx, events)
	return c, nil
}

// List returns campaign ids in creation order.
func (u *CampaignUseCase) List(ctx context.Context) ([]domain.CampaignID, error) {
	return u.repo.List(ctx)
}

// ListCampaigns returns campaign snapshots in creation order.
func (u *CampaignUseCase) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	return u.repo.ListCampaigns(ctx)
}

// Get returns a campaign snapshot.
func (u *CampaignUseCase) Get(ctx context.Context, id domain.CampaignID) (*domain.Campaign, error) {
	return u.repo.Get(ctx, id)
}

// Balance returns the funds the campaign currently holds.
func (u *CampaignUseCase) Balance(ctx context.Context, id domain.CampaignID) (domain.Amount, error) {
	c, err := u.repo.Get(ctx, id)
	if err != nil {
		return domain.Amount{}, err
	}
	return c.Balance, nil
}

// Donate credits amount to the campaign. The repository serializes the
// transition so that at most one donation ever observes the goal crossing.
func (u *CampaignUseCase) Donate(ctx context.Context, id domain.CampaignID, donor domain.Identity, amount domain.Amount) (*domain.Receipt, error) {
	if donor.IsZero() {
		return nil, fmt.Errorf("%w: missing donor identity", domain.ErrUnauthorized)
	}
	var receipt domain.Receipt
	events, err := u.repo.Update(ctx, id, func(c *domain.Campaign) ([]domain.Event, error) {
		r, evs, err := c.Donate(amount, donor, u.now())
		if err != nil {
			return nil, err
		}
		receipt = r
		return evs, nil
	})
	if err != nil {
		return nil, err
	}
	receipt.Committed(events)
	u.logger.InfoContext(ctx, "donation received",
		slog.String("campaign_id", id.String()),
		slog.String("donor", donor.String()),
		slog.String("amount", amount.String()),
		slog.Int64("seq", receipt.Seq))
	if hasEvent(events, domain.EventGoalReached) {
		u.logger.InfoContext(ctx, "campaign goal reached",
			slog.String("campaign_id", id.String()),
			slog.String("total_raised", receipt.TotalRaised.String()))
	}
	u.publish(ctx, events)
	return &receipt, nil
}

// Withdraw transfers the balance to the organizer and closes the campaign.
func (u *CampaignUseCase) Withdraw(ctx context.Context, id domain.CampaignID, caller domain.Identity) (*domain.Receipt, error) {
	var receipt domain.Receipt
	events, err := u.repo.Update(ctx, id, func(c *domain.Campaign) ([]domain.Event, error) {
		r, evs, err := c.Withdraw(caller, u.now())
		if err != nil {
			return nil, err
		}
		receipt = r
		return evs, nil
	})
	if err != nil {
		return nil, err
	}
	receipt.Committed(events)
	u.logger.InfoContext(ctx, "campaign withdrawn",
		slog.String("campaign_id", id.String()),
		slog.String("organizer", caller.String()),
		slog.String("amount", receipt.Amount.String()),
		slog.Int64("seq", receipt.Seq))
	u.publish(ctx, events)
	return &receipt, nil
}

// Events returns committed events starting at since.
func (u *CampaignUseCase) Events(ctx context.Context, since int64, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = defaultEventsLimit
	}
	if limit > maxEventsLimit {
		limit = maxEventsLimit
	}
	if since < 0 {
		since = 0
	}
	return u.repo.EventsSince(ctx, since, limit)
}

// publish pushes committed events out. The transition is already durable,
// so a publishing failure is logged and consumers catch up from the outbox.
func (u *CampaignUseCase) publish(ctx context.Context, events []domain.Event) {
	if u.publisher == nil || len(events) == 0 {
		return
	}
	if err := u.publisher.Publish(context.WithoutCancel(ctx), events); err != nil {
		u.logger.WarnContext(ctx, "publish events error",
			slog.Int64("seq", events[len(events)-1].Seq),
			slog.Any("error", err))
	}
}

func hasEvent(events []domain.Event, t domain.EventType) bool {
	for _, e := range events {
		if e.Type == t {
			return true
		}
	}
	return false
}

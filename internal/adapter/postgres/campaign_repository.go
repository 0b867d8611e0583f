package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"vaquinha/internal/core/domain"
	"vaquinha/internal/core/port"
)

const (
	campaignColumns = `id::text, position, title, description, goal::text, unit, organizer,
        total_raised::text, balance::text, goal_reached, closed, donations,
        withdrawn_amount::text, created_at, updated_at`

	eventColumns = `seq, campaign_id::text, event_type, actor, amount::text, amount_unit,
        total_raised::text, goal::text, unit, occurred_at`

	// eventLogLock serializes sequence allocation with commit so that the
	// outbox is always read back in commit order.
	eventLogLock int64 = 0x76617175696e6861
)

// CampaignRepository implements port.CampaignRepository using pgxpool for
// PostgreSQL. Mutations run in serializable transactions and lock the
// campaign row with SELECT ... FOR UPDATE.
type CampaignRepository struct {
	pool       *pgxpool.Pool
	maxRetries int
}

var _ port.CampaignRepository = (*CampaignRepository)(nil)

// NewCampaignRepository returns a new repository instance. maxRetries bounds
// how many times a transaction aborted by a serialization failure is rerun.
func NewCampaignRepository(pool *pgxpool.Pool, maxRetries int) *CampaignRepository {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &CampaignRepository{pool: pool, maxRetries: maxRetries}
}

// Create inserts the campaign and its creation events in one transaction.
func (r *CampaignRepository) Create(ctx context.Context, c *domain.Campaign, events []domain.Event) (committed []domain.Event, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if err = tx.Commit(ctx); err != nil {
			committed = nil
		}
	}()

	err = tx.QueryRow(ctx, `INSERT INTO campaigns
    (id, title, description, goal, unit, organizer, total_raised, balance,
     goal_reached, closed, donations, withdrawn_amount, created_at, updated_at)
VALUES ($1, $2, $3, $4::numeric, $5, $6, $7::numeric, $8::numeric, $9, $10, $11, $12::numeric, $13, $14)
RETURNING position`,
		c.ID.String(), c.Title, c.Description, c.Goal.RawString(), string(c.Unit), c.Organizer.String(),
		c.TotalRaised.RawString(), c.Balance.RawString(), c.GoalReached, c.Closed, c.Donations,
		c.WithdrawnAmount.RawString(), c.CreatedAt, c.UpdatedAt,
	).Scan(&c.Position)
	if err != nil {
		return nil, fmt.Errorf("insert campaign: %w", err)
	}
	return insertEvents(ctx, tx, events)
}

// List returns every campaign id ordered by registry position.
func (r *CampaignRepository) List(ctx context.Context) ([]domain.CampaignID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id::text FROM campaigns ORDER BY position`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CampaignID, error) {
		var id string
		err := row.Scan(&id)
		return domain.CampaignID(id), err
	})
}

// ListCampaigns returns every campaign ordered by registry position.
func (r *CampaignRepository) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+campaignColumns+` FROM campaigns ORDER BY position`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Campaign, error) {
		c, err := scanCampaign(row)
		if err != nil {
			return domain.Campaign{}, err
		}
		return *c, nil
	})
}

// Get returns a campaign by id.
func (r *CampaignRepository) Get(ctx context.Context, id domain.CampaignID) (*domain.Campaign, error) {
	if _, err := uuid.Parse(id.String()); err != nil {
		return nil, domain.ErrNotFound
	}
	c, err := scanCampaign(r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id.String()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update locks the campaign row, applies fn and writes the new state and
// events back. Serialization failures are retried up to maxRetries times;
// fn may therefore run more than once but only one run is ever committed.
func (r *CampaignRepository) Update(ctx context.Context, id domain.CampaignID, fn port.MutateFunc) ([]domain.Event, error) {
	if _, err := uuid.Parse(id.String()); err != nil {
		return nil, domain.ErrNotFound
	}
	for attempt := 0; ; attempt++ {
		events, err := r.update(ctx, id, fn)
		if err == nil || attempt >= r.maxRetries || !retryable(err) {
			return events, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 10 * time.Millisecond):
		}
	}
}

func (r *CampaignRepository) update(ctx context.Context, id domain.CampaignID, fn port.MutateFunc) (committed []domain.Event, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if err = tx.Commit(ctx); err != nil {
			committed = nil
		}
	}()

	// lock campaign
	c, err := scanCampaign(tx.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, id.String()))
	if errors.Is(err, pgx.ErrNoRows) {
		err = domain.ErrNotFound
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	events, err := fn(c)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE campaigns SET
    total_raised = $2::numeric,
    balance = $3::numeric,
    goal_reached = $4,
    closed = $5,
    donations = $6,
    withdrawn_amount = $7::numeric,
    updated_at = $8
WHERE id = $1`,
		id.String(), c.TotalRaised.RawString(), c.Balance.RawString(), c.GoalReached, c.Closed,
		c.Donations, c.WithdrawnAmount.RawString(), c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update campaign: %w", err)
	}
	return insertEvents(ctx, tx, events)
}

// EventsSince returns committed events with seq >= since in commit order.
func (r *CampaignRepository) EventsSince(ctx context.Context, since int64, limit int) ([]domain.Event, error) {
	var lim *int64
	if limit > 0 {
		l := int64(limit)
		lim = &l
	}
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM campaign_events WHERE seq >= $1 ORDER BY seq LIMIT $2`, since, lim)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Event, error) {
		return scanEvent(row)
	})
}

// LastSeq returns the highest committed sequence number.
func (r *CampaignRepository) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(max(seq), 0) FROM campaign_events`).Scan(&seq)
	return seq, err
}

func insertEvents(ctx context.Context, tx pgx.Tx, events []domain.Event) ([]domain.Event, error) {
	if len(events) == 0 {
		return []domain.Event{}, nil
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, eventLogLock); err != nil {
		return nil, err
	}
	out := make([]domain.Event, len(events))
	for i, ev := range events {
		err := tx.QueryRow(ctx, `INSERT INTO campaign_events
    (campaign_id, event_type, actor, amount, amount_unit, total_raised, goal, unit, occurred_at)
VALUES ($1, $2, $3, $4::numeric, $5, $6::numeric, $7::numeric, $8, $9)
RETURNING seq`,
			ev.CampaignID.String(), string(ev.Type), ev.Actor.String(), ev.Amount.RawString(),
			string(ev.Amount.Unit()), ev.TotalRaised.RawString(), ev.Goal.RawString(), string(ev.Unit), ev.OccurredAt,
		).Scan(&ev.Seq)
		if err != nil {
			return nil, fmt.Errorf("insert event: %w", err)
		}
		out[i] = ev
	}
	return out, nil
}

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var (
		c                                     domain.Campaign
		id, unit, organizer                   string
		goal, totalRaised, balance, withdrawn string
	)
	err := row.Scan(&id, &c.Position, &c.Title, &c.Description, &goal, &unit, &organizer,
		&totalRaised, &balance, &c.GoalReached, &c.Closed, &c.Donations, &withdrawn,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ID = domain.CampaignID(id)
	c.Unit = domain.Unit(unit)
	c.Organizer = domain.Identity(organizer)
	if c.Goal, err = domain.ParseRaw(goal, c.Unit); err != nil {
		return nil, err
	}
	if c.TotalRaised, err = domain.ParseRaw(totalRaised, c.Unit); err != nil {
		return nil, err
	}
	if c.Balance, err = domain.ParseRaw(balance, c.Unit); err != nil {
		return nil, err
	}
	if c.WithdrawnAmount, err = domain.ParseRaw(withdrawn, c.Unit); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanEvent(row pgx.Row) (domain.Event, error) {
	var (
		ev                                    domain.Event
		campaignID, typ, actor, amtUnit, unit string
		amount, totalRaised, goal             string
	)
	err := row.Scan(&ev.Seq, &campaignID, &typ, &actor, &amount, &amtUnit, &totalRaised, &goal, &unit, &ev.OccurredAt)
	if err != nil {
		return domain.Event{}, err
	}
	ev.CampaignID = domain.CampaignID(campaignID)
	ev.Type = domain.EventType(typ)
	ev.Actor = domain.Identity(actor)
	ev.Unit = domain.Unit(unit)
	if ev.Amount, err = domain.ParseRaw(amount, domain.Unit(amtUnit)); err != nil {
		return domain.Event{}, err
	}
	if ev.TotalRaised, err = domain.ParseRaw(totalRaised, ev.Unit); err != nil {
		return domain.Event{}, err
	}
	if ev.Goal, err = domain.ParseRaw(goal, ev.Unit); err != nil {
		return domain.Event{}, err
	}
	return ev, nil
}

// retryable reports whether err is a serialization failure or deadlock that
// PostgreSQL expects the client to retry.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

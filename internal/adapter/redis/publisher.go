package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"vaquinha/internal/core/domain"
	"vaquinha/internal/core/port"
)

// Publisher appends committed campaign events to a Redis stream so that
// out-of-process consumers can follow them. Each entry carries event_seq;
// consumers discard entries below their subscription point.
type Publisher struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *slog.Logger
}

var _ port.EventPublisher = (*Publisher)(nil)

// NewPublisher returns a publisher writing to stream. maxLen caps the
// stream length approximately; zero leaves it unbounded.
func NewPublisher(client *redis.Client, stream string, maxLen int64, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client: client,
		stream: stream,
		maxLen: maxLen,
		logger: logger,
	}
}

// Publish writes events in one pipeline, in the order given.
func (p *Publisher) Publish(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	pipe := p.client.Pipeline()
	for _, e := range events {
		pipe.XAdd(ctx, &redis.XAddArgs{
			Stream: p.stream,
			MaxLen: p.maxLen,
			Approx: p.maxLen > 0,
			Values: Fields(e),
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish events: %w", err)
	}
	p.logger.DebugContext(ctx, "published events",
		slog.String("stream", p.stream),
		slog.Int("count", len(events)),
		slog.Int64("last_seq", events[len(events)-1].Seq))
	return nil
}

// Close closes the underlying client.
func (p *Publisher) Close() error {
	return p.client.Close()
}

// Fields flattens an event into stream entry values.
func Fields(e domain.Event) map[string]any {
	return map[string]any{
		"event_seq":    strconv.FormatInt(e.Seq, 10),
		"campaign_id":  e.CampaignID.String(),
		"event_type":   string(e.Type),
		"actor":        e.Actor.String(),
		"amount":       e.Amount.RawString(),
		"amount_unit":  string(e.Amount.Unit()),
		"total_raised": e.TotalRaised.RawString(),
		"goal":         e.Goal.RawString(),
		"unit":         string(e.Unit),
		"occurred_at":  e.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}

// ParseFields rebuilds an event from stream entry values written by
// Publish.
func ParseFields(values map[string]any) (domain.Event, error) {
	str := func(k string) string {
		v, _ := values[k].(string)
		return v
	}
	seq, err := strconv.ParseInt(str("event_seq"), 10, 64)
	if err != nil {
		return domain.Event{}, fmt.Errorf("parsing event_seq: %w", err)
	}
	unit := domain.Unit(str("unit"))
	ev := domain.Event{
		Seq:        seq,
		CampaignID: domain.CampaignID(str("campaign_id")),
		Type:       domain.EventType(str("event_type")),
		Actor:      domain.Identity(str("actor")),
		Unit:       unit,
	}
	if ev.Amount, err = domain.ParseRaw(str("amount"), domain.Unit(str("amount_unit"))); err != nil {
		return domain.Event{}, err
	}
	if ev.TotalRaised, err = domain.ParseRaw(str("total_raised"), unit); err != nil {
		return domain.Event{}, err
	}
	if ev.Goal, err = domain.ParseRaw(str("goal"), unit); err != nil {
		return domain.Event{}, err
	}
	if ev.OccurredAt, err = time.Parse(time.RFC3339Nano, str("occurred_at")); err != nil {
		return domain.Event{}, fmt.Errorf("parsing occurred_at: %w", err)
	}
	return ev, nil
}

package port

import (
	"context"
	"errors"

	"vaquinha/internal/core/domain"
)

// EventPublisher pushes committed events to observers. Delivery is
// at-least-once; consumers dedupe on Event.Seq.
type EventPublisher interface {
	Publish(ctx context.Context, events []domain.Event) error
}

// MultiPublisher fans events out to every publisher and joins their errors.
type MultiPublisher []EventPublisher

// Publish implements EventPublisher.
func (m MultiPublisher) Publish(ctx context.Context, events []domain.Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, events); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

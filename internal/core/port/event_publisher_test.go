package port_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"vaquinha/internal/core/domain"
	"vaquinha/internal/core/port"
	"vaquinha/internal/core/port/mocks"
)

// TestMultiPublisher ensures every publisher sees the events even when one fails.
func TestMultiPublisher(t *testing.T) {
	events := []domain.Event{{Seq: 1, Type: domain.EventCampaignCreated}}
	broken := errors.New("broken")

	first := mocks.NewMockEventPublisher(t)
	second := mocks.NewMockEventPublisher(t)
	first.EXPECT().Publish(mock.Anything, events).Return(broken)
	second.EXPECT().Publish(mock.Anything, events).Return(nil)

	err := port.MultiPublisher{first, nil, second}.Publish(context.Background(), events)
	if !errors.Is(err, broken) {
		t.Fatalf("expected joined error, got %v", err)
	}
}

package redis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaquinha/internal/core/domain"
)

func newTestReader() *Reader {
	return NewReader(nil, "events", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestReaderHandleSkipsUndecodableEntries(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msgs := []redis.XMessage{
		{ID: "1-0", Values: Fields(domain.Event{Seq: 1, Type: domain.EventCampaignCreated, OccurredAt: at})},
		{ID: "2-0", Values: map[string]any{"event_seq": "garbage"}},
		{ID: "3-0", Values: Fields(domain.Event{Seq: 2, Type: domain.EventDonationReceived, OccurredAt: at})},
	}

	var seen []int64
	last, err := newTestReader().handle(context.Background(), "0", msgs, func(e domain.Event) error {
		seen = append(seen, e.Seq)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "3-0", last)
	assert.Equal(t, []int64{1, 2}, seen)
}

func TestReaderHandleStopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	msgs := []redis.XMessage{
		{ID: "1-0", Values: Fields(domain.Event{Seq: 1, OccurredAt: time.Now()})},
		{ID: "2-0", Values: Fields(domain.Event{Seq: 2, OccurredAt: time.Now()})},
	}
	calls := 0
	last, err := newTestReader().handle(context.Background(), "0", msgs, func(domain.Event) error {
		calls++
		return stop
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, "1-0", last)
	assert.Equal(t, 1, calls)
}

func TestFollowReturnsOnCancel(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()
	r := NewReader(client, "events", slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Follow(ctx, "0", func(domain.Event) error { return nil })
	require.ErrorIs(t, err, context.Canceled)
}

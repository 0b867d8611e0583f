package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"vaquinha/internal/core/domain"
)

// Reader follows the stream written by Publisher.
type Reader struct {
	client *redis.Client
	stream string
	block  time.Duration
	logger *slog.Logger
}

// NewReader returns a reader over stream.
func NewReader(client *redis.Client, stream string, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{client: client, stream: stream, block: 5 * time.Second, logger: logger}
}

// Follow reads entries after lastID ("0" replays the whole stream, "$" only
// new entries) and hands each decoded event to fn in stream order. It runs
// until ctx is done or fn fails.
func (r *Reader) Follow(ctx context.Context, lastID string, fn func(domain.Event) error) error {
	for {
		res, err := r.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{r.stream, lastID},
			Block:   r.block,
			Count:   100,
		}).Result()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
		for _, s := range res {
			if lastID, err = r.handle(ctx, lastID, s.Messages, fn); err != nil {
				return err
			}
		}
	}
}

// handle decodes messages and returns the id of the last one consumed.
// Entries that do not decode are logged and skipped.
func (r *Reader) handle(ctx context.Context, lastID string, msgs []redis.XMessage, fn func(domain.Event) error) (string, error) {
	for _, msg := range msgs {
		lastID = msg.ID
		e, err := ParseFields(msg.Values)
		if err != nil {
			r.logger.WarnContext(ctx, "skipping stream entry",
				slog.String("stream", r.stream),
				slog.String("id", msg.ID),
				slog.Any("error", err))
			continue
		}
		if err = fn(e); err != nil {
			return lastID, err
		}
	}
	return lastID, nil
}

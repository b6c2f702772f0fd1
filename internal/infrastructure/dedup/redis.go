// Package dedup suppresses replayed webhook deliveries before they reach
// the reconcilers.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/mwhayford/rentledger/internal/application"
	"github.com/mwhayford/rentledger/internal/config"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "webhook:event:"

// RedisDedup is the fast path: a SET-with-TTL per processed event id. It can
// lose entries (eviction, restart), so it always sits in front of a durable
// store, never alone.
type RedisDedup struct {
	client *redis.Client
	ttl    time.Duration
}

var _ application.EventDedup = (*RedisDedup)(nil)

func NewRedisDedup(client *redis.Client, cfg config.RedisConfig) *RedisDedup {
	return &RedisDedup{client: client, ttl: cfg.DedupTTL}
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func (d *RedisDedup) AlreadyProcessed(ctx context.Context, eventID string) (bool, error) {
	n, err := d.client.Exists(ctx, keyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("redis dedup lookup: %w", err)
	}
	return n > 0, nil
}

func (d *RedisDedup) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	if err := d.client.Set(ctx, keyPrefix+eventID, eventType, d.ttl).Err(); err != nil {
		return fmt.Errorf("redis dedup mark: %w", err)
	}
	return nil
}

// Layered composes the Redis fast path with the durable postgres journal.
// A Redis miss falls through to the database; a Redis failure degrades to
// database-only rather than failing the webhook.
type Layered struct {
	fast    application.EventDedup
	durable application.EventDedup
}

var _ application.EventDedup = (*Layered)(nil)

func NewLayered(fast, durable application.EventDedup) *Layered {
	return &Layered{fast: fast, durable: durable}
}

func (l *Layered) AlreadyProcessed(ctx context.Context, eventID string) (bool, error) {
	if seen, err := l.fast.AlreadyProcessed(ctx, eventID); err == nil && seen {
		return true, nil
	}
	return l.durable.AlreadyProcessed(ctx, eventID)
}

func (l *Layered) MarkProcessed(ctx context.Context, eventID, eventType string) error {
	if err := l.durable.MarkProcessed(ctx, eventID, eventType); err != nil {
		return err
	}
	// Fast path is advisory; losing it only costs one extra DB lookup.
	_ = l.fast.MarkProcessed(ctx, eventID, eventType)
	return nil
}

// RecordFailure journals to the durable leg when it supports journaling.
func (l *Layered) RecordFailure(ctx context.Context, eventID, eventType, message string) error {
	if journal, ok := l.durable.(interface {
		RecordFailure(ctx context.Context, eventID, eventType, message string) error
	}); ok {
		return journal.RecordFailure(ctx, eventID, eventType, message)
	}
	return nil
}

// Package cache keeps recently validated sessions in Redis so the
// per-request token check does not always hit PostgreSQL. The TTL is kept
// short; it bounds how long a deactivated session can still validate from
// cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/niagakita/passless/internal/auth/entity"
	"github.com/niagakita/passless/internal/pkg/instrument"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefix = "auth:session:"

type Cache struct {
	client *redis.Client
	ttl    time.Duration
	ins    instrument.Instrumentation
}

func NewCache(client *redis.Client, ttl time.Duration, ins instrument.Instrumentation) *Cache {
	return &Cache{
		client: client,
		ttl:    ttl,
		ins:    ins,
	}
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("auth.outbound.cache").Start(ctx, name)
}

// Get returns the cached session, or (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, tokenHash string) (_ *entity.SessionUser, err error) {
	ctx, span := c.startSpan(ctx, "Get")
	defer span.End()

	raw, err := c.client.Get(ctx, keyPrefix+tokenHash).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var su entity.SessionUser
	if err := json.Unmarshal(raw, &su); err != nil {
		// stale or corrupt entry, treat as a miss
		return nil, nil
	}
	return &su, nil
}

func (c *Cache) Set(ctx context.Context, su entity.SessionUser) (err error) {
	ctx, span := c.startSpan(ctx, "Set")
	defer span.End()

	if c.ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(su)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, keyPrefix+su.TokenHash, raw, c.ttl).Err()
}

func (c *Cache) Delete(ctx context.Context, tokenHash string) (err error) {
	ctx, span := c.startSpan(ctx, "Delete")
	defer span.End()

	return c.client.Del(ctx, keyPrefix+tokenHash).Err()
}

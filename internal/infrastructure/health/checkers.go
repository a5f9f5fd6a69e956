package health

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/avatarctic/ai-career-assistant/internal/core/ports"
	infraDB "github.com/avatarctic/ai-career-assistant/internal/infrastructure/db"
)

type dbHealthChecker struct{ db *infraDB.Database }

func (d *dbHealthChecker) Name() string                    { return "database" }
func (d *dbHealthChecker) Check(ctx context.Context) error { return d.db.DB.PingContext(ctx) }

type redisHealthChecker struct{ client redis.UniversalClient }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }

type resetTokenStoreChecker struct {
	tokens ports.ResetTokenRepository
	store  string
}

func (t *resetTokenStoreChecker) Name() string { return "reset_tokens_" + t.store }

func (t *resetTokenStoreChecker) Check(ctx context.Context) error {
	if _, err := t.tokens.Count(ctx); err != nil {
		return fmt.Errorf("reset token store unreachable: %w", err)
	}
	return nil
}

// NewDBHealthChecker reports whether the account database answers a ping.
func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker { return &dbHealthChecker{db: db} }

// NewRedisHealthChecker reports whether the Redis instance answers a ping.
func NewRedisHealthChecker(client redis.UniversalClient) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}

// NewResetTokenStoreChecker reports whether the configured token backend can be read.
func NewResetTokenStoreChecker(tokens ports.ResetTokenRepository, store string) ports.HealthChecker {
	return &resetTokenStoreChecker{tokens: tokens, store: store}
}

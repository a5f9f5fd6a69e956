package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ai-career-assistant/internal/core/domain/reset"
	"github.com/avatarctic/ai-career-assistant/internal/core/ports"
)

const (
	// resetTokenPrefix prefixes Redis keys for password reset tokens.
	// It's a static prefix and not a credential; silence gosec G101 here.
	resetTokenPrefix = "app:reset_token" //nolint:gosec

	resetTokenScanBatch = 200
)

// ResetTokenRedisRepository stores one key per token and lets Redis expire it.
// Invalidation deletes the key with GETDEL, so only one caller can claim a token.
type ResetTokenRedisRepository struct {
	r      redis.Cmdable
	ttl    time.Duration
	now    func() time.Time
	logger *logrus.Logger
}

// Ensure ResetTokenRedisRepository implements ports.ResetTokenRepository
var _ ports.ResetTokenRepository = (*ResetTokenRedisRepository)(nil)

func NewResetTokenRedisRepository(r redis.Cmdable, logger *logrus.Logger) *ResetTokenRedisRepository {
	return NewResetTokenRedisRepositoryWithClock(r, time.Now, logger)
}

func NewResetTokenRedisRepositoryWithClock(r redis.Cmdable, now func() time.Time, logger *logrus.Logger) *ResetTokenRedisRepository {
	return &ResetTokenRedisRepository{r: r, ttl: reset.TokenTTL, now: now, logger: logger}
}

func (r *ResetTokenRedisRepository) keyByToken(token string) string {
	return fmt.Sprintf("%s:tok:%s", resetTokenPrefix, token)
}

func (r *ResetTokenRedisRepository) Store(ctx context.Context, token, email string) error {
	t := reset.NewToken(token, email, r.now(), r.ttl)
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal reset token: %w", err)
	}

	if err := r.r.Set(ctx, r.keyByToken(token), b, r.ttl).Err(); err != nil {
		if r.logger != nil {
			r.logger.WithField("email", email).WithError(err).Error("redis: failed to store reset token")
		}
		return fmt.Errorf("failed to store reset token in redis: %w", err)
	}
	return nil
}

func (r *ResetTokenRedisRepository) Verify(ctx context.Context, token string) (reset.VerifyResult, error) {
	b, err := r.r.Get(ctx, r.keyByToken(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return reset.VerifyResult{}, nil
		}
		return reset.VerifyResult{}, fmt.Errorf("failed to get reset token from redis: %w", err)
	}

	t, err := decodeResetToken(b)
	if err != nil {
		return reset.VerifyResult{}, err
	}
	if !t.IsValid(r.now()) {
		return reset.VerifyResult{}, nil
	}
	return reset.VerifyResult{Valid: true, Email: t.Email}, nil
}

func (r *ResetTokenRedisRepository) Invalidate(ctx context.Context, token string) (bool, error) {
	b, err := r.r.GetDel(ctx, r.keyByToken(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to consume reset token in redis: %w", err)
	}

	t, err := decodeResetToken(b)
	if err != nil {
		return false, err
	}
	return t.IsValid(r.now()), nil
}

// CleanupExpired is a no-op: Redis drops keys when their TTL elapses.
func (r *ResetTokenRedisRepository) CleanupExpired(ctx context.Context) (int, error) {
	return 0, nil
}

func (r *ResetTokenRedisRepository) List(ctx context.Context) ([]*reset.Token, error) {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []*reset.Token{}, nil
	}

	vals, err := r.r.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load reset tokens from redis: %w", err)
	}

	out := make([]*reset.Token, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			// expired between SCAN and MGET
			continue
		}
		t, err := decodeResetToken([]byte(s))
		if err != nil {
			if r.logger != nil {
				r.logger.WithError(err).Warn("redis: skipping undecodable reset token")
			}
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.Before(out[j].IssuedAt) })
	return out, nil
}

func (r *ResetTokenRedisRepository) Count(ctx context.Context) (int, error) {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (r *ResetTokenRedisRepository) scanKeys(ctx context.Context) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	match := resetTokenPrefix + ":tok:*"
	for {
		batch, next, err := r.r.Scan(ctx, cursor, match, resetTokenScanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan reset tokens: %w", err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func decodeResetToken(b []byte) (*reset.Token, error) {
	var t reset.Token
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reset token: %w", err)
	}
	return &t, nil
}

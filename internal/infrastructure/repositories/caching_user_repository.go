package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avatarctic/ai-career-assistant/internal/core/domain/user"
	"github.com/avatarctic/ai-career-assistant/internal/core/ports"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Utility helpers
func cacheSetSilently(c ports.Cache, ctx context.Context, key string, v any, ttl time.Duration) {
	if c == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.Set(ctx, key, b, ttl)
}

func cacheGet[T any](c ports.Cache, ctx context.Context, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	b, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false
	}
	return &v, true
}

// CachingUserRepository caches account lookups by email. Entries are also
// indexed by ID so a password change can evict them.
// Cached entries never carry the password hash (json:"-"), which the reset flow does not read.
type CachingUserRepository struct {
	inner ports.UserRepository
	cache ports.Cache
	ttl   time.Duration
	sf    singleflight.Group
}

func NewCachingUserRepository(inner ports.UserRepository, cache ports.Cache, ttl time.Duration) ports.UserRepository {
	return &CachingUserRepository{inner: inner, cache: cache, ttl: ttl}
}

// sharedLookupTimeout bounds a coalesced lookup that no single caller owns.
const sharedLookupTimeout = 5 * time.Second

func userIDKey(id uuid.UUID) string {
	return "user:id:" + id.String()
}

func userEmailKey(email string) string {
	return "user:email:" + email
}

// GetByEmail coalesces concurrent misses for the same address into one database
// query. The shared query is detached from any single caller's cancellation;
// each caller still stops waiting when its own context ends.
func (c *CachingUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	key := userEmailKey(email)
	if v, ok := cacheGet[user.User](c.cache, ctx, key); ok {
		return v, nil
	}
	detached := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(key, func() (any, error) {
		shared, cancel := context.WithTimeout(detached, sharedLookupTimeout)
		defer cancel()
		u, err := c.inner.GetByEmail(shared, email)
		if err != nil {
			return nil, err
		}
		cacheSetSilently(c.cache, shared, key, u, c.ttl)
		cacheSetSilently(c.cache, shared, userIDKey(u.ID), u, c.ttl)
		return u, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*user.User), nil
	}
}

func (c *CachingUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if err := c.inner.UpdatePassword(ctx, id, passwordHash); err != nil {
		return err
	}
	if c.cache != nil {
		if cached, ok := cacheGet[user.User](c.cache, ctx, userIDKey(id)); ok {
			_ = c.cache.Delete(ctx, userEmailKey(cached.Email))
		}
		_ = c.cache.Delete(ctx, userIDKey(id))
	}
	return nil
}

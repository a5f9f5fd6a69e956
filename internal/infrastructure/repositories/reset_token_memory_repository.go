package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ai-career-assistant/internal/core/domain/reset"
	"github.com/avatarctic/ai-career-assistant/internal/core/ports"
)

// ResetTokenMemoryRepository keeps reset tokens in a process-local map.
// Tokens do not survive a restart.
type ResetTokenMemoryRepository struct {
	mu     sync.RWMutex
	tokens map[string]*reset.Token
	ttl    time.Duration
	now    func() time.Time
	logger *logrus.Logger
}

// Ensure ResetTokenMemoryRepository implements ports.ResetTokenRepository
var _ ports.ResetTokenRepository = (*ResetTokenMemoryRepository)(nil)

func NewResetTokenMemoryRepository(logger *logrus.Logger) *ResetTokenMemoryRepository {
	return NewResetTokenMemoryRepositoryWithClock(reset.TokenTTL, time.Now, logger)
}

// NewResetTokenMemoryRepositoryWithClock allows tests to control the lifetime and the clock.
func NewResetTokenMemoryRepositoryWithClock(ttl time.Duration, now func() time.Time, logger *logrus.Logger) *ResetTokenMemoryRepository {
	return &ResetTokenMemoryRepository{
		tokens: make(map[string]*reset.Token),
		ttl:    ttl,
		now:    now,
		logger: logger,
	}
}

func (r *ResetTokenMemoryRepository) Store(ctx context.Context, token, email string) error {
	t := reset.NewToken(token, email, r.now(), r.ttl)

	r.mu.Lock()
	r.tokens[token] = t
	r.mu.Unlock()

	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"email": email, "expires_at": t.ExpiresAt}).Debug("memory: reset token stored")
	}
	return nil
}

func (r *ResetTokenMemoryRepository) Verify(ctx context.Context, token string) (reset.VerifyResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tokens[token]
	if !ok || !t.IsValid(r.now()) {
		return reset.VerifyResult{}, nil
	}
	return reset.VerifyResult{Valid: true, Email: t.Email}, nil
}

func (r *ResetTokenMemoryRepository) Invalidate(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[token]
	if !ok || !t.IsValid(r.now()) {
		return false, nil
	}
	t.Used = true
	return true, nil
}

func (r *ResetTokenMemoryRepository) CleanupExpired(ctx context.Context) (int, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, t := range r.tokens {
		if t.ExpiresAt.Before(now) {
			delete(r.tokens, key)
			removed++
		}
	}
	if removed > 0 && r.logger != nil {
		r.logger.WithField("removed", removed).Debug("memory: expired reset tokens removed")
	}
	return removed, nil
}

// List returns copies ordered by issue time so callers cannot mutate stored records.
func (r *ResetTokenMemoryRepository) List(ctx context.Context) ([]*reset.Token, error) {
	r.mu.RLock()
	out := make([]*reset.Token, 0, len(r.tokens))
	for _, t := range r.tokens {
		cp := *t
		out = append(out, &cp)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.Before(out[j].IssuedAt) })
	return out, nil
}

func (r *ResetTokenMemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens), nil
}

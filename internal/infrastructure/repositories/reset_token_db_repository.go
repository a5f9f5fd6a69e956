package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ai-career-assistant/internal/core/domain/reset"
	"github.com/avatarctic/ai-career-assistant/internal/core/ports"
	"github.com/avatarctic/ai-career-assistant/internal/infrastructure/db"
)

// ResetTokenDBRepository persists reset tokens in postgres so they survive restarts.
type ResetTokenDBRepository struct {
	db     *db.Database
	ttl    time.Duration
	now    func() time.Time
	logger *logrus.Logger
}

// Ensure ResetTokenDBRepository implements ports.ResetTokenRepository
var _ ports.ResetTokenRepository = (*ResetTokenDBRepository)(nil)

// NewResetTokenDBRepository creates a new reset token repository
func NewResetTokenDBRepository(database *db.Database, logger *logrus.Logger) *ResetTokenDBRepository {
	return NewResetTokenDBRepositoryWithClock(database, time.Now, logger)
}

func NewResetTokenDBRepositoryWithClock(database *db.Database, now func() time.Time, logger *logrus.Logger) *ResetTokenDBRepository {
	return &ResetTokenDBRepository{db: database, ttl: reset.TokenTTL, now: now, logger: logger}
}

func (r *ResetTokenDBRepository) Store(ctx context.Context, token, email string) error {
	t := reset.NewToken(token, email, r.now(), r.ttl)
	query := `
		INSERT INTO password_reset_tokens (token, email, issued_at, expires_at, used)
		VALUES ($1, $2, $3, $4, FALSE)`

	if _, err := r.db.DB.ExecContext(ctx, query, t.Token, t.Email, t.IssuedAt, t.ExpiresAt); err != nil {
		if r.logger != nil {
			r.logger.WithField("email", email).WithError(err).Error("db: failed to store reset token")
		}
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

func (r *ResetTokenDBRepository) Verify(ctx context.Context, token string) (reset.VerifyResult, error) {
	var t reset.Token
	query := `
		SELECT token, email, issued_at, expires_at, used
		FROM password_reset_tokens
		WHERE token = $1`

	if err := r.db.DB.GetContext(ctx, &t, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return reset.VerifyResult{}, nil
		}
		return reset.VerifyResult{}, fmt.Errorf("failed to get reset token: %w", err)
	}

	if !t.IsValid(r.now()) {
		return reset.VerifyResult{}, nil
	}
	return reset.VerifyResult{Valid: true, Email: t.Email}, nil
}

// Invalidate flips used in a single conditional UPDATE; the row count tells
// whether this call won the claim.
func (r *ResetTokenDBRepository) Invalidate(ctx context.Context, token string) (bool, error) {
	query := `
		UPDATE password_reset_tokens
		SET used = TRUE, used_at = $2
		WHERE token = $1 AND used = FALSE AND expires_at > $2`

	result, err := r.db.DB.ExecContext(ctx, query, token, r.now())
	if err != nil {
		return false, fmt.Errorf("failed to invalidate reset token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

func (r *ResetTokenDBRepository) CleanupExpired(ctx context.Context) (int, error) {
	query := `DELETE FROM password_reset_tokens WHERE expires_at < $1`

	result, err := r.db.DB.ExecContext(ctx, query, r.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired reset tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 && r.logger != nil {
		r.logger.WithField("removed", rowsAffected).Debug("db: expired reset tokens removed")
	}
	return int(rowsAffected), nil
}

func (r *ResetTokenDBRepository) List(ctx context.Context) ([]*reset.Token, error) {
	tokens := []*reset.Token{}
	query := `
		SELECT token, email, issued_at, expires_at, used
		FROM password_reset_tokens
		ORDER BY issued_at`

	if err := r.db.DB.SelectContext(ctx, &tokens, query); err != nil {
		return nil, fmt.Errorf("failed to list reset tokens: %w", err)
	}
	return tokens, nil
}

func (r *ResetTokenDBRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.DB.GetContext(ctx, &count, `SELECT COUNT(*) FROM password_reset_tokens`); err != nil {
		return 0, fmt.Errorf("failed to count reset tokens: %w", err)
	}
	return count, nil
}

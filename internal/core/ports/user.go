package ports

import (
	"context"

	"github.com/avatarctic/ai-career-assistant/internal/core/domain/user"
	"github.com/google/uuid"
)

// UserRepository is the slice of the account store the reset flow depends on.
// Lookups return user.ErrNotFound (possibly wrapped) when no account matches.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

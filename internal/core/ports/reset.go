package ports

import (
	"context"

	"github.com/avatarctic/ai-career-assistant/internal/core/domain/reset"
)

// ResetTokenRepository is the authoritative store for password reset tokens.
// Implementations MUST be safe for concurrent use.
type ResetTokenRepository interface {
	// Store inserts an unused token for email expiring reset.TokenTTL from now.
	Store(ctx context.Context, token, email string) error
	// Verify is a read-only validity check. Absent, expired and used tokens
	// all yield Valid=false without an error.
	Verify(ctx context.Context, token string) (reset.VerifyResult, error)
	// Invalidate marks the token used. It is idempotent; claimed is true only
	// for the single call that moved a valid token to used.
	Invalidate(ctx context.Context, token string) (claimed bool, err error)
	// CleanupExpired removes tokens past their expiry and returns how many were removed.
	CleanupExpired(ctx context.Context) (int, error)
	List(ctx context.Context) ([]*reset.Token, error)
	Count(ctx context.Context) (int, error)
}

// PasswordResetService orchestrates the forgot-password and reset-password operations.
type PasswordResetService interface {
	RequestReset(ctx context.Context, req *reset.ForgotPasswordRequest, meta reset.RequestMeta) error
	ConfirmReset(ctx context.Context, req *reset.ResetPasswordRequest, meta reset.RequestMeta) error
}

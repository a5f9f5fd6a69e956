package reset

import (
	"errors"
	"strings"
	"time"
)

// TokenTTL is the fixed validity window of a reset token.
const TokenTTL = 15 * time.Minute

// GenericRequestMessage is returned for every well-formed forgot-password request,
// whether or not an account exists for the address.
const GenericRequestMessage = "If an account with that email exists, a password reset link has been sent."

// CompletedMessage is returned after a successful password reset.
const CompletedMessage = "Password has been reset successfully."

var (
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrMissingFields         = errors.New("token and password are required")
	ErrInvalidPassword       = errors.New("password does not meet requirements")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")
	ErrUserNotFound          = errors.New("user not found")
)

// Token is a single-use password reset credential bound to an email address.
type Token struct {
	Token     string    `json:"token" db:"token"`
	Email     string    `json:"email" db:"email"`
	IssuedAt  time.Time `json:"issued_at" db:"issued_at"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	Used      bool      `json:"used" db:"used"`
}

// NewToken builds an unused token issued at now. The email is stored lower-cased.
func NewToken(token, email string, now time.Time, ttl time.Duration) *Token {
	return &Token{
		Token:     token,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether now is at or past the expiry instant.
func (t *Token) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsValid checks that the token is neither used nor expired.
func (t *Token) IsValid(now time.Time) bool {
	return !t.Used && !t.IsExpired(now)
}

// VerifyResult is the outcome of a read-only token check.
type VerifyResult struct {
	Valid bool   `json:"valid"`
	Email string `json:"email,omitempty"`
}

// ForgotPasswordRequest is the body of POST /forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=320"`
}

// ResetPasswordRequest is the body of POST /reset-password.
// Fields are checked by the service so that missing values map to a single error.
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// RequestMeta carries client details used for auditing and rate limiting.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

// Response is the uniform success payload of both reset endpoints.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DebugSnapshot is returned by the diagnostic tokens endpoint.
type DebugSnapshot struct {
	TokenCount      int      `json:"tokenCount"`
	TokensCleanedUp int      `json:"tokensCleanedUp"`
	Tokens          []*Token `json:"tokens"`
}

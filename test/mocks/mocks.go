package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/avatarctic/ai-career-assistant/internal/core/domain/audit"
	"github.com/avatarctic/ai-career-assistant/internal/core/domain/reset"
	"github.com/avatarctic/ai-career-assistant/internal/core/domain/user"
	"github.com/google/uuid"
)

// UserRepository mock
type UserRepositoryMock struct {
	GetByEmailFn     func(ctx context.Context, email string) (*user.User, error)
	UpdatePasswordFn func(ctx context.Context, id uuid.UUID, passwordHash string) error
}

func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	return nil, user.ErrNotFound
}
func (m *UserRepositoryMock) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if m.UpdatePasswordFn != nil {
		return m.UpdatePasswordFn(ctx, id, passwordHash)
	}
	return nil
}

// ResetTokenRepositoryMock is a lightweight mock for ResetTokenRepository
type ResetTokenRepositoryMock struct {
	StoreFn          func(ctx context.Context, token, email string) error
	VerifyFn         func(ctx context.Context, token string) (reset.VerifyResult, error)
	InvalidateFn     func(ctx context.Context, token string) (bool, error)
	CleanupExpiredFn func(ctx context.Context) (int, error)
	ListFn           func(ctx context.Context) ([]*reset.Token, error)
	CountFn          func(ctx context.Context) (int, error)
}

func (m *ResetTokenRepositoryMock) Store(ctx context.Context, token, email string) error {
	if m.StoreFn != nil {
		return m.StoreFn(ctx, token, email)
	}
	return nil
}
func (m *ResetTokenRepositoryMock) Verify(ctx context.Context, token string) (reset.VerifyResult, error) {
	if m.VerifyFn != nil {
		return m.VerifyFn(ctx, token)
	}
	return reset.VerifyResult{}, nil
}
func (m *ResetTokenRepositoryMock) Invalidate(ctx context.Context, token string) (bool, error) {
	if m.InvalidateFn != nil {
		return m.InvalidateFn(ctx, token)
	}
	return false, nil
}
func (m *ResetTokenRepositoryMock) CleanupExpired(ctx context.Context) (int, error) {
	if m.CleanupExpiredFn != nil {
		return m.CleanupExpiredFn(ctx)
	}
	return 0, nil
}
func (m *ResetTokenRepositoryMock) List(ctx context.Context) ([]*reset.Token, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return []*reset.Token{}, nil
}
func (m *ResetTokenRepositoryMock) Count(ctx context.Context) (int, error) {
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}
	return 0, nil
}

// PasswordResetServiceMock implements ports.PasswordResetService
type PasswordResetServiceMock struct {
	RequestResetFn func(ctx context.Context, req *reset.ForgotPasswordRequest, meta reset.RequestMeta) error
	ConfirmResetFn func(ctx context.Context, req *reset.ResetPasswordRequest, meta reset.RequestMeta) error
}

func (m *PasswordResetServiceMock) RequestReset(ctx context.Context, req *reset.ForgotPasswordRequest, meta reset.RequestMeta) error {
	if m.RequestResetFn != nil {
		return m.RequestResetFn(ctx, req, meta)
	}
	return nil
}
func (m *PasswordResetServiceMock) ConfirmReset(ctx context.Context, req *reset.ResetPasswordRequest, meta reset.RequestMeta) error {
	if m.ConfirmResetFn != nil {
		return m.ConfirmResetFn(ctx, req, meta)
	}
	return nil
}

// SentResetEmail records one call to MailDispatcherMock.
type SentResetEmail struct {
	Email    string
	ResetURL string
}

// MailDispatcherMock records enqueued emails; it accepts everything unless EnqueueFn says otherwise.
type MailDispatcherMock struct {
	EnqueueFn func(email, resetURL string) bool

	mu   sync.Mutex
	sent []SentResetEmail
}

func (m *MailDispatcherMock) EnqueuePasswordReset(email, resetURL string) bool {
	m.mu.Lock()
	m.sent = append(m.sent, SentResetEmail{Email: email, ResetURL: resetURL})
	m.mu.Unlock()
	if m.EnqueueFn != nil {
		return m.EnqueueFn(email, resetURL)
	}
	return true
}

func (m *MailDispatcherMock) Sent() []SentResetEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentResetEmail(nil), m.sent...)
}

// EmailServiceMock implements ports.EmailService
type EmailServiceMock struct {
	SendPasswordResetEmailFn func(ctx context.Context, email, resetURL string) error
}

func (m *EmailServiceMock) SendPasswordResetEmail(ctx context.Context, email, resetURL string) error {
	if m.SendPasswordResetEmailFn != nil {
		return m.SendPasswordResetEmailFn(ctx, email, resetURL)
	}
	return nil
}

// EmailSenderMock implements ports.EmailSender
type EmailSenderMock struct {
	SendFn func(ctx context.Context, to, subject, htmlBody string) error
}

func (m *EmailSenderMock) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m.SendFn != nil {
		return m.SendFn(ctx, to, subject, htmlBody)
	}
	return nil
}

// AuditServiceMock implements ports.AuditService and keeps every request it receives.
type AuditServiceMock struct {
	LogActionFn func(ctx context.Context, req *audit.CreateAuditLogRequest) error

	mu      sync.Mutex
	entries []*audit.CreateAuditLogRequest
}

func (m *AuditServiceMock) LogAction(ctx context.Context, req *audit.CreateAuditLogRequest) error {
	m.mu.Lock()
	m.entries = append(m.entries, req)
	m.mu.Unlock()
	if m.LogActionFn != nil {
		return m.LogActionFn(ctx, req)
	}
	return nil
}

func (m *AuditServiceMock) Entries() []*audit.CreateAuditLogRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*audit.CreateAuditLogRequest(nil), m.entries...)
}

// RateLimiterServiceMock implements ports.RateLimiterService
type RateLimiterServiceMock struct {
	AllowFn func(ctx context.Context, key string) (bool, int, int, time.Time, error)
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, key string) (bool, int, int, time.Time, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, key)
	}
	return true, 1, 1, time.Now(), nil
}

// RateLimitRepositoryMock implements ports.RateLimitRepository
type RateLimitRepositoryMock struct {
	IncrementWindowFn func(ctx context.Context, key string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)
}

func (m *RateLimitRepositoryMock) IncrementWindow(ctx context.Context, key string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	if m.IncrementWindowFn != nil {
		return m.IncrementWindowFn(ctx, key, window, keyPrefix, ttl)
	}
	return 1, time.Now().Truncate(window), nil
}

// HealthCheckerMock implements ports.HealthChecker
type HealthCheckerMock struct {
	NameValue string
	CheckFn   func(ctx context.Context) error
}

func (m *HealthCheckerMock) Name() string { return m.NameValue }
func (m *HealthCheckerMock) Check(ctx context.Context) error {
	if m.CheckFn != nil {
		return m.CheckFn(ctx)
	}
	return nil
}

// MemoryCache is an in-process ports.Cache for tests; TTLs are ignored.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string][]byte)}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok, nil
}
func (c *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

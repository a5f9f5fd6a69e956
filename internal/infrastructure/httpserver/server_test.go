package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/ai-career-assistant/internal/application/services"
	"github.com/avatarctic/ai-career-assistant/internal/core/domain/reset"
	"github.com/avatarctic/ai-career-assistant/internal/core/domain/user"
	"github.com/avatarctic/ai-career-assistant/internal/core/ports"
	"github.com/avatarctic/ai-career-assistant/internal/infrastructure/httpserver"
	"github.com/avatarctic/ai-career-assistant/internal/infrastructure/repositories"
	"github.com/avatarctic/ai-career-assistant/test/mocks"
)

const debugSecret = "test-debug-secret"

type testEnv struct {
	server *httpserver.Server
	tokens *repositories.ResetTokenMemoryRepository
	mailer *mocks.MailDispatcherMock
	users  *mocks.UserRepositoryMock
}

func newTestEnv(t *testing.T, cfg *httpserver.ServerConfig, limiter ports.RateLimiterService) *testEnv {
	t.Helper()
	account := &user.User{ID: uuid.New(), Email: "user@x.com", IsActive: true}
	users := &mocks.UserRepositoryMock{
		GetByEmailFn: func(ctx context.Context, email string) (*user.User, error) {
			if email == account.Email {
				return account, nil
			}
			return nil, user.ErrNotFound
		},
	}
	tokens := repositories.NewResetTokenMemoryRepository(nil)
	mailer := &mocks.MailDispatcherMock{}
	svc := services.NewPasswordResetService(tokens, users, mailer, nil, "https://careers.example.com", nil)

	if cfg == nil {
		cfg = &httpserver.ServerConfig{AllowedOrigins: []string{"*"}}
	}
	srv := httpserver.NewServer(cfg, nil, httpserver.ServerDeps{
		PasswordResetService: svc,
		ResetTokens:          tokens,
		RateLimiterService:   limiter,
	})
	return &testEnv{server: srv, tokens: tokens, mailer: mailer, users: users}
}

func (e *testEnv) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	return e.doFrom("", method, path, body, headers)
}

// doFrom sends the request as if it arrived from remoteAddr (httptest's default when empty).
func (e *testEnv) doFrom(remoteAddr, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.server.Echo().ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message
}

func TestForgotPassword_ResponseDoesNotRevealAccount(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	known := env.do(http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"user@x.com"}`, nil)
	unknown := env.do(http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"nobody@x.com"}`, nil)

	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())

	var resp reset.Response
	require.NoError(t, json.Unmarshal(known.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, reset.GenericRequestMessage, resp.Message)

	count, err := env.tokens.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, env.mailer.Sent(), 1)
}

func TestForgotPassword_InvalidEmail(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	for _, body := range []string{`{"email":"not-an-email"}`, `{}`, `{"email":""}`} {
		rec := env.do(http.MethodPost, "/api/v1/auth/forgot-password", body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, reset.ErrInvalidEmail.Error(), errorMessage(t, rec))
	}

	rec := env.do(http.MethodPost, "/api/v1/auth/forgot-password", `{"email":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForgotPassword_RateLimited(t *testing.T) {
	var gotKey string
	limiter := &mocks.RateLimiterServiceMock{AllowFn: func(ctx context.Context, key string) (bool, int, int, time.Time, error) {
		gotKey = key
		return false, 0, 5, time.Unix(1700000000, 0), nil
	}}
	env := newTestEnv(t, nil, limiter)

	rec := env.doFrom("198.51.100.4:40000", http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"user@x.com"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "198.51.100.4", gotKey)
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Empty(t, env.mailer.Sent())
}

// countingLimiter allows a fixed number of requests per key.
func countingLimiter(perKey int) (*mocks.RateLimiterServiceMock, *sync.Map) {
	seen := &sync.Map{}
	limiter := &mocks.RateLimiterServiceMock{AllowFn: func(ctx context.Context, key string) (bool, int, int, time.Time, error) {
		v, _ := seen.LoadOrStore(key, new(int32))
		n := int(atomic.AddInt32(v.(*int32), 1))
		return n <= perKey, max(perKey-n, 0), perKey, time.Now().Add(time.Minute), nil
	}}
	return limiter, seen
}

func keysOf(m *sync.Map) []string {
	var keys []string
	m.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	return keys
}

func TestForgotPassword_ForwardingHeadersDoNotChangeLimiterKey(t *testing.T) {
	limiter, seen := countingLimiter(5)
	env := newTestEnv(t, nil, limiter)

	ok := 0
	for i := 0; i < 20; i++ {
		rec := env.doFrom("198.51.100.4:40000", http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"user@x.com"}`, map[string]string{
			"X-Forwarded-For": fmt.Sprintf("10.0.0.%d", i),
			"X-Real-IP":       fmt.Sprintf("10.1.0.%d", i),
		})
		if rec.Code == http.StatusOK {
			ok++
		}
	}

	assert.Equal(t, 5, ok)
	assert.Equal(t, []string{"198.51.100.4"}, keysOf(seen))
	assert.Len(t, env.mailer.Sent(), 5)
}

func TestForgotPassword_TrustedProxyForwardsClientIP(t *testing.T) {
	_, proxyNet, err := net.ParseCIDR("192.0.2.0/24")
	require.NoError(t, err)
	limiter, seen := countingLimiter(5)
	env := newTestEnv(t, &httpserver.ServerConfig{TrustedProxies: []*net.IPNet{proxyNet}}, limiter)

	env.doFrom("192.0.2.10:443", http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"user@x.com"}`,
		map[string]string{"X-Forwarded-For": "203.0.113.9"})
	assert.Equal(t, []string{"203.0.113.9"}, keysOf(seen))

	// A peer outside the trusted range cannot name someone else.
	limiter2, seen2 := countingLimiter(5)
	env2 := newTestEnv(t, &httpserver.ServerConfig{TrustedProxies: []*net.IPNet{proxyNet}}, limiter2)
	env2.doFrom("198.51.100.4:40000", http.MethodPost, "/api/v1/auth/forgot-password", `{"email":"user@x.com"}`,
		map[string]string{"X-Forwarded-For": "203.0.113.9"})
	assert.Equal(t, []string{"198.51.100.4"}, keysOf(seen2))
}

func TestResetPassword_StatusMapping(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	ctx := context.Background()
	require.NoError(t, env.tokens.Store(ctx, "good-token", "user@x.com"))
	require.NoError(t, env.tokens.Store(ctx, "orphan-token", "gone@x.com"))

	cases := []struct {
		name string
		body string
		code int
	}{
		{"missing token", `{"password":"NewPassw0rd"}`, http.StatusBadRequest},
		{"missing password", `{"token":"good-token"}`, http.StatusBadRequest},
		{"weak password", `{"token":"good-token","password":"weak"}`, http.StatusBadRequest},
		{"unknown token", `{"token":"nope","password":"NewPassw0rd"}`, http.StatusBadRequest},
		{"account gone", `{"token":"orphan-token","password":"NewPassw0rd"}`, http.StatusNotFound},
		{"success", `{"token":"good-token","password":"NewPassw0rd"}`, http.StatusOK},
		{"replay", `{"token":"good-token","password":"NewPassw0rd"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := env.do(http.MethodPost, "/api/v1/auth/reset-password", tc.body, nil)
		assert.Equal(t, tc.code, rec.Code, tc.name)
	}

	rec := env.do(http.MethodPost, "/api/v1/auth/reset-password", `{"token":"nope","password":"NewPassw0rd"}`, nil)
	assert.Equal(t, reset.ErrInvalidOrExpiredToken.Error(), errorMessage(t, rec))
}

func TestResetPassword_InternalErrorIsGeneric(t *testing.T) {
	svc := &mocks.PasswordResetServiceMock{ConfirmResetFn: func(ctx context.Context, req *reset.ResetPasswordRequest, meta reset.RequestMeta) error {
		return errors.New("pq: connection refused to 10.0.0.3")
	}}
	srv := httpserver.NewServer(&httpserver.ServerConfig{}, nil, httpserver.ServerDeps{PasswordResetService: svc})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/reset-password", strings.NewReader(`{"token":"t","password":"NewPassw0rd"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", errorMessage(t, rec))
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}

func TestDebugTokens_DisabledByDefault(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(http.MethodGet, "/api/v1/debug/tokens", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDebugTokens_RequiresAdminToken(t *testing.T) {
	env := newTestEnv(t, &httpserver.ServerConfig{DebugEndpoints: true, DebugJWTSecret: debugSecret}, nil)
	require.NoError(t, env.tokens.Store(context.Background(), "tok", "user@x.com"))

	rec := env.do(http.MethodGet, "/api/v1/debug/tokens", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/debug/tokens", "", map[string]string{"Authorization": "Bearer " + signToken(t, debugSecret, "user")})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/debug/tokens", "", map[string]string{"Authorization": "Bearer " + signToken(t, "wrong-secret", "admin")})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/debug/tokens", "", map[string]string{"Authorization": "Bearer " + signToken(t, debugSecret, "admin")})
	require.Equal(t, http.StatusOK, rec.Code)

	var snap reset.DebugSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, 1, snap.TokenCount)
	assert.Zero(t, snap.TokensCleanedUp)
	require.Len(t, snap.Tokens, 1)
	assert.Equal(t, "user@x.com", snap.Tokens[0].Email)
}

func TestHealth_ReportsDependencies(t *testing.T) {
	srv := httpserver.NewServer(&httpserver.ServerConfig{}, nil, httpserver.ServerDeps{
		HealthCheckers: []ports.HealthChecker{
			&mocks.HealthCheckerMock{NameValue: "database"},
			&mocks.HealthCheckerMock{NameValue: "redis", CheckFn: func(ctx context.Context) error { return errors.New("down") }},
		},
	})
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "healthy", body.Dependencies["database"])
	assert.Equal(t, "unhealthy", body.Dependencies["redis"])
}

func signToken(t *testing.T, secret, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "ops",
		"role": role,
		"exp":  time.Now().Add(time.Minute).Unix(),
	})
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

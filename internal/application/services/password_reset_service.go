package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ai-career-assistant/internal/core/domain/audit"
	"github.com/avatarctic/ai-career-assistant/internal/core/domain/reset"
	"github.com/avatarctic/ai-career-assistant/internal/core/domain/user"
	"github.com/avatarctic/ai-career-assistant/internal/core/ports"
	"github.com/avatarctic/ai-career-assistant/internal/utils"
)

var resetRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "password_reset_requests_total",
		Help: "Forgot-password and reset-password calls by outcome",
	},
	[]string{"outcome"},
)

func init() {
	prometheus.MustRegister(resetRequestsTotal)
}

const (
	outcomeRequestSent         = "request_sent"
	outcomeRequestNoAccount    = "request_no_account"
	outcomeRequestInvalidEmail = "request_invalid_email"
	outcomeRequestError        = "request_error"
	outcomeResetCompleted      = "reset_completed"
	outcomeResetRejected       = "reset_rejected"
	outcomeResetUserNotFound   = "reset_user_not_found"
	outcomeResetError          = "reset_error"
)

// PasswordResetService drives the forgot-password and reset-password flows.
// It never reveals through its return values whether an account exists for a
// requested address.
type PasswordResetService struct {
	tokens  ports.ResetTokenRepository
	users   ports.UserRepository
	mailer  ports.MailDispatcher
	audit   ports.AuditService
	baseURL string
	logger  *logrus.Logger

	newToken func() (string, error)
}

var _ ports.PasswordResetService = (*PasswordResetService)(nil)

func NewPasswordResetService(
	tokens ports.ResetTokenRepository,
	users ports.UserRepository,
	mailer ports.MailDispatcher,
	auditService ports.AuditService,
	baseURL string,
	logger *logrus.Logger,
) *PasswordResetService {
	return &PasswordResetService{
		tokens:  tokens,
		users:   users,
		mailer:  mailer,
		audit:   auditService,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		newToken: func() (string, error) {
			return utils.GenerateSecureToken(utils.ResetTokenBytes)
		},
	}
}

// ResetURL builds the absolute link mailed to the account holder.
func (s *PasswordResetService) ResetURL(token string) string {
	q := url.Values{}
	q.Set("token", token)
	return s.baseURL + "/reset-password?" + q.Encode()
}

// RequestReset issues a token and queues the reset email when an account exists
// for req.Email. Apart from malformed input it always returns nil.
func (s *PasswordResetService) RequestReset(ctx context.Context, req *reset.ForgotPasswordRequest, meta reset.RequestMeta) error {
	var email string
	if req != nil {
		email = utils.NormalizeEmail(req.Email)
	}
	if !utils.IsValidEmail(email) {
		resetRequestsTotal.WithLabelValues(outcomeRequestInvalidEmail).Inc()
		return reset.ErrInvalidEmail
	}

	account, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			resetRequestsTotal.WithLabelValues(outcomeRequestNoAccount).Inc()
			if s.logger != nil {
				s.logger.WithField("ip", meta.IPAddress).Debug("password reset requested for unknown email")
			}
		} else {
			resetRequestsTotal.WithLabelValues(outcomeRequestError).Inc()
			if s.logger != nil {
				s.logger.WithField("ip", meta.IPAddress).WithError(err).Error("password reset: account lookup failed")
			}
		}
		return nil
	}

	token, err := s.newToken()
	if err != nil {
		resetRequestsTotal.WithLabelValues(outcomeRequestError).Inc()
		if s.logger != nil {
			s.logger.WithField("user_id", account.ID).WithError(err).Error("password reset: failed to generate token")
		}
		return nil
	}

	if err := s.tokens.Store(ctx, token, email); err != nil {
		resetRequestsTotal.WithLabelValues(outcomeRequestError).Inc()
		if s.logger != nil {
			s.logger.WithField("user_id", account.ID).WithError(err).Error("password reset: failed to store token")
		}
		return nil
	}

	if !s.mailer.EnqueuePasswordReset(email, s.ResetURL(token)) {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"user_id": account.ID, "token_hash": utils.HashToken(token)}).Warn("password reset: email not queued")
		}
	}

	resetRequestsTotal.WithLabelValues(outcomeRequestSent).Inc()
	s.logAudit(ctx, account.ID, audit.ActionPasswordResetRequested, meta, map[string]any{
		"token_hash": utils.HashToken(token),
	})
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": account.ID, "token_hash": utils.HashToken(token)}).Info("password reset token issued")
	}
	return nil
}

// ConfirmReset replaces the account password if req.Token is valid. The token is
// claimed before the new credential is written so concurrent submissions of the
// same token commit at most once.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, req *reset.ResetPasswordRequest, meta reset.RequestMeta) error {
	if req == nil || strings.TrimSpace(req.Token) == "" || req.Password == "" {
		resetRequestsTotal.WithLabelValues(outcomeResetRejected).Inc()
		return reset.ErrMissingFields
	}
	if err := utils.ValidatePasswordStrength(req.Password); err != nil {
		resetRequestsTotal.WithLabelValues(outcomeResetRejected).Inc()
		return fmt.Errorf("%w: %w", reset.ErrInvalidPassword, err)
	}

	tokenHash := utils.HashToken(req.Token)

	result, err := s.tokens.Verify(ctx, req.Token)
	if err != nil {
		resetRequestsTotal.WithLabelValues(outcomeResetError).Inc()
		return fmt.Errorf("failed to verify reset token: %w", err)
	}
	if !result.Valid {
		resetRequestsTotal.WithLabelValues(outcomeResetRejected).Inc()
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"token_hash": tokenHash, "ip": meta.IPAddress}).Info("password reset rejected: invalid or expired token")
		}
		return reset.ErrInvalidOrExpiredToken
	}

	account, err := s.users.GetByEmail(ctx, result.Email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			resetRequestsTotal.WithLabelValues(outcomeResetUserNotFound).Inc()
			if s.logger != nil {
				s.logger.WithField("token_hash", tokenHash).Warn("password reset: token bound to missing account")
			}
			return reset.ErrUserNotFound
		}
		resetRequestsTotal.WithLabelValues(outcomeResetError).Inc()
		return fmt.Errorf("failed to resolve account: %w", err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		resetRequestsTotal.WithLabelValues(outcomeResetError).Inc()
		return err
	}

	claimed, err := s.tokens.Invalidate(ctx, req.Token)
	if err != nil {
		resetRequestsTotal.WithLabelValues(outcomeResetError).Inc()
		return fmt.Errorf("failed to invalidate reset token: %w", err)
	}
	if !claimed {
		resetRequestsTotal.WithLabelValues(outcomeResetRejected).Inc()
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"token_hash": tokenHash, "user_id": account.ID}).Warn("password reset rejected: token already claimed")
		}
		return reset.ErrInvalidOrExpiredToken
	}

	// The token is burned from here on; a failed write requires a new reset request.
	if err := s.users.UpdatePassword(ctx, account.ID, hash); err != nil {
		resetRequestsTotal.WithLabelValues(outcomeResetError).Inc()
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"token_hash": tokenHash, "user_id": account.ID}).WithError(err).Error("password reset: failed to persist new password")
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	resetRequestsTotal.WithLabelValues(outcomeResetCompleted).Inc()
	s.logAudit(ctx, account.ID, audit.ActionPasswordResetCompleted, meta, nil)
	if s.logger != nil {
		s.logger.WithField("user_id", account.ID).Info("password reset completed")
	}
	return nil
}

func (s *PasswordResetService) logAudit(ctx context.Context, userID uuid.UUID, action audit.AuditAction, meta reset.RequestMeta, details map[string]any) {
	if s.audit == nil {
		return
	}
	req := &audit.CreateAuditLogRequest{
		UserID:    &userID,
		Action:    action,
		Resource:  audit.ResourceUser,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if len(details) > 0 {
		req.Details = details
	}
	if err := s.audit.LogAction(ctx, req); err != nil && s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": userID, "action": action}).WithError(err).Warn("password reset: audit log failed")
	}
}

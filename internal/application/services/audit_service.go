package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ai-career-assistant/internal/core/domain/audit"
	"github.com/avatarctic/ai-career-assistant/internal/core/ports"
)

type AuditService struct {
	repo   ports.AuditRepository
	logger *logrus.Logger
	now    func() time.Time
}

func NewAuditService(repo ports.AuditRepository, logger *logrus.Logger) ports.AuditService {
	return &AuditService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *AuditService) LogAction(ctx context.Context, req *audit.CreateAuditLogRequest) error {
	auditLog := &audit.AuditLog{
		UserID:    req.UserID,
		Action:    string(req.Action),
		Timestamp: s.now(),
		Resource:  string(req.Resource),
		Details:   req.Details,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
	}

	if err := s.repo.Create(ctx, auditLog); err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"user_id": req.UserID, "action": req.Action, "resource": req.Resource}).WithError(err).Error("failed to persist audit log")
		}
		return err
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"user_id": req.UserID, "action": req.Action, "resource": req.Resource}).Debug("audit log persisted")
	}
	return nil
}

// LogAuditService writes audit events to the application log. It is used when
// no database is configured.
type LogAuditService struct {
	logger *logrus.Logger
}

func NewLogAuditService(logger *logrus.Logger) ports.AuditService {
	return &LogAuditService{logger: logger}
}

func (s *LogAuditService) LogAction(ctx context.Context, req *audit.CreateAuditLogRequest) error {
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"user_id":    req.UserID,
			"action":     req.Action,
			"resource":   req.Resource,
			"ip_address": req.IPAddress,
			"user_agent": req.UserAgent,
		}).Info("audit")
	}
	return nil
}

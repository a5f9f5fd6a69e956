package email

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ai-career-assistant/configs"
	"github.com/avatarctic/ai-career-assistant/internal/core/ports"
)

// NewSender builds the transport named by cfg.Provider.
func NewSender(ctx context.Context, cfg *configs.EmailConfig, logger *logrus.Logger) (ports.EmailSender, error) {
	switch cfg.Provider {
	case "sendgrid":
		return NewSendGridSender(cfg.SendGridAPIKey, cfg.FromName, cfg.FromEmail, logger), nil
	case "smtp":
		return &SMTPSender{
			Host:   cfg.SMTPHost,
			Port:   cfg.SMTPPort,
			User:   cfg.SMTPUser,
			Pass:   cfg.SMTPPassword,
			From:   cfg.FromEmail,
			UseTLS: cfg.SMTPUseTLS,
		}, nil
	case "ses":
		awsCfg, err := LoadAWSConfig(ctx, cfg.SESRegion, cfg.SESAccessKey, cfg.SESSecretKey)
		if err != nil {
			return nil, err
		}
		return NewSESSender(awsCfg, cfg.FromEmail), nil
	case "log", "":
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

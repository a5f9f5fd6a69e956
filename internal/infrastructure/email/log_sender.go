package email

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender writes messages to the log instead of delivering them.
// Used in development when no provider is configured.
type LogSender struct {
	logger *logrus.Logger
}

func NewLogSender(logger *logrus.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
			"body":    htmlBody,
		}).Info("email (log provider): not delivered")
	}
	return nil
}

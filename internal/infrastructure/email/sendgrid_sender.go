package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

// SendGridSender delivers mail through the SendGrid v3 API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
	logger    *logrus.Logger
}

func NewSendGridSender(apiKey, fromName, fromEmail string, logger *logrus.Logger) *SendGridSender {
	return &SendGridSender{
		client:    sendgrid.NewSendClient(apiKey),
		fromName:  fromName,
		fromEmail: fromEmail,
		logger:    logger,
	}
}

func (s *SendGridSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, "", htmlBody)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"to": to, "subject": subject}).WithError(err).Error("sendgrid: failed to send email")
		}
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid rejected email: status %d", response.StatusCode)
	}

	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"to": to, "status_code": response.StatusCode}).Debug("sendgrid: email accepted")
	}
	return nil
}

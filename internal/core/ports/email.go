package ports

import (
	"context"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendPasswordResetEmail(ctx context.Context, email, resetURL string) error
}

// EmailSender delivers an already rendered message through a concrete transport.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// MailDispatcher queues password reset emails for asynchronous delivery.
// Enqueue never blocks on the transport; delivery outcomes are reported out of band.
type MailDispatcher interface {
	EnqueuePasswordReset(email, resetURL string) bool
}

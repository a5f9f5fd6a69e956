package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ai-career-assistant/internal/core/domain/reset"
	"github.com/avatarctic/ai-career-assistant/internal/core/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

// EmailService renders the reset email and hands it to the configured sender.
type EmailService struct {
	sender      ports.EmailSender
	companyName string
	logger      *logrus.Logger
	templates   *template.Template
}

// NewEmailService creates a new email service instance
func NewEmailService(sender ports.EmailSender, companyName string, logger *logrus.Logger) (*EmailService, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	return &EmailService{
		sender:      sender,
		companyName: companyName,
		logger:      logger,
		templates:   templates,
	}, nil
}

// PasswordResetEmailData holds data for the password reset template
type PasswordResetEmailData struct {
	CompanyName      string
	ResetURL         string
	ExpiresInMinutes int
}

func (e *EmailService) renderTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// SendPasswordResetEmail sends the reset link to email.
func (e *EmailService) SendPasswordResetEmail(ctx context.Context, email, resetURL string) error {
	data := PasswordResetEmailData{
		CompanyName:      e.companyName,
		ResetURL:         resetURL,
		ExpiresInMinutes: int(reset.TokenTTL.Minutes()),
	}

	htmlContent, err := e.renderTemplate("password_reset.html", data)
	if err != nil {
		return fmt.Errorf("failed to render password reset email template: %w", err)
	}

	subject := fmt.Sprintf("Reset Your Password - %s", e.companyName)

	if err := e.sender.Send(ctx, email, subject, htmlContent); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	if e.logger != nil {
		e.logger.WithField("to", email).Info("password reset email sent")
	}
	return nil
}

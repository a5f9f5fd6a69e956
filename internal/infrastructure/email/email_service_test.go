package email_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/ai-career-assistant/internal/infrastructure/email"
	"github.com/avatarctic/ai-career-assistant/test/mocks"
)

func TestSendPasswordResetEmail_RendersLink(t *testing.T) {
	var gotTo, gotSubject, gotBody string
	sender := &mocks.EmailSenderMock{SendFn: func(ctx context.Context, to, subject, htmlBody string) error {
		gotTo, gotSubject, gotBody = to, subject, htmlBody
		return nil
	}}
	svc, err := email.NewEmailService(sender, "AI Career Assistant", nil)
	require.NoError(t, err)

	link := "https://careers.example.com/reset-password?token=abc123"
	require.NoError(t, svc.SendPasswordResetEmail(context.Background(), "user@x.com", link))

	assert.Equal(t, "user@x.com", gotTo)
	assert.Equal(t, "Reset Your Password - AI Career Assistant", gotSubject)
	assert.Contains(t, gotBody, link)
	assert.Contains(t, gotBody, "15 minutes")
}

func TestSendPasswordResetEmail_WrapsSenderError(t *testing.T) {
	boom := errors.New("smtp down")
	sender := &mocks.EmailSenderMock{SendFn: func(ctx context.Context, to, subject, htmlBody string) error {
		return boom
	}}
	svc, err := email.NewEmailService(sender, "AI Career Assistant", nil)
	require.NoError(t, err)

	err = svc.SendPasswordResetEmail(context.Background(), "user@x.com", "https://x/reset-password?token=t")
	require.ErrorIs(t, err, boom)
}

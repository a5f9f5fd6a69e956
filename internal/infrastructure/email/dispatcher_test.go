package email_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/ai-career-assistant/internal/infrastructure/email"
	"github.com/avatarctic/ai-career-assistant/test/mocks"
)

func closeDispatcher(t *testing.T, d *email.Dispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Close(ctx))
}

func TestDispatcher_DeliversAndReports(t *testing.T) {
	results := make(chan email.DeliveryResult, 1)
	var gotURL string
	svc := &mocks.EmailServiceMock{SendPasswordResetEmailFn: func(ctx context.Context, to, resetURL string) error {
		gotURL = resetURL
		return nil
	}}
	d := email.NewDispatcher(svc, email.DispatcherConfig{
		QueueSize: 4, Workers: 1, SendTimeout: time.Second,
		OnResult: func(r email.DeliveryResult) { results <- r },
	}, nil)

	require.True(t, d.EnqueuePasswordReset("user@x.com", "https://x/reset-password?token=abc"))

	select {
	case r := <-results:
		assert.Equal(t, "user@x.com", r.Email)
		assert.NoError(t, r.Err)
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery result")
	}
	assert.Equal(t, "https://x/reset-password?token=abc", gotURL)
	closeDispatcher(t, d)
}

func TestDispatcher_FailureIsReportedNotPropagated(t *testing.T) {
	results := make(chan email.DeliveryResult, 1)
	svc := &mocks.EmailServiceMock{SendPasswordResetEmailFn: func(ctx context.Context, to, resetURL string) error {
		return errors.New("provider rejected")
	}}
	d := email.NewDispatcher(svc, email.DispatcherConfig{
		QueueSize: 1, Workers: 1, SendTimeout: time.Second,
		OnResult: func(r email.DeliveryResult) { results <- r },
	}, nil)

	require.True(t, d.EnqueuePasswordReset("user@x.com", "u"))
	r := <-results
	assert.EqualError(t, r.Err, "provider rejected")
	closeDispatcher(t, d)
}

func TestDispatcher_SendTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	results := make(chan email.DeliveryResult, 1)
	svc := &mocks.EmailServiceMock{SendPasswordResetEmailFn: func(ctx context.Context, to, resetURL string) error {
		<-release
		return nil
	}}
	d := email.NewDispatcher(svc, email.DispatcherConfig{
		QueueSize: 1, Workers: 1, SendTimeout: 50 * time.Millisecond,
		OnResult: func(r email.DeliveryResult) { results <- r },
	}, nil)

	require.True(t, d.EnqueuePasswordReset("slow@x.com", "u"))
	select {
	case r := <-results:
		require.Error(t, r.Err)
		assert.ErrorIs(t, r.Err, context.DeadlineExceeded)
	case <-time.After(2 * time.Second):
		t.Fatal("send did not time out")
	}
	closeDispatcher(t, d)
}

func TestDispatcher_FullQueueDropsWithoutBlocking(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	svc := &mocks.EmailServiceMock{SendPasswordResetEmailFn: func(ctx context.Context, to, resetURL string) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		return nil
	}}
	d := email.NewDispatcher(svc, email.DispatcherConfig{QueueSize: 1, Workers: 1, SendTimeout: 5 * time.Second}, nil)

	require.True(t, d.EnqueuePasswordReset("a@x.com", "u"))
	<-started
	require.True(t, d.EnqueuePasswordReset("b@x.com", "u"))
	assert.False(t, d.EnqueuePasswordReset("c@x.com", "u"))

	close(release)
	closeDispatcher(t, d)
	assert.False(t, d.EnqueuePasswordReset("d@x.com", "u"), "closed dispatcher accepts nothing")
}

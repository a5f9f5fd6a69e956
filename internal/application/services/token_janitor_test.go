package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avatarctic/ai-career-assistant/internal/application/services"
	"github.com/avatarctic/ai-career-assistant/test/mocks"
)

func TestTokenJanitor_SweepsOnInterval(t *testing.T) {
	var calls int32
	tokens := &mocks.ResetTokenRepositoryMock{CleanupExpiredFn: func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		return 2, nil
	}}
	j := services.NewTokenJanitor(tokens, 10*time.Millisecond, nil)
	j.Start()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 2 }, time.Second, 5*time.Millisecond)
	j.Stop()
	j.Stop()
}

func TestTokenJanitor_DisabledAndErrors(t *testing.T) {
	tokens := &mocks.ResetTokenRepositoryMock{CleanupExpiredFn: func(ctx context.Context) (int, error) {
		return 0, errors.New("boom")
	}}
	j := services.NewTokenJanitor(tokens, 0, nil)
	j.Start()
	assert.Zero(t, j.Sweep())
	j.Stop()
}

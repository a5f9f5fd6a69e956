package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/ai-career-assistant/internal/core/ports"
)

// TokenJanitor periodically removes expired reset tokens.
type TokenJanitor struct {
	tokens   ports.ResetTokenRepository
	interval time.Duration
	logger   *logrus.Logger

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

func NewTokenJanitor(tokens ports.ResetTokenRepository, interval time.Duration, logger *logrus.Logger) *TokenJanitor {
	return &TokenJanitor{tokens: tokens, interval: interval, logger: logger, stop: make(chan struct{})}
}

// Start launches the sweep loop. A non-positive interval disables it.
func (j *TokenJanitor) Start() {
	if j.interval <= 0 {
		return
	}
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.Sweep()
			case <-j.stop:
				return
			}
		}
	}()
}

// Sweep runs one cleanup pass and returns the number of tokens removed.
func (j *TokenJanitor) Sweep() int {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := j.tokens.CleanupExpired(ctx)
	if err != nil {
		if j.logger != nil {
			j.logger.WithError(err).Warn("token janitor: cleanup failed")
		}
		return 0
	}
	if removed > 0 && j.logger != nil {
		j.logger.WithField("removed", removed).Info("token janitor: expired reset tokens removed")
	}
	return removed
}

func (j *TokenJanitor) Stop() {
	j.once.Do(func() { close(j.stop) })
	j.wg.Wait()
}

package reset_test

import (
	"testing"
	"time"

	"github.com/avatarctic/ai-career-assistant/internal/core/domain/reset"
	"github.com/stretchr/testify/assert"
)

func TestToken_ValidityWindow(t *testing.T) {
	issued := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	tok := reset.NewToken("abc123", "user@x.com", issued, reset.TokenTTL)

	assert.Equal(t, issued.Add(15*time.Minute), tok.ExpiresAt)
	assert.True(t, tok.IsValid(issued))
	assert.True(t, tok.IsValid(tok.ExpiresAt.Add(-time.Nanosecond)))
	assert.False(t, tok.IsValid(tok.ExpiresAt))
	assert.False(t, tok.IsValid(tok.ExpiresAt.Add(time.Second)))

	tok.Used = true
	assert.False(t, tok.IsValid(issued))
}

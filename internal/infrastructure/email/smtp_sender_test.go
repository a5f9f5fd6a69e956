package email

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildMessage_HTMLHeaders(t *testing.T) {
	msg := buildMessage("noreply@x.com", "user@x.com", "Reset", "<p>hi</p>")

	head, body, found := strings.Cut(msg, "\r\n\r\n")
	assert.True(t, found)
	assert.Equal(t, "<p>hi</p>", body)
	assert.True(t, strings.HasPrefix(head, "From: noreply@x.com\r\nTo: user@x.com\r\nSubject: Reset\r\n"))
	assert.Contains(t, head, "Content-Type: text/html; charset=\"utf-8\"")
}

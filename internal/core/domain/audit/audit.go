package audit

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    *uuid.UUID `json:"user_id" db:"user_id"`
	Action    string     `json:"action" db:"action"`
	Resource  string     `json:"resource" db:"resource"`
	Details   any        `json:"details" db:"details"`
	IPAddress string     `json:"ip_address" db:"ip_address"`
	UserAgent string     `json:"user_agent" db:"user_agent"`
	Timestamp time.Time  `json:"timestamp" db:"timestamp"`
}

type AuditAction string

const (
	ActionPasswordResetRequested AuditAction = "password_reset.requested"
	ActionPasswordResetCompleted AuditAction = "password_reset.completed"
)

type AuditResource string

const (
	ResourceUser AuditResource = "user"
)

// CreateAuditLogRequest represents the request to create an audit log entry
type CreateAuditLogRequest struct {
	UserID    *uuid.UUID    `json:"user_id,omitempty"`
	Action    AuditAction   `json:"action"`
	Resource  AuditResource `json:"resource"`
	Details   any           `json:"details,omitempty"`
	IPAddress string        `json:"ip_address"`
	UserAgent string        `json:"user_agent"`
}

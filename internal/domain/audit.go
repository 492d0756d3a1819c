package domain

import "time"

type AuditAction string

const (
	AuditActionRegister AuditAction = "REGISTER"
	AuditActionVerify   AuditAction = "VERIFY"
)

// AuditEvent is an immutable record of an action and its outcome.
// Events are append-only, ordered by creation, and never mutated.
type AuditEvent struct {
	ID        string
	Document  string
	Action    AuditAction
	Outcome   string
	Actor     string
	CreatedAt time.Time
}

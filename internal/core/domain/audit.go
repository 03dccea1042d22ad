package domain

import "time"

// AuditEvent is an outcome report for a mutating operation or scan attempt,
// delivered to an audit sink. Recording is best effort and never blocks the
// operation that produced it.
type AuditEvent struct {
	// Action names the operation, e.g. "source.upsert" or "scan.one".
	Action string

	// Outcome is a short status string such as "ok" or "error".
	Outcome string

	// Detail is a human-readable message.
	Detail string

	// At is when the event occurred.
	At time.Time
}

// Package audit appends a tamper-evident record for every state-changing
// operation. Recording is best-effort relative to the triggering mutation:
// it runs only after the primary effect has committed, and a failure to
// audit is surfaced in the log without rolling anything back.
package audit

import (
	"log/slog"

	"github.com/google/uuid"

	"blockpress/internal/models"
)

// DefaultLimit bounds how many entries a read returns when the caller
// does not say.
const DefaultLimit = 50

// Sink is the persistence the logger writes through.
type Sink interface {
	Insert(e *models.AuditEntry) error
	Recent(workspaceID uuid.UUID, limit int) ([]models.AuditEntry, error)
}

// Logger records audit entries.
type Logger struct {
	sink Sink
}

// New creates a Logger writing to the given sink.
func New(sink Sink) *Logger {
	return &Logger{sink: sink}
}

// Record appends an entry. Failures are logged, never returned: the
// mutation that triggered the record has already committed.
func (l *Logger) Record(workspaceID *uuid.UUID, actorID uuid.UUID, action, targetType, targetID string, details map[string]any) {
	err := l.sink.Insert(&models.AuditEntry{
		WorkspaceID: workspaceID,
		ActorID:     actorID,
		Action:      action,
		TargetType:  targetType,
		TargetID:    targetID,
		Details:     details,
	})
	if err != nil {
		slog.Warn("failed to record audit entry",
			"action", action,
			"target_type", targetType,
			"target_id", targetID,
			"error", err,
		)
		return
	}
	slog.Debug("audit entry recorded",
		"action", action,
		"target_type", targetType,
		"target_id", targetID,
	)
}

// Recent returns the most recent entries for a workspace, newest first.
func (l *Logger) Recent(workspaceID uuid.UUID, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = DefaultLimit
	}
	return l.sink.Recent(workspaceID, limit)
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry is an append-only record of a state-changing operation.
// Entries are never mutated or deleted.
type AuditEntry struct {
	ID          int64          `json:"id"`
	WorkspaceID *uuid.UUID     `json:"workspace_id,omitempty"`
	ActorID     uuid.UUID      `json:"actor_id"`
	Action      string         `json:"action"` // e.g. "page.publish", "block.update_content"
	TargetType  string         `json:"target_type"`
	TargetID    string         `json:"target_id"`
	Details     map[string]any `json:"details,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

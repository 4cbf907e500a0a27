// audit.go persists the append-only audit trail. Rows are inserted after
// a mutation's primary effect commits and are never updated or deleted.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"blockpress/internal/models"
)

// AuditStore handles audit-log database operations.
type AuditStore struct {
	db *sql.DB
}

// NewAuditStore creates a new AuditStore with the given database connection.
func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

// Insert appends an audit entry.
func (s *AuditStore) Insert(e *models.AuditEntry) error {
	details, err := marshalJSONB(e.Details)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO audit_log (workspace_id, actor_id, action, target_type, target_id, details)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.WorkspaceID, e.ActorID, e.Action, e.TargetType, e.TargetID, details)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Recent returns the most recent entries for a workspace, newest first.
func (s *AuditStore) Recent(workspaceID uuid.UUID, limit int) ([]models.AuditEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, workspace_id, actor_id, action, target_type, target_id, details, created_at
		FROM audit_log
		WHERE workspace_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var details []byte
		var ws uuid.NullUUID
		if err := rows.Scan(&e.ID, &ws, &e.ActorID, &e.Action, &e.TargetType, &e.TargetID, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if ws.Valid {
			e.WorkspaceID = &ws.UUID
		}
		if err := unmarshalJSONB(details, &e.Details); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

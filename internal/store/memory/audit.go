package memory

import (
	"github.com/google/uuid"

	"blockpress/internal/models"
)

// AuditStore is the in-memory audit facet. Entries are append-only.
type AuditStore struct {
	s *Store
}

func (as *AuditStore) Insert(e *models.AuditEntry) error {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()

	stored := *e
	stored.ID = as.s.nextAuditID
	as.s.nextAuditID++
	stored.CreatedAt = now()
	as.s.audit = append(as.s.audit, stored)
	return nil
}

func (as *AuditStore) Recent(workspaceID uuid.UUID, limit int) ([]models.AuditEntry, error) {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()

	var out []models.AuditEntry
	for i := len(as.s.audit) - 1; i >= 0 && len(out) < limit; i-- {
		e := as.s.audit[i]
		if e.WorkspaceID != nil && *e.WorkspaceID == workspaceID {
			out = append(out, e)
		}
	}
	return out, nil
}

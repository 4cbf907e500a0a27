package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"blockpress/internal/models"
)

// WorkspaceStore handles workspace-related database operations.
type WorkspaceStore struct {
	db *sql.DB
}

// NewWorkspaceStore creates a new WorkspaceStore with the given database connection.
func NewWorkspaceStore(db *sql.DB) *WorkspaceStore {
	return &WorkspaceStore{db: db}
}

// Create inserts a new workspace and returns it with the generated ID.
// OwnerID may be nil at this point; registration sets it once the owning
// admin user exists.
func (s *WorkspaceStore) Create(name string) (*models.Workspace, error) {
	w := &models.Workspace{}
	err := s.db.QueryRow(`
		INSERT INTO workspaces (name)
		VALUES ($1)
		RETURNING id, name, created_at
	`, name).Scan(&w.ID, &w.Name, &w.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return w, nil
}

// SetOwner records the owning user of a workspace.
func (s *WorkspaceStore) SetOwner(workspaceID, ownerID uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE workspaces SET owner_id = $1 WHERE id = $2
	`, ownerID, workspaceID)
	if err != nil {
		return fmt.Errorf("set workspace owner: %w", err)
	}
	return nil
}

// FindByID retrieves a workspace by its UUID. Returns nil if not found.
func (s *WorkspaceStore) FindByID(id uuid.UUID) (*models.Workspace, error) {
	w := &models.Workspace{}
	var owner uuid.NullUUID
	err := s.db.QueryRow(`
		SELECT id, name, owner_id, created_at
		FROM workspaces WHERE id = $1
	`, id).Scan(&w.ID, &w.Name, &owner, &w.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find workspace by id: %w", err)
	}
	if owner.Valid {
		w.OwnerID = owner.UUID
	}
	return w, nil
}

package memory

import (
	"github.com/google/uuid"

	"blockpress/internal/models"
)

// WorkspaceStore is the in-memory workspace facet.
type WorkspaceStore struct {
	s *Store
}

func (ws *WorkspaceStore) Create(name string) (*models.Workspace, error) {
	ws.s.mu.Lock()
	defer ws.s.mu.Unlock()

	w := models.Workspace{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now(),
	}
	ws.s.workspaces[w.ID] = w
	return &w, nil
}

func (ws *WorkspaceStore) SetOwner(workspaceID, ownerID uuid.UUID) error {
	ws.s.mu.Lock()
	defer ws.s.mu.Unlock()

	w, ok := ws.s.workspaces[workspaceID]
	if !ok {
		return nil
	}
	w.OwnerID = ownerID
	ws.s.workspaces[workspaceID] = w
	return nil
}

func (ws *WorkspaceStore) FindByID(id uuid.UUID) (*models.Workspace, error) {
	ws.s.mu.Lock()
	defer ws.s.mu.Unlock()

	w, ok := ws.s.workspaces[id]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

package memory

import (
	"github.com/google/uuid"

	"blockpress/internal/errs"
	"blockpress/internal/models"
)

// SectionStore is the in-memory global-section facet. Default promotion
// demotes the previous default in the same critical section.
type SectionStore struct {
	s *Store
}

func (gs *SectionStore) Create(g *models.GlobalSection) (*models.GlobalSection, error) {
	gs.s.mu.Lock()
	defer gs.s.mu.Unlock()

	for _, existing := range gs.s.sections {
		if existing.WorkspaceID == g.WorkspaceID && existing.Slug == g.Slug {
			return nil, errs.ErrSlugTaken
		}
	}
	if g.IsDefault {
		gs.clearDefault(g.WorkspaceID, g.Type)
	}

	stored := *g
	stored.ID = uuid.New()
	stored.UpdatedBy = g.CreatedBy
	stored.CreatedAt = now()
	stored.UpdatedAt = stored.CreatedAt
	gs.s.sections[stored.ID] = stored

	out := stored
	return &out, nil
}

func (gs *SectionStore) FindByID(workspaceID, id uuid.UUID) (*models.GlobalSection, error) {
	gs.s.mu.Lock()
	defer gs.s.mu.Unlock()

	g, ok := gs.s.sections[id]
	if !ok || g.WorkspaceID != workspaceID {
		return nil, nil
	}
	return &g, nil
}

func (gs *SectionStore) FindDefault(workspaceID uuid.UUID, sectionType models.SectionType) (*models.GlobalSection, error) {
	gs.s.mu.Lock()
	defer gs.s.mu.Unlock()

	for _, g := range gs.s.sections {
		if g.WorkspaceID == workspaceID && g.Type == sectionType && g.IsDefault {
			return &g, nil
		}
	}
	return nil, nil
}

func (gs *SectionStore) ListByWorkspace(workspaceID uuid.UUID) ([]models.GlobalSection, error) {
	gs.s.mu.Lock()
	defer gs.s.mu.Unlock()

	var out []models.GlobalSection
	for _, g := range gs.s.sections {
		if g.WorkspaceID == workspaceID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (gs *SectionStore) Update(g *models.GlobalSection) error {
	gs.s.mu.Lock()
	defer gs.s.mu.Unlock()

	stored, ok := gs.s.sections[g.ID]
	if !ok || stored.WorkspaceID != g.WorkspaceID {
		return errs.ErrNotFound
	}
	stored.Name = g.Name
	stored.ContentType = g.ContentType
	stored.Content = g.Content
	stored.UpdatedBy = g.UpdatedBy
	stored.UpdatedAt = now()
	gs.s.sections[g.ID] = stored
	return nil
}

func (gs *SectionStore) SetDefault(workspaceID, id uuid.UUID, updatedBy uuid.UUID) error {
	gs.s.mu.Lock()
	defer gs.s.mu.Unlock()

	g, ok := gs.s.sections[id]
	if !ok || g.WorkspaceID != workspaceID {
		return errs.ErrNotFound
	}
	gs.clearDefault(workspaceID, g.Type)
	g.IsDefault = true
	g.UpdatedBy = updatedBy
	g.UpdatedAt = now()
	gs.s.sections[id] = g
	return nil
}

func (gs *SectionStore) Delete(workspaceID, id uuid.UUID) error {
	gs.s.mu.Lock()
	defer gs.s.mu.Unlock()

	g, ok := gs.s.sections[id]
	if !ok || g.WorkspaceID != workspaceID {
		return errs.ErrNotFound
	}
	delete(gs.s.sections, id)
	return nil
}

// clearDefault demotes the current default of the given type. Callers
// must hold the store mutex.
func (gs *SectionStore) clearDefault(workspaceID uuid.UUID, sectionType models.SectionType) {
	for id, g := range gs.s.sections {
		if g.WorkspaceID == workspaceID && g.Type == sectionType && g.IsDefault {
			g.IsDefault = false
			g.UpdatedAt = now()
			gs.s.sections[id] = g
		}
	}
}

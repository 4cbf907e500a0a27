package memory

import (
	"time"

	"github.com/google/uuid"

	"blockpress/internal/errs"
	"blockpress/internal/models"
)

// PageStore is the in-memory page facet.
type PageStore struct {
	s *Store
}

func (ps *PageStore) Create(p *models.Page) (*models.Page, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	if ps.slugTaken(p.WorkspaceID, p.Slug, uuid.Nil) {
		return nil, errs.ErrSlugTaken
	}

	stored := *p
	stored.ID = uuid.New()
	stored.Status = models.PageStatusDraft
	stored.BlockOrder = nil
	stored.UpdatedBy = p.CreatedBy
	stored.CreatedAt = now()
	stored.UpdatedAt = stored.CreatedAt
	ps.s.pages[stored.ID] = stored

	out := stored
	return &out, nil
}

func (ps *PageStore) FindByID(workspaceID, id uuid.UUID) (*models.Page, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	p, ok := ps.s.pages[id]
	if !ok || p.WorkspaceID != workspaceID {
		return nil, nil
	}
	p.BlockOrder = cloneOrder(p.BlockOrder)
	return &p, nil
}

func (ps *PageStore) FindPublishedBySlug(workspaceID uuid.UUID, slug string) (*models.Page, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	for _, p := range ps.s.pages {
		if p.WorkspaceID == workspaceID && p.Slug == slug && p.Status == models.PageStatusPublished {
			p.BlockOrder = cloneOrder(p.BlockOrder)
			return &p, nil
		}
	}
	return nil, nil
}

func (ps *PageStore) ListByWorkspace(workspaceID uuid.UUID) ([]models.Page, error) {
	return ps.list(workspaceID, func(p models.Page) bool { return true })
}

func (ps *PageStore) ListPublished(workspaceID uuid.UUID) ([]models.Page, error) {
	return ps.list(workspaceID, func(p models.Page) bool {
		return p.Status == models.PageStatusPublished
	})
}

func (ps *PageStore) list(workspaceID uuid.UUID, keep func(models.Page) bool) ([]models.Page, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	var out []models.Page
	for _, p := range ps.s.pages {
		if p.WorkspaceID == workspaceID && keep(p) {
			p.BlockOrder = cloneOrder(p.BlockOrder)
			out = append(out, p)
		}
	}
	return out, nil
}

func (ps *PageStore) Update(p *models.Page) error {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	stored, ok := ps.s.pages[p.ID]
	if !ok || stored.WorkspaceID != p.WorkspaceID {
		return errs.ErrNotFound
	}
	if ps.slugTaken(p.WorkspaceID, p.Slug, p.ID) {
		return errs.ErrSlugTaken
	}

	stored.Title = p.Title
	stored.Slug = p.Slug
	stored.SEO = p.SEO
	stored.HeaderID = p.HeaderID
	stored.FooterID = p.FooterID
	stored.UpdatedBy = p.UpdatedBy
	stored.UpdatedAt = now()
	ps.s.pages[p.ID] = stored
	return nil
}

func (ps *PageStore) UpdateStatus(workspaceID, id uuid.UUID, status models.PageStatus, publishedAt *time.Time, updatedBy uuid.UUID) error {
	return ps.update(workspaceID, id, func(p *models.Page) {
		p.Status = status
		p.PublishedAt = publishedAt
		p.UpdatedBy = updatedBy
	})
}

func (ps *PageStore) UpdateBlockOrder(workspaceID, id uuid.UUID, order []uuid.UUID, updatedBy uuid.UUID) error {
	return ps.update(workspaceID, id, func(p *models.Page) {
		p.BlockOrder = cloneOrder(order)
		p.UpdatedBy = updatedBy
	})
}

func (ps *PageStore) DeleteCascade(workspaceID, id uuid.UUID) error {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	p, ok := ps.s.pages[id]
	if !ok || p.WorkspaceID != workspaceID {
		return errs.ErrNotFound
	}
	for blockID, b := range ps.s.blocks {
		if b.PageID == id {
			delete(ps.s.blocks, blockID)
		}
	}
	delete(ps.s.pages, id)
	return nil
}

func (ps *PageStore) update(workspaceID, id uuid.UUID, apply func(*models.Page)) error {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	p, ok := ps.s.pages[id]
	if !ok || p.WorkspaceID != workspaceID {
		return errs.ErrNotFound
	}
	apply(&p)
	p.UpdatedAt = now()
	ps.s.pages[id] = p
	return nil
}

// slugTaken reports whether another page in the workspace already holds
// the slug. Callers must hold the store mutex.
func (ps *PageStore) slugTaken(workspaceID uuid.UUID, slug string, except uuid.UUID) bool {
	for _, p := range ps.s.pages {
		if p.ID != except && p.WorkspaceID == workspaceID && p.Slug == slug {
			return true
		}
	}
	return false
}

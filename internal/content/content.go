// Package content owns the page lifecycle, block structure rules, and
// global sections. Every operation takes the acting user's identity and
// scopes all reads and writes to that user's workspace; cross-workspace
// references read as not found so tenants cannot probe each other.
package content

import (
	"time"

	"github.com/google/uuid"

	"blockpress/internal/audit"
	"blockpress/internal/models"
)

// Pages is the page persistence the service consumes.
type Pages interface {
	Create(p *models.Page) (*models.Page, error)
	FindByID(workspaceID, id uuid.UUID) (*models.Page, error)
	FindPublishedBySlug(workspaceID uuid.UUID, slug string) (*models.Page, error)
	ListByWorkspace(workspaceID uuid.UUID) ([]models.Page, error)
	ListPublished(workspaceID uuid.UUID) ([]models.Page, error)
	Update(p *models.Page) error
	UpdateStatus(workspaceID, id uuid.UUID, status models.PageStatus, publishedAt *time.Time, updatedBy uuid.UUID) error
	UpdateBlockOrder(workspaceID, id uuid.UUID, order []uuid.UUID, updatedBy uuid.UUID) error
	DeleteCascade(workspaceID, id uuid.UUID) error
}

// Blocks is the block persistence the service consumes. Insert and Delete
// keep the owning page's block_order consistent as one logical unit.
type Blocks interface {
	Insert(b *models.Block, position int) (*models.Block, error)
	Delete(workspaceID, id uuid.UUID, updatedBy uuid.UUID) error
	FindByID(workspaceID, id uuid.UUID) (*models.Block, error)
	ListByPage(workspaceID, pageID uuid.UUID) ([]models.Block, error)
	UpdateContent(workspaceID, id uuid.UUID, content models.BlockContent, updatedBy uuid.UUID) error
	UpdateLayout(workspaceID, id uuid.UUID, layout models.BlockLayout, updatedBy uuid.UUID) error
	SetLock(workspaceID, id uuid.UUID, locked bool, updatedBy uuid.UUID) error
}

// Sections is the global-section persistence the service consumes.
type Sections interface {
	Create(g *models.GlobalSection) (*models.GlobalSection, error)
	FindByID(workspaceID, id uuid.UUID) (*models.GlobalSection, error)
	FindDefault(workspaceID uuid.UUID, sectionType models.SectionType) (*models.GlobalSection, error)
	ListByWorkspace(workspaceID uuid.UUID) ([]models.GlobalSection, error)
	Update(g *models.GlobalSection) error
	SetDefault(workspaceID, id uuid.UUID, updatedBy uuid.UUID) error
	Delete(workspaceID, id uuid.UUID) error
}

// PageInvalidator drops cached public renditions after a mutation.
type PageInvalidator interface {
	Invalidate(workspaceID uuid.UUID, slug string)
}

// Service implements the content control plane.
type Service struct {
	pages    Pages
	blocks   Blocks
	sections Sections
	cache    PageInvalidator
	auditLog *audit.Logger
}

// New creates a content Service. cache may be nil when no public cache is
// configured.
func New(pages Pages, blocks Blocks, sections Sections, cache PageInvalidator, auditLog *audit.Logger) *Service {
	return &Service{
		pages:    pages,
		blocks:   blocks,
		sections: sections,
		cache:    cache,
		auditLog: auditLog,
	}
}

func (s *Service) invalidate(workspaceID uuid.UUID, slug string) {
	if s.cache != nil {
		s.cache.Invalidate(workspaceID, slug)
	}
}

// invalidateWorkspace drops every published page's cached rendition. Used
// after global-section changes, which can affect any page in the
// workspace.
func (s *Service) invalidateWorkspace(workspaceID uuid.UUID) {
	if s.cache == nil {
		return
	}
	pages, err := s.pages.ListPublished(workspaceID)
	if err != nil {
		return
	}
	for _, page := range pages {
		s.cache.Invalidate(workspaceID, page.Slug)
	}
}

// public.go serves the anonymous read path: published pages hydrated with
// their blocks in display order plus the resolved header and footer.
package content

import (
	"github.com/google/uuid"

	"blockpress/internal/errs"
	"blockpress/internal/models"
)

// HydratedPage is the full public rendition of a page: the page record,
// its blocks in display order, and the resolved header and footer. Header
// or Footer is null when the page has no override and the workspace has
// no default of that type.
type HydratedPage struct {
	Page   models.Page           `json:"page"`
	Blocks []models.Block        `json:"blocks"`
	Header *models.GlobalSection `json:"header"`
	Footer *models.GlobalSection `json:"footer"`
}

// PublishedBySlug returns the hydrated rendition of a published page. It
// requires no identity; drafts and archived pages read as not found.
func (s *Service) PublishedBySlug(workspaceID uuid.UUID, pageSlug string) (*HydratedPage, error) {
	page, err := s.pages.FindPublishedBySlug(workspaceID, pageSlug)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, errs.ErrNotFound
	}
	return s.hydrate(page)
}

// ListPublished returns the published pages of a workspace, without
// blocks. It requires no identity.
func (s *Service) ListPublished(workspaceID uuid.UUID) ([]models.Page, error) {
	return s.pages.ListPublished(workspaceID)
}

// SectionsForWorkspace returns a workspace's global sections for the
// key-scoped external read path. The caller is responsible for having
// checked the key's permission.
func (s *Service) SectionsForWorkspace(workspaceID uuid.UUID) ([]models.GlobalSection, error) {
	return s.sections.ListByWorkspace(workspaceID)
}

// hydrate assembles the full rendition of a page. Blocks are emitted in
// block_order sequence; a stale order entry whose block no longer exists
// is skipped rather than failing the whole page.
func (s *Service) hydrate(page *models.Page) (*HydratedPage, error) {
	blocks, err := s.blocks.ListByPage(page.WorkspaceID, page.ID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.Block, len(blocks))
	for _, b := range blocks {
		byID[b.ID] = b
	}
	ordered := make([]models.Block, 0, len(blocks))
	for _, id := range page.BlockOrder {
		if b, ok := byID[id]; ok {
			ordered = append(ordered, b)
		}
	}

	header, err := s.resolveSection(page.WorkspaceID, page.HeaderID, models.SectionTypeHeader)
	if err != nil {
		return nil, err
	}
	footer, err := s.resolveSection(page.WorkspaceID, page.FooterID, models.SectionTypeFooter)
	if err != nil {
		return nil, err
	}

	return &HydratedPage{
		Page:   *page,
		Blocks: ordered,
		Header: header,
		Footer: footer,
	}, nil
}

// resolveSection picks the page's override when set and still present,
// otherwise the workspace default. Either may be absent, in which case
// the slot renders empty.
func (s *Service) resolveSection(workspaceID uuid.UUID, override *uuid.UUID, sectionType models.SectionType) (*models.GlobalSection, error) {
	if override != nil {
		section, err := s.sections.FindByID(workspaceID, *override)
		if err != nil {
			return nil, err
		}
		if section != nil {
			return section, nil
		}
	}
	return s.sections.FindDefault(workspaceID, sectionType)
}

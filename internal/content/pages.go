// pages.go implements the page lifecycle: creation, field updates, the
// draft → published → archived state machine, and cascade deletion.
package content

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"blockpress/internal/auth"
	"blockpress/internal/errs"
	"blockpress/internal/models"
	"blockpress/internal/slug"
)

// CreatePage creates a draft page. Admin only. An empty slug is derived
// from the title; either way the slug must match the canonical format and
// be unique within the workspace.
func (s *Service) CreatePage(actor *auth.Identity, title, pageSlug string) (*models.Page, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errs.Invalid("title is required")
	}
	if pageSlug == "" {
		pageSlug = slug.Generate(title)
	}
	if !slug.Valid(pageSlug) {
		return nil, errs.ErrInvalidSlugFormat
	}

	page, err := s.pages.Create(&models.Page{
		WorkspaceID: actor.WorkspaceID,
		Title:       title,
		Slug:        pageSlug,
		CreatedBy:   actor.UserID,
	})
	if err != nil {
		return nil, err
	}

	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "page.create", "page", page.ID.String(),
		map[string]any{"slug": page.Slug})
	return page, nil
}

// UpdatePage applies an explicit field patch. Title and SEO edits are
// content-level (editor or admin); slug and header/footer overrides are
// structural and require admin. A nil pointer leaves the field unchanged.
func (s *Service) UpdatePage(actor *auth.Identity, pageID uuid.UUID, upd models.PageUpdate) (*models.Page, error) {
	if err := auth.RequireEditor(actor); err != nil {
		return nil, err
	}

	page, err := s.workspacePage(actor, pageID)
	if err != nil {
		return nil, err
	}
	oldSlug := page.Slug

	if upd.Slug != nil || upd.HeaderID != nil || upd.FooterID != nil {
		if err := auth.RequireAdmin(actor); err != nil {
			return nil, err
		}
	}

	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, errs.Invalid("title is required")
		}
		page.Title = title
	}
	if upd.Slug != nil {
		if !slug.Valid(*upd.Slug) {
			return nil, errs.ErrInvalidSlugFormat
		}
		page.Slug = *upd.Slug
	}
	if upd.SEO != nil {
		page.SEO = *upd.SEO
	}
	if upd.HeaderID != nil {
		if err := s.checkSectionRef(actor, *upd.HeaderID, models.SectionTypeHeader); err != nil {
			return nil, err
		}
		page.HeaderID = *upd.HeaderID
	}
	if upd.FooterID != nil {
		if err := s.checkSectionRef(actor, *upd.FooterID, models.SectionTypeFooter); err != nil {
			return nil, err
		}
		page.FooterID = *upd.FooterID
	}
	page.UpdatedBy = actor.UserID

	if err := s.pages.Update(page); err != nil {
		return nil, err
	}

	s.invalidate(actor.WorkspaceID, oldSlug)
	if page.Slug != oldSlug {
		s.invalidate(actor.WorkspaceID, page.Slug)
	}
	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "page.update", "page", page.ID.String(), nil)
	return page, nil
}

// PublishPage transitions a draft or archived page to published and stamps
// the publish time. Admin only.
func (s *Service) PublishPage(actor *auth.Identity, pageID uuid.UUID) error {
	return s.transition(actor, pageID, "page.publish", func(page *models.Page) (*time.Time, models.PageStatus, error) {
		if page.Status == models.PageStatusPublished {
			return nil, "", fmt.Errorf("%w: page is already published", errs.ErrConflict)
		}
		now := time.Now()
		return &now, models.PageStatusPublished, nil
	})
}

// UnpublishPage transitions a published page back to draft. The publish
// timestamp is cleared: an unpublished page has no live publication, and
// republishing stamps a fresh time.
func (s *Service) UnpublishPage(actor *auth.Identity, pageID uuid.UUID) error {
	return s.transition(actor, pageID, "page.unpublish", func(page *models.Page) (*time.Time, models.PageStatus, error) {
		if page.Status != models.PageStatusPublished {
			return nil, "", fmt.Errorf("%w: page is not published", errs.ErrConflict)
		}
		return nil, models.PageStatusDraft, nil
	})
}

// ArchivePage transitions a page to archived from any status. Admin only.
// The publish timestamp is left untouched as a historical record.
func (s *Service) ArchivePage(actor *auth.Identity, pageID uuid.UUID) error {
	return s.transition(actor, pageID, "page.archive", func(page *models.Page) (*time.Time, models.PageStatus, error) {
		return page.PublishedAt, models.PageStatusArchived, nil
	})
}

func (s *Service) transition(actor *auth.Identity, pageID uuid.UUID, action string, next func(*models.Page) (*time.Time, models.PageStatus, error)) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return err
	}

	page, err := s.workspacePage(actor, pageID)
	if err != nil {
		return err
	}

	publishedAt, status, err := next(page)
	if err != nil {
		return err
	}

	if err := s.pages.UpdateStatus(actor.WorkspaceID, page.ID, status, publishedAt, actor.UserID); err != nil {
		return err
	}

	s.invalidate(actor.WorkspaceID, page.Slug)
	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, action, "page", page.ID.String(),
		map[string]any{"from": string(page.Status), "to": string(status)})
	return nil
}

// DeletePage removes a page and all of its blocks, children first, so an
// interrupted delete never orphans blocks. Admin only.
func (s *Service) DeletePage(actor *auth.Identity, pageID uuid.UUID) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return err
	}

	page, err := s.workspacePage(actor, pageID)
	if err != nil {
		return err
	}

	if err := s.pages.DeleteCascade(actor.WorkspaceID, page.ID); err != nil {
		return err
	}

	s.invalidate(actor.WorkspaceID, page.Slug)
	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "page.delete", "page", page.ID.String(),
		map[string]any{"slug": page.Slug})
	return nil
}

// GetPage returns a page with its blocks hydrated in order, regardless of
// status. Editor or admin; workspace members see their own drafts.
func (s *Service) GetPage(actor *auth.Identity, pageID uuid.UUID) (*HydratedPage, error) {
	if err := auth.RequireEditor(actor); err != nil {
		return nil, err
	}

	page, err := s.workspacePage(actor, pageID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(page)
}

// ListPages returns every page in the actor's workspace. Editor or admin.
func (s *Service) ListPages(actor *auth.Identity) ([]models.Page, error) {
	if err := auth.RequireEditor(actor); err != nil {
		return nil, err
	}
	return s.pages.ListByWorkspace(actor.WorkspaceID)
}

// workspacePage fetches a page and verifies workspace membership. A page
// in another workspace reads as not found, never as forbidden.
func (s *Service) workspacePage(actor *auth.Identity, pageID uuid.UUID) (*models.Page, error) {
	page, err := s.pages.FindByID(actor.WorkspaceID, pageID)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, errs.ErrNotFound
	}
	return page, nil
}

// checkSectionRef verifies that a header/footer override points at a
// section of the right type inside the actor's workspace. A nil ref
// clears the override and is always fine.
func (s *Service) checkSectionRef(actor *auth.Identity, ref *uuid.UUID, want models.SectionType) error {
	if ref == nil {
		return nil
	}
	section, err := s.sections.FindByID(actor.WorkspaceID, *ref)
	if err != nil {
		return err
	}
	if section == nil {
		return errs.ErrNotFound
	}
	if section.Type != want {
		return errs.Invalid("section %s is a %s, not a %s", section.ID, section.Type, want)
	}
	return nil
}

package content

import (
	"github.com/google/uuid"

	"blockpress/internal/auth"
	"blockpress/internal/errs"
	"blockpress/internal/models"
	"blockpress/internal/slug"
)

// CreateSection adds a reusable global section to the workspace. Admin
// only. When IsDefault is set the store atomically demotes any existing
// default of the same type.
func (s *Service) CreateSection(actor *auth.Identity, name, slugText string, sectionType models.SectionType, content models.BlockContent, isDefault bool) (*models.GlobalSection, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errs.Invalid("section name is required")
	}
	if !sectionType.Valid() {
		return nil, errs.Invalid("unknown section type %q", sectionType)
	}
	if content == nil {
		return nil, errs.Invalid("section content is required")
	}
	if err := checkTextLength(content); err != nil {
		return nil, err
	}
	if slugText == "" {
		slugText = slug.Generate(name)
	}
	if !slug.Valid(slugText) {
		return nil, errs.ErrInvalidSlugFormat
	}

	section, err := s.sections.Create(&models.GlobalSection{
		WorkspaceID: actor.WorkspaceID,
		Name:        name,
		Slug:        slugText,
		Type:        sectionType,
		ContentType: content.Type(),
		Content:     content,
		IsDefault:   isDefault,
		CreatedBy:   actor.UserID,
	})
	if err != nil {
		return nil, err
	}

	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "section.create", "section", section.ID.String(),
		map[string]any{"type": string(section.Type), "slug": section.Slug})
	return section, nil
}

// UpdateSection replaces a section's name and content payload. Admin only.
// Pages referencing the section pick up the change on next read, so every
// published page in the workspace is invalidated.
func (s *Service) UpdateSection(actor *auth.Identity, sectionID uuid.UUID, name string, content models.BlockContent) (*models.GlobalSection, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, errs.Invalid("section name is required")
	}
	if content == nil {
		return nil, errs.Invalid("section content is required")
	}
	if err := checkTextLength(content); err != nil {
		return nil, err
	}

	section, err := s.workspaceSection(actor, sectionID)
	if err != nil {
		return nil, err
	}

	section.Name = name
	section.ContentType = content.Type()
	section.Content = content
	section.UpdatedBy = actor.UserID
	if err := s.sections.Update(section); err != nil {
		return nil, err
	}

	s.invalidateWorkspace(actor.WorkspaceID)
	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "section.update", "section", section.ID.String(), nil)
	return section, nil
}

// SetDefaultSection promotes a section to be the workspace default for
// its type, demoting the previous default in the same transaction. Admin
// only.
func (s *Service) SetDefaultSection(actor *auth.Identity, sectionID uuid.UUID) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return err
	}

	section, err := s.workspaceSection(actor, sectionID)
	if err != nil {
		return err
	}

	if err := s.sections.SetDefault(actor.WorkspaceID, section.ID, actor.UserID); err != nil {
		return err
	}

	s.invalidateWorkspace(actor.WorkspaceID)
	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "section.set_default", "section", section.ID.String(),
		map[string]any{"type": string(section.Type)})
	return nil
}

// DeleteSection removes a section. Admin only. Pages holding an override
// reference to a deleted section fall back to the workspace default on
// the next read.
func (s *Service) DeleteSection(actor *auth.Identity, sectionID uuid.UUID) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return err
	}

	section, err := s.workspaceSection(actor, sectionID)
	if err != nil {
		return err
	}

	if err := s.sections.Delete(actor.WorkspaceID, section.ID); err != nil {
		return err
	}

	s.invalidateWorkspace(actor.WorkspaceID)
	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "section.delete", "section", section.ID.String(), nil)
	return nil
}

// GetSection returns a single section. Editor or admin.
func (s *Service) GetSection(actor *auth.Identity, sectionID uuid.UUID) (*models.GlobalSection, error) {
	if err := auth.RequireEditor(actor); err != nil {
		return nil, err
	}
	return s.workspaceSection(actor, sectionID)
}

// ListSections returns all sections in the actor's workspace. Editor or
// admin.
func (s *Service) ListSections(actor *auth.Identity) ([]models.GlobalSection, error) {
	if err := auth.RequireEditor(actor); err != nil {
		return nil, err
	}
	return s.sections.ListByWorkspace(actor.WorkspaceID)
}

func (s *Service) workspaceSection(actor *auth.Identity, sectionID uuid.UUID) (*models.GlobalSection, error) {
	section, err := s.sections.FindByID(actor.WorkspaceID, sectionID)
	if err != nil {
		return nil, err
	}
	if section == nil {
		return nil, errs.ErrNotFound
	}
	return section, nil
}

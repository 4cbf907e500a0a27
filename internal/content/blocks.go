// blocks.go implements the block structure guard. Structure (type,
// layout, order, lock flag) is admin-only; the fields inside an existing
// payload are editable by editors, with the discriminant itself treated
// as structure.
package content

import (
	"unicode/utf8"

	"github.com/google/uuid"

	"blockpress/internal/auth"
	"blockpress/internal/errs"
	"blockpress/internal/models"
)

// AddBlock creates a block and splices it into the page's order at the
// given position (past-the-end appends). Admin only.
func (s *Service) AddBlock(actor *auth.Identity, pageID uuid.UUID, content models.BlockContent, layout models.BlockLayout, position int) (*models.Block, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if content == nil {
		return nil, errs.Invalid("block content is required")
	}
	if err := checkTextLength(content); err != nil {
		return nil, err
	}

	page, err := s.workspacePage(actor, pageID)
	if err != nil {
		return nil, err
	}

	block, err := s.blocks.Insert(&models.Block{
		WorkspaceID: actor.WorkspaceID,
		PageID:      page.ID,
		Type:        content.Type(),
		Content:     content,
		Layout:      layout,
		CreatedBy:   actor.UserID,
	}, position)
	if err != nil {
		return nil, err
	}

	s.invalidate(actor.WorkspaceID, page.Slug)
	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "block.add", "block", block.ID.String(),
		map[string]any{"page_id": page.ID.String(), "type": string(block.Type)})
	return block, nil
}

// DeleteBlock removes a block and its order entry as one unit. Admin only.
func (s *Service) DeleteBlock(actor *auth.Identity, blockID uuid.UUID) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return err
	}

	block, err := s.workspaceBlock(actor, blockID)
	if err != nil {
		return err
	}

	if err := s.blocks.Delete(actor.WorkspaceID, block.ID, actor.UserID); err != nil {
		return err
	}

	s.invalidateBlockPage(actor, block.PageID)
	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "block.delete", "block", block.ID.String(),
		map[string]any{"page_id": block.PageID.String()})
	return nil
}

// DuplicateBlock copies a block's payload and layout into a new block
// placed immediately after the source in page order. The copy's structure
// lock is reset to false. Admin only.
func (s *Service) DuplicateBlock(actor *auth.Identity, blockID uuid.UUID) (*models.Block, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}

	source, err := s.workspaceBlock(actor, blockID)
	if err != nil {
		return nil, err
	}
	page, err := s.workspacePage(actor, source.PageID)
	if err != nil {
		return nil, err
	}

	position := len(page.BlockOrder)
	for i, id := range page.BlockOrder {
		if id == source.ID {
			position = i + 1
			break
		}
	}

	dup, err := s.blocks.Insert(&models.Block{
		WorkspaceID: actor.WorkspaceID,
		PageID:      source.PageID,
		Type:        source.Type,
		Content:     source.Content,
		Layout:      source.Layout,
		CreatedBy:   actor.UserID,
	}, position)
	if err != nil {
		return nil, err
	}

	s.invalidate(actor.WorkspaceID, page.Slug)
	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "block.duplicate", "block", dup.ID.String(),
		map[string]any{"source_id": source.ID.String()})
	return dup, nil
}

// ReorderBlocks replaces a page's block order. The new order must be a
// permutation of exactly the blocks the page currently holds. Admin only.
func (s *Service) ReorderBlocks(actor *auth.Identity, pageID uuid.UUID, order []uuid.UUID) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return err
	}

	page, err := s.workspacePage(actor, pageID)
	if err != nil {
		return err
	}

	if !samePermutation(page.BlockOrder, order) {
		return errs.Invalid("order must contain exactly the page's current blocks")
	}

	if err := s.pages.UpdateBlockOrder(actor.WorkspaceID, page.ID, order, actor.UserID); err != nil {
		return err
	}

	s.invalidate(actor.WorkspaceID, page.Slug)
	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "block.reorder", "page", page.ID.String(), nil)
	return nil
}

// SetBlockLayout replaces a block's layout descriptor. Admin only.
func (s *Service) SetBlockLayout(actor *auth.Identity, blockID uuid.UUID, layout models.BlockLayout) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return err
	}

	block, err := s.workspaceBlock(actor, blockID)
	if err != nil {
		return err
	}

	if err := s.blocks.UpdateLayout(actor.WorkspaceID, block.ID, layout, actor.UserID); err != nil {
		return err
	}

	s.invalidateBlockPage(actor, block.PageID)
	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "block.set_layout", "block", block.ID.String(), nil)
	return nil
}

// SetBlockLock toggles the advisory structure lock. Admin only. The flag
// does not itself block editor content edits; it exists as a UI affordance.
func (s *Service) SetBlockLock(actor *auth.Identity, blockID uuid.UUID, locked bool) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return err
	}

	block, err := s.workspaceBlock(actor, blockID)
	if err != nil {
		return err
	}

	if err := s.blocks.SetLock(actor.WorkspaceID, block.ID, locked, actor.UserID); err != nil {
		return err
	}

	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "block.set_lock", "block", block.ID.String(),
		map[string]any{"locked": locked})
	return nil
}

// UpdateBlockContent replaces a block's content payload. Editor or admin.
// Changing the payload's discriminant is a structural mutation and is
// rejected for editors; text bodies are checked against the block's
// length limit regardless of role, and only admins may change the limit.
func (s *Service) UpdateBlockContent(actor *auth.Identity, blockID uuid.UUID, content models.BlockContent) error {
	if err := auth.RequireEditor(actor); err != nil {
		return err
	}
	if content == nil {
		return errs.Invalid("block content is required")
	}

	block, err := s.workspaceBlock(actor, blockID)
	if err != nil {
		return err
	}

	if content.Type() != block.Type {
		if err := auth.RequireAdmin(actor); err != nil {
			return errs.ErrTypeChangeRequiresAdmin
		}
	} else if newText, ok := content.(models.TextContent); ok {
		if stored, ok := block.Content.(models.TextContent); ok {
			if !actor.Role.Satisfies(models.RoleAdmin) && !sameLimit(newText.MaxLength, stored.MaxLength) {
				return errs.Invalid("changing the text length limit requires admin")
			}
		}
	}

	if err := checkTextLength(content); err != nil {
		return err
	}

	if err := s.blocks.UpdateContent(actor.WorkspaceID, block.ID, content, actor.UserID); err != nil {
		return err
	}

	s.invalidateBlockPage(actor, block.PageID)
	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "block.update_content", "block", block.ID.String(),
		map[string]any{"type": string(content.Type())})
	return nil
}

// workspaceBlock fetches a block and verifies workspace membership.
func (s *Service) workspaceBlock(actor *auth.Identity, blockID uuid.UUID) (*models.Block, error) {
	block, err := s.blocks.FindByID(actor.WorkspaceID, blockID)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, errs.ErrNotFound
	}
	return block, nil
}

func (s *Service) invalidateBlockPage(actor *auth.Identity, pageID uuid.UUID) {
	page, err := s.pages.FindByID(actor.WorkspaceID, pageID)
	if err != nil || page == nil {
		return
	}
	s.invalidate(actor.WorkspaceID, page.Slug)
}

// checkTextLength enforces a text payload's own length limit, counted in
// runes, independent of the actor's role.
func checkTextLength(content models.BlockContent) error {
	text, ok := content.(models.TextContent)
	if !ok {
		return nil
	}
	if text.MaxLength != nil && *text.MaxLength < 0 {
		return errs.Invalid("max length must not be negative")
	}
	if text.MaxLength != nil && utf8.RuneCountInString(text.Body) > *text.MaxLength {
		return errs.ErrContentTooLong
	}
	return nil
}

func sameLimit(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// samePermutation reports whether b rearranges exactly the ids in a.
func samePermutation(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[uuid.UUID]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		seen[id]--
		if seen[id] < 0 {
			return false
		}
	}
	return true
}

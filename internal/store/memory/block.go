package memory

import (
	"github.com/google/uuid"

	"blockpress/internal/errs"
	"blockpress/internal/models"
)

// BlockStore is the in-memory block facet. Insert and Delete adjust the
// owning page's block order in the same critical section, matching the
// database store's transactional splice.
type BlockStore struct {
	s *Store
}

func (bs *BlockStore) Insert(b *models.Block, position int) (*models.Block, error) {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	page, ok := bs.s.pages[b.PageID]
	if !ok || page.WorkspaceID != b.WorkspaceID {
		return nil, errs.ErrNotFound
	}

	stored := *b
	stored.ID = uuid.New()
	stored.UpdatedBy = b.CreatedBy
	stored.CreatedAt = now()
	stored.UpdatedAt = stored.CreatedAt
	bs.s.blocks[stored.ID] = stored

	order := cloneOrder(page.BlockOrder)
	if position < 0 || position > len(order) {
		position = len(order)
	}
	order = append(order[:position], append([]uuid.UUID{stored.ID}, order[position:]...)...)
	page.BlockOrder = order
	page.UpdatedBy = b.CreatedBy
	page.UpdatedAt = now()
	bs.s.pages[page.ID] = page

	out := stored
	return &out, nil
}

func (bs *BlockStore) Delete(workspaceID, id uuid.UUID, updatedBy uuid.UUID) error {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	b, ok := bs.s.blocks[id]
	if !ok || b.WorkspaceID != workspaceID {
		return errs.ErrNotFound
	}
	delete(bs.s.blocks, id)

	page, ok := bs.s.pages[b.PageID]
	if !ok {
		return nil
	}
	order := page.BlockOrder[:0:0]
	for _, entry := range page.BlockOrder {
		if entry != id {
			order = append(order, entry)
		}
	}
	page.BlockOrder = order
	page.UpdatedBy = updatedBy
	page.UpdatedAt = now()
	bs.s.pages[page.ID] = page
	return nil
}

func (bs *BlockStore) FindByID(workspaceID, id uuid.UUID) (*models.Block, error) {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	b, ok := bs.s.blocks[id]
	if !ok || b.WorkspaceID != workspaceID {
		return nil, nil
	}
	return &b, nil
}

func (bs *BlockStore) ListByPage(workspaceID, pageID uuid.UUID) ([]models.Block, error) {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	var out []models.Block
	for _, b := range bs.s.blocks {
		if b.WorkspaceID == workspaceID && b.PageID == pageID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (bs *BlockStore) UpdateContent(workspaceID, id uuid.UUID, content models.BlockContent, updatedBy uuid.UUID) error {
	return bs.update(workspaceID, id, func(b *models.Block) {
		b.Type = content.Type()
		b.Content = content
		b.UpdatedBy = updatedBy
	})
}

func (bs *BlockStore) UpdateLayout(workspaceID, id uuid.UUID, layout models.BlockLayout, updatedBy uuid.UUID) error {
	return bs.update(workspaceID, id, func(b *models.Block) {
		b.Layout = layout
		b.UpdatedBy = updatedBy
	})
}

func (bs *BlockStore) SetLock(workspaceID, id uuid.UUID, locked bool, updatedBy uuid.UUID) error {
	return bs.update(workspaceID, id, func(b *models.Block) {
		b.StructureLocked = locked
		b.UpdatedBy = updatedBy
	})
}

func (bs *BlockStore) update(workspaceID, id uuid.UUID, apply func(*models.Block)) error {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	b, ok := bs.s.blocks[id]
	if !ok || b.WorkspaceID != workspaceID {
		return errs.ErrNotFound
	}
	apply(&b)
	b.UpdatedAt = now()
	bs.s.blocks[id] = b
	return nil
}

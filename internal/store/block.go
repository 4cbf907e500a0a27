package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"blockpress/internal/errs"
	"blockpress/internal/models"
)

const blockColumns = `id, workspace_id, page_id, type, content, layout,
	structure_locked, created_by, updated_by, created_at, updated_at`

// BlockStore handles all block-related database operations. A block row
// exists only while its id is present in the owning page's block_order,
// so inserts and deletes run in one transaction that touches both tables.
type BlockStore struct {
	db *sql.DB
}

// NewBlockStore creates a new BlockStore with the given database connection.
func NewBlockStore(db *sql.DB) *BlockStore {
	return &BlockStore{db: db}
}

func scanBlock(row interface{ Scan(...any) error }) (*models.Block, error) {
	b := &models.Block{}
	var content, layout []byte
	err := row.Scan(
		&b.ID, &b.WorkspaceID, &b.PageID, &b.Type, &content, &layout,
		&b.StructureLocked, &b.CreatedBy, &b.UpdatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(layout, &b.Layout); err != nil {
		return nil, err
	}
	b.Content, err = models.UnmarshalContent(b.Type, content)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Insert creates a block and splices its id into the owning page's
// block_order at the given position (clamped; past-the-end appends).
// The page row is locked for the duration so concurrent order changes
// serialize.
func (s *BlockStore) Insert(b *models.Block, position int) (*models.Block, error) {
	content, err := marshalJSONB(b.Content)
	if err != nil {
		return nil, err
	}
	layout, err := marshalJSONB(b.Layout)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	order, err := lockBlockOrder(tx, b.WorkspaceID, b.PageID)
	if err != nil {
		return nil, err
	}

	created, err := scanBlock(tx.QueryRow(`
		INSERT INTO blocks (workspace_id, page_id, type, content, layout,
		                    structure_locked, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING `+blockColumns,
		b.WorkspaceID, b.PageID, b.Type, content, layout, b.StructureLocked, b.CreatedBy))
	if err != nil {
		return nil, fmt.Errorf("insert block: %w", err)
	}

	if position < 0 || position > len(order) {
		position = len(order)
	}
	order = append(order[:position:position], append([]uuid.UUID{created.ID}, order[position:]...)...)

	if err := writeBlockOrder(tx, b.WorkspaceID, b.PageID, order, b.CreatedBy); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// Delete removes a block and its entry from the page's block_order as one
// unit. Returns errs.ErrNotFound if the block does not exist in the
// workspace.
func (s *BlockStore) Delete(workspaceID, id uuid.UUID, updatedBy uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var pageID uuid.UUID
	err = tx.QueryRow(`
		SELECT page_id FROM blocks WHERE id = $1 AND workspace_id = $2
	`, id, workspaceID).Scan(&pageID)
	if err == sql.ErrNoRows {
		return errs.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find block page: %w", err)
	}

	order, err := lockBlockOrder(tx, workspaceID, pageID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM blocks WHERE id = $1 AND workspace_id = $2`, id, workspaceID); err != nil {
		return fmt.Errorf("delete block: %w", err)
	}

	kept := order[:0]
	for _, bid := range order {
		if bid != id {
			kept = append(kept, bid)
		}
	}

	if err := writeBlockOrder(tx, workspaceID, pageID, kept, updatedBy); err != nil {
		return err
	}

	return tx.Commit()
}

// FindByID retrieves a block scoped to a workspace. Returns nil if the
// block does not exist or belongs to another workspace.
func (s *BlockStore) FindByID(workspaceID, id uuid.UUID) (*models.Block, error) {
	b, err := scanBlock(s.db.QueryRow(`
		SELECT `+blockColumns+` FROM blocks WHERE id = $1 AND workspace_id = $2
	`, id, workspaceID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find block by id: %w", err)
	}
	return b, nil
}

// ListByPage returns all blocks referencing a page, in storage order.
// Rendering order is the page's block_order; callers hydrate from it.
func (s *BlockStore) ListByPage(workspaceID, pageID uuid.UUID) ([]models.Block, error) {
	rows, err := s.db.Query(`
		SELECT `+blockColumns+` FROM blocks
		WHERE page_id = $1 AND workspace_id = $2
	`, pageID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	var blocks []models.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		blocks = append(blocks, *b)
	}
	return blocks, rows.Err()
}

// UpdateContent replaces a block's content payload and discriminant.
func (s *BlockStore) UpdateContent(workspaceID, id uuid.UUID, content models.BlockContent, updatedBy uuid.UUID) error {
	raw, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("encode block content: %w", err)
	}
	_, err = s.db.Exec(`
		UPDATE blocks SET type = $1, content = $2, updated_by = $3, updated_at = NOW()
		WHERE id = $4 AND workspace_id = $5
	`, content.Type(), raw, updatedBy, id, workspaceID)
	if err != nil {
		return fmt.Errorf("update block content: %w", err)
	}
	return nil
}

// UpdateLayout replaces a block's layout descriptor.
func (s *BlockStore) UpdateLayout(workspaceID, id uuid.UUID, layout models.BlockLayout, updatedBy uuid.UUID) error {
	raw, err := marshalJSONB(layout)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		UPDATE blocks SET layout = $1, updated_by = $2, updated_at = NOW()
		WHERE id = $3 AND workspace_id = $4
	`, raw, updatedBy, id, workspaceID)
	if err != nil {
		return fmt.Errorf("update block layout: %w", err)
	}
	return nil
}

// SetLock toggles the advisory structure lock.
func (s *BlockStore) SetLock(workspaceID, id uuid.UUID, locked bool, updatedBy uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE blocks SET structure_locked = $1, updated_by = $2, updated_at = NOW()
		WHERE id = $3 AND workspace_id = $4
	`, locked, updatedBy, id, workspaceID)
	if err != nil {
		return fmt.Errorf("set block lock: %w", err)
	}
	return nil
}

// lockBlockOrder reads a page's block_order under FOR UPDATE, returning
// errs.ErrNotFound if the page is missing from the workspace.
func lockBlockOrder(tx *sql.Tx, workspaceID, pageID uuid.UUID) ([]uuid.UUID, error) {
	var raw []byte
	err := tx.QueryRow(`
		SELECT block_order FROM pages WHERE id = $1 AND workspace_id = $2 FOR UPDATE
	`, pageID, workspaceID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock page order: %w", err)
	}

	var order []uuid.UUID
	if err := unmarshalJSONB(raw, &order); err != nil {
		return nil, err
	}
	return order, nil
}

func writeBlockOrder(tx *sql.Tx, workspaceID, pageID uuid.UUID, order []uuid.UUID, updatedBy uuid.UUID) error {
	raw, err := marshalJSONB(order)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`
		UPDATE pages SET block_order = $1, updated_by = $2, updated_at = NOW()
		WHERE id = $3 AND workspace_id = $4
	`, raw, updatedBy, pageID, workspaceID); err != nil {
		return fmt.Errorf("write page order: %w", err)
	}
	return nil
}

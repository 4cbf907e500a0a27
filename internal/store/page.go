package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blockpress/internal/errs"
	"blockpress/internal/models"
)

const pageColumns = `id, workspace_id, title, slug, status, seo, block_order,
	header_id, footer_id, published_at, created_by, updated_by,
	created_at, updated_at`

// PageStore handles all page-related database operations. Every read and
// write is keyed by workspace so a page is only ever reachable from its
// own tenant.
type PageStore struct {
	db *sql.DB
}

// NewPageStore creates a new PageStore with the given database connection.
func NewPageStore(db *sql.DB) *PageStore {
	return &PageStore{db: db}
}

func scanPage(row interface{ Scan(...any) error }) (*models.Page, error) {
	p := &models.Page{}
	var seo, order []byte
	err := row.Scan(
		&p.ID, &p.WorkspaceID, &p.Title, &p.Slug, &p.Status, &seo, &order,
		&p.HeaderID, &p.FooterID, &p.PublishedAt, &p.CreatedBy, &p.UpdatedBy,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(seo, &p.SEO); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(order, &p.BlockOrder); err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new page in draft status. A slug already held by
// another page in the same workspace surfaces as errs.ErrSlugTaken via
// the unique index, so a concurrent duplicate loses cleanly.
func (s *PageStore) Create(p *models.Page) (*models.Page, error) {
	seo, err := marshalJSONB(p.SEO)
	if err != nil {
		return nil, err
	}

	created, err := scanPage(s.db.QueryRow(`
		INSERT INTO pages (workspace_id, title, slug, seo, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING `+pageColumns,
		p.WorkspaceID, p.Title, p.Slug, seo, p.CreatedBy))
	if violatesUnique(err, "pages_workspace_slug_key") {
		return nil, errs.ErrSlugTaken
	}
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return created, nil
}

// FindByID retrieves a page scoped to a workspace. Returns nil if the page
// does not exist or belongs to another workspace.
func (s *PageStore) FindByID(workspaceID, id uuid.UUID) (*models.Page, error) {
	p, err := scanPage(s.db.QueryRow(`
		SELECT `+pageColumns+` FROM pages WHERE id = $1 AND workspace_id = $2
	`, id, workspaceID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find page by id: %w", err)
	}
	return p, nil
}

// FindPublishedBySlug retrieves a published page by slug within a
// workspace. Drafts and archived pages are invisible here.
func (s *PageStore) FindPublishedBySlug(workspaceID uuid.UUID, slug string) (*models.Page, error) {
	p, err := scanPage(s.db.QueryRow(`
		SELECT `+pageColumns+` FROM pages
		WHERE workspace_id = $1 AND slug = $2 AND status = 'published'
	`, workspaceID, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find published page by slug: %w", err)
	}
	return p, nil
}

// ListByWorkspace returns all pages of a workspace, newest first.
func (s *PageStore) ListByWorkspace(workspaceID uuid.UUID) ([]models.Page, error) {
	return s.list(`
		SELECT `+pageColumns+` FROM pages
		WHERE workspace_id = $1 ORDER BY created_at DESC
	`, workspaceID)
}

// ListPublished returns the published pages of a workspace, most recently
// published first.
func (s *PageStore) ListPublished(workspaceID uuid.UUID) ([]models.Page, error) {
	return s.list(`
		SELECT `+pageColumns+` FROM pages
		WHERE workspace_id = $1 AND status = 'published'
		ORDER BY published_at DESC NULLS LAST
	`, workspaceID)
}

func (s *PageStore) list(query string, args ...any) ([]models.Page, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var pages []models.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, *p)
	}
	return pages, rows.Err()
}

// Update writes the mutable fields of a page. A slug collision surfaces
// as errs.ErrSlugTaken.
func (s *PageStore) Update(p *models.Page) error {
	seo, err := marshalJSONB(p.SEO)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		UPDATE pages SET
			title = $1, slug = $2, seo = $3, header_id = $4, footer_id = $5,
			updated_by = $6, updated_at = NOW()
		WHERE id = $7 AND workspace_id = $8
	`, p.Title, p.Slug, seo, p.HeaderID, p.FooterID, p.UpdatedBy, p.ID, p.WorkspaceID)
	if violatesUnique(err, "pages_workspace_slug_key") {
		return errs.ErrSlugTaken
	}
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}
	return nil
}

// UpdateStatus performs a lifecycle transition, setting or clearing the
// publish timestamp as the service dictates.
func (s *PageStore) UpdateStatus(workspaceID, id uuid.UUID, status models.PageStatus, publishedAt *time.Time, updatedBy uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE pages SET status = $1, published_at = $2, updated_by = $3, updated_at = NOW()
		WHERE id = $4 AND workspace_id = $5
	`, status, publishedAt, updatedBy, id, workspaceID)
	if err != nil {
		return fmt.Errorf("update page status: %w", err)
	}
	return nil
}

// UpdateBlockOrder replaces a page's block ordering.
func (s *PageStore) UpdateBlockOrder(workspaceID, id uuid.UUID, order []uuid.UUID, updatedBy uuid.UUID) error {
	raw, err := marshalJSONB(order)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		UPDATE pages SET block_order = $1, updated_by = $2, updated_at = NOW()
		WHERE id = $3 AND workspace_id = $4
	`, raw, updatedBy, id, workspaceID)
	if err != nil {
		return fmt.Errorf("update block order: %w", err)
	}
	return nil
}

// DeleteCascade removes a page and every block referencing it, children
// first, in a single transaction so an interrupted delete never leaves
// orphaned blocks behind a missing page.
func (s *PageStore) DeleteCascade(workspaceID, id uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM blocks WHERE page_id = $1 AND workspace_id = $2`, id, workspaceID); err != nil {
		return fmt.Errorf("delete page blocks: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM pages WHERE id = $1 AND workspace_id = $2`, id, workspaceID); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}

	return tx.Commit()
}

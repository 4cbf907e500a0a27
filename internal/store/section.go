package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"blockpress/internal/errs"
	"blockpress/internal/models"
)

const sectionColumns = `id, workspace_id, name, slug, type, content_type,
	content, is_default, created_by, updated_by, created_at, updated_at`

// SectionStore handles global-section database operations.
type SectionStore struct {
	db *sql.DB
}

// NewSectionStore creates a new SectionStore with the given database connection.
func NewSectionStore(db *sql.DB) *SectionStore {
	return &SectionStore{db: db}
}

func scanSection(row interface{ Scan(...any) error }) (*models.GlobalSection, error) {
	g := &models.GlobalSection{}
	var content []byte
	err := row.Scan(
		&g.ID, &g.WorkspaceID, &g.Name, &g.Slug, &g.Type, &g.ContentType,
		&content, &g.IsDefault, &g.CreatedBy, &g.UpdatedBy, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.Content, err = models.UnmarshalContent(g.ContentType, content)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Create inserts a new section. When the section is to be the default for
// its type, the previous default is cleared in the same transaction so at
// most one default per (workspace, type) ever exists.
func (s *SectionStore) Create(g *models.GlobalSection) (*models.GlobalSection, error) {
	content, err := marshalJSONB(g.Content)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if g.IsDefault {
		if err := clearDefault(tx, g.WorkspaceID, g.Type); err != nil {
			return nil, err
		}
	}

	created, err := scanSection(tx.QueryRow(`
		INSERT INTO global_sections (workspace_id, name, slug, type, content_type,
		                             content, is_default, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING `+sectionColumns,
		g.WorkspaceID, g.Name, g.Slug, g.Type, g.ContentType, content, g.IsDefault, g.CreatedBy))
	if violatesUnique(err, "global_sections_workspace_slug_key") {
		return nil, errs.ErrSlugTaken
	}
	if violatesUnique(err, "global_sections_default_key") {
		return nil, errs.ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("create section: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// FindByID retrieves a section scoped to a workspace. Returns nil if not
// found there.
func (s *SectionStore) FindByID(workspaceID, id uuid.UUID) (*models.GlobalSection, error) {
	g, err := scanSection(s.db.QueryRow(`
		SELECT `+sectionColumns+` FROM global_sections
		WHERE id = $1 AND workspace_id = $2
	`, id, workspaceID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find section by id: %w", err)
	}
	return g, nil
}

// FindDefault retrieves the default section of a type for a workspace.
// Returns nil if no default is set.
func (s *SectionStore) FindDefault(workspaceID uuid.UUID, sectionType models.SectionType) (*models.GlobalSection, error) {
	g, err := scanSection(s.db.QueryRow(`
		SELECT `+sectionColumns+` FROM global_sections
		WHERE workspace_id = $1 AND type = $2 AND is_default
	`, workspaceID, sectionType))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find default section: %w", err)
	}
	return g, nil
}

// ListByWorkspace returns all sections of a workspace grouped by type.
func (s *SectionStore) ListByWorkspace(workspaceID uuid.UUID) ([]models.GlobalSection, error) {
	rows, err := s.db.Query(`
		SELECT `+sectionColumns+` FROM global_sections
		WHERE workspace_id = $1 ORDER BY type, name
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	var sections []models.GlobalSection
	for rows.Next() {
		g, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, *g)
	}
	return sections, rows.Err()
}

// Update writes a section's name and content payload.
func (s *SectionStore) Update(g *models.GlobalSection) error {
	content, err := marshalJSONB(g.Content)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		UPDATE global_sections SET
			name = $1, content_type = $2, content = $3, updated_by = $4, updated_at = NOW()
		WHERE id = $5 AND workspace_id = $6
	`, g.Name, g.ContentType, content, g.UpdatedBy, g.ID, g.WorkspaceID)
	if err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	return nil
}

// SetDefault makes a section the default for its type, atomically clearing
// the previous default of that type within the workspace.
func (s *SectionStore) SetDefault(workspaceID, id uuid.UUID, updatedBy uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var sectionType models.SectionType
	err = tx.QueryRow(`
		SELECT type FROM global_sections WHERE id = $1 AND workspace_id = $2
	`, id, workspaceID).Scan(&sectionType)
	if err == sql.ErrNoRows {
		return errs.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get section type: %w", err)
	}

	if err := clearDefault(tx, workspaceID, sectionType); err != nil {
		return err
	}

	if _, err := tx.Exec(`
		UPDATE global_sections SET is_default = TRUE, updated_by = $1, updated_at = NOW()
		WHERE id = $2 AND workspace_id = $3
	`, updatedBy, id, workspaceID); err != nil {
		return fmt.Errorf("set default section: %w", err)
	}

	return tx.Commit()
}

// Delete removes a section. Pages referencing it as an override fall back
// to the workspace default on their next hydration.
func (s *SectionStore) Delete(workspaceID, id uuid.UUID) error {
	_, err := s.db.Exec(`
		DELETE FROM global_sections WHERE id = $1 AND workspace_id = $2
	`, id, workspaceID)
	if err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return nil
}

func clearDefault(tx *sql.Tx, workspaceID uuid.UUID, sectionType models.SectionType) error {
	if _, err := tx.Exec(`
		UPDATE global_sections SET is_default = FALSE
		WHERE workspace_id = $1 AND type = $2 AND is_default
	`, workspaceID, sectionType); err != nil {
		return fmt.Errorf("clear default section: %w", err)
	}
	return nil
}

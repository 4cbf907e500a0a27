package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blockpress/internal/models"
)

const apiKeyColumns = `id, workspace_id, name, public_key, secret_hash,
	permissions, allowed_origins, active, expires_at, last_used_at,
	created_by, created_at`

// APIKeyStore handles scoped-credential database operations.
type APIKeyStore struct {
	db *sql.DB
}

// NewAPIKeyStore creates a new APIKeyStore with the given database connection.
func NewAPIKeyStore(db *sql.DB) *APIKeyStore {
	return &APIKeyStore{db: db}
}

func scanAPIKey(row interface{ Scan(...any) error }) (*models.APIKey, error) {
	k := &models.APIKey{}
	var perms, origins []byte
	err := row.Scan(
		&k.ID, &k.WorkspaceID, &k.Name, &k.PublicKey, &k.SecretHash,
		&perms, &origins, &k.Active, &k.ExpiresAt, &k.LastUsedAt,
		&k.CreatedBy, &k.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(perms, &k.Permissions); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(origins, &k.AllowedOrigins); err != nil {
		return nil, err
	}
	return k, nil
}

// Create inserts a new API key. The secret hash is computed by the caller;
// plaintext secrets never reach this layer.
func (s *APIKeyStore) Create(k *models.APIKey) (*models.APIKey, error) {
	perms, err := marshalJSONB(k.Permissions)
	if err != nil {
		return nil, err
	}
	origins, err := marshalJSONB(k.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	created, err := scanAPIKey(s.db.QueryRow(`
		INSERT INTO api_keys (workspace_id, name, public_key, secret_hash,
		                      permissions, allowed_origins, expires_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+apiKeyColumns,
		k.WorkspaceID, k.Name, k.PublicKey, k.SecretHash,
		perms, origins, k.ExpiresAt, k.CreatedBy))
	if err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}
	return created, nil
}

// FindByPublicKey retrieves a key by its public identifier. Returns nil if
// not found.
func (s *APIKeyStore) FindByPublicKey(publicKey string) (*models.APIKey, error) {
	k, err := scanAPIKey(s.db.QueryRow(`
		SELECT `+apiKeyColumns+` FROM api_keys WHERE public_key = $1
	`, publicKey))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find api key: %w", err)
	}
	return k, nil
}

// FindByID retrieves a key by UUID. Returns nil if not found.
func (s *APIKeyStore) FindByID(id uuid.UUID) (*models.APIKey, error) {
	k, err := scanAPIKey(s.db.QueryRow(`
		SELECT `+apiKeyColumns+` FROM api_keys WHERE id = $1
	`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find api key by id: %w", err)
	}
	return k, nil
}

// ListByWorkspace returns all keys of a workspace, newest first.
func (s *APIKeyStore) ListByWorkspace(workspaceID uuid.UUID) ([]models.APIKey, error) {
	rows, err := s.db.Query(`
		SELECT `+apiKeyColumns+` FROM api_keys
		WHERE workspace_id = $1 ORDER BY created_at DESC
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []models.APIKey
	for rows.Next() {
		k, err := scanAPIKey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, *k)
	}
	return keys, rows.Err()
}

// SetActive flips the soft revocation flag.
func (s *APIKeyStore) SetActive(id uuid.UUID, active bool) error {
	_, err := s.db.Exec(`UPDATE api_keys SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set api key active: %w", err)
	}
	return nil
}

// Delete removes a key permanently. Unlike revocation this is irreversible.
func (s *APIKeyStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete api key: %w", err)
	}
	return nil
}

// TouchLastUsed records when the key last authenticated a request.
func (s *APIKeyStore) TouchLastUsed(id uuid.UUID, at time.Time) error {
	_, err := s.db.Exec(`UPDATE api_keys SET last_used_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	return nil
}

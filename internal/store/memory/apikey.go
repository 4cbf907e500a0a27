package memory

import (
	"time"

	"github.com/google/uuid"

	"blockpress/internal/errs"
	"blockpress/internal/models"
)

// APIKeyStore is the in-memory API key facet.
type APIKeyStore struct {
	s *Store
}

func (ks *APIKeyStore) Create(k *models.APIKey) (*models.APIKey, error) {
	ks.s.mu.Lock()
	defer ks.s.mu.Unlock()

	stored := *k
	stored.ID = uuid.New()
	stored.Permissions = cloneStrings(k.Permissions)
	stored.AllowedOrigins = cloneStrings(k.AllowedOrigins)
	stored.Active = true
	stored.CreatedAt = now()
	ks.s.keys[stored.ID] = stored
	return &stored, nil
}

func (ks *APIKeyStore) FindByPublicKey(publicKey string) (*models.APIKey, error) {
	ks.s.mu.Lock()
	defer ks.s.mu.Unlock()

	for _, k := range ks.s.keys {
		if k.PublicKey == publicKey {
			return &k, nil
		}
	}
	return nil, nil
}

func (ks *APIKeyStore) FindByID(id uuid.UUID) (*models.APIKey, error) {
	ks.s.mu.Lock()
	defer ks.s.mu.Unlock()

	k, ok := ks.s.keys[id]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (ks *APIKeyStore) ListByWorkspace(workspaceID uuid.UUID) ([]models.APIKey, error) {
	ks.s.mu.Lock()
	defer ks.s.mu.Unlock()

	var out []models.APIKey
	for _, k := range ks.s.keys {
		if k.WorkspaceID == workspaceID {
			out = append(out, k)
		}
	}
	return out, nil
}

func (ks *APIKeyStore) SetActive(id uuid.UUID, active bool) error {
	ks.s.mu.Lock()
	defer ks.s.mu.Unlock()

	k, ok := ks.s.keys[id]
	if !ok {
		return errs.ErrNotFound
	}
	k.Active = active
	ks.s.keys[id] = k
	return nil
}

func (ks *APIKeyStore) Delete(id uuid.UUID) error {
	ks.s.mu.Lock()
	defer ks.s.mu.Unlock()

	delete(ks.s.keys, id)
	return nil
}

func (ks *APIKeyStore) TouchLastUsed(id uuid.UUID, at time.Time) error {
	ks.s.mu.Lock()
	defer ks.s.mu.Unlock()

	k, ok := ks.s.keys[id]
	if !ok {
		return errs.ErrNotFound
	}
	k.LastUsedAt = &at
	ks.s.keys[id] = k
	return nil
}

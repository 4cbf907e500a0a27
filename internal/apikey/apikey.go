// Package apikey implements the scoped-credential path for external
// read-only consumers: key issuance, soft revocation, and (key, secret)
// validation against a stored hash. It is independent of user sessions.
package apikey

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"blockpress/internal/audit"
	"blockpress/internal/auth"
	"blockpress/internal/errs"
	"blockpress/internal/models"
)

// keyPrefix identifies blockpress public keys at a glance.
const keyPrefix = "bp_"

// Keys is the persistence the service consumes.
type Keys interface {
	Create(k *models.APIKey) (*models.APIKey, error)
	FindByPublicKey(publicKey string) (*models.APIKey, error)
	FindByID(id uuid.UUID) (*models.APIKey, error)
	ListByWorkspace(workspaceID uuid.UUID) ([]models.APIKey, error)
	SetActive(id uuid.UUID, active bool) error
	Delete(id uuid.UUID) error
	TouchLastUsed(id uuid.UUID, at time.Time) error
}

// SecretHasher hashes and verifies API key secrets. Swapping the
// algorithm must not change this interface.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Verify(hash, secret string) bool
}

// Service manages the API key lifecycle and validates scoped credentials.
type Service struct {
	keys     Keys
	hasher   SecretHasher
	auditLog *audit.Logger
}

// New creates an apikey Service. The default hasher is bcrypt via the
// auth package's password hasher, which satisfies SecretHasher.
func New(keys Keys, auditLog *audit.Logger) *Service {
	return &Service{keys: keys, hasher: auth.BcryptHasher{}, auditLog: auditLog}
}

// CreatedKey carries the plaintext secret exactly once, at creation.
// There is no retrieval path for it afterward.
type CreatedKey struct {
	models.APIKey
	Secret string `json:"secret"`
}

// Create issues a new key for the actor's workspace. Admin only.
func (s *Service) Create(actor *auth.Identity, name string, permissions, allowedOrigins []string, expiresInDays int) (*CreatedKey, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.Invalid("key name is required")
	}
	if len(permissions) == 0 {
		permissions = []string{models.PermPagesRead}
	}
	if expiresInDays < 0 {
		return nil, errs.Invalid("expiry must not be in the past")
	}

	publicKey, err := randomHex(16)
	if err != nil {
		return nil, fmt.Errorf("generate public key: %w", err)
	}
	secret, err := randomHex(32)
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}
	secretHash, err := s.hasher.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}

	key := &models.APIKey{
		WorkspaceID:    actor.WorkspaceID,
		Name:           name,
		PublicKey:      keyPrefix + publicKey,
		SecretHash:     secretHash,
		Permissions:    permissions,
		AllowedOrigins: allowedOrigins,
		CreatedBy:      actor.UserID,
	}
	if expiresInDays > 0 {
		t := time.Now().AddDate(0, 0, expiresInDays)
		key.ExpiresAt = &t
	}

	created, err := s.keys.Create(key)
	if err != nil {
		return nil, err
	}

	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "apikey.create", "api_key", created.ID.String(),
		map[string]any{"permissions": permissions})
	return &CreatedKey{APIKey: *created, Secret: secret}, nil
}

// List returns the actor's workspace keys. Admin only. Secrets are not
// part of the model, so nothing sensitive can leak here.
func (s *Service) List(actor *auth.Identity) ([]models.APIKey, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	return s.keys.ListByWorkspace(actor.WorkspaceID)
}

// Revoke soft-disables a key. Admin only. Reversible via the stored row,
// unlike Delete.
func (s *Service) Revoke(actor *auth.Identity, id uuid.UUID) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return err
	}
	key, err := s.workspaceKey(actor, id)
	if err != nil {
		return err
	}
	if err := s.keys.SetActive(key.ID, false); err != nil {
		return err
	}
	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "apikey.revoke", "api_key", key.ID.String(), nil)
	return nil
}

// Delete removes a key permanently. Admin only. Irreversible.
func (s *Service) Delete(actor *auth.Identity, id uuid.UUID) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return err
	}
	key, err := s.workspaceKey(actor, id)
	if err != nil {
		return err
	}
	if err := s.keys.Delete(key.ID); err != nil {
		return err
	}
	s.auditLog.Record(&actor.WorkspaceID, actor.UserID, "apikey.delete", "api_key", key.ID.String(), nil)
	return nil
}

// Validate authenticates a (key, secret) pair against a required
// permission and returns the key so the transport can scope reads to its
// workspace and consult the origin allow-list. The failure order is
// fixed: unknown key, revoked, expired, secret mismatch, then missing
// permission.
func (s *Service) Validate(publicKey, secret, requiredPermission string) (*models.APIKey, error) {
	key, err := s.keys.FindByPublicKey(publicKey)
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, errs.ErrInvalidKey
	}
	if !key.Active {
		return nil, errs.ErrKeyRevoked
	}
	if key.Expired(time.Now()) {
		return nil, errs.ErrKeyExpired
	}
	if !s.hasher.Verify(key.SecretHash, secret) {
		return nil, errs.ErrInvalidSecret
	}
	if !key.HasPermission(requiredPermission) {
		return nil, errs.ErrInsufficientPermission
	}

	if err := s.keys.TouchLastUsed(key.ID, time.Now()); err != nil {
		slog.Warn("failed to touch api key", "key_id", key.ID, "error", err)
	}
	return key, nil
}

// workspaceKey fetches a key and verifies workspace membership. A key in
// another workspace reads as not found.
func (s *Service) workspaceKey(actor *auth.Identity, id uuid.UUID) (*models.APIKey, error) {
	key, err := s.keys.FindByID(id)
	if err != nil {
		return nil, err
	}
	if key == nil || key.WorkspaceID != actor.WorkspaceID {
		return nil, errs.ErrNotFound
	}
	return key, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

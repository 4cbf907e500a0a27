package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Permission strings checked by exact membership against a key's
// permission set. No wildcard or hierarchy semantics.
const (
	PermPagesRead    = "pages:read"
	PermSectionsRead = "sections:read"
)

// APIKey is a scoped credential for external read-only consumers.
// The secret is returned in plaintext exactly once at creation; only
// its hash is persisted.
type APIKey struct {
	ID             uuid.UUID  `json:"id"`
	WorkspaceID    uuid.UUID  `json:"workspace_id"`
	Name           string     `json:"name"`
	PublicKey      string     `json:"public_key"`
	SecretHash     string     `json:"-"` // Never expose
	Permissions    []string   `json:"permissions"`
	AllowedOrigins []string   `json:"allowed_origins,omitempty"`
	Active         bool       `json:"active"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	LastUsedAt     *time.Time `json:"last_used_at,omitempty"`
	CreatedBy      uuid.UUID  `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
}

// HasPermission reports whether the key grants the given permission string.
func (k *APIKey) HasPermission(perm string) bool {
	return slices.Contains(k.Permissions, perm)
}

// Expired reports whether the key is past its optional expiry.
func (k *APIKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}

// OriginAllowed reports whether the given Origin header value is permitted.
// An empty allow-list permits every origin. Enforcement is a transport
// concern; this is just the membership check the transport consults.
func (k *APIKey) OriginAllowed(origin string) bool {
	if len(k.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(k.AllowedOrigins, origin)
}

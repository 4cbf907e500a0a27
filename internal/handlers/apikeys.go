package handlers

import (
	"net/http"

	"blockpress/internal/apikey"
	"blockpress/internal/middleware"
)

// APIKeys groups the key management endpoints. Key validation for the
// external read path lives in the External handler group.
type APIKeys struct {
	svc *apikey.Service
}

// NewAPIKeys creates a new APIKeys handler group.
func NewAPIKeys(svc *apikey.Service) *APIKeys {
	return &APIKeys{svc: svc}
}

type createKeyRequest struct {
	Name           string   `json:"name"`
	Permissions    []string `json:"permissions,omitempty"`
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
	ExpiresInDays  int      `json:"expires_in_days,omitempty"`
}

// Create issues a new key. The response carries the plaintext secret;
// it is never retrievable again.
func (k *APIKeys) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	var req createKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	created, err := k.svc.Create(identity, req.Name, req.Permissions, req.AllowedOrigins, req.ExpiresInDays)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// List returns the workspace's keys, hashes excluded.
func (k *APIKeys) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	keys, err := k.svc.List(identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

// Revoke soft-disables a key. Revoked keys fail validation but remain
// listed for audit purposes.
func (k *APIKeys) Revoke(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	keyID, err := pathUUID(r, "keyID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := k.svc.Revoke(identity, keyID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Delete permanently removes a key.
func (k *APIKeys) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	keyID, err := pathUUID(r, "keyID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := k.svc.Delete(identity, keyID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

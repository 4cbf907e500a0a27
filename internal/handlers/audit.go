package handlers

import (
	"net/http"
	"strconv"

	"blockpress/internal/audit"
	"blockpress/internal/auth"
	"blockpress/internal/middleware"
)

// Audit exposes the workspace audit trail, read-only.
type Audit struct {
	log *audit.Logger
}

// NewAudit creates a new Audit handler group.
func NewAudit(log *audit.Logger) *Audit {
	return &Audit{log: log}
}

// Recent returns the newest audit entries for the caller's workspace.
// Admin only; the trail records who did what and is not for editors.
func (a *Audit) Recent(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())
	if err := auth.RequireAdmin(identity); err != nil {
		writeError(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := a.log.Recent(identity.WorkspaceID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

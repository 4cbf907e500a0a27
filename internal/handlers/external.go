package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"blockpress/internal/apikey"
	"blockpress/internal/content"
	"blockpress/internal/errs"
	"blockpress/internal/models"
)

// External groups the API-key read path for headless consumers. The key's
// workspace scopes every read; there is no way to name another tenant.
type External struct {
	keys  *apikey.Service
	svc   *content.Service
	cache PageCacher
}

// NewExternal creates a new External handler group. cache may be nil.
func NewExternal(keys *apikey.Service, svc *content.Service, cache PageCacher) *External {
	return &External{keys: keys, svc: svc, cache: cache}
}

// authenticate validates the key headers and the Origin allow-list,
// returning the key whose workspace scopes the request.
func (e *External) authenticate(r *http.Request, permission string) (*models.APIKey, error) {
	key, err := e.keys.Validate(
		r.Header.Get("X-API-Key"),
		r.Header.Get("X-API-Secret"),
		permission,
	)
	if err != nil {
		return nil, err
	}
	if origin := r.Header.Get("Origin"); origin != "" && !key.OriginAllowed(origin) {
		return nil, errs.ErrOriginNotAllowed
	}
	return key, nil
}

// GetPage serves a published page's hydrated rendition to a key holding
// pages:read.
func (e *External) GetPage(w http.ResponseWriter, r *http.Request) {
	key, err := e.authenticate(r, models.PermPagesRead)
	if err != nil {
		writeError(w, err)
		return
	}
	slug := chi.URLParam(r, "slug")

	if e.cache != nil {
		if cached, ok := e.cache.Get(r.Context(), key.WorkspaceID, slug); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
	}

	page, err := e.svc.PublishedBySlug(key.WorkspaceID, slug)
	if err != nil {
		writeError(w, err)
		return
	}

	payload, err := json.Marshal(page)
	if err != nil {
		slog.Error("page rendition encode failed", "slug", slug, "error", err)
		writeError(w, errs.ErrNotFound)
		return
	}
	if e.cache != nil {
		e.cache.Set(r.Context(), key.WorkspaceID, slug, payload)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// ListPages serves the key's workspace's published pages.
func (e *External) ListPages(w http.ResponseWriter, r *http.Request) {
	key, err := e.authenticate(r, models.PermPagesRead)
	if err != nil {
		writeError(w, err)
		return
	}

	pages, err := e.svc.ListPublished(key.WorkspaceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

// ListSections serves the workspace's global sections to a key holding
// sections:read.
func (e *External) ListSections(w http.ResponseWriter, r *http.Request) {
	key, err := e.authenticate(r, models.PermSectionsRead)
	if err != nil {
		writeError(w, err)
		return
	}

	sections, err := e.svc.SectionsForWorkspace(key.WorkspaceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blockpress/internal/content"
	"blockpress/internal/errs"
)

// PageCacher is the published-rendition cache the public path consults
// before touching the database.
type PageCacher interface {
	Get(ctx context.Context, workspaceID uuid.UUID, slug string) ([]byte, bool)
	Set(ctx context.Context, workspaceID uuid.UUID, slug string, payload []byte)
}

// Public groups the anonymous read endpoints. Only published pages are
// reachable here; the hydrated rendition is cached in Valkey and the
// cache degrades to the database when unavailable.
type Public struct {
	svc   *content.Service
	cache PageCacher
}

// NewPublic creates a new Public handler group. cache may be nil when no
// cache is configured.
func NewPublic(svc *content.Service, cache PageCacher) *Public {
	return &Public{svc: svc, cache: cache}
}

// GetPage serves the hydrated rendition of a published page, cache first.
func (p *Public) GetPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	workspaceID, err := pathUUID(r, "workspaceID")
	if err != nil {
		writeError(w, err)
		return
	}
	slug := chi.URLParam(r, "slug")

	if p.cache != nil {
		if cached, ok := p.cache.Get(ctx, workspaceID, slug); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
	}

	page, err := p.svc.PublishedBySlug(workspaceID, slug)
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
	if p.cache != nil {
		p.cache.Set(ctx, workspaceID, slug, payload)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// ListPages serves the published pages of a workspace, without blocks.
func (p *Public) ListPages(w http.ResponseWriter, r *http.Request) {
	workspaceID, err := pathUUID(r, "workspaceID")
	if err != nil {
		writeError(w, err)
		return
	}

	pages, err := p.svc.ListPublished(workspaceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

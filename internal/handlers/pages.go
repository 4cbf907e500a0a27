package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"blockpress/internal/auth"
	"blockpress/internal/content"
	"blockpress/internal/middleware"
	"blockpress/internal/models"
)

// Pages groups the page management endpoints.
type Pages struct {
	svc *content.Service
}

// NewPages creates a new Pages handler group.
func NewPages(svc *content.Service) *Pages {
	return &Pages{svc: svc}
}

type createPageRequest struct {
	Title string `json:"title"`
	Slug  string `json:"slug,omitempty"`
}

// Create makes a new draft page.
func (p *Pages) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	var req createPageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	page, err := p.svc.CreatePage(identity, req.Title, req.Slug)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, page)
}

// List returns every page in the caller's workspace.
func (p *Pages) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	pages, err := p.svc.ListPages(identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pages)
}

// Get returns a page with its blocks hydrated in order, any status.
func (p *Pages) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	pageID, err := pathUUID(r, "pageID")
	if err != nil {
		writeError(w, err)
		return
	}

	page, err := p.svc.GetPage(identity, pageID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// optionalRef distinguishes an absent JSON field from an explicit null:
// absent leaves the reference unchanged, null clears it.
type optionalRef struct {
	set   bool
	value *uuid.UUID
}

func (o *optionalRef) UnmarshalJSON(data []byte) error {
	o.set = true
	if string(data) == "null" {
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.value = &id
	return nil
}

type updatePageRequest struct {
	Title    *string         `json:"title"`
	Slug     *string         `json:"slug"`
	SEO      *models.SEOMeta `json:"seo"`
	HeaderID optionalRef     `json:"header_id"`
	FooterID optionalRef     `json:"footer_id"`
}

// Update applies a partial patch to a page's fields.
func (p *Pages) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	pageID, err := pathUUID(r, "pageID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req updatePageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	upd := models.PageUpdate{
		Title: req.Title,
		Slug:  req.Slug,
		SEO:   req.SEO,
	}
	if req.HeaderID.set {
		upd.HeaderID = &req.HeaderID.value
	}
	if req.FooterID.set {
		upd.FooterID = &req.FooterID.value
	}

	page, err := p.svc.UpdatePage(identity, pageID, upd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// Publish moves a page to published.
func (p *Pages) Publish(w http.ResponseWriter, r *http.Request) {
	p.transition(w, r, p.svc.PublishPage)
}

// Unpublish moves a published page back to draft.
func (p *Pages) Unpublish(w http.ResponseWriter, r *http.Request) {
	p.transition(w, r, p.svc.UnpublishPage)
}

// Archive moves a page to archived.
func (p *Pages) Archive(w http.ResponseWriter, r *http.Request) {
	p.transition(w, r, p.svc.ArchivePage)
}

func (p *Pages) transition(w http.ResponseWriter, r *http.Request, do func(*auth.Identity, uuid.UUID) error) {
	identity := middleware.IdentityFromCtx(r.Context())

	pageID, err := pathUUID(r, "pageID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := do(identity, pageID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Delete removes a page and all of its blocks.
func (p *Pages) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	pageID, err := pathUUID(r, "pageID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := p.svc.DeletePage(identity, pageID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type reorderRequest struct {
	Order []uuid.UUID `json:"order"`
}

// Reorder replaces a page's block order with a permutation of its blocks.
func (p *Pages) Reorder(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	pageID, err := pathUUID(r, "pageID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := p.svc.ReorderBlocks(identity, pageID, req.Order); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

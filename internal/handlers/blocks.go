package handlers

import (
	"encoding/json"
	"net/http"

	"blockpress/internal/content"
	"blockpress/internal/errs"
	"blockpress/internal/middleware"
	"blockpress/internal/models"
)

// Blocks groups the block endpoints.
type Blocks struct {
	svc *content.Service
}

// NewBlocks creates a new Blocks handler group.
func NewBlocks(svc *content.Service) *Blocks {
	return &Blocks{svc: svc}
}

// contentPayload is the wire form of a discriminated content payload.
type contentPayload struct {
	Type    models.BlockType `json:"type"`
	Content json.RawMessage  `json:"content"`
}

func (p contentPayload) decode() (models.BlockContent, error) {
	if !p.Type.Valid() {
		return nil, errs.Invalid("unknown block type %q", p.Type)
	}
	if len(p.Content) == 0 {
		return nil, errs.Invalid("content payload is required")
	}
	decoded, err := models.UnmarshalContent(p.Type, p.Content)
	if err != nil {
		return nil, errs.Invalid("%v", err)
	}
	return decoded, nil
}

type addBlockRequest struct {
	contentPayload
	Layout   models.BlockLayout `json:"layout"`
	Position *int               `json:"position,omitempty"`
}

// Add creates a block on a page, appended unless a position is given.
func (b *Blocks) Add(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	pageID, err := pathUUID(r, "pageID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req addBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	payload, err := req.decode()
	if err != nil {
		writeError(w, err)
		return
	}
	position := -1
	if req.Position != nil {
		position = *req.Position
	}

	block, err := b.svc.AddBlock(identity, pageID, payload, req.Layout, position)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

// UpdateContent replaces a block's content payload.
func (b *Blocks) UpdateContent(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	blockID, err := pathUUID(r, "blockID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req contentPayload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	payload, err := req.decode()
	if err != nil {
		writeError(w, err)
		return
	}

	if err := b.svc.UpdateBlockContent(identity, blockID, payload); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type layoutRequest struct {
	Layout models.BlockLayout `json:"layout"`
}

// UpdateLayout replaces a block's layout descriptor.
func (b *Blocks) UpdateLayout(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	blockID, err := pathUUID(r, "blockID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req layoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := b.svc.SetBlockLayout(identity, blockID, req.Layout); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type lockRequest struct {
	Locked bool `json:"locked"`
}

// SetLock toggles a block's structure lock.
func (b *Blocks) SetLock(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	blockID, err := pathUUID(r, "blockID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req lockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := b.svc.SetBlockLock(identity, blockID, req.Locked); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Duplicate copies a block immediately after itself in page order.
func (b *Blocks) Duplicate(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	blockID, err := pathUUID(r, "blockID")
	if err != nil {
		writeError(w, err)
		return
	}

	block, err := b.svc.DuplicateBlock(identity, blockID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

// Delete removes a block from its page.
func (b *Blocks) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	blockID, err := pathUUID(r, "blockID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := b.svc.DeleteBlock(identity, blockID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

package handlers

import (
	"net/http"

	"blockpress/internal/content"
	"blockpress/internal/middleware"
	"blockpress/internal/models"
)

// Sections groups the global-section endpoints.
type Sections struct {
	svc *content.Service
}

// NewSections creates a new Sections handler group.
func NewSections(svc *content.Service) *Sections {
	return &Sections{svc: svc}
}

type createSectionRequest struct {
	contentPayload
	Name      string             `json:"name"`
	Slug      string             `json:"slug,omitempty"`
	Section   models.SectionType `json:"section_type"`
	IsDefault bool               `json:"is_default,omitempty"`
}

// Create adds a reusable section to the workspace.
func (s *Sections) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	var req createSectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	payload, err := req.decode()
	if err != nil {
		writeError(w, err)
		return
	}

	section, err := s.svc.CreateSection(identity, req.Name, req.Slug, req.Section, payload, req.IsDefault)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, section)
}

// List returns the workspace's sections.
func (s *Sections) List(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	sections, err := s.svc.ListSections(identity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

// Get returns a single section.
func (s *Sections) Get(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	sectionID, err := pathUUID(r, "sectionID")
	if err != nil {
		writeError(w, err)
		return
	}

	section, err := s.svc.GetSection(identity, sectionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, section)
}

type updateSectionRequest struct {
	contentPayload
	Name string `json:"name"`
}

// Update replaces a section's name and content.
func (s *Sections) Update(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	sectionID, err := pathUUID(r, "sectionID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateSectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	payload, err := req.decode()
	if err != nil {
		writeError(w, err)
		return
	}

	section, err := s.svc.UpdateSection(identity, sectionID, req.Name, payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, section)
}

// SetDefault promotes a section to the workspace default for its type.
func (s *Sections) SetDefault(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	sectionID, err := pathUUID(r, "sectionID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.svc.SetDefaultSection(identity, sectionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Delete removes a section.
func (s *Sections) Delete(w http.ResponseWriter, r *http.Request) {
	identity := middleware.IdentityFromCtx(r.Context())

	sectionID, err := pathUUID(r, "sectionID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.svc.DeleteSection(identity, sectionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// SectionType categorizes a global section. At most one section per
// (workspace, type) may be the default.
type SectionType string

const (
	SectionTypeHeader SectionType = "header"
	SectionTypeFooter SectionType = "footer"
	SectionTypeCTA    SectionType = "cta"
	SectionTypeCustom SectionType = "custom"
)

// Valid reports whether the section type is one of the known values.
func (t SectionType) Valid() bool {
	switch t {
	case SectionTypeHeader, SectionTypeFooter, SectionTypeCTA, SectionTypeCustom:
		return true
	}
	return false
}

// GlobalSection is reusable content (header, footer, cta) applied to pages
// that declare no explicit override. It carries the same discriminated
// content payload as blocks.
type GlobalSection struct {
	ID          uuid.UUID    `json:"id"`
	WorkspaceID uuid.UUID    `json:"workspace_id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Type        SectionType  `json:"type"`
	ContentType BlockType    `json:"content_type"`
	Content     BlockContent `json:"content"`
	IsDefault   bool         `json:"is_default"`
	CreatedBy   uuid.UUID    `json:"created_by"`
	UpdatedBy   uuid.UUID    `json:"updated_by"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// PageStatus represents the publishing state of a page.
type PageStatus string

const (
	PageStatusDraft     PageStatus = "draft"
	PageStatusPublished PageStatus = "published"
	PageStatusArchived  PageStatus = "archived"
)

// SEOMeta holds per-page metadata for search engines and link previews.
type SEOMeta struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	OGImageURL  string `json:"og_image_url,omitempty"`
	NoIndex     bool   `json:"no_index,omitempty"`
}

// Page is a workspace-scoped document composed of ordered blocks.
// BlockOrder is authoritative for rendering order: it is always a
// permutation of exactly the block ids that reference the page.
type Page struct {
	ID          uuid.UUID   `json:"id"`
	WorkspaceID uuid.UUID   `json:"workspace_id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Status      PageStatus  `json:"status"`
	SEO         SEOMeta     `json:"seo"`
	BlockOrder  []uuid.UUID `json:"block_order"`
	HeaderID    *uuid.UUID  `json:"header_id,omitempty"` // GlobalSection override
	FooterID    *uuid.UUID  `json:"footer_id,omitempty"` // GlobalSection override
	PublishedAt *time.Time  `json:"published_at,omitempty"`
	CreatedBy   uuid.UUID   `json:"created_by"`
	UpdatedBy   uuid.UUID   `json:"updated_by"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// IsPublished returns true if the page is publicly visible.
func (p *Page) IsPublished() bool {
	return p.Status == PageStatusPublished
}

// PageUpdate carries optional field changes for a page. Nil pointers mean
// "leave unchanged", so omitted and explicitly-empty values stay
// distinguishable contracts rather than a shallow patch merge.
type PageUpdate struct {
	Title    *string
	Slug     *string
	SEO      *SEOMeta
	HeaderID **uuid.UUID // Outer nil = unchanged, inner nil = clear override
	FooterID **uuid.UUID
}

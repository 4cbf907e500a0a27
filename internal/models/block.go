package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// BlockType is the discriminant of a block's content payload. Changing it
// is a structural mutation.
type BlockType string

const (
	BlockTypeHero  BlockType = "hero"
	BlockTypeText  BlockType = "text"
	BlockTypeImage BlockType = "image"
	BlockTypeCTA   BlockType = "cta"
)

// Valid reports whether the block type is one of the known variants.
func (t BlockType) Valid() bool {
	switch t {
	case BlockTypeHero, BlockTypeText, BlockTypeImage, BlockTypeCTA:
		return true
	}
	return false
}

// BlockContent is the closed set of content payload variants. The
// unexported method keeps the union sealed to this package so dispatch
// can be exhaustive.
type BlockContent interface {
	Type() BlockType
	blockContent()
}

// HeroContent is a full-width banner with heading and optional call to action.
type HeroContent struct {
	Heading    string `json:"heading"`
	Subheading string `json:"subheading,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
	CTALabel   string `json:"cta_label,omitempty"`
	CTAURL     string `json:"cta_url,omitempty"`
}

// TextContent is a body of text with an optional length limit. MaxLength
// constrains content updates regardless of the actor's role; changing the
// limit itself is a structural edit.
type TextContent struct {
	Body      string `json:"body"`
	MaxLength *int   `json:"max_length,omitempty"`
}

// ImageContent is a single image with alt text and caption.
type ImageContent struct {
	URL     string `json:"url"`
	Alt     string `json:"alt,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// CTAContent is a standalone call-to-action button or banner.
type CTAContent struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	Style string `json:"style,omitempty"`
}

func (HeroContent) Type() BlockType  { return BlockTypeHero }
func (TextContent) Type() BlockType  { return BlockTypeText }
func (ImageContent) Type() BlockType { return BlockTypeImage }
func (CTAContent) Type() BlockType   { return BlockTypeCTA }

func (HeroContent) blockContent()  {}
func (TextContent) blockContent()  {}
func (ImageContent) blockContent() {}
func (CTAContent) blockContent()   {}

// UnmarshalContent decodes a raw JSON payload into the concrete variant
// for the given block type.
func UnmarshalContent(t BlockType, raw json.RawMessage) (BlockContent, error) {
	switch t {
	case BlockTypeHero:
		var c HeroContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode hero content: %w", err)
		}
		return c, nil
	case BlockTypeText:
		var c TextContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode text content: %w", err)
		}
		return c, nil
	case BlockTypeImage:
		var c ImageContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode image content: %w", err)
		}
		return c, nil
	case BlockTypeCTA:
		var c CTAContent
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("decode cta content: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown block type %q", t)
	}
}

// BlockLayout is the structural layout descriptor of a block.
// Mutating it requires the admin role.
type BlockLayout struct {
	Width      string `json:"width,omitempty"`   // e.g. "full", "narrow"
	Padding    string `json:"padding,omitempty"` // e.g. "none", "md", "lg"
	Background string `json:"background,omitempty"`
}

// Block is a unit of page content. Type, Layout, position in the page's
// BlockOrder, and the structure lock are structural (admin-only); the
// fields inside Content are editable by editors.
type Block struct {
	ID              uuid.UUID    `json:"id"`
	WorkspaceID     uuid.UUID    `json:"workspace_id"`
	PageID          uuid.UUID    `json:"page_id"`
	Type            BlockType    `json:"type"`
	Content         BlockContent `json:"content"`
	Layout          BlockLayout  `json:"layout"`
	StructureLocked bool         `json:"structure_locked"`
	CreatedBy       uuid.UUID    `json:"created_by"`
	UpdatedBy       uuid.UUID    `json:"updated_by"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

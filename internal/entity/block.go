package entity

import "strings"

type BlockType string

const (
	BlockTypeText         BlockType = "text"
	BlockTypeImage        BlockType = "image"
	BlockTypeSurvey       BlockType = "survey"
	BlockTypeAnnouncement BlockType = "announcement"
)

// ContentBlock is one unit of popup content. Type selects the variant; the
// remaining fields are populated per variant:
//
//	text:         Content
//	image:        URI
//	survey:       Title, Items (option labels; an item's index is its identity)
//	announcement: Title, Content
//
// Block order is authoring order and must round-trip exactly.
type ContentBlock struct {
	ID      string    `json:"id,omitempty"`
	Type    BlockType `json:"type"`
	Content string    `json:"content,omitempty"`
	URI     string    `json:"uri,omitempty"`
	Title   string    `json:"title,omitempty"`
	Items   []string  `json:"items,omitempty"`
}

// IsEmpty reports whether the block carries no displayable content.
func (b ContentBlock) IsEmpty() bool {
	switch b.Type {
	case BlockTypeText:
		return strings.TrimSpace(b.Content) == ""
	case BlockTypeImage:
		return strings.TrimSpace(b.URI) == ""
	case BlockTypeSurvey:
		return strings.TrimSpace(b.Title) == "" && len(b.Items) == 0
	case BlockTypeAnnouncement:
		return strings.TrimSpace(b.Title) == "" && strings.TrimSpace(b.Content) == ""
	default:
		return true
	}
}

// DeriveTextContent concatenates the contents of all text blocks. The result
// is denormalized alongside the blocks for search and previews; it is never
// authoritative.
func DeriveTextContent(blocks []ContentBlock) string {
	var parts []string
	for _, block := range blocks {
		if block.Type == BlockTypeText && strings.TrimSpace(block.Content) != "" {
			parts = append(parts, block.Content)
		}
	}
	return strings.Join(parts, "\n")
}

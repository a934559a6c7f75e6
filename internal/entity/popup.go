package entity

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// URL call-to-action label semantics.
const (
	URLTypeLink = "link"
	URLTypeRSVP = "rsvp"
)

// Screen identifiers a popup can be displayed on.
const (
	PageHome    = "home"
	PageCircles = "circles"
	PageBoard   = "board"
	PageProfile = "profile"
	DefaultPage = PageHome
)

// Popup is one admin-authored campaign. Enabled is the single source of truth
// for display eligibility; ManualOverride suspends automatic date-driven
// control when set.
type Popup struct {
	ID              uint                              `gorm:"primaryKey" json:"id"`
	Title           string                            `gorm:"size:255" json:"title"`
	ContentBlocks   datatypes.JSONSlice[ContentBlock] `gorm:"type:jsonb" json:"content_blocks"`
	TextContent     string                            `gorm:"type:text" json:"text_content"`
	URL             string                            `gorm:"type:text" json:"url"`
	URLType         string                            `gorm:"size:20;default:link" json:"url_type"`
	StartDate       *datatypes.Date                   `gorm:"type:date" json:"start_date"`
	EndDate         *datatypes.Date                   `gorm:"type:date" json:"end_date"`
	DisplayPage     string                            `gorm:"size:50;default:home" json:"display_page"`
	Enabled         bool                              `gorm:"default:true" json:"enabled"`
	ManualOverride  bool                              `gorm:"default:false" json:"manual_override"`
	IsFeatured      bool                              `gorm:"default:false" json:"is_featured"`
	SurveyResponses SurveyResponses                   `gorm:"type:jsonb" json:"survey_responses"`
	CreatedAt       time.Time                         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time                         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Popup) TableName() string {
	return "popups"
}

// HasSurvey reports whether any content block is a survey.
func (p *Popup) HasSurvey() bool {
	for _, block := range p.ContentBlocks {
		if block.Type == BlockTypeSurvey {
			return true
		}
	}
	return false
}

// SurveyBlocks returns the survey blocks in authoring order.
func (p *Popup) SurveyBlocks() []ContentBlock {
	var surveys []ContentBlock
	for _, block := range p.ContentBlocks {
		if block.Type == BlockTypeSurvey {
			surveys = append(surveys, block)
		}
	}
	return surveys
}

// IsEmpty reports whether the popup has nothing to display. An empty popup is
// never surfaced to a user.
func (p *Popup) IsEmpty() bool {
	return len(p.ContentBlocks) == 0 &&
		strings.TrimSpace(p.URL) == "" &&
		strings.TrimSpace(p.Title) == ""
}

// Page returns the normalized display page, defaulting to home when blank.
func (p *Popup) Page() string {
	page := strings.TrimSpace(p.DisplayPage)
	if page == "" {
		return DefaultPage
	}
	return strings.ToLower(page)
}

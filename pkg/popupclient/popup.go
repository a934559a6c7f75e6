// Package popupclient is the device-side half of the popup subsystem: it
// fetches the reconciled popup list, decides which popup (if any) to surface
// on the current screen, tracks per-day dismissals, and pushes survey and
// toggle mutations back to the server. Everything here is best effort; a
// failure never blocks the rest of the app.
package popupclient

import (
	"strings"

	"miuhub.app/communityserver/internal/entity"
)

// Popup is the wire shape of one campaign as seen by app shells. Dates travel
// as YYYY-MM-DD strings; scheduling already happened on the server, so the
// client only reads the enabled flag.
type Popup struct {
	ID            uint                  `json:"id"`
	Title         string                `json:"title"`
	ContentBlocks []entity.ContentBlock `json:"content_blocks"`
	TextContent   string                `json:"text_content"`
	URL           string                `json:"url"`
	URLType       string                `json:"url_type"`
	StartDate     string                `json:"start_date"`
	EndDate       string                `json:"end_date"`
	DisplayPage   string                `json:"display_page"`
	Enabled       bool                  `json:"enabled"`
	IsFeatured    bool                  `json:"is_featured"`
}

// Page returns the normalized display page, defaulting to home when blank.
func (p *Popup) Page() string {
	page := strings.ToLower(strings.TrimSpace(p.DisplayPage))
	if page == "" {
		return entity.DefaultPage
	}
	return page
}

// HasSurvey reports whether the popup contains at least one survey block.
func (p *Popup) HasSurvey() bool {
	for _, block := range p.ContentBlocks {
		if block.Type == entity.BlockTypeSurvey {
			return true
		}
	}
	return false
}

// SurveyBlocks returns the survey blocks in authoring order.
func (p *Popup) SurveyBlocks() []entity.ContentBlock {
	var surveys []entity.ContentBlock
	for _, block := range p.ContentBlocks {
		if block.Type == entity.BlockTypeSurvey {
			surveys = append(surveys, block)
		}
	}
	return surveys
}

// AllowsURLAction reports whether the URL call-to-action may be offered.
// Survey and URL CTAs are mutually exclusive: a popup with any survey block
// never shows the URL button.
func (p *Popup) AllowsURLAction() bool {
	return strings.TrimSpace(p.URL) != "" && !p.HasSurvey()
}

// IsEmpty reports whether the popup has nothing to display. An empty popup is
// never surfaced.
func (p *Popup) IsEmpty() bool {
	return len(p.ContentBlocks) == 0 &&
		strings.TrimSpace(p.URL) == "" &&
		strings.TrimSpace(p.Title) == ""
}

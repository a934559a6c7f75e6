package dto

import (
	"time"

	"gorm.io/datatypes"

	"miuhub.app/communityserver/internal/entity"
)

type CreatePopupRequest struct {
	Title         string                `json:"title"`
	ContentBlocks []entity.ContentBlock `json:"content_blocks" binding:"required"`
	TextContent   string                `json:"text_content"`
	URL           string                `json:"url"`
	URLType       string                `json:"url_type" binding:"omitempty,oneof=link rsvp"`
	StartDate     string                `json:"start_date" binding:"required"`
	EndDate       string                `json:"end_date" binding:"required"`
	DisplayPage   string                `json:"display_page" binding:"omitempty,oneof=home circles board profile"`
	Enabled       *bool                 `json:"enabled"`
	IsFeatured    *bool                 `json:"is_featured"`
}

// UpdatePopupRequest is a partial update; nil fields are left untouched.
type UpdatePopupRequest struct {
	Title         *string                `json:"title"`
	ContentBlocks *[]entity.ContentBlock `json:"content_blocks"`
	TextContent   *string                `json:"text_content"`
	URL           *string                `json:"url"`
	URLType       *string                `json:"url_type" binding:"omitempty,oneof=link rsvp"`
	StartDate     *string                `json:"start_date"`
	EndDate       *string                `json:"end_date"`
	DisplayPage   *string                `json:"display_page" binding:"omitempty,oneof=home circles board profile"`
	Enabled       *bool                  `json:"enabled"`
	IsFeatured    *bool                  `json:"is_featured"`
}

type TogglePopupRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type PopupResponse struct {
	ID              uint                   `json:"id"`
	Title           string                 `json:"title"`
	ContentBlocks   []entity.ContentBlock  `json:"content_blocks"`
	TextContent     string                 `json:"text_content"`
	URL             string                 `json:"url"`
	URLType         string                 `json:"url_type"`
	StartDate       *string                `json:"start_date"`
	EndDate         *string                `json:"end_date"`
	DisplayPage     string                 `json:"display_page"`
	Enabled         bool                   `json:"enabled"`
	ManualOverride  bool                   `json:"manual_override"`
	IsFeatured      bool                   `json:"is_featured"`
	SurveyResponses entity.SurveyResponses `json:"survey_responses"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func NewPopupResponse(popup *entity.Popup) PopupResponse {
	return PopupResponse{
		ID:              popup.ID,
		Title:           popup.Title,
		ContentBlocks:   popup.ContentBlocks,
		TextContent:     popup.TextContent,
		URL:             popup.URL,
		URLType:         popup.URLType,
		StartDate:       formatDate(popup.StartDate),
		EndDate:         formatDate(popup.EndDate),
		DisplayPage:     popup.DisplayPage,
		Enabled:         popup.Enabled,
		ManualOverride:  popup.ManualOverride,
		IsFeatured:      popup.IsFeatured,
		SurveyResponses: popup.SurveyResponses,
		CreatedAt:       popup.CreatedAt,
		UpdatedAt:       popup.UpdatedAt,
	}
}

func NewPopupListResponse(popups []entity.Popup) []PopupResponse {
	responses := make([]PopupResponse, 0, len(popups))
	for i := range popups {
		responses = append(responses, NewPopupResponse(&popups[i]))
	}
	return responses
}

func formatDate(date *datatypes.Date) *string {
	if date == nil {
		return nil
	}
	formatted := time.Time(*date).Format("2006-01-02")
	return &formatted
}

package dto

type RecordResponseRequest struct {
	SurveyID          string `json:"surveyId" binding:"required"`
	SelectedItemIndex *int   `json:"selectedItemIndex" binding:"required"`
}

// SurveyItemResult is one option of a survey block with its tally.
type SurveyItemResult struct {
	ItemIndex  int     `json:"item_index"`
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SurveyBlockResult is the admin-facing report for a single survey block.
type SurveyBlockResult struct {
	SurveyID       string             `json:"survey_id"`
	Title          string             `json:"title"`
	TotalResponses int                `json:"total_responses"`
	Items          []SurveyItemResult `json:"items"`
}

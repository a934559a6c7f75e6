package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// SurveyResponses is the materialized survey aggregate stored on each popup:
// survey-block id -> item index (as string) -> response count. It is a count
// map, not a response log; counts only ever increase.
type SurveyResponses map[string]map[string]int

// legacyResponseEvent is the flat list-of-events shape older rows were
// persisted in before counts were materialized.
type legacyResponseEvent struct {
	SurveyID          string `json:"surveyId"`
	SelectedItemIndex int    `json:"selectedItemIndex"`
}

// upgradeLegacyResponses replays a flat event log into the count-map shape.
// Read-time migration only; the write path never sees the legacy shape.
func upgradeLegacyResponses(events []legacyResponseEvent) SurveyResponses {
	counts := SurveyResponses{}
	for _, event := range events {
		counts.Increment(event.SurveyID, event.SelectedItemIndex)
	}
	return counts
}

// Increment adds one response for the given item, creating missing keys.
func (r SurveyResponses) Increment(surveyID string, itemIndex int) {
	if r[surveyID] == nil {
		r[surveyID] = map[string]int{}
	}
	r[surveyID][strconv.Itoa(itemIndex)]++
}

// Total returns the number of responses recorded across all items of a survey.
func (r SurveyResponses) Total(surveyID string) int {
	total := 0
	for _, count := range r[surveyID] {
		total += count
	}
	return total
}

func (r *SurveyResponses) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = SurveyResponses{}
		return nil
	}

	// Legacy rows store a flat array of response events
	if trimmed[0] == '[' {
		var events []legacyResponseEvent
		if err := json.Unmarshal(trimmed, &events); err != nil {
			return fmt.Errorf("invalid legacy survey responses: %w", err)
		}
		*r = upgradeLegacyResponses(events)
		return nil
	}

	var counts map[string]map[string]int
	if err := json.Unmarshal(trimmed, &counts); err != nil {
		return fmt.Errorf("invalid survey responses: %w", err)
	}
	if counts == nil {
		counts = map[string]map[string]int{}
	}
	*r = counts
	return nil
}

func (r *SurveyResponses) Scan(value interface{}) error {
	if value == nil {
		*r = SurveyResponses{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported survey responses column type %T", value)
	}

	return r.UnmarshalJSON(data)
}

func (r SurveyResponses) Value() (driver.Value, error) {
	if r == nil {
		return "{}", nil
	}
	data, err := json.Marshal(map[string]map[string]int(r))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// GormDataType gorm common data type
func (SurveyResponses) GormDataType() string {
	return "jsonb"
}

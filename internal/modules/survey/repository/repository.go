package repository

import (
	"context"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"miuhub.app/communityserver/internal/entity"
)

type SurveyResponseRepository interface {
	// IncrementCount adds one response to the given survey item and returns
	// the popup's full survey aggregate after the increment.
	IncrementCount(ctx context.Context, popupID uint, surveyID string, itemIndex int) (entity.SurveyResponses, error)
}

type surveyResponseRepository struct {
	db *gorm.DB
}

func NewSurveyResponseRepository(db *gorm.DB) SurveyResponseRepository {
	return &surveyResponseRepository{db: db}
}

// Single-statement jsonb increment. Safe under concurrent submissions: the
// count is bumped inside one UPDATE instead of a read-modify-write from Go.
// Only applies when the stored aggregate is already in the count-map shape.
const incrementCountQuery = `
UPDATE popups
SET survey_responses = jsonb_set(
        jsonb_set(
            COALESCE(survey_responses, '{}'::jsonb),
            ARRAY[@survey],
            COALESCE(survey_responses -> @survey, '{}'::jsonb),
            true
        ),
        ARRAY[@survey, @item],
        (COALESCE(survey_responses -> @survey ->> @item, '0')::int + 1)::text::jsonb,
        true
    ),
    updated_at = NOW()
WHERE id = @id
  AND (survey_responses IS NULL OR jsonb_typeof(survey_responses) = 'object')
`

func (r *surveyResponseRepository) IncrementCount(ctx context.Context, popupID uint, surveyID string, itemIndex int) (entity.SurveyResponses, error) {
	item := strconv.Itoa(itemIndex)

	result := r.db.WithContext(ctx).Exec(incrementCountQuery, map[string]interface{}{
		"survey": surveyID,
		"item":   item,
		"id":     popupID,
	})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		return r.loadResponses(ctx, popupID)
	}

	// Either the popup does not exist or the row still holds the legacy flat
	// event list. Fall back to a locked read-modify-write: scanning the column
	// upgrades the legacy shape, then the increment is written back.
	var responses entity.SurveyResponses
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var popup entity.Popup
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&popup, "id = ?", popupID).Error; err != nil {
			return err
		}

		if popup.SurveyResponses == nil {
			popup.SurveyResponses = entity.SurveyResponses{}
		}
		popup.SurveyResponses.Increment(surveyID, itemIndex)

		if err := tx.Model(&popup).
			Update("survey_responses", popup.SurveyResponses).Error; err != nil {
			return err
		}

		responses = popup.SurveyResponses
		return nil
	})
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *surveyResponseRepository) loadResponses(ctx context.Context, popupID uint) (entity.SurveyResponses, error) {
	var responses entity.SurveyResponses
	row := r.db.WithContext(ctx).
		Raw("SELECT survey_responses FROM popups WHERE id = ?", popupID).
		Row()
	if err := row.Scan(&responses); err != nil {
		return nil, err
	}
	if responses == nil {
		responses = entity.SurveyResponses{}
	}
	return responses, nil
}

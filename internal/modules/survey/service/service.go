package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"gorm.io/gorm"

	"miuhub.app/communityserver/internal/entity"
	popupRepo "miuhub.app/communityserver/internal/modules/popup/repository"
	"miuhub.app/communityserver/internal/modules/survey/dto"
	"miuhub.app/communityserver/internal/modules/survey/repository"
	"miuhub.app/communityserver/pkg/apperror"
)

// SurveyService records survey choices and aggregates them for reporting.
// Responders are not identified, so repeat submissions from the same user are
// counted again; the client only guards against this with its own UI state.
type SurveyService interface {
	RecordResponse(ctx context.Context, popupID uint, surveyID string, itemIndex int) (map[string]int, error)
	GetResponses(ctx context.Context, popupID uint) (entity.SurveyResponses, []dto.SurveyBlockResult, error)
}

type surveyService struct {
	repo      repository.SurveyResponseRepository
	popupRepo popupRepo.PopupRepository
}

func NewSurveyService(repo repository.SurveyResponseRepository, popupRepo popupRepo.PopupRepository) SurveyService {
	return &surveyService{
		repo:      repo,
		popupRepo: popupRepo,
	}
}

// RecordResponse increments the count for one survey item by exactly one and
// returns the updated counts of that survey block.
func (s *surveyService) RecordResponse(ctx context.Context, popupID uint, surveyID string, itemIndex int) (map[string]int, error) {
	if itemIndex < 0 {
		return nil, fmt.Errorf("selectedItemIndex must not be negative: %w", apperror.ErrInvalidInput)
	}

	responses, err := s.repo.IncrementCount(ctx, popupID, surveyID, itemIndex)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("popup %d: %w", popupID, apperror.ErrNotFound)
		}
		return nil, err
	}

	return responses[surveyID], nil
}

func (s *surveyService) GetResponses(ctx context.Context, popupID uint) (entity.SurveyResponses, []dto.SurveyBlockResult, error) {
	popup, err := s.popupRepo.FindByID(ctx, popupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("popup %d: %w", popupID, apperror.ErrNotFound)
		}
		return nil, nil, err
	}

	responses := popup.SurveyResponses
	if responses == nil {
		responses = entity.SurveyResponses{}
	}

	return responses, BuildSurveyResults(popup), nil
}

// BuildSurveyResults computes per-item counts and percentages for every
// survey block of a popup. Percentages are rounded to one decimal and are 0
// when the block has no responses yet.
func BuildSurveyResults(popup *entity.Popup) []dto.SurveyBlockResult {
	var results []dto.SurveyBlockResult

	for _, block := range popup.SurveyBlocks() {
		counts := popup.SurveyResponses[block.ID]
		total := popup.SurveyResponses.Total(block.ID)

		items := make([]dto.SurveyItemResult, 0, len(block.Items))
		for i, label := range block.Items {
			count := counts[strconv.Itoa(i)]
			percentage := 0.0
			if total > 0 {
				percentage = math.Round(float64(count)/float64(total)*1000) / 10
			}
			items = append(items, dto.SurveyItemResult{
				ItemIndex:  i,
				Label:      label,
				Count:      count,
				Percentage: percentage,
			})
		}

		results = append(results, dto.SurveyBlockResult{
			SurveyID:       block.ID,
			Title:          block.Title,
			TotalResponses: total,
			Items:          items,
		})
	}

	return results
}

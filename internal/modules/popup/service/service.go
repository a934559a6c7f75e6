package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"miuhub.app/communityserver/internal/entity"
	"miuhub.app/communityserver/internal/modules/popup/dto"
	"miuhub.app/communityserver/internal/modules/popup/repository"
	searchService "miuhub.app/communityserver/internal/modules/search/service"
	"miuhub.app/communityserver/pkg/apperror"
)

type PopupService interface {
	ListPopups(ctx context.Context) ([]entity.Popup, error)
	GetPopup(ctx context.Context, id uint) (*entity.Popup, error)
	CreatePopup(ctx context.Context, req dto.CreatePopupRequest) (*entity.Popup, error)
	UpdatePopup(ctx context.Context, id uint, req dto.UpdatePopupRequest) (*entity.Popup, error)
	TogglePopup(ctx context.Context, id uint, enabled bool) (*entity.Popup, error)
	DeletePopup(ctx context.Context, id uint) error
	ReconcileAll(ctx context.Context) (int, error)
}

type popupService struct {
	repo      repository.PopupRepository
	searchSvc searchService.SearchService
	nowFn     func() time.Time
}

func NewPopupService(repo repository.PopupRepository, searchSvc searchService.SearchService) PopupService {
	return &popupService{
		repo:      repo,
		searchSvc: searchSvc,
		nowFn:     time.Now,
	}
}

// ListPopups returns every popup, newest first, with the date schedule
// reconciled. Any row whose enabled flag flips is persisted before the list
// is returned, so the response is always consistent with stored state.
func (s *popupService) ListPopups(ctx context.Context) ([]entity.Popup, error) {
	popups, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	for i := range popups {
		enabled, changed := ReconcileSchedule(&popups[i], now)
		if !changed {
			continue
		}
		if err := s.repo.UpdateEnabled(ctx, popups[i].ID, enabled); err != nil {
			return nil, fmt.Errorf("persist reconciled popup %d: %w", popups[i].ID, err)
		}
		popups[i].Enabled = enabled
		popups[i].UpdatedAt = now
	}

	return popups, nil
}

func (s *popupService) GetPopup(ctx context.Context, id uint) (*entity.Popup, error) {
	popup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, id)
	}
	return popup, nil
}

func (s *popupService) CreatePopup(ctx context.Context, req dto.CreatePopupRequest) (*entity.Popup, error) {
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start_date: %w", apperror.ErrInvalidInput)
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("end_date: %w", apperror.ErrInvalidInput)
	}
	if time.Time(*endDate).Before(time.Time(*startDate)) {
		return nil, fmt.Errorf("start_date must not be after end_date: %w", apperror.ErrInvalidInput)
	}

	blocks := assignBlockIDs(req.ContentBlocks)

	textContent := req.TextContent
	if textContent == "" {
		textContent = entity.DeriveTextContent(blocks)
	}

	popup := &entity.Popup{
		Title:           req.Title,
		ContentBlocks:   datatypes.JSONSlice[entity.ContentBlock](blocks),
		TextContent:     textContent,
		URL:             req.URL,
		URLType:         valueOrDefault(req.URLType, entity.URLTypeLink),
		StartDate:       startDate,
		EndDate:         endDate,
		DisplayPage:     valueOrDefault(req.DisplayPage, entity.DefaultPage),
		Enabled:         req.Enabled == nil || *req.Enabled,
		ManualOverride:  false,
		IsFeatured:      req.IsFeatured != nil && *req.IsFeatured,
		SurveyResponses: entity.SurveyResponses{},
	}

	if err := s.repo.Create(ctx, popup); err != nil {
		return nil, err
	}

	s.indexPopup(popup)
	return popup, nil
}

func (s *popupService) UpdatePopup(ctx context.Context, id uint, req dto.UpdatePopupRequest) (*entity.Popup, error) {
	popup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, id)
	}

	if req.Title != nil {
		popup.Title = *req.Title
	}
	if req.ContentBlocks != nil {
		blocks := assignBlockIDs(*req.ContentBlocks)
		popup.ContentBlocks = datatypes.JSONSlice[entity.ContentBlock](blocks)
		if req.TextContent == nil {
			popup.TextContent = entity.DeriveTextContent(blocks)
		}
	}
	if req.TextContent != nil {
		popup.TextContent = *req.TextContent
	}
	if req.URL != nil {
		popup.URL = *req.URL
	}
	if req.URLType != nil {
		popup.URLType = *req.URLType
	}
	if req.StartDate != nil {
		startDate, err := parseDate(*req.StartDate)
		if err != nil {
			return nil, fmt.Errorf("start_date: %w", apperror.ErrInvalidInput)
		}
		popup.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := parseDate(*req.EndDate)
		if err != nil {
			return nil, fmt.Errorf("end_date: %w", apperror.ErrInvalidInput)
		}
		popup.EndDate = endDate
	}
	if popup.StartDate != nil && popup.EndDate != nil &&
		time.Time(*popup.EndDate).Before(time.Time(*popup.StartDate)) {
		return nil, fmt.Errorf("start_date must not be after end_date: %w", apperror.ErrInvalidInput)
	}
	if req.DisplayPage != nil {
		popup.DisplayPage = *req.DisplayPage
	}
	if req.Enabled != nil {
		popup.Enabled = *req.Enabled
	}
	if req.IsFeatured != nil {
		popup.IsFeatured = *req.IsFeatured
	}

	if err := s.repo.Update(ctx, popup); err != nil {
		return nil, err
	}

	s.indexPopup(popup)
	return popup, nil
}

// TogglePopup applies an explicit admin ON/OFF request. The resulting
// manual_override flag decides whether date-driven reconciliation resumes.
func (s *popupService) TogglePopup(ctx context.Context, id uint, enabled bool) (*entity.Popup, error) {
	popup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, id)
	}

	now := s.nowFn()
	manualOverride := ResolveOverride(popup, enabled, now)

	if err := s.repo.UpdateToggle(ctx, id, enabled, manualOverride); err != nil {
		return nil, err
	}

	popup.Enabled = enabled
	popup.ManualOverride = manualOverride
	popup.UpdatedAt = now

	s.indexPopup(popup)
	return popup, nil
}

func (s *popupService) DeletePopup(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapNotFound(err, id)
	}

	if s.searchSvc != nil {
		if err := s.searchSvc.DeletePopup(id); err != nil {
			log.Printf("failed to remove popup %d from search index: %v", id, err)
		}
	}
	return nil
}

// ReconcileAll re-runs schedule reconciliation over every row and persists the
// flips. Used by the background sweep; list reads do the same work inline.
func (s *popupService) ReconcileAll(ctx context.Context) (int, error) {
	popups, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}

	now := s.nowFn()
	updated := 0
	for i := range popups {
		enabled, changed := ReconcileSchedule(&popups[i], now)
		if !changed {
			continue
		}
		if err := s.repo.UpdateEnabled(ctx, popups[i].ID, enabled); err != nil {
			return updated, fmt.Errorf("persist reconciled popup %d: %w", popups[i].ID, err)
		}
		updated++
	}
	return updated, nil
}

// indexPopup keeps the search index in sync, best effort. Indexing failures
// are logged and never fail the request.
func (s *popupService) indexPopup(popup *entity.Popup) {
	if s.searchSvc == nil {
		return
	}
	if err := s.searchSvc.IndexPopup(popup); err != nil {
		log.Printf("failed to index popup %d: %v", popup.ID, err)
	}
}

func assignBlockIDs(blocks []entity.ContentBlock) []entity.ContentBlock {
	assigned := make([]entity.ContentBlock, len(blocks))
	copy(assigned, blocks)
	for i := range assigned {
		if assigned[i].ID == "" {
			assigned[i].ID = fmt.Sprintf("%s_%s", assigned[i].Type, uuid.NewString())
		}
	}
	return assigned
}

func parseDate(value string) (*datatypes.Date, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			date := datatypes.Date(parsed)
			return &date, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q", value)
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func wrapNotFound(err error, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("popup %d: %w", id, apperror.ErrNotFound)
	}
	return err
}

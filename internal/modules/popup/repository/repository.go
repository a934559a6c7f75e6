package repository

import (
	"context"

	"gorm.io/gorm"

	"miuhub.app/communityserver/internal/entity"
)

type PopupRepository interface {
	Create(ctx context.Context, popup *entity.Popup) error
	FindAll(ctx context.Context) ([]entity.Popup, error)
	FindByID(ctx context.Context, id uint) (*entity.Popup, error)
	Update(ctx context.Context, popup *entity.Popup) error
	UpdateEnabled(ctx context.Context, id uint, enabled bool) error
	UpdateToggle(ctx context.Context, id uint, enabled, manualOverride bool) error
	Delete(ctx context.Context, id uint) error
}

type popupRepository struct {
	db *gorm.DB
}

func NewPopupRepository(db *gorm.DB) PopupRepository {
	return &popupRepository{db: db}
}

func (r *popupRepository) Create(ctx context.Context, popup *entity.Popup) error {
	return r.db.WithContext(ctx).Create(popup).Error
}

func (r *popupRepository) FindAll(ctx context.Context) ([]entity.Popup, error) {
	var popups []entity.Popup
	err := r.db.WithContext(ctx).
		Order("created_at desc").
		Find(&popups).Error
	return popups, err
}

func (r *popupRepository) FindByID(ctx context.Context, id uint) (*entity.Popup, error) {
	var popup entity.Popup
	if err := r.db.WithContext(ctx).First(&popup, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &popup, nil
}

func (r *popupRepository) Update(ctx context.Context, popup *entity.Popup) error {
	return r.db.WithContext(ctx).Save(popup).Error
}

func (r *popupRepository) UpdateEnabled(ctx context.Context, id uint, enabled bool) error {
	return r.db.WithContext(ctx).
		Model(&entity.Popup{}).
		Where("id = ?", id).
		Update("enabled", enabled).Error
}

func (r *popupRepository) UpdateToggle(ctx context.Context, id uint, enabled, manualOverride bool) error {
	return r.db.WithContext(ctx).
		Model(&entity.Popup{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"enabled":         enabled,
			"manual_override": manualOverride,
		}).Error
}

func (r *popupRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Popup{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

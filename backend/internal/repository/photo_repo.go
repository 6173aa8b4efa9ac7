package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-events/backend/internal/model"
)

// PhotoRepository 活动照片数据访问接口
type PhotoRepository interface {
	Create(ctx context.Context, photo *model.EventPhoto) error
	GetByID(ctx context.Context, id string) (*model.EventPhoto, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.EventPhoto, error)
	Delete(ctx context.Context, id string) error
	DeleteByEvent(ctx context.Context, eventID string) error
}

type photoRepo struct {
	db *gorm.DB
}

// NewPhotoRepo 创建 PhotoRepository 实例
func NewPhotoRepo(db *gorm.DB) PhotoRepository {
	return &photoRepo{db: db}
}

func (r *photoRepo) Create(ctx context.Context, photo *model.EventPhoto) error {
	return r.db.WithContext(ctx).Create(photo).Error
}

func (r *photoRepo) GetByID(ctx context.Context, id string) (*model.EventPhoto, error) {
	var photo model.EventPhoto
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&photo).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *photoRepo) ListByEvent(ctx context.Context, eventID string) ([]model.EventPhoto, error) {
	var photos []model.EventPhoto
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&photos).Error
	return photos, err
}

func (r *photoRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.EventPhoto{}).Error
}

func (r *photoRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&model.EventPhoto{}).Error
}

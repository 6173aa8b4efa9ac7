package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"campus-events/backend/internal/model"
)

// ClubFilter 社团列表过滤条件
type ClubFilter struct {
	Keyword string
	OwnerID string
}

// ClubRepository 社团数据访问接口
type ClubRepository interface {
	Create(ctx context.Context, club *model.Club) error
	GetByID(ctx context.Context, id string) (*model.Club, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Update(ctx context.Context, club *model.Club) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ClubFilter, offset, limit int) ([]model.ClubWithCount, int64, error)
	Count(ctx context.Context) (int64, error)
}

type clubRepo struct {
	db *gorm.DB
}

// NewClubRepo 创建 ClubRepository 实例
func NewClubRepo(db *gorm.DB) ClubRepository {
	return &clubRepo{db: db}
}

func (r *clubRepo) Create(ctx context.Context, club *model.Club) error {
	return translate(r.db.WithContext(ctx).Create(club).Error)
}

func (r *clubRepo) GetByID(ctx context.Context, id string) (*model.Club, error) {
	var club model.Club
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("id = ?", id).
		First(&club).Error
	if err != nil {
		return nil, err
	}
	return &club, nil
}

func (r *clubRepo) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).Model(&model.Club{}).Where("name = ?", name)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	err := db.Count(&count).Error
	return count > 0, err
}

func (r *clubRepo) Update(ctx context.Context, club *model.Club) error {
	return translate(r.db.WithContext(ctx).
		Model(&model.Club{}).
		Where("id = ?", club.ID).
		Updates(map[string]interface{}{
			"name":        club.Name,
			"description": club.Description,
			"logo_url":    club.LogoURL,
			"logo_key":    club.LogoKey,
			"updated_at":  gorm.Expr("NOW()"),
		}).Error)
}

func (r *clubRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Club{}).Error
}

func (r *clubRepo) List(ctx context.Context, filter ClubFilter, offset, limit int) ([]model.ClubWithCount, int64, error) {
	var clubs []model.ClubWithCount
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Club{})
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		like := containsPattern(kw)
		db = db.Where("clubs.name ILIKE ? OR clubs.description ILIKE ?", like, like)
	}
	if filter.OwnerID != "" {
		db = db.Where("clubs.owner_id = ?", filter.OwnerID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Select("clubs.*, (SELECT COUNT(*) FROM events e WHERE e.club_id = clubs.id) AS event_count").
		Order("clubs.name ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&clubs).Error; err != nil {
		return nil, 0, err
	}

	return clubs, total, nil
}

func (r *clubRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Club{}).Count(&count).Error
	return count, err
}

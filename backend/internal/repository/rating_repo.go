package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-events/backend/internal/model"
)

// RatingRepository 评分数据访问接口
type RatingRepository interface {
	// Upsert 以 (user_id, event_id) 为键写入评分，已存在则覆盖
	Upsert(ctx context.Context, rating *model.Rating) error
	Get(ctx context.Context, userID, eventID string) (*model.Rating, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Rating, error)
	// Average 平均分与评分人数；无评分时均为 0
	Average(ctx context.Context, eventID string) (float64, int64, error)
	// ScoresByUser 用户给出的评分：event_id → score
	ScoresByUser(ctx context.Context, userID string) (map[string]int, error)
	DeleteByEvent(ctx context.Context, eventID string) error
}

type ratingRepo struct {
	db *gorm.DB
}

// NewRatingRepo 创建 RatingRepository 实例
func NewRatingRepo(db *gorm.DB) RatingRepository {
	return &ratingRepo{db: db}
}

func (r *ratingRepo) Upsert(ctx context.Context, rating *model.Rating) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"score":      rating.Score,
				"feedback":   rating.Feedback,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).
		Create(rating).Error
}

func (r *ratingRepo) Get(ctx context.Context, userID, eventID string) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Rating, error) {
	var ratings []model.Rating
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("event_id = ?", eventID).
		Order("updated_at DESC").
		Find(&ratings).Error
	return ratings, err
}

func (r *ratingRepo) Average(ctx context.Context, eventID string) (float64, int64, error) {
	var row struct {
		Avg   float64
		Count int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Rating{}).
		Select("COALESCE(AVG(score), 0) AS avg, COUNT(*) AS count").
		Where("event_id = ?", eventID).
		Scan(&row).Error
	return row.Avg, row.Count, err
}

func (r *ratingRepo) ScoresByUser(ctx context.Context, userID string) (map[string]int, error) {
	var rows []struct {
		EventID string
		Score   int
	}
	if err := r.db.WithContext(ctx).
		Model(&model.Rating{}).
		Select("event_id, score").
		Where("user_id = ?", userID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.EventID] = row.Score
	}
	return out, nil
}

func (r *ratingRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&model.Rating{}).Error
}

package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-events/backend/internal/model"
)

// ReminderRepository 提醒数据访问接口
type ReminderRepository interface {
	// Upsert 以 (user_id, event_id) 为键写入提醒，已存在则更新时间并重置发送状态
	Upsert(ctx context.Context, reminder *model.Reminder) error
	Get(ctx context.Context, userID, eventID string) (*model.Reminder, error)
	Delete(ctx context.Context, userID, eventID string) error
	ListByUser(ctx context.Context, userID string) ([]model.Reminder, error)
	// ListDue 到期、未发送、失败次数未达上限且活动尚未开始的提醒，预加载用户与活动
	ListDue(ctx context.Context, now time.Time, maxAttempts, limit int) ([]model.Reminder, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	// MarkFailed 记录一次发送失败，并把提醒顺延到 retryAt
	MarkFailed(ctx context.Context, id, reason string, retryAt time.Time) error
	DeleteByEvent(ctx context.Context, eventID string) error
}

type reminderRepo struct {
	db *gorm.DB
}

// NewReminderRepo 创建 ReminderRepository 实例
func NewReminderRepo(db *gorm.DB) ReminderRepository {
	return &reminderRepo{db: db}
}

func (r *reminderRepo) Upsert(ctx context.Context, reminder *model.Reminder) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "event_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"remind_at":  reminder.RemindAt,
				"sent_at":    nil,
				"attempts":   0,
				"last_error": "",
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).
		Create(reminder).Error
}

func (r *reminderRepo) Get(ctx context.Context, userID, eventID string) (*model.Reminder, error) {
	var reminder model.Reminder
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		First(&reminder).Error
	if err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (r *reminderRepo) Delete(ctx context.Context, userID, eventID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&model.Reminder{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *reminderRepo) ListByUser(ctx context.Context, userID string) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("remind_at ASC").
		Find(&reminders).Error
	return reminders, err
}

func (r *reminderRepo) ListDue(ctx context.Context, now time.Time, maxAttempts, limit int) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Event").
		Joins("JOIN events ON events.id = reminders.event_id").
		Where("reminders.sent_at IS NULL AND reminders.remind_at <= ?", now).
		Where("reminders.attempts < ?", maxAttempts).
		Where("events.start_time > ?", now).
		Order("reminders.remind_at ASC").
		Limit(limit).
		Find(&reminders).Error
	return reminders, err
}

func (r *reminderRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Reminder{}).
		Where("id = ?", id).
		Update("sent_at", at).Error
}

func (r *reminderRepo) MarkFailed(ctx context.Context, id, reason string, retryAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Reminder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": reason,
			"remind_at":  retryAt,
			"updated_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *reminderRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&model.Reminder{}).Error
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-events/backend/internal/model"
)

// RegistrationRepository 报名数据访问接口
type RegistrationRepository interface {
	Create(ctx context.Context, reg *model.Registration) error
	Get(ctx context.Context, userID, eventID string) (*model.Registration, error)
	Delete(ctx context.Context, userID, eventID string) error
	CountByEvent(ctx context.Context, eventID string) (int64, error)
	CountByEvents(ctx context.Context, eventIDs []string) (map[string]int64, error)
	// ListByUser 用户的全部报名，预加载活动及其社团
	ListByUser(ctx context.Context, userID string) ([]model.Registration, error)
	// Roster 活动报名名单（含签到时间），按报名时间排序
	Roster(ctx context.Context, eventID string) ([]model.RosterEntry, error)
	RecentForOrganizer(ctx context.Context, organizerID string, limit int) ([]model.RecentRegistration, error)
	DeleteByEvent(ctx context.Context, eventID string) error
}

type registrationRepo struct {
	db *gorm.DB
}

// NewRegistrationRepo 创建 RegistrationRepository 实例
func NewRegistrationRepo(db *gorm.DB) RegistrationRepository {
	return &registrationRepo{db: db}
}

func (r *registrationRepo) Create(ctx context.Context, reg *model.Registration) error {
	return translate(r.db.WithContext(ctx).Create(reg).Error)
}

func (r *registrationRepo) Get(ctx context.Context, userID, eventID string) (*model.Registration, error) {
	var reg model.Registration
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		First(&reg).Error
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (r *registrationRepo) Delete(ctx context.Context, userID, eventID string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		Delete(&model.Registration{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *registrationRepo) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Registration{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

func (r *registrationRepo) CountByEvents(ctx context.Context, eventIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		EventID string
		Count   int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Registration{}).
		Select("event_id, COUNT(*) AS count").
		Where("event_id IN ?", eventIDs).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.EventID] = row.Count
	}
	return out, nil
}

func (r *registrationRepo) ListByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	var regs []model.Registration
	err := r.db.WithContext(ctx).
		Preload("Event").
		Preload("Event.Club").
		Joins("JOIN events ON events.id = registrations.event_id").
		Where("registrations.user_id = ?", userID).
		Order("events.start_time ASC").
		Find(&regs).Error
	return regs, err
}

func (r *registrationRepo) Roster(ctx context.Context, eventID string) ([]model.RosterEntry, error) {
	var rows []model.RosterEntry
	err := r.db.WithContext(ctx).
		Table("registrations rg").
		Select(`u.id AS user_id, u.username, u.first_name, u.last_name, u.email,
			rg.registered_at, a.checked_in_at`).
		Joins("JOIN users u ON u.id = rg.user_id").
		Joins("LEFT JOIN attendances a ON a.user_id = rg.user_id AND a.event_id = rg.event_id").
		Where("rg.event_id = ?", eventID).
		Order("rg.registered_at ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *registrationRepo) RecentForOrganizer(ctx context.Context, organizerID string, limit int) ([]model.RecentRegistration, error) {
	var rows []model.RecentRegistration
	err := r.db.WithContext(ctx).
		Table("registrations rg").
		Select("e.id AS event_id, e.title AS event_title, u.id AS user_id, u.username, rg.registered_at").
		Joins("JOIN events e ON e.id = rg.event_id").
		Joins("JOIN users u ON u.id = rg.user_id").
		Where("e.organizer_id = ?", organizerID).
		Order("rg.registered_at DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *registrationRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&model.Registration{}).Error
}

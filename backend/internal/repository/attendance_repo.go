package repository

import (
	"context"

	"gorm.io/gorm"

	"campus-events/backend/internal/model"
)

// AttendanceRepository 签到数据访问接口
type AttendanceRepository interface {
	Create(ctx context.Context, att *model.Attendance) error
	Get(ctx context.Context, userID, eventID string) (*model.Attendance, error)
	CountByEvent(ctx context.Context, eventID string) (int64, error)
	// EventIDsByUser 用户已签到的活动 ID 集合
	EventIDsByUser(ctx context.Context, userID string) (map[string]bool, error)
	DeleteByEvent(ctx context.Context, eventID string) error
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, att *model.Attendance) error {
	return translate(r.db.WithContext(ctx).Create(att).Error)
}

func (r *attendanceRepo) Get(ctx context.Context, userID, eventID string) (*model.Attendance, error) {
	var att model.Attendance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND event_id = ?", userID, eventID).
		First(&att).Error
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *attendanceRepo) CountByEvent(ctx context.Context, eventID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Attendance{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

func (r *attendanceRepo) EventIDsByUser(ctx context.Context, userID string) (map[string]bool, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&model.Attendance{}).
		Where("user_id = ?", userID).
		Pluck("event_id", &ids).Error; err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *attendanceRepo) DeleteByEvent(ctx context.Context, eventID string) error {
	return r.db.WithContext(ctx).Where("event_id = ?", eventID).Delete(&model.Attendance{}).Error
}

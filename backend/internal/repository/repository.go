package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User         UserRepository
	Club         ClubRepository
	Event        EventRepository
	Registration RegistrationRepository
	Attendance   AttendanceRepository
	Rating       RatingRepository
	Photo        PhotoRepository
	Reminder     ReminderRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:           db,
		User:         NewUserRepo(db),
		Club:         NewClubRepo(db),
		Event:        NewEventRepo(db),
		Registration: NewRegistrationRepo(db),
		Attendance:   NewAttendanceRepo(db),
		Rating:       NewRatingRepo(db),
		Photo:        NewPhotoRepo(db),
		Reminder:     NewReminderRepo(db),
	}
}

// Transaction 在同一事务内执行 fn，fn 收到绑定事务的 Repository
// 未绑定数据库（单元测试中手工组装）时直接以自身执行
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

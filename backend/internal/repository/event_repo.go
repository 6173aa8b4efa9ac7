package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"campus-events/backend/internal/model"
	pkgerrors "campus-events/backend/pkg/errors"
)

// EventFilter 活动查询条件；State 非空时以 Now 计算
type EventFilter struct {
	Query       string
	Category    string
	State       model.EventState
	Now         time.Time
	From        *time.Time // start_time >= From
	To          *time.Time // start_time < To
	ClubID      string
	OrganizerID string
}

// EventRepository 活动数据访问接口
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	// GetByIDForUpdate 加行锁读取（需在事务中调用）
	GetByIDForUpdate(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id string) error
	// Search limit <= 0 时返回全部
	Search(ctx context.Context, filter EventFilter, offset, limit int) ([]model.Event, int64, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	CountByClub(ctx context.Context, clubID string) (int64, error)
	Stats(ctx context.Context, now time.Time, organizerID string) (*model.EventStats, error)
	ListRecent(ctx context.Context, limit int) ([]model.Event, error)
	ListUnregisteredBetween(ctx context.Context, userID string, from, to time.Time, limit int) ([]model.Event, error)
}

type eventRepo struct {
	db *gorm.DB
}

// NewEventRepo 创建 EventRepository 实例
func NewEventRepo(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) Create(ctx context.Context, event *model.Event) error {
	return translate(r.db.WithContext(ctx).Create(event).Error)
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).
		Preload("Club").
		Preload("Organizer").
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) Update(ctx context.Context, event *model.Event) error {
	oldVersion := event.Version
	result := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("id = ? AND version = ?", event.ID, oldVersion).
		Updates(map[string]interface{}{
			"title":       event.Title,
			"description": event.Description,
			"start_time":  event.StartTime,
			"end_time":    event.EndTime,
			"location":    event.Location,
			"category":    event.Category,
			"capacity":    event.Capacity,
			"poster_url":  event.PosterURL,
			"poster_key":  event.PosterKey,
			"club_id":     event.ClubID,
			"version":     oldVersion + 1,
			"updated_at":  gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	event.Version = oldVersion + 1
	return nil
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Event{}).Error
}

func (r *eventRepo) applyFilter(db *gorm.DB, f EventFilter) *gorm.DB {
	if q := strings.TrimSpace(f.Query); q != "" {
		like := containsPattern(q)
		db = db.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	switch f.State {
	case model.StateUpcoming:
		db = db.Where("start_time > ?", f.Now)
	case model.StateOngoing:
		db = db.Where("start_time <= ? AND end_time >= ?", f.Now, f.Now)
	case model.StatePast:
		db = db.Where("end_time < ?", f.Now)
	}
	if f.From != nil {
		db = db.Where("start_time >= ?", *f.From)
	}
	if f.To != nil {
		db = db.Where("start_time < ?", *f.To)
	}
	if f.ClubID != "" {
		db = db.Where("club_id = ?", f.ClubID)
	}
	if f.OrganizerID != "" {
		db = db.Where("organizer_id = ?", f.OrganizerID)
	}
	return db
}

func (r *eventRepo) Search(ctx context.Context, filter EventFilter, offset, limit int) ([]model.Event, int64, error) {
	var events []model.Event
	var total int64

	db := r.applyFilter(r.db.WithContext(ctx).Model(&model.Event{}), filter)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "start_time ASC"
	if filter.State == model.StatePast {
		order = "start_time DESC"
	}
	q := db.Preload("Club").Order(order)
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

func (r *eventRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).Error
	return categories, err
}

func (r *eventRepo) CountByClub(ctx context.Context, clubID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Event{}).Where("club_id = ?", clubID).Count(&count).Error
	return count, err
}

func (r *eventRepo) Stats(ctx context.Context, now time.Time, organizerID string) (*model.EventStats, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		if organizerID != "" {
			return db.Where("organizer_id = ?", organizerID)
		}
		return db
	}

	var counts struct {
		Total    int64
		Upcoming int64
		Ongoing  int64
		Past     int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Event{}).
		Scopes(scope).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE start_time > ?) AS upcoming,
			COUNT(*) FILTER (WHERE start_time <= ? AND end_time >= ?) AS ongoing,
			COUNT(*) FILTER (WHERE end_time < ?) AS past`, now, now, now, now).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	var rows []struct {
		Category string
		Count    int64
	}
	err = r.db.WithContext(ctx).
		Model(&model.Event{}).
		Scopes(scope).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	stats := model.EventStats{
		Total:      counts.Total,
		Upcoming:   counts.Upcoming,
		Ongoing:    counts.Ongoing,
		Past:       counts.Past,
		Categories: make(map[string]int64, len(rows)),
	}
	for _, row := range rows {
		stats.Categories[row.Category] = row.Count
	}
	return &stats, nil
}

func (r *eventRepo) ListRecent(ctx context.Context, limit int) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Preload("Club").
		Order("created_at DESC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *eventRepo) ListUnregisteredBetween(ctx context.Context, userID string, from, to time.Time, limit int) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Preload("Club").
		Where("start_time >= ? AND start_time <= ?", from, to).
		Where("NOT EXISTS (SELECT 1 FROM registrations rg WHERE rg.event_id = events.id AND rg.user_id = ?)", userID).
		Order("start_time ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

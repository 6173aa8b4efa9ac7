package model

import "time"

// EventState 活动时间状态，读取时根据 now 计算，不落库
type EventState string

const (
	StateUpcoming EventState = "upcoming"
	StateOngoing  EventState = "ongoing"
	StatePast     EventState = "past"
)

// ValidState 判断状态过滤值是否合法
func ValidState(s string) bool {
	switch EventState(s) {
	case StateUpcoming, StateOngoing, StatePast:
		return true
	}
	return false
}

// EventCategories 活动分类
var EventCategories = []string{
	"Academic", "Social", "Cultural", "Sports", "Workshop", "Seminar", "Other",
}

// ValidCategory 判断分类是否合法
func ValidCategory(c string) bool {
	for _, v := range EventCategories {
		if v == c {
			return true
		}
	}
	return false
}

// Event 活动表 — 对应 events
type Event struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title       string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Description string    `gorm:"type:text;not null"                             json:"description"`
	StartTime   time.Time `gorm:"type:timestamptz;not null"                      json:"start_time"`
	EndTime     time.Time `gorm:"type:timestamptz;not null"                      json:"end_time"`
	Location    string    `gorm:"type:varchar(200);not null"                     json:"location"`
	Category    string    `gorm:"type:varchar(50);not null"                      json:"category"`
	Capacity    *int      `gorm:"type:integer"                                   json:"capacity"`
	PosterURL   string    `gorm:"type:varchar(512);not null;default:''"          json:"poster_url"`
	PosterKey   string    `gorm:"type:varchar(255);not null;default:''"          json:"-"`
	ClubID      string    `gorm:"type:uuid;not null"                             json:"club_id"`
	OrganizerID string    `gorm:"type:uuid;not null"                             json:"organizer_id"`
	VersionedModel

	// 关联
	Club      *Club `gorm:"foreignKey:ClubID;references:ID"      json:"club,omitempty"`
	Organizer *User `gorm:"foreignKey:OrganizerID;references:ID" json:"organizer,omitempty"`
}

// TableName 指定表名
func (Event) TableName() string { return "events" }

// StateAt 计算 now 时刻的活动状态
// Upcoming: now < start；Ongoing: start ≤ now ≤ end；Past: now > end
func (e *Event) StateAt(now time.Time) EventState {
	switch {
	case now.Before(e.StartTime):
		return StateUpcoming
	case now.After(e.EndTime):
		return StatePast
	default:
		return StateOngoing
	}
}

// Started now 时刻活动是否已开始（报名截止、不可取消报名）
func (e *Event) Started(now time.Time) bool {
	return !now.Before(e.StartTime)
}

// Ended now 时刻活动是否已结束（可以评分）
func (e *Event) Ended(now time.Time) bool {
	return now.After(e.EndTime)
}

// IsFull 以给定报名人数判断是否满员；未设置容量视为不限
func (e *Event) IsFull(registered int64) bool {
	return e.Capacity != nil && registered >= int64(*e.Capacity)
}

// EventStats 活动统计
type EventStats struct {
	Total      int64            `json:"total"`
	Upcoming   int64            `json:"upcoming"`
	Ongoing    int64            `json:"ongoing"`
	Past       int64            `json:"past"`
	Categories map[string]int64 `json:"categories"`
}

package model

import "time"

// Registration 报名记录 — 对应 registrations，(user_id, event_id) 唯一
type Registration struct {
	ID           string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID       string    `gorm:"type:uuid;not null"                             json:"user_id"`
	EventID      string    `gorm:"type:uuid;not null"                             json:"event_id"`
	RegisteredAt time.Time `gorm:"type:timestamptz;not null"                      json:"registered_at"`

	User  *User  `gorm:"foreignKey:UserID;references:ID"  json:"user,omitempty"`
	Event *Event `gorm:"foreignKey:EventID;references:ID" json:"event,omitempty"`
}

// TableName 指定表名
func (Registration) TableName() string { return "registrations" }

// Attendance 签到记录 — 对应 attendances，(user_id, event_id) 唯一
type Attendance struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID      string    `gorm:"type:uuid;not null"                             json:"user_id"`
	EventID     string    `gorm:"type:uuid;not null"                             json:"event_id"`
	CheckedInAt time.Time `gorm:"type:timestamptz;not null"                      json:"checked_in_at"`
}

// TableName 指定表名
func (Attendance) TableName() string { return "attendances" }

// 评分范围
const (
	MinScore = 1
	MaxScore = 5
)

// Rating 评分 — 对应 ratings，(user_id, event_id) 唯一
type Rating struct {
	ID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID   string `gorm:"type:uuid;not null"                             json:"user_id"`
	EventID  string `gorm:"type:uuid;not null"                             json:"event_id"`
	Score    int    `gorm:"type:smallint;not null"                         json:"score"`
	Feedback string `gorm:"type:text;not null;default:''"                  json:"feedback"`
	BaseModel

	User *User `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
}

// TableName 指定表名
func (Rating) TableName() string { return "ratings" }

// RosterEntry 参与者名单行：报名 + 用户 + 签到情况
type RosterEntry struct {
	UserID       string     `gorm:"column:user_id"`
	Username     string     `gorm:"column:username"`
	FirstName    string     `gorm:"column:first_name"`
	LastName     string     `gorm:"column:last_name"`
	Email        string     `gorm:"column:email"`
	RegisteredAt time.Time  `gorm:"column:registered_at"`
	CheckedInAt  *time.Time `gorm:"column:checked_in_at"`
}

// Attended 是否已签到
func (r *RosterEntry) Attended() bool { return r.CheckedInAt != nil }

// RecentRegistration 最近报名（组织者仪表盘）
type RecentRegistration struct {
	EventID      string    `gorm:"column:event_id"`
	EventTitle   string    `gorm:"column:event_title"`
	UserID       string    `gorm:"column:user_id"`
	Username     string    `gorm:"column:username"`
	RegisteredAt time.Time `gorm:"column:registered_at"`
}

package model

import "time"

// Reminder 活动提醒 — 对应 reminders，(user_id, event_id) 唯一
type Reminder struct {
	ID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    string     `gorm:"type:uuid;not null"                             json:"user_id"`
	EventID   string     `gorm:"type:uuid;not null"                             json:"event_id"`
	RemindAt  time.Time  `gorm:"type:timestamptz;not null"                      json:"remind_at"`
	SentAt    *time.Time `gorm:"type:timestamptz"                               json:"sent_at,omitempty"`
	Attempts  int        `gorm:"not null;default:0"                             json:"-"`
	LastError string     `gorm:"type:text;not null;default:''"                  json:"-"`
	BaseModel

	User  *User  `gorm:"foreignKey:UserID;references:ID"  json:"user,omitempty"`
	Event *Event `gorm:"foreignKey:EventID;references:ID" json:"event,omitempty"`
}

// TableName 指定表名
func (Reminder) TableName() string { return "reminders" }

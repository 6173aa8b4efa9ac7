package model

import "time"

// EventPhoto 活动照片 — 对应 event_photos
type EventPhoto struct {
	ID         string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EventID    string    `gorm:"type:uuid;not null"                             json:"event_id"`
	PhotoURL   string    `gorm:"type:varchar(512);not null"                     json:"photo_url"`
	StorageKey string    `gorm:"type:varchar(255);not null;default:''"          json:"-"`
	Caption    string    `gorm:"type:varchar(200);not null;default:''"          json:"caption"`
	UploadedBy string    `gorm:"type:uuid;not null"                             json:"uploaded_by"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (EventPhoto) TableName() string { return "event_photos" }

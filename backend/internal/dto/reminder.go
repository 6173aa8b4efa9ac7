package dto

import "time"

// SetReminderRequest 设置提醒请求
type SetReminderRequest struct {
	RemindAt time.Time `json:"remind_at" binding:"required"`
}

// ReminderResponse 提醒
type ReminderResponse struct {
	ID         string     `json:"id"`
	EventID    string     `json:"event_id"`
	EventTitle string     `json:"event_title,omitempty"`
	EventStart *time.Time `json:"event_start,omitempty"`
	RemindAt   time.Time  `json:"remind_at"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
}

package dto

import "time"

// PhotoResponse 活动照片
type PhotoResponse struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	PhotoURL   string    `json:"photo_url"`
	Caption    string    `json:"caption"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

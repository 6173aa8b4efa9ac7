package dto

import (
	"time"

	"campus-events/backend/internal/model"
)

// AdminDashboard 管理员仪表盘
type AdminDashboard struct {
	TotalUsers   int64             `json:"total_users"`
	UsersByRole  map[string]int64  `json:"users_by_role"`
	ClubCount    int64             `json:"club_count"`
	EventStats   *model.EventStats `json:"event_stats"`
	RecentEvents []EventResponse   `json:"recent_events"`
}

// RecentRegistrationResponse 最近报名
type RecentRegistrationResponse struct {
	EventID      string    `json:"event_id"`
	EventTitle   string    `json:"event_title"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	RegisteredAt time.Time `json:"registered_at"`
}

// OrganizerDashboard 组织者仪表盘
type OrganizerDashboard struct {
	Clubs               []ClubResponse               `json:"clubs"`
	EventStats          *model.EventStats            `json:"event_stats"`
	RecentRegistrations []RecentRegistrationResponse `json:"recent_registrations"`
}

// StudentStats 学生参与统计
type StudentStats struct {
	Registered int `json:"registered"`
	Upcoming   int `json:"upcoming"`
	Past       int `json:"past"`
	Attended   int `json:"attended"`
}

// StudentDashboard 学生仪表盘
type StudentDashboard struct {
	UpcomingEvents []EventResponse `json:"upcoming_events"`
	Stats          StudentStats    `json:"stats"`
	Recommended    []EventResponse `json:"recommended"`
}

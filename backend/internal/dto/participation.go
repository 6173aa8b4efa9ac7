package dto

import "time"

// ── 报名 / 签到 / 评分 DTO ──

// CheckInRequest 组织者代签到请求，user_id 与 username 二选一
type CheckInRequest struct {
	UserID   string `json:"user_id"  binding:"omitempty,uuid"`
	Username string `json:"username" binding:"omitempty,max=64"`
}

// RateRequest 评分请求，分值范围在业务层校验
type RateRequest struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback" binding:"max=2000"`
}

// RegistrationResponse 报名结果
type RegistrationResponse struct {
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

// CheckInResponse 签到结果
type CheckInResponse struct {
	EventID          string    `json:"event_id"`
	UserID           string    `json:"user_id"`
	CheckedInAt      time.Time `json:"checked_in_at"`
	AlreadyCheckedIn bool      `json:"already_checked_in"`
}

// RosterEntryResponse 参与者名单行
type RosterEntryResponse struct {
	UserID       string     `json:"user_id"`
	Username     string     `json:"username"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `json:"email"`
	RegisteredAt time.Time  `json:"registered_at"`
	Attended     bool       `json:"attended"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty"`
}

// MyEventResponse 我的活动
type MyEventResponse struct {
	Event        EventResponse `json:"event"`
	RegisteredAt time.Time     `json:"registered_at"`
	Attended     bool          `json:"attended"`
	MyRating     *int          `json:"my_rating,omitempty"`
	CanRate      bool          `json:"can_rate"`
}

// RatingResponse 评分
type RatingResponse struct {
	User      *UserBrief `json:"user,omitempty"`
	Score     int        `json:"score"`
	Feedback  string     `json:"feedback"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RatingListResponse 活动评分汇总
type RatingListResponse struct {
	Average float64          `json:"average"`
	Count   int64            `json:"count"`
	List    []RatingResponse `json:"list"`
}

package dto

import "time"

// ── 活动模块 DTO ──

// CreateEventRequest 创建活动请求
type CreateEventRequest struct {
	Title       string    `json:"title"       binding:"required,max=200"`
	Description string    `json:"description" binding:"required"`
	StartTime   time.Time `json:"start_time"  binding:"required"`
	EndTime     time.Time `json:"end_time"    binding:"required"`
	Location    string    `json:"location"    binding:"required,max=200"`
	Category    string    `json:"category"    binding:"required,event_category"`
	Capacity    *int      `json:"capacity"    binding:"omitempty,min=1"`
	ClubID      string    `json:"club_id"     binding:"required,uuid"`
}

// UpdateEventRequest 更新活动请求，nil 字段不修改
// Version 非空时必须与当前版本一致
type UpdateEventRequest struct {
	Title         *string    `json:"title"          binding:"omitempty,max=200"`
	Description   *string    `json:"description"`
	StartTime     *time.Time `json:"start_time"`
	EndTime       *time.Time `json:"end_time"`
	Location      *string    `json:"location"       binding:"omitempty,max=200"`
	Category      *string    `json:"category"       binding:"omitempty,event_category"`
	Capacity      *int       `json:"capacity"       binding:"omitempty,min=1"`
	ClearCapacity bool       `json:"clear_capacity"` // true 时取消人数上限
	ClubID        *string    `json:"club_id"        binding:"omitempty,uuid"`
	Version       *int       `json:"version"`
}

// EventSearchRequest 活动搜索参数
type EventSearchRequest struct {
	PaginationRequest
	Query    string     `form:"q"        binding:"omitempty,max=100"`
	Category string     `form:"category" binding:"omitempty,event_category"`
	State    string     `form:"state"    binding:"omitempty,event_state"`
	From     *time.Time `form:"from"`
	To       *time.Time `form:"to"`
	ClubID   string     `form:"club_id"  binding:"omitempty,uuid"`
}

// CalendarRequest 日历查询参数
type CalendarRequest struct {
	From *time.Time `form:"from"`
	To   *time.Time `form:"to"`
}

// EventResponse 活动响应（列表）
type EventResponse struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	Location          string    `json:"location"`
	Category          string    `json:"category"`
	Capacity          *int      `json:"capacity"`
	PosterURL         string    `json:"poster_url"`
	ClubID            string    `json:"club_id"`
	ClubName          string    `json:"club_name,omitempty"`
	OrganizerID       string    `json:"organizer_id"`
	State             string    `json:"state"`
	RegistrationCount int64     `json:"registration_count"`
	Version           int       `json:"version"`
}

// ViewerState 当前用户与活动的关系
type ViewerState struct {
	IsRegistered bool `json:"is_registered"`
	HasAttended  bool `json:"has_attended"`
	CanRegister  bool `json:"can_register"`
	CanRate      bool `json:"can_rate"`
	MyRating     *int `json:"my_rating,omitempty"`
	CanManage    bool `json:"can_manage"`
}

// EventDetailResponse 活动详情
type EventDetailResponse struct {
	EventResponse
	Organizer       *UserBrief   `json:"organizer,omitempty"`
	AttendanceCount int64        `json:"attendance_count"`
	SpotsLeft       *int64       `json:"spots_left,omitempty"`
	AverageRating   float64      `json:"average_rating"`
	RatingCount     int64        `json:"rating_count"`
	Viewer          *ViewerState `json:"viewer,omitempty"`
}

// CalendarItem 日历 JSON 条目
type CalendarItem struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	URL   string    `json:"url"`
}

// CategoriesResponse 活动分类
type CategoriesResponse struct {
	All   []string `json:"all"`
	InUse []string `json:"in_use"`
}

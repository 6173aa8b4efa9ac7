package dto

import "time"

// ── 社团模块 DTO ──

// CreateClubRequest 创建社团请求
type CreateClubRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"max=5000"`
}

// UpdateClubRequest 更新社团请求
type UpdateClubRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=100"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
}

// ClubListRequest 社团列表查询参数
type ClubListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// ClubResponse 社团响应
type ClubResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	LogoURL     string     `json:"logo_url"`
	Owner       *UserBrief `json:"owner,omitempty"`
	OwnerID     string     `json:"owner_id"`
	EventCount  int64      `json:"event_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

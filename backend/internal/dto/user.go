package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=admin organizer student"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// UpdateProfileRequest 更新个人资料请求，nil 字段不修改
type UpdateProfileRequest struct {
	Username  *string `json:"username"   binding:"omitempty,min=4,max=64"`
	Email     *string `json:"email"      binding:"omitempty,email,max=120"`
	FirstName *string `json:"first_name" binding:"omitempty,max=64"`
	LastName  *string `json:"last_name"  binding:"omitempty,max=64"`
	Bio       *string `json:"bio"        binding:"omitempty,max=2000"`
}

// ChangeRoleRequest 修改角色请求
type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

package dto

// ── 认证模块 DTO ──

// RegisterRequest 学生自助注册请求
type RegisterRequest struct {
	Username  string `json:"username"   binding:"required,min=4,max=64"`
	Email     string `json:"email"      binding:"required,email,max=120"`
	Password  string `json:"password"   binding:"required,min=8,max=128"`
	FirstName string `json:"first_name" binding:"required,max=64"`
	LastName  string `json:"last_name"  binding:"required,max=64"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email      string `json:"email"    binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=128"`
}

package model

// 用户角色
const (
	RoleAdmin     = "admin"
	RoleOrganizer = "organizer"
	RoleStudent   = "student"
)

// ValidRole 判断角色是否合法
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleOrganizer, RoleStudent:
		return true
	}
	return false
}

// User 用户表 — 对应 users
type User struct {
	ID             string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Username       string `gorm:"type:varchar(64);not null"                      json:"username"`
	Email          string `gorm:"type:varchar(120);not null"                     json:"email"`
	PasswordHash   string `gorm:"type:varchar(255);not null"                     json:"-"`
	FirstName      string `gorm:"type:varchar(64);not null;default:''"           json:"first_name"`
	LastName       string `gorm:"type:varchar(64);not null;default:''"           json:"last_name"`
	Role           string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	Bio            string `gorm:"type:text;not null;default:''"                  json:"bio"`
	ProfilePicture string `gorm:"type:varchar(512);not null;default:''"          json:"profile_picture"`
	AvatarKey      string `gorm:"type:varchar(255);not null;default:''"          json:"-"`
	TokenVersion   int    `gorm:"not null;default:0"                             json:"-"` // 修改密码时递增
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// FullName 姓名（名在前）
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

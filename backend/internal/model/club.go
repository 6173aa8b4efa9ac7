package model

// Club 社团表 — 对应 clubs
type Club struct {
	ID          string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Description string `gorm:"type:text;not null;default:''"                  json:"description"`
	LogoURL     string `gorm:"type:varchar(512);not null;default:''"          json:"logo_url"`
	LogoKey     string `gorm:"type:varchar(255);not null;default:''"          json:"-"`
	OwnerID     string `gorm:"type:uuid;not null"                             json:"owner_id"`
	BaseModel

	// 关联
	Owner *User `gorm:"foreignKey:OwnerID;references:ID" json:"owner,omitempty"`
}

// TableName 指定表名
func (Club) TableName() string { return "clubs" }

// ClubWithCount 社团及其活动数量（列表查询用）
type ClubWithCount struct {
	Club
	EventCount int64 `gorm:"column:event_count" json:"event_count"`
}

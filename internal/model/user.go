package model

import "time"

// User 用户模型
//
// RegisteredAt 是账号在内容平台的注册时间，和 BaseModel.CreatedAt 分开：
// 早期导入的存量账号没有注册时间，缺失本身是老用户启发式的信号之一
type User struct {
	BaseModel
	PublicID     int64      `gorm:"uniqueIndex;not null" json:"public_id"`
	Nickname     string     `gorm:"type:varchar(64);not null;default:''" json:"nickname"`
	IsAdmin      bool       `gorm:"not null;default:false" json:"is_admin"`
	IsPremium    bool       `gorm:"not null;default:false" json:"is_premium"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

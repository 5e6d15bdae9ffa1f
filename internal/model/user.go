package model

import "time"

// User 注册用户（email 全局唯一）
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"type:varchar(255);uniqueIndex:idx_user_email;not null"`
	HashedPassword string    `json:"-" gorm:"type:varchar(128);not null"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"-"`
}

func (User) TableName() string { return "users" }

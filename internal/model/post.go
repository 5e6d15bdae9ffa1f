package model

import "time"

// Post 内容主体。AuthorID 与 CreatedAt 建库后不可变。
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
	AuthorID  uint      `json:"author_id" gorm:"index:idx_post_author;not null"`
}

func (Post) TableName() string { return "posts" }

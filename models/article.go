package models

import "time"

// Article is a published piece of content together with its comments.
// PubDate and CreatedAt are set once at creation time; UpdatedAt stays null
// until the article is first modified.
type Article struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:250;not null" json:"title"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Author      string     `gorm:"size:100;not null" json:"author"`
	IsPublished bool       `gorm:"default:true" json:"is_published"`
	PubDate     time.Time  `json:"pub_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
	Comments    []Comment  `gorm:"foreignKey:ArticleID" json:"comments"`
}

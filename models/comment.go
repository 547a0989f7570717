package models

import "time"

// Comment is a reply attached to exactly one article. Comments are immutable
// once created and are removed only when their article is deleted.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Author    string    `gorm:"size:100;not null" json:"author"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ArticleID uint      `gorm:"index;not null" json:"article_id"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import "time"

// Comment is an anonymous reply to an episode. RandomName is assigned once on creation.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EpisodeID   uint      `gorm:"index;not null" json:"-"`
	CommentText string    `gorm:"type:text;not null" json:"comment_text"`
	RandomName  string    `gorm:"size:50;not null" json:"random_name"`
	CreatedAt   time.Time `json:"created_at"`
}

package models

import "time"

// Episode is the numbered content unit of the digest.
type Episode struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	EpisodeNumber int       `gorm:"uniqueIndex;not null" json:"episode_number"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	ImageURL      *string   `gorm:"type:text" json:"image_url"`
	LikeCount     int       `gorm:"not null;default:0" json:"like_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Comments      []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments"`
}

// EpisodeSummary is the list view of an episode.
type EpisodeSummary struct {
	ID            uint      `json:"id"`
	EpisodeNumber int       `json:"episode_number"`
	Title         string    `json:"title"`
	LikeCount     int       `json:"like_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// Summary drops content, image and comments.
func (e Episode) Summary() EpisodeSummary {
	return EpisodeSummary{
		ID:            e.ID,
		EpisodeNumber: e.EpisodeNumber,
		Title:         e.Title,
		LikeCount:     e.LikeCount,
		CreatedAt:     e.CreatedAt,
	}
}

package models

import "time"

// Prompt categories and content types.
const (
	PromptCategoryAll   = "All"
	PromptCategoryArt   = "Art"
	PromptCategoryMusic = "Music"

	ContentTypeAll   = "all"
	ContentTypeImage = "image"
	ContentTypeMusic = "music"
)

// Prompt is a community-shared generation prompt.
type Prompt struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Text        string    `gorm:"type:text;not null" json:"prompt"`
	Hashtags    []string  `gorm:"type:text;serializer:json" json:"hashtags"`
	Category    string    `gorm:"not null;index" json:"category"`
	Type        string    `gorm:"not null;index" json:"type"`
	Author      string    `json:"author"`
	AuthorID    *uint     `gorm:"index" json:"author_id,omitempty"`
	Likes       int       `gorm:"not null;default:0" json:"likes"`
	Uses        int       `gorm:"not null;default:0" json:"uses"`
	SuccessRate int       `gorm:"not null;default:0" json:"success_rate"`
	Description string    `json:"description"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// CategoryForType maps a content type to its prompt category.
func CategoryForType(contentType string) string {
	if contentType == ContentTypeMusic {
		return PromptCategoryMusic
	}
	return PromptCategoryArt
}

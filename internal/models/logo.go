package models

import "time"

// Logo is an entry in a user's logo library. UserID is nil for the shared starter set.
type Logo struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      *uint     `gorm:"index" json:"user_id,omitempty"`
	Name        string    `gorm:"not null" json:"name"`
	URL         string    `gorm:"not null" json:"url"`
	Prompt      string    `json:"prompt,omitempty"`
	Transparent bool      `gorm:"not null;default:false" json:"transparent"`
	CreatedAt   time.Time `json:"created_at"`
}

// LogoDraft is a generated logo that has not been saved yet.
type LogoDraft struct {
	URL         string `json:"url"`
	Prompt      string `json:"prompt"`
	Transparent bool   `json:"transparent"`
}

// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account on DOMin8X.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Username       string         `gorm:"uniqueIndex;not null" json:"username"`
	Email          string         `gorm:"uniqueIndex;not null" json:"email"`
	Password       string         `gorm:"not null" json:"-"`
	Name           string         `json:"name"`
	Avatar         string         `json:"avatar"`
	Bio            string         `json:"bio"`
	FollowersCount int            `gorm:"not null;default:0" json:"followers"`
	FollowingCount int            `gorm:"not null;default:0" json:"following"`
	PostsCount     int            `gorm:"not null;default:0" json:"posts"`
	Verified       bool           `gorm:"not null;default:false" json:"verified"`
	Badges         []string       `gorm:"type:text;serializer:json" json:"badges"`
	CreatedAt      time.Time      `json:"join_date"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserSnapshot is the denormalized author view embedded in leaderboard rows and events.
type UserSnapshot struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}

// Snapshot returns the public summary of u.
func (u *User) Snapshot() UserSnapshot {
	return UserSnapshot{
		UserID:   u.ID,
		Username: u.Username,
		Name:     u.Name,
		Avatar:   u.Avatar,
	}
}

// Preference stores per-user UI settings.
type Preference struct {
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	DarkMode  bool      `gorm:"not null;default:false" json:"dark_mode"`
	UpdatedAt time.Time `json:"updated_at"`
}

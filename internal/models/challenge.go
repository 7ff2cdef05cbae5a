package models

import "time"

// ChallengeStatus is the lifecycle state of a challenge.
type ChallengeStatus string

const (
	ChallengeStatusUpcoming  ChallengeStatus = "upcoming"
	ChallengeStatusActive    ChallengeStatus = "active"
	ChallengeStatusCompleted ChallengeStatus = "completed"
)

// Valid reports whether s is a known status.
func (s ChallengeStatus) Valid() bool {
	switch s {
	case ChallengeStatusUpcoming, ChallengeStatusActive, ChallengeStatusCompleted:
		return true
	}
	return false
}

// Challenge is a time-boxed community competition.
type Challenge struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Title           string          `gorm:"not null" json:"title"`
	Type            string          `json:"type"`
	Description     string          `gorm:"type:text;not null" json:"description"`
	Hashtags        []string        `gorm:"type:text;serializer:json" json:"hashtags"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `gorm:"index" json:"end_date"`
	Status          ChallengeStatus `gorm:"not null;size:16;index" json:"status"`
	Prize           string          `json:"prize"`
	Participants    int             `gorm:"not null;default:0" json:"participants"`
	Submissions     int             `gorm:"not null;default:0" json:"submissions"`
	Rules           []string        `gorm:"type:text;serializer:json" json:"rules"`
	JudgingCriteria []string        `gorm:"type:text;serializer:json" json:"judging_criteria"`
	CreatedByID     *uint           `gorm:"index" json:"created_by,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// LeaderboardEntry is a pre-ranked row of a challenge leaderboard.
type LeaderboardEntry struct {
	ID          uint         `gorm:"primaryKey" json:"-"`
	ChallengeID uint         `gorm:"not null;index" json:"challenge_id"`
	Rank        int          `gorm:"not null" json:"rank"`
	User        UserSnapshot `gorm:"embedded;embeddedPrefix:user_" json:"user"`
	Score       int          `gorm:"not null;default:0" json:"score"`
	Votes       int          `gorm:"not null;default:0" json:"votes"`
	Submissions int          `gorm:"not null;default:0" json:"submissions"`
	Badges      []string     `gorm:"type:text;serializer:json" json:"badges"`
}

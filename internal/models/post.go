package models

import (
	"time"

	"gorm.io/gorm"
)

// Post kinds.
const (
	PostKindText  = "text"
	PostKindImage = "image"
	PostKindMusic = "music"
)

// Post is a feed entry ("tweet").
type Post struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	UserID           uint              `gorm:"not null;index" json:"user_id"`
	User             User              `gorm:"foreignKey:UserID" json:"user"`
	Content          string            `gorm:"type:text" json:"content"`
	Kind             string            `gorm:"not null;default:text" json:"type"`
	GeneratedContent *GeneratedContent `gorm:"type:text;serializer:json" json:"generated_content,omitempty"`
	LikesCount       int               `gorm:"not null;default:0" json:"likes"`
	RetweetsCount    int               `gorm:"not null;default:0" json:"retweets"`
	CommentsCount    int               `gorm:"not null;default:0" json:"comments"`
	// Viewer flags are filled per request from the reactions table.
	IsLiked      bool           `gorm:"-" json:"is_liked"`
	IsRetweeted  bool           `gorm:"-" json:"is_retweeted"`
	IsBookmarked bool           `gorm:"-" json:"is_bookmarked"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// GeneratedContent is the simulated AI output attached to a post.
type GeneratedContent struct {
	Type        string       `json:"type"`
	URL         string       `json:"url,omitempty"`
	Title       string       `json:"title,omitempty"`
	Duration    string       `json:"duration,omitempty"`
	Waveform    string       `json:"waveform,omitempty"`
	Prompt      string       `json:"prompt"`
	AppliedLogo *AppliedLogo `json:"applied_logo,omitempty"`
}

// AppliedLogo describes a cosmetic logo overlay. Nothing is rasterized.
type AppliedLogo struct {
	LogoID   uint    `json:"logo_id"`
	LogoURL  string  `json:"logo_url"`
	Size     int     `json:"size"`
	Opacity  float64 `json:"opacity"`
	Position string  `json:"position"`
	Offset   int     `json:"offset"`
}

// Reaction kinds.
const (
	ReactionLike     = "like"
	ReactionRetweet  = "retweet"
	ReactionBookmark = "bookmark"
)

// Reaction is one user's like, retweet or bookmark on a post.
// The combination of UserID, PostID and Kind must be unique.
type Reaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_reaction_user_post_kind" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_reaction_user_post_kind;index" json:"post_id"`
	Kind      string    `gorm:"not null;size:16;uniqueIndex:idx_reaction_user_post_kind" json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

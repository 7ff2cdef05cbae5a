package models

import "time"

// Studio project kinds. Website projects come from the site importer.
const (
	ProjectKindLogo    = "logo"
	ProjectKindImage   = "image"
	ProjectKindBrand   = "brand"
	ProjectKindSocial  = "social"
	ProjectKindWebsite = "website"
)

// Studio project review states.
const (
	ProjectStatusNew        = "new"
	ProjectStatusInProgress = "in-progress"
	ProjectStatusReview     = "review"
	ProjectStatusCompleted  = "completed"
)

// Where a project started.
const (
	ProjectSourceStudio   = "Studio Pro"
	ProjectSourceFeed     = "DOMin8X"
	ProjectSourceSiteCopy = "Cur10saX"
)

// Project is a Studio Pro workspace item owned by one user.
type Project struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	UserID         uint          `gorm:"not null;index" json:"user_id"`
	Name           string        `gorm:"not null" json:"name"`
	Type           string        `gorm:"not null;size:16" json:"type"`
	OriginalPrompt string        `gorm:"type:text" json:"original_prompt"`
	Thumbnail      string        `json:"thumbnail,omitempty"`
	Status         string        `gorm:"not null;size:16;index" json:"status"`
	Source         string        `gorm:"not null;size:32" json:"source"`
	SourcePostID   *uint         `gorm:"index" json:"source_post_id,omitempty"`
	Site           *ImportedSite `gorm:"type:text;serializer:json" json:"site,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `gorm:"index" json:"last_modified"`
}

// ImportedSite is the editable block model of a copied website.
type ImportedSite struct {
	URL      string        `json:"url"`
	Title    string        `json:"title"`
	Elements []SiteElement `json:"elements"`
}

// SiteElement is one block of an imported page. Type is header, section or footer.
type SiteElement struct {
	ID      string     `json:"id"`
	Type    string     `json:"type"`
	Content string     `json:"content"`
	Styles  SiteStyles `json:"styles"`
}

type SiteStyles struct {
	BackgroundColor string `json:"background_color"`
	Color           string `json:"color"`
	FontSize        string `json:"font_size"`
	Padding         string `json:"padding"`
	TextAlign       string `json:"text_align,omitempty"`
	LineHeight      string `json:"line_height,omitempty"`
}

// TrendingTopic is a hashtag and how many posts and prompts carry it.
type TrendingTopic struct {
	Name  string `json:"name"`
	Posts int    `json:"posts"`
}

// Package generation simulates AI content generation. Output is deterministic
// stock media selected by content type; no model is invoked.
package generation

import (
	"context"
	"time"

	"domin8x/internal/models"
)

// Stock media returned by the simulated generators.
const (
	ImageURL    = "https://images.unsplash.com/photo-1590870845755-4c3c46615dd1?crop=entropy&cs=srgb&fm=jpg&ixid=M3w3NDk1Nzh8MHwxfHNlYXJjaHwzfHxBSSUyMGFydHxlbnwwfHx8Ymx1ZXwxNzUyNzg3ODQwfDA&ixlib=rb-4.1.0&q=85"
	WaveformURL = "https://images.pexels.com/photos/8254894/pexels-photo-8254894.jpeg"
	LogoURL     = "https://images.unsplash.com/photo-1611162618071-b39a2ec055fb?crop=entropy&cs=srgb&fm=jpg&ixid=M3w3NDQ2NDJ8MHwxfHNlYXJjaHwxfHxzb2NpYWwlMjBtZWRpYXxlbnwwfHx8Ymx1ZXwxNzUyNzQ5MDY1fDA&ixlib=rb-4.1.0&q=85&w=100&h=100"

	MusicDuration = "2:15"
)

// Content returns the generated payload for kind. Text has no generated payload.
func Content(kind, prompt string) *models.GeneratedContent {
	switch kind {
	case models.PostKindImage:
		return &models.GeneratedContent{Type: models.PostKindImage, URL: ImageURL, Prompt: prompt}
	case models.PostKindMusic:
		return &models.GeneratedContent{
			Type:     models.PostKindMusic,
			Title:    "AI Generated: " + prompt,
			Duration: MusicDuration,
			Waveform: WaveformURL,
			Prompt:   prompt,
		}
	default:
		return nil
	}
}

// Logo waits delay, or until ctx is done, and returns an unsaved logo.
func Logo(ctx context.Context, delay time.Duration, prompt string) (models.LogoDraft, error) {
	if err := sleep(ctx, delay); err != nil {
		return models.LogoDraft{}, err
	}
	return models.LogoDraft{URL: LogoURL, Prompt: prompt, Transparent: false}, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

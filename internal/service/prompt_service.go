package service

import (
	"context"
	"strings"

	"domin8x/internal/events"
	"domin8x/internal/models"
	"domin8x/internal/promptindex"
	"domin8x/internal/repository"
)

// DefaultPromptDescription is stored when a contributor leaves the description blank.
const DefaultPromptDescription = "User-contributed prompt"

type PromptService struct {
	promptRepo repository.PromptRepository
	userRepo   repository.UserRepository
	events     events.Publisher
}

type AddPromptInput struct {
	UserID      uint   `json:"-"`
	Prompt      string `json:"prompt"`
	Hashtags    string `json:"hashtags"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

func NewPromptService(promptRepo repository.PromptRepository, userRepo repository.UserRepository, publisher events.Publisher) *PromptService {
	return &PromptService{promptRepo: promptRepo, userRepo: userRepo, events: publisher}
}

// List filters and sorts the stored index.
func (s *PromptService) List(ctx context.Context, q promptindex.Query) ([]models.Prompt, error) {
	prompts, err := s.promptRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return promptindex.Apply(prompts, q), nil
}

func (s *PromptService) AddPrompt(ctx context.Context, in AddPromptInput) (*models.Prompt, error) {
	fields := map[string]string{}
	text := strings.TrimSpace(in.Prompt)
	if text == "" {
		fields["prompt"] = "Prompt is required"
	}
	if strings.TrimSpace(in.Hashtags) == "" {
		fields["hashtags"] = "At least one hashtag is required"
	}
	contentType := in.Type
	if contentType == "" {
		contentType = models.ContentTypeImage
	}
	if contentType != models.ContentTypeImage && contentType != models.ContentTypeMusic {
		fields["type"] = "Type must be image or music"
	}
	if len(fields) > 0 {
		return nil, models.NewFieldError("Invalid prompt", fields)
	}

	hashtags := promptindex.ParseHashtags(in.Hashtags)
	if len(hashtags) == 0 {
		return nil, models.NewFieldError("Invalid prompt", map[string]string{"hashtags": "At least one hashtag is required"})
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = DefaultPromptDescription
	}
	authorID := author.ID
	prompt := &models.Prompt{
		Text:        text,
		Hashtags:    hashtags,
		Category:    models.CategoryForType(contentType),
		Type:        contentType,
		Author:      author.Username,
		AuthorID:    &authorID,
		Description: description,
	}
	if err := s.promptRepo.Create(ctx, prompt); err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events.Event{Type: events.PromptCreated, Payload: prompt})
	return prompt, nil
}

func (s *PromptService) LikePrompt(ctx context.Context, id uint) (*models.Prompt, error) {
	prompt, err := s.promptRepo.IncrementLikes(ctx, id)
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events.Event{Type: events.PromptUpdated, Payload: prompt})
	return prompt, nil
}

// UsePrompt counts a use and returns the prompt so its text can seed a creation.
func (s *PromptService) UsePrompt(ctx context.Context, id uint) (*models.Prompt, error) {
	prompt, err := s.promptRepo.IncrementUses(ctx, id)
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events.Event{Type: events.PromptUpdated, Payload: prompt})
	return prompt, nil
}

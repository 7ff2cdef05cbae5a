package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"domin8x/internal/events"
	"domin8x/internal/featureflags"
	"domin8x/internal/generation"
	"domin8x/internal/models"
	"domin8x/internal/repository"
)

type LogoService struct {
	logoRepo repository.LogoRepository
	flags    *featureflags.Manager
	events   events.Publisher
	delay    time.Duration
}

type SaveLogoInput struct {
	UserID      uint   `json:"-"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Prompt      string `json:"prompt"`
	Transparent bool   `json:"transparent"`
}

func NewLogoService(logoRepo repository.LogoRepository, flags *featureflags.Manager, publisher events.Publisher, delay time.Duration) *LogoService {
	return &LogoService{logoRepo: logoRepo, flags: flags, events: publisher, delay: delay}
}

func (s *LogoService) ListLogos(ctx context.Context, userID uint) ([]models.Logo, error) {
	return s.logoRepo.ListForUser(ctx, userID)
}

// GenerateLogo simulates logo generation for the lifetime of ctx. The draft is not saved.
func (s *LogoService) GenerateLogo(ctx context.Context, userID uint, prompt string) (*models.LogoDraft, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, models.NewFieldError("Prompt is required", map[string]string{"prompt": "Please describe your logo"})
	}
	if !s.flags.EnabledOrDefault(featureflags.LogoGeneration, userID, true) {
		return nil, models.NewValidationError("Logo generation is disabled")
	}

	draft, err := generation.Logo(ctx, s.delay, prompt)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}
	return &draft, nil
}

func (s *LogoService) SaveLogo(ctx context.Context, in SaveLogoInput) (*models.Logo, error) {
	fields := map[string]string{}
	name := strings.TrimSpace(in.Name)
	url := strings.TrimSpace(in.URL)
	if name == "" {
		fields["name"] = "Logo name is required"
	}
	if url == "" {
		fields["url"] = "Generate a logo before saving"
	}
	if len(fields) > 0 {
		return nil, models.NewFieldError("Invalid logo", fields)
	}

	owner := in.UserID
	logo := &models.Logo{
		UserID:      &owner,
		Name:        name,
		URL:         url,
		Prompt:      strings.TrimSpace(in.Prompt),
		Transparent: in.Transparent,
	}
	if err := s.logoRepo.Create(ctx, logo); err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events.Event{Type: events.LogoSaved, UserID: owner, Payload: logo})
	return logo, nil
}

// ownedLogo hides logos the user does not own behind NOT_FOUND.
func (s *LogoService) ownedLogo(ctx context.Context, userID, id uint) (*models.Logo, error) {
	logo, err := s.logoRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if logo.UserID == nil || *logo.UserID != userID {
		return nil, models.NewNotFoundError("Logo", id)
	}
	return logo, nil
}

// MakeTransparent marks the logo background as removed. No pixels are touched.
func (s *LogoService) MakeTransparent(ctx context.Context, userID, id uint) (*models.Logo, error) {
	logo, err := s.ownedLogo(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.logoRepo.SetTransparent(ctx, id, true); err != nil {
		return nil, err
	}
	logo.Transparent = true
	s.events.Publish(ctx, events.Event{Type: events.LogoSaved, UserID: userID, Payload: logo})
	return logo, nil
}

func (s *LogoService) DeleteLogo(ctx context.Context, userID, id uint) error {
	if _, err := s.ownedLogo(ctx, userID, id); err != nil {
		return err
	}
	if err := s.logoRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Publish(ctx, events.Event{Type: events.LogoDeleted, UserID: userID, Payload: map[string]uint{"id": id}})
	return nil
}

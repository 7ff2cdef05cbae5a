package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"domin8x/internal/events"
	"domin8x/internal/middleware"
	"domin8x/internal/models"
	"domin8x/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
	prefRepo repository.PreferenceRepository
	sessions SessionStore
	events   events.Publisher
}

// UpdateProfileInput carries optional profile edits. Nil fields are left unchanged.
type UpdateProfileInput struct {
	UserID uint    `json:"-"`
	Name   *string `json:"name"`
	Bio    *string `json:"bio"`
	Avatar *string `json:"avatar"`
}

func NewUserService(
	userRepo repository.UserRepository,
	prefRepo repository.PreferenceRepository,
	sessions SessionStore,
	publisher events.Publisher,
) *UserService {
	return &UserService{userRepo: userRepo, prefRepo: prefRepo, sessions: sessions, events: publisher}
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.userRepo.List(ctx, limit, offset)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxBioLen = 160
	const maxNameLen = 50

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, models.NewFieldError("Invalid profile", map[string]string{"name": "Name is required"})
		}
		if utf8.RuneCountInString(name) > maxNameLen {
			return nil, models.NewFieldError("Invalid profile", map[string]string{"name": "Name too long (max 50 characters)"})
		}
		user.Name = name
	}
	if in.Bio != nil {
		if utf8.RuneCountInString(*in.Bio) > maxBioLen {
			return nil, models.NewFieldError("Invalid profile", map[string]string{"bio": "Bio too long (max 160 characters)"})
		}
		user.Bio = *in.Bio
	}
	if in.Avatar != nil && strings.TrimSpace(*in.Avatar) != "" {
		user.Avatar = strings.TrimSpace(*in.Avatar)
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, user); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to refresh session", "user_id", user.ID, "error", err.Error())
	}
	return user, nil
}

func (s *UserService) GetPreferences(ctx context.Context, userID uint) (*models.Preference, error) {
	return s.prefRepo.Get(ctx, userID)
}

// SetDarkMode persists the theme choice and notifies the user's other sessions.
func (s *UserService) SetDarkMode(ctx context.Context, userID uint, dark bool) (*models.Preference, error) {
	pref := &models.Preference{UserID: userID, DarkMode: dark}
	if err := s.prefRepo.Save(ctx, pref); err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events.Event{Type: events.PreferencesUpdated, UserID: userID, Payload: pref})
	return pref, nil
}

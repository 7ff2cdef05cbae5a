// Package service holds the application use cases on top of the repositories.
package service

import (
	"context"
	"strings"
	"time"

	"domin8x/internal/middleware"
	"domin8x/internal/models"
	"domin8x/internal/repository"
	"domin8x/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultAvatarURL is assigned to accounts created without an avatar.
const DefaultAvatarURL = "https://images.unsplash.com/photo-1535713875002-d1d0cf377fde?w=40&h=40&fit=crop&crop=face"

// SessionStore keeps the signed-in user record and revoked token ids.
type SessionStore interface {
	Save(ctx context.Context, user *models.User) error
	Load(ctx context.Context, userID uint) (*models.User, error)
	Delete(ctx context.Context, userID uint) error
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

type AuthService struct {
	userRepo   repository.UserRepository
	sessions   SessionStore
	secret     string
	tokenTTL   time.Duration
	bcryptCost int
}

type SignupInput struct {
	Name            string `json:"name"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type SigninInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult is returned by a successful sign-up or sign-in.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func NewAuthService(userRepo repository.UserRepository, sessions SessionStore, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		sessions:   sessions,
		secret:     secret,
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Signup validates every field, rejects a taken username or email and signs the new user in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if errs := validation.Signup(validation.SignupForm{
		Name:            in.Name,
		Username:        in.Username,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	}); len(errs) > 0 {
		return nil, models.NewFieldError("Please fix the highlighted fields", errs)
	}

	conflicts := map[string]string{}
	existing, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		conflicts["username"] = "Username is already taken"
	}
	existing, err = s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		conflicts["email"] = "Email is already registered"
	}
	if len(conflicts) > 0 {
		return nil, models.NewConflictError("Account already exists", conflicts)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		Name:     in.Name,
		Avatar:   DefaultAvatarURL,
		Badges:   []string{},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return s.startSession(ctx, user)
}

// Signin checks credentials. Nothing is issued or stored unless they match.
func (s *AuthService) Signin(ctx context.Context, in SigninInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	if errs := validation.Signin(validation.SigninForm{Username: in.Username, Password: in.Password}); len(errs) > 0 {
		return nil, models.NewFieldError("Please fix the highlighted fields", errs)
	}

	user, err := s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)) != nil {
		return nil, &models.AppError{
			Code:    models.CodeUnauthorized,
			Message: "Invalid username or password",
			Fields:  map[string]string{"username": "Invalid username or password"},
		}
	}
	return s.startSession(ctx, user)
}

func (s *AuthService) startSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	token, err := middleware.SignToken(s.secret, user.ID, user.Username, uuid.NewString(), s.tokenTTL)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.sessions.Save(ctx, user); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to store session", "user_id", user.ID, "error", err.Error())
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Signout revokes the presented token and clears the session record.
func (s *AuthService) Signout(ctx context.Context, claims middleware.TokenClaims) error {
	if err := s.sessions.Revoke(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		return models.NewInternalError(err)
	}
	if err := s.sessions.Delete(ctx, claims.UserID); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to delete session", "user_id", claims.UserID, "error", err.Error())
	}
	return nil
}

// Session returns the stored session record, falling back to the user row.
func (s *AuthService) Session(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.sessions.Load(ctx, userID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to load session", "user_id", userID, "error", err.Error())
	}
	if user != nil {
		return user, nil
	}
	return s.userRepo.GetByID(ctx, userID)
}

package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"domin8x/internal/events"
	"domin8x/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateProfileFn func(context.Context, *models.User) error
	listFn          func(context.Context, int, int) ([]models.User, error)
	suggestionsFn   func(context.Context, uint, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, user *models.User) error {
	return s.updateProfileFn(ctx, user)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}

func (s *userRepoStub) Suggestions(ctx context.Context, excludeID uint, limit int) ([]models.User, error) {
	return s.suggestionsFn(ctx, excludeID, limit)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "user"}, nil
		},
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, u *models.User) error { u.ID = 1; return nil },
		updateProfileFn: func(_ context.Context, _ *models.User) error { return nil },
		listFn:          func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		suggestionsFn:   func(_ context.Context, _ uint, _ int) ([]models.User, error) { return nil, nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn         func(context.Context, *models.Post) error
	getByIDFn        func(context.Context, uint, uint) (*models.Post, error)
	listFn           func(context.Context, int, int, uint) ([]*models.Post, error)
	listBookmarkedFn func(context.Context, uint, int, int) ([]*models.Post, error)
	toggleFn         func(context.Context, uint, uint, string) (bool, error)
	recentFn         func(context.Context, int) ([]string, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset, viewerID)
}
func (s *postRepoStub) ListBookmarked(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	return s.listBookmarkedFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) ToggleReaction(ctx context.Context, userID, postID uint, kind string) (bool, error) {
	return s.toggleFn(ctx, userID, postID, kind)
}

func (s *postRepoStub) RecentContents(ctx context.Context, limit int) ([]string, error) {
	return s.recentFn(ctx, limit)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error { p.ID = 1; return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id}, nil
		},
		listFn:           func(_ context.Context, _, _ int, _ uint) ([]*models.Post, error) { return nil, nil },
		listBookmarkedFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		toggleFn:         func(_ context.Context, _, _ uint, _ string) (bool, error) { return true, nil },
		recentFn:         func(_ context.Context, _ int) ([]string, error) { return nil, nil },
	}
}

// logoRepoStub is an in-memory repository.LogoRepository.
type logoRepoStub struct {
	mu    sync.Mutex
	logos map[uint]*models.Logo
	next  uint
}

func newLogoRepoStub(seed ...models.Logo) *logoRepoStub {
	s := &logoRepoStub{logos: map[uint]*models.Logo{}, next: 1}
	for i := range seed {
		l := seed[i]
		if l.ID == 0 {
			l.ID = s.next
		}
		if l.ID >= s.next {
			s.next = l.ID + 1
		}
		s.logos[l.ID] = &l
	}
	return s
}

func (s *logoRepoStub) ListForUser(_ context.Context, userID uint) ([]models.Logo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Logo
	for _, l := range s.logos {
		if l.UserID == nil || *l.UserID == userID {
			out = append(out, *l)
		}
	}
	return out, nil
}
func (s *logoRepoStub) GetByID(_ context.Context, id uint) (*models.Logo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logos[id]
	if !ok {
		return nil, models.NewNotFoundError("Logo", id)
	}
	cp := *l
	return &cp, nil
}
func (s *logoRepoStub) Create(_ context.Context, logo *models.Logo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	logo.ID = s.next
	s.next++
	cp := *logo
	s.logos[logo.ID] = &cp
	return nil
}
func (s *logoRepoStub) SetTransparent(_ context.Context, id uint, transparent bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logos[id]
	if !ok {
		return models.NewNotFoundError("Logo", id)
	}
	l.Transparent = transparent
	return nil
}
func (s *logoRepoStub) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.logos[id]; !ok {
		return models.NewNotFoundError("Logo", id)
	}
	delete(s.logos, id)
	return nil
}

// promptRepoStub is a stub for repository.PromptRepository.
type promptRepoStub struct {
	listFn           func(context.Context) ([]models.Prompt, error)
	getByIDFn        func(context.Context, uint) (*models.Prompt, error)
	createFn         func(context.Context, *models.Prompt) error
	incrementLikesFn func(context.Context, uint) (*models.Prompt, error)
	incrementUsesFn  func(context.Context, uint) (*models.Prompt, error)
}

func (s *promptRepoStub) List(ctx context.Context) ([]models.Prompt, error) { return s.listFn(ctx) }
func (s *promptRepoStub) GetByID(ctx context.Context, id uint) (*models.Prompt, error) {
	return s.getByIDFn(ctx, id)
}
func (s *promptRepoStub) Create(ctx context.Context, p *models.Prompt) error { return s.createFn(ctx, p) }
func (s *promptRepoStub) IncrementLikes(ctx context.Context, id uint) (*models.Prompt, error) {
	return s.incrementLikesFn(ctx, id)
}
func (s *promptRepoStub) IncrementUses(ctx context.Context, id uint) (*models.Prompt, error) {
	return s.incrementUsesFn(ctx, id)
}

func noopPromptRepo() *promptRepoStub {
	return &promptRepoStub{
		listFn:           func(_ context.Context) ([]models.Prompt, error) { return nil, nil },
		getByIDFn:        func(_ context.Context, id uint) (*models.Prompt, error) { return &models.Prompt{ID: id}, nil },
		createFn:         func(_ context.Context, p *models.Prompt) error { p.ID = 1; return nil },
		incrementLikesFn: func(_ context.Context, id uint) (*models.Prompt, error) { return &models.Prompt{ID: id, Likes: 1}, nil },
		incrementUsesFn:  func(_ context.Context, id uint) (*models.Prompt, error) { return &models.Prompt{ID: id, Uses: 1}, nil },
	}
}

// challengeRepoStub is a stub for repository.ChallengeRepository.
type challengeRepoStub struct {
	listFn        func(context.Context, models.ChallengeStatus) ([]models.Challenge, error)
	getByIDFn     func(context.Context, uint) (*models.Challenge, error)
	createFn      func(context.Context, *models.Challenge) error
	advanceFn     func(context.Context, time.Time) ([]models.Challenge, error)
	leaderboardFn func(context.Context, uint) ([]models.LeaderboardEntry, error)
	replaceFn     func(context.Context, uint, []models.LeaderboardEntry) error
}

func (s *challengeRepoStub) List(ctx context.Context, status models.ChallengeStatus) ([]models.Challenge, error) {
	return s.listFn(ctx, status)
}
func (s *challengeRepoStub) GetByID(ctx context.Context, id uint) (*models.Challenge, error) {
	return s.getByIDFn(ctx, id)
}
func (s *challengeRepoStub) Create(ctx context.Context, c *models.Challenge) error {
	return s.createFn(ctx, c)
}
func (s *challengeRepoStub) AdvanceStatuses(ctx context.Context, now time.Time) ([]models.Challenge, error) {
	return s.advanceFn(ctx, now)
}
func (s *challengeRepoStub) Leaderboard(ctx context.Context, id uint) ([]models.LeaderboardEntry, error) {
	return s.leaderboardFn(ctx, id)
}
func (s *challengeRepoStub) ReplaceLeaderboard(ctx context.Context, id uint, entries []models.LeaderboardEntry) error {
	return s.replaceFn(ctx, id, entries)
}

func noopChallengeRepo() *challengeRepoStub {
	return &challengeRepoStub{
		listFn:        func(_ context.Context, _ models.ChallengeStatus) ([]models.Challenge, error) { return nil, nil },
		getByIDFn:     func(_ context.Context, id uint) (*models.Challenge, error) { return &models.Challenge{ID: id}, nil },
		createFn:      func(_ context.Context, c *models.Challenge) error { c.ID = 1; return nil },
		advanceFn:     func(_ context.Context, _ time.Time) ([]models.Challenge, error) { return nil, nil },
		leaderboardFn: func(_ context.Context, _ uint) ([]models.LeaderboardEntry, error) { return nil, nil },
		replaceFn:     func(_ context.Context, _ uint, _ []models.LeaderboardEntry) error { return nil },
	}
}

// prefRepoStub is an in-memory repository.PreferenceRepository.
type prefRepoStub struct {
	prefs map[uint]models.Preference
}

func (s *prefRepoStub) Get(_ context.Context, userID uint) (*models.Preference, error) {
	p, ok := s.prefs[userID]
	if !ok {
		return &models.Preference{UserID: userID}, nil
	}
	return &p, nil
}
func (s *prefRepoStub) Save(_ context.Context, pref *models.Preference) error {
	s.prefs[pref.UserID] = *pref
	return nil
}

// sessionStub records session store calls.
type sessionStub struct {
	mu      sync.Mutex
	saved   map[uint]*models.User
	revoked map[string]time.Time
}

func newSessionStub() *sessionStub {
	return &sessionStub{saved: map[uint]*models.User{}, revoked: map[string]time.Time{}}
}

func (s *sessionStub) Save(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *user
	s.saved[user.ID] = &cp
	return nil
}
func (s *sessionStub) Load(_ context.Context, userID uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved[userID], nil
}
func (s *sessionStub) Delete(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.saved, userID)
	return nil
}
func (s *sessionStub) Revoke(_ context.Context, jti string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[jti] = exp
	return nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

func (p *recordingPublisher) last() events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

func assertAppError(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) *models.AppError {
	t.Helper()
	return assertAppError(t, err, models.CodeValidation)
}

package service

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"domin8x/internal/events"
	"domin8x/internal/featureflags"
	"domin8x/internal/models"
	"domin8x/internal/promptindex"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptService_AddPromptNormalizesHashtags(t *testing.T) {
	for _, raw := range []string{"a,b", "#a, b", " #a ,#b, "} {
		t.Run(raw, func(t *testing.T) {
			repo := noopPromptRepo()
			var stored *models.Prompt
			repo.createFn = func(_ context.Context, p *models.Prompt) error {
				stored = p
				return nil
			}
			pub := &recordingPublisher{}
			s := NewPromptService(repo, noopUserRepo(), pub)

			_, err := s.AddPrompt(context.Background(), AddPromptInput{UserID: 3, Prompt: "x", Hashtags: raw, Type: "music"})
			require.NoError(t, err)
			assert.Equal(t, []string{"#a", "#b"}, stored.Hashtags)
			assert.Equal(t, models.PromptCategoryMusic, stored.Category)
			assert.Equal(t, DefaultPromptDescription, stored.Description)
			assert.Equal(t, "user", stored.Author)
			assert.Zero(t, stored.Likes)
			assert.Equal(t, []string{events.PromptCreated}, pub.types())
		})
	}
}

func TestPromptService_AddPromptValidation(t *testing.T) {
	s := NewPromptService(noopPromptRepo(), noopUserRepo(), &recordingPublisher{})

	_, err := s.AddPrompt(context.Background(), AddPromptInput{UserID: 1, Prompt: " ", Hashtags: " "})
	appErr := assertValidationError(t, err)
	assert.Contains(t, appErr.Fields, "prompt")
	assert.Contains(t, appErr.Fields, "hashtags")

	_, err = s.AddPrompt(context.Background(), AddPromptInput{UserID: 1, Prompt: "x", Hashtags: ", ,"})
	assertValidationError(t, err)

	_, err = s.AddPrompt(context.Background(), AddPromptInput{UserID: 1, Prompt: "x", Hashtags: "a", Type: "video"})
	assertValidationError(t, err)
}

func TestPromptService_ListAppliesQuery(t *testing.T) {
	repo := noopPromptRepo()
	repo.listFn = func(_ context.Context) ([]models.Prompt, error) {
		return []models.Prompt{
			{ID: 1, Text: "watercolor", Category: "Art", Type: "image"},
			{ID: 2, Text: "ambient", Category: "Music", Type: "music"},
			{ID: 3, Text: "cyberpunk", Category: "Art", Type: "image"},
		}, nil
	}
	s := NewPromptService(repo, noopUserRepo(), &recordingPublisher{})

	got, err := s.List(context.Background(), promptindex.Query{Category: "Art", Sort: promptindex.SortAlphabetical})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "cyberpunk", got[0].Text)
}

func TestPromptService_LikeAndUsePublish(t *testing.T) {
	pub := &recordingPublisher{}
	s := NewPromptService(noopPromptRepo(), noopUserRepo(), pub)

	liked, err := s.LikePrompt(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Likes)
	used, err := s.UsePrompt(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, 1, used.Uses)
	assert.Equal(t, []string{events.PromptUpdated, events.PromptUpdated}, pub.types())
}

func TestLogoService_SaveAndOwnership(t *testing.T) {
	owner := uint(1)
	logos := newLogoRepoStub(
		models.Logo{ID: 1, Name: "Starter", URL: "https://example.com/s.png"},
		models.Logo{ID: 2, UserID: &owner, Name: "Mine", URL: "https://example.com/m.png"},
	)
	pub := &recordingPublisher{}
	s := NewLogoService(logos, featureflags.NewManager(""), pub, time.Millisecond)
	ctx := context.Background()

	_, err := s.SaveLogo(ctx, SaveLogoInput{UserID: 1})
	appErr := assertValidationError(t, err)
	assert.Contains(t, appErr.Fields, "name")
	assert.Contains(t, appErr.Fields, "url")

	saved, err := s.SaveLogo(ctx, SaveLogoInput{UserID: 1, Name: "New", URL: "https://example.com/n.png"})
	require.NoError(t, err)
	require.NotNil(t, saved.UserID)
	assert.Equal(t, uint(1), *saved.UserID)

	logo, err := s.MakeTransparent(ctx, 1, 2)
	require.NoError(t, err)
	assert.True(t, logo.Transparent)

	_, err = s.MakeTransparent(ctx, 1, 1)
	assertAppError(t, err, models.CodeNotFound)
	assertAppError(t, s.DeleteLogo(ctx, 2, 2), models.CodeNotFound)

	require.NoError(t, s.DeleteLogo(ctx, 1, 2))
	list, err := s.ListLogos(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, []string{events.LogoSaved, events.LogoSaved, events.LogoDeleted}, pub.types())
}

func TestLogoService_GenerateLogo(t *testing.T) {
	s := NewLogoService(newLogoRepoStub(), featureflags.NewManager(""), &recordingPublisher{}, time.Millisecond)

	_, err := s.GenerateLogo(context.Background(), 1, "")
	assertValidationError(t, err)

	draft, err := s.GenerateLogo(context.Background(), 1, "fox mascot")
	require.NoError(t, err)
	assert.Equal(t, "fox mascot", draft.Prompt)
	assert.False(t, draft.Transparent)

	slow := NewLogoService(newLogoRepoStub(), featureflags.NewManager(""), &recordingPublisher{}, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = slow.GenerateLogo(ctx, 1, "fox mascot")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	off := NewLogoService(newLogoRepoStub(), featureflags.NewManager("logo_generation=off"), &recordingPublisher{}, 0)
	_, err = off.GenerateLogo(context.Background(), 1, "fox")
	assertValidationError(t, err)
}

func TestChallengeService_Create(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	repo := noopChallengeRepo()
	var stored *models.Challenge
	repo.createFn = func(_ context.Context, c *models.Challenge) error {
		c.ID = 8
		stored = c
		return nil
	}
	pub := &recordingPublisher{}
	s := NewChallengeService(repo, pub)
	s.now = func() time.Time { return now }

	end := now.Add(7 * 24 * time.Hour)
	c, err := s.Create(context.Background(), CreateChallengeInput{
		UserID:      2,
		Title:       " Neon Nights ",
		Description: "Make something glow",
		Hashtags:    "neon, #glow",
		EndDate:     &end,
		Rules:       []string{"Original work", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Neon Nights", stored.Title)
	assert.Equal(t, models.ChallengeStatusUpcoming, c.Status)
	assert.Equal(t, now, c.StartDate)
	assert.Equal(t, []string{"#neon", "#glow"}, c.Hashtags)
	assert.Equal(t, []string{"Original work"}, c.Rules)
	assert.Zero(t, c.Participants)
	assert.Equal(t, []string{events.ChallengeCreated}, pub.types())
}

func TestChallengeService_CreateValidation(t *testing.T) {
	s := NewChallengeService(noopChallengeRepo(), &recordingPublisher{})

	_, err := s.Create(context.Background(), CreateChallengeInput{})
	appErr := assertValidationError(t, err)
	assert.Equal(t, []string{"description", "end_date", "title"}, sortedKeys(appErr.Fields))

	start := time.Now().Add(48 * time.Hour)
	end := time.Now().Add(24 * time.Hour)
	_, err = s.Create(context.Background(), CreateChallengeInput{Title: "t", Description: "d", StartDate: &start, EndDate: &end})
	appErr = assertValidationError(t, err)
	assert.Contains(t, appErr.Fields, "end_date")

	_, err = s.List(context.Background(), "archived")
	assertValidationError(t, err)
}

func TestChallengeService_LeaderboardAndSweep(t *testing.T) {
	repo := noopChallengeRepo()
	repo.advanceFn = func(_ context.Context, _ time.Time) ([]models.Challenge, error) {
		return []models.Challenge{
			{ID: 1, Status: models.ChallengeStatusActive},
			{ID: 2, Status: models.ChallengeStatusCompleted},
		}, nil
	}
	pub := &recordingPublisher{}
	s := NewChallengeService(repo, pub)

	entries, err := s.Leaderboard(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	n, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{events.ChallengeUpdated, events.ChallengeUpdated}, pub.types())
	assert.Equal(t, uint(2), pub.last().Payload.(*models.Challenge).ID)
}

func TestUserService_ProfileAndPreferences(t *testing.T) {
	repo := noopUserRepo()
	var updated *models.User
	repo.updateProfileFn = func(_ context.Context, u *models.User) error {
		updated = u
		return nil
	}
	sessions := newSessionStub()
	pub := &recordingPublisher{}
	s := NewUserService(repo, &prefRepoStub{prefs: map[uint]models.Preference{}}, sessions, pub)
	ctx := context.Background()

	empty := " "
	_, err := s.UpdateProfile(ctx, UpdateProfileInput{UserID: 3, Name: &empty})
	assertValidationError(t, err)

	name, bio := "Alice", "Digital artist"
	u, err := s.UpdateProfile(ctx, UpdateProfileInput{UserID: 3, Name: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "Digital artist", u.Bio)
	assert.Equal(t, "Alice", sessions.saved[3].Name)

	accented := strings.Repeat("é", 160)
	u, err = s.UpdateProfile(ctx, UpdateProfileInput{UserID: 3, Bio: &accented})
	require.NoError(t, err)
	assert.Equal(t, accented, u.Bio)
	tooLong := accented + "é"
	_, err = s.UpdateProfile(ctx, UpdateProfileInput{UserID: 3, Bio: &tooLong})
	assertValidationError(t, err)

	pref, err := s.GetPreferences(ctx, 3)
	require.NoError(t, err)
	assert.False(t, pref.DarkMode)

	_, err = s.SetDarkMode(ctx, 3, true)
	require.NoError(t, err)
	pref, err = s.GetPreferences(ctx, 3)
	require.NoError(t, err)
	assert.True(t, pref.DarkMode)
	assert.Equal(t, events.PreferencesUpdated, pub.last().Type)
	assert.Equal(t, uint(3), pub.last().UserID)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

package service

import (
	"context"
	"strings"
	"time"

	"domin8x/internal/events"
	"domin8x/internal/middleware"
	"domin8x/internal/models"
	"domin8x/internal/observability"
	"domin8x/internal/promptindex"
	"domin8x/internal/repository"
)

type ChallengeService struct {
	challengeRepo repository.ChallengeRepository
	events        events.Publisher
	now           func() time.Time
}

type CreateChallengeInput struct {
	UserID          uint       `json:"-"`
	Title           string     `json:"title"`
	Type            string     `json:"type"`
	Description     string     `json:"description"`
	Hashtags        string     `json:"hashtags"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	Prize           string     `json:"prize"`
	Rules           []string   `json:"rules"`
	JudgingCriteria []string   `json:"judging_criteria"`
}

func NewChallengeService(challengeRepo repository.ChallengeRepository, publisher events.Publisher) *ChallengeService {
	return &ChallengeService{challengeRepo: challengeRepo, events: publisher, now: time.Now}
}

func (s *ChallengeService) List(ctx context.Context, status string) ([]models.Challenge, error) {
	st := models.ChallengeStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, models.NewValidationError("Status must be upcoming, active or completed")
	}
	challenges, err := s.challengeRepo.List(ctx, st)
	if err != nil {
		return nil, err
	}
	if challenges == nil {
		challenges = []models.Challenge{}
	}
	return challenges, nil
}

func (s *ChallengeService) Get(ctx context.Context, id uint) (*models.Challenge, error) {
	return s.challengeRepo.GetByID(ctx, id)
}

// Create stores a new upcoming challenge with zeroed counters.
func (s *ChallengeService) Create(ctx context.Context, in CreateChallengeInput) (*models.Challenge, error) {
	fields := map[string]string{}
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if title == "" {
		fields["title"] = "Title is required"
	}
	if description == "" {
		fields["description"] = "Description is required"
	}
	if in.EndDate == nil || in.EndDate.IsZero() {
		fields["end_date"] = "End date is required"
	}

	start := s.now().UTC()
	if in.StartDate != nil && !in.StartDate.IsZero() {
		start = in.StartDate.UTC()
	}
	if in.EndDate != nil && !in.EndDate.IsZero() && in.EndDate.Before(start) {
		fields["end_date"] = "End date must not be before the start date"
	}
	if len(fields) > 0 {
		return nil, models.NewFieldError("Invalid challenge", fields)
	}

	creator := in.UserID
	challenge := &models.Challenge{
		Title:           title,
		Type:            strings.TrimSpace(in.Type),
		Description:     description,
		Hashtags:        promptindex.ParseHashtags(in.Hashtags),
		StartDate:       start,
		EndDate:         in.EndDate.UTC(),
		Status:          models.ChallengeStatusUpcoming,
		Prize:           strings.TrimSpace(in.Prize),
		Rules:           nonEmpty(in.Rules),
		JudgingCriteria: nonEmpty(in.JudgingCriteria),
		CreatedByID:     &creator,
	}
	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events.Event{Type: events.ChallengeCreated, Payload: challenge})
	return challenge, nil
}

// Leaderboard returns the pre-ranked entries; a challenge without entries yields an empty list.
func (s *ChallengeService) Leaderboard(ctx context.Context, id uint) ([]models.LeaderboardEntry, error) {
	entries, err := s.challengeRepo.Leaderboard(ctx, id)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return entries, nil
}

// Sweep advances challenge statuses by date and announces each change.
func (s *ChallengeService) Sweep(ctx context.Context) (int, error) {
	changed, err := s.challengeRepo.AdvanceStatuses(ctx, s.now())
	if err != nil {
		return 0, err
	}
	for i := range changed {
		c := changed[i]
		observability.ChallengeTransitions.WithLabelValues(string(c.Status)).Inc()
		s.events.Publish(ctx, events.Event{Type: events.ChallengeUpdated, Payload: &c})
	}
	if len(changed) > 0 {
		middleware.Logger.InfoContext(ctx, "challenge statuses advanced", "count", len(changed))
	}
	return len(changed), nil
}

func nonEmpty(items []string) []string {
	out := []string{}
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

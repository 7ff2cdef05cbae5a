package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"domin8x/internal/events"
	"domin8x/internal/featureflags"
	"domin8x/internal/generation"
	"domin8x/internal/middleware"
	"domin8x/internal/models"
	"domin8x/internal/repository"

	"github.com/google/uuid"
)

// CreationState is a step of the AI creation flow.
type CreationState string

const (
	CreationIdle        CreationState = "idle"
	CreationGenerating  CreationState = "generating"
	CreationGenerated   CreationState = "generated"
	CreationLogoSelect  CreationState = "logo_select"
	CreationLogoOverlay CreationState = "logo_overlay"
	CreationPosting     CreationState = "posting"
	CreationPosted      CreationState = "posted"
	CreationCancelled   CreationState = "cancelled"
)

// Logo overlay bounds and placement. The overlay is a description only.
const (
	DefaultLogoSize    = 60
	MinLogoSize        = 20
	MaxLogoSize        = 200
	DefaultLogoOpacity = 0.8
	LogoPosition       = "bottom-left"
	LogoOffset         = 10
)

// Creation is one user's in-progress AI post.
type Creation struct {
	ID          string                   `json:"id"`
	UserID      uint                     `json:"user_id"`
	Type        string                   `json:"type"`
	State       CreationState            `json:"state"`
	Prompt      string                   `json:"prompt,omitempty"`
	Content     *models.GeneratedContent `json:"generated_content,omitempty"`
	Logo        *models.Logo             `json:"selected_logo,omitempty"`
	AppliedLogo *models.AppliedLogo      `json:"applied_logo,omitempty"`
	PostID      uint                     `json:"post_id,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`

	attempt int
}

// PostCreator publishes finished creations to the feed.
type PostCreator interface {
	CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error)
}

// ApplyLogoInput holds optional overlay settings; nil means default.
type ApplyLogoInput struct {
	Size    *int     `json:"size"`
	Opacity *float64 `json:"opacity"`
}

type CreationService struct {
	runner   *generation.Runner
	posts    PostCreator
	logoRepo repository.LogoRepository
	flags    *featureflags.Manager
	events   events.Publisher

	mu        sync.Mutex
	creations map[string]*Creation
}

func NewCreationService(
	runner *generation.Runner,
	posts PostCreator,
	logoRepo repository.LogoRepository,
	flags *featureflags.Manager,
	publisher events.Publisher,
) *CreationService {
	return &CreationService{
		runner:    runner,
		posts:     posts,
		logoRepo:  logoRepo,
		flags:     flags,
		events:    publisher,
		creations: make(map[string]*Creation),
	}
}

func creationNotFound(id string) error {
	return models.NewNotFoundError("Creation", id)
}

func invalidTransition(from CreationState, action string) error {
	return models.NewConflictError("Cannot "+action+" while creation is "+string(from), nil)
}

// snapshot copies c so callers never share the live record.
func (c *Creation) snapshot() *Creation {
	out := *c
	if c.Content != nil {
		content := *c.Content
		out.Content = &content
	}
	if c.AppliedLogo != nil {
		applied := *c.AppliedLogo
		out.AppliedLogo = &applied
	}
	return &out
}

// lookup returns the live creation owned by userID. Callers hold s.mu.
func (s *CreationService) lookup(userID uint, id string) (*Creation, error) {
	c, ok := s.creations[id]
	if !ok || c.UserID != userID {
		return nil, creationNotFound(id)
	}
	return c, nil
}

// Open starts an idle creation of the given type.
func (s *CreationService) Open(ctx context.Context, userID uint, kind string) (*Creation, error) {
	switch kind {
	case models.PostKindText, models.PostKindImage:
	case models.PostKindMusic:
		if !s.flags.EnabledOrDefault(featureflags.MusicGeneration, userID, true) {
			return nil, models.NewValidationError("Music generation is disabled")
		}
	default:
		return nil, models.NewFieldError("Invalid creation type", map[string]string{"type": "Type must be text, image or music"})
	}

	now := time.Now().UTC()
	c := &Creation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      kind,
		State:     CreationIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.creations[c.ID] = c
	s.mu.Unlock()

	middleware.Logger.DebugContext(ctx, "creation opened", "creation_id", c.ID, "type", kind)
	return c.snapshot(), nil
}

func (s *CreationService) Get(_ context.Context, userID uint, id string) (*Creation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	return c.snapshot(), nil
}

// Generate starts simulated generation. An empty prompt is rejected without a state change.
func (s *CreationService) Generate(ctx context.Context, userID uint, id, prompt string) (*Creation, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, models.NewFieldError("Prompt is required", map[string]string{"prompt": "Please enter a prompt"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	if c.Type == models.PostKindText {
		return nil, models.NewValidationError("Text creations have nothing to generate")
	}
	if c.State != CreationIdle && c.State != CreationGenerated {
		return nil, invalidTransition(c.State, "generate")
	}

	c.attempt++
	attempt := c.attempt
	if err := s.runner.Start(ctx, c.ID, c.Type, prompt, func(content *models.GeneratedContent, err error) {
		s.finishGeneration(c.ID, attempt, content, err)
	}); err != nil {
		c.attempt--
		return nil, models.NewInternalError(err)
	}

	c.State = CreationGenerating
	c.Prompt = prompt
	c.Content = nil
	c.Logo = nil
	c.AppliedLogo = nil
	c.UpdatedAt = time.Now().UTC()
	return c.snapshot(), nil
}

func (s *CreationService) finishGeneration(id string, attempt int, content *models.GeneratedContent, err error) {
	s.mu.Lock()
	c, ok := s.creations[id]
	if !ok || c.attempt != attempt || c.State != CreationGenerating {
		s.mu.Unlock()
		return
	}
	c.UpdatedAt = time.Now().UTC()
	if err != nil {
		c.State = CreationCancelled
		s.mu.Unlock()
		return
	}
	c.State = CreationGenerated
	c.Content = content
	snap := c.snapshot()
	s.mu.Unlock()

	s.events.Publish(context.Background(), events.Event{
		Type:    events.CreationGenerated,
		UserID:  snap.UserID,
		Payload: snap,
	})
}

// SelectLogo attaches one of the user's logos to generated media.
func (s *CreationService) SelectLogo(ctx context.Context, userID uint, id string, logoID uint) (*Creation, error) {
	logo, err := s.logoRepo.GetByID(ctx, logoID)
	if err != nil {
		return nil, err
	}
	if logo.UserID != nil && *logo.UserID != userID {
		return nil, models.NewNotFoundError("Logo", logoID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	if c.State != CreationGenerated && c.State != CreationLogoSelect {
		return nil, invalidTransition(c.State, "select a logo")
	}
	if c.Content == nil || (c.Content.Type != models.PostKindImage && c.Content.Type != models.PostKindMusic) {
		return nil, models.NewValidationError("Logos can only be applied to generated media")
	}

	c.Logo = logo
	c.AppliedLogo = nil
	c.State = CreationLogoSelect
	c.UpdatedAt = time.Now().UTC()
	return c.snapshot(), nil
}

// ApplyLogo records overlay size and opacity for the selected logo.
func (s *CreationService) ApplyLogo(_ context.Context, userID uint, id string, in ApplyLogoInput) (*Creation, error) {
	size := DefaultLogoSize
	if in.Size != nil {
		size = *in.Size
	}
	opacity := DefaultLogoOpacity
	if in.Opacity != nil {
		opacity = *in.Opacity
	}
	fields := map[string]string{}
	if size < MinLogoSize || size > MaxLogoSize {
		fields["size"] = "Size must be between 20 and 200 pixels"
	}
	if opacity < 0 || opacity > 1 {
		fields["opacity"] = "Opacity must be between 0 and 1"
	}
	if len(fields) > 0 {
		return nil, models.NewFieldError("Invalid logo settings", fields)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.lookup(userID, id)
	if err != nil {
		return nil, err
	}
	if c.State != CreationLogoSelect && c.State != CreationLogoOverlay {
		return nil, invalidTransition(c.State, "apply a logo")
	}

	c.AppliedLogo = &models.AppliedLogo{
		LogoID:   c.Logo.ID,
		LogoURL:  c.Logo.URL,
		Size:     size,
		Opacity:  opacity,
		Position: LogoPosition,
		Offset:   LogoOffset,
	}
	c.State = CreationLogoOverlay
	c.UpdatedAt = time.Now().UTC()
	return c.snapshot(), nil
}

// Post publishes the creation to the feed and closes it. The creation sits in
// the posting state while the feed write runs so it is published at most once.
func (s *CreationService) Post(ctx context.Context, userID uint, id, content string) (*Creation, *models.Post, error) {
	s.mu.Lock()
	c, err := s.lookup(userID, id)
	if err != nil {
		s.mu.Unlock()
		return nil, nil, err
	}
	switch c.State {
	case CreationIdle, CreationGenerated, CreationLogoSelect, CreationLogoOverlay:
	default:
		s.mu.Unlock()
		return nil, nil, invalidTransition(c.State, "post")
	}
	var generated *models.GeneratedContent
	if c.Content != nil {
		gc := *c.Content
		if c.State == CreationLogoOverlay && c.AppliedLogo != nil {
			applied := *c.AppliedLogo
			gc.AppliedLogo = &applied
		}
		generated = &gc
	}
	prev := c.State
	c.State = CreationPosting
	s.mu.Unlock()

	post, err := s.posts.CreatePost(ctx, CreatePostInput{UserID: userID, Content: content, GeneratedContent: generated})

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		c.State = prev
		return nil, nil, err
	}
	c.State = CreationPosted
	c.PostID = post.ID
	c.UpdatedAt = time.Now().UTC()
	delete(s.creations, id)
	return c.snapshot(), post, nil
}

// Discard cancels any running generation and forgets the creation.
func (s *CreationService) Discard(ctx context.Context, userID uint, id string) (*Creation, error) {
	s.mu.Lock()
	c, err := s.lookup(userID, id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if c.State == CreationPosting {
		s.mu.Unlock()
		return nil, invalidTransition(c.State, "discard")
	}
	c.State = CreationCancelled
	c.UpdatedAt = time.Now().UTC()
	delete(s.creations, id)
	snap := c.snapshot()
	s.mu.Unlock()

	if s.runner.Cancel(id) {
		middleware.Logger.DebugContext(ctx, "generation cancelled", "creation_id", id)
	}
	return snap, nil
}

// ExpireIdle discards creations untouched since before cutoff and returns how many were dropped.
func (s *CreationService) ExpireIdle(cutoff time.Time) int {
	s.mu.Lock()
	var stale []string
	for id, c := range s.creations {
		if c.State != CreationPosting && c.UpdatedAt.Before(cutoff) {
			stale = append(stale, id)
			delete(s.creations, id)
		}
	}
	s.mu.Unlock()

	for _, id := range stale {
		s.runner.Cancel(id)
	}
	return len(stale)
}

// Shutdown cancels all generation tasks and waits for them.
func (s *CreationService) Shutdown(ctx context.Context) error {
	return s.runner.Shutdown(ctx)
}

package service

import (
	"context"
	"strings"

	"domin8x/internal/events"
	"domin8x/internal/models"
	"domin8x/internal/repository"
)

const maxPostLen = 1000

type FeedService struct {
	postRepo repository.PostRepository
	events   events.Publisher
}

type CreatePostInput struct {
	UserID           uint
	Content          string
	GeneratedContent *models.GeneratedContent
}

// ReactionResult is the post after a toggle, with the viewer's flags filled in.
type ReactionResult struct {
	Post   *models.Post `json:"post"`
	Kind   string       `json:"kind"`
	Active bool         `json:"active"`
}

func NewFeedService(postRepo repository.PostRepository, publisher events.Publisher) *FeedService {
	return &FeedService{postRepo: postRepo, events: publisher}
}

// ListFeed returns posts newest first with viewerID's flags. viewerID may be zero.
func (s *FeedService) ListFeed(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.List(ctx, limit, offset, viewerID)
}

func (s *FeedService) GetPost(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, viewerID)
}

func (s *FeedService) ListBookmarks(ctx context.Context, viewerID uint, limit, offset int) ([]*models.Post, error) {
	return s.postRepo.ListBookmarked(ctx, viewerID, limit, offset)
}

// CreatePost requires text or generated content. The kind follows the generated content.
func (s *FeedService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" && in.GeneratedContent == nil {
		return nil, models.NewValidationError("Post content or generated content is required")
	}
	if len([]rune(content)) > maxPostLen {
		return nil, models.NewValidationError("Post too long (max 1000 characters)")
	}

	kind := models.PostKindText
	if in.GeneratedContent != nil {
		switch in.GeneratedContent.Type {
		case models.PostKindImage, models.PostKindMusic:
			kind = in.GeneratedContent.Type
		default:
			return nil, models.NewValidationError("Invalid generated content type")
		}
	}

	post := &models.Post{
		UserID:           in.UserID,
		Content:          content,
		Kind:             kind,
		GeneratedContent: in.GeneratedContent,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events.Event{Type: events.PostCreated, Payload: post})
	return post, nil
}

func (s *FeedService) ToggleLike(ctx context.Context, userID, postID uint) (*ReactionResult, error) {
	return s.toggle(ctx, userID, postID, models.ReactionLike)
}

func (s *FeedService) ToggleRetweet(ctx context.Context, userID, postID uint) (*ReactionResult, error) {
	return s.toggle(ctx, userID, postID, models.ReactionRetweet)
}

func (s *FeedService) ToggleBookmark(ctx context.Context, userID, postID uint) (*ReactionResult, error) {
	return s.toggle(ctx, userID, postID, models.ReactionBookmark)
}

func (s *FeedService) toggle(ctx context.Context, userID, postID uint, kind string) (*ReactionResult, error) {
	active, err := s.postRepo.ToggleReaction(ctx, userID, postID, kind)
	if err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	// Bookmarks are private; only the owner hears about them.
	e := events.Event{Type: events.PostReaction, Payload: map[string]any{
		"post_id":  post.ID,
		"kind":     kind,
		"likes":    post.LikesCount,
		"retweets": post.RetweetsCount,
	}}
	if kind == models.ReactionBookmark {
		e.UserID = userID
	}
	s.events.Publish(ctx, e)
	return &ReactionResult{Post: post, Kind: kind, Active: active}, nil
}

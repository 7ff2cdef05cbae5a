package server

import (
	"context"

	"domin8x/internal/models"
	"domin8x/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/posts
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page := parsePagination(c, defaultFeedPageLimit)
	posts, err := s.feedService.ListFeed(c.UserContext(), s.optionalUserID(c), page.Limit, page.Offset)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(posts)
}

// GetBookmarks handles GET /api/posts/bookmarks
func (s *Server) GetBookmarks(c *fiber.Ctx) error {
	page := parsePagination(c, defaultFeedPageLimit)
	userID := c.Locals("userID").(uint)
	posts, err := s.feedService.ListBookmarks(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.feedService.GetPost(c.UserContext(), id, s.optionalUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Content          string                   `json:"content"`
		GeneratedContent *models.GeneratedContent `json:"generated_content"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	post, err := s.feedService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:           c.Locals("userID").(uint),
		Content:          req.Content,
		GeneratedContent: req.GeneratedContent,
	})
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

type toggleFunc func(ctx context.Context, userID, postID uint) (*service.ReactionResult, error)

func (s *Server) toggle(c *fiber.Ctx, fn toggleFunc) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	result, err := fn(c.UserContext(), c.Locals("userID").(uint), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(result)
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	return s.toggle(c, s.feedService.ToggleLike)
}

// ToggleRetweet handles POST /api/posts/:id/retweet
func (s *Server) ToggleRetweet(c *fiber.Ctx) error {
	return s.toggle(c, s.feedService.ToggleRetweet)
}

// ToggleBookmark handles POST /api/posts/:id/bookmark
func (s *Server) ToggleBookmark(c *fiber.Ctx) error {
	return s.toggle(c, s.feedService.ToggleBookmark)
}

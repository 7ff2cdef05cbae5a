package server

import (
	"domin8x/internal/models"
	"domin8x/internal/promptindex"
	"domin8x/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPrompts handles GET /api/prompts?q=&category=&type=&sort=
func (s *Server) GetPrompts(c *fiber.Ctx) error {
	prompts, err := s.promptService.List(c.UserContext(), promptindex.Query{
		Search:   c.Query("q"),
		Category: c.Query("category"),
		Type:     c.Query("type"),
		Sort:     c.Query("sort"),
	})
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(prompts)
}

// AddPrompt handles POST /api/prompts
func (s *Server) AddPrompt(c *fiber.Ctx) error {
	var req service.AddPromptInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = c.Locals("userID").(uint)

	prompt, err := s.promptService.AddPrompt(c.UserContext(), req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(prompt)
}

// LikePrompt handles POST /api/prompts/:id/like
func (s *Server) LikePrompt(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	prompt, err := s.promptService.LikePrompt(c.UserContext(), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(prompt)
}

// UsePrompt handles POST /api/prompts/:id/use
func (s *Server) UsePrompt(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	prompt, err := s.promptService.UsePrompt(c.UserContext(), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(prompt)
}

// GetChallenges handles GET /api/challenges?status=
func (s *Server) GetChallenges(c *fiber.Ctx) error {
	challenges, err := s.challengeService.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(challenges)
}

// GetChallenge handles GET /api/challenges/:id
func (s *Server) GetChallenge(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	challenge, err := s.challengeService.Get(c.UserContext(), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(challenge)
}

// GetLeaderboard handles GET /api/challenges/:id/leaderboard
func (s *Server) GetLeaderboard(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	entries, err := s.challengeService.Leaderboard(c.UserContext(), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(entries)
}

// CreateChallenge handles POST /api/challenges
func (s *Server) CreateChallenge(c *fiber.Ctx) error {
	var req service.CreateChallengeInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = c.Locals("userID").(uint)

	challenge, err := s.challengeService.Create(c.UserContext(), req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(challenge)
}

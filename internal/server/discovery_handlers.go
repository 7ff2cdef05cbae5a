package server

import (
	"domin8x/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetTrending handles GET /api/trending
func (s *Server) GetTrending(c *fiber.Ctx) error {
	topics, err := s.discoveryService.Trending(c.UserContext(), c.QueryInt("limit", 0))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(topics)
}

// GetUserSuggestions handles GET /api/users/suggestions. The caller is left
// out of the list when a token is present.
func (s *Server) GetUserSuggestions(c *fiber.Ctx) error {
	users, err := s.discoveryService.Suggestions(c.UserContext(), s.optionalUserID(c), c.QueryInt("limit", 0))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(users)
}

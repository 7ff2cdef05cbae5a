package server

import (
	"domin8x/internal/models"
	"domin8x/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	user, err := s.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = c.Locals("userID").(uint)

	user, err := s.userService.UpdateProfile(c.UserContext(), req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(user)
}

// GetMyPreferences handles GET /api/users/me/preferences
func (s *Server) GetMyPreferences(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	pref, err := s.userService.GetPreferences(c.UserContext(), userID)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(pref)
}

// UpdateMyPreferences handles PUT /api/users/me/preferences
func (s *Server) UpdateMyPreferences(c *fiber.Ctx) error {
	var req struct {
		DarkMode *bool `json:"dark_mode"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.DarkMode == nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldError("dark_mode is required", map[string]string{"dark_mode": "Required"}))
	}

	userID := c.Locals("userID").(uint)
	pref, err := s.userService.SetDarkMode(c.UserContext(), userID, *req.DarkMode)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(pref)
}

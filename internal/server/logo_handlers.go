package server

import (
	"domin8x/internal/models"
	"domin8x/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetLogos handles GET /api/logos
func (s *Server) GetLogos(c *fiber.Ctx) error {
	logos, err := s.logoService.ListLogos(c.UserContext(), c.Locals("userID").(uint))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(logos)
}

// GenerateLogo handles POST /api/logos/generate. The request blocks for the
// simulated delay and is abandoned if the client goes away.
func (s *Server) GenerateLogo(c *fiber.Ctx) error {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	draft, err := s.logoService.GenerateLogo(c.UserContext(), c.Locals("userID").(uint), req.Prompt)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(draft)
}

// SaveLogo handles POST /api/logos
func (s *Server) SaveLogo(c *fiber.Ctx) error {
	var req service.SaveLogoInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = c.Locals("userID").(uint)

	logo, err := s.logoService.SaveLogo(c.UserContext(), req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(logo)
}

// MakeLogoTransparent handles POST /api/logos/:id/transparent
func (s *Server) MakeLogoTransparent(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	logo, err := s.logoService.MakeTransparent(c.UserContext(), c.Locals("userID").(uint), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(logo)
}

// DeleteLogo handles DELETE /api/logos/:id
func (s *Server) DeleteLogo(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.logoService.DeleteLogo(c.UserContext(), c.Locals("userID").(uint), id); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

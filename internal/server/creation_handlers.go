package server

import (
	"domin8x/internal/models"
	"domin8x/internal/service"

	"github.com/gofiber/fiber/v2"
)

// OpenCreation handles POST /api/creations
func (s *Server) OpenCreation(c *fiber.Ctx) error {
	var req struct {
		Type string `json:"type"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	creation, err := s.creationService.Open(c.UserContext(), c.Locals("userID").(uint), req.Type)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(creation)
}

// GetCreation handles GET /api/creations/:id
func (s *Server) GetCreation(c *fiber.Ctx) error {
	creation, err := s.creationService.Get(c.UserContext(), c.Locals("userID").(uint), c.Params("id"))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(creation)
}

// GenerateCreation handles POST /api/creations/:id/generate
// It returns 202 while the simulated generation runs; completion arrives as a
// creation.generated event or by polling GetCreation.
func (s *Server) GenerateCreation(c *fiber.Ctx) error {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	creation, err := s.creationService.Generate(c.UserContext(), c.Locals("userID").(uint), c.Params("id"), req.Prompt)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(creation)
}

// SelectCreationLogo handles POST /api/creations/:id/logo
func (s *Server) SelectCreationLogo(c *fiber.Ctx) error {
	var req struct {
		LogoID uint `json:"logo_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.LogoID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldError("logo_id is required", map[string]string{"logo_id": "Choose a logo"}))
	}
	creation, err := s.creationService.SelectLogo(c.UserContext(), c.Locals("userID").(uint), c.Params("id"), req.LogoID)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(creation)
}

// ApplyCreationLogo handles POST /api/creations/:id/overlay
func (s *Server) ApplyCreationLogo(c *fiber.Ctx) error {
	var req service.ApplyLogoInput
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}
	creation, err := s.creationService.ApplyLogo(c.UserContext(), c.Locals("userID").(uint), c.Params("id"), req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(creation)
}

// PostCreation handles POST /api/creations/:id/post
func (s *Server) PostCreation(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req); err != nil {
			return nil
		}
	}
	creation, post, err := s.creationService.Post(c.UserContext(), c.Locals("userID").(uint), c.Params("id"), req.Content)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"creation": creation,
		"post":     post,
	})
}

// DiscardCreation handles DELETE /api/creations/:id
func (s *Server) DiscardCreation(c *fiber.Ctx) error {
	creation, err := s.creationService.Discard(c.UserContext(), c.Locals("userID").(uint), c.Params("id"))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(creation)
}

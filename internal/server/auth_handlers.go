package server

import (
	"domin8x/internal/middleware"
	"domin8x/internal/models"
	"domin8x/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.SignupInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.authService.Signup(c.UserContext(), req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// Signin handles POST /api/auth/signin
func (s *Server) Signin(c *fiber.Ctx) error {
	var req service.SigninInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	result, err := s.authService.Signin(c.UserContext(), req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(result)
}

// Signout handles POST /api/auth/signout
func (s *Server) Signout(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*middleware.TokenClaims)
	if !ok {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.NewUnauthorizedError("Sign-out requires a bearer token"))
	}
	if err := s.authService.Signout(c.UserContext(), *claims); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetSession handles GET /api/session
func (s *Server) GetSession(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	user, err := s.authService.Session(c.UserContext(), userID)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

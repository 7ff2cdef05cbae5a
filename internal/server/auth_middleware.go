package server

import (
	"context"
	"strconv"
	"strings"
	"time"

	"domin8x/internal/middleware"
	"domin8x/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	wsTicketPrefix = "ws_ticket:"
	wsTicketTTL    = 30 * time.Second
)

// AuthRequired returns the authentication middleware. WebSocket upgrades may
// authenticate with a single-use ticket because browsers cannot set headers there.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Already authenticated further up the chain.
		if currentUserID(c) != 0 {
			return c.Next()
		}

		if strings.HasPrefix(c.Path(), "/api/ws") && c.Query("ticket") != "" {
			userID, ok := s.redeemWSTicket(c.UserContext(), c.Query("ticket"))
			if !ok {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
			s.authenticate(c, userID, nil)
			return c.Next()
		}

		claims, err := middleware.ParseToken(s.config.JWTSecret, middleware.BearerToken(c))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(err.Error()))
		}

		if claims.JTI != "" {
			revoked, err := s.sessions.Revoked(c.UserContext(), claims.JTI)
			if err != nil {
				middleware.Logger.WarnContext(c.UserContext(), "revocation check failed", "error", err.Error())
			}
			if revoked {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		s.authenticate(c, claims.UserID, claims)
		return c.Next()
	}
}

func (s *Server) authenticate(c *fiber.Ctx, userID uint, claims *middleware.TokenClaims) {
	c.Locals("userID", userID)
	if claims != nil {
		c.Locals("claims", claims)
	}
	c.SetUserContext(middleware.WithUserID(c.UserContext(), userID))
}

// optionalUserID returns the token's user when a valid, unrevoked token is present.
func (s *Server) optionalUserID(c *fiber.Ctx) uint {
	if uid := currentUserID(c); uid != 0 {
		return uid
	}
	token := middleware.BearerToken(c)
	if token == "" {
		return 0
	}
	claims, err := middleware.ParseToken(s.config.JWTSecret, token)
	if err != nil {
		return 0
	}
	if claims.JTI != "" {
		if revoked, _ := s.sessions.Revoked(c.UserContext(), claims.JTI); revoked {
			return 0
		}
	}
	return claims.UserID
}

// IssueWSTicket handles POST /api/ws/ticket
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewValidationError("WebSocket tickets require Redis"))
	}
	userID := c.Locals("userID").(uint)
	ticket := uuid.NewString()
	key := wsTicketPrefix + ticket
	if err := s.redis.Set(c.UserContext(), key, strconv.FormatUint(uint64(userID), 10), wsTicketTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// redeemWSTicket consumes ticket and returns its user.
func (s *Server) redeemWSTicket(ctx context.Context, ticket string) (uint, bool) {
	if s.redis == nil {
		return 0, false
	}
	raw, err := s.redis.GetDel(ctx, wsTicketPrefix+ticket).Result()
	if err != nil {
		return 0, false
	}
	userID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || userID == 0 {
		return 0, false
	}
	return uint(userID), true
}

package server

import (
	"domin8x/internal/models"
	"domin8x/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProjects handles GET /api/projects?search=
func (s *Server) GetProjects(c *fiber.Ctx) error {
	projects, err := s.projectService.ListProjects(c.UserContext(), c.Locals("userID").(uint), c.Query("search"))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(projects)
}

// CreateProject handles POST /api/projects
func (s *Server) CreateProject(c *fiber.Ctx) error {
	var req service.CreateProjectInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = c.Locals("userID").(uint)

	project, err := s.projectService.CreateProject(c.UserContext(), req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// ImportPostProject handles POST /api/projects/import
func (s *Server) ImportPostProject(c *fiber.Ctx) error {
	var req struct {
		PostID uint `json:"post_id"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewFieldError("post_id is required", map[string]string{"post_id": "Required"}))
	}

	project, err := s.projectService.ImportPost(c.UserContext(), c.Locals("userID").(uint), req.PostID)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// ImportSiteProject handles POST /api/projects/import-site. The request blocks
// for the simulated import and is abandoned if the client goes away.
func (s *Server) ImportSiteProject(c *fiber.Ctx) error {
	var req struct {
		URL string `json:"url"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	project, err := s.projectService.ImportWebsite(c.UserContext(), c.Locals("userID").(uint), req.URL)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(project)
}

// GetProject handles GET /api/projects/:id
func (s *Server) GetProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	project, err := s.projectService.GetProject(c.UserContext(), c.Locals("userID").(uint), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(project)
}

// UpdateProject handles PUT /api/projects/:id
func (s *Server) UpdateProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdateProjectInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	project, err := s.projectService.UpdateProject(c.UserContext(), c.Locals("userID").(uint), id, req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(project)
}

// DeleteProject handles DELETE /api/projects/:id
func (s *Server) DeleteProject(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.projectService.DeleteProject(c.UserContext(), c.Locals("userID").(uint), id); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetProjectCode handles GET /api/projects/:id/code
func (s *Server) GetProjectCode(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	page, err := s.projectService.SiteCode(c.UserContext(), c.Locals("userID").(uint), id)
	if err != nil {
		return models.Respond(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(page)
}

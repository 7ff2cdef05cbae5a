package service

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"domin8x/internal/events"
	"domin8x/internal/generation"
	"domin8x/internal/models"
	"domin8x/internal/repository"
)

const maxProjectNameLength = 80

var (
	projectKinds    = []string{models.ProjectKindLogo, models.ProjectKindImage, models.ProjectKindBrand, models.ProjectKindSocial}
	projectStatuses = []string{models.ProjectStatusNew, models.ProjectStatusInProgress, models.ProjectStatusReview, models.ProjectStatusCompleted}
)

// ProjectService manages Studio Pro projects and site imports.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	postRepo    repository.PostRepository
	events      events.Publisher
	importDelay time.Duration
}

type CreateProjectInput struct {
	UserID uint   `json:"-"`
	Type   string `json:"type"`
	Name   string `json:"name"`
}

// UpdateProjectInput carries a partial update. Nil fields are left alone.
type UpdateProjectInput struct {
	Name   *string              `json:"name"`
	Status *string              `json:"status"`
	Site   *models.ImportedSite `json:"site"`
}

func NewProjectService(projectRepo repository.ProjectRepository, postRepo repository.PostRepository, publisher events.Publisher, importDelay time.Duration) *ProjectService {
	return &ProjectService{projectRepo: projectRepo, postRepo: postRepo, events: publisher, importDelay: importDelay}
}

func (s *ProjectService) ListProjects(ctx context.Context, userID uint, search string) ([]models.Project, error) {
	return s.projectRepo.ListForUser(ctx, userID, search)
}

func (s *ProjectService) GetProject(ctx context.Context, userID, id uint) (*models.Project, error) {
	return s.ownedProject(ctx, userID, id)
}

// CreateProject starts an empty project. The name defaults to "New <type> Project".
func (s *ProjectService) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	kind := strings.ToLower(strings.TrimSpace(in.Type))
	if !slices.Contains(projectKinds, kind) {
		return nil, models.NewFieldError("Invalid project", map[string]string{"type": "Type must be logo, image, brand or social"})
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "New " + kind + " Project"
	}
	if utf8.RuneCountInString(name) > maxProjectNameLength {
		return nil, models.NewFieldError("Invalid project", map[string]string{"name": "Name must be at most 80 characters"})
	}
	return s.save(ctx, &models.Project{
		UserID: in.UserID,
		Name:   name,
		Type:   kind,
		Status: models.ProjectStatusNew,
		Source: models.ProjectSourceStudio,
	})
}

// ImportPost copies a generated image from the feed into a new project.
func (s *ProjectService) ImportPost(ctx context.Context, userID, postID uint) (*models.Project, error) {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	gc := post.GeneratedContent
	if gc == nil || gc.Type != models.PostKindImage || gc.URL == "" {
		return nil, models.NewFieldError("Post cannot be imported", map[string]string{"post_id": "Only posts with a generated image can be imported"})
	}
	source := post.ID
	return s.save(ctx, &models.Project{
		UserID:         userID,
		Name:           "Imported from DOMin8X",
		Type:           models.ProjectKindImage,
		OriginalPrompt: gc.Prompt,
		Thumbnail:      gc.URL,
		Status:         models.ProjectStatusNew,
		Source:         models.ProjectSourceFeed,
		SourcePostID:   &source,
	})
}

// ImportWebsite simulates copying the site at rawURL into an editable
// project for the lifetime of ctx. A missing scheme defaults to https.
func (s *ProjectService) ImportWebsite(ctx context.Context, userID uint, rawURL string) (*models.Project, error) {
	target, err := normalizeSiteURL(rawURL)
	if err != nil {
		return nil, err
	}

	site, err := generation.ImportSite(ctx, s.importDelay, target.String())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}
	return s.save(ctx, &models.Project{
		UserID: userID,
		Name:   target.Hostname(),
		Type:   models.ProjectKindWebsite,
		Status: models.ProjectStatusNew,
		Source: models.ProjectSourceSiteCopy,
		Site:   site,
	})
}

func normalizeSiteURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, models.NewFieldError("URL is required", map[string]string{"url": "Please enter a website URL"})
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, models.NewFieldError("Invalid URL", map[string]string{"url": "Enter an http or https website address"})
	}
	return u, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, userID, id uint, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.ownedProject(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	var columns []string
	problems := map[string]string{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		switch {
		case name == "":
			problems["name"] = "Name is required"
		case utf8.RuneCountInString(name) > maxProjectNameLength:
			problems["name"] = "Name must be at most 80 characters"
		default:
			project.Name = name
			columns = append(columns, "name")
		}
	}
	if in.Status != nil {
		if slices.Contains(projectStatuses, *in.Status) {
			project.Status = *in.Status
			columns = append(columns, "status")
		} else {
			problems["status"] = "Status must be new, in-progress, review or completed"
		}
	}
	if in.Site != nil {
		if project.Type != models.ProjectKindWebsite {
			problems["site"] = "Only website projects have a page layout"
		} else {
			project.Site = in.Site
			columns = append(columns, "site")
		}
	}
	if len(problems) > 0 {
		return nil, models.NewFieldError("Invalid project", problems)
	}
	if len(columns) == 0 {
		return project, nil
	}

	if err := s.projectRepo.Update(ctx, project, columns...); err != nil {
		return nil, err
	}
	updated, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events.Event{Type: events.ProjectSaved, UserID: userID, Payload: updated})
	return updated, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, userID, id uint) error {
	if _, err := s.ownedProject(ctx, userID, id); err != nil {
		return err
	}
	if err := s.projectRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Publish(ctx, events.Event{Type: events.ProjectDeleted, UserID: userID, Payload: map[string]uint{"id": id}})
	return nil
}

// SiteCode renders a website project as a standalone HTML page.
func (s *ProjectService) SiteCode(ctx context.Context, userID, id uint) (string, error) {
	project, err := s.ownedProject(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if project.Site == nil {
		return "", models.NewValidationError("Project has no imported website")
	}
	page, err := generation.SiteHTML(project.Site)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return page, nil
}

func (s *ProjectService) save(ctx context.Context, project *models.Project) (*models.Project, error) {
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	s.events.Publish(ctx, events.Event{Type: events.ProjectSaved, UserID: project.UserID, Payload: project})
	return project, nil
}

// ownedProject hides other users' projects behind NOT_FOUND.
func (s *ProjectService) ownedProject(ctx context.Context, userID, id uint) (*models.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, models.NewNotFoundError("Project", id)
	}
	return project, nil
}

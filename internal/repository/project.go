package repository

import (
	"context"
	"strings"

	"domin8x/internal/models"

	"gorm.io/gorm"
)

// ProjectRepository persists Studio Pro projects.
type ProjectRepository interface {
	// ListForUser returns userID's projects, most recently modified first. A
	// non-empty search matches the name or the original prompt, case-insensitively.
	ListForUser(ctx context.Context, userID uint, search string) ([]models.Project, error)
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	// Update writes the named columns of project and bumps updated_at.
	Update(ctx context.Context, project *models.Project, columns ...string) error
	Delete(ctx context.Context, id uint) error
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) ListForUser(ctx context.Context, userID uint, search string) ([]models.Project, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		like := "%" + escapeLike(term) + "%"
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(original_prompt) LIKE ? ESCAPE '\\')", like, like)
	}
	var projects []models.Project
	if err := q.Order("updated_at DESC, id DESC").Find(&projects).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, lookupError(err, "Project", id)
	}
	return &project, nil
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Struct updates go through the site column's JSON serializer; map updates do not.
func (r *projectRepository) Update(ctx context.Context, project *models.Project, columns ...string) error {
	res := r.db.WithContext(ctx).Model(project).Select(columns).Updates(project)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Project", project.ID)
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Project{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Project", id)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

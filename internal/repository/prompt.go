package repository

import (
	"context"

	"domin8x/internal/cache"
	"domin8x/internal/models"

	"gorm.io/gorm"
)

// PromptRepository is the single source of truth for the prompt index.
type PromptRepository interface {
	// List returns every prompt, newest first.
	List(ctx context.Context) ([]models.Prompt, error)
	GetByID(ctx context.Context, id uint) (*models.Prompt, error)
	Create(ctx context.Context, prompt *models.Prompt) error
	IncrementLikes(ctx context.Context, id uint) (*models.Prompt, error)
	IncrementUses(ctx context.Context, id uint) (*models.Prompt, error)
}

type promptRepository struct {
	db *gorm.DB
}

func NewPromptRepository(db *gorm.DB) PromptRepository {
	return &promptRepository{db: db}
}

func (r *promptRepository) List(ctx context.Context) ([]models.Prompt, error) {
	var prompts []models.Prompt
	err := cache.Aside(ctx, cache.PromptIndexKey, &prompts, cache.PromptIndexTTL, func() error {
		if err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&prompts).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return prompts, nil
}

func (r *promptRepository) GetByID(ctx context.Context, id uint) (*models.Prompt, error) {
	var prompt models.Prompt
	if err := r.db.WithContext(ctx).First(&prompt, id).Error; err != nil {
		return nil, lookupError(err, "Prompt", id)
	}
	return &prompt, nil
}

func (r *promptRepository) Create(ctx context.Context, prompt *models.Prompt) error {
	if err := r.db.WithContext(ctx).Create(prompt).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidatePromptIndex(ctx)
	return nil
}

func (r *promptRepository) IncrementLikes(ctx context.Context, id uint) (*models.Prompt, error) {
	return r.increment(ctx, id, "likes")
}

func (r *promptRepository) IncrementUses(ctx context.Context, id uint) (*models.Prompt, error) {
	return r.increment(ctx, id, "uses")
}

// increment bumps column in the database so concurrent readers never lose an update.
func (r *promptRepository) increment(ctx context.Context, id uint, column string) (*models.Prompt, error) {
	res := r.db.WithContext(ctx).Model(&models.Prompt{}).Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Prompt", id)
	}
	cache.InvalidatePromptIndex(ctx)
	return r.GetByID(ctx, id)
}

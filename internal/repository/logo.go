package repository

import (
	"context"

	"domin8x/internal/models"

	"gorm.io/gorm"
)

// LogoRepository persists logo library entries.
type LogoRepository interface {
	// ListForUser returns the shared starter logos plus userID's own, newest first.
	ListForUser(ctx context.Context, userID uint) ([]models.Logo, error)
	GetByID(ctx context.Context, id uint) (*models.Logo, error)
	Create(ctx context.Context, logo *models.Logo) error
	SetTransparent(ctx context.Context, id uint, transparent bool) error
	Delete(ctx context.Context, id uint) error
}

type logoRepository struct {
	db *gorm.DB
}

func NewLogoRepository(db *gorm.DB) LogoRepository {
	return &logoRepository{db: db}
}

func (r *logoRepository) ListForUser(ctx context.Context, userID uint) ([]models.Logo, error) {
	var logos []models.Logo
	err := r.db.WithContext(ctx).
		Where("user_id IS NULL OR user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&logos).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return logos, nil
}

func (r *logoRepository) GetByID(ctx context.Context, id uint) (*models.Logo, error) {
	var logo models.Logo
	if err := r.db.WithContext(ctx).First(&logo, id).Error; err != nil {
		return nil, lookupError(err, "Logo", id)
	}
	return &logo, nil
}

func (r *logoRepository) Create(ctx context.Context, logo *models.Logo) error {
	if err := r.db.WithContext(ctx).Create(logo).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *logoRepository) SetTransparent(ctx context.Context, id uint, transparent bool) error {
	res := r.db.WithContext(ctx).Model(&models.Logo{}).Where("id = ?", id).
		UpdateColumn("transparent", transparent)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Logo", id)
	}
	return nil
}

func (r *logoRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Logo{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Logo", id)
	}
	return nil
}

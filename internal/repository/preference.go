package repository

import (
	"context"
	"errors"

	"domin8x/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PreferenceRepository stores per-user UI settings.
type PreferenceRepository interface {
	Get(ctx context.Context, userID uint) (*models.Preference, error)
	Save(ctx context.Context, pref *models.Preference) error
}

type preferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

// Get returns the stored preference, or defaults when none was saved.
func (r *preferenceRepository) Get(ctx context.Context, userID uint) (*models.Preference, error) {
	var pref models.Preference
	err := r.db.WithContext(ctx).First(&pref, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Preference{UserID: userID}, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &pref, nil
}

func (r *preferenceRepository) Save(ctx context.Context, pref *models.Preference) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"dark_mode", "updated_at"}),
	}).Create(pref).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"domin8x/internal/cache"
	"domin8x/internal/models"

	"gorm.io/gorm"
)

// ChallengeRepository persists challenges and their pre-ranked leaderboards.
type ChallengeRepository interface {
	// List returns challenges newest first, optionally filtered by status.
	List(ctx context.Context, status models.ChallengeStatus) ([]models.Challenge, error)
	GetByID(ctx context.Context, id uint) (*models.Challenge, error)
	Create(ctx context.Context, challenge *models.Challenge) error
	// AdvanceStatuses moves challenges whose dates have passed and returns the ones it changed.
	AdvanceStatuses(ctx context.Context, now time.Time) ([]models.Challenge, error)
	Leaderboard(ctx context.Context, challengeID uint) ([]models.LeaderboardEntry, error)
	ReplaceLeaderboard(ctx context.Context, challengeID uint, entries []models.LeaderboardEntry) error
}

type challengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) List(ctx context.Context, status models.ChallengeStatus) ([]models.Challenge, error) {
	var challenges []models.Challenge
	err := cache.Aside(ctx, cache.ChallengeListCacheKey(string(status)), &challenges, cache.ChallengeTTL, func() error {
		q := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
		if status != "" {
			q = q.Where("status = ?", status)
		}
		if err := q.Find(&challenges).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

func (r *challengeRepository) GetByID(ctx context.Context, id uint) (*models.Challenge, error) {
	var challenge models.Challenge
	if err := r.db.WithContext(ctx).First(&challenge, id).Error; err != nil {
		return nil, lookupError(err, "Challenge", id)
	}
	return &challenge, nil
}

func (r *challengeRepository) Create(ctx context.Context, challenge *models.Challenge) error {
	if err := r.db.WithContext(ctx).Create(challenge).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateChallenges(ctx)
	return nil
}

func (r *challengeRepository) AdvanceStatuses(ctx context.Context, now time.Time) ([]models.Challenge, error) {
	now = now.UTC()
	var changed []models.Challenge
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var due []models.Challenge
		err := tx.Where("status <> ? AND end_date <= ?", models.ChallengeStatusCompleted, now).
			Or("status = ? AND start_date <= ?", models.ChallengeStatusUpcoming, now).
			Order("id ASC").
			Find(&due).Error
		if err != nil {
			return err
		}
		for i := range due {
			c := &due[i]
			next := models.ChallengeStatusActive
			if !c.EndDate.After(now) {
				next = models.ChallengeStatusCompleted
			}
			if next == c.Status {
				continue
			}
			if err := tx.Model(c).Update("status", next).Error; err != nil {
				return err
			}
			c.Status = next
			changed = append(changed, *c)
		}
		return nil
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(changed) > 0 {
		cache.InvalidateChallenges(ctx)
	}
	return changed, nil
}

// Leaderboard returns the entries ordered by rank. Unknown challenges are NOT_FOUND.
func (r *challengeRepository) Leaderboard(ctx context.Context, challengeID uint) ([]models.LeaderboardEntry, error) {
	var exists int64
	if err := r.db.WithContext(ctx).Model(&models.Challenge{}).Where("id = ?", challengeID).Count(&exists).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	if exists == 0 {
		return nil, models.NewNotFoundError("Challenge", challengeID)
	}

	entries := []models.LeaderboardEntry{}
	err := cache.Aside(ctx, cache.LeaderboardKey(challengeID), &entries, cache.LeaderboardTTL, func() error {
		err := r.db.WithContext(ctx).
			Where("challenge_id = ?", challengeID).
			Order("rank ASC").
			Find(&entries).Error
		if err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *challengeRepository) ReplaceLeaderboard(ctx context.Context, challengeID uint, entries []models.LeaderboardEntry) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("challenge_id = ?", challengeID).Delete(&models.LeaderboardEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		for i := range entries {
			entries[i].ID = 0
			entries[i].ChallengeID = challengeID
		}
		return tx.Create(&entries).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.LeaderboardKey(challengeID))
	return nil
}

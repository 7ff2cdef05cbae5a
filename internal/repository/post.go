package repository

import (
	"context"
	"errors"
	"fmt"

	"domin8x/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error)
	ListBookmarked(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error)
	// RecentContents returns the text of the newest limit posts.
	RecentContents(ctx context.Context, limit int) ([]string, error)
	// ToggleReaction flips userID's reaction of kind on postID and reports whether it is now set.
	ToggleReaction(ctx context.Context, userID, postID uint, kind string) (bool, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// counterColumn is the aggregate moved by a reaction kind. Bookmarks have none.
func counterColumn(kind string) (string, error) {
	switch kind {
	case models.ReactionLike:
		return "likes_count", nil
	case models.ReactionRetweet:
		return "retweets_count", nil
	case models.ReactionBookmark:
		return "", nil
	default:
		return "", fmt.Errorf("unknown reaction kind %q", kind)
	}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User").Create(post).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", post.UserID).
			UpdateColumn("posts_count", gorm.Expr("posts_count + ?", 1)).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := r.db.WithContext(ctx).First(&post.User, post.UserID).Error; err != nil {
		return lookupError(err, "User", post.UserID)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		return nil, lookupError(err, "Post", id)
	}
	if err := r.fillViewerFlags(ctx, viewerID, []*models.Post{&post}); err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns posts newest first.
func (r *postRepository) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, error) {
	limit, offset = clampPage(limit, offset)
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.fillViewerFlags(ctx, viewerID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) RecentContents(ctx context.Context, limit int) ([]string, error) {
	limit, _ = clampPage(limit, 0)
	var contents []string
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Pluck("content", &contents).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return contents, nil
}

// ListBookmarked returns the posts userID bookmarked, most recently bookmarked first.
func (r *postRepository) ListBookmarked(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	limit, offset = clampPage(limit, offset)
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN reactions ON reactions.post_id = posts.id AND reactions.user_id = ? AND reactions.kind = ?",
			userID, models.ReactionBookmark).
		Order("reactions.created_at DESC, reactions.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := r.fillViewerFlags(ctx, userID, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) ToggleReaction(ctx context.Context, userID, postID uint, kind string) (bool, error) {
	column, err := counterColumn(kind)
	if err != nil {
		return false, models.NewValidationError(err.Error())
	}

	var active bool
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").First(&post, postID).Error; err != nil {
			return lookupError(err, "Post", postID)
		}

		var existing models.Reaction
		err := tx.Where("user_id = ? AND post_id = ? AND kind = ?", userID, postID, kind).
			First(&existing).Error
		delta := 1
		switch {
		case err == nil:
			res := tx.Delete(&existing)
			if res.Error != nil {
				return res.Error
			}
			// Another toggle removed the row after we read it and already moved the counter.
			if res.RowsAffected == 0 {
				return models.NewConflictError("Reaction changed concurrently, retry", nil)
			}
			delta = -1
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Reaction{UserID: userID, PostID: postID, Kind: kind}).Error; err != nil {
				return err
			}
			active = true
		default:
			return err
		}

		if column == "" {
			return nil
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return false, err
		}
		if isUniqueConstraintError(err) {
			return false, models.NewConflictError("Reaction changed concurrently, retry", nil)
		}
		return false, models.NewInternalError(err)
	}
	return active, nil
}

// fillViewerFlags sets IsLiked, IsRetweeted and IsBookmarked for viewerID.
func (r *postRepository) fillViewerFlags(ctx context.Context, viewerID uint, posts []*models.Post) error {
	if viewerID == 0 || len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	byID := make(map[uint]*models.Post, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		byID[p.ID] = p
	}

	var reactions []models.Reaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id IN ?", viewerID, ids).
		Find(&reactions).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	for _, re := range reactions {
		p := byID[re.PostID]
		switch re.Kind {
		case models.ReactionLike:
			p.IsLiked = true
		case models.ReactionRetweet:
			p.IsRetweeted = true
		case models.ReactionBookmark:
			p.IsBookmarked = true
		}
	}
	return nil
}

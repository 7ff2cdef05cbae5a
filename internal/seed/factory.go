package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"domin8x/internal/generation"
	"domin8x/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds synthetic users and posts for development databases.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	hash  string
	seq   int
	// MaxAge bounds how far back generated posts are dated.
	MaxAge time.Duration
}

// NewFactory returns a Factory whose output is reproducible for a given seed.
func NewFactory(db *gorm.DB, seed int64) (*Factory, error) {
	// Development-only accounts.
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	return &Factory{
		db:     db,
		faker:  gofakeit.New(seed),
		hash:   string(hash),
		MaxAge: 72 * time.Hour,
	}, nil
}

// BuildUser returns an unsaved user with generated profile fields.
func (f *Factory) BuildUser() *models.User {
	f.seq++
	username := fmt.Sprintf("%s_%d", strings.ToLower(f.faker.Username()), f.seq)
	return &models.User{
		Username:       username,
		Email:          username + "@example.com",
		Password:       f.hash,
		Name:           f.faker.Name(),
		Bio:            f.faker.Sentence(8),
		Avatar:         "https://i.pravatar.cc/150?u=" + username,
		FollowersCount: f.faker.Number(0, 5000),
		FollowingCount: f.faker.Number(0, 800),
	}
}

// BuildPost returns an unsaved post by author. Roughly a third of posts
// carry simulated generated content.
func (f *Factory) BuildPost(author *models.User) *models.Post {
	post := &models.Post{
		UserID:        author.ID,
		Content:       f.faker.Sentence(f.faker.Number(6, 20)),
		Kind:          models.PostKindText,
		LikesCount:    f.faker.Number(0, 500),
		RetweetsCount: f.faker.Number(0, 100),
		CommentsCount: f.faker.Number(0, 50),
	}
	if f.MaxAge > 0 {
		post.CreatedAt = time.Now().UTC().Add(-time.Duration(f.faker.Int64()%int64(f.MaxAge)).Abs())
	}

	switch f.faker.Number(0, 5) {
	case 0:
		post.Kind = models.PostKindImage
		post.GeneratedContent = generation.Content(models.PostKindImage, f.faker.HipsterSentence(4))
	case 1:
		post.Kind = models.PostKindMusic
		post.GeneratedContent = generation.Content(models.PostKindMusic, f.faker.HipsterSentence(3))
	}
	return post
}

// CreateUsers persists n generated users.
func (f *Factory) CreateUsers(ctx context.Context, n int) ([]models.User, error) {
	if n <= 0 {
		return nil, nil
	}
	users := make([]models.User, 0, n)
	for range n {
		users = append(users, *f.BuildUser())
	}
	if err := f.db.WithContext(ctx).CreateInBatches(&users, 100).Error; err != nil {
		return nil, fmt.Errorf("create users: %w", err)
	}
	return users, nil
}

// CreatePosts persists n generated posts spread across authors.
func (f *Factory) CreatePosts(ctx context.Context, authors []models.User, n int) (int, error) {
	if n <= 0 || len(authors) == 0 {
		return 0, nil
	}
	err := f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		perAuthor := make(map[uint]int, len(authors))
		posts := make([]models.Post, 0, n)
		for range n {
			author := &authors[f.faker.Number(0, len(authors)-1)]
			posts = append(posts, *f.BuildPost(author))
			perAuthor[author.ID]++
		}
		if err := tx.Omit("User").CreateInBatches(&posts, 100).Error; err != nil {
			return err
		}
		for id, count := range perAuthor {
			if err := tx.Model(&models.User{}).Where("id = ?", id).
				UpdateColumn("posts_count", gorm.Expr("posts_count + ?", count)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("create posts: %w", err)
	}
	return n, nil
}

package repository

import (
	"context"
	"testing"

	"domin8x/internal/models"
	"domin8x/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostRepository_CreateAndList(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "alice")

	first := &models.Post{UserID: author.ID, Content: "first", Kind: models.PostKindText}
	second := &models.Post{
		UserID:  author.ID,
		Content: "second",
		Kind:    models.PostKindImage,
		GeneratedContent: &models.GeneratedContent{
			Type:   models.PostKindImage,
			URL:    "https://example.com/a.jpg",
			Prompt: "a cat",
		},
	}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	assert.Equal(t, "alice", second.User.Username)

	posts, err := repo.List(ctx, 20, 0, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID, "newest first")
	assert.Equal(t, "a cat", posts[0].GeneratedContent.Prompt)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, author.ID).Error)
	assert.Equal(t, 2, reloaded.PostsCount)
}

func TestPostRepository_ToggleLikeTwiceRestoresState(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "alice")
	viewer := testutil.CreateUser(t, db, "bob")

	post := &models.Post{UserID: author.ID, Content: "hello", LikesCount: 5}
	require.NoError(t, repo.Create(ctx, post))

	active, err := repo.ToggleReaction(ctx, viewer.ID, post.ID, models.ReactionLike)
	require.NoError(t, err)
	assert.True(t, active)

	got, err := repo.GetByID(ctx, post.ID, viewer.ID)
	require.NoError(t, err)
	assert.True(t, got.IsLiked)
	assert.Equal(t, 6, got.LikesCount)

	active, err = repo.ToggleReaction(ctx, viewer.ID, post.ID, models.ReactionLike)
	require.NoError(t, err)
	assert.False(t, active)

	got, err = repo.GetByID(ctx, post.ID, viewer.ID)
	require.NoError(t, err)
	assert.False(t, got.IsLiked)
	assert.Equal(t, 5, got.LikesCount)
}

func TestPostRepository_UnlikeRaceKeepsCounter(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "alice")
	viewer := testutil.CreateUser(t, db, "bob")

	post := &models.Post{UserID: author.ID, Content: "hello"}
	require.NoError(t, repo.Create(ctx, post))
	_, err := repo.ToggleReaction(ctx, viewer.ID, post.ID, models.ReactionLike)
	require.NoError(t, err)

	// Remove the reaction between the read and the delete, as a competing un-like would.
	stolen := false
	require.NoError(t, db.Callback().Delete().Before("gorm:delete").Register("test:competing_unlike", func(tx *gorm.DB) {
		if stolen {
			return
		}
		stolen = true
		tx.Session(&gorm.Session{NewDB: true}).
			Exec("DELETE FROM reactions WHERE user_id = ? AND post_id = ?", viewer.ID, post.ID)
	}))

	_, err = repo.ToggleReaction(ctx, viewer.ID, post.ID, models.ReactionLike)
	assert.True(t, models.HasCode(err, models.CodeConflict))
	assert.True(t, stolen)

	var likes int
	require.NoError(t, db.Model(&models.Post{}).Where("id = ?", post.ID).Pluck("likes_count", &likes).Error)
	assert.Equal(t, 1, likes, "a delete that removed nothing must not move the counter")
}

func TestPostRepository_ReactionsAreIndependent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "alice")
	viewer := testutil.CreateUser(t, db, "bob")

	post := &models.Post{UserID: author.ID, Content: "hello"}
	require.NoError(t, repo.Create(ctx, post))

	_, err := repo.ToggleReaction(ctx, viewer.ID, post.ID, models.ReactionRetweet)
	require.NoError(t, err)
	_, err = repo.ToggleReaction(ctx, viewer.ID, post.ID, models.ReactionBookmark)
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, post.ID, viewer.ID)
	require.NoError(t, err)
	assert.False(t, got.IsLiked)
	assert.True(t, got.IsRetweeted)
	assert.True(t, got.IsBookmarked)
	assert.Equal(t, 1, got.RetweetsCount)
	assert.Equal(t, 0, got.LikesCount)

	// Another viewer sees the counters but not the flags.
	anon, err := repo.GetByID(ctx, post.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, anon.IsRetweeted)
	assert.Equal(t, 1, anon.RetweetsCount)

	bookmarks, err := repo.ListBookmarked(ctx, viewer.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, post.ID, bookmarks[0].ID)
	assert.True(t, bookmarks[0].IsBookmarked)
}

func TestPostRepository_ToggleReactionErrors(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	viewer := testutil.CreateUser(t, db, "bob")

	_, err := repo.ToggleReaction(ctx, viewer.ID, 999, models.ReactionLike)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	_, err = repo.ToggleReaction(ctx, viewer.ID, 1, "love")
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestPostRepository_GetByIDNotFound(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)

	_, err := repo.GetByID(context.Background(), 42, 0)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPostRepository_RecentContents(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "alice")

	for _, text := range []string{"one #a", "two #b", "three #c"} {
		require.NoError(t, repo.Create(ctx, &models.Post{UserID: author.ID, Content: text, Kind: models.PostKindText}))
	}

	contents, err := repo.RecentContents(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"three #c", "two #b"}, contents)
}

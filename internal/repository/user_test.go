package repository

import (
	"context"
	"testing"

	"domin8x/internal/cache"
	"domin8x/internal/models"
	"domin8x/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserRepository_Lookups(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, alice.ID, byName.ID)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)

	missing, err := repo.GetByUsername(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	_, err = repo.GetByID(ctx, 999)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestUserRepository_CreateDuplicateIsConflict(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	testutil.CreateUser(t, db, "alice")

	err := repo.Create(ctx, &models.User{Username: "alice", Email: "other@example.com", Password: "x"})
	assert.True(t, models.HasCode(err, models.CodeConflict))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("username = ?", "alice").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUserRepository_UpdateAndList(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	testutil.CreateUser(t, db, "bob")

	alice.Bio = "Digital artist"
	require.NoError(t, repo.UpdateProfile(ctx, alice))

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Digital artist", got.Bio)

	users, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserRepository_UpdateProfileFromCachedUser(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := cache.NewClient(mr.Addr())
	require.NoError(t, err)
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})

	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	require.NoError(t, db.Model(alice).Update("posts_count", 4).Error)

	_, err = repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	cached, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.Empty(t, cached.Password)

	// A stale counter in the cached copy must not be written back either.
	require.NoError(t, db.Model(alice).Update("posts_count", 5).Error)

	cached.Bio = "Digital artist"
	require.NoError(t, repo.UpdateProfile(ctx, cached))

	var stored models.User
	require.NoError(t, db.First(&stored, alice.ID).Error)
	assert.Equal(t, "Digital artist", stored.Bio)
	assert.Equal(t, 5, stored.PostsCount)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("password123")))

	fresh, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Digital artist", fresh.Bio)
}

func TestUserRepository_UpdateProfileMissingUser(t *testing.T) {
	repo := NewUserRepository(testutil.NewSQLiteDB(t))
	err := repo.UpdateProfile(context.Background(), &models.User{ID: 404, Name: "Ghost"})
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPreferenceRepository_DefaultsAndUpsert(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewPreferenceRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	pref, err := repo.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, pref.DarkMode)

	require.NoError(t, repo.Save(ctx, &models.Preference{UserID: alice.ID, DarkMode: true}))
	pref, err = repo.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, pref.DarkMode)

	require.NoError(t, repo.Save(ctx, &models.Preference{UserID: alice.ID, DarkMode: false}))
	pref, err = repo.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.False(t, pref.DarkMode)
}

func TestUserRepository_Suggestions(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	me := testutil.CreateUser(t, db, "me")
	popular := testutil.CreateUser(t, db, "popular")
	verified := testutil.CreateUser(t, db, "verified")
	testutil.CreateUser(t, db, "quiet")
	require.NoError(t, db.Model(popular).Update("followers_count", 900).Error)
	require.NoError(t, db.Model(verified).Updates(map[string]any{"verified": true, "followers_count": 10}).Error)
	require.NoError(t, db.Model(me).Updates(map[string]any{"verified": true, "followers_count": 5000}).Error)

	users, err := repo.Suggestions(ctx, me.ID, 10)
	require.NoError(t, err)
	var names []string
	for _, u := range users {
		names = append(names, u.Username)
	}
	assert.Equal(t, []string{"verified", "popular", "quiet"}, names)

	users, err = repo.Suggestions(ctx, me.ID, 1)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, verified.ID, users[0].ID)
}

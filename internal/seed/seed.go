// Package seed loads the starter content of a fresh DOMin8X database and
// generates synthetic users and posts for local development.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"domin8x/internal/middleware"
	"domin8x/internal/models"
	"domin8x/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

//go:embed fixtures.yaml
var fixturesYAML []byte

// Fixtures is the decoded starter content.
type Fixtures struct {
	Users      []UserFixture      `yaml:"users"`
	Posts      []PostFixture      `yaml:"posts"`
	Prompts    []PromptFixture    `yaml:"prompts"`
	Logos      []LogoFixture      `yaml:"logos"`
	Challenges []ChallengeFixture `yaml:"challenges"`
	Projects   []ProjectFixture   `yaml:"projects"`
}

type UserFixture struct {
	Username  string   `yaml:"username"`
	Name      string   `yaml:"name"`
	Email     string   `yaml:"email"`
	Avatar    string   `yaml:"avatar"`
	Bio       string   `yaml:"bio"`
	Verified  bool     `yaml:"verified"`
	Followers int      `yaml:"followers"`
	Following int      `yaml:"following"`
	Badges    []string `yaml:"badges"`
}

type PostFixture struct {
	Author    string                   `yaml:"author"`
	Age       string                   `yaml:"age"`
	Content   string                   `yaml:"content"`
	Type      string                   `yaml:"type"`
	Likes     int                      `yaml:"likes"`
	Retweets  int                      `yaml:"retweets"`
	Comments  int                      `yaml:"comments"`
	Generated *GeneratedContentFixture `yaml:"generated"`
}

type GeneratedContentFixture struct {
	Type     string `yaml:"type"`
	URL      string `yaml:"url"`
	Title    string `yaml:"title"`
	Duration string `yaml:"duration"`
	Waveform string `yaml:"waveform"`
	Prompt   string `yaml:"prompt"`
}

type PromptFixture struct {
	Prompt      string   `yaml:"prompt"`
	Hashtags    []string `yaml:"hashtags"`
	Category    string   `yaml:"category"`
	Type        string   `yaml:"type"`
	Author      string   `yaml:"author"`
	Likes       int      `yaml:"likes"`
	Uses        int      `yaml:"uses"`
	SuccessRate int      `yaml:"success_rate"`
	CreatedAt   string   `yaml:"created_at"`
	Description string   `yaml:"description"`
}

type LogoFixture struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Transparent bool   `yaml:"transparent"`
	CreatedAt   string `yaml:"created_at"`
}

type ChallengeFixture struct {
	Title           string            `yaml:"title"`
	Type            string            `yaml:"type"`
	Description     string            `yaml:"description"`
	Hashtags        []string          `yaml:"hashtags"`
	StartsIn        string            `yaml:"starts_in"`
	Lasts           string            `yaml:"lasts"`
	Prize           string            `yaml:"prize"`
	Participants    int               `yaml:"participants"`
	Submissions     int               `yaml:"submissions"`
	Rules           []string          `yaml:"rules"`
	JudgingCriteria []string          `yaml:"judging_criteria"`
	Leaderboard     []StandingFixture `yaml:"leaderboard"`
}

type StandingFixture struct {
	Username    string   `yaml:"username"`
	Score       int      `yaml:"score"`
	Votes       int      `yaml:"votes"`
	Submissions int      `yaml:"submissions"`
	Badges      []string `yaml:"badges"`
}

type ProjectFixture struct {
	Owner     string `yaml:"owner"`
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Prompt    string `yaml:"prompt"`
	Thumbnail string `yaml:"thumbnail"`
	Status    string `yaml:"status"`
	Source    string `yaml:"source"`
	Modified  string `yaml:"modified"`
}

// Summary counts the rows Seed inserted.
type Summary struct {
	Users       int
	Posts       int
	Prompts     int
	Logos       int
	Challenges  int
	Leaderboard int
	Projects    int
}

// LoadFixtures decodes the embedded starter content.
func LoadFixtures() (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(fixturesYAML, &f); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	return &f, nil
}

// Seed inserts the starter content. It is safe to run repeatedly: users and
// logos are matched by name, challenges by title, and prompts and posts are
// only loaded into empty tables.
func Seed(ctx context.Context, db *gorm.DB) (Summary, error) {
	f, err := LoadFixtures()
	if err != nil {
		return Summary{}, err
	}
	return Apply(ctx, db, f, time.Now().UTC())
}

// Apply seeds f relative to now.
func Apply(ctx context.Context, db *gorm.DB, f *Fixtures, now time.Time) (Summary, error) {
	var sum Summary
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users, n, err := seedUsers(tx, f.Users)
		if err != nil {
			return fmt.Errorf("users: %w", err)
		}
		sum.Users = n

		if sum.Posts, err = seedPosts(tx, f.Posts, users, now); err != nil {
			return fmt.Errorf("posts: %w", err)
		}
		if sum.Prompts, err = seedPrompts(tx, f.Prompts); err != nil {
			return fmt.Errorf("prompts: %w", err)
		}
		if sum.Logos, err = seedLogos(tx, f.Logos); err != nil {
			return fmt.Errorf("logos: %w", err)
		}
		if sum.Challenges, sum.Leaderboard, err = seedChallenges(ctx, tx, f.Challenges, users, now); err != nil {
			return fmt.Errorf("challenges: %w", err)
		}
		if sum.Projects, err = seedProjects(tx, f.Projects, users); err != nil {
			return fmt.Errorf("projects: %w", err)
		}
		return nil
	})
	if err != nil {
		return Summary{}, fmt.Errorf("seed: %w", err)
	}

	middleware.Logger.InfoContext(ctx, "Database seeded",
		"users", sum.Users,
		"posts", sum.Posts,
		"prompts", sum.Prompts,
		"logos", sum.Logos,
		"challenges", sum.Challenges,
		"projects", sum.Projects,
	)
	return sum, nil
}

func seedUsers(tx *gorm.DB, fixtures []UserFixture) (map[string]*models.User, int, error) {
	users := make(map[string]*models.User, len(fixtures))
	if len(fixtures) == 0 {
		return users, 0, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, 0, err
	}

	created := 0
	for _, uf := range fixtures {
		var existing models.User
		err := tx.Where("username = ?", uf.Username).First(&existing).Error
		if err == nil {
			users[uf.Username] = &existing
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, err
		}

		u := &models.User{
			Username:       uf.Username,
			Email:          uf.Email,
			Password:       string(hash),
			Name:           uf.Name,
			Avatar:         uf.Avatar,
			Bio:            uf.Bio,
			Verified:       uf.Verified,
			FollowersCount: uf.Followers,
			FollowingCount: uf.Following,
			Badges:         uf.Badges,
		}
		if err := tx.Create(u).Error; err != nil {
			return nil, 0, err
		}
		users[uf.Username] = u
		created++
	}
	return users, created, nil
}

func seedPosts(tx *gorm.DB, fixtures []PostFixture, users map[string]*models.User, now time.Time) (int, error) {
	var count int64
	if err := tx.Model(&models.Post{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	for _, pf := range fixtures {
		author, ok := users[pf.Author]
		if !ok {
			return 0, fmt.Errorf("unknown author %q", pf.Author)
		}
		age, err := time.ParseDuration(pf.Age)
		if err != nil {
			return 0, fmt.Errorf("post age %q: %w", pf.Age, err)
		}
		post := &models.Post{
			UserID:        author.ID,
			Content:       pf.Content,
			Kind:          pf.Type,
			LikesCount:    pf.Likes,
			RetweetsCount: pf.Retweets,
			CommentsCount: pf.Comments,
			CreatedAt:     now.Add(-age),
		}
		if g := pf.Generated; g != nil {
			post.GeneratedContent = &models.GeneratedContent{
				Type:     g.Type,
				URL:      g.URL,
				Title:    g.Title,
				Duration: g.Duration,
				Waveform: g.Waveform,
				Prompt:   g.Prompt,
			}
		}
		if err := tx.Omit("User").Create(post).Error; err != nil {
			return 0, err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", author.ID).
			UpdateColumn("posts_count", gorm.Expr("posts_count + ?", 1)).Error; err != nil {
			return 0, err
		}
	}
	return len(fixtures), nil
}

func seedPrompts(tx *gorm.DB, fixtures []PromptFixture) (int, error) {
	var count int64
	if err := tx.Model(&models.Prompt{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 || len(fixtures) == 0 {
		return 0, nil
	}

	prompts := make([]models.Prompt, 0, len(fixtures))
	for _, pf := range fixtures {
		createdAt, err := time.Parse(time.DateOnly, pf.CreatedAt)
		if err != nil {
			return 0, fmt.Errorf("prompt %q created_at: %w", pf.Prompt, err)
		}
		prompts = append(prompts, models.Prompt{
			Text:        pf.Prompt,
			Hashtags:    pf.Hashtags,
			Category:    pf.Category,
			Type:        pf.Type,
			Author:      pf.Author,
			Likes:       pf.Likes,
			Uses:        pf.Uses,
			SuccessRate: pf.SuccessRate,
			Description: pf.Description,
			CreatedAt:   createdAt,
		})
	}
	if err := tx.Create(&prompts).Error; err != nil {
		return 0, err
	}
	return len(prompts), nil
}

func seedLogos(tx *gorm.DB, fixtures []LogoFixture) (int, error) {
	created := 0
	for _, lf := range fixtures {
		var count int64
		if err := tx.Model(&models.Logo{}).
			Where("user_id IS NULL AND name = ?", lf.Name).
			Count(&count).Error; err != nil {
			return 0, err
		}
		if count > 0 {
			continue
		}
		createdAt, err := time.Parse(time.DateOnly, lf.CreatedAt)
		if err != nil {
			return 0, fmt.Errorf("logo %q created_at: %w", lf.Name, err)
		}
		logo := &models.Logo{
			Name:        lf.Name,
			URL:         lf.URL,
			Transparent: lf.Transparent,
			CreatedAt:   createdAt,
		}
		if err := tx.Create(logo).Error; err != nil {
			return 0, err
		}
		created++
	}
	return created, nil
}

// seedProjects matches existing projects by owner and name.
func seedProjects(tx *gorm.DB, fixtures []ProjectFixture, users map[string]*models.User) (int, error) {
	created := 0
	for _, pf := range fixtures {
		owner, ok := users[pf.Owner]
		if !ok {
			return 0, fmt.Errorf("project %q: unknown owner %q", pf.Name, pf.Owner)
		}
		var count int64
		if err := tx.Model(&models.Project{}).
			Where("user_id = ? AND name = ?", owner.ID, pf.Name).
			Count(&count).Error; err != nil {
			return 0, err
		}
		if count > 0 {
			continue
		}
		modified, err := time.Parse(time.DateOnly, pf.Modified)
		if err != nil {
			return 0, fmt.Errorf("project %q modified: %w", pf.Name, err)
		}
		project := &models.Project{
			UserID:         owner.ID,
			Name:           pf.Name,
			Type:           pf.Type,
			OriginalPrompt: pf.Prompt,
			Thumbnail:      pf.Thumbnail,
			Status:         pf.Status,
			Source:         pf.Source,
			CreatedAt:      modified,
			UpdatedAt:      modified,
		}
		if err := tx.Create(project).Error; err != nil {
			return 0, err
		}
		created++
	}
	return created, nil
}

func seedChallenges(ctx context.Context, tx *gorm.DB, fixtures []ChallengeFixture, users map[string]*models.User, now time.Time) (int, int, error) {
	challenges, entries := 0, 0
	challengeRepo := repository.NewChallengeRepository(tx)
	for _, cf := range fixtures {
		var count int64
		if err := tx.Model(&models.Challenge{}).Where("title = ?", cf.Title).Count(&count).Error; err != nil {
			return 0, 0, err
		}
		if count > 0 {
			continue
		}

		startsIn, err := time.ParseDuration(cf.StartsIn)
		if err != nil {
			return 0, 0, fmt.Errorf("challenge %q starts_in: %w", cf.Title, err)
		}
		lasts, err := time.ParseDuration(cf.Lasts)
		if err != nil {
			return 0, 0, fmt.Errorf("challenge %q lasts: %w", cf.Title, err)
		}
		start := now.Add(startsIn)
		end := start.Add(lasts)

		ch := &models.Challenge{
			Title:           cf.Title,
			Type:            cf.Type,
			Description:     cf.Description,
			Hashtags:        cf.Hashtags,
			StartDate:       start,
			EndDate:         end,
			Status:          StatusAt(start, end, now),
			Prize:           cf.Prize,
			Participants:    cf.Participants,
			Submissions:     cf.Submissions,
			Rules:           cf.Rules,
			JudgingCriteria: cf.JudgingCriteria,
		}
		if err := tx.Create(ch).Error; err != nil {
			return 0, 0, err
		}
		challenges++

		standings := make([]models.LeaderboardEntry, 0, len(cf.Leaderboard))
		for i, sf := range cf.Leaderboard {
			u, ok := users[sf.Username]
			if !ok {
				return 0, 0, fmt.Errorf("challenge %q: unknown user %q", cf.Title, sf.Username)
			}
			standings = append(standings, models.LeaderboardEntry{
				Rank:        i + 1,
				User:        u.Snapshot(),
				Score:       sf.Score,
				Votes:       sf.Votes,
				Submissions: sf.Submissions,
				Badges:      sf.Badges,
			})
		}
		if err := challengeRepo.ReplaceLeaderboard(ctx, ch.ID, standings); err != nil {
			return 0, 0, fmt.Errorf("challenge %q leaderboard: %w", cf.Title, err)
		}
		entries += len(standings)
	}
	return challenges, entries, nil
}

// StatusAt is the lifecycle state of a challenge running from start to end, observed at now.
func StatusAt(start, end, now time.Time) models.ChallengeStatus {
	switch {
	case !end.After(now):
		return models.ChallengeStatusCompleted
	case start.After(now):
		return models.ChallengeStatusUpcoming
	default:
		return models.ChallengeStatusActive
	}
}

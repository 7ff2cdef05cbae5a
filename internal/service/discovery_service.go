package service

import (
	"context"
	"slices"
	"strings"

	"domin8x/internal/cache"
	"domin8x/internal/models"
	"domin8x/internal/promptindex"
	"domin8x/internal/repository"
)

const (
	defaultTrendingLimit    = 5
	maxTrendingLimit        = 20
	trendingPostWindow      = 200
	defaultSuggestionsLimit = 3
	maxSuggestionsLimit     = 20
)

// DiscoveryService backs the sidebar: trending hashtags and accounts to follow.
type DiscoveryService struct {
	postRepo   repository.PostRepository
	promptRepo repository.PromptRepository
	userRepo   repository.UserRepository
}

func NewDiscoveryService(postRepo repository.PostRepository, promptRepo repository.PromptRepository, userRepo repository.UserRepository) *DiscoveryService {
	return &DiscoveryService{postRepo: postRepo, promptRepo: promptRepo, userRepo: userRepo}
}

// Trending counts hashtags over the recent feed and the prompt index. Each
// post or prompt counts once per tag; tags compare case-insensitively.
func (s *DiscoveryService) Trending(ctx context.Context, limit int) ([]models.TrendingTopic, error) {
	if limit <= 0 {
		limit = defaultTrendingLimit
	}
	limit = min(limit, maxTrendingLimit)

	var topics []models.TrendingTopic
	err := cache.Aside(ctx, cache.TrendingKey(limit), &topics, cache.TrendingTTL, func() error {
		var err error
		topics, err = s.countTrending(ctx, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return topics, nil
}

func (s *DiscoveryService) countTrending(ctx context.Context, limit int) ([]models.TrendingTopic, error) {
	contents, err := s.postRepo.RecentContents(ctx, trendingPostWindow)
	if err != nil {
		return nil, err
	}
	prompts, err := s.promptRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, text := range contents {
		for _, tag := range promptindex.ExtractHashtags(text) {
			counts[tag]++
		}
	}
	for _, p := range prompts {
		seen := map[string]struct{}{}
		for _, tag := range p.Hashtags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" || tag == "#" {
				continue
			}
			if !strings.HasPrefix(tag, "#") {
				tag = "#" + tag
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			counts[tag]++
		}
	}

	topics := make([]models.TrendingTopic, 0, len(counts))
	for name, n := range counts {
		topics = append(topics, models.TrendingTopic{Name: name, Posts: n})
	}
	slices.SortFunc(topics, func(a, b models.TrendingTopic) int {
		if a.Posts != b.Posts {
			return b.Posts - a.Posts
		}
		return strings.Compare(a.Name, b.Name)
	})
	if len(topics) > limit {
		topics = topics[:limit]
	}
	return topics, nil
}

// Suggestions lists accounts viewerID might follow. Anonymous viewers pass 0.
func (s *DiscoveryService) Suggestions(ctx context.Context, viewerID uint, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = defaultSuggestionsLimit
	}
	return s.userRepo.Suggestions(ctx, viewerID, min(limit, maxSuggestionsLimit))
}

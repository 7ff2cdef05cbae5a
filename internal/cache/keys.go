package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix        = "user:%d"
	PromptIndexKey       = "prompts:index"
	ChallengeListKey     = "challenges:list:%s"
	LeaderboardKeyPrefix = "challenge:%d:leaderboard"
	TrendingKeyPrefix    = "trending:%d"
)

const (
	UserTTL        = 5 * time.Minute
	PromptIndexTTL = 2 * time.Minute
	ChallengeTTL   = 1 * time.Minute
	LeaderboardTTL = 10 * time.Minute
	TrendingTTL    = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func ChallengeListCacheKey(status string) string {
	if status == "" {
		status = "all"
	}
	return fmt.Sprintf(ChallengeListKey, status)
}

func LeaderboardKey(challengeID uint) string {
	return fmt.Sprintf(LeaderboardKeyPrefix, challengeID)
}

func TrendingKey(limit int) string {
	return fmt.Sprintf(TrendingKeyPrefix, limit)
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePromptIndex(ctx context.Context) {
	Invalidate(ctx, PromptIndexKey)
}

// InvalidateChallenges drops every cached challenge listing.
func InvalidateChallenges(ctx context.Context) {
	Invalidate(ctx,
		ChallengeListCacheKey(""),
		ChallengeListCacheKey("upcoming"),
		ChallengeListCacheKey("active"),
		ChallengeListCacheKey("completed"),
	)
}

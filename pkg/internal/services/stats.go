package services

import (
	"context"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	localCache "github.com/qetahub/qeta/pkg/internal/cache"
	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/rs/zerolog/log"
)

type GlobalStats struct {
	TotalPosts    int64 `json:"total_posts"`
	TotalAnswers  int64 `json:"total_answers"`
	TotalComments int64 `json:"total_comments"`
	TotalVotes    int64 `json:"total_votes"`
	TotalTags     int64 `json:"total_tags"`
	TotalEntities int64 `json:"total_entities"`
	TotalUsers    int64 `json:"total_users"`
}

type UserStats struct {
	UserRef        string `json:"user_ref"`
	TotalPosts     int64  `json:"total_posts"`
	TotalAnswers   int64  `json:"total_answers"`
	TotalComments  int64  `json:"total_comments"`
	TotalVotes     int64  `json:"total_votes"`
	TotalFollowers int64  `json:"total_followers"`
}

const statsCacheTTL = 5 * time.Minute

// InvalidateStatsCache drops every tagged stats entry; callers fire it
// after content writes so the next read recomputes.
func InvalidateStatsCache() {
	cacheManager := cache.New[any](localCache.S)
	if err := cacheManager.Invalidate(context.Background(),
		store.WithInvalidateTags([]string{"stats"}),
	); err != nil {
		log.Warn().Err(err).Msg("An error occurred when invalidating stats cache...")
	}
}

// GetGlobalStats serves the seven-count summary from cache when possible;
// the counts span every table so computing them on every request would be
// wasteful.
func GetGlobalStats() (GlobalStats, error) {
	ctx := context.Background()
	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)

	if cached, err := marshal.Get(ctx, "global-stats", new(GlobalStats)); err == nil {
		return *cached.(*GlobalStats), nil
	}

	stats, err := computeGlobalStats()
	if err != nil {
		return stats, err
	}

	_ = marshal.Set(ctx, "global-stats", stats,
		store.WithExpiration(statsCacheTTL),
		store.WithTags([]string{"stats"}),
	)
	return stats, nil
}

func computeGlobalStats() (GlobalStats, error) {
	var stats GlobalStats
	counts := []struct {
		dest  *int64
		query func(dest *int64) error
	}{
		{&stats.TotalPosts, func(dest *int64) error {
			return database.C.Model(&models.Post{}).Where("status <> ?", models.PostStatusDeleted).Count(dest).Error
		}},
		{&stats.TotalAnswers, func(dest *int64) error {
			return database.C.Model(&models.Answer{}).Where("status <> ?", models.PostStatusDeleted).Count(dest).Error
		}},
		{&stats.TotalComments, func(dest *int64) error {
			return database.C.Model(&models.Comment{}).Where("status <> ?", models.PostStatusDeleted).Count(dest).Error
		}},
		{&stats.TotalVotes, func(dest *int64) error {
			var postVotes, answerVotes int64
			if err := database.C.Model(&models.PostVote{}).Count(&postVotes).Error; err != nil {
				return err
			}
			if err := database.C.Model(&models.AnswerVote{}).Count(&answerVotes).Error; err != nil {
				return err
			}
			*dest = postVotes + answerVotes
			return nil
		}},
		{&stats.TotalTags, func(dest *int64) error {
			return database.C.Model(&models.Tag{}).Count(dest).Error
		}},
		{&stats.TotalEntities, func(dest *int64) error {
			return database.C.Model(&models.Entity{}).Count(dest).Error
		}},
		{&stats.TotalUsers, func(dest *int64) error {
			return database.C.Model(&models.Post{}).Distinct("author").Count(dest).Error
		}},
	}

	for _, item := range counts {
		if err := item.query(item.dest); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func GetUserStats(userRef string) (UserStats, error) {
	ctx := context.Background()
	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)
	cacheKey := fmt.Sprintf("user-stats#%s", userRef)

	if cached, err := marshal.Get(ctx, cacheKey, new(UserStats)); err == nil {
		return *cached.(*UserStats), nil
	}

	stats := UserStats{UserRef: userRef}
	if err := database.C.Model(&models.Post{}).
		Where("author = ? AND status <> ?", userRef, models.PostStatusDeleted).
		Count(&stats.TotalPosts).Error; err != nil {
		return stats, err
	}
	if err := database.C.Model(&models.Answer{}).
		Where("author = ? AND status <> ?", userRef, models.PostStatusDeleted).
		Count(&stats.TotalAnswers).Error; err != nil {
		return stats, err
	}
	if err := database.C.Model(&models.Comment{}).
		Where("author = ? AND status <> ?", userRef, models.PostStatusDeleted).
		Count(&stats.TotalComments).Error; err != nil {
		return stats, err
	}
	if err := database.C.Model(&models.PostVote{}).
		Where("author = ?", userRef).
		Count(&stats.TotalVotes).Error; err != nil {
		return stats, err
	}
	if err := database.C.Model(&models.UserFollow{}).
		Where("followed_ref = ?", userRef).
		Count(&stats.TotalFollowers).Error; err != nil {
		return stats, err
	}

	_ = marshal.Set(ctx, cacheKey, stats,
		store.WithExpiration(statsCacheTTL),
		store.WithTags([]string{"stats", fmt.Sprintf("user#%s", userRef)}),
	)
	return stats, nil
}

// SnapshotStats persists a daily row of the global and per-author counts;
// scheduled from main.
func SnapshotStats() {
	now := time.Now()

	global, err := computeGlobalStats()
	if err != nil {
		log.Error().Err(err).Msg("An error occurred when computing global stats snapshot...")
		return
	}
	if err := database.C.Create(&models.GlobalStat{
		Date:          now,
		TotalPosts:    global.TotalPosts,
		TotalAnswers:  global.TotalAnswers,
		TotalComments: global.TotalComments,
		TotalVotes:    global.TotalVotes,
		TotalTags:     global.TotalTags,
		TotalEntities: global.TotalEntities,
		TotalUsers:    global.TotalUsers,
	}).Error; err != nil {
		log.Error().Err(err).Msg("An error occurred when saving global stats snapshot...")
		return
	}

	var authors []string
	if err := database.C.Model(&models.Post{}).Distinct("author").Pluck("author", &authors).Error; err != nil {
		log.Error().Err(err).Msg("An error occurred when listing authors for stats snapshot...")
		return
	}
	for _, author := range authors {
		stats, err := GetUserStats(author)
		if err != nil {
			log.Error().Err(err).Str("author", author).Msg("An error occurred when computing user stats snapshot...")
			continue
		}
		_ = database.C.Create(&models.UserStat{
			UserRef:        author,
			Date:           now,
			TotalPosts:     stats.TotalPosts,
			TotalAnswers:   stats.TotalAnswers,
			TotalComments:  stats.TotalComments,
			TotalVotes:     stats.TotalVotes,
			TotalFollowers: stats.TotalFollowers,
		}).Error
	}

	log.Info().Int("authors", len(authors)).Msg("Stats snapshot saved.")
}

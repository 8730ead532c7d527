package services

import (
	"time"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// DoAutoDatabaseCleanup purges rows that have sat in the deleted status
// past the retention window. Soft-deleted content stays recoverable until
// then.
func DoAutoDatabaseCleanup() {
	retention := viper.GetInt("performance.cleanup_retention_hours")
	if retention <= 0 {
		retention = 72
	}
	deadline := time.Now().Add(-time.Duration(retention) * time.Hour)

	log.Debug().Time("deadline", deadline).Msg("Now cleaning up entire database...")

	var posts []models.Post
	if err := database.C.
		Where("status = ? AND updated_at < ?", models.PostStatusDeleted, deadline).
		Find(&posts).Error; err == nil {
		for _, item := range posts {
			if err := PermanentlyDeletePost(item); err != nil {
				log.Error().Err(err).Uint("post", item.ID).Msg("An error occurred when purging post...")
			}
		}
	}

	var answers []models.Answer
	if err := database.C.
		Where("status = ? AND updated_at < ?", models.PostStatusDeleted, deadline).
		Find(&answers).Error; err == nil {
		for _, item := range answers {
			if err := PermanentlyDeleteAnswer(item); err != nil {
				log.Error().Err(err).Uint("answer", item.ID).Msg("An error occurred when purging answer...")
			}
		}
	}

	var comments []models.Comment
	if err := database.C.
		Where("status = ? AND updated_at < ?", models.PostStatusDeleted, deadline).
		Find(&comments).Error; err == nil {
		for _, item := range comments {
			if err := PermanentlyDeleteComment(item); err != nil {
				log.Error().Err(err).Uint("comment", item.ID).Msg("An error occurred when purging comment...")
			}
		}
	}

	log.Debug().
		Int("posts", len(posts)).
		Int("answers", len(answers)).
		Int("comments", len(comments)).
		Msg("Database cleanup finished.")
}

package services

import (
	"testing"
	"time"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoAutoDatabaseCleanup(t *testing.T) {
	author := "user:default/janitor"

	stale := seedQuestion(t, author, "deleted long ago")
	fresh := seedQuestion(t, author, "deleted just now")
	require.NoError(t, DeletePost(stale))
	require.NoError(t, DeletePost(fresh))

	// Age the first deletion past the retention window.
	require.NoError(t, database.C.Model(&models.Post{}).
		Where("id = ?", stale.ID).
		UpdateColumn("updated_at", time.Now().Add(-100*time.Hour)).Error)

	DoAutoDatabaseCleanup()

	err := database.C.Where("id = ?", stale.ID).First(&models.Post{}).Error
	assert.True(t, IsPostNotFound(err))

	var survivor models.Post
	require.NoError(t, database.C.Where("id = ?", fresh.ID).First(&survivor).Error)
	assert.Equal(t, models.PostStatusDeleted, survivor.Status)
}

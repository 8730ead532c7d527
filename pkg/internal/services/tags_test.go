package services

import (
	"testing"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTagOrCreateNormalizes(t *testing.T) {
	first, err := GetTagOrCreate("  MixedCase  ")
	require.NoError(t, err)
	assert.Equal(t, "mixedcase", first.Tag)

	second, err := GetTagOrCreate("mixedcase")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestTagsBaseQueryCounters(t *testing.T) {
	author := "user:default/tag-counter"
	for i := 0; i < 3; i++ {
		_, err := NewPost(models.Post{
			Author:  author,
			Title:   "tag counted",
			Content: "content",
			Type:    models.PostTypeQuestion,
			Tags:    []models.Tag{{Tag: "counted-tag"}},
		})
		require.NoError(t, err)
	}
	ok, err := FollowTag("user:default/tag-fan", "counted-tag")
	require.NoError(t, err)
	require.True(t, ok)

	var tag models.Tag
	require.NoError(t, TagsBaseQuery(database.C).Where("tags.tag = ?", "counted-tag").First(&tag).Error)
	assert.EqualValues(t, 3, tag.PostsCount)
	assert.EqualValues(t, 1, tag.FollowersCount)
}

func TestFollowTagRequiresExistingTag(t *testing.T) {
	ok, err := FollowTag("user:default/eager-fan", "never-created")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTagExperts(t *testing.T) {
	_, err := GetTagOrCreate("expertise")
	require.NoError(t, err)

	ok, err := AddTagExpert("expertise", "user:default/guru")
	require.NoError(t, err)
	require.True(t, ok)

	// Adding the same expert twice keeps one row.
	ok, err = AddTagExpert("expertise", "user:default/guru")
	require.NoError(t, err)
	require.True(t, ok)

	experts, err := ListTagExperts("expertise")
	require.NoError(t, err)
	assert.Equal(t, []string{"user:default/guru"}, experts)

	ok, err = RemoveTagExpert("expertise", "user:default/guru")
	require.NoError(t, err)
	require.True(t, ok)

	experts, err = ListTagExperts("expertise")
	require.NoError(t, err)
	assert.Empty(t, experts)

	ok, err = AddTagExpert("no-such-tag", "user:default/guru")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteTagCleansJoins(t *testing.T) {
	author := "user:default/tag-deleter"
	post, err := NewPost(models.Post{
		Author:  author,
		Title:   "loses a tag",
		Content: "content",
		Type:    models.PostTypeQuestion,
		Tags:    []models.Tag{{Tag: "doomed-tag"}},
	})
	require.NoError(t, err)

	require.NoError(t, DeleteTag("doomed-tag"))

	_, err = GetTag("doomed-tag")
	assert.Error(t, err)

	var count int64
	require.NoError(t, database.C.Table("post_tags").
		Where("post_id = ?", post.ID).
		Count(&count).Error)
	assert.Zero(t, count)
}

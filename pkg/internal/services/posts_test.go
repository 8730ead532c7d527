package services

import (
	"fmt"
	"testing"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestListPostsPagination(t *testing.T) {
	author := "user:default/pager"
	for i := 0; i < 25; i++ {
		_, err := NewPost(models.Post{
			Author:  author,
			Title:   fmt.Sprintf("paged question %d", i),
			Content: "content",
			Type:    models.PostTypeQuestion,
			Tags:    []models.Tag{{Tag: "paged"}},
		})
		require.NoError(t, err)
	}

	baseQuery := func() *gorm.DB {
		tx := PostsBaseQuery(database.C, author, false)
		tx = FilterPostsWithAuthor(tx, author)
		return FilterPostsWithStatus(tx, models.PostStatusActive)
	}

	seen := make(map[uint]bool)
	for _, offset := range []int{0, 10, 20} {
		items, total, err := ListPosts(baseQuery(), 10, offset, "posts.id ASC")
		require.NoError(t, err)
		assert.EqualValues(t, 25, total)
		if offset == 20 {
			assert.Len(t, items, 5)
		} else {
			assert.Len(t, items, 10)
		}
		for _, item := range items {
			assert.False(t, seen[item.ID], "post %d appeared on two pages", item.ID)
			seen[item.ID] = true
		}
	}
	assert.Len(t, seen, 25)

	// The total must survive join-heavy filters; the count wraps the
	// filtered query as a subquery instead of counting joined rows.
	tx := FilterPostsWithAnyTag(baseQuery(), []string{"paged"})
	_, total, err := ListPosts(tx, 10, 0, "posts.id ASC")
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
}

func TestFilterPostsWithAllTags(t *testing.T) {
	author := "user:default/all-tags"
	both, err := NewPost(models.Post{
		Author:  author,
		Title:   "both tags",
		Content: "content",
		Type:    models.PostTypeQuestion,
		Tags:    []models.Tag{{Tag: "allt-x"}, {Tag: "allt-y"}},
	})
	require.NoError(t, err)
	_, err = NewPost(models.Post{
		Author:  author,
		Title:   "only one tag",
		Content: "content",
		Type:    models.PostTypeQuestion,
		Tags:    []models.Tag{{Tag: "allt-x"}},
	})
	require.NoError(t, err)

	tx := database.C.Model(&models.Post{}).Where("posts.author = ?", author)
	tx = FilterPostsWithAllTags(tx, []string{"allt-x", "allt-y"})

	var ids []uint
	require.NoError(t, tx.Pluck("posts.id", &ids).Error)
	assert.Equal(t, []uint{both.ID}, ids)
}

func TestFilterPostsWithFuzzySearch(t *testing.T) {
	author := "user:default/fuzzy"
	hit, err := NewPost(models.Post{
		Author:  author,
		Title:   "how do I configure kafka retention",
		Content: "content",
		Type:    models.PostTypeQuestion,
	})
	require.NoError(t, err)
	_, err = NewPost(models.Post{
		Author:  author,
		Title:   "unrelated",
		Content: "nothing to see",
		Type:    models.PostTypeQuestion,
	})
	require.NoError(t, err)

	tx := database.C.Model(&models.Post{}).Where("posts.author = ?", author)
	tx = FilterPostsWithFuzzySearch(tx, "kafka")

	var ids []uint
	require.NoError(t, tx.Pluck("posts.id", &ids).Error)
	assert.Equal(t, []uint{hit.ID}, ids)
}

func TestDeletePostSoftThenPermanent(t *testing.T) {
	author := "user:default/deleter"
	item, err := NewPost(models.Post{
		Author:  author,
		Title:   "doomed question",
		Content: "content",
		Type:    models.PostTypeQuestion,
		Tags:    []models.Tag{{Tag: "doomed"}},
	})
	require.NoError(t, err)
	_, err = NewAnswer(models.Answer{PostID: item.ID, Author: author, Content: "short lived"})
	require.NoError(t, err)

	require.NoError(t, DeletePost(item))

	var reloaded models.Post
	require.NoError(t, database.C.Where("id = ?", item.ID).First(&reloaded).Error)
	assert.Equal(t, models.PostStatusDeleted, reloaded.Status)

	require.NoError(t, PermanentlyDeletePost(reloaded))
	err = database.C.Where("id = ?", item.ID).First(&models.Post{}).Error
	assert.True(t, IsPostNotFound(err))

	var orphanAnswers int64
	require.NoError(t, database.C.Model(&models.Answer{}).Where("post_id = ?", item.ID).Count(&orphanAnswers).Error)
	assert.Zero(t, orphanAnswers)
}

func TestLinkPostRequiresURL(t *testing.T) {
	_, err := NewPost(models.Post{
		Author:  "user:default/linker",
		Title:   "a link without a target",
		Content: "content",
		Type:    models.PostTypeLink,
	})
	assert.Error(t, err)
}

func TestPostViewsFlush(t *testing.T) {
	author := "user:default/viewer"
	item, err := NewPost(models.Post{
		Author:  author,
		Title:   "watched question",
		Content: "content",
		Type:    models.PostTypeQuestion,
	})
	require.NoError(t, err)

	AddPostView(item, "user:default/reader-one")
	AddPostView(item, "user:default/reader-two")
	// Same reader twice only counts once.
	AddPostView(item, "user:default/reader-two")
	FlushPostViews()

	var reloaded models.Post
	require.NoError(t, database.C.Where("id = ?", item.ID).First(&reloaded).Error)
	assert.EqualValues(t, 2, reloaded.TotalViews)
}

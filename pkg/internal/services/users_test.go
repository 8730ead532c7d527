package services

import (
	"testing"

	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsersSkipsAnonymous(t *testing.T) {
	visible := "user:default/visible-writer"
	hidden := "user:default/anon-writer"

	_, err := NewPost(models.Post{
		Author:  visible,
		Title:   "signed post",
		Content: "content",
		Type:    models.PostTypeArticle,
	})
	require.NoError(t, err)
	_, err = NewPost(models.Post{
		Author:    hidden,
		Title:     "anonymous post",
		Content:   "content",
		Type:      models.PostTypeArticle,
		Anonymous: true,
	})
	require.NoError(t, err)

	users, err := ListUsers()
	require.NoError(t, err)

	refs := lo.Map(users, func(u UserSummary, _ int) string { return u.UserRef })
	assert.Contains(t, refs, visible)
	assert.NotContains(t, refs, hidden)

	mine, found := lo.Find(users, func(u UserSummary) bool { return u.UserRef == visible })
	require.True(t, found)
	assert.EqualValues(t, 1, mine.TotalPosts)
}

func TestFavoritePost(t *testing.T) {
	user := "user:default/favoriter"
	question := seedQuestion(t, "user:default/favorited-author", "favored question")

	ok, err := FavoritePost(user, question.ID)
	require.NoError(t, err)
	require.True(t, ok)

	// Favoriting twice keeps a single row.
	ok, err = FavoritePost(user, question.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ids, err := ListFavoritePostIDs(user)
	require.NoError(t, err)
	assert.Equal(t, []uint{question.ID}, ids)

	ok, err = UnfavoritePost(user, question.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ids, err = ListFavoritePostIDs(user)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ok, err = FavoritePost(user, 99999999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowUser(t *testing.T) {
	alice := "user:default/follower-alice"
	bob := "user:default/followed-bob"

	ok, err := FollowUser(alice, alice)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = FollowUser(alice, bob)
	require.NoError(t, err)
	require.True(t, ok)

	followed, err := ListFollowedUsers(alice)
	require.NoError(t, err)
	assert.Equal(t, []string{bob}, followed)

	ok, err = UnfollowUser(alice, bob)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = UnfollowUser(alice, bob)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetUserStats(t *testing.T) {
	author := "user:default/stats-subject"
	fan := "user:default/stats-fan"

	question := seedQuestion(t, author, "statted question")
	_, err := NewAnswer(models.Answer{PostID: question.ID, Author: author, Content: "self answer"})
	require.NoError(t, err)
	ok, err := FollowUser(fan, author)
	require.NoError(t, err)
	require.True(t, ok)

	stats, err := GetUserStats(author)
	require.NoError(t, err)
	assert.Equal(t, author, stats.UserRef)
	assert.EqualValues(t, 1, stats.TotalPosts)
	assert.EqualValues(t, 1, stats.TotalAnswers)
	assert.EqualValues(t, 1, stats.TotalFollowers)
}

func TestSanitizeContentStripsScripts(t *testing.T) {
	dirty := `<p>fine</p><script>alert("nope")</script>`
	clean := SanitizeContent(dirty)
	assert.Contains(t, clean, "<p>fine</p>")
	assert.NotContains(t, clean, "script")
}

package services

import (
	"testing"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVotePostRevote(t *testing.T) {
	author := "user:default/vote-owner"
	alice := "user:default/vote-alice"
	bob := "user:default/vote-bob"
	question := seedQuestion(t, author, "voted question")

	ok, err := VotePost(alice, question.ID, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, reloadPost(t, question.ID).Score)

	// Re-voting replaces the previous row instead of stacking.
	ok, err = VotePost(alice, question.ID, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, reloadPost(t, question.ID).Score)

	ok, err = VotePost(alice, question.ID, -1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, -1, reloadPost(t, question.ID).Score)

	var rows int64
	require.NoError(t, database.C.Model(&models.PostVote{}).
		Where("post_id = ? AND author = ?", question.ID, alice).
		Count(&rows).Error)
	assert.EqualValues(t, 1, rows)

	ok, err = VotePost(bob, question.ID, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, reloadPost(t, question.ID).Score)

	ok, err = DeletePostVote(alice, question.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, reloadPost(t, question.ID).Score)

	ok, err = DeletePostVote(alice, question.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = VotePost(alice, 99999999, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVoteAnswer(t *testing.T) {
	author := "user:default/vote-answerer"
	voter := "user:default/vote-caster"
	question := seedQuestion(t, author, "question with voted answer")
	answer, err := NewAnswer(models.Answer{PostID: question.ID, Author: author, Content: "votable"})
	require.NoError(t, err)

	ok, err := VoteAnswer(voter, answer.ID, 5)
	require.NoError(t, err)
	require.True(t, ok)
	// Scores normalize to plus or minus one.
	assert.Equal(t, 1, reloadAnswer(t, answer.ID).Score)

	ok, err = VoteAnswer(voter, answer.ID, -3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, -1, reloadAnswer(t, answer.ID).Score)

	ok, err = DeleteAnswerVote(voter, answer.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, reloadAnswer(t, answer.ID).Score)

	ok, err = VoteAnswer(voter, 99999999, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

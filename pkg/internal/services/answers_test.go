package services

import (
	"testing"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedQuestion(t *testing.T, author string, title string) models.Post {
	item, err := NewPost(models.Post{
		Author:  author,
		Title:   title,
		Content: "content",
		Type:    models.PostTypeQuestion,
	})
	require.NoError(t, err)
	return item
}

func reloadPost(t *testing.T, id uint) models.Post {
	var item models.Post
	require.NoError(t, database.C.Where("id = ?", id).First(&item).Error)
	return item
}

func reloadAnswer(t *testing.T, id uint) models.Answer {
	var item models.Answer
	require.NoError(t, database.C.Where("id = ?", id).First(&item).Error)
	return item
}

func TestNewAnswerGuards(t *testing.T) {
	author := "user:default/answer-guard"

	article, err := NewPost(models.Post{
		Author:  author,
		Title:   "not a question",
		Content: "content",
		Type:    models.PostTypeArticle,
	})
	require.NoError(t, err)
	_, err = NewAnswer(models.Answer{PostID: article.ID, Author: author, Content: "no"})
	assert.Error(t, err)

	question := seedQuestion(t, author, "soon deleted")
	require.NoError(t, DeletePost(question))
	_, err = NewAnswer(models.Answer{PostID: question.ID, Author: author, Content: "too late"})
	assert.Error(t, err)
}

func TestAnswerCounters(t *testing.T) {
	author := "user:default/answer-count"
	question := seedQuestion(t, author, "counted question")

	first, err := NewAnswer(models.Answer{PostID: question.ID, Author: author, Content: "one"})
	require.NoError(t, err)
	_, err = NewAnswer(models.Answer{PostID: question.ID, Author: author, Content: "two"})
	require.NoError(t, err)
	assert.Equal(t, 2, reloadPost(t, question.ID).AnswersCount)

	require.NoError(t, PermanentlyDeleteAnswer(first))
	assert.Equal(t, 1, reloadPost(t, question.ID).AnswersCount)
}

func TestMarkAnswerCorrectExclusive(t *testing.T) {
	author := "user:default/correctness"
	question := seedQuestion(t, author, "which answer wins")

	first, err := NewAnswer(models.Answer{PostID: question.ID, Author: author, Content: "first"})
	require.NoError(t, err)
	second, err := NewAnswer(models.Answer{PostID: question.ID, Author: author, Content: "second"})
	require.NoError(t, err)

	ok, err := MarkAnswerCorrect(question.ID, first.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, reloadAnswer(t, first.ID).Correct)
	assert.Equal(t, 1, reloadPost(t, question.ID).CorrectAnswers)

	// Re-marking the same answer is a no-op success.
	ok, err = MarkAnswerCorrect(question.ID, first.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, reloadPost(t, question.ID).CorrectAnswers)

	// Marking a different answer moves the flag without growing the
	// counter.
	ok, err = MarkAnswerCorrect(question.ID, second.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, reloadAnswer(t, first.ID).Correct)
	assert.True(t, reloadAnswer(t, second.ID).Correct)
	assert.Equal(t, 1, reloadPost(t, question.ID).CorrectAnswers)

	ok, err = MarkAnswerIncorrect(question.ID, second.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, reloadAnswer(t, second.ID).Correct)
	assert.Equal(t, 0, reloadPost(t, question.ID).CorrectAnswers)

	// Clearing an already-incorrect answer succeeds without touching the
	// counter.
	ok, err = MarkAnswerIncorrect(question.ID, second.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, reloadPost(t, question.ID).CorrectAnswers)

	ok, err = MarkAnswerCorrect(question.ID, 99999999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCommentCounters(t *testing.T) {
	author := "user:default/commenter"
	question := seedQuestion(t, author, "commented question")
	answer, err := NewAnswer(models.Answer{PostID: question.ID, Author: author, Content: "target"})
	require.NoError(t, err)

	postComment, err := CommentPost(question.ID, models.Comment{Author: author, Content: "on the post"})
	require.NoError(t, err)
	_, err = CommentAnswer(answer.ID, models.Comment{Author: author, Content: "on the answer"})
	require.NoError(t, err)

	assert.Equal(t, 1, reloadPost(t, question.ID).CommentsCount)
	assert.Equal(t, 1, reloadAnswer(t, answer.ID).CommentsCount)

	require.NoError(t, PermanentlyDeleteComment(postComment))
	assert.Equal(t, 0, reloadPost(t, question.ID).CommentsCount)
	assert.Equal(t, 1, reloadAnswer(t, answer.ID).CommentsCount)
}

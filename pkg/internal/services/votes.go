package services

import (
	"errors"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"gorm.io/gorm"
)

// Voting is always delete-then-insert so one author can never hold two
// rows for the same target; the denormalized score is recomputed from the
// vote table afterwards instead of being adjusted incrementally.
func VotePost(author string, postID uint, score int) (bool, error) {
	if score >= 0 {
		score = 1
	} else {
		score = -1
	}

	if err := database.C.Where("id = ?", postID).First(&models.Post{}).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := database.C.
		Where("author = ? AND post_id = ?", author, postID).
		Delete(&models.PostVote{}).Error; err != nil {
		return false, err
	}
	if err := database.C.Create(&models.PostVote{
		Author: author,
		PostID: postID,
		Score:  score,
	}).Error; err != nil {
		return false, err
	}

	InvalidateStatsCache()
	return true, RefreshPostScore(postID)
}

func DeletePostVote(author string, postID uint) (bool, error) {
	result := database.C.
		Where("author = ? AND post_id = ?", author, postID).
		Delete(&models.PostVote{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	return true, RefreshPostScore(postID)
}

func RefreshPostScore(postID uint) error {
	return database.C.Model(&models.Post{}).
		Where("id = ?", postID).
		Update("score", gorm.Expr(
			"(SELECT COALESCE(SUM(post_votes.score), 0) FROM post_votes WHERE post_votes.post_id = posts.id)",
		)).Error
}

func VoteAnswer(author string, answerID uint, score int) (bool, error) {
	if score >= 0 {
		score = 1
	} else {
		score = -1
	}

	if err := database.C.Where("id = ?", answerID).First(&models.Answer{}).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := database.C.
		Where("author = ? AND answer_id = ?", author, answerID).
		Delete(&models.AnswerVote{}).Error; err != nil {
		return false, err
	}
	if err := database.C.Create(&models.AnswerVote{
		Author:   author,
		AnswerID: answerID,
		Score:    score,
	}).Error; err != nil {
		return false, err
	}

	InvalidateStatsCache()
	return true, RefreshAnswerScore(answerID)
}

func DeleteAnswerVote(author string, answerID uint) (bool, error) {
	result := database.C.
		Where("author = ? AND answer_id = ?", author, answerID).
		Delete(&models.AnswerVote{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	return true, RefreshAnswerScore(answerID)
}

func RefreshAnswerScore(answerID uint) error {
	return database.C.Model(&models.Answer{}).
		Where("id = ?", answerID).
		Update("score", gorm.Expr(
			"(SELECT COALESCE(SUM(answer_votes.score), 0) FROM answer_votes WHERE answer_votes.answer_id = answers.id)",
		)).Error
}

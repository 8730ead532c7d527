package services

import (
	"errors"
	"fmt"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"gorm.io/gorm"
)

func FilterCommentsWithStatus(tx *gorm.DB, status string) *gorm.DB {
	return tx.Where("comments.status = ?", status)
}

func ListPostComments(tx *gorm.DB, postID uint) ([]models.Comment, error) {
	var items []models.Comment
	err := tx.Model(&models.Comment{}).
		Where("comments.post_id = ?", postID).
		Order("comments.created_at ASC").
		Find(&items).Error
	return items, err
}

func ListAnswerComments(tx *gorm.DB, answerID uint) ([]models.Comment, error) {
	var items []models.Comment
	err := tx.Model(&models.Comment{}).
		Where("comments.answer_id = ?", answerID).
		Order("comments.created_at ASC").
		Find(&items).Error
	return items, err
}

func CommentPost(postID uint, item models.Comment) (models.Comment, error) {
	if err := database.C.Where("id = ?", postID).First(&models.Post{}).Error; err != nil {
		return item, err
	}

	item.PostID = &postID
	item.AnswerID = nil
	item.Status = models.PostStatusActive
	item.Content = SanitizeContent(item.Content)

	if err := database.C.Save(&item).Error; err != nil {
		return item, err
	}
	if err := database.C.Model(&models.Post{}).
		Where("id = ?", postID).
		Update("comments_count", gorm.Expr("comments_count + 1")).Error; err != nil {
		return item, err
	}

	InvalidateStatsCache()
	return item, nil
}

func CommentAnswer(answerID uint, item models.Comment) (models.Comment, error) {
	if err := database.C.Where("id = ?", answerID).First(&models.Answer{}).Error; err != nil {
		return item, err
	}

	item.AnswerID = &answerID
	item.PostID = nil
	item.Status = models.PostStatusActive
	item.Content = SanitizeContent(item.Content)

	if err := database.C.Save(&item).Error; err != nil {
		return item, err
	}
	if err := database.C.Model(&models.Answer{}).
		Where("id = ?", answerID).
		Update("comments_count", gorm.Expr("comments_count + 1")).Error; err != nil {
		return item, err
	}

	InvalidateStatsCache()
	return item, nil
}

func GetComment(id uint) (models.Comment, error) {
	var item models.Comment
	err := database.C.Where("id = ?", id).First(&item).Error
	return item, err
}

func DeleteComment(item models.Comment) error {
	return database.C.Model(&models.Comment{}).
		Where("id = ?", item.ID).
		Update("status", models.PostStatusDeleted).Error
}

func PermanentlyDeleteComment(item models.Comment) error {
	if err := database.C.Delete(&models.Comment{}, item.ID).Error; err != nil {
		return err
	}

	switch {
	case item.PostID != nil:
		return database.C.Model(&models.Post{}).
			Where("id = ?", *item.PostID).
			Update("comments_count", gorm.Expr("comments_count - 1")).Error
	case item.AnswerID != nil:
		return database.C.Model(&models.Answer{}).
			Where("id = ?", *item.AnswerID).
			Update("comments_count", gorm.Expr("comments_count - 1")).Error
	default:
		return fmt.Errorf("comment %d is attached to neither a post nor an answer", item.ID)
	}
}

func IsCommentNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

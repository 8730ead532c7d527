package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"gorm.io/gorm"
)

// AnswersBaseQuery mirrors the posts base query: the answer row plus its
// correlated aggregates.
func AnswersBaseQuery(tx *gorm.DB) *gorm.DB {
	selects := []string{
		"answers.*",
		"(SELECT COALESCE(SUM(answer_votes.score), 0) FROM answer_votes WHERE answer_votes.answer_id = answers.id) AS score",
		"(SELECT COUNT(*) FROM comments WHERE comments.answer_id = answers.id AND comments.status = 'active') AS comments_count",
	}
	return tx.Model(&models.Answer{}).Select(strings.Join(selects, ", "))
}

func FilterAnswersWithPost(tx *gorm.DB, postID uint) *gorm.DB {
	return tx.Where("answers.post_id = ?", postID)
}

func FilterAnswersWithStatus(tx *gorm.DB, status string) *gorm.DB {
	return tx.Where("answers.status = ?", status)
}

func CountAnswers(tx *gorm.DB) (int64, error) {
	var count int64
	sub := tx.Session(&gorm.Session{}).Select("answers.id")
	if err := database.C.Table("(?) AS total_query", sub).Count(&count).Error; err != nil {
		return count, err
	}
	return count, nil
}

func ListAnswers(tx *gorm.DB, take int, offset int, order string) ([]*models.Answer, int64, error) {
	if take <= 0 || take > 100 {
		take = 100
	}
	if len(order) == 0 {
		order = "answers.created_at ASC"
	}

	total, err := CountAnswers(tx)
	if err != nil {
		return nil, 0, err
	}

	var items []*models.Answer
	if err := tx.Limit(take).Offset(offset).Order(order).Find(&items).Error; err != nil {
		return items, total, err
	}
	return items, total, nil
}

func GetAnswer(tx *gorm.DB, id uint) (models.Answer, error) {
	var item models.Answer
	err := tx.Where("answers.id = ?", id).First(&item).Error
	return item, err
}

func NewAnswer(item models.Answer) (models.Answer, error) {
	var post models.Post
	if err := database.C.Where("id = ?", item.PostID).First(&post).Error; err != nil {
		return item, err
	}
	if post.Type != models.PostTypeQuestion {
		return item, fmt.Errorf("only questions can be answered")
	}
	if post.Status != models.PostStatusActive {
		return item, fmt.Errorf("cannot answer an inactive question")
	}

	if len(item.Status) == 0 {
		item.Status = models.PostStatusActive
	}
	item.Content = SanitizeContent(item.Content)

	if err := database.C.Save(&item).Error; err != nil {
		return item, err
	}

	if err := database.C.Model(&models.Post{}).
		Where("id = ?", item.PostID).
		Update("answers_count", gorm.Expr("answers_count + 1")).Error; err != nil {
		return item, err
	}

	InvalidateStatsCache()
	return item, nil
}

func EditAnswer(item models.Answer, updatedBy string) (models.Answer, error) {
	item.Content = SanitizeContent(item.Content)
	item.UpdatedBy = updatedBy
	err := database.C.Save(&item).Error
	return item, err
}

func DeleteAnswer(item models.Answer) error {
	return database.C.Model(&models.Answer{}).
		Where("id = ?", item.ID).
		Update("status", models.PostStatusDeleted).Error
}

func PermanentlyDeleteAnswer(item models.Answer) error {
	if err := database.C.Where("answer_id = ?", item.ID).Delete(&models.Comment{}).Error; err != nil {
		return err
	}
	if err := database.C.Where("answer_id = ?", item.ID).Delete(&models.AnswerVote{}).Error; err != nil {
		return err
	}
	if err := database.C.Delete(&models.Answer{}, item.ID).Error; err != nil {
		return err
	}

	updates := map[string]any{"answers_count": gorm.Expr("answers_count - 1")}
	if item.Correct {
		updates["correct_answers"] = gorm.Expr("correct_answers - 1")
	}
	return database.C.Model(&models.Post{}).Where("id = ?", item.PostID).Updates(updates).Error
}

// MarkAnswerCorrect keeps at most one correct answer per post. Re-marking
// the already-correct answer is a no-op success; marking a different one
// clears the previous row first, leaving the post counter net-unchanged.
func MarkAnswerCorrect(postID uint, answerID uint) (bool, error) {
	var answer models.Answer
	if err := database.C.Where("id = ? AND post_id = ?", answerID, postID).First(&answer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if answer.Correct {
		return true, nil
	}

	err := database.C.Transaction(func(tx *gorm.DB) error {
		cleared := tx.Model(&models.Answer{}).
			Where("post_id = ? AND correct = ?", postID, true).
			Update("correct", false)
		if cleared.Error != nil {
			return cleared.Error
		}

		if err := tx.Model(&models.Answer{}).
			Where("id = ?", answerID).
			Update("correct", true).Error; err != nil {
			return err
		}

		if cleared.RowsAffected == 0 {
			return tx.Model(&models.Post{}).
				Where("id = ?", postID).
				Update("correct_answers", gorm.Expr("correct_answers + 1")).Error
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkAnswerIncorrect succeeds whenever the row exists, regardless of its
// prior state.
func MarkAnswerIncorrect(postID uint, answerID uint) (bool, error) {
	var answer models.Answer
	if err := database.C.Where("id = ? AND post_id = ?", answerID, postID).First(&answer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if !answer.Correct {
		return true, nil
	}

	if err := database.C.Model(&models.Answer{}).
		Where("id = ?", answerID).
		Update("correct", false).Error; err != nil {
		return false, err
	}
	if err := database.C.Model(&models.Post{}).
		Where("id = ?", postID).
		Update("correct_answers", gorm.Expr("correct_answers - 1")).Error; err != nil {
		return false, err
	}
	return true, nil
}

package services

import (
	"errors"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func FavoritePost(userRef string, postID uint) (bool, error) {
	if err := database.C.Where("id = ?", postID).First(&models.Post{}).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	err := database.C.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserFavorite{UserRef: userRef, PostID: postID}).Error
	return err == nil, err
}

func UnfavoritePost(userRef string, postID uint) (bool, error) {
	result := database.C.
		Where("user_ref = ? AND post_id = ?", userRef, postID).
		Delete(&models.UserFavorite{})
	return result.RowsAffected > 0, result.Error
}

func ListFavoritePostIDs(userRef string) ([]uint, error) {
	var ids []uint
	err := database.C.Model(&models.UserFavorite{}).
		Where("user_ref = ?", userRef).
		Order("created_at DESC").
		Pluck("post_id", &ids).Error
	return ids, err
}

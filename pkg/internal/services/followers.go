package services

import (
	"errors"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Double-follow races are absorbed by conflict-ignore inserts instead of
// being surfaced as errors.

func FollowTag(userRef string, name string) (bool, error) {
	var tag models.Tag
	if err := database.C.Where("tag = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	err := database.C.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserTag{UserRef: userRef, TagID: tag.ID}).Error
	return err == nil, err
}

func UnfollowTag(userRef string, name string) (bool, error) {
	result := database.C.
		Where("user_ref = ? AND tag_id IN (?)", userRef,
			database.C.Session(&gorm.Session{NewDB: true}).
				Table("tags").Select("id").Where("tag = ?", name)).
		Delete(&models.UserTag{})
	return result.RowsAffected > 0, result.Error
}

func ListFollowedTags(userRef string) ([]string, error) {
	var tags []string
	err := database.C.Model(&models.UserTag{}).
		Joins("INNER JOIN tags ON tags.id = user_tags.tag_id").
		Where("user_tags.user_ref = ?", userRef).
		Pluck("tags.tag", &tags).Error
	return tags, err
}

func FollowEntity(userRef string, entityRef string) (bool, error) {
	entity, err := GetEntityOrCreate(entityRef)
	if err != nil {
		return false, err
	}

	err = database.C.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserEntity{UserRef: userRef, EntityID: entity.ID}).Error
	return err == nil, err
}

func UnfollowEntity(userRef string, entityRef string) (bool, error) {
	result := database.C.
		Where("user_ref = ? AND entity_id IN (?)", userRef,
			database.C.Session(&gorm.Session{NewDB: true}).
				Table("entities").Select("id").Where("entity_ref = ?", entityRef)).
		Delete(&models.UserEntity{})
	return result.RowsAffected > 0, result.Error
}

func ListFollowedEntities(userRef string) ([]string, error) {
	var refs []string
	err := database.C.Model(&models.UserEntity{}).
		Joins("INNER JOIN entities ON entities.id = user_entities.entity_id").
		Where("user_entities.user_ref = ?", userRef).
		Pluck("entities.entity_ref", &refs).Error
	return refs, err
}

func FollowUser(userRef string, followedRef string) (bool, error) {
	if userRef == followedRef {
		return false, nil
	}

	err := database.C.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.UserFollow{UserRef: userRef, FollowedRef: followedRef}).Error
	return err == nil, err
}

func UnfollowUser(userRef string, followedRef string) (bool, error) {
	result := database.C.
		Where("user_ref = ? AND followed_ref = ?", userRef, followedRef).
		Delete(&models.UserFollow{})
	return result.RowsAffected > 0, result.Error
}

func ListFollowedUsers(userRef string) ([]string, error) {
	var refs []string
	err := database.C.Model(&models.UserFollow{}).
		Where("user_ref = ?", userRef).
		Pluck("followed_ref", &refs).Error
	return refs, err
}

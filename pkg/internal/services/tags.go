package services

import (
	"errors"
	"strings"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TagsBaseQuery selects tags plus their usage aggregates, correlated the
// same way the post aggregates are.
func TagsBaseQuery(tx *gorm.DB) *gorm.DB {
	selects := []string{
		"tags.*",
		"(SELECT COUNT(*) FROM post_tags WHERE post_tags.tag_id = tags.id) AS posts_count",
		"(SELECT COUNT(*) FROM user_tags WHERE user_tags.tag_id = tags.id) AS followers_count",
	}
	return tx.Model(&models.Tag{}).Select(strings.Join(selects, ", "))
}

func FilterTagsWithFuzzySearch(tx *gorm.DB, probe string) *gorm.DB {
	if len(probe) == 0 {
		return tx
	}

	like := "LIKE"
	if tx.Dialector.Name() == "postgres" {
		like = "ILIKE"
	}
	return tx.Where("tags.tag "+like+" ?", "%"+probe+"%")
}

func CountTags(tx *gorm.DB) (int64, error) {
	var count int64
	sub := tx.Session(&gorm.Session{}).Select("tags.id")
	if err := database.C.Table("(?) AS total_query", sub).Count(&count).Error; err != nil {
		return count, err
	}
	return count, nil
}

func ListTags(tx *gorm.DB, take int, offset int, order string) ([]*models.Tag, int64, error) {
	if take <= 0 || take > 100 {
		take = 100
	}
	if len(order) == 0 {
		order = "tags.tag ASC"
	}

	total, err := CountTags(tx)
	if err != nil {
		return nil, 0, err
	}

	var items []*models.Tag
	if err := tx.Limit(take).Offset(offset).Order(order).Find(&items).Error; err != nil {
		return items, total, err
	}
	return items, total, nil
}

func GetTag(name string) (models.Tag, error) {
	var tag models.Tag
	err := TagsBaseQuery(database.C).Where("tags.tag = ?", name).First(&tag).Error
	return tag, err
}

func GetTagOrCreate(name string) (models.Tag, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	var tag models.Tag
	if err := database.C.Where("tag = ?", name).First(&tag).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return tag, err
		}
		tag = models.Tag{Tag: name}
		if err := database.C.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag).Error; err != nil {
			return tag, err
		}
		if tag.ID == 0 {
			// Lost the insert race, someone else created it.
			err = database.C.Where("tag = ?", name).First(&tag).Error
			return tag, err
		}
	}
	return tag, nil
}

func UpdateTagDescription(name string, description string) (models.Tag, error) {
	tag, err := GetTagOrCreate(name)
	if err != nil {
		return tag, err
	}
	err = database.C.Model(&models.Tag{}).
		Where("id = ?", tag.ID).
		Update("description", description).Error
	tag.Description = description
	return tag, err
}

func DeleteTag(name string) error {
	var tag models.Tag
	if err := database.C.Where("tag = ?", name).First(&tag).Error; err != nil {
		return err
	}

	if err := database.C.Exec("DELETE FROM post_tags WHERE tag_id = ?", tag.ID).Error; err != nil {
		return err
	}
	if err := database.C.Where("tag_id = ?", tag.ID).Delete(&models.UserTag{}).Error; err != nil {
		return err
	}
	if err := database.C.Where("tag_id = ?", tag.ID).Delete(&models.TagExpert{}).Error; err != nil {
		return err
	}
	return database.C.Delete(&models.Tag{}, tag.ID).Error
}

func AddTagExpert(name string, userRef string) (bool, error) {
	var tag models.Tag
	if err := database.C.Where("tag = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	err := database.C.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.TagExpert{TagID: tag.ID, UserRef: userRef}).Error
	return err == nil, err
}

func RemoveTagExpert(name string, userRef string) (bool, error) {
	var tag models.Tag
	if err := database.C.Where("tag = ?", name).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	result := database.C.
		Where("tag_id = ? AND user_ref = ?", tag.ID, userRef).
		Delete(&models.TagExpert{})
	return result.RowsAffected > 0, result.Error
}

func ListTagExperts(name string) ([]string, error) {
	var experts []string
	err := database.C.Model(&models.TagExpert{}).
		Joins("INNER JOIN tags ON tags.id = tag_experts.tag_id").
		Where("tags.tag = ?", name).
		Pluck("tag_experts.user_ref", &experts).Error
	return experts, err
}

package services

import (
	"errors"
	"strings"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func EntitiesBaseQuery(tx *gorm.DB) *gorm.DB {
	selects := []string{
		"entities.*",
		"(SELECT COUNT(*) FROM post_entities WHERE post_entities.entity_id = entities.id) AS posts_count",
		"(SELECT COUNT(*) FROM user_entities WHERE user_entities.entity_id = entities.id) AS followers_count",
	}
	return tx.Model(&models.Entity{}).Select(strings.Join(selects, ", "))
}

func CountEntities(tx *gorm.DB) (int64, error) {
	var count int64
	sub := tx.Session(&gorm.Session{}).Select("entities.id")
	if err := database.C.Table("(?) AS total_query", sub).Count(&count).Error; err != nil {
		return count, err
	}
	return count, nil
}

func ListEntities(tx *gorm.DB, take int, offset int, order string) ([]*models.Entity, int64, error) {
	if take <= 0 || take > 100 {
		take = 100
	}
	if len(order) == 0 {
		order = "entities.entity_ref ASC"
	}

	total, err := CountEntities(tx)
	if err != nil {
		return nil, 0, err
	}

	var items []*models.Entity
	if err := tx.Limit(take).Offset(offset).Order(order).Find(&items).Error; err != nil {
		return items, total, err
	}
	return items, total, nil
}

func GetEntity(entityRef string) (models.Entity, error) {
	var entity models.Entity
	err := EntitiesBaseQuery(database.C).Where("entities.entity_ref = ?", entityRef).First(&entity).Error
	return entity, err
}

func GetEntityOrCreate(entityRef string) (models.Entity, error) {
	var entity models.Entity
	if err := database.C.Where("entity_ref = ?", entityRef).First(&entity).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return entity, err
		}
		entity = models.Entity{EntityRef: entityRef}
		if err := database.C.Clauses(clause.OnConflict{DoNothing: true}).Create(&entity).Error; err != nil {
			return entity, err
		}
		if entity.ID == 0 {
			err = database.C.Where("entity_ref = ?", entityRef).First(&entity).Error
			return entity, err
		}
	}
	return entity, nil
}

type EntityLink struct {
	PostID uint   `json:"post_id"`
	Title  string `json:"title"`
	URL    string `json:"url"`
	Author string `json:"author"`
}

type entityLinkRow struct {
	EntityRef string
	PostID    uint
	Title     string
	URL       string
	Author    string
}

// GetEntityLinks collects the active, url-bearing link posts grouped by
// the entity they are attached to.
func GetEntityLinks() (map[string][]EntityLink, error) {
	var rows []entityLinkRow

	err := database.C.Model(&models.Post{}).
		Select("entities.entity_ref AS entity_ref, posts.id AS post_id, posts.title AS title, posts.url AS url, posts.author AS author").
		Joins("INNER JOIN post_entities ON post_entities.post_id = posts.id").
		Joins("INNER JOIN entities ON entities.id = post_entities.entity_id").
		Where("posts.type = ?", models.PostTypeLink).
		Where("posts.status = ?", models.PostStatusActive).
		Where("posts.url IS NOT NULL AND posts.url <> ''").
		Order("entities.entity_ref ASC, posts.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	grouped := lo.GroupBy(rows, func(row entityLinkRow) string {
		return row.EntityRef
	})

	out := make(map[string][]EntityLink, len(grouped))
	for ref, items := range grouped {
		out[ref] = lo.Map(items, func(row entityLinkRow, _ int) EntityLink {
			return EntityLink{PostID: row.PostID, Title: row.Title, URL: row.URL, Author: row.Author}
		})
	}
	return out, nil
}

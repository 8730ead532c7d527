package services

import (
	"strings"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func CollectionsBaseQuery(tx *gorm.DB) *gorm.DB {
	selects := []string{
		"collections.*",
		"(SELECT COUNT(*) FROM collection_posts WHERE collection_posts.collection_id = collections.id) AS posts_count",
	}
	return tx.Model(&models.Collection{}).Select(strings.Join(selects, ", "))
}

func FilterCollectionsWithOwner(tx *gorm.DB, owner string) *gorm.DB {
	return tx.Where("collections.owner = ?", owner)
}

func CountCollections(tx *gorm.DB) (int64, error) {
	var count int64
	sub := tx.Session(&gorm.Session{}).Select("collections.id")
	if err := database.C.Table("(?) AS total_query", sub).Count(&count).Error; err != nil {
		return count, err
	}
	return count, nil
}

func ListCollections(tx *gorm.DB, take int, offset int, order string) ([]*models.Collection, int64, error) {
	if take <= 0 || take > 100 {
		take = 100
	}
	if len(order) == 0 {
		order = "collections.created_at DESC"
	}

	total, err := CountCollections(tx)
	if err != nil {
		return nil, 0, err
	}

	var items []*models.Collection
	if err := tx.Limit(take).Offset(offset).Order(order).Find(&items).Error; err != nil {
		return items, total, err
	}
	return items, total, nil
}

func GetCollection(tx *gorm.DB, id uint, userRef string) (models.Collection, error) {
	var item models.Collection
	if err := tx.Where("collections.id = ?", id).First(&item).Error; err != nil {
		return item, err
	}

	var memberships []models.CollectionPost
	if err := database.C.
		Where("collection_id = ?", id).
		Order("rank ASC, post_id ASC").
		Find(&memberships).Error; err != nil {
		return item, err
	}

	if len(memberships) > 0 {
		ids := lo.Map(memberships, func(row models.CollectionPost, _ int) uint {
			return row.PostID
		})
		posts, err := GetPostsByIDs(PostsBaseQuery(database.C, userRef, false), ids)
		if err != nil {
			return item, err
		}
		item.Posts = lo.Map(posts, func(post *models.Post, _ int) models.Post {
			return *post
		})
	}

	return item, nil
}

func NewCollection(item models.Collection) (models.Collection, error) {
	if err := database.C.Save(&item).Error; err != nil {
		return item, err
	}

	if err := SyncCollectionPosts(item); err != nil {
		log.Error().Err(err).Uint("collection", item.ID).Msg("An error occurred when syncing collection membership...")
	}
	return item, nil
}

func EditCollection(item models.Collection) (models.Collection, error) {
	if err := database.C.Save(&item).Error; err != nil {
		return item, err
	}

	if err := SyncCollectionPosts(item); err != nil {
		log.Error().Err(err).Uint("collection", item.ID).Msg("An error occurred when syncing collection membership...")
	}
	return item, nil
}

func DeleteCollection(item models.Collection) error {
	if err := database.C.Where("collection_id = ?", item.ID).Delete(&models.CollectionPost{}).Error; err != nil {
		return err
	}
	return database.C.Delete(&models.Collection{}, item.ID).Error
}

// AddPostToCollection always ends in the manual state, which protects the
// membership from later rule-driven removal.
func AddPostToCollection(collectionID uint, postID uint) (bool, error) {
	if err := database.C.Where("id = ?", collectionID).First(&models.Collection{}).Error; err != nil {
		if IsPostNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if err := database.C.Where("id = ?", postID).First(&models.Post{}).Error; err != nil {
		if IsPostNotFound(err) {
			return false, nil
		}
		return false, err
	}

	rank, err := nextCollectionRank(collectionID)
	if err != nil {
		return false, err
	}

	err = database.C.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection_id"}, {Name: "post_id"}},
		DoUpdates: clause.Assignments(map[string]any{"manual": true}),
	}).Create(&models.CollectionPost{
		CollectionID: collectionID,
		PostID:       postID,
		Rank:         rank,
		Manual:       true,
	}).Error
	return err == nil, err
}

// RemovePostFromCollection removes regardless of how the post got in.
func RemovePostFromCollection(collectionID uint, postID uint) (bool, error) {
	result := database.C.
		Where("collection_id = ? AND post_id = ?", collectionID, postID).
		Delete(&models.CollectionPost{})
	return result.RowsAffected > 0, result.Error
}

func RankCollectionPost(collectionID uint, postID uint, rank int) error {
	return database.C.Model(&models.CollectionPost{}).
		Where("collection_id = ? AND post_id = ?", collectionID, postID).
		Update("rank", rank).Error
}

func nextCollectionRank(collectionID uint) (int, error) {
	var max *int
	err := database.C.Model(&models.CollectionPost{}).
		Where("collection_id = ?", collectionID).
		Select("MAX(rank)").
		Scan(&max).Error
	if err != nil || max == nil {
		return 1, err
	}
	return *max + 1, nil
}

// collectionRuleCriteria turns the declarative membership rule into a
// criteria tree; nil when the collection has no rule at all.
func collectionRuleCriteria(item models.Collection) Criteria {
	var parts []Criteria
	if len(item.RuleTags) > 0 {
		parts = append(parts, Filter{Property: "tags", Values: []string(item.RuleTags)})
	}
	if len(item.RuleUsers) > 0 {
		parts = append(parts, Filter{Property: "posts.author", Values: []string(item.RuleUsers)})
	}
	if len(item.RuleEntities) > 0 {
		parts = append(parts, Filter{Property: "entityRefs", Values: []string(item.RuleEntities)})
	}
	if len(parts) == 0 {
		return nil
	}
	return AnyOf{AnyOf: parts}
}

// SyncCollectionPosts reconciles the rule-derived membership of one
// collection: matching posts are auto-added, auto rows that no longer
// match are removed, manual rows are left alone. A collection without a
// rule behaves purely manually.
func SyncCollectionPosts(item models.Collection) error {
	criteria := collectionRuleCriteria(item)
	if criteria == nil {
		return nil
	}

	var matching []uint
	if err := ApplyFilter(database.C.Model(&models.Post{}), criteria, FilterResourcePosts, false).
		Where("posts.status = ?", models.PostStatusActive).
		Pluck("posts.id", &matching).Error; err != nil {
		return err
	}

	var existing []models.CollectionPost
	if err := database.C.Where("collection_id = ?", item.ID).Find(&existing).Error; err != nil {
		return err
	}

	existingIDs := lo.Map(existing, func(row models.CollectionPost, _ int) uint {
		return row.PostID
	})
	autoIDs := lo.FilterMap(existing, func(row models.CollectionPost, _ int) (uint, bool) {
		return row.PostID, !row.Manual
	})

	toAdd := lo.Without(matching, existingIDs...)
	toRemove := lo.Without(autoIDs, matching...)

	if len(toRemove) > 0 {
		if err := database.C.
			Where("collection_id = ? AND post_id IN ? AND manual = ?", item.ID, toRemove, false).
			Delete(&models.CollectionPost{}).Error; err != nil {
			return err
		}
	}

	if len(toAdd) > 0 {
		rank, err := nextCollectionRank(item.ID)
		if err != nil {
			return err
		}
		rows := lo.Map(toAdd, func(postID uint, idx int) models.CollectionPost {
			return models.CollectionPost{
				CollectionID: item.ID,
				PostID:       postID,
				Rank:         rank + idx,
				Manual:       false,
			}
		})
		if err := database.C.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return err
		}
	}

	log.Debug().
		Uint("collection", item.ID).
		Int("added", len(toAdd)).
		Int("removed", len(toRemove)).
		Msg("Synced rule-derived collection membership.")
	return nil
}

// SyncPostCollections re-evaluates one post against every collection that
// declares a rule, after the post's tags/entities/author changed.
func SyncPostCollections(post models.Post) error {
	var collections []models.Collection
	if err := database.C.Find(&collections).Error; err != nil {
		return err
	}

	for _, item := range collections {
		criteria := collectionRuleCriteria(item)
		if criteria == nil {
			continue
		}

		var matched int64
		if err := ApplyFilter(database.C.Model(&models.Post{}), criteria, FilterResourcePosts, false).
			Where("posts.id = ?", post.ID).
			Where("posts.status = ?", models.PostStatusActive).
			Count(&matched).Error; err != nil {
			return err
		}

		if matched > 0 {
			rank, err := nextCollectionRank(item.ID)
			if err != nil {
				return err
			}
			if err := database.C.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.CollectionPost{
					CollectionID: item.ID,
					PostID:       post.ID,
					Rank:         rank,
					Manual:       false,
				}).Error; err != nil {
				return err
			}
		} else {
			if err := database.C.
				Where("collection_id = ? AND post_id = ? AND manual = ?", item.ID, post.ID, false).
				Delete(&models.CollectionPost{}).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

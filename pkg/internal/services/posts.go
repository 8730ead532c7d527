package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// Trend weights; the sum of weighted engagement counts decays with the
// age of the post.
const (
	trendVoteWeight     = 2
	trendAnswerWeight   = 3
	trendFavoriteWeight = 2
	trendViewWeight     = 0.5
	trendCommentWeight  = 1
)

// PostsBaseQuery selects posts plus the per-row aggregates as correlated
// scalar subqueries, so that independent aggregates (votes, views,
// answers, favorites) combine without a fan-out join. The favorite column
// depends on the caller, not on the post alone. Trend costs five extra
// subqueries per row and is only included when asked for.
func PostsBaseQuery(tx *gorm.DB, userRef string, includeTrend bool) *gorm.DB {
	selects := []string{
		"posts.*",
		"(SELECT COALESCE(SUM(post_votes.score), 0) FROM post_votes WHERE post_votes.post_id = posts.id) AS score",
		"(SELECT COUNT(*) FROM post_views WHERE post_views.post_id = posts.id) AS total_views",
		"(SELECT COUNT(*) FROM answers WHERE answers.post_id = posts.id AND answers.status = 'active') AS answers_count",
		"(SELECT COUNT(*) FROM answers WHERE answers.post_id = posts.id AND answers.status = 'active' AND answers.correct) AS correct_answers",
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.status = 'active') AS comments_count",
	}
	var args []any
	if len(userRef) > 0 {
		selects = append(selects,
			"((SELECT COUNT(*) FROM user_favorites WHERE user_favorites.post_id = posts.id AND user_favorites.user_ref = ?) > 0) AS favorite")
		args = append(args, userRef)
	}
	if includeTrend {
		selects = append(selects, trendSelect(tx.Dialector.Name()))
	}

	return tx.Model(&models.Post{}).Select(strings.Join(selects, ", "), args...)
}

func trendSelect(dialect string) string {
	ageDays := "(julianday('now') - julianday(posts.created_at))"
	decay := fmt.Sprintf("((%s / 2 + 1) * (%s / 2 + 1))", ageDays, ageDays)
	if dialect == "postgres" {
		ageDays = "(EXTRACT(EPOCH FROM (CURRENT_TIMESTAMP - posts.created_at)) / 86400.0)"
		decay = fmt.Sprintf("POWER(%s / 2 + 1, 1.5)", ageDays)
	}

	return fmt.Sprintf(`((
		(SELECT COALESCE(SUM(post_votes.score), 0) FROM post_votes WHERE post_votes.post_id = posts.id) * %d +
		(SELECT COUNT(*) FROM answers WHERE answers.post_id = posts.id AND answers.status = 'active') * %d +
		(SELECT COUNT(*) FROM user_favorites WHERE user_favorites.post_id = posts.id) * %d +
		(SELECT COUNT(*) FROM post_views WHERE post_views.post_id = posts.id) * %v +
		(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.status = 'active') * %d
	) * 1.0 / %s) AS trend`,
		trendVoteWeight, trendAnswerWeight, trendFavoriteWeight, trendViewWeight, trendCommentWeight, decay)
}

func FilterPostsWithStatus(tx *gorm.DB, status string) *gorm.DB {
	return tx.Where("posts.status = ?", status)
}

func FilterPostsWithType(tx *gorm.DB, postType string) *gorm.DB {
	return tx.Where("posts.type = ?", postType)
}

func FilterPostsWithAuthor(tx *gorm.DB, author string) *gorm.DB {
	return tx.Where("posts.author = ?", author)
}

// FilterPostsWithAllTags requires every listed tag, implemented as one
// junction self-join per tag. Bounded by the number of required tags, fine
// for the small tag lists this API accepts.
func FilterPostsWithAllTags(tx *gorm.DB, tags []string) *gorm.DB {
	for i, tag := range lo.Uniq(tags) {
		alias := fmt.Sprintf("qt%d", i)
		tx = tx.
			Joins(fmt.Sprintf("INNER JOIN post_tags %s ON %s.post_id = posts.id", alias, alias)).
			Joins(fmt.Sprintf("INNER JOIN tags t%d ON t%d.id = %s.tag_id AND t%d.tag = ?", i, i, alias, i), tag)
	}
	return tx
}

func FilterPostsWithAnyTag(tx *gorm.DB, tags []string) *gorm.DB {
	return ApplyFilter(tx, Filter{Property: "tags", Values: tags}, FilterResourcePosts, false)
}

func FilterPostsWithEntity(tx *gorm.DB, entityRef string) *gorm.DB {
	return ApplyFilter(tx, Filter{Property: "entityRefs", Values: []string{entityRef}}, FilterResourcePosts, false)
}

func FilterPostsWithFuzzySearch(tx *gorm.DB, probe string) *gorm.DB {
	if len(probe) == 0 {
		return tx
	}

	like := "LIKE"
	if tx.Dialector.Name() == "postgres" {
		like = "ILIKE"
	}
	probe = "%" + probe + "%"
	return tx.Where(
		fmt.Sprintf("(posts.title %s ? OR posts.content %s ?)", like, like),
		probe, probe,
	)
}

func FilterPostsCreatedAfter(tx *gorm.DB, date time.Time) *gorm.DB {
	return tx.Where("posts.created_at >= ?", date)
}

// CountPosts wraps the filtered-but-unpaginated query as a subquery so the
// total stays consistent with the page regardless of joins in the filter
// chain.
func CountPosts(tx *gorm.DB) (int64, error) {
	var count int64
	sub := tx.Session(&gorm.Session{}).Select("posts.id")
	if err := database.C.Table("(?) AS total_query", sub).Count(&count).Error; err != nil {
		return count, err
	}
	return count, nil
}

// ListPosts returns one page plus the total over the same predicate set.
func ListPosts(tx *gorm.DB, take int, offset int, order string) ([]*models.Post, int64, error) {
	if take <= 0 || take > 100 {
		take = 100
	}
	if offset < 0 {
		offset = 0
	}
	if len(order) == 0 {
		order = "posts.created_at DESC"
	}

	total, err := CountPosts(tx)
	if err != nil {
		return nil, 0, err
	}

	var items []*models.Post
	if err := tx.
		Preload("Tags").
		Preload("Entities").
		Limit(take).Offset(offset).
		Order(order).
		Find(&items).Error; err != nil {
		return items, total, err
	}

	return items, total, nil
}

func GetPost(tx *gorm.DB, id uint, userRef string) (models.Post, error) {
	var item models.Post
	if err := tx.
		Preload("Tags").
		Preload("Entities").
		Preload("Attachments").
		Where("posts.id = ?", id).
		First(&item).Error; err != nil {
		return item, err
	}

	if len(userRef) > 0 {
		AddPostView(item, userRef)
	}

	return item, nil
}

func NewPost(item models.Post) (models.Post, error) {
	if len(item.Status) == 0 {
		item.Status = models.PostStatusActive
	}
	if item.Type == models.PostTypeLink && (item.URL == nil || len(*item.URL) == 0) {
		return item, fmt.Errorf("link posts require an url")
	}
	item.Content = SanitizeContent(item.Content)

	item, err := EnsurePostTagsAndEntities(item)
	if err != nil {
		return item, err
	}

	log.Debug().Str("author", item.Author).Str("type", item.Type).Msg("Saving post record into database...")
	if err := database.C.Save(&item).Error; err != nil {
		return item, err
	}

	if err := BindAttachments(item.Attachments, map[string]any{"post_id": item.ID}); err != nil {
		return item, err
	}

	if item.Status == models.PostStatusActive {
		if err := SyncPostCollections(item); err != nil {
			log.Error().Err(err).Uint("post", item.ID).Msg("An error occurred when syncing post into collections...")
		}
	}

	InvalidateStatsCache()
	return item, nil
}

func EditPost(item models.Post, updatedBy string) (models.Post, error) {
	if item.Type == models.PostTypeLink && (item.URL == nil || len(*item.URL) == 0) {
		return item, fmt.Errorf("link posts require an url")
	}
	item.Content = SanitizeContent(item.Content)
	item.UpdatedBy = updatedBy

	item, err := EnsurePostTagsAndEntities(item)
	if err != nil {
		return item, err
	}

	if err := database.C.Save(&item).Error; err != nil {
		return item, err
	}
	if err := database.C.Model(&item).Association("Tags").Replace(item.Tags); err != nil {
		return item, err
	}
	if err := database.C.Model(&item).Association("Entities").Replace(item.Entities); err != nil {
		return item, err
	}

	if err := SyncPostCollections(item); err != nil {
		log.Error().Err(err).Uint("post", item.ID).Msg("An error occurred when syncing post into collections...")
	}

	return item, nil
}

// EnsurePostTagsAndEntities resolves tag names and entity refs to rows,
// creating missing ones on the fly.
func EnsurePostTagsAndEntities(item models.Post) (models.Post, error) {
	var err error
	for idx, tag := range item.Tags {
		item.Tags[idx], err = GetTagOrCreate(tag.Tag)
		if err != nil {
			return item, err
		}
	}
	for idx, entity := range item.Entities {
		item.Entities[idx], err = GetEntityOrCreate(entity.EntityRef)
		if err != nil {
			return item, err
		}
	}
	return item, nil
}

// DeletePost soft-deletes by flipping the status; the cleanup job purges
// old rows later.
func DeletePost(item models.Post) error {
	if err := database.C.Model(&models.Post{}).
		Where("id = ?", item.ID).
		Update("status", models.PostStatusDeleted).Error; err != nil {
		return err
	}
	return database.C.Where("post_id = ? AND manual = ?", item.ID, false).
		Delete(&models.CollectionPost{}).Error
}

// PermanentlyDeletePost removes the post and everything hanging off it.
func PermanentlyDeletePost(item models.Post) error {
	var answerIDs []uint
	if err := database.C.Model(&models.Answer{}).
		Where("post_id = ?", item.ID).
		Pluck("id", &answerIDs).Error; err != nil {
		return err
	}

	if len(answerIDs) > 0 {
		if err := database.C.Where("answer_id IN ?", answerIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := database.C.Where("answer_id IN ?", answerIDs).Delete(&models.AnswerVote{}).Error; err != nil {
			return err
		}
		if err := database.C.Where("post_id = ?", item.ID).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
	}

	for _, stale := range []any{
		&models.Comment{}, &models.PostVote{}, &models.PostView{},
		&models.UserFavorite{}, &models.CollectionPost{}, &models.Attachment{},
	} {
		if err := database.C.Where("post_id = ?", item.ID).Delete(stale).Error; err != nil {
			return err
		}
	}
	if err := database.C.Model(&item).Association("Tags").Clear(); err != nil {
		return err
	}
	if err := database.C.Model(&item).Association("Entities").Clear(); err != nil {
		return err
	}

	return database.C.Delete(&models.Post{}, item.ID).Error
}

// GetPostsByIDs keeps the requested order while batch loading.
func GetPostsByIDs(tx *gorm.DB, ids []uint) ([]*models.Post, error) {
	var items []*models.Post
	if err := tx.
		Preload("Tags").
		Preload("Entities").
		Where("posts.id IN ?", ids).
		Find(&items).Error; err != nil {
		return items, err
	}

	itemMap := lo.SliceToMap(items, func(item *models.Post) (uint, *models.Post) {
		return item.ID, item
	})
	ordered := make([]*models.Post, 0, len(items))
	for _, id := range ids {
		if item, ok := itemMap[id]; ok {
			ordered = append(ordered, item)
		}
	}
	return ordered, nil
}

func IsPostNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

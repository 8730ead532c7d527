package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/http/exts"
	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/qetahub/qeta/pkg/internal/services"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

var postOrderColumns = map[string]string{
	"created":  "posts.created_at",
	"updated":  "posts.updated_at",
	"score":    "score",
	"views":    "total_views",
	"answers":  "answers_count",
	"comments": "comments_count",
	"trend":    "trend",
	"title":    "posts.title",
}

func postOrderBy(c *fiber.Ctx) string {
	column, ok := postOrderColumns[c.Query("orderBy", "created")]
	if !ok {
		column = "posts.created_at"
	}
	direction := "DESC"
	if strings.EqualFold(c.Query("order", "desc"), "asc") {
		direction = "ASC"
	}
	return column + " " + direction
}

// universalPostFilter maps the shared listing parameters onto the filter
// chain, including the permission layer's criteria tree when one is
// forwarded.
func universalPostFilter(c *fiber.Ctx, tx *gorm.DB) (*gorm.DB, error) {
	if c.QueryBool("includeDrafts", false) {
		user := currentUser(c)
		if len(user) == 0 {
			return tx, fiber.NewError(fiber.StatusUnauthorized, "drafts require a user context")
		}
		tx = tx.Where("posts.status <> ? AND (posts.status <> ? OR posts.author = ?)",
			models.PostStatusDeleted, models.PostStatusDraft, user)
	} else {
		tx = services.FilterPostsWithStatus(tx, models.PostStatusActive)
	}

	if postType := c.Query("type"); len(postType) > 0 {
		tx = services.FilterPostsWithType(tx, postType)
	}
	if author := c.Query("author"); len(author) > 0 {
		tx = services.FilterPostsWithAuthor(tx, author)
	}
	if tags := c.Query("tags"); len(tags) > 0 {
		tx = services.FilterPostsWithAllTags(tx, strings.Split(tags, ","))
	}
	if tags := c.Query("anyTags"); len(tags) > 0 {
		tx = services.FilterPostsWithAnyTag(tx, strings.Split(tags, ","))
	}
	if entityRef := c.Query("entity"); len(entityRef) > 0 {
		tx = services.FilterPostsWithEntity(tx, entityRef)
	}
	if raw := c.Query("createdAfter"); len(raw) > 0 {
		date, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return tx, fiber.NewError(fiber.StatusBadRequest, "createdAfter must be RFC 3339")
		}
		tx = services.FilterPostsCreatedAfter(tx, date)
	}

	if raw := c.Query("filter"); len(raw) > 0 {
		criteria, err := services.DecodeCriteria([]byte(raw))
		if err != nil {
			return tx, fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		tx = services.ApplyFilter(tx, criteria, services.FilterResourcePosts, false)
	}

	return tx, nil
}

func listPostsWithType(c *fiber.Ctx, postType string) error {
	take := c.QueryInt("take", 20)
	offset := c.QueryInt("offset", 0)
	includeTrend := c.QueryBool("includeTrend", false) || c.Query("orderBy") == "trend"

	tx := services.PostsBaseQuery(database.C, currentUser(c), includeTrend)
	if len(postType) > 0 {
		tx = services.FilterPostsWithType(tx, postType)
	}

	var err error
	if tx, err = universalPostFilter(c, tx); err != nil {
		return err
	}

	items, count, err := services.ListPosts(tx, take, offset, postOrderBy(c))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  items,
	})
}

func listPosts(c *fiber.Ctx) error {
	return listPostsWithType(c, "")
}

func listQuestions(c *fiber.Ctx) error {
	return listPostsWithType(c, models.PostTypeQuestion)
}

func listArticles(c *fiber.Ctx) error {
	return listPostsWithType(c, models.PostTypeArticle)
}

func searchPosts(c *fiber.Ctx) error {
	probe := c.Query("probe")
	if len(probe) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "probe is required")
	}

	tx := services.PostsBaseQuery(database.C, currentUser(c), false)
	tx = services.FilterPostsWithFuzzySearch(tx, probe)

	var err error
	if tx, err = universalPostFilter(c, tx); err != nil {
		return err
	}

	items, count, err := services.ListPosts(tx, c.QueryInt("take", 20), c.QueryInt("offset", 0), postOrderBy(c))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  items,
	})
}

func getPost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
	}

	tx := services.PostsBaseQuery(database.C, currentUser(c), false)
	item, err := services.GetPost(tx, uint(id), currentUser(c))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if item.Status == models.PostStatusDraft && item.Author != currentUser(c) {
		return fiber.NewError(fiber.StatusNotFound, "record not found")
	}

	return c.JSON(item)
}

type postRequest struct {
	Title       string   `json:"title" validate:"required,max=255"`
	Content     string   `json:"content"`
	Type        string   `json:"type" validate:"required,oneof=question article link"`
	URL         *string  `json:"url,omitempty" validate:"omitempty,url"`
	Status      string   `json:"status" validate:"omitempty,oneof=active draft"`
	Anonymous   bool     `json:"anonymous"`
	Tags        []string `json:"tags" validate:"max=10"`
	Entities    []string `json:"entities" validate:"max=10"`
	Attachments []string `json:"attachments"`
}

func (r postRequest) model(author string) models.Post {
	return models.Post{
		Author:    author,
		Title:     r.Title,
		Content:   r.Content,
		Type:      r.Type,
		URL:       r.URL,
		Status:    r.Status,
		Anonymous: r.Anonymous,
		Tags: lo.Map(r.Tags, func(tag string, _ int) models.Tag {
			return models.Tag{Tag: tag}
		}),
		Entities: lo.Map(r.Entities, func(ref string, _ int) models.Entity {
			return models.Entity{EntityRef: ref}
		}),
		Attachments: lo.Map(r.Attachments, func(id string, _ int) models.Attachment {
			return models.Attachment{UUID: id}
		}),
	}
}

func createPost(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var data postRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.NewPost(data.model(user))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(item)
}

func editPost(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
	}

	var data postRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	var item models.Post
	if err := database.C.Where("id = ?", id).First(&item).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	item.Title = data.Title
	item.Content = data.Content
	item.Type = data.Type
	item.URL = data.URL
	item.Anonymous = data.Anonymous
	if len(data.Status) > 0 {
		item.Status = data.Status
	}
	item.Tags = lo.Map(data.Tags, func(tag string, _ int) models.Tag {
		return models.Tag{Tag: tag}
	})
	item.Entities = lo.Map(data.Entities, func(ref string, _ int) models.Entity {
		return models.Entity{EntityRef: ref}
	})

	item, err = services.EditPost(item, user)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(item)
}

func deletePost(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	id, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
	}

	var item models.Post
	if err := database.C.Where("id = ?", id).First(&item).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	if c.QueryBool("permanent", false) {
		err = services.PermanentlyDeletePost(item)
	} else {
		err = services.DeletePost(item)
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

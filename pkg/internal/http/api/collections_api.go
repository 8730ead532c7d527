package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/http/exts"
	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/qetahub/qeta/pkg/internal/services"
)

func listCollections(c *fiber.Ctx) error {
	tx := services.CollectionsBaseQuery(database.C)
	if owner := c.Query("owner"); len(owner) > 0 {
		tx = services.FilterCollectionsWithOwner(tx, owner)
	}

	items, count, err := services.ListCollections(tx, c.QueryInt("take", 20), c.QueryInt("offset", 0), "collections.created_at DESC")
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  items,
	})
}

type collectionRequest struct {
	Title        string   `json:"title" validate:"required,max=1024"`
	Description  string   `json:"description" validate:"max=4096"`
	HeaderImage  *string  `json:"header_image"`
	RuleTags     []string `json:"rule_tags"`
	RuleUsers    []string `json:"rule_users"`
	RuleEntities []string `json:"rule_entities"`
}

func (r collectionRequest) model(owner string) models.Collection {
	return models.Collection{
		Title:        r.Title,
		Description:  services.SanitizeContent(r.Description),
		Owner:        owner,
		HeaderImage:  r.HeaderImage,
		RuleTags:     r.RuleTags,
		RuleUsers:    r.RuleUsers,
		RuleEntities: r.RuleEntities,
	}
}

func createCollection(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var data collectionRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.NewCollection(data.model(user))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(item)
}

func getCollection(c *fiber.Ctx) error {
	id, err := c.ParamsInt("collectionId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid collection id")
	}

	item, err := services.GetCollection(services.CollectionsBaseQuery(database.C), uint(id), currentUser(c))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "collection not found")
	}
	return c.JSON(item)
}

func editCollection(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := c.ParamsInt("collectionId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid collection id")
	}

	var data collectionRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	var item models.Collection
	if err := database.C.Where("id = ?", id).First(&item).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "collection not found")
	}
	if item.Owner != user {
		return fiber.NewError(fiber.StatusForbidden, "only the owner can edit a collection")
	}

	item.Title = data.Title
	item.Description = services.SanitizeContent(data.Description)
	item.HeaderImage = data.HeaderImage
	item.RuleTags = data.RuleTags
	item.RuleUsers = data.RuleUsers
	item.RuleEntities = data.RuleEntities

	item, err = services.EditCollection(item)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(item)
}

func deleteCollection(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	id, err := c.ParamsInt("collectionId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid collection id")
	}

	var item models.Collection
	if err := database.C.Where("id = ?", id).First(&item).Error; err != nil {
		return fiber.NewError(fiber.StatusNotFound, "collection not found")
	}
	if item.Owner != user {
		return fiber.NewError(fiber.StatusForbidden, "only the owner can delete a collection")
	}

	if err := services.DeleteCollection(item); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func addPostToCollection(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	collectionID, err := c.ParamsInt("collectionId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid collection id")
	}
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
	}

	ok, err := services.AddPostToCollection(uint(collectionID), uint(postID))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "collection or post not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type rankRequest struct {
	Rank *int `json:"rank" validate:"required"`
}

func rankCollectionPost(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	collectionID, err := c.ParamsInt("collectionId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid collection id")
	}
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
	}

	var data rankRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	if err := services.RankCollectionPost(uint(collectionID), uint(postID), *data.Rank); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func removePostFromCollection(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	collectionID, err := c.ParamsInt("collectionId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid collection id")
	}
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
	}

	ok, err := services.RemovePostFromCollection(uint(collectionID), uint(postID))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "membership not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

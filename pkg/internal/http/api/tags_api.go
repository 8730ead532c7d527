package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/http/exts"
	"github.com/qetahub/qeta/pkg/internal/services"
)

func listTags(c *fiber.Ctx) error {
	tx := services.TagsBaseQuery(database.C)
	tx = services.FilterTagsWithFuzzySearch(tx, c.Query("probe"))

	order := "tags.tag ASC"
	if c.Query("orderBy") == "posts" {
		order = "posts_count DESC"
	}

	items, count, err := services.ListTags(tx, c.QueryInt("take", 50), c.QueryInt("offset", 0), order)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  items,
	})
}

func getTag(c *fiber.Ctx) error {
	item, err := services.GetTag(c.Params("tag"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return c.JSON(item)
}

type tagRequest struct {
	Description string `json:"description" validate:"max=1024"`
}

func updateTag(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}

	var data tagRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.UpdateTagDescription(c.Params("tag"), data.Description)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(item)
}

func deleteTag(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	if err := services.DeleteTag(c.Params("tag")); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func followTag(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	ok, err := services.FollowTag(user, c.Params("tag"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "tag not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func unfollowTag(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	ok, err := services.UnfollowTag(user, c.Params("tag"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "follow not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func listTagExperts(c *fiber.Ctx) error {
	experts, err := services.ListTagExperts(c.Params("tag"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(experts)
}

type tagExpertRequest struct {
	UserRef string `json:"user_ref" validate:"required"`
}

func addTagExpert(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}

	var data tagExpertRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	ok, err := services.AddTagExpert(c.Params("tag"), data.UserRef)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "tag not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func removeTagExpert(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}

	ok, err := services.RemoveTagExpert(c.Params("tag"), c.Params("userRef"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "expert not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func listFollowedTags(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	tags, err := services.ListFollowedTags(user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"count": len(tags),
		"data":  tags,
	})
}

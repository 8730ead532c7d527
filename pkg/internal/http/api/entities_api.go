package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/services"
)

func listEntities(c *fiber.Ctx) error {
	tx := services.EntitiesBaseQuery(database.C)

	order := "entities.entity_ref ASC"
	if c.Query("orderBy") == "posts" {
		order = "posts_count DESC"
	}

	items, count, err := services.ListEntities(tx, c.QueryInt("take", 50), c.QueryInt("offset", 0), order)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  items,
	})
}

func getEntity(c *fiber.Ctx) error {
	item, err := services.GetEntity(c.Query("ref"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return c.JSON(item)
}

func getEntityLinks(c *fiber.Ctx) error {
	links, err := services.GetEntityLinks()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(links)
}

func followEntity(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	ok, err := services.FollowEntity(user, c.Query("ref"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "entity not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func unfollowEntity(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	ok, err := services.UnfollowEntity(user, c.Query("ref"))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "follow not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func listFollowedEntities(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	refs, err := services.ListFollowedEntities(user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"count": len(refs),
		"data":  refs,
	})
}

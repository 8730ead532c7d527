package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qetahub/qeta/pkg/internal/services"
)

func listUsers(c *fiber.Ctx) error {
	items, err := services.ListUsers()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"count": len(items),
		"data":  items,
	})
}

// User refs contain colons and slashes, so the followed user rides in a
// query parameter instead of the path.
func followUser(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	followed := c.Query("ref")
	if len(followed) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "ref is required")
	}

	ok, err := services.FollowUser(user, followed)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "cannot follow yourself")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func unfollowUser(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	followed := c.Query("ref")
	if len(followed) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "ref is required")
	}

	ok, err := services.UnfollowUser(user, followed)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "follow not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func listFollowedUsers(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	refs, err := services.ListFollowedUsers(user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"count": len(refs),
		"data":  refs,
	})
}

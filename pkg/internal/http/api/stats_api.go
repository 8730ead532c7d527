package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qetahub/qeta/pkg/internal/services"
)

func getGlobalStats(c *fiber.Ctx) error {
	stats, err := services.GetGlobalStats()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(stats)
}

func getUserStats(c *fiber.Ctx) error {
	userRef := c.Query("ref")
	if len(userRef) == 0 {
		userRef = currentUser(c)
	}
	if len(userRef) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "ref is required")
	}

	stats, err := services.GetUserStats(userRef)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(stats)
}

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qetahub/qeta/pkg/internal/http/exts"
	"github.com/qetahub/qeta/pkg/internal/services"
)

type attachmentRequest struct {
	MimeType string `json:"mime_type" validate:"required"`
}

// createAttachment registers an upload slot and hands the UUID back; the
// attachment gets bound to its owner when the post or answer is saved.
func createAttachment(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var data attachmentRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.NewAttachment(user, data.MimeType)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(item)
}

func getAttachment(c *fiber.Ctx) error {
	item, err := services.GetAttachment(c.Params("attachmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "attachment not found")
	}
	return c.JSON(item)
}

func deleteAttachment(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	item, err := services.GetAttachment(c.Params("attachmentId"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "attachment not found")
	}
	if item.Creator != user {
		return fiber.NewError(fiber.StatusForbidden, "only the creator can delete an attachment")
	}

	if err := services.DeleteAttachment(item.UUID); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/http/exts"
	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/qetahub/qeta/pkg/internal/services"
)

func listPostComments(c *fiber.Ctx) error {
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
	}

	tx := services.FilterCommentsWithStatus(database.C, models.PostStatusActive)
	items, err := services.ListPostComments(tx, uint(postID))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(items)
}

func listAnswerComments(c *fiber.Ctx) error {
	answerID, err := c.ParamsInt("answerId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid answer id")
	}

	tx := services.FilterCommentsWithStatus(database.C, models.PostStatusActive)
	items, err := services.ListAnswerComments(tx, uint(answerID))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(items)
}

type commentRequest struct {
	Content string `json:"content" validate:"required"`
}

func commentPost(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
	}

	var data commentRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.CommentPost(uint(postID), models.Comment{
		Author:  user,
		Content: data.Content,
	})
	if err != nil {
		if services.IsCommentNotFound(err) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(item)
}

func commentAnswer(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	answerID, err := c.ParamsInt("answerId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid answer id")
	}

	var data commentRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.CommentAnswer(uint(answerID), models.Comment{
		Author:  user,
		Content: data.Content,
	})
	if err != nil {
		if services.IsCommentNotFound(err) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(item)
}

func deleteComment(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	commentID, err := c.ParamsInt("commentId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid comment id")
	}

	item, err := services.GetComment(uint(commentID))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	if c.QueryBool("permanent", false) {
		err = services.PermanentlyDeleteComment(item)
	} else {
		err = services.DeleteComment(item)
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

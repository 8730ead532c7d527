package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/http/exts"
	"github.com/qetahub/qeta/pkg/internal/services"
)

func votePost(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
	}

	var data voteRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	ok, err := services.VotePost(user, uint(postID), data.Score)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "post not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func deletePostVote(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
	}

	ok, err := services.DeletePostVote(user, uint(postID))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "vote not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func deleteAnswerVote(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	answerID, err := c.ParamsInt("answerId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid answer id")
	}

	ok, err := services.DeleteAnswerVote(user, uint(answerID))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "vote not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func favoritePost(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
	}

	ok, err := services.FavoritePost(user, uint(postID))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "post not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func unfavoritePost(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
	}

	ok, err := services.UnfavoritePost(user, uint(postID))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "favorite not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func listFavoritePosts(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	ids, err := services.ListFavoritePostIDs(user)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	items, err := services.GetPostsByIDs(services.PostsBaseQuery(database.C, user, false), ids)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{
		"count": len(items),
		"data":  items,
	})
}

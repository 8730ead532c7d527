package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qetahub/qeta/pkg/internal/database"
	"github.com/qetahub/qeta/pkg/internal/http/exts"
	"github.com/qetahub/qeta/pkg/internal/models"
	"github.com/qetahub/qeta/pkg/internal/services"
)

func listAnswers(c *fiber.Ctx) error {
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
	}

	tx := services.AnswersBaseQuery(database.C)
	tx = services.FilterAnswersWithPost(tx, uint(postID))
	tx = services.FilterAnswersWithStatus(tx, models.PostStatusActive)

	order := "answers.created_at ASC"
	if c.Query("orderBy") == "score" {
		order = "score DESC"
	}

	items, count, err := services.ListAnswers(tx, c.QueryInt("take", 20), c.QueryInt("offset", 0), order)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  items,
	})
}

type answerRequest struct {
	Content   string `json:"content" validate:"required"`
	Anonymous bool   `json:"anonymous"`
}

func createAnswer(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	postID, err := c.ParamsInt("postId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid post id")
	}

	var data answerRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.NewAnswer(models.Answer{
		PostID:    uint(postID),
		Author:    user,
		Content:   data.Content,
		Anonymous: data.Anonymous,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(item)
}

func editAnswer(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	answerID, err := c.ParamsInt("answerId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid answer id")
	}

	var data answerRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	item, err := services.GetAnswer(database.C, uint(answerID))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	item.Content = data.Content
	item, err = services.EditAnswer(item, user)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(item)
}

func deleteAnswer(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	answerID, err := c.ParamsInt("answerId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid answer id")
	}

	item, err := services.GetAnswer(database.C, uint(answerID))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	if c.QueryBool("permanent", false) {
		err = services.PermanentlyDeleteAnswer(item)
	} else {
		err = services.DeleteAnswer(item)
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func markAnswerCorrect(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	postID, _ := c.ParamsInt("postId")
	answerID, _ := c.ParamsInt("answerId")

	ok, err := services.MarkAnswerCorrect(uint(postID), uint(answerID))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "answer not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func markAnswerIncorrect(c *fiber.Ctx) error {
	if _, err := requireUser(c); err != nil {
		return err
	}
	postID, _ := c.ParamsInt("postId")
	answerID, _ := c.ParamsInt("answerId")

	ok, err := services.MarkAnswerIncorrect(uint(postID), uint(answerID))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "answer not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type voteRequest struct {
	Score int `json:"score" validate:"required,oneof=1 -1"`
}

func voteAnswer(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	answerID, err := c.ParamsInt("answerId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid answer id")
	}

	var data voteRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	ok, err := services.VoteAnswer(user, uint(answerID), data.Score)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "answer not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

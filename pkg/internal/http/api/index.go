package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
)

// The identity is established upstream by the portal's auth proxy; this
// service only reads the forwarded user ref header.
func userContextMiddleware(c *fiber.Ctx) error {
	header := viper.GetString("security.user_header")
	if len(header) == 0 {
		header = "X-Qeta-User"
	}
	if user := c.Get(header); len(user) > 0 {
		c.Locals("user", user)
	}
	return c.Next()
}

func currentUser(c *fiber.Ctx) string {
	if user, ok := c.Locals("user").(string); ok {
		return user
	}
	return ""
}

func requireUser(c *fiber.Ctx) (string, error) {
	user := currentUser(c)
	if len(user) == 0 {
		return "", fiber.NewError(fiber.StatusUnauthorized, "user context is required")
	}
	return user, nil
}

func MapAPIs(app *fiber.App, baseURL string) {
	wrap := app.Group(baseURL, userContextMiddleware)

	posts := wrap.Group("/posts")
	{
		posts.Get("/", listPosts)
		posts.Get("/search", searchPosts)
		posts.Get("/favorites", listFavoritePosts)
		posts.Post("/", createPost)
		posts.Get("/:postId", getPost)
		posts.Put("/:postId", editPost)
		posts.Delete("/:postId", deletePost)

		posts.Post("/:postId/vote", votePost)
		posts.Delete("/:postId/vote", deletePostVote)
		posts.Post("/:postId/favorite", favoritePost)
		posts.Delete("/:postId/favorite", unfavoritePost)

		posts.Get("/:postId/answers", listAnswers)
		posts.Post("/:postId/answers", createAnswer)
		posts.Put("/:postId/answers/:answerId", editAnswer)
		posts.Delete("/:postId/answers/:answerId", deleteAnswer)
		posts.Post("/:postId/answers/:answerId/correct", markAnswerCorrect)
		posts.Post("/:postId/answers/:answerId/incorrect", markAnswerIncorrect)
		posts.Post("/:postId/answers/:answerId/vote", voteAnswer)
		posts.Delete("/:postId/answers/:answerId/vote", deleteAnswerVote)

		posts.Get("/:postId/comments", listPostComments)
		posts.Post("/:postId/comments", commentPost)
		posts.Get("/:postId/answers/:answerId/comments", listAnswerComments)
		posts.Post("/:postId/answers/:answerId/comments", commentAnswer)
	}
	wrap.Delete("/comments/:commentId", deleteComment)

	wrap.Get("/questions", listQuestions)
	wrap.Get("/articles", listArticles)

	tags := wrap.Group("/tags")
	{
		tags.Get("/", listTags)
		tags.Get("/following", listFollowedTags)
		tags.Get("/:tag", getTag)
		tags.Put("/:tag", updateTag)
		tags.Delete("/:tag", deleteTag)
		tags.Post("/:tag/follow", followTag)
		tags.Delete("/:tag/follow", unfollowTag)
		tags.Get("/:tag/experts", listTagExperts)
		tags.Post("/:tag/experts", addTagExpert)
		tags.Delete("/:tag/experts/:userRef", removeTagExpert)
	}

	// Entity refs contain colons and slashes, so they ride in a query
	// parameter instead of the path.
	entities := wrap.Group("/entities")
	{
		entities.Get("/", listEntities)
		entities.Get("/links", getEntityLinks)
		entities.Get("/following", listFollowedEntities)
		entities.Get("/ref", getEntity)
		entities.Post("/follow", followEntity)
		entities.Delete("/follow", unfollowEntity)
	}

	collections := wrap.Group("/collections")
	{
		collections.Get("/", listCollections)
		collections.Post("/", createCollection)
		collections.Get("/:collectionId", getCollection)
		collections.Put("/:collectionId", editCollection)
		collections.Delete("/:collectionId", deleteCollection)
		collections.Post("/:collectionId/posts/:postId", addPostToCollection)
		collections.Put("/:collectionId/posts/:postId/rank", rankCollectionPost)
		collections.Delete("/:collectionId/posts/:postId", removePostFromCollection)
	}

	users := wrap.Group("/users")
	{
		users.Get("/", listUsers)
		users.Get("/following", listFollowedUsers)
		users.Post("/follow", followUser)
		users.Delete("/follow", unfollowUser)
	}

	wrap.Get("/stats", getGlobalStats)
	wrap.Get("/stats/user", getUserStats)

	attachments := wrap.Group("/attachments")
	{
		attachments.Post("/", createAttachment)
		attachments.Get("/:attachmentId", getAttachment)
		attachments.Delete("/:attachmentId", deleteAttachment)
	}
}

// handlers/blog_routes.go
package handlers

import (
	"web3-dashboard/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBlogRoutes(app *fiber.App, blogService *services.BlogService) {
	posts := app.Group("/api/posts")
	posts.Get("/", blogService.GetPosts)
	posts.Post("/", blogService.CreatePost)
	posts.Get("/:id", blogService.GetPost)
	posts.Delete("/:id", blogService.DeletePost)
	posts.Get("/:id/comments", blogService.GetComments)
	posts.Post("/:id/comments", blogService.CreateComment)

	comments := app.Group("/api/comments")
	comments.Get("/:id", blogService.GetComment)
	comments.Patch("/:id", blogService.UpdateComment)
	comments.Delete("/:id", blogService.DeleteComment)
}

// services/blog_service.go
package services

import (
	"web3-dashboard/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type BlogService struct {
	Store  *BlogStore
	Logger *zap.Logger
}

func NewBlogService(store *BlogStore, logger *zap.Logger) *BlogService {
	return &BlogService{Store: store, Logger: logger}
}

type authoredInput struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// GetPosts lists all posts newest first.
func (s *BlogService) GetPosts(c *fiber.Ctx) error {
	posts, err := s.Store.ListPosts(c.UserContext())
	if err != nil {
		s.Logger.Error("❌ [BLOG] Error fetching posts", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch posts"})
	}
	return c.JSON(fiber.Map{"posts": posts})
}

func (s *BlogService) CreatePost(c *fiber.Ctx) error {
	var input authoredInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body"})
	}

	post, err := s.Store.CreatePost(c.UserContext(), models.Post{Author: input.Author, Content: input.Content})
	if err != nil {
		return respondError(c, err)
	}
	s.Logger.Info("📝 [BLOG] Post created", zap.Uint("id", post.ID), zap.String("author", post.Author))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": post})
}

func (s *BlogService) GetPost(c *fiber.Ctx) error {
	id, err := idParam(c, "id", "Invalid post ID")
	if err != nil {
		return respondError(c, err)
	}
	post, err := s.Store.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"post": post})
}

func (s *BlogService) DeletePost(c *fiber.Ctx) error {
	id, err := idParam(c, "id", "Invalid post ID")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.Store.DeletePost(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	s.Logger.Info("🗑️ [BLOG] Post deleted", zap.Uint("id", id))
	return c.JSON(fiber.Map{"success": true})
}

// GetComments lists the comments of a post oldest first.
func (s *BlogService) GetComments(c *fiber.Ctx) error {
	id, err := idParam(c, "id", "Invalid post ID")
	if err != nil {
		return respondError(c, err)
	}
	if _, err := s.Store.GetPost(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	comments, err := s.Store.ListComments(c.UserContext(), id)
	if err != nil {
		s.Logger.Error("❌ [BLOG] Error fetching comments", zap.Uint("post_id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch comments"})
	}
	return c.JSON(fiber.Map{"comments": comments})
}

func (s *BlogService) CreateComment(c *fiber.Ctx) error {
	id, err := idParam(c, "id", "Invalid post ID")
	if err != nil {
		return respondError(c, err)
	}
	var input authoredInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body"})
	}

	comment, err := s.Store.CreateComment(c.UserContext(), models.Comment{
		PostID:  id,
		Author:  input.Author,
		Content: input.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"comment": comment})
}

func (s *BlogService) GetComment(c *fiber.Ctx) error {
	id, err := idParam(c, "id", "Invalid comment ID")
	if err != nil {
		return respondError(c, err)
	}
	comment, err := s.Store.GetComment(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"comment": comment})
}

// UpdateComment applies {"action": "read"|"unread"|"like"|"unlike"}.
func (s *BlogService) UpdateComment(c *fiber.Ctx) error {
	id, err := idParam(c, "id", "Invalid comment ID")
	if err != nil {
		return respondError(c, err)
	}
	if _, err := s.Store.GetComment(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	var input struct {
		Action models.CommentAction `json:"action"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid JSON body"})
	}

	comment, err := s.Store.ApplyCommentAction(c.UserContext(), id, input.Action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"comment": comment})
}

func (s *BlogService) DeleteComment(c *fiber.Ctx) error {
	id, err := idParam(c, "id", "Invalid comment ID")
	if err != nil {
		return respondError(c, err)
	}
	if err := s.Store.DeleteComment(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

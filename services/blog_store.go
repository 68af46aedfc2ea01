// services/blog_store.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"web3-dashboard/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// BlogStore holds the post/comment demo data.
type BlogStore struct {
	DB *gorm.DB
}

func NewBlogStore(db *gorm.DB) *BlogStore {
	return &BlogStore{DB: db}
}

// ListPosts returns posts newest first.
func (s *BlogStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := s.DB.WithContext(ctx).Order("created_at DESC, id DESC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (s *BlogStore) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.DB.WithContext(ctx).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Message: "Post not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load post: %w", err)
	}
	return &post, nil
}

// CreatePost stamps CreatedAt with KST now unless the caller set it.
func (s *BlogStore) CreatePost(ctx context.Context, post models.Post) (*models.Post, error) {
	post.Author = strings.TrimSpace(post.Author)
	if post.Author == "" || strings.TrimSpace(post.Content) == "" {
		return nil, &ValidationError{Message: "Author and content are required"}
	}
	if post.CreatedAt == "" {
		post.CreatedAt = models.NowKST()
	}
	post.Slug = postSlug(post.Author, post.Content)

	if err := s.DB.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return &post, nil
}

// postSlug derives a readable slug from the author and the first words of
// the content.
func postSlug(author, content string) string {
	words := strings.Fields(content)
	if len(words) > 8 {
		words = words[:8]
	}
	return slug.Make(author + " " + strings.Join(words, " "))
}

// DeletePost removes the post and its comments in one transaction.
func (s *BlogStore) DeletePost(ctx context.Context, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments: %w", err)
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete post: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return &NotFoundError{Message: "Post not found"}
		}
		return nil
	})
}

// ListComments returns the comments of a post oldest first.
func (s *BlogStore) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.DB.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// CreateComment fails with NotFoundError when the post does not exist.
func (s *BlogStore) CreateComment(ctx context.Context, comment models.Comment) (*models.Comment, error) {
	if _, err := s.GetPost(ctx, comment.PostID); err != nil {
		return nil, err
	}
	comment.Author = strings.TrimSpace(comment.Author)
	if comment.Author == "" || strings.TrimSpace(comment.Content) == "" {
		return nil, &ValidationError{Message: "Author and content are required"}
	}
	if comment.CreatedAt == "" {
		comment.CreatedAt = models.NowKST()
	}

	if err := s.DB.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	return &comment, nil
}

func (s *BlogStore) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := s.DB.WithContext(ctx).First(&comment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Message: "Comment not found"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load comment: %w", err)
	}
	return &comment, nil
}

// ApplyCommentAction sets or clears readAt/likedAt. Repeating an action
// keeps the state it already produced.
func (s *BlogStore) ApplyCommentAction(ctx context.Context, id uint, action models.CommentAction) (*models.Comment, error) {
	if !action.Valid() {
		return nil, &ValidationError{Message: `Invalid action. Must be "read", "unread", "like", or "unlike"`}
	}
	comment, err := s.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}

	now := models.NowKST()
	switch action {
	case models.CommentActionRead:
		if comment.ReadAt == nil {
			comment.ReadAt = &now
		}
	case models.CommentActionUnread:
		comment.ReadAt = nil
	case models.CommentActionLike:
		if comment.LikedAt == nil {
			comment.LikedAt = &now
		}
	case models.CommentActionUnlike:
		comment.LikedAt = nil
	}

	err = s.DB.WithContext(ctx).Model(comment).
		Select("read_at", "liked_at").
		Updates(map[string]any{"read_at": comment.ReadAt, "liked_at": comment.LikedAt}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}
	return comment, nil
}

func (s *BlogStore) DeleteComment(ctx context.Context, id uint) error {
	res := s.DB.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Message: "Comment not found"}
	}
	return nil
}

// ListAllComments returns every comment grouped by post.
func (s *BlogStore) ListAllComments(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	if err := s.DB.WithContext(ctx).Order("post_id ASC, id ASC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

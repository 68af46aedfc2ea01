// services/blog_seed.go
package services

import (
	"context"
	"fmt"

	"web3-dashboard/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type seedComment struct {
	post    int
	author  string
	content string
	created string
	readAt  string
	likedAt string
}

var seedPosts = []models.Post{
	{Author: "Prof. Kim", CreatedAt: "2024-01-15 09:00:00", Content: "This post summarizes the main activities and achievements of APL in January 2024. This month, two major papers were published, and a new research project was started."},
	{Author: "Park TA", CreatedAt: "2023-12-05 14:30:00", Content: "Guidelines for lab equipment usage. Includes reservation methods, cleanup procedures, and troubleshooting steps."},
	{Author: "Prof. Lee", CreatedAt: "2024-01-02 11:15:00", Content: "Spring 2024 seminar schedule and presenter list. All lab members must prepare at least one presentation."},
	{Author: "Prof. Kim", CreatedAt: "2023-11-20 16:45:00", Content: "Tips for effective paper writing and standard template files used in our lab. Includes a brief guide on LaTeX usage."},
	{Author: "Choi Admin", CreatedAt: "2024-01-10 10:30:00", Content: "Guidelines for research fund usage reports and submission deadlines. Receipt management and report templates are attached."},
}

var seedComments = []seedComment{
	{0, "Park Researcher", "January paper achievements are really impressive. Especially the Nature paper is a great accomplishment!", "2024-01-15 10:30:00", "2024-01-15 10:35:00", ""},
	{0, "Kim MS Student", "Will there be additional meetings regarding the new project?", "2024-01-15 11:45:00", "", "2024-01-15 12:00:00"},
	{1, "Lee PhD", "Has the SEM reservation system been updated?", "2023-12-06 09:20:00", "2023-12-06 10:00:00", ""},
	{2, "Choi MS Student", "My presentation is scheduled for March 15, but I'll be attending a conference then. Can we adjust the schedule?", "2024-01-03 14:10:00", "", ""},
	{2, "Prof. Kim", "Yes, we can adjust to another date. Please email me your available dates.", "2024-01-03 16:30:00", "2024-01-03 17:00:00", "2024-01-03 17:05:00"},
	{3, "Jung Researcher", "Could you also add a BibTeX style file to the LaTeX template?", "2023-11-21 09:05:00", "", ""},
	{4, "Han MS Student", "Could you clarify the exact deadline for report submission?", "2024-01-10 13:25:00", "2024-01-10 14:00:00", ""},
	{4, "Choi Admin", "This month's deadline is January 31. Please submit by the deadline.", "2024-01-10 14:40:00", "", ""},
}

func optionalTime(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Seed loads the demo posts and comments when the posts table is empty.
// It reports whether anything was inserted.
func (s *BlogStore) Seed(ctx context.Context, logger *zap.Logger) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Post{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count posts: %w", err)
	}
	if count > 0 {
		logger.Info("🌱 [SEED] Posts already present, skipping seed", zap.Int64("posts", count))
		return false, nil
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, len(seedPosts))
		for i, p := range seedPosts {
			post := p
			post.Slug = postSlug(post.Author, post.Content)
			if err := tx.Create(&post).Error; err != nil {
				return err
			}
			ids[i] = post.ID
		}

		for _, c := range seedComments {
			comment := models.Comment{
				PostID:    ids[c.post],
				Author:    c.author,
				Content:   c.content,
				CreatedAt: c.created,
				ReadAt:    optionalTime(c.readAt),
				LikedAt:   optionalTime(c.likedAt),
			}
			if err := tx.Create(&comment).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed demo data: %w", err)
	}

	logger.Info("🌱 [SEED] Demo data added",
		zap.Int("posts", len(seedPosts)),
		zap.Int("comments", len(seedComments)))
	return true, nil
}

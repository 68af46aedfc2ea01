package services

import (
	"context"
	"testing"

	"web3-dashboard/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBlogStoreCreatePost(t *testing.T) {
	store := NewBlogStore(newTestDB(t))
	ctx := context.Background()

	post, err := store.CreatePost(ctx, models.Post{Author: " Prof. Kim ", Content: "Lab meeting moved to Friday afternoon this week"})
	require.NoError(t, err)
	assert.NotZero(t, post.ID)
	assert.Equal(t, "Prof. Kim", post.Author)
	assert.Equal(t, "prof-kim-lab-meeting-moved-to-friday-afternoon-this-week", post.Slug)
	assert.Len(t, post.CreatedAt, len(models.KSTLayout))

	_, err = store.CreatePost(ctx, models.Post{Author: "x"})
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestBlogStoreListPostsNewestFirst(t *testing.T) {
	store := NewBlogStore(newTestDB(t))
	ctx := context.Background()

	for _, created := range []string{"2024-01-02 10:00:00", "2024-03-01 10:00:00", "2023-12-31 23:59:59"} {
		_, err := store.CreatePost(ctx, models.Post{Author: "a", Content: "c", CreatedAt: created})
		require.NoError(t, err)
	}

	posts, err := store.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "2024-03-01 10:00:00", posts[0].CreatedAt)
	assert.Equal(t, "2023-12-31 23:59:59", posts[2].CreatedAt)
}

func TestBlogStoreCommentActions(t *testing.T) {
	store := NewBlogStore(newTestDB(t))
	ctx := context.Background()

	post, err := store.CreatePost(ctx, models.Post{Author: "a", Content: "c"})
	require.NoError(t, err)
	comment, err := store.CreateComment(ctx, models.Comment{PostID: post.ID, Author: "b", Content: "nice"})
	require.NoError(t, err)
	assert.Nil(t, comment.ReadAt)
	assert.Nil(t, comment.LikedAt)

	read, err := store.ApplyCommentAction(ctx, comment.ID, models.CommentActionRead)
	require.NoError(t, err)
	require.NotNil(t, read.ReadAt)
	firstRead := *read.ReadAt

	again, err := store.ApplyCommentAction(ctx, comment.ID, models.CommentActionRead)
	require.NoError(t, err)
	require.NotNil(t, again.ReadAt)
	assert.Equal(t, firstRead, *again.ReadAt)

	liked, err := store.ApplyCommentAction(ctx, comment.ID, models.CommentActionLike)
	require.NoError(t, err)
	assert.NotNil(t, liked.LikedAt)
	assert.NotNil(t, liked.ReadAt)

	unread, err := store.ApplyCommentAction(ctx, comment.ID, models.CommentActionUnread)
	require.NoError(t, err)
	assert.Nil(t, unread.ReadAt)

	stored, err := store.GetComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ReadAt)
	assert.NotNil(t, stored.LikedAt)

	_, err = store.ApplyCommentAction(ctx, comment.ID, models.CommentAction("star"))
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestBlogStoreCommentOnMissingPost(t *testing.T) {
	store := NewBlogStore(newTestDB(t))

	_, err := store.CreateComment(context.Background(), models.Comment{PostID: 99, Author: "b", Content: "c"})
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "Post not found", notFound.Message)
}

func TestBlogStoreDeletePostRemovesComments(t *testing.T) {
	store := NewBlogStore(newTestDB(t))
	ctx := context.Background()

	post, err := store.CreatePost(ctx, models.Post{Author: "a", Content: "c"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := store.CreateComment(ctx, models.Comment{PostID: post.ID, Author: "b", Content: "c"})
		require.NoError(t, err)
	}

	require.NoError(t, store.DeletePost(ctx, post.ID))

	comments, err := store.ListAllComments(ctx)
	require.NoError(t, err)
	assert.Empty(t, comments)

	var notFound *NotFoundError
	assert.ErrorAs(t, store.DeletePost(ctx, post.ID), &notFound)
}

func TestBlogStoreSeedRunsOnce(t *testing.T) {
	store := NewBlogStore(newTestDB(t))
	ctx := context.Background()

	seeded, err := store.Seed(ctx, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, seeded)

	seeded, err = store.Seed(ctx, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, seeded)

	posts, err := store.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, len(seedPosts))
	assert.Equal(t, "2024-01-15 09:00:00", posts[0].CreatedAt)

	comments, err := store.ListComments(ctx, posts[0].ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	require.NotNil(t, comments[0].ReadAt)
	assert.Equal(t, "2024-01-15 10:35:00", *comments[0].ReadAt)
	assert.NotNil(t, comments[1].LikedAt)
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/deppfellow/gpthub/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var topicRowColumns = []string{
	"id", "title", "content", "slug", "category_id", "user_id",
	"is_pinned", "is_locked", "view_count", "created_at", "updated_at",
}

func TestCreateCategoryDefaultsSortOrder(t *testing.T) {
	mock := newMock(t)
	repo := NewForumRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO forum_categories").
		WithArgs("General", "Anything goes", "general", 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "description", "slug", "sort_order", "created_at"}).
			AddRow(int64(1), "General", "Anything goes", "general", 0, now))

	category, err := repo.CreateCategory(context.Background(), model.InsertForumCategory{
		Name:        "General",
		Description: "Anything goes",
		Slug:        "general",
	})

	require.NoError(t, err)
	assert.Equal(t, "general", category.Slug)
	assert.Equal(t, 0, category.SortOrder)
}

func TestGetCategoryBySlugNotFound(t *testing.T) {
	mock := newMock(t)
	repo := NewForumRepository(mock)

	mock.ExpectQuery("FROM forum_categories").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetCategoryBySlug(context.Background(), "missing")

	require.ErrorIs(t, err, pgx.ErrNoRows)
	assert.Contains(t, err.Error(), "forum_categories")
}

func TestViewTopicIncrementsCount(t *testing.T) {
	mock := newMock(t)
	repo := NewForumRepository(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("SET view_count = COALESCE\\(view_count, 0\\) \\+ 1").
		WithArgs("hello-world-ab12cd").
		WillReturnRows(pgxmock.NewRows(topicRowColumns).
			AddRow(int64(5), "Hello world", "body", "hello-world-ab12cd", int64(1), int64(2), false, false, 11, now, now))

	topic, err := repo.ViewTopic(context.Background(), "hello-world-ab12cd")

	require.NoError(t, err)
	assert.Equal(t, 11, topic.ViewCount)
}

func TestCreateTopicPassesFlags(t *testing.T) {
	mock := newMock(t)
	repo := NewForumRepository(mock)
	now := time.Now().UTC()
	pinned := true

	mock.ExpectQuery("INSERT INTO forum_topics").
		WithArgs("Hello", "body", "hello-1a2b3c", int64(1), int64(2), true, false).
		WillReturnRows(pgxmock.NewRows(topicRowColumns).
			AddRow(int64(5), "Hello", "body", "hello-1a2b3c", int64(1), int64(2), true, false, 0, now, now))

	topic, err := repo.CreateTopic(context.Background(), model.InsertForumTopic{
		Title:      "Hello",
		Content:    "body",
		CategoryID: 1,
		UserID:     2,
		IsPinned:   &pinned,
	}, "hello-1a2b3c")

	require.NoError(t, err)
	assert.True(t, topic.IsPinned)
	assert.False(t, topic.IsLocked)
}

func TestCreatePostAndList(t *testing.T) {
	mock := newMock(t)
	repo := NewForumRepository(mock)
	now := time.Now().UTC()
	postColumns := []string{"id", "content", "topic_id", "user_id", "is_answer", "created_at", "updated_at"}

	mock.ExpectQuery("INSERT INTO forum_posts").
		WithArgs("reply", int64(5), int64(2), false).
		WillReturnRows(pgxmock.NewRows(postColumns).AddRow(int64(1), "reply", int64(5), int64(2), false, now, now))
	mock.ExpectQuery("FROM forum_posts").
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(postColumns).
			AddRow(int64(1), "reply", int64(5), int64(2), false, now, now).
			AddRow(int64(2), "second", int64(5), int64(3), true, now, now))

	post, err := repo.CreatePost(context.Background(), model.InsertForumPost{Content: "reply", TopicID: 5, UserID: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), post.TopicID)

	posts, err := repo.ListPostsByTopic(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.True(t, posts[1].IsAnswer)
}

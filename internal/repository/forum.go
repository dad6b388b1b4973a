package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/gpthub/internal/model"
	"github.com/deppfellow/gpthub/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

// ForumRepository covers the three forum tables: forum_categories,
// forum_topics and forum_posts.
//
// Listings come back in display order (categories by sort_order then name,
// topics pinned first and then by last activity, posts oldest first). Lookups
// that find nothing return sqlerr.NotFound with the table name, which
// sqlerr.HandleError later turns into a 404 naming the entity.
type ForumRepository struct {
	db DBTX
}

// NewForumRepository constructs the repository on db.
func NewForumRepository(db DBTX) *ForumRepository {
	return &ForumRepository{db: db}
}

// ---------------------------------------------------------------- categories

const categoryColumns = `id, name, description, slug, COALESCE(sort_order, 0), created_at`

func scanCategory(row pgx.Row) (model.ForumCategory, error) {
	var c model.ForumCategory
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Slug, &c.SortOrder, &c.CreatedAt)
	return c, err
}

const createCategory = `
INSERT INTO forum_categories (name, description, slug, sort_order)
VALUES ($1, $2, $3, $4)
RETURNING ` + categoryColumns

// CreateCategory inserts a category. A nil SortOrder is stored as 0.
func (r *ForumRepository) CreateCategory(ctx context.Context, input model.InsertForumCategory) (*model.ForumCategory, error) {
	sortOrder := 0
	if input.SortOrder != nil {
		sortOrder = *input.SortOrder
	}

	category, err := scanCategory(r.db.QueryRow(ctx, createCategory, input.Name, input.Description, input.Slug, sortOrder))
	if err != nil {
		return nil, fmt.Errorf("insert forum category: %w", err)
	}
	return &category, nil
}

const listCategories = `
SELECT ` + categoryColumns + `
FROM forum_categories
ORDER BY sort_order, name`

// ListCategories returns every category in display order.
func (r *ForumRepository) ListCategories(ctx context.Context) ([]model.ForumCategory, error) {
	rows, err := r.db.Query(ctx, listCategories)
	if err != nil {
		return nil, fmt.Errorf("list forum categories: %w", err)
	}

	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ForumCategory, error) {
		return scanCategory(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan forum categories: %w", err)
	}
	return categories, nil
}

const getCategoryBySlug = `
SELECT ` + categoryColumns + `
FROM forum_categories
WHERE slug = $1`

// GetCategoryBySlug returns the category or a NotFound error.
func (r *ForumRepository) GetCategoryBySlug(ctx context.Context, slug string) (*model.ForumCategory, error) {
	category, err := scanCategory(r.db.QueryRow(ctx, getCategoryBySlug, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound("forum_categories")
	}
	if err != nil {
		return nil, fmt.Errorf("get forum category %q: %w", slug, err)
	}
	return &category, nil
}

// -------------------------------------------------------------------- topics

const topicColumns = `id, title, content, slug, category_id, user_id,
	COALESCE(is_pinned, FALSE), COALESCE(is_locked, FALSE), COALESCE(view_count, 0),
	created_at, updated_at`

func scanTopic(row pgx.Row) (model.ForumTopic, error) {
	var t model.ForumTopic
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Content,
		&t.Slug,
		&t.CategoryID,
		&t.UserID,
		&t.IsPinned,
		&t.IsLocked,
		&t.ViewCount,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

const createTopic = `
INSERT INTO forum_topics (title, content, slug, category_id, user_id, is_pinned, is_locked)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + topicColumns

// CreateTopic inserts a topic under the given slug.
func (r *ForumRepository) CreateTopic(ctx context.Context, input model.InsertForumTopic, slug string) (*model.ForumTopic, error) {
	row := r.db.QueryRow(ctx, createTopic,
		input.Title,
		input.Content,
		slug,
		input.CategoryID,
		input.UserID,
		boolOrFalse(input.IsPinned),
		boolOrFalse(input.IsLocked),
	)

	topic, err := scanTopic(row)
	if err != nil {
		return nil, fmt.Errorf("insert forum topic: %w", err)
	}
	return &topic, nil
}

const listTopicsByCategory = `
SELECT ` + topicColumns + `
FROM forum_topics
WHERE category_id = $1
ORDER BY is_pinned DESC, updated_at DESC, id DESC`

// ListTopicsByCategory returns pinned topics first, then the most recently active.
func (r *ForumRepository) ListTopicsByCategory(ctx context.Context, categoryID int64) ([]model.ForumTopic, error) {
	rows, err := r.db.Query(ctx, listTopicsByCategory, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list forum topics: %w", err)
	}

	topics, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ForumTopic, error) {
		return scanTopic(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan forum topics: %w", err)
	}
	return topics, nil
}

const getTopicByID = `
SELECT ` + topicColumns + `
FROM forum_topics
WHERE id = $1`

// GetTopicByID returns the topic without counting a view.
func (r *ForumRepository) GetTopicByID(ctx context.Context, id int64) (*model.ForumTopic, error) {
	topic, err := scanTopic(r.db.QueryRow(ctx, getTopicByID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound("forum_topics")
	}
	if err != nil {
		return nil, fmt.Errorf("get forum topic %d: %w", id, err)
	}
	return &topic, nil
}

const viewTopic = `
UPDATE forum_topics
SET view_count = COALESCE(view_count, 0) + 1
WHERE slug = $1
RETURNING ` + topicColumns

// ViewTopic increments the view counter and returns the updated topic.
func (r *ForumRepository) ViewTopic(ctx context.Context, slug string) (*model.ForumTopic, error) {
	topic, err := scanTopic(r.db.QueryRow(ctx, viewTopic, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound("forum_topics")
	}
	if err != nil {
		return nil, fmt.Errorf("view forum topic %q: %w", slug, err)
	}
	return &topic, nil
}

// --------------------------------------------------------------------- posts

const postColumns = `id, content, topic_id, user_id, COALESCE(is_answer, FALSE), created_at, updated_at`

func scanPost(row pgx.Row) (model.ForumPost, error) {
	var p model.ForumPost
	err := row.Scan(&p.ID, &p.Content, &p.TopicID, &p.UserID, &p.IsAnswer, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// The topic's updated_at moves with every reply so ListTopicsByCategory
// surfaces active threads.
const createPost = `
WITH inserted AS (
	INSERT INTO forum_posts (content, topic_id, user_id, is_answer)
	VALUES ($1, $2, $3, $4)
	RETURNING ` + postColumns + `
), touched AS (
	UPDATE forum_topics SET updated_at = NOW() WHERE id = $2
)
SELECT * FROM inserted`

// CreatePost inserts a reply and bumps the topic's updated_at in the same
// statement.
func (r *ForumRepository) CreatePost(ctx context.Context, input model.InsertForumPost) (*model.ForumPost, error) {
	post, err := scanPost(r.db.QueryRow(ctx, createPost, input.Content, input.TopicID, input.UserID, boolOrFalse(input.IsAnswer)))
	if err != nil {
		return nil, fmt.Errorf("insert forum post: %w", err)
	}
	return &post, nil
}

const listPostsByTopic = `
SELECT ` + postColumns + `
FROM forum_posts
WHERE topic_id = $1
ORDER BY created_at, id`

// ListPostsByTopic returns a topic's posts oldest first.
func (r *ForumRepository) ListPostsByTopic(ctx context.Context, topicID int64) ([]model.ForumPost, error) {
	rows, err := r.db.Query(ctx, listPostsByTopic, topicID)
	if err != nil {
		return nil, fmt.Errorf("list forum posts: %w", err)
	}

	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ForumPost, error) {
		return scanPost(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan forum posts: %w", err)
	}
	return posts, nil
}

func boolOrFalse(b *bool) bool {
	return b != nil && *b
}

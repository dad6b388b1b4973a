package model

import (
	"time"

	"github.com/deppfellow/gpthub/internal/validation"
)

// ForumCategory is a row of forum_categories. Slug is unique.
type ForumCategory struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Slug        string    `json:"slug" db:"slug"`
	SortOrder   int       `json:"sortOrder" db:"sort_order"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// ForumTopic is a row of forum_topics. CategoryID and UserID reference
// forum_categories and users.
type ForumTopic struct {
	ID         int64     `json:"id" db:"id"`
	Title      string    `json:"title" db:"title"`
	Content    string    `json:"content" db:"content"`
	Slug       string    `json:"slug" db:"slug"`
	CategoryID int64     `json:"categoryId" db:"category_id"`
	UserID     int64     `json:"userId" db:"user_id"`
	IsPinned   bool      `json:"isPinned" db:"is_pinned"`
	IsLocked   bool      `json:"isLocked" db:"is_locked"`
	ViewCount  int       `json:"viewCount" db:"view_count"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// ForumPost is a row of forum_posts.
type ForumPost struct {
	ID        int64     `json:"id" db:"id"`
	Content   string    `json:"content" db:"content"`
	TopicID   int64     `json:"topicId" db:"topic_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	IsAnswer  bool      `json:"isAnswer" db:"is_answer"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// InsertForumCategory creates a category. Slug is chosen by the caller and
// must be lowercase words joined by single hyphens.
type InsertForumCategory struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description" validate:"required,notblank"`
	Slug        string `json:"slug" validate:"required,max=100,slug"`
	SortOrder   *int   `json:"sortOrder"`
}

func (r *InsertForumCategory) Validate() error {
	return validation.Struct(r)
}

// InsertForumTopic carries no slug; it is derived from the title.
type InsertForumTopic struct {
	Title      string `json:"title" validate:"required,notblank,max=200"`
	Content    string `json:"content" validate:"required,notblank"`
	CategoryID int64  `json:"categoryId" validate:"required,gt=0"`
	UserID     int64  `json:"userId" validate:"required,gt=0"`
	IsPinned   *bool  `json:"isPinned"`
	IsLocked   *bool  `json:"isLocked"`
}

func (r *InsertForumTopic) Validate() error {
	return validation.Struct(r)
}

// InsertForumPost replies to a topic. IsAnswer marks the reply that solved
// the question and defaults to false.
type InsertForumPost struct {
	Content  string `json:"content" validate:"required,notblank"`
	TopicID  int64  `json:"topicId" validate:"required,gt=0"`
	UserID   int64  `json:"userId" validate:"required,gt=0"`
	IsAnswer *bool  `json:"isAnswer"`
}

func (r *InsertForumPost) Validate() error {
	return validation.Struct(r)
}

// ListTopicsRequest addresses the topics of one category.
type ListTopicsRequest struct {
	CategorySlug string `param:"slug" validate:"required,slug"`
}

func (r *ListTopicsRequest) Validate() error {
	return validation.Struct(r)
}

// ViewTopicRequest addresses one topic by slug.
type ViewTopicRequest struct {
	Slug string `param:"slug" validate:"required,slug"`
}

func (r *ViewTopicRequest) Validate() error {
	return validation.Struct(r)
}

// ListPostsRequest addresses the posts of one topic.
type ListPostsRequest struct {
	TopicID int64 `query:"topicId" validate:"required,gt=0"`
}

func (r *ListPostsRequest) Validate() error {
	return validation.Struct(r)
}

// EmptyRequest is used by routes that take no input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error {
	return nil
}

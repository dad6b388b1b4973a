package handler

import (
	"context"
	"net/http"

	"github.com/deppfellow/gpthub/internal/model"
	"github.com/deppfellow/gpthub/internal/server"
	"github.com/labstack/echo/v4"
)

// Forum is the community forum: categories hold topics, topics hold posts.
//
// Implementations decide the domain rules (slug generation, locked topics,
// view counting); the handler only maps requests onto these calls.
type Forum interface {
	CreateCategory(ctx context.Context, input model.InsertForumCategory) (*model.ForumCategory, error)
	ListCategories(ctx context.Context) ([]model.ForumCategory, error)
	ListTopics(ctx context.Context, categorySlug string) ([]model.ForumTopic, error)
	CreateTopic(ctx context.Context, input model.InsertForumTopic) (*model.ForumTopic, error)
	ViewTopic(ctx context.Context, slug string) (*model.ForumTopic, error)
	CreatePost(ctx context.Context, input model.InsertForumPost) (*model.ForumPost, error)
	ListPosts(ctx context.Context, topicID int64) ([]model.ForumPost, error)
}

// ForumHandler serves /api/forum.
type ForumHandler struct {
	Handler
	service Forum
}

// NewForumHandler constructs the handler.
func NewForumHandler(s *server.Server, service Forum) *ForumHandler {
	return &ForumHandler{
		Handler: NewHandler(s),
		service: service,
	}
}

// ListCategories serves GET /api/forum/categories.
func (h *ForumHandler) ListCategories() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, _ *model.EmptyRequest) ([]model.ForumCategory, error) {
		return h.service.ListCategories(c.Request().Context())
	}, http.StatusOK, newRequest[model.EmptyRequest], Messages{Success: "Categories retrieved successfully"})
}

// CreateCategory serves POST /api/forum/categories. The route sits behind
// RequireAuth.
func (h *ForumHandler) CreateCategory() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.InsertForumCategory) (*model.ForumCategory, error) {
		return h.service.CreateCategory(c.Request().Context(), *req)
	}, http.StatusCreated, newRequest[model.InsertForumCategory], Messages{Success: "Category created successfully"})
}

// ListTopics serves GET /api/forum/categories/:slug/topics.
func (h *ForumHandler) ListTopics() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.ListTopicsRequest) ([]model.ForumTopic, error) {
		return h.service.ListTopics(c.Request().Context(), req.CategorySlug)
	}, http.StatusOK, newRequest[model.ListTopicsRequest], Messages{Success: "Topics retrieved successfully"})
}

// CreateTopic serves POST /api/forum/topics.
func (h *ForumHandler) CreateTopic() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.InsertForumTopic) (*model.ForumTopic, error) {
		return h.service.CreateTopic(c.Request().Context(), *req)
	}, http.StatusCreated, newRequest[model.InsertForumTopic], Messages{Success: "Topic created successfully"})
}

// ViewTopic returns one topic and counts the view.
func (h *ForumHandler) ViewTopic() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.ViewTopicRequest) (*model.ForumTopic, error) {
		return h.service.ViewTopic(c.Request().Context(), req.Slug)
	}, http.StatusOK, newRequest[model.ViewTopicRequest], Messages{Success: "Topic retrieved successfully"})
}

// ListPosts serves GET /api/forum/posts?topicId=.
func (h *ForumHandler) ListPosts() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.ListPostsRequest) ([]model.ForumPost, error) {
		return h.service.ListPosts(c.Request().Context(), req.TopicID)
	}, http.StatusOK, newRequest[model.ListPostsRequest], Messages{Success: "Posts retrieved successfully"})
}

// CreatePost serves POST /api/forum/posts. Posting to a locked topic is
// rejected by the service with a 403.
func (h *ForumHandler) CreatePost() echo.HandlerFunc {
	return Handle(h.Handler, func(c echo.Context, req *model.InsertForumPost) (*model.ForumPost, error) {
		return h.service.CreatePost(c.Request().Context(), *req)
	}, http.StatusCreated, newRequest[model.InsertForumPost], Messages{Success: "Post created successfully"})
}

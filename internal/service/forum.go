package service

import (
	"context"

	"github.com/deppfellow/gpthub/internal/errs"
	"github.com/deppfellow/gpthub/internal/lib/utils"
	"github.com/deppfellow/gpthub/internal/model"
)

// ForumStore is the persistence the forum rules run on.
// *repository.ForumRepository implements it against Postgres.
//
// Lookups by slug or id return a 404 *errs.HTTPError when nothing matches,
// and ViewTopic increments the view counter in the same statement that reads
// the topic.
type ForumStore interface {
	CreateCategory(ctx context.Context, input model.InsertForumCategory) (*model.ForumCategory, error)
	ListCategories(ctx context.Context) ([]model.ForumCategory, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*model.ForumCategory, error)
	CreateTopic(ctx context.Context, input model.InsertForumTopic, slug string) (*model.ForumTopic, error)
	ListTopicsByCategory(ctx context.Context, categoryID int64) ([]model.ForumTopic, error)
	GetTopicByID(ctx context.Context, id int64) (*model.ForumTopic, error)
	ViewTopic(ctx context.Context, slug string) (*model.ForumTopic, error)
	CreatePost(ctx context.Context, input model.InsertForumPost) (*model.ForumPost, error)
	ListPostsByTopic(ctx context.Context, topicID int64) ([]model.ForumPost, error)
}

// ErrTopicLocked is returned when replying to a locked topic.
var ErrTopicLocked = errs.NewForbiddenError("Topic is locked")

// ForumService applies the forum rules: topic slugs are generated from the
// title, locked topics refuse replies and listing a missing parent is a 404
// rather than an empty list.
type ForumService struct {
	store ForumStore
}

// NewForumService constructs the service over store.
func NewForumService(store ForumStore) *ForumService {
	return &ForumService{store: store}
}

// CreateCategory stores a category. A duplicate slug surfaces as the
// database unique violation.
func (s *ForumService) CreateCategory(ctx context.Context, input model.InsertForumCategory) (*model.ForumCategory, error) {
	return s.store.CreateCategory(ctx, input)
}

func (s *ForumService) ListCategories(ctx context.Context) ([]model.ForumCategory, error) {
	return s.store.ListCategories(ctx)
}

// ListTopics lists the topics of the category with the given slug.
func (s *ForumService) ListTopics(ctx context.Context, categorySlug string) ([]model.ForumTopic, error) {
	category, err := s.store.GetCategoryBySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}
	return s.store.ListTopicsByCategory(ctx, category.ID)
}

// CreateTopic derives the slug from the title.
func (s *ForumService) CreateTopic(ctx context.Context, input model.InsertForumTopic) (*model.ForumTopic, error) {
	return s.store.CreateTopic(ctx, input, utils.UniqueSlug(input.Title, "topic"))
}

// ViewTopic returns the topic and counts the view.
func (s *ForumService) ViewTopic(ctx context.Context, slug string) (*model.ForumTopic, error) {
	return s.store.ViewTopic(ctx, slug)
}

// CreatePost replies to a topic. It returns ErrTopicLocked when the topic is
// locked and a 404 when it does not exist.
func (s *ForumService) CreatePost(ctx context.Context, input model.InsertForumPost) (*model.ForumPost, error) {
	topic, err := s.store.GetTopicByID(ctx, input.TopicID)
	if err != nil {
		return nil, err
	}
	if topic.IsLocked {
		return nil, ErrTopicLocked
	}
	return s.store.CreatePost(ctx, input)
}

// ListPosts returns 404 for an unknown topic rather than an empty list.
func (s *ForumService) ListPosts(ctx context.Context, topicID int64) ([]model.ForumPost, error) {
	if _, err := s.store.GetTopicByID(ctx, topicID); err != nil {
		return nil, err
	}
	return s.store.ListPostsByTopic(ctx, topicID)
}

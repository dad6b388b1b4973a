package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/deppfellow/gpthub/internal/errs"
	"github.com/deppfellow/gpthub/internal/lib/job"
	"github.com/deppfellow/gpthub/internal/model"
	"github.com/deppfellow/gpthub/internal/sqlerr"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

type fakeNewsletterStore struct {
	err error
}

func (f *fakeNewsletterStore) CreateNewsletterSubscription(_ context.Context, input model.InsertNewsletterSubscription) (*model.NewsletterSubscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.NewsletterSubscription{ID: 1, Email: input.Email, CreatedAt: time.Now()}, nil
}

func TestSubscribeQueuesWelcomeEmail(t *testing.T) {
	jobs := &fakeEnqueuer{}
	svc := NewNewsletterService(&fakeNewsletterStore{}, jobs, nopLogger())

	sub, err := svc.Subscribe(context.Background(), model.InsertNewsletterSubscription{Email: "ada@example.com"})

	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", sub.Email)
	require.Len(t, jobs.tasks, 1)
	assert.Equal(t, job.TaskNewsletterWelcome, jobs.tasks[0].Type())
}

func TestSubscribeIgnoresEnqueueFailure(t *testing.T) {
	svc := NewNewsletterService(&fakeNewsletterStore{}, &fakeEnqueuer{err: errors.New("redis down")}, nopLogger())

	sub, err := svc.Subscribe(context.Background(), model.InsertNewsletterSubscription{Email: "ada@example.com"})

	require.NoError(t, err)
	assert.NotNil(t, sub)
}

func TestSubscribeWithoutQueue(t *testing.T) {
	svc := NewNewsletterService(&fakeNewsletterStore{}, nil, nopLogger())

	_, err := svc.Subscribe(context.Background(), model.InsertNewsletterSubscription{Email: "ada@example.com"})

	assert.NoError(t, err)
}

func TestSubscribeReturnsStoreError(t *testing.T) {
	storeErr := errors.New("unique violation")
	jobs := &fakeEnqueuer{}
	svc := NewNewsletterService(&fakeNewsletterStore{err: storeErr}, jobs, nopLogger())

	_, err := svc.Subscribe(context.Background(), model.InsertNewsletterSubscription{Email: "ada@example.com"})

	assert.ErrorIs(t, err, storeErr)
	assert.Empty(t, jobs.tasks)
}

func TestSubscribeLogsThroughRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	reqLogger := zerolog.New(&buf).With().Str("request_id", "req-7").Logger()
	ctx := reqLogger.WithContext(context.Background())

	var fallback bytes.Buffer
	base := zerolog.New(&fallback)
	svc := NewNewsletterService(&fakeNewsletterStore{}, &fakeEnqueuer{err: errors.New("redis down")}, &base)

	_, err := svc.Subscribe(ctx, model.InsertNewsletterSubscription{Email: "ada@example.com"})

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"request_id":"req-7"`)
	assert.Contains(t, buf.String(), "failed to enqueue newsletter welcome email")
	assert.Empty(t, fallback.String())
}

func TestSubscribeLogsThroughFallbackOutsideRequests(t *testing.T) {
	var fallback bytes.Buffer
	base := zerolog.New(&fallback)
	svc := NewNewsletterService(&fakeNewsletterStore{}, &fakeEnqueuer{err: errors.New("redis down")}, &base)

	_, err := svc.Subscribe(context.Background(), model.InsertNewsletterSubscription{Email: "ada@example.com"})

	require.NoError(t, err)
	assert.Contains(t, fallback.String(), "failed to enqueue newsletter welcome email")
}

type fakeContactStore struct{}

func (fakeContactStore) CreateContactSubmission(_ context.Context, input model.InsertContactSubmission) (*model.ContactSubmission, error) {
	return &model.ContactSubmission{
		ID:      4,
		Name:    input.Name,
		Email:   input.Email,
		Company: input.Company,
		Message: input.Message,
	}, nil
}

func TestSubmitNotifiesInbox(t *testing.T) {
	jobs := &fakeEnqueuer{}
	svc := NewContactService(fakeContactStore{}, jobs, "inbox@gpthub.dev", nopLogger())

	_, err := svc.Submit(context.Background(), model.InsertContactSubmission{
		Name:    "Ada",
		Email:   "ada@example.com",
		Company: "Analytical",
		Message: "Hello",
	})

	require.NoError(t, err)
	require.Len(t, jobs.tasks, 1)
	assert.Equal(t, job.TaskContactNotification, jobs.tasks[0].Type())

	var p job.ContactNotificationPayload
	require.NoError(t, json.Unmarshal(jobs.tasks[0].Payload(), &p))
	assert.Equal(t, "inbox@gpthub.dev", p.Inbox)
	assert.Equal(t, "Hello", p.Message)
}

type fakeGptStore struct {
	created model.InsertCustomGpt
}

func (f *fakeGptStore) CreateGpt(_ context.Context, input model.InsertCustomGpt) (*model.CustomGpt, error) {
	f.created = input
	return &model.CustomGpt{ID: 1, Name: input.Name, Stars: *input.Stars, IsOpenSource: *input.IsOpenSource, PromptExamples: input.PromptExamples}, nil
}

func (f *fakeGptStore) ListGpts(context.Context, string) ([]model.CustomGpt, error) {
	return nil, nil
}

func (f *fakeGptStore) GetGpt(_ context.Context, id int64) (*model.CustomGpt, error) {
	return &model.CustomGpt{ID: id}, nil
}

func TestGptCreateAppliesDefaults(t *testing.T) {
	store := &fakeGptStore{}
	svc := NewGptService(store)

	gpt, err := svc.Create(context.Background(), model.InsertCustomGpt{Name: "helper"})

	require.NoError(t, err)
	assert.Equal(t, 0, gpt.Stars)
	assert.True(t, gpt.IsOpenSource)
	assert.Equal(t, []string{}, gpt.PromptExamples)
	assert.Nil(t, store.created.UserID)
}

type fakeForumStore struct {
	topics     map[int64]*model.ForumTopic
	slug       string
	posts      []model.InsertForumPost
	categories map[string]*model.ForumCategory
}

func newFakeForumStore() *fakeForumStore {
	return &fakeForumStore{
		topics:     map[int64]*model.ForumTopic{},
		categories: map[string]*model.ForumCategory{},
	}
}

func (f *fakeForumStore) CreateCategory(_ context.Context, input model.InsertForumCategory) (*model.ForumCategory, error) {
	c := &model.ForumCategory{ID: int64(len(f.categories) + 1), Name: input.Name, Slug: input.Slug}
	f.categories[input.Slug] = c
	return c, nil
}

func (f *fakeForumStore) ListCategories(context.Context) ([]model.ForumCategory, error) {
	return nil, nil
}

func (f *fakeForumStore) GetCategoryBySlug(_ context.Context, slug string) (*model.ForumCategory, error) {
	if c, ok := f.categories[slug]; ok {
		return c, nil
	}
	return nil, sqlerr.NotFound("forum_categories")
}

func (f *fakeForumStore) CreateTopic(_ context.Context, input model.InsertForumTopic, slug string) (*model.ForumTopic, error) {
	f.slug = slug
	return &model.ForumTopic{ID: 1, Title: input.Title, Slug: slug}, nil
}

func (f *fakeForumStore) ListTopicsByCategory(_ context.Context, categoryID int64) ([]model.ForumTopic, error) {
	return []model.ForumTopic{{ID: 1, CategoryID: categoryID}}, nil
}

func (f *fakeForumStore) GetTopicByID(_ context.Context, id int64) (*model.ForumTopic, error) {
	if t, ok := f.topics[id]; ok {
		return t, nil
	}
	return nil, fmt.Errorf("get: %w", sqlerr.NotFound("forum_topics"))
}

func (f *fakeForumStore) ViewTopic(_ context.Context, slug string) (*model.ForumTopic, error) {
	return &model.ForumTopic{Slug: slug, ViewCount: 1}, nil
}

func (f *fakeForumStore) CreatePost(_ context.Context, input model.InsertForumPost) (*model.ForumPost, error) {
	f.posts = append(f.posts, input)
	return &model.ForumPost{ID: int64(len(f.posts)), TopicID: input.TopicID}, nil
}

func (f *fakeForumStore) ListPostsByTopic(_ context.Context, topicID int64) ([]model.ForumPost, error) {
	return []model.ForumPost{{ID: 1, TopicID: topicID}}, nil
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()

	var httpErr *errs.HTTPError
	require.ErrorAs(t, sqlerr.HandleError(err), &httpErr)
	assert.Equal(t, status, httpErr.Status)
}

func TestCreateTopicGeneratesSlug(t *testing.T) {
	store := newFakeForumStore()
	svc := NewForumService(store)

	topic, err := svc.CreateTopic(context.Background(), model.InsertForumTopic{Title: "Best GPTs for SQL?"})

	require.NoError(t, err)
	assert.Regexp(t, `^best-gpts-for-sql-[0-9a-f]{8}$`, topic.Slug)
}

func TestCreatePostOnLockedTopic(t *testing.T) {
	store := newFakeForumStore()
	store.topics[5] = &model.ForumTopic{ID: 5, IsLocked: true}
	svc := NewForumService(store)

	_, err := svc.CreatePost(context.Background(), model.InsertForumPost{Content: "hi", TopicID: 5, UserID: 1})

	requireStatus(t, err, http.StatusForbidden)
	assert.Equal(t, "Topic is locked", err.Error())
	assert.Empty(t, store.posts)
}

func TestCreatePostOnMissingTopic(t *testing.T) {
	svc := NewForumService(newFakeForumStore())

	_, err := svc.CreatePost(context.Background(), model.InsertForumPost{Content: "hi", TopicID: 9, UserID: 1})

	requireStatus(t, err, http.StatusNotFound)
}

func TestCreatePostOnOpenTopic(t *testing.T) {
	store := newFakeForumStore()
	store.topics[5] = &model.ForumTopic{ID: 5}
	svc := NewForumService(store)

	post, err := svc.CreatePost(context.Background(), model.InsertForumPost{Content: "hi", TopicID: 5, UserID: 1})

	require.NoError(t, err)
	assert.Equal(t, int64(5), post.TopicID)
}

func TestListTopicsUnknownCategory(t *testing.T) {
	svc := NewForumService(newFakeForumStore())

	_, err := svc.ListTopics(context.Background(), "nope")

	requireStatus(t, err, http.StatusNotFound)
}

func TestListTopicsByCategorySlug(t *testing.T) {
	store := newFakeForumStore()
	svc := NewForumService(store)
	_, err := svc.CreateCategory(context.Background(), model.InsertForumCategory{Name: "General", Slug: "general"})
	require.NoError(t, err)

	topics, err := svc.ListTopics(context.Background(), "general")

	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, int64(1), topics[0].CategoryID)
}

func TestListPostsUnknownTopic(t *testing.T) {
	svc := NewForumService(newFakeForumStore())

	_, err := svc.ListPosts(context.Background(), 3)

	requireStatus(t, err, http.StatusNotFound)
}

type fakeUserStore struct {
	hash string
}

func (f *fakeUserStore) CreateUser(_ context.Context, username, passwordHash string) (*model.User, error) {
	f.hash = passwordHash
	return &model.User{ID: 1, Username: username, Password: passwordHash}, nil
}

func TestRegisterHashesPassword(t *testing.T) {
	store := &fakeUserStore{}
	svc := NewUserService(store)
	svc.cost = bcrypt.MinCost

	user, err := svc.Register(context.Background(), model.InsertUser{Username: "ada", Password: "correct horse"})

	require.NoError(t, err)
	assert.Equal(t, "ada", user.Username)
	assert.NotEqual(t, "correct horse", store.hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(store.hash), []byte("correct horse")))
}

func TestAuthSessionFromClaims(t *testing.T) {
	auth := NewAuthService("sk_test")

	_, err := auth.Session(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)

	claims := &clerk.SessionClaims{
		RegisteredClaims: clerk.RegisteredClaims{Subject: "user_123"},
		Claims: clerk.Claims{
			ActiveOrganizationRole:        "org:admin",
			ActiveOrganizationPermissions: []string{"org:forum:manage"},
		},
	}
	session, err := auth.Session(clerk.ContextWithSessionClaims(context.Background(), claims))
	require.NoError(t, err)

	assert.Equal(t, &model.Session{
		UserID:      "user_123",
		Role:        "org:admin",
		Permissions: []string{"org:forum:manage"},
	}, session)
}

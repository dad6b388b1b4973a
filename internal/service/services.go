// Package service contains the business logic.
//
// It sits between the handler and repository layers: it receives validated
// input from handlers, applies the domain rules and calls the repositories.
package service

import (
	"context"

	"github.com/deppfellow/gpthub/internal/lib/job"
	"github.com/deppfellow/gpthub/internal/repository"
	"github.com/deppfellow/gpthub/internal/server"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// requestLogger returns the logger the HTTP layer attached to ctx, so service
// logs carry the request id and caller. Outside a request it is fallback.
func requestLogger(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallback
}

// Services groups every service the handlers depend on. It is built once at
// startup by NewServices and handed to handler.NewHandlers.
type Services struct {
	Auth       *AuthService
	Job        *job.JobService
	Newsletter *NewsletterService
	Contact    *ContactService
	Gpt        *GptService
	Forum      *ForumService
	User       *UserService
}

// NewServices wires each service to its repository. The job client is
// optional: without s.Job the form services skip their follow-up emails
// instead of failing the request.
func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var enqueuer TaskEnqueuer
	if s.Job != nil {
		enqueuer = s.Job.Client
	}

	return &Services{
		Auth:       NewAuthService(s.Config.Auth.SecretKey),
		Job:        s.Job,
		Newsletter: NewNewsletterService(repos.Newsletter, enqueuer, s.Logger),
		Contact:    NewContactService(repos.Contact, enqueuer, s.Config.Integration.ContactInbox, s.Logger),
		Gpt:        NewGptService(repos.Gpt),
		Forum:      NewForumService(repos.Forum),
		User:       NewUserService(repos.User),
	}, nil
}

package service

import (
	"context"

	"github.com/deppfellow/gpthub/internal/lib/job"
	"github.com/deppfellow/gpthub/internal/model"
	"github.com/rs/zerolog"
)

// NewsletterStore persists subscriptions. A repeated address fails with the
// database unique violation.
type NewsletterStore interface {
	CreateNewsletterSubscription(ctx context.Context, input model.InsertNewsletterSubscription) (*model.NewsletterSubscription, error)
}

// NewsletterService handles newsletter sign-ups.
type NewsletterService struct {
	store  NewsletterStore
	jobs   TaskEnqueuer
	logger *zerolog.Logger
}

// NewNewsletterService builds the service. jobs may be nil, in which case no
// welcome email is queued.
func NewNewsletterService(store NewsletterStore, jobs TaskEnqueuer, logger *zerolog.Logger) *NewsletterService {
	return &NewsletterService{store: store, jobs: jobs, logger: logger}
}

// Subscribe stores the subscription and queues the welcome email. A failed
// enqueue is logged; the subscription already exists at that point.
func (s *NewsletterService) Subscribe(ctx context.Context, input model.InsertNewsletterSubscription) (*model.NewsletterSubscription, error) {
	sub, err := s.store.CreateNewsletterSubscription(ctx, input)
	if err != nil {
		return nil, err
	}

	if s.jobs != nil {
		task, err := job.NewNewsletterWelcomeTask(sub.Email)
		if err == nil {
			_, err = s.jobs.EnqueueContext(ctx, task)
		}
		if err != nil {
			requestLogger(ctx, s.logger).Error().
				Err(err).
				Int64("subscription_id", sub.ID).
				Msg("failed to enqueue newsletter welcome email")
		}
	}

	return sub, nil
}

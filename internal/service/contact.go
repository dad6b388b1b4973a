package service

import (
	"context"

	"github.com/deppfellow/gpthub/internal/lib/job"
	"github.com/deppfellow/gpthub/internal/model"
	"github.com/rs/zerolog"
)

// ContactStore persists contact form submissions.
type ContactStore interface {
	CreateContactSubmission(ctx context.Context, input model.InsertContactSubmission) (*model.ContactSubmission, error)
}

// ContactService stores contact submissions and forwards each one to the
// team inbox through the job queue.
type ContactService struct {
	store  ContactStore
	jobs   TaskEnqueuer
	inbox  string
	logger *zerolog.Logger
}

// NewContactService constructs the service.
//
// Notifications are queued only when both jobs and inbox are set; otherwise
// submissions are stored silently. logger is used when a call arrives
// without a request logger in its context.
func NewContactService(store ContactStore, jobs TaskEnqueuer, inbox string, logger *zerolog.Logger) *ContactService {
	return &ContactService{store: store, jobs: jobs, inbox: inbox, logger: logger}
}

// Submit stores the submission and notifies the configured inbox.
func (s *ContactService) Submit(ctx context.Context, input model.InsertContactSubmission) (*model.ContactSubmission, error) {
	sub, err := s.store.CreateContactSubmission(ctx, input)
	if err != nil {
		return nil, err
	}

	if s.jobs != nil && s.inbox != "" {
		task, err := job.NewContactNotificationTask(job.ContactNotificationPayload{
			Inbox:   s.inbox,
			Name:    sub.Name,
			Email:   sub.Email,
			Company: sub.Company,
			Message: sub.Message,
		})
		if err == nil {
			_, err = s.jobs.EnqueueContext(ctx, task)
		}
		if err != nil {
			requestLogger(ctx, s.logger).Error().
				Err(err).
				Int64("submission_id", sub.ID).
				Msg("failed to enqueue contact notification")
		}
	}

	return sub, nil
}

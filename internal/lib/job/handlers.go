package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/deppfellow/gpthub/internal/lib/email"
	"github.com/hibiken/asynq"
)

// EmailSender is the part of email.Client the task handlers use.
type EmailSender interface {
	SendNewsletterWelcomeEmail(to string) error
	SendContactNotificationEmail(inbox string, details email.ContactDetails) error
}

func (j *JobService) handleNewsletterWelcomeTask(ctx context.Context, t *asynq.Task) error {
	var p NewsletterWelcomePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal newsletter welcome payload: %w: %w", err, asynq.SkipRetry)
	}

	j.logger.Info().
		Str("type", TaskNewsletterWelcome).
		Str("to", p.To).
		Msg("processing newsletter welcome email task")

	if err := j.emails.SendNewsletterWelcomeEmail(p.To); err != nil {
		j.logger.Error().
			Str("type", TaskNewsletterWelcome).
			Str("to", p.To).
			Err(err).
			Msg("failed to send newsletter welcome email")
		return err
	}

	j.logger.Info().
		Str("type", TaskNewsletterWelcome).
		Str("to", p.To).
		Msg("sent newsletter welcome email")

	return nil
}

func (j *JobService) handleContactNotificationTask(ctx context.Context, t *asynq.Task) error {
	var p ContactNotificationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal contact notification payload: %w: %w", err, asynq.SkipRetry)
	}

	j.logger.Info().
		Str("type", TaskContactNotification).
		Str("from", p.Email).
		Msg("processing contact notification task")

	err := j.emails.SendContactNotificationEmail(p.Inbox, email.ContactDetails{
		Name:    p.Name,
		Email:   p.Email,
		Company: p.Company,
		Message: p.Message,
	})
	if err != nil {
		j.logger.Error().
			Str("type", TaskContactNotification).
			Str("from", p.Email).
			Err(err).
			Msg("failed to send contact notification")
		return err
	}

	return nil
}

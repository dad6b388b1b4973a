package job

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TaskNewsletterWelcome   = "email:newsletter_welcome"
	TaskContactNotification = "email:contact_notification"
)

// NewsletterWelcomePayload addresses the welcome email.
type NewsletterWelcomePayload struct {
	To string `json:"to"`
}

// ContactNotificationPayload carries the submission to the inbox owner.
type ContactNotificationPayload struct {
	Inbox   string `json:"inbox"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Message string `json:"message"`
}

// NewNewsletterWelcomeTask builds the confirmation email for a new subscriber.
func NewNewsletterWelcomeTask(to string) (*asynq.Task, error) {
	payload, err := json.Marshal(NewsletterWelcomePayload{To: to})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskNewsletterWelcome,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}

// NewContactNotificationTask builds the inbox notification for a contact
// submission. It goes to the critical queue since someone is waiting on a reply.
func NewContactNotificationTask(p ContactNotificationPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskContactNotification,
		payload,
		asynq.MaxRetry(5),
		asynq.Queue("critical"),
		asynq.Timeout(30*time.Second),
	), nil
}

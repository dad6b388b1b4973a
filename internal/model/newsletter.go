package model

import (
	"time"

	"github.com/deppfellow/gpthub/internal/validation"
)

// NewsletterSubscription is a row of newsletter_subscriptions.
// Email is unique; CreatedAt is set by the database on insert.
type NewsletterSubscription struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// InsertNewsletterSubscription is the /api/newsletter contract.
type InsertNewsletterSubscription struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *InsertNewsletterSubscription) Validate() error {
	return validation.Struct(r)
}

package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/gpthub/internal/model"
)

// NewsletterRepository stores newsletter subscriptions. Email uniqueness is
// enforced by the newsletter_subscriptions_email_key constraint, not here.
type NewsletterRepository struct {
	db DBTX
}

// NewNewsletterRepository constructs the repository on db.
func NewNewsletterRepository(db DBTX) *NewsletterRepository {
	return &NewsletterRepository{db: db}
}

const createNewsletterSubscription = `
INSERT INTO newsletter_subscriptions (email)
VALUES ($1)
RETURNING id, email, created_at`

// CreateNewsletterSubscription inserts one subscription. A repeated email
// fails with the unique violation from the database.
func (r *NewsletterRepository) CreateNewsletterSubscription(ctx context.Context, input model.InsertNewsletterSubscription) (*model.NewsletterSubscription, error) {
	var sub model.NewsletterSubscription

	err := r.db.QueryRow(ctx, createNewsletterSubscription, input.Email).
		Scan(&sub.ID, &sub.Email, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert newsletter subscription: %w", err)
	}

	return &sub, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/gpthub/internal/model"
)

// ContactRepository stores contact form submissions.
type ContactRepository struct {
	db DBTX
}

// NewContactRepository constructs the repository on db.
func NewContactRepository(db DBTX) *ContactRepository {
	return &ContactRepository{db: db}
}

const createContactSubmission = `
INSERT INTO contact_submissions (name, email, company, message)
VALUES ($1, $2, $3, $4)
RETURNING id, name, email, company, message, created_at`

// CreateContactSubmission inserts one submission and returns it with its id
// and the database timestamp.
func (r *ContactRepository) CreateContactSubmission(ctx context.Context, input model.InsertContactSubmission) (*model.ContactSubmission, error) {
	var sub model.ContactSubmission

	err := r.db.QueryRow(ctx, createContactSubmission, input.Name, input.Email, input.Company, input.Message).
		Scan(&sub.ID, &sub.Name, &sub.Email, &sub.Company, &sub.Message, &sub.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert contact submission: %w", err)
	}

	return &sub, nil
}

package model

import (
	"time"

	"github.com/deppfellow/gpthub/internal/validation"
)

// ContactSubmission is a row of contact_submissions.
type ContactSubmission struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Company   string    `json:"company" db:"company"`
	Message   string    `json:"message" db:"message"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// InsertContactSubmission is the /api/contact contract. Every field is required.
type InsertContactSubmission struct {
	Name    string `json:"name" validate:"required,notblank"`
	Email   string `json:"email" validate:"required,email"`
	Company string `json:"company" validate:"required,notblank"`
	Message string `json:"message" validate:"required,notblank"`
}

func (r *InsertContactSubmission) Validate() error {
	return validation.Struct(r)
}

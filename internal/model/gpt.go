package model

import (
	"time"

	"github.com/deppfellow/gpthub/internal/validation"
)

// CustomGpt is a directory entry in custom_gpts.
type CustomGpt struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    string    `json:"description" db:"description"`
	Category       string    `json:"category" db:"category"`
	UseCase        string    `json:"useCase" db:"use_case"`
	Author         string    `json:"author" db:"author"`
	URL            string    `json:"url" db:"url"`
	Stars          int       `json:"stars" db:"stars"`
	DateAdded      time.Time `json:"dateAdded" db:"date_added"`
	IsOpenSource   bool      `json:"isOpenSource" db:"is_open_source"`
	PromptExamples []string  `json:"promptExamples" db:"prompt_examples"`
	UserID         *int64    `json:"userId" db:"user_id"`
}

// InsertCustomGpt is the directory submission contract.
// Optional fields are pointers so "omitted" and "zero" stay distinguishable.
type InsertCustomGpt struct {
	Name           string   `json:"name" validate:"required,notblank,max=120"`
	Description    string   `json:"description" validate:"required,notblank"`
	Category       string   `json:"category" validate:"required,notblank,max=60"`
	UseCase        string   `json:"useCase" validate:"required,notblank"`
	Author         string   `json:"author" validate:"required,notblank"`
	URL            string   `json:"url" validate:"required,http_url"`
	Stars          *int     `json:"stars" validate:"omitempty,gte=0"`
	IsOpenSource   *bool    `json:"isOpenSource"`
	PromptExamples []string `json:"promptExamples" validate:"omitempty,max=20,dive,required,notblank"`
	UserID         *int64   `json:"userId" validate:"omitempty,gt=0"`
}

func (r *InsertCustomGpt) Validate() error {
	return validation.Struct(r)
}

// WithDefaults fills omitted optional fields with the column defaults.
func (r InsertCustomGpt) WithDefaults() InsertCustomGpt {
	if r.Stars == nil {
		stars := 0
		r.Stars = &stars
	}
	if r.IsOpenSource == nil {
		openSource := true
		r.IsOpenSource = &openSource
	}
	if r.PromptExamples == nil {
		r.PromptExamples = []string{}
	}
	return r
}

// ListGptsRequest filters the directory listing.
type ListGptsRequest struct {
	Category string `query:"category" validate:"omitempty,max=60"`
}

func (r *ListGptsRequest) Validate() error {
	return validation.Struct(r)
}

// GetGptRequest addresses one directory entry.
type GetGptRequest struct {
	ID int64 `param:"id" validate:"required,gt=0"`
}

func (r *GetGptRequest) Validate() error {
	return validation.Struct(r)
}

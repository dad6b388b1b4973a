package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/gpthub/internal/model"
	"github.com/deppfellow/gpthub/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

// GptStore is the custom GPT directory storage.
//
// It is implemented by GptRepository and by CachedGptRepository, which
// wraps one. Callers cannot tell them apart: the cache returns the same
// values and errors as the table underneath, only faster.
type GptStore interface {
	CreateGpt(ctx context.Context, input model.InsertCustomGpt) (*model.CustomGpt, error)
	ListGpts(ctx context.Context, category string) ([]model.CustomGpt, error)
	GetGpt(ctx context.Context, id int64) (*model.CustomGpt, error)
}

// GptRepository reads and writes the custom_gpts table directly.
//
// Nullable columns with a schema default (stars, is_open_source,
// prompt_examples) are COALESCEd in every SELECT, so rows written outside
// this service still scan into the non-pointer fields of model.CustomGpt.
type GptRepository struct {
	db DBTX
}

// NewGptRepository constructs the repository on db. In production it is
// wrapped by NewCachedGptRepository.
func NewGptRepository(db DBTX) *GptRepository {
	return &GptRepository{db: db}
}

const gptColumns = `id, name, description, category, use_case, author, url,
	COALESCE(stars, 0), date_added, COALESCE(is_open_source, TRUE),
	COALESCE(prompt_examples, '[]'::jsonb), user_id`

func scanGpt(row pgx.Row) (model.CustomGpt, error) {
	var gpt model.CustomGpt
	err := row.Scan(
		&gpt.ID,
		&gpt.Name,
		&gpt.Description,
		&gpt.Category,
		&gpt.UseCase,
		&gpt.Author,
		&gpt.URL,
		&gpt.Stars,
		&gpt.DateAdded,
		&gpt.IsOpenSource,
		&gpt.PromptExamples,
		&gpt.UserID,
	)
	return gpt, err
}

const createGpt = `
INSERT INTO custom_gpts (name, description, category, use_case, author, url, stars, is_open_source, prompt_examples, user_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + gptColumns

// CreateGpt inserts a directory entry. Optional fields are expected to be
// filled already (see model.InsertCustomGpt.WithDefaults).
func (r *GptRepository) CreateGpt(ctx context.Context, input model.InsertCustomGpt) (*model.CustomGpt, error) {
	row := r.db.QueryRow(ctx, createGpt,
		input.Name,
		input.Description,
		input.Category,
		input.UseCase,
		input.Author,
		input.URL,
		input.Stars,
		input.IsOpenSource,
		input.PromptExamples,
		input.UserID,
	)

	gpt, err := scanGpt(row)
	if err != nil {
		return nil, fmt.Errorf("insert custom gpt: %w", err)
	}
	return &gpt, nil
}

const listGpts = `
SELECT ` + gptColumns + `
FROM custom_gpts
WHERE ($1::text = '' OR category = $1)
ORDER BY date_added DESC, id DESC`

// ListGpts returns the directory newest first. An empty category lists all.
func (r *GptRepository) ListGpts(ctx context.Context, category string) ([]model.CustomGpt, error) {
	rows, err := r.db.Query(ctx, listGpts, category)
	if err != nil {
		return nil, fmt.Errorf("list custom gpts: %w", err)
	}

	gpts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.CustomGpt, error) {
		return scanGpt(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan custom gpts: %w", err)
	}
	return gpts, nil
}

const getGpt = `
SELECT ` + gptColumns + `
FROM custom_gpts
WHERE id = $1`

// GetGpt returns one GPT, or a NotFound error naming custom_gpts.
func (r *GptRepository) GetGpt(ctx context.Context, id int64) (*model.CustomGpt, error) {
	gpt, err := scanGpt(r.db.QueryRow(ctx, getGpt, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound("custom_gpts")
	}
	if err != nil {
		return nil, fmt.Errorf("get custom gpt %d: %w", id, err)
	}
	return &gpt, nil
}

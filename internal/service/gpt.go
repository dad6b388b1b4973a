package service

import (
	"context"

	"github.com/deppfellow/gpthub/internal/model"
	"github.com/deppfellow/gpthub/internal/repository"
)

// GptService is the custom GPT directory. It adds nothing but defaults on
// create; caching lives below it in repository.CachedGptRepository.
type GptService struct {
	store repository.GptStore
}

// NewGptService constructs the service over store, which is either the
// plain Postgres repository or its cached wrapper.
func NewGptService(store repository.GptStore) *GptService {
	return &GptService{store: store}
}

// Create fills the optional fields before inserting.
func (s *GptService) Create(ctx context.Context, input model.InsertCustomGpt) (*model.CustomGpt, error) {
	return s.store.CreateGpt(ctx, input.WithDefaults())
}

// List returns the GPTs in category, or all of them for "".
func (s *GptService) List(ctx context.Context, category string) ([]model.CustomGpt, error) {
	return s.store.ListGpts(ctx, category)
}

func (s *GptService) Get(ctx context.Context, id int64) (*model.CustomGpt, error) {
	return s.store.GetGpt(ctx, id)
}

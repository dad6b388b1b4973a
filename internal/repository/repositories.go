// Package repository holds the SQL behind every persisted entity.
//
// Repositories run raw queries through a DBTX so the pgx pool can be swapped
// for a mock in tests. Missing rows are reported with sqlerr.NotFound.
package repository

import (
	"context"

	"github.com/deppfellow/gpthub/internal/server"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool the repositories use.
//
// *pgxpool.Pool, pgx.Tx and pgxmock all satisfy it, so the same repository
// runs on the pool, inside a transaction or against a mock in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories is a container for all repository instances.
type Repositories struct {
	Newsletter *NewsletterRepository
	Contact    *ContactRepository
	User       *UserRepository
	Gpt        *CachedGptRepository
	Forum      *ForumRepository
}

// NewRepositories builds every repository on the server's pool. The GPT
// directory is read through the Redis cache.
func NewRepositories(s *server.Server) *Repositories {
	pool := s.DB.Pool

	return &Repositories{
		Newsletter: NewNewsletterRepository(pool),
		Contact:    NewContactRepository(pool),
		User:       NewUserRepository(pool),
		Gpt:        NewCachedGptRepository(NewGptRepository(pool), s.Redis, s.Config.Cache.GptListTTL, s.Logger),
		Forum:      NewForumRepository(pool),
	}
}

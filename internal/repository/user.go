package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/gpthub/internal/model"
)

// UserRepository stores accounts in the users table.
type UserRepository struct {
	db DBTX
}

// NewUserRepository constructs the repository on db, normally the pgx pool.
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const createUser = `
INSERT INTO users (username, password)
VALUES ($1, $2)
RETURNING id, username, password`

// CreateUser stores a user. passwordHash must already be hashed.
func (r *UserRepository) CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error) {
	var user model.User

	err := r.db.QueryRow(ctx, createUser, username, passwordHash).
		Scan(&user.ID, &user.Username, &user.Password)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	return &user, nil
}

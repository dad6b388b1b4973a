package service

import (
	"context"
	"fmt"

	"github.com/deppfellow/gpthub/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// UserStore persists accounts. It only ever receives the bcrypt hash.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*model.User, error)
}

// UserService registers accounts.
type UserService struct {
	store UserStore
	cost  int
}

// NewUserService hashes with bcrypt.DefaultCost.
func NewUserService(store UserStore) *UserService {
	return &UserService{store: store, cost: bcrypt.DefaultCost}
}

// Register hashes the password and stores the user. Duplicate usernames
// surface as the database's unique violation.
func (s *UserService) Register(ctx context.Context, input model.InsertUser) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return s.store.CreateUser(ctx, input.Username, string(hash))
}

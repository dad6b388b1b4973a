package model

import "github.com/deppfellow/gpthub/internal/validation"

// User is a row of the users table. Password holds the bcrypt hash.
type User struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Password string `json:"-" db:"password"`
}

// InsertUser is the registration contract.
type InsertUser struct {
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (r *InsertUser) Validate() error {
	return validation.Struct(r)
}

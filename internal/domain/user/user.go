package user

import (
	"context"
	"time"
)

// ===============================================
// User Types
// ===============================================

// User is an account that owns tasks and conversations. The password hash
// never leaves this package except through the repository.
type User struct {
	ID           uint   `json:"-"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ===============================================
// User Repository
// ===============================================

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
}

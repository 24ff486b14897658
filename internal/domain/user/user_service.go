package user

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"todo-server/services/todo-api/internal/utils/platformerrors"
)

// UserService handles account registration and credential verification.
type UserService struct {
	repo      UserRepository
	validator *UserValidator
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{
		repo:      repo,
		validator: NewUserValidator(),
	}
}

// Signup registers a new account. Emails are normalized to lowercase so the
// uniqueness check is case-insensitive.
func (s *UserService) Signup(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.validator.ValidateEmail(email); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), nil, "2a3b4c5d-6e7f-4a8b-8c9d-0e1f2a3b4c5d")
	}
	if err := s.validator.ValidatePassword(password); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, err.Error(), nil, "4c5d6e7f-8a9b-4c0d-8e1f-2a3b4c5d6e7f")
	}

	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict, "Email already registered", nil, "6e7f8a9b-0c1d-4e2f-8a3b-4c5d6e7f8a9b")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to hash password")
	}

	now := time.Now().UTC()
	u := &User{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create user")
	}

	return u, nil
}

// Signin verifies credentials. Unknown emails and wrong passwords produce the
// same UNAUTHORIZED error so the response does not leak which accounts exist.
func (s *UserService) Signin(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "Invalid email or password", nil, "8a9b0c1d-2e3f-4a4b-8c5d-6e7f8a9b0c1d")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "Invalid email or password", nil, "0c1d2e3f-4a5b-4c6d-8e7f-8a9b0c1d2e3f")
	}

	return u, nil
}

// GetByID loads a user by primary key.
func (s *UserService) GetByID(ctx context.Context, id uint) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "user not found")
	}
	return u, nil
}

package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-server/services/todo-api/internal/domain/user"
	"todo-server/services/todo-api/internal/utils/platformerrors"
)

type fakeUserRepository struct {
	nextID uint
	users  map[string]*user.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*user.User)}
}

func (f *fakeUserRepository) Create(ctx context.Context, u *user.User) error {
	f.nextID++
	u.ID = f.nextID
	clone := *u
	f.users[u.Email] = &clone
	return nil
}

func (f *fakeUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "user not found", nil, "00000000-0000-4000-8000-000000000006")
	}
	clone := *u
	return &clone, nil
}

func (f *fakeUserRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "user not found", nil, "00000000-0000-4000-8000-000000000007")
}

func TestSignup(t *testing.T) {
	svc := user.NewUserService(newFakeUserRepository())
	ctx := context.Background()

	u, err := svc.Signup(ctx, "Alice@Example.com", "Sup3rSecret")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email, "email should be normalized to lowercase")
	assert.NotEqual(t, "Sup3rSecret", u.PasswordHash, "password must never be stored verbatim")
	assert.NotEmpty(t, u.PasswordHash)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := user.NewUserService(newFakeUserRepository())
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice@example.com", "Sup3rSecret")
	require.NoError(t, err)

	_, err = svc.Signup(ctx, "ALICE@example.com", "An0therPass")
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict), "duplicate email should be CONFLICT, got %v", err)
}

func TestSignupPasswordComplexity(t *testing.T) {
	svc := user.NewUserService(newFakeUserRepository())
	ctx := context.Background()

	cases := []struct {
		name     string
		password string
	}{
		{"too short", "Ab1"},
		{"no uppercase", "lowercase1"},
		{"no lowercase", "UPPERCASE1"},
		{"no digit", "NoDigitsHere"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, "bob@example.com", tc.password)
			require.Error(t, err)
			assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
		})
	}
}

func TestSignin(t *testing.T) {
	svc := user.NewUserService(newFakeUserRepository())
	ctx := context.Background()

	_, err := svc.Signup(ctx, "alice@example.com", "Sup3rSecret")
	require.NoError(t, err)

	u, err := svc.Signin(ctx, "alice@example.com", "Sup3rSecret")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	// Wrong password and unknown email fail identically.
	_, wrongPass := svc.Signin(ctx, "alice@example.com", "WrongPass1")
	_, unknown := svc.Signin(ctx, "nobody@example.com", "Sup3rSecret")
	assert.True(t, platformerrors.IsErrorType(wrongPass, platformerrors.ErrorTypeUnauthorized))
	assert.True(t, platformerrors.IsErrorType(unknown, platformerrors.ErrorTypeUnauthorized))
}

package biz

import (
	"context"
	"fmt"
	"testing"

	apperrors "github.com/lk2023060901/cloudvault-backend/internal/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memUserRepo is an in-memory UserRepo for use case tests
type memUserRepo struct {
	users  map[string]*User // keyed by id
	getErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *User) error {
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	if user, ok := r.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, apperrors.New(apperrors.ErrUserNotFound)
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperrors.New(apperrors.ErrUserNotFound)
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperrors.New(apperrors.ErrUserNotFound)
}

func (r *memUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *memUserRepo) Update(ctx context.Context, user *User) error {
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user with a hashed password", func(t *testing.T) {
		uc := NewUserUseCase(newMemUserRepo())

		user, err := uc.Register(ctx, "alice", "alice@example.com", "s3cret-pass")
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.NotEqual(t, "s3cret-pass", user.PasswordHash, "password must never be stored in the clear")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
	})

	t.Run("rejects a taken username", func(t *testing.T) {
		uc := NewUserUseCase(newMemUserRepo())
		_, err := uc.Register(ctx, "alice", "alice@example.com", "s3cret-pass")
		require.NoError(t, err)

		_, err = uc.Register(ctx, "alice", "other@example.com", "s3cret-pass")
		assert.True(t, apperrors.Is(err, apperrors.ErrUsernameTaken))
	})

	t.Run("rejects a taken email", func(t *testing.T) {
		uc := NewUserUseCase(newMemUserRepo())
		_, err := uc.Register(ctx, "alice", "alice@example.com", "s3cret-pass")
		require.NoError(t, err)

		_, err = uc.Register(ctx, "bob", "alice@example.com", "s3cret-pass")
		assert.True(t, apperrors.Is(err, apperrors.ErrEmailTaken))
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *UserUseCase {
		t.Helper()
		uc := NewUserUseCase(newMemUserRepo())
		_, err := uc.Register(ctx, "alice", "alice@example.com", "s3cret-pass")
		require.NoError(t, err)
		return uc
	}

	t.Run("accepts the username as principal", func(t *testing.T) {
		uc := setup(t)
		user, err := uc.Authenticate(ctx, "alice", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("accepts the email as principal", func(t *testing.T) {
		uc := setup(t)
		user, err := uc.Authenticate(ctx, "alice@example.com", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("wrong password and unknown principal are indistinguishable", func(t *testing.T) {
		uc := setup(t)

		_, errWrongPass := uc.Authenticate(ctx, "alice", "nope")
		_, errUnknown := uc.Authenticate(ctx, "mallory", "nope")

		assert.True(t, apperrors.Is(errWrongPass, apperrors.ErrAuthInvalidCredentials))
		assert.True(t, apperrors.Is(errUnknown, apperrors.ErrAuthInvalidCredentials))
		assert.Equal(t, errWrongPass.Error(), errUnknown.Error())
	})

	t.Run("a lookup failure is not reported as bad credentials", func(t *testing.T) {
		repo := newMemUserRepo()
		repo.getErr = fmt.Errorf("connection refused")
		uc := NewUserUseCase(repo)

		_, err := uc.Authenticate(ctx, "alice", "s3cret-pass")
		require.Error(t, err)
		assert.False(t, apperrors.Is(err, apperrors.ErrAuthInvalidCredentials))
		assert.True(t, apperrors.Is(err, apperrors.ErrInternalServer))
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	uc := NewUserUseCase(newMemUserRepo())

	user, err := uc.Register(ctx, "alice", "alice@example.com", "s3cret-pass")
	require.NoError(t, err)

	found, err := uc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, found.Username)

	_, err = uc.Get(ctx, "no-such-user")
	assert.True(t, apperrors.Is(err, apperrors.ErrUserNotFound))
}

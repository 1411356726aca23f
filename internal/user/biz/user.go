package biz

import (
	"context"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/lk2023060901/cloudvault-backend/internal/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// User represents the domain model. Username and email are unique across
// all users; lookups are case-sensitive.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRepo defines the interface for user data operations
type UserRepo interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *User) error
}

// UserUseCase contains business logic for registration and authentication
type UserUseCase struct {
	repo UserRepo
}

func NewUserUseCase(repo UserRepo) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// Register creates a new user with a hashed password. Username and email
// collisions surface as conflicts.
func (uc *UserUseCase) Register(ctx context.Context, username, email, password string) (*User, error) {
	taken, err := uc.repo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	if taken {
		return nil, apperrors.New(apperrors.ErrUsernameTaken)
	}

	taken, err = uc.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	if taken {
		return nil, apperrors.New(apperrors.ErrEmailTaken)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer, "failed to hash password")
	}

	now := time.Now()
	user := &User{
		ID:           uuid.Must(uuid.NewV7()).String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	return user, nil
}

// Authenticate verifies the credentials for a username or email principal.
// Unknown principal and wrong password are indistinguishable to the caller;
// infrastructure failures are not disguised as bad credentials.
func (uc *UserUseCase) Authenticate(ctx context.Context, account, password string) (*User, error) {
	user, err := uc.repo.GetByUsername(ctx, account)
	if apperrors.Is(err, apperrors.ErrUserNotFound) {
		user, err = uc.repo.GetByEmail(ctx, account)
	}
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.New(apperrors.ErrAuthInvalidCredentials)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.New(apperrors.ErrAuthInvalidCredentials)
	}

	return user, nil
}

// Get returns the user with the given id
func (uc *UserUseCase) Get(ctx context.Context, id string) (*User, error) {
	user, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternalServer)
	}
	return user, nil
}

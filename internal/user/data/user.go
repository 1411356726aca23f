package data

import (
	"context"
	"time"

	"github.com/lk2023060901/cloudvault-backend/internal/pkg/database"
	apperrors "github.com/lk2023060901/cloudvault-backend/internal/pkg/errors"
	"github.com/lk2023060901/cloudvault-backend/internal/user/biz"
	"gorm.io/gorm"
)

// UserPO represents the database model
type UserPO struct {
	ID           string    `gorm:"type:uuid;primarykey"`
	Username     string    `gorm:"size:100;not null;uniqueIndex:idx_users_username"`
	Email        string    `gorm:"size:255;not null;uniqueIndex:idx_users_email"`
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (UserPO) TableName() string {
	return "users"
}

// UserRepo implements biz.UserRepo
type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) biz.UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *biz.User) error {
	if err := r.db.WithContext(ctx).Create(r.toPO(user)).Error; err != nil {
		// Two signups can race past the exists checks; the unique index
		// is the backstop.
		if database.IsDuplicateKeyError(err) {
			return apperrors.Wrap(err, apperrors.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*biz.User, error) {
	return r.getBy(ctx, "id = ?", id)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*biz.User, error) {
	return r.getBy(ctx, "username = ?", username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*biz.User, error) {
	return r.getBy(ctx, "email = ?", email)
}

// getBy distinguishes an absent row from an infrastructure failure so
// callers can tell the two apart.
func (r *UserRepo) getBy(ctx context.Context, cond string, arg interface{}) (*biz.User, error) {
	var po UserPO
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&po).Error; err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, apperrors.New(apperrors.ErrUserNotFound)
		}
		return nil, err
	}
	return r.toUser(&po), nil
}

func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&UserPO{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&UserPO{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepo) Update(ctx context.Context, user *biz.User) error {
	return r.db.WithContext(ctx).
		Model(&UserPO{}).
		Where("id = ?", user.ID).
		Updates(r.toPO(user)).Error
}

func (r *UserRepo) toPO(user *biz.User) *UserPO {
	return &UserPO{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func (r *UserRepo) toUser(po *UserPO) *biz.User {
	return &biz.User{
		ID:           po.ID,
		Username:     po.Username,
		Email:        po.Email,
		PasswordHash: po.PasswordHash,
		CreatedAt:    po.CreatedAt,
		UpdatedAt:    po.UpdatedAt,
	}
}

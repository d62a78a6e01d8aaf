package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bracula/campus/internal/models"
	appErr "github.com/bracula/campus/pkg/errors"
)

// UserRepository is the credential store.
type UserRepository interface {
	BaseRepository[models.User]
	// WithTx binds the repository to a transaction handle.
	WithTx(tx *gorm.DB) UserRepository
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	StudentIDExists(ctx context.Context, studentID string) (bool, error)
	// GetProfile returns the user without the password hash.
	GetProfile(ctx context.Context, id int64) (*models.UserProfile, error)
	// UpdateProfile changes only name, avatar, bio and interests.
	UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) error
}

type userRepository struct {
	BaseRepository[models.User]
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{BaseRepository: NewBaseRepository[models.User](db), db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return NewUserRepository(tx)
}

// Create inserts the user. A unique-index race with a concurrent registration
// is reported as the matching duplicate error, not a storage failure.
func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		return userWriteError(err, "create user failed")
	}
	return nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErr.New(appErr.CodeNotFound, "user not found")
		}
		return nil, storageError(err, "get user by email failed")
	}
	return &u, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *userRepository) StudentIDExists(ctx context.Context, studentID string) (bool, error) {
	return r.exists(ctx, "student_id = ?", studentID)
}

func (r *userRepository) exists(ctx context.Context, cond string, arg any) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where(cond, arg).Count(&n).Error; err != nil {
		return false, storageError(err, "user uniqueness check failed")
	}
	return n > 0, nil
}

func (r *userRepository) GetProfile(ctx context.Context, id int64) (*models.UserProfile, error) {
	var p models.UserProfile
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("user_id = ?", id).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appErr.New(appErr.CodeNotFound, "user not found")
		}
		return nil, storageError(err, "get user profile failed")
	}
	return &p, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) error {
	cols := map[string]any{}
	if upd.FullName != nil {
		cols["full_name"] = *upd.FullName
	}
	if upd.AvatarURL != nil {
		cols["avatar_url"] = *upd.AvatarURL
	}
	if upd.Bio != nil {
		cols["bio"] = *upd.Bio
	}
	if upd.Interests != nil {
		cols["interests"] = upd.Interests
	}
	if len(cols) == 0 {
		return appErr.New(appErr.CodeInvalid, "no fields to update")
	}

	res := r.db.WithContext(ctx).Model(&models.User{}).Where("user_id = ?", id).Updates(cols)
	if res.Error != nil {
		return userWriteError(res.Error, "update user profile failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeNotFound, "user not found")
	}
	return nil
}

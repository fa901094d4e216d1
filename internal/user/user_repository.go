package user

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"moodfeed/internal/common"
	"moodfeed/internal/dbsql"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *dbsql.User) error
	GetUserByID(ctx context.Context, userID uint64) (*dbsql.User, error)
	GetUserByUsername(ctx context.Context, username string) (*dbsql.User, error)
	UpdateProfile(ctx context.Context, userID uint64, patch UserPatch) error
	CheckUserExists(ctx context.Context, username string) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateUser maps a unique index hit on username to Conflict so concurrent
// registrations of the same name fail cleanly.
func (r *userRepository) CreateUser(ctx context.Context, user *dbsql.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if err != nil {
		if dbsql.IsUniqueViolation(err) {
			return common.Conflict("username %q already exists", user.Username)
		}
		return common.Internal(errors.Wrap(err, "insert user"), "failed to create user")
	}
	return nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID uint64) (*dbsql.User, error) {
	var user dbsql.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if dbsql.IsNotFound(err) {
			return nil, common.NotFound("user %d not found", userID)
		}
		return nil, common.Internal(errors.Wrap(err, "select user"), "failed to get user")
	}
	return &user, nil
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*dbsql.User, error) {
	var user dbsql.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if dbsql.IsNotFound(err) {
			return nil, common.NotFound("user %q not found", username)
		}
		return nil, common.Internal(errors.Wrap(err, "select user"), "failed to get user")
	}
	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, userID uint64, patch UserPatch) error {
	cols := patch.columns()
	if len(cols) == 0 {
		return common.Validation("no fields to update")
	}

	result := r.db.WithContext(ctx).Model(&dbsql.User{}).Where("id = ?", userID).Updates(cols)
	if result.Error != nil {
		return common.Internal(errors.Wrap(result.Error, "update user"), "failed to update profile")
	}
	if result.RowsAffected == 0 {
		return common.NotFound("user %d not found", userID)
	}
	return nil
}

func (r *userRepository) CheckUserExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbsql.User{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		return false, common.Internal(errors.Wrap(err, "count users"), "failed to check username")
	}
	return count > 0, nil
}

package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"userauth/internal/model"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when the store rejects a second account
	// with the same email.
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, id string, update model.UserUpdate) (*model.User, error)
	Delete(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository builds a GORM-backed repository. The DB must be
// opened with TranslateError so unique violations surface as
// gorm.ErrDuplicatedKey.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, translateGormError(err)
	}
	return user, nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

func (r *gormUserRepository) Update(ctx context.Context, id string, update model.UserUpdate) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return err
		}
		if update.IsEmpty() {
			return nil
		}
		if err := tx.Model(&user).Updates(updateColumns(update)).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&user).Error
	})
	if err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

func (r *gormUserRepository) Delete(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.User{}).Error
	})
	if err != nil {
		return nil, translateGormError(err)
	}
	return &user, nil
}

func (r *gormUserRepository) List(ctx context.Context) ([]model.User, error) {
	users := []model.User{}
	if err := r.db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// updateColumns maps the set fields of update to column names.
func updateColumns(update model.UserUpdate) map[string]interface{} {
	cols := map[string]interface{}{}
	if update.FirstName != nil {
		cols["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		cols["last_name"] = *update.LastName
	}
	if update.Email != nil {
		cols["email"] = *update.Email
	}
	if update.PasswordHash != nil {
		cols["password"] = *update.PasswordHash
	}
	if update.Token != nil {
		cols["token"] = *update.Token
	}
	if update.Status != nil {
		cols["status"] = *update.Status
	}
	if update.Role != nil {
		cols["role"] = *update.Role
	}
	return cols
}

func translateGormError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateEmail
	default:
		return err
	}
}

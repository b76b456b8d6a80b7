package repository

import (
	"context"
	"errors"

	"github.com/ktsujino/inventory-backend/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByUID(ctx context.Context, uid string) (*model.User, error)
	FindOrCreateByUID(ctx context.Context, uid string) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("uid = ?", uid).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindOrCreateByUID(ctx context.Context, uid string) (*model.User, error) {
	user, err := r.FindByUID(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	created := &model.User{UID: uid}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		// Lost a race against a concurrent first request for the same uid.
		if existing, ferr := r.FindByUID(ctx, uid); ferr == nil {
			return existing, nil
		}
		return nil, err
	}
	return created, nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ktsujino/inventory-backend/internal/model"
	"github.com/ktsujino/inventory-backend/internal/repository"
	"gorm.io/gorm"
)

type CategoryService interface {
	Create(ctx context.Context, userID uint64, name string) (*model.Category, error)
	List(ctx context.Context, userID uint64) ([]model.Category, error)
	Update(ctx context.Context, userID uint64, id uint64, name string) (*model.Category, error)
	Delete(ctx context.Context, userID uint64, id uint64) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) Create(ctx context.Context, userID uint64, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 120 {
		return nil, newValidationError("name", "invalid category name")
	}
	category := &model.Category{UserID: userID, Name: name}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context, userID uint64) ([]model.Category, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *categoryService) Update(ctx context.Context, userID uint64, id uint64, name string) (*model.Category, error) {
	category, err := s.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 120 {
		return nil, newValidationError("name", "invalid category name")
	}
	category.Name = name
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, userID uint64, id uint64) error {
	category, err := s.get(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, category)
}

func (s *categoryService) get(ctx context.Context, userID uint64, id uint64) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if category.UserID != userID {
		return nil, ErrForbidden
	}
	return category, nil
}

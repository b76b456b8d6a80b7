package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ktsujino/inventory-backend/internal/model"
	"github.com/ktsujino/inventory-backend/internal/repository"
	"gorm.io/gorm"
)

// ProductInput carries the writable product template fields.
type ProductInput struct {
	Name        string
	Brand       string
	ModelNumber string
	Spec        string
	Barcode     string
	CategoryID  *uint64
}

type ProductService interface {
	Create(ctx context.Context, userID uint64, in ProductInput) (*model.Product, error)
	Get(ctx context.Context, userID uint64, id uint64) (*model.Product, error)
	List(ctx context.Context, userID uint64) ([]model.Product, error)
	Update(ctx context.Context, userID uint64, id uint64, in ProductInput) (*model.Product, error)
	Delete(ctx context.Context, userID uint64, id uint64) error
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

func (s *productService) Create(ctx context.Context, userID uint64, in ProductInput) (*model.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, newValidationError("name", "name is required")
	}
	product := &model.Product{
		UserID:      userID,
		Name:        in.Name,
		Brand:       in.Brand,
		ModelNumber: in.ModelNumber,
		Spec:        in.Spec,
		Barcode:     in.Barcode,
		CategoryID:  in.CategoryID,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Get(ctx context.Context, userID uint64, id uint64) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if product.UserID != userID {
		return nil, ErrForbidden
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, userID uint64) ([]model.Product, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *productService) Update(ctx context.Context, userID uint64, id uint64, in ProductInput) (*model.Product, error) {
	product, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, newValidationError("name", "name is required")
	}
	product.Name = in.Name
	product.Brand = in.Brand
	product.ModelNumber = in.ModelNumber
	product.Spec = in.Spec
	product.Barcode = in.Barcode
	product.CategoryID = in.CategoryID
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, userID uint64, id uint64) error {
	product, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, product)
}

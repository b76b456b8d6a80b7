package repository

import (
	"context"

	"github.com/ktsujino/inventory-backend/internal/model"
	"gorm.io/gorm"
)

type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	FindByShortID(ctx context.Context, shortID string) (*model.Item, error)
	ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Item, int64, error)
	Update(ctx context.Context, item *model.Item) error
	Delete(ctx context.Context, item *model.Item) error
}

type itemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *itemRepository) FindByShortID(ctx context.Context, shortID string) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_images.sort_order asc")
		}).
		Preload("Images.Image").
		Preload("Product").
		Where("short_id = ?", shortID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *itemRepository) ListByUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Item, int64, error) {
	var (
		items []model.Item
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.Item{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := q.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_images.sort_order asc")
		}).
		Preload("Images.Image").
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *itemRepository) Update(ctx context.Context, item *model.Item) error {
	// Explicit column list so lifecycle timestamps can be cleared back to NULL.
	return r.db.WithContext(ctx).Model(item).
		Select("name", "description", "location", "price", "barcode", "serial_number",
			"product_id", "purchased_at", "received_at", "used_at", "discarded_at", "expiration_date").
		Updates(item).Error
}

func (r *itemRepository) Delete(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Delete(item).Error
}

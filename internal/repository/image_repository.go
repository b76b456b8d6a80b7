package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ktsujino/inventory-backend/internal/model"
	"gorm.io/gorm"
)

// Attachment describes one image to link to an item with its display rank.
type Attachment struct {
	ImageID   uint64
	SortOrder int
}

// ImageFilter narrows image listings.
type ImageFilter struct {
	Status   *model.ImageStatus
	HasItems *bool
}

type ImageRepository interface {
	Create(ctx context.Context, image *model.Image) error
	FindByUUID(ctx context.Context, uuid string) (*model.Image, error)
	ListByUser(ctx context.Context, userID uint64, filter ImageFilter) ([]model.Image, error)
	ListByItem(ctx context.Context, itemID uint64) ([]model.ItemImage, error)
	// ApplyAttachments detaches and attaches join rows in one transaction.
	// Usage counts move via conditional single-statement updates so concurrent
	// batches on the same image cannot lose increments.
	ApplyAttachments(ctx context.Context, itemID uint64, detach []uint64, attach []Attachment) error
	ListOrphanDrafts(ctx context.Context, updatedBefore time.Time) ([]model.Image, error)
	CountItemLinks(ctx context.Context, imageID uint64) (int64, error)
	Delete(ctx context.Context, image *model.Image) error
}

type imageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *model.Image) error {
	return r.db.WithContext(ctx).Create(image).Error
}

func (r *imageRepository) FindByUUID(ctx context.Context, uuid string) (*model.Image, error) {
	var image model.Image
	if err := r.db.WithContext(ctx).Where("uuid = ?", uuid).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *imageRepository) ListByUser(ctx context.Context, userID uint64, filter ImageFilter) ([]model.Image, error) {
	q := r.db.WithContext(ctx).Model(&model.Image{}).Where("user_id = ?", userID)
	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}
	if filter.HasItems != nil {
		sub := "EXISTS (SELECT 1 FROM item_images WHERE item_images.image_id = images.id)"
		if *filter.HasItems {
			q = q.Where(sub)
		} else {
			q = q.Where("NOT " + sub)
		}
	}
	var images []model.Image
	if err := q.Order("created_at desc").Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (r *imageRepository) ListByItem(ctx context.Context, itemID uint64) ([]model.ItemImage, error) {
	var links []model.ItemImage
	if err := r.db.WithContext(ctx).
		Preload("Image").
		Where("item_id = ?", itemID).
		Order("sort_order asc").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

func (r *imageRepository) ApplyAttachments(ctx context.Context, itemID uint64, detach []uint64, attach []Attachment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, imageID := range detach {
			res := tx.Where("item_id = ? AND image_id = ?", itemID, imageID).Delete(&model.ItemImage{})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			// status is assigned before usage_count so both CASEs read the
			// pre-update count on MySQL's left-to-right evaluation.
			if err := tx.Exec(
				`UPDATE images SET
					status = CASE WHEN usage_count <= 1 THEN 'draft' ELSE status END,
					usage_count = CASE WHEN usage_count > 0 THEN usage_count - 1 ELSE 0 END
				WHERE id = ?`, imageID).Error; err != nil {
				return err
			}
		}
		for _, a := range attach {
			var existing model.ItemImage
			err := tx.Where("item_id = ? AND image_id = ?", itemID, a.ImageID).First(&existing).Error
			if err == nil {
				continue // already attached, keep the count as-is
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			link := model.ItemImage{ItemID: itemID, ImageID: a.ImageID, SortOrder: a.SortOrder}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
			if err := tx.Exec(
				`UPDATE images SET status = 'used', usage_count = usage_count + 1 WHERE id = ?`,
				a.ImageID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *imageRepository) ListOrphanDrafts(ctx context.Context, updatedBefore time.Time) ([]model.Image, error) {
	var images []model.Image
	if err := r.db.WithContext(ctx).
		Where("status = ? AND usage_count = 0", model.ImageStatusDraft).
		Where("updated_at < ?", updatedBefore).
		Where("NOT EXISTS (SELECT 1 FROM item_images WHERE item_images.image_id = images.id)").
		Find(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

func (r *imageRepository) CountItemLinks(ctx context.Context, imageID uint64) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.ItemImage{}).
		Where("image_id = ?", imageID).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *imageRepository) Delete(ctx context.Context, image *model.Image) error {
	return r.db.WithContext(ctx).Delete(image).Error
}

package model

import "time"

// ItemImage is the join row between an item and an attached image. SortOrder
// is 1-based and controls display order within the item.
type ItemImage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ItemID    uint64    `gorm:"not null;uniqueIndex:uk_item_images_item_image"`
	ImageID   uint64    `gorm:"not null;uniqueIndex:uk_item_images_item_image;index:idx_item_images_image_id"`
	SortOrder int       `gorm:"not null"`
	Image     Image     `gorm:"foreignKey:ImageID"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (ItemImage) TableName() string {
	return "item_images"
}

package model

import (
	"fmt"
	"time"
)

type ImageStatus string

const (
	ImageStatusDraft ImageStatus = "draft"
	ImageStatusUsed  ImageStatus = "used"
)

type Image struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement"`
	UUID string `gorm:"size:36;not null;uniqueIndex:uk_images_uuid"`
	// ImagePath is the random basename shared by all three stored variants,
	// not a full object path.
	ImagePath         string      `gorm:"size:64;not null"`
	OriginalExtension string      `gorm:"size:16;not null"`
	Status            ImageStatus `gorm:"size:16;not null;default:draft"`
	UsageCount        uint        `gorm:"not null;default:0"`
	UserID            uint64      `gorm:"not null;index:idx_images_user_id"`
	CreatedAt         time.Time   `gorm:"autoCreateTime"`
	UpdatedAt         time.Time   `gorm:"autoUpdateTime"`
}

func (Image) TableName() string {
	return "images"
}

// OriginalPath is the object path of the stored original, byte-identical to
// the upload.
func (i *Image) OriginalPath() string {
	return fmt.Sprintf("%s/original_%s.%s", i.UUID, i.ImagePath, i.OriginalExtension)
}

func (i *Image) PreviewPath() string {
	return fmt.Sprintf("%s/preview_%s.webp", i.UUID, i.ImagePath)
}

func (i *Image) ThumbPath() string {
	return fmt.Sprintf("%s/thumb_%s.webp", i.UUID, i.ImagePath)
}

package model

import "time"

type Item struct {
	ID           uint64  `gorm:"primaryKey;autoIncrement"`
	UUID         string  `gorm:"size:36;not null;uniqueIndex:uk_items_uuid"`
	ShortID      string  `gorm:"size:12;not null;uniqueIndex:uk_items_short_id"`
	UserID       uint64  `gorm:"not null;index:idx_items_user_id"`
	Name         string  `gorm:"size:120;not null"`
	Description  string  `gorm:"type:text"`
	Location     string  `gorm:"size:120"`
	Price        *uint   `gorm:""`
	Barcode      string  `gorm:"size:64"`
	SerialNumber string  `gorm:"size:64"`
	ProductID    *uint64 `gorm:"index:idx_items_product_id"`

	PurchasedAt    *time.Time `gorm:"type:date"`
	ReceivedAt     *time.Time `gorm:"type:date"`
	UsedAt         *time.Time `gorm:"type:date"`
	DiscardedAt    *time.Time `gorm:"type:date"`
	ExpirationDate *time.Time `gorm:"type:date"`

	Product *Product    `gorm:"foreignKey:ProductID"`
	Images  []ItemImage `gorm:"foreignKey:ItemID"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Item) TableName() string {
	return "items"
}

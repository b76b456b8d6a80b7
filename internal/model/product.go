package model

import "time"

// Product is a reusable template (brand/model/spec) an item may reference.
type Product struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement"`
	UserID      uint64  `gorm:"not null;index:idx_products_user_id"`
	Name        string  `gorm:"size:120;not null"`
	Brand       string  `gorm:"size:120"`
	ModelNumber string  `gorm:"size:64"`
	Spec        string  `gorm:"type:text"`
	Barcode     string  `gorm:"size:64"`
	CategoryID  *uint64 `gorm:"index:idx_products_category_id"`

	Category *Category `gorm:"foreignKey:CategoryID"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}

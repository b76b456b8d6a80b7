package model

import "time"

type User struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	UID         string    `gorm:"size:128;not null;uniqueIndex:uk_users_uid"`
	DisplayName string    `gorm:"size:120"`
	Email       string    `gorm:"size:255"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

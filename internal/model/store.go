package model

import (
	"time"

	"gorm.io/gorm"
)

// Store 门店：库存按 (product, store) 维度挂在 StoreInventory 上。
type Store struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name      string   `gorm:"size:255;not null" json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (Store) TableName() string { return "stores" }

package model

import (
	"time"

	"gorm.io/gorm"
)

// ProductCategory 商品分类
type ProductCategory struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name    string `gorm:"size:100;not null" json:"name"`
	IconURL string `gorm:"size:500" json:"icon_url"`
}

func (ProductCategory) TableName() string { return "product_categories" }

// Product 目录商品：价格与标签的不可变记录，库存挂在 StoreInventory。
type Product struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CategoryID *uint            `gorm:"index" json:"category_id"`
	Category   *ProductCategory `json:"category,omitempty"`

	Name       string  `gorm:"size:255;not null" json:"name"`
	Unit       string  `gorm:"size:50" json:"unit"`
	BuyPrice   float64 `gorm:"not null" json:"buy_price"`
	SellPrice  float64 `gorm:"not null" json:"sell_price"`
	PictureURL string  `gorm:"size:500" json:"picture_url"`
	Tags       string  `json:"tags"`
}

func (Product) TableName() string { return "products" }

// StoreInventory is the per-(product, store) stock row. Stock only moves
// inside the order engine's transaction; SoldCount is monotonic.
type StoreInventory struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ProductID uint     `gorm:"not null;uniqueIndex:idx_inventory_product_store" json:"product_id"`
	Product   *Product `json:"product,omitempty"`
	StoreID   uint     `gorm:"not null;uniqueIndex:idx_inventory_product_store" json:"store_id"`

	Stock     int `gorm:"not null;default:0" json:"stock"`
	SoldCount int `gorm:"not null;default:0" json:"sold_count"`
}

func (StoreInventory) TableName() string { return "store_inventories" }

package model

import (
	"time"

	"gorm.io/gorm"
)

// Flashsale 秒杀活动：时间窗挂在活动上，库存与折扣挂在 FlashsaleOffer 上。
type Flashsale struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name      string     `gorm:"size:255;not null" json:"name"`
	BannerURL string     `gorm:"size:500" json:"banner_url"`
	StartsAt  *time.Time `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
}

func (Flashsale) TableName() string { return "flashsales" }

// FlashsaleOffer puts one inventory row into one flashsale, with its own
// capped stock independent of the base stock. At order time at most one
// offer applies per inventory row: active window and remaining stock >= qty.
type FlashsaleOffer struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	InventoryID uint       `gorm:"not null;index" json:"inventory_id"`
	FlashsaleID uint       `gorm:"not null;index" json:"flashsale_id"`
	Flashsale   *Flashsale `json:"flashsale,omitempty"`

	DiscountPercent float64 `gorm:"not null;default:0" json:"discount_percent"`
	Stock           int     `gorm:"not null;default:0" json:"stock"`
	SoldCount       int     `gorm:"not null;default:0" json:"sold_count"`
	QuantityLimit   int     `gorm:"not null;default:0" json:"quantity_limit"`
}

func (FlashsaleOffer) TableName() string { return "flashsale_offers" }

// Discount 普通折扣定义（百分比），通过 DiscountOffer 绑定到库存行。
type Discount struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Label   string  `gorm:"size:100;not null" json:"label"`
	Percent float64 `gorm:"not null;default:0" json:"percent"`
}

func (Discount) TableName() string { return "discounts" }

// DiscountOffer applies a Discount to an inventory row within a time window.
// It only prices the line when no flashsale offer matched.
type DiscountOffer struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	InventoryID uint      `gorm:"not null;index" json:"inventory_id"`
	DiscountID  uint      `gorm:"not null;index" json:"discount_id"`
	Discount    *Discount `json:"discount,omitempty"`

	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

func (DiscountOffer) TableName() string { return "discount_offers" }

// PointRule 积分规则：独立于价格路径，可与任一折扣叠加。EndsAt 为空表示不限期。
type PointRule struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	InventoryID  uint       `gorm:"not null;index" json:"inventory_id"`
	PointsEarned int        `gorm:"not null;default:0" json:"points_earned"`
	StartsAt     *time.Time `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
}

func (PointRule) TableName() string { return "point_rules" }

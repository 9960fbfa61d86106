package model

import (
	"time"

	"gorm.io/gorm"
)

// CartLine 购物车行：同一用户同一商品只存一行，重复加购走数量合并。
// 只有 IsChecked 的行参与结算。
type CartLine struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID    uint     `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uint     `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Product   *Product `json:"product,omitempty"`

	Quantity  int  `gorm:"not null;default:1" json:"quantity"`
	IsChecked bool `gorm:"not null;default:true" json:"is_checked"`
}

func (CartLine) TableName() string { return "cart_lines" }

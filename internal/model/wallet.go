package model

import (
	"time"

	"gorm.io/gorm"
)

// UserWallet 用户钱包：AccountNumber 会被快照到订单支付记录上。
type UserWallet struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID        uint    `gorm:"not null;uniqueIndex" json:"user_id"`
	AccountNumber string  `gorm:"size:50;uniqueIndex;not null" json:"account_number"`
	Balance       float64 `gorm:"not null;default:0" json:"balance"`
}

func (UserWallet) TableName() string { return "user_wallets" }

package model

import (
	"time"

	"gorm.io/gorm"
)

// PaymentMethod 支付方式：手续费与支付折扣的平面参考数据。
type PaymentMethod struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string  `gorm:"size:100;not null" json:"name"`
	Fee      float64 `gorm:"not null;default:0" json:"fee"`
	Discount float64 `gorm:"not null;default:0" json:"discount"`
}

func (PaymentMethod) TableName() string { return "payment_methods" }

// OrderPayment is created once per order, after the lines are finalized.
// Its creation is the trigger for the external gateway transaction; the
// gateway worker later writes back TransactionToken and the redirect URL.
type OrderPayment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrderID         uint           `gorm:"not null;index" json:"order_id"`
	PaymentMethodID *uint          `json:"payment_method_id"`
	PaymentMethod   *PaymentMethod `json:"payment_method,omitempty"`

	AccountNumber          string  `gorm:"size:50" json:"account_number"`
	TransactionToken       *string `gorm:"size:255" json:"transaction_token"`
	TransactionRedirectURL *string `gorm:"size:255" json:"transaction_redirect_url"`

	VoucherClaimID *uint         `json:"voucher_claim_id"`
	VoucherClaim   *VoucherClaim `json:"voucher_claim,omitempty"`

	Status     string     `gorm:"size:20;not null;default:pending" json:"status"`
	FinishedAt *time.Time `json:"finished_at"`
}

func (OrderPayment) TableName() string { return "order_payments" }

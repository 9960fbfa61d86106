package model

import (
	"time"

	"gorm.io/gorm"
)

// Voucher source types. Code vouchers are redeemed by entering a code;
// the reward variants are granted through membership tier or point balance.
const (
	VoucherSourceCode             = "code"
	VoucherSourceOffer            = "offer"
	VoucherSourceMembershipReward = "membership_reward"
	VoucherSourcePointRedeem      = "point_redeem"
)

// Voucher 代金券定义：门槛（件数/金额）、折扣比例与封顶、有效期。
type Voucher struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string `gorm:"size:255;not null" json:"name"`
	SourceType  string `gorm:"size:20;not null" json:"source_type"`
	Description string `json:"description"`

	MinItemQuantity    int      `gorm:"not null;default:0" json:"min_item_quantity"`
	MinItemCost        float64  `gorm:"not null;default:0" json:"min_item_cost"`
	DiscountPercent    float64  `gorm:"not null;default:0" json:"discount_percent"`
	MaxNominalDiscount *float64 `json:"max_nominal_discount"`

	StartsAt  *time.Time `json:"starts_at"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (Voucher) TableName() string { return "vouchers" }

// VoucherCode 兑换码：码本身可以有独立于券的时间窗。
type VoucherCode struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	VoucherID uint     `gorm:"not null;uniqueIndex" json:"voucher_id"`
	Voucher   *Voucher `json:"voucher,omitempty"`
	Code      string   `gorm:"size:50;uniqueIndex;not null" json:"code"`

	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

func (VoucherCode) TableName() string { return "voucher_codes" }

// VoucherMembershipReward gates a voucher to exactly one membership tier.
type VoucherMembershipReward struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	VoucherID uint            `gorm:"not null;uniqueIndex" json:"voucher_id"`
	TierID    uint            `gorm:"not null" json:"tier_id"`
	Tier      *MembershipTier `json:"tier,omitempty"`

	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

func (VoucherMembershipReward) TableName() string { return "voucher_membership_rewards" }

// VoucherPointRedeem prices a voucher in loyalty points, optionally gated by
// a minimum tier. Points are deducted when the claim is created, not when the
// order consumes it.
type VoucherPointRedeem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	VoucherID      uint            `gorm:"not null;uniqueIndex" json:"voucher_id"`
	PointsRequired int             `gorm:"not null" json:"points_required"`
	MinTierID      *uint           `json:"min_tier_id"`
	MinTier        *MembershipTier `gorm:"foreignKey:MinTierID" json:"min_tier,omitempty"`
}

func (VoucherPointRedeem) TableName() string { return "voucher_point_redeems" }

// VoucherClaim 用户对某张券的一次性使用权：IsUsed 只会 false→true 一次，
// 在订单创建事务内翻转，结算试算绝不消费它。
type VoucherClaim struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID    uint     `gorm:"not null;uniqueIndex:idx_claim_user_voucher" json:"user_id"`
	VoucherID uint     `gorm:"not null;uniqueIndex:idx_claim_user_voucher" json:"voucher_id"`
	Voucher   *Voucher `json:"voucher,omitempty"`
	IsUsed    bool     `gorm:"not null;default:false" json:"is_used"`
}

func (VoucherClaim) TableName() string { return "voucher_claims" }

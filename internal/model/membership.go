package model

import (
	"time"

	"gorm.io/gorm"
)

// MembershipTier 会员等级：Level 连续递增，晋升逐级进行。
type MembershipTier struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Level          int    `gorm:"not null;uniqueIndex" json:"level"`
	Name           string `gorm:"size:20;uniqueIndex;not null" json:"name"`
	Description    string `json:"description"`
	MinPointEarned int    `gorm:"not null;default:0" json:"min_point_earned"`
}

func (MembershipTier) TableName() string { return "membership_tiers" }

// UserMembership tracks accumulated points and the current tier.
// LevelUpPoint is the points still needed to reach the next tier; it may go
// negative after an award, which is what triggers a tier recompute.
type UserMembership struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID       uint            `gorm:"not null;uniqueIndex" json:"user_id"`
	ReferralCode *string         `gorm:"size:20;uniqueIndex" json:"referral_code"`
	Point        int             `gorm:"not null;default:0" json:"point"`
	TierID       *uint           `json:"tier_id"`
	Tier         *MembershipTier `json:"tier,omitempty"`
	AttachedAt   time.Time       `json:"attached_at"`
	EndedAt      *time.Time      `json:"ended_at"`
	LevelUpPoint int             `gorm:"not null;default:0" json:"level_up_point"`
}

func (UserMembership) TableName() string { return "user_memberships" }

// UserMembershipHistory 晋升历史：每次升级追加一行，记录新档期。
type UserMembershipHistory struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	MembershipID uint       `gorm:"not null;index" json:"membership_id"`
	TierID       uint       `gorm:"not null" json:"tier_id"`
	AttachedAt   time.Time  `json:"attached_at"`
	EndedAt      *time.Time `json:"ended_at"`
}

func (UserMembershipHistory) TableName() string { return "user_membership_histories" }

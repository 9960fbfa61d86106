package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleDriver   = "driver"
	RoleAdmin    = "admin"
)

// User is the identity record supplied by the auth collaborator.
// The order engine reads and decrements DailyProductQuota; everything
// else on this row is owned elsewhere.
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name              string `gorm:"size:128;not null" json:"name"`
	PhoneNumber       string `gorm:"size:20;uniqueIndex" json:"phone_number"`
	Role              string `gorm:"size:20;not null;default:customer" json:"role"`
	IsStaff           bool   `gorm:"not null;default:false" json:"is_staff"`
	DailyProductQuota int    `gorm:"not null;default:10" json:"daily_product_quota"`
	// StoreID is set for staff assigned to a store; a staff member may only
	// self-assign as cashier on orders placed against that store.
	StoreID *uint `gorm:"index" json:"store_id"`
}

func (User) TableName() string { return "users" }

package model

import (
	"time"

	"gorm.io/gorm"
)

// OrderStatus 订单状态机的节点。
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderProcessed OrderStatus = "processed"
	OrderShipped   OrderStatus = "shipped"
	OrderFinished  OrderStatus = "finished"
	OrderCancelled OrderStatus = "cancelled"
)

// Terminal reports whether no transition leaves this status.
func (s OrderStatus) Terminal() bool {
	return s == OrderFinished || s == OrderCancelled
}

// DeliveryType 配送方式：成本与配送折扣的平面参考数据。
type DeliveryType struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string  `gorm:"size:100;not null" json:"name"`
	Cost     float64 `gorm:"not null;default:0" json:"cost"`
	Discount float64 `gorm:"not null;default:0" json:"discount"`
}

func (DeliveryType) TableName() string { return "delivery_types" }

// Order 订单主档：每次状态迁移各自落一个时间戳。
type Order struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrderNo    string `gorm:"size:64;uniqueIndex;not null" json:"order_no"`
	CustomerID uint   `gorm:"not null;index" json:"customer_id"`
	StoreID    *uint  `gorm:"index" json:"store_id"`
	CashierID  *uint  `json:"cashier_id"`
	DriverID   *uint  `json:"driver_id"`
	// AddressID references the address collaborator's record; the engine
	// stores the id and never dereferences it.
	AddressID *uint `json:"address_id"`

	DeliveryTypeID   *uint         `json:"delivery_type_id"`
	DeliveryType     *DeliveryType `json:"delivery_type,omitempty"`
	MessageForDriver string        `json:"message_for_driver"`
	IsOnlineOrder    bool          `gorm:"not null;default:true" json:"is_online_order"`

	Status      OrderStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	ProcessedAt *time.Time  `json:"processed_at"`
	ShippedAt   *time.Time  `json:"shipped_at"`
	CancelledAt *time.Time  `json:"cancelled_at"`
	FinishedAt  *time.Time  `json:"finished_at"`

	Lines   []OrderLine   `gorm:"constraint:OnDelete:CASCADE" json:"lines,omitempty"`
	Payment *OrderPayment `json:"payment,omitempty"`
}

func (Order) TableName() string { return "orders" }

// OrderLine freezes which flashsale/discount/point rule priced the line at
// order time. Later promotion edits must not alter historical orders, so the
// references are snapshots, never re-resolved.
type OrderLine struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrderID   uint     `gorm:"not null;index" json:"order_id"`
	ProductID uint     `gorm:"not null;index" json:"product_id"`
	Product   *Product `json:"product,omitempty"`
	Quantity  int      `gorm:"not null;default:1" json:"quantity"`

	FlashsaleOfferID *uint           `json:"flashsale_offer_id"`
	FlashsaleOffer   *FlashsaleOffer `json:"flashsale_offer,omitempty"`
	DiscountOfferID  *uint           `json:"discount_offer_id"`
	DiscountOffer    *DiscountOffer  `json:"discount_offer,omitempty"`
	PointRuleID      *uint           `json:"point_rule_id"`
	PointRule        *PointRule      `json:"point_rule,omitempty"`
}

func (OrderLine) TableName() string { return "order_lines" }

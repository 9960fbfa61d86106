package checkout

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/cart"
	"storefront/internal/model"
	"storefront/internal/voucher"

	"gorm.io/gorm"
)

var (
	// ErrActiveOrderExists 用户已有 pending/processed 订单，同一时间只允许一张。
	ErrActiveOrderExists = errors.New("checkout: an active order already exists")
	// ErrCartEmpty 购物车没有勾选任何行。
	ErrCartEmpty = errors.New("checkout: no checked cart lines")
	// ErrStoreNotFound 目标门店不存在。
	ErrStoreNotFound = errors.New("checkout: store not found")
)

// QuotaError reports checked quantity above the user's daily quota.
type QuotaError struct {
	Quota int
	Got   int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("checkout: exceeds daily quota of %d (requested %d)", e.Quota, e.Got)
}

// UnavailableError names the product missing from the store's inventory.
type UnavailableError struct {
	ProductName string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("checkout: product %q not available in this store", e.ProductName)
}

// StockError names the product whose stock cannot cover the requested
// quantity. Distinct from UnavailableError because it can legitimately occur
// twice — once at dry run, once at commit — when concurrent orders drain the
// row in between.
type StockError struct {
	ProductName string
}

func (e *StockError) Error() string {
	return fmt.Sprintf("checkout: insufficient stock for %q", e.ProductName)
}

// Validator is the read-only dry run preceding order creation: it combines
// the active-order, cart, quota, stock and voucher checks and mutates
// nothing. It exists so clients can surface actionable errors before
// committing to payment. The order engine reuses it inside its transaction.
type Validator struct {
	db       *gorm.DB
	vouchers voucher.Validator
}

func NewValidator(db *gorm.DB) *Validator {
	return &Validator{db: db}
}

// Validate runs the checks in order, short-circuiting on the first failure:
// no active order, at least one checked line, quota, per-line stock in the
// target store, then the voucher chain when a claim is supplied. On success
// it returns the checked lines (products preloaded) so the engine does not
// re-read them.
func (c *Validator) Validate(userID, storeID uint, claimID *uint, at time.Time) ([]model.CartLine, error) {
	return c.validate(c.db, userID, storeID, claimID, at)
}

// ValidateTx is Validate on a caller-owned transaction. Order creation runs
// this to close the TOCTOU race: cart edits and concurrent checkouts may
// have changed the world since the dry run passed.
func (c *Validator) ValidateTx(tx *gorm.DB, userID, storeID uint, claimID *uint, at time.Time) ([]model.CartLine, error) {
	return c.validate(tx, userID, storeID, claimID, at)
}

func (c *Validator) validate(db *gorm.DB, userID, storeID uint, claimID *uint, at time.Time) ([]model.CartLine, error) {
	var activeCount int64
	err := db.Model(&model.Order{}).
		Where("customer_id = ? AND status IN ?", userID,
			[]model.OrderStatus{model.OrderPending, model.OrderProcessed}).
		Count(&activeCount).Error
	if err != nil {
		return nil, err
	}
	if activeCount > 0 {
		return nil, ErrActiveOrderExists
	}

	lines, err := cart.CheckedLines(db, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrCartEmpty
	}

	var user model.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, err
	}
	totalQty := 0
	for _, line := range lines {
		totalQty += line.Quantity
	}
	if totalQty > user.DailyProductQuota {
		return nil, &QuotaError{Quota: user.DailyProductQuota, Got: totalQty}
	}

	var store model.Store
	if err := db.First(&store, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}

	for _, line := range lines {
		var inv model.StoreInventory
		err := db.Where("product_id = ? AND store_id = ?", line.ProductID, storeID).First(&inv).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &UnavailableError{ProductName: productName(line)}
		}
		if err != nil {
			return nil, err
		}
		if inv.Stock < line.Quantity {
			return nil, &StockError{ProductName: productName(line)}
		}
	}

	if claimID != nil {
		if _, err := c.vouchers.Validate(db, userID, *claimID, lines, at); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

func productName(line model.CartLine) string {
	if line.Product != nil {
		return line.Product.Name
	}
	return fmt.Sprintf("product %d", line.ProductID)
}

package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/membership"
	"storefront/internal/model"
	"storefront/internal/voucher"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrDeliveryTypeNotFound 配送方式不存在。
	ErrDeliveryTypeNotFound = errors.New("order: delivery type not found")
	// ErrPaymentMethodNotFound 支付方式不存在。
	ErrPaymentMethodNotFound = errors.New("order: payment method not found")
	// ErrDriverNotFound 指定的配送员不存在。
	ErrDriverNotFound = errors.New("order: driver not found")
	// ErrCashierStoreMismatch 店员只能在自己所属门店的订单上担任收银。
	ErrCashierStoreMismatch = errors.New("order: cashier store does not match order store")
)

// CreateInput carries the client's order request. The voucher claim is
// optional; everything else is required.
type CreateInput struct {
	StoreID          uint
	AddressID        uint
	DeliveryTypeID   uint
	PaymentMethodID  uint
	VoucherClaimID   *uint
	DriverID         *uint
	MessageForDriver string
	IsOnlineOrder    bool
}

// Engine owns atomic order creation and the order status machine. All the
// mutations of a create — stock, flashsale stock, cart, quota, voucher,
// points, payment row — commit or roll back together.
type Engine struct {
	db          *gorm.DB
	checkout    *checkout.Validator
	vouchers    voucher.Validator
	memberships membership.Service
	lookup      catalog.Lookup
}

func NewEngine(db *gorm.DB, ck *checkout.Validator) *Engine {
	return &Engine{db: db, checkout: ck}
}

// lockForUpdate adds SELECT ... FOR UPDATE where the dialect supports it.
// SQLite has no row locks in its grammar; its single-writer transactions
// already serialize the writes we care about.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// Create places an order for userID in one all-or-nothing transaction:
//
//  1. re-run the dry-run checks inside the transaction (dry-run results are
//     stale by definition under concurrency)
//  2. re-validate the voucher claim, row locked
//  3. verify the reference rows (delivery type, payment method, driver when
//     given) and resolve the cashier (staff must match the order's store)
//  4. create the order row, status pending
//  5. per checked line: lock the inventory row, fail if stock drained since
//     the dry run, decrement stock / bump sold_count, snapshot the pricing
//     and point-rule decision into the order line, decrement flashsale stock
//     when one matched, accumulate points
//  6. delete the checked cart lines (unchecked lines stay)
//  7. decrement the user's daily quota
//  8. flip the claim's IsUsed
//  9. award the points and recompute the tier (missing membership is logged
//     and skipped, never fatal)
//  10. create the pending OrderPayment row
//
// The returned order has lines, delivery type and payment preloaded so the
// caller can compute the summary without further queries.
func (e *Engine) Create(ctx context.Context, userID uint, in CreateInput) (*model.Order, error) {
	now := time.Now()
	var orderID uint

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Locking the user row first serializes concurrent creates from the
		// same user; the in-tx active-order re-check below is then reliable.
		var user model.User
		if err := lockForUpdate(tx).First(&user, userID).Error; err != nil {
			return err
		}

		lines, err := e.checkout.ValidateTx(tx, userID, in.StoreID, nil, now)
		if err != nil {
			return err
		}

		var claim *model.VoucherClaim
		if in.VoucherClaimID != nil {
			claim, err = e.vouchers.Validate(lockForUpdate(tx), userID, *in.VoucherClaimID, lines, now)
			if err != nil {
				return err
			}
		}

		var deliveryType model.DeliveryType
		if err := tx.First(&deliveryType, in.DeliveryTypeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDeliveryTypeNotFound
			}
			return err
		}
		var method model.PaymentMethod
		if err := tx.First(&method, in.PaymentMethodID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentMethodNotFound
			}
			return err
		}
		if in.DriverID != nil {
			var driver model.User
			if err := tx.First(&driver, *in.DriverID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrDriverNotFound
				}
				return err
			}
		}

		var cashierID *uint
		if user.StoreID != nil {
			if *user.StoreID != in.StoreID {
				return ErrCashierStoreMismatch
			}
			cashierID = &user.ID
		}

		ord := model.Order{
			OrderNo:          "ORD-" + uuid.New().String(),
			CustomerID:       userID,
			StoreID:          &in.StoreID,
			CashierID:        cashierID,
			DriverID:         in.DriverID,
			AddressID:        &in.AddressID,
			DeliveryTypeID:   &deliveryType.ID,
			MessageForDriver: in.MessageForDriver,
			IsOnlineOrder:    in.IsOnlineOrder,
			Status:           model.OrderPending,
		}
		if err := tx.Create(&ord).Error; err != nil {
			return err
		}

		totalQty := 0
		totalPoints := 0
		for _, line := range lines {
			points, err := e.createLine(tx, &ord, line, in.StoreID, now)
			if err != nil {
				return err
			}
			totalQty += line.Quantity
			totalPoints += points
		}

		err = tx.Where("user_id = ? AND is_checked = ?", userID, true).
			Delete(&model.CartLine{}).Error
		if err != nil {
			return err
		}

		user.DailyProductQuota -= totalQty
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		if claim != nil {
			claim.IsUsed = true
			if err := tx.Save(claim).Error; err != nil {
				return err
			}
		}

		err = e.memberships.Award(lockForUpdate(tx), userID, totalPoints, now)
		if errors.Is(err, membership.ErrNoMembership) {
			// Orders are valid for users who never joined the program.
			log.Printf("order %s: user %d has no membership, skipping %d points", ord.OrderNo, userID, totalPoints)
		} else if err != nil {
			return err
		}

		payment := model.OrderPayment{
			OrderID:         ord.ID,
			PaymentMethodID: &method.ID,
			AccountNumber:   accountNumberOf(tx, userID),
			Status:          "pending",
		}
		if claim != nil {
			payment.VoucherClaimID = &claim.ID
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		orderID = ord.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.Load(ctx, orderID)
}

// createLine locks and drains the inventory row, resolves the pricing and
// point snapshot, and writes the order line. Returns the points earned.
func (e *Engine) createLine(tx *gorm.DB, ord *model.Order, line model.CartLine, storeID uint, now time.Time) (int, error) {
	var inv model.StoreInventory
	err := lockForUpdate(tx).
		Where("product_id = ? AND store_id = ?", line.ProductID, storeID).
		First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, &checkout.UnavailableError{ProductName: lineName(line)}
	}
	if err != nil {
		return 0, err
	}
	// The dry-run stock check passed, but a concurrent order may have
	// drained the row since. This is the authoritative check.
	if inv.Stock < line.Quantity {
		return 0, &checkout.StockError{ProductName: lineName(line)}
	}
	inv.Stock -= line.Quantity
	inv.SoldCount += line.Quantity
	if err := tx.Save(&inv).Error; err != nil {
		return 0, err
	}

	promos, err := e.lookup.PromosFor(lockForUpdate(tx), inv.ID)
	if err != nil {
		return 0, err
	}
	basePrice := 0.0
	if line.Product != nil {
		basePrice = line.Product.SellPrice
	}
	outcome := catalog.Resolve(basePrice, promos, line.Quantity, now)
	pointRule := catalog.ResolvePoints(promos, now)

	orderLine := model.OrderLine{
		OrderID:   ord.ID,
		ProductID: line.ProductID,
		Quantity:  line.Quantity,
	}
	if fo := outcome.FlashsaleOffer; fo != nil {
		fo.Stock -= line.Quantity
		fo.SoldCount += line.Quantity
		if err := tx.Save(fo).Error; err != nil {
			return 0, err
		}
		orderLine.FlashsaleOfferID = &fo.ID
	}
	if do := outcome.DiscountOffer; do != nil {
		orderLine.DiscountOfferID = &do.ID
	}
	points := 0
	if pointRule != nil {
		orderLine.PointRuleID = &pointRule.ID
		points = pointRule.PointsEarned * line.Quantity
	}
	if err := tx.Create(&orderLine).Error; err != nil {
		return 0, err
	}
	return points, nil
}

// Load fetches an order with everything the summary needs.
func (e *Engine) Load(ctx context.Context, orderID uint) (*model.Order, error) {
	var ord model.Order
	err := e.db.WithContext(ctx).
		Preload("Lines.Product").
		Preload("Lines.FlashsaleOffer").
		Preload("Lines.DiscountOffer.Discount").
		Preload("Lines.PointRule").
		Preload("DeliveryType").
		Preload("Payment.PaymentMethod").
		Preload("Payment.VoucherClaim.Voucher").
		First(&ord, orderID).Error
	if err != nil {
		return nil, err
	}
	return &ord, nil
}

// accountNumberOf snapshots the user's wallet account number onto the
// payment row; users without a wallet get the N/A marker.
func accountNumberOf(tx *gorm.DB, userID uint) string {
	var wallet model.UserWallet
	err := tx.Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		return "N/A"
	}
	return wallet.AccountNumber
}

func lineName(line model.CartLine) string {
	if line.Product != nil {
		return line.Product.Name
	}
	return fmt.Sprintf("product %d", line.ProductID)
}

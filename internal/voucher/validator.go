package voucher

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrNotFound 券或领取记录不存在（或不属于该用户）。
	ErrNotFound = errors.New("voucher: not found")
	// ErrAlreadyUsed 该领取记录已被消费过。
	ErrAlreadyUsed = errors.New("voucher: already used")
	// ErrNotStarted 券的有效期还没开始。
	ErrNotStarted = errors.New("voucher: not yet active")
	// ErrExpired 券已过期。
	ErrExpired = errors.New("voucher: expired")
	// ErrAlreadyClaimed 用户已领取过这张券。
	ErrAlreadyClaimed = errors.New("voucher: already claimed")
	// ErrMembershipMismatch 会员等级不满足券的要求。
	ErrMembershipMismatch = errors.New("voucher: membership not eligible")
	// ErrInsufficientPoints 积分不足以兑换。
	ErrInsufficientPoints = errors.New("voucher: not enough points")
)

// MinQuantityError reports a cart that is below the voucher's item floor.
type MinQuantityError struct {
	Need int
	Got  int
}

func (e *MinQuantityError) Error() string {
	return fmt.Sprintf("voucher: minimum item quantity %d not met (current %d)", e.Need, e.Got)
}

// MinCostError reports a cart below the voucher's pre-discount cost floor.
type MinCostError struct {
	Need float64
	Got  float64
}

func (e *MinCostError) Error() string {
	return fmt.Sprintf("voucher: minimum purchase %.2f not met (current %.2f)", e.Need, e.Got)
}

// Validator evaluates claims against carts. It carries no state of its own;
// callers pass the db handle so the order engine can run the same checks
// inside its transaction, closing the check-then-act window between the
// checkout dry run and the actual create.
type Validator struct{}

// Validate runs the claim checks in order: claim exists and belongs to the
// user, not already used, voucher window active, cart quantity floor, cart
// cost floor. The cost baseline is the pre-discount sell price, so discount
// stacking cannot talk a cart below a voucher's threshold.
// Lines must have Product preloaded.
func (Validator) Validate(db *gorm.DB, userID, claimID uint, lines []model.CartLine, at time.Time) (*model.VoucherClaim, error) {
	var claim model.VoucherClaim
	err := db.Preload("Voucher").
		Where("id = ? AND user_id = ?", claimID, userID).
		First(&claim).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if claim.IsUsed {
		return nil, ErrAlreadyUsed
	}
	v := claim.Voucher
	if v == nil {
		return nil, ErrNotFound
	}
	if v.StartsAt != nil && v.StartsAt.After(at) {
		return nil, ErrNotStarted
	}
	if v.ExpiresAt != nil && v.ExpiresAt.Before(at) {
		return nil, ErrExpired
	}

	totalQty := 0
	totalCost := 0.0
	for _, line := range lines {
		totalQty += line.Quantity
		if line.Product != nil {
			totalCost += line.Product.SellPrice * float64(line.Quantity)
		}
	}
	if totalQty < v.MinItemQuantity {
		return nil, &MinQuantityError{Need: v.MinItemQuantity, Got: totalQty}
	}
	if totalCost < v.MinItemCost {
		return nil, &MinCostError{Need: v.MinItemCost, Got: totalCost}
	}
	return &claim, nil
}

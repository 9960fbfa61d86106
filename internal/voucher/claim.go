package voucher

import (
	"errors"
	"time"

	"storefront/internal/model"

	"gorm.io/gorm"
)

// ClaimInput selects the voucher to claim: either a redeem code or a voucher
// id. Reward-sourced vouchers (membership reward, point redeem) only work
// through the voucher id path.
type ClaimInput struct {
	Code      string
	VoucherID uint
}

// Claimer creates voucher claims. Point-redeem claims deduct the membership
// points immediately, inside the claim transaction; this is deliberately
// different from code vouchers, whose only side effect happens at order
// creation when IsUsed flips.
type Claimer struct {
	db *gorm.DB
}

func NewClaimer(db *gorm.DB) *Claimer {
	return &Claimer{db: db}
}

func (c *Claimer) Claim(userID uint, in ClaimInput, at time.Time) (*model.VoucherClaim, error) {
	var claim *model.VoucherClaim
	err := c.db.Transaction(func(tx *gorm.DB) error {
		var v model.Voucher
		if in.VoucherID == 0 {
			code, err := c.resolveCode(tx, in.Code, at)
			if err != nil {
				return err
			}
			v = *code.Voucher
		} else {
			if err := tx.First(&v, in.VoucherID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}
			if err := checkWindow(v.StartsAt, v.ExpiresAt, at); err != nil {
				return err
			}
			switch v.SourceType {
			case model.VoucherSourceMembershipReward:
				if err := c.checkMembershipReward(tx, userID, v.ID, at); err != nil {
					return err
				}
			case model.VoucherSourcePointRedeem:
				if err := c.redeemPoints(tx, userID, v.ID); err != nil {
					return err
				}
			}
		}

		var existing model.VoucherClaim
		err := tx.Where("user_id = ? AND voucher_id = ?", userID, v.ID).First(&existing).Error
		if err == nil {
			return ErrAlreadyClaimed
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		claim = &model.VoucherClaim{UserID: userID, VoucherID: v.ID}
		return tx.Create(claim).Error
	})
	if err != nil {
		return nil, err
	}
	if err := c.db.Preload("Voucher").First(claim, claim.ID).Error; err != nil {
		return nil, err
	}
	return claim, nil
}

// resolveCode checks both the voucher window and the code's own window.
func (c *Claimer) resolveCode(tx *gorm.DB, code string, at time.Time) (*model.VoucherCode, error) {
	var vc model.VoucherCode
	err := tx.Preload("Voucher").Where("code = ?", code).First(&vc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if vc.Voucher == nil {
		return nil, ErrNotFound
	}
	if err := checkWindow(vc.Voucher.StartsAt, vc.Voucher.ExpiresAt, at); err != nil {
		return nil, err
	}
	if err := checkWindow(vc.StartsAt, vc.EndsAt, at); err != nil {
		return nil, err
	}
	return &vc, nil
}

// checkMembershipReward requires the user's current tier to match the
// reward's tier exactly, within the reward's own window.
func (c *Claimer) checkMembershipReward(tx *gorm.DB, userID, voucherID uint, at time.Time) error {
	var reward model.VoucherMembershipReward
	err := tx.Where("voucher_id = ?", voucherID).First(&reward).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := checkWindow(reward.StartsAt, reward.EndsAt, at); err != nil {
		return err
	}
	m, err := membershipOf(tx, userID)
	if err != nil {
		return err
	}
	if m.TierID == nil || *m.TierID != reward.TierID {
		return ErrMembershipMismatch
	}
	return nil
}

// redeemPoints checks the tier floor and point balance, then deducts the
// points right away. The deduction belongs to the claim, not the order.
func (c *Claimer) redeemPoints(tx *gorm.DB, userID, voucherID uint) error {
	var redeem model.VoucherPointRedeem
	err := tx.Preload("MinTier").Where("voucher_id = ?", voucherID).First(&redeem).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	m, err := membershipOf(tx, userID)
	if err != nil {
		return err
	}
	if redeem.MinTier != nil {
		if m.Tier == nil || m.Tier.Level < redeem.MinTier.Level {
			return ErrMembershipMismatch
		}
	}
	if m.Point < redeem.PointsRequired {
		return ErrInsufficientPoints
	}
	m.Point -= redeem.PointsRequired
	return tx.Save(m).Error
}

func membershipOf(tx *gorm.DB, userID uint) (*model.UserMembership, error) {
	var m model.UserMembership
	err := tx.Preload("Tier").Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMembershipMismatch
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func checkWindow(start, end *time.Time, at time.Time) error {
	if start != nil && start.After(at) {
		return ErrNotStarted
	}
	if end != nil && end.Before(at) {
		return ErrExpired
	}
	return nil
}

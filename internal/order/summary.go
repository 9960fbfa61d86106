package order

import (
	"math"

	"storefront/internal/model"
)

// Summary is the computed pricing of an order: per-line discounted subtotal,
// delivery net of delivery discount (floored at 0), payment-method fee, and
// the voucher discount capped at the voucher's nominal cap.
type Summary struct {
	ProductSubtotal float64 `json:"product_subtotal"`
	DeliveryCost    float64 `json:"delivery_cost"`
	PaymentFee      float64 `json:"payment_fee"`
	VoucherDiscount float64 `json:"voucher_discount"`
	Total           float64 `json:"total"`
	PointsEarned    int     `json:"points_earned"`
}

// Summarize prices an order from its snapshots. It is pure over a fully
// preloaded order (Lines with products and promo refs, DeliveryType,
// Payment with method and voucher claim); promotions are read from the
// frozen references, never re-resolved, so later promo edits cannot change
// historical totals.
func Summarize(o *model.Order) Summary {
	var s Summary

	for _, line := range o.Lines {
		price := 0.0
		if line.Product != nil {
			price = line.Product.SellPrice
		}
		// Flashsale beats standard discount; the snapshot already encodes
		// which one won at order time.
		if line.FlashsaleOffer != nil {
			price *= 1 - line.FlashsaleOffer.DiscountPercent/100
		} else if line.DiscountOffer != nil && line.DiscountOffer.Discount != nil {
			price *= 1 - line.DiscountOffer.Discount.Percent/100
		}
		s.ProductSubtotal += price * float64(line.Quantity)

		if line.PointRule != nil {
			s.PointsEarned += line.PointRule.PointsEarned * line.Quantity
		}
	}

	if o.DeliveryType != nil {
		s.DeliveryCost = o.DeliveryType.Cost - o.DeliveryType.Discount
		if s.DeliveryCost < 0 {
			s.DeliveryCost = 0
		}
	}

	if o.Payment != nil {
		if o.Payment.PaymentMethod != nil {
			s.PaymentFee = o.Payment.PaymentMethod.Fee
		}
		if o.Payment.VoucherClaim != nil && o.Payment.VoucherClaim.Voucher != nil {
			v := o.Payment.VoucherClaim.Voucher
			if v.DiscountPercent > 0 {
				discount := s.ProductSubtotal * v.DiscountPercent / 100
				if v.MaxNominalDiscount != nil && discount > *v.MaxNominalDiscount {
					discount = *v.MaxNominalDiscount
				}
				s.VoucherDiscount = discount
			}
		}
	}

	s.ProductSubtotal = round2(s.ProductSubtotal)
	s.VoucherDiscount = round2(s.VoucherDiscount)
	s.Total = round2(s.ProductSubtotal + s.DeliveryCost + s.PaymentFee - s.VoucherDiscount)
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package catalog

import (
	"time"

	"storefront/internal/model"

	"gorm.io/gorm"
)

// Promos are the candidate promotion rows for one inventory row at one
// instant. They are plain data so Resolve stays a pure function.
type Promos struct {
	FlashsaleOffers []model.FlashsaleOffer
	DiscountOffers  []model.DiscountOffer
	PointRules      []model.PointRule
}

// Outcome is the pricing decision for one line. DiscountOffer records the
// active standard discount whenever one exists; FlashsaleOffer additionally
// set means the flashsale priced the line and the discount reference is kept
// only as part of the snapshot. PointRule is independent of either.
type Outcome struct {
	UnitPrice      float64
	FlashsaleOffer *model.FlashsaleOffer
	DiscountOffer  *model.DiscountOffer
	PointRule      *model.PointRule
}

// Resolve picks the price for quantity units of a product at basePrice.
// Pricing order: flashsale (window contains at AND remaining stock >= qty),
// else standard discount (window contains at), else base price. An active
// standard discount is recorded on the outcome even when a flashsale wins
// pricing. Missing catalog data is not an error, it just means no discount.
func Resolve(basePrice float64, promos Promos, quantity int, at time.Time) Outcome {
	out := Outcome{UnitPrice: basePrice}

	for i := range promos.DiscountOffers {
		do := &promos.DiscountOffers[i]
		if !windowContains(do.StartsAt, do.EndsAt, at) {
			continue
		}
		out.DiscountOffer = do
		if do.Discount != nil {
			out.UnitPrice = basePrice * (1 - do.Discount.Percent/100)
		}
		break
	}

	for i := range promos.FlashsaleOffers {
		fo := &promos.FlashsaleOffers[i]
		if fo.Flashsale == nil {
			continue
		}
		if !windowContains(fo.Flashsale.StartsAt, fo.Flashsale.EndsAt, at) {
			continue
		}
		if fo.Stock < quantity {
			continue
		}
		out.FlashsaleOffer = fo
		out.UnitPrice = basePrice * (1 - fo.DiscountPercent/100)
		break
	}

	return out
}

// ResolvePoints picks the applicable point rule: window contains at (open end
// means unbounded), PointsEarned > 0, ties broken by highest PointsEarned.
func ResolvePoints(promos Promos, at time.Time) *model.PointRule {
	var best *model.PointRule
	for i := range promos.PointRules {
		pr := &promos.PointRules[i]
		if pr.PointsEarned <= 0 {
			continue
		}
		if !windowContains(pr.StartsAt, pr.EndsAt, at) {
			continue
		}
		if best == nil || pr.PointsEarned > best.PointsEarned {
			best = pr
		}
	}
	return best
}

// windowContains treats a nil bound as open on that side.
func windowContains(start, end *time.Time, at time.Time) bool {
	if start != nil && start.After(at) {
		return false
	}
	if end != nil && end.Before(at) {
		return false
	}
	return true
}

// Lookup loads promotion candidates from the DB. The order engine passes its
// transaction handle so the rows it later decrements are read inside the same
// transaction.
type Lookup struct{}

// PromosFor returns all promotion rows attached to an inventory row.
// Filtering by window/stock is left to Resolve so the decision stays in one
// testable place.
func (Lookup) PromosFor(db *gorm.DB, inventoryID uint) (Promos, error) {
	var promos Promos
	err := db.Preload("Flashsale").
		Where("inventory_id = ?", inventoryID).
		Find(&promos.FlashsaleOffers).Error
	if err != nil {
		return Promos{}, err
	}
	err = db.Preload("Discount").
		Where("inventory_id = ?", inventoryID).
		Find(&promos.DiscountOffers).Error
	if err != nil {
		return Promos{}, err
	}
	err = db.Where("inventory_id = ?", inventoryID).
		Find(&promos.PointRules).Error
	if err != nil {
		return Promos{}, err
	}
	return promos, nil
}

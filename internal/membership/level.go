package membership

import (
	"errors"
	"time"

	"storefront/internal/model"

	"gorm.io/gorm"
)

// ErrNoMembership 用户没有会员记录。下单加积分时这不是致命错误。
var ErrNoMembership = errors.New("membership: user has no membership record")

// Service implements the level engine: point accrual and the single-step
// tier recompute.
type Service struct{}

// EarnPoints adds amount to the accumulated points and pulls LevelUpPoint
// down by the same amount. LevelUpPoint may go negative; that is the signal
// RecomputeTier acts on.
func (Service) EarnPoints(db *gorm.DB, m *model.UserMembership, amount int) error {
	m.Point += amount
	m.LevelUpPoint -= amount
	return db.Save(m).Error
}

// RecomputeTier promotes the membership by at most one level. It is a no-op
// while LevelUpPoint > 0, while the membership has no tier, or when there is
// no tier exactly one level up (already at max, or a gap in the tier table).
//
// On promotion: the membership moves to the next tier, AttachedAt is now,
// EndedAt is Dec 31 23:59:59 of the current year in now's zone, LevelUpPoint
// becomes the tier-after-next's threshold (0 at max tier), and one history
// row captures the new window. A single award that crosses several
// thresholds still promotes one level per call; multi-level jumps are a
// known limitation, not a bug to fix here.
func (Service) RecomputeTier(db *gorm.DB, m *model.UserMembership, now time.Time) error {
	if m.LevelUpPoint > 0 {
		return nil
	}
	if m.Tier == nil {
		return nil
	}

	var tiers []model.MembershipTier
	if err := db.Order("level ASC").Find(&tiers).Error; err != nil {
		return err
	}

	var promoteTo, tierAfter *model.MembershipTier
	for i := range tiers {
		switch tiers[i].Level {
		case m.Tier.Level + 1:
			promoteTo = &tiers[i]
		case m.Tier.Level + 2:
			tierAfter = &tiers[i]
		}
	}
	if promoteTo == nil {
		return nil
	}

	endOfYear := time.Date(now.Year(), time.December, 31, 23, 59, 59, 0, now.Location())

	m.TierID = &promoteTo.ID
	m.Tier = promoteTo
	m.AttachedAt = now
	m.EndedAt = &endOfYear
	if tierAfter != nil {
		m.LevelUpPoint = tierAfter.MinPointEarned
	} else {
		// Reached the top tier; nothing left to climb.
		m.LevelUpPoint = 0
	}
	if err := db.Save(m).Error; err != nil {
		return err
	}

	history := model.UserMembershipHistory{
		MembershipID: m.ID,
		TierID:       promoteTo.ID,
		AttachedAt:   now,
		EndedAt:      &endOfYear,
	}
	return db.Create(&history).Error
}

// Award is the order engine's entry point: load the membership, accrue the
// points, recompute the tier, all on the caller's transaction. Returns
// ErrNoMembership when the user has none; the caller decides whether that
// is fatal.
func (s Service) Award(db *gorm.DB, userID uint, points int, now time.Time) error {
	var m model.UserMembership
	err := db.Preload("Tier").Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoMembership
	}
	if err != nil {
		return err
	}
	if err := s.EarnPoints(db, &m, points); err != nil {
		return err
	}
	return s.RecomputeTier(db, &m, now)
}

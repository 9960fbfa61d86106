package voucher

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"storefront/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=10000&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := model.AutoMigrateAll(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func tp(t time.Time) *time.Time { return &t }

func seedUser(t *testing.T, db *gorm.DB) model.User {
	t.Helper()
	u := model.User{Name: "alice", PhoneNumber: "0811", DailyProductQuota: 10}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedClaim(t *testing.T, db *gorm.DB, userID uint, v model.Voucher) model.VoucherClaim {
	t.Helper()
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("seed voucher: %v", err)
	}
	claim := model.VoucherClaim{UserID: userID, VoucherID: v.ID}
	if err := db.Create(&claim).Error; err != nil {
		t.Fatalf("seed claim: %v", err)
	}
	return claim
}

func linesOf(price float64, qty int) []model.CartLine {
	return []model.CartLine{{
		ProductID: 1,
		Product:   &model.Product{Name: "rice cooker", SellPrice: price},
		Quantity:  qty,
	}}
}

func TestValidateMinQuantityThenOK(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	user := seedUser(t, db)
	claim := seedClaim(t, db, user.ID, model.Voucher{
		Name:            "big basket",
		SourceType:      model.VoucherSourceCode,
		MinItemQuantity: 2,
		MinItemCost:     2000000,
		DiscountPercent: 10,
	})

	_, err := Validator{}.Validate(db, user.ID, claim.ID, linesOf(1500000, 1), now)
	var minQty *MinQuantityError
	if !errors.As(err, &minQty) {
		t.Fatalf("err = %v, want MinQuantityError", err)
	}
	if minQty.Need != 2 || minQty.Got != 1 {
		t.Fatalf("MinQuantityError = %+v, want need 2 got 1", minQty)
	}

	// 数量补到 2（金额 3,000,000）后同一张领取记录应当通过。
	got, err := Validator{}.Validate(db, user.ID, claim.ID, linesOf(1500000, 2), now)
	if err != nil {
		t.Fatalf("validate after topping up: %v", err)
	}
	if got.ID != claim.ID {
		t.Fatalf("claim id = %d, want %d", got.ID, claim.ID)
	}
}

func TestValidateMinCost(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	user := seedUser(t, db)
	claim := seedClaim(t, db, user.ID, model.Voucher{
		Name:            "spender",
		SourceType:      model.VoucherSourceCode,
		MinItemQuantity: 1,
		MinItemCost:     100000,
	})

	_, err := Validator{}.Validate(db, user.ID, claim.ID, linesOf(40000, 2), now)
	var minCost *MinCostError
	if !errors.As(err, &minCost) {
		t.Fatalf("err = %v, want MinCostError", err)
	}
	if minCost.Need != 100000 || minCost.Got != 80000 {
		t.Fatalf("MinCostError = %+v, want need 100000 got 80000", minCost)
	}
}

func TestValidateAlreadyUsed(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	claim := seedClaim(t, db, user.ID, model.Voucher{Name: "once", SourceType: model.VoucherSourceCode})
	db.Model(&claim).Update("is_used", true)

	_, err := Validator{}.Validate(db, user.ID, claim.ID, linesOf(1000, 1), time.Now())
	if !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("err = %v, want ErrAlreadyUsed", err)
	}
}

func TestValidateWindow(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	user := seedUser(t, db)

	early := seedClaim(t, db, user.ID, model.Voucher{
		Name:       "future",
		SourceType: model.VoucherSourceCode,
		StartsAt:   tp(now.Add(time.Hour)),
	})
	if _, err := (Validator{}).Validate(db, user.ID, early.ID, linesOf(1000, 1), now); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("err = %v, want ErrNotStarted", err)
	}

	late := seedClaim(t, db, user.ID, model.Voucher{
		Name:       "past",
		SourceType: model.VoucherSourceCode,
		ExpiresAt:  tp(now.Add(-time.Hour)),
	})
	if _, err := (Validator{}).Validate(db, user.ID, late.ID, linesOf(1000, 1), now); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
}

func TestValidateForeignClaim(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	claim := seedClaim(t, db, user.ID, model.Voucher{Name: "mine", SourceType: model.VoucherSourceCode})

	_, err := Validator{}.Validate(db, user.ID+1, claim.ID, linesOf(1000, 1), time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestClaimByCode(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	user := seedUser(t, db)

	v := model.Voucher{Name: "welcome", SourceType: model.VoucherSourceCode}
	db.Create(&v)
	db.Create(&model.VoucherCode{VoucherID: v.ID, Code: "WELCOME10"})

	claimer := NewClaimer(db)
	claim, err := claimer.Claim(user.ID, ClaimInput{Code: "WELCOME10"}, now)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claim.VoucherID != v.ID || claim.IsUsed {
		t.Fatalf("claim = %+v, want unused claim of voucher %d", claim, v.ID)
	}
	if claim.Voucher == nil {
		t.Fatal("voucher must be preloaded on the returned claim")
	}

	if _, err := claimer.Claim(user.ID, ClaimInput{Code: "WELCOME10"}, now); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("duplicate claim err = %v, want ErrAlreadyClaimed", err)
	}
	if _, err := claimer.Claim(user.ID, ClaimInput{Code: "NOPE"}, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown code err = %v, want ErrNotFound", err)
	}
}

func TestClaimByCodeWindow(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	user := seedUser(t, db)

	v := model.Voucher{Name: "flash code", SourceType: model.VoucherSourceCode}
	db.Create(&v)
	// 券本身长期有效，但兑换码窗口已关。
	db.Create(&model.VoucherCode{VoucherID: v.ID, Code: "GONE", EndsAt: tp(now.Add(-time.Minute))})

	if _, err := NewClaimer(db).Claim(user.ID, ClaimInput{Code: "GONE"}, now); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
}

func TestClaimPointRedeemDeductsImmediately(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	user := seedUser(t, db)

	bronze := model.MembershipTier{Level: 1, Name: "bronze"}
	db.Create(&bronze)
	m := model.UserMembership{UserID: user.ID, Point: 500, TierID: &bronze.ID, AttachedAt: now}
	db.Create(&m)

	v := model.Voucher{Name: "points special", SourceType: model.VoucherSourcePointRedeem}
	db.Create(&v)
	db.Create(&model.VoucherPointRedeem{VoucherID: v.ID, PointsRequired: 200})

	claim, err := NewClaimer(db).Claim(user.ID, ClaimInput{VoucherID: v.ID}, now)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claim.VoucherID != v.ID {
		t.Fatalf("claim voucher = %d, want %d", claim.VoucherID, v.ID)
	}

	// 积分在领取时立刻扣除，而不是等订单核销。
	var reloaded model.UserMembership
	db.First(&reloaded, m.ID)
	if reloaded.Point != 300 {
		t.Fatalf("points = %d, want 300", reloaded.Point)
	}
}

func TestClaimPointRedeemInsufficientPoints(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	user := seedUser(t, db)
	db.Create(&model.UserMembership{UserID: user.ID, Point: 50, AttachedAt: now})

	v := model.Voucher{Name: "points special", SourceType: model.VoucherSourcePointRedeem}
	db.Create(&v)
	db.Create(&model.VoucherPointRedeem{VoucherID: v.ID, PointsRequired: 200})

	if _, err := NewClaimer(db).Claim(user.ID, ClaimInput{VoucherID: v.ID}, now); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("err = %v, want ErrInsufficientPoints", err)
	}

	var reloaded model.UserMembership
	db.Where("user_id = ?", user.ID).First(&reloaded)
	if reloaded.Point != 50 {
		t.Fatalf("points = %d, failed claim must not deduct", reloaded.Point)
	}
}

func TestClaimPointRedeemTierFloor(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	user := seedUser(t, db)

	bronze := model.MembershipTier{Level: 1, Name: "bronze"}
	gold := model.MembershipTier{Level: 3, Name: "gold"}
	db.Create(&bronze)
	db.Create(&gold)
	db.Create(&model.UserMembership{UserID: user.ID, Point: 1000, TierID: &bronze.ID, AttachedAt: now})

	v := model.Voucher{Name: "gold only", SourceType: model.VoucherSourcePointRedeem}
	db.Create(&v)
	db.Create(&model.VoucherPointRedeem{VoucherID: v.ID, PointsRequired: 100, MinTierID: &gold.ID})

	if _, err := NewClaimer(db).Claim(user.ID, ClaimInput{VoucherID: v.ID}, now); !errors.Is(err, ErrMembershipMismatch) {
		t.Fatalf("err = %v, want ErrMembershipMismatch", err)
	}
}

func TestClaimMembershipRewardExactTier(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()

	bronze := model.MembershipTier{Level: 1, Name: "bronze"}
	silver := model.MembershipTier{Level: 2, Name: "silver"}
	db.Create(&bronze)
	db.Create(&silver)

	v := model.Voucher{Name: "silver perk", SourceType: model.VoucherSourceMembershipReward}
	db.Create(&v)
	db.Create(&model.VoucherMembershipReward{VoucherID: v.ID, TierID: silver.ID})

	bronzeUser := seedUser(t, db)
	db.Create(&model.UserMembership{UserID: bronzeUser.ID, TierID: &bronze.ID, AttachedAt: now})
	silverUser := model.User{Name: "bob", PhoneNumber: "0812", DailyProductQuota: 10}
	db.Create(&silverUser)
	db.Create(&model.UserMembership{UserID: silverUser.ID, TierID: &silver.ID, AttachedAt: now})

	claimer := NewClaimer(db)
	// 等级奖励要求档位完全一致：bronze 拿不到 silver 的券。
	if _, err := claimer.Claim(bronzeUser.ID, ClaimInput{VoucherID: v.ID}, now); !errors.Is(err, ErrMembershipMismatch) {
		t.Fatalf("bronze err = %v, want ErrMembershipMismatch", err)
	}
	if _, err := claimer.Claim(silverUser.ID, ClaimInput{VoucherID: v.ID}, now); err != nil {
		t.Fatalf("silver claim: %v", err)
	}
}

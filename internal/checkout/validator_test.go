package checkout

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"storefront/internal/model"
	"storefront/internal/voucher"

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

type world struct {
	user    model.User
	store   model.Store
	product model.Product
	inv     model.StoreInventory
}

func seed(t *testing.T, db *gorm.DB, stock int) world {
	t.Helper()
	w := world{
		user:    model.User{Name: "alice", PhoneNumber: "0811", DailyProductQuota: 10},
		store:   model.Store{Name: "central"},
		product: model.Product{Name: "rice cooker", SellPrice: 1500000},
	}
	if err := db.Create(&w.user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	db.Create(&w.store)
	db.Create(&w.product)
	w.inv = model.StoreInventory{ProductID: w.product.ID, StoreID: w.store.ID, Stock: stock}
	db.Create(&w.inv)
	return w
}

func addLine(t *testing.T, db *gorm.DB, userID, productID uint, qty int, checked bool) model.CartLine {
	t.Helper()
	line := model.CartLine{UserID: userID, ProductID: productID, Quantity: qty, IsChecked: checked}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("seed cart line: %v", err)
	}
	// is_checked 带 default:true，Create 对零值 false 会回填默认值，需显式更新。
	if !checked {
		if err := db.Model(&line).Update("is_checked", false).Error; err != nil {
			t.Fatalf("seed cart line: %v", err)
		}
	}
	return line
}

func TestValidateActiveOrderChecksFirst(t *testing.T) {
	db := newTestDB(t)
	w := seed(t, db, 10)
	db.Create(&model.Order{OrderNo: "ORD-x", CustomerID: w.user.ID, Status: model.OrderPending})

	// 购物车是空的；若活跃订单不是第一道检查，这里会误报 ErrCartEmpty。
	_, err := NewValidator(db).Validate(w.user.ID, w.store.ID, nil, time.Now())
	if !errors.Is(err, ErrActiveOrderExists) {
		t.Fatalf("err = %v, want ErrActiveOrderExists", err)
	}
}

func TestValidateActiveOrderIgnoresSettledOrders(t *testing.T) {
	db := newTestDB(t)
	w := seed(t, db, 10)
	db.Create(&model.Order{OrderNo: "ORD-a", CustomerID: w.user.ID, Status: model.OrderFinished})
	db.Create(&model.Order{OrderNo: "ORD-b", CustomerID: w.user.ID, Status: model.OrderCancelled})
	addLine(t, db, w.user.ID, w.product.ID, 1, true)

	if _, err := NewValidator(db).Validate(w.user.ID, w.store.ID, nil, time.Now()); err != nil {
		t.Fatalf("finished/cancelled orders must not block checkout: %v", err)
	}
}

func TestValidateCartEmpty(t *testing.T) {
	db := newTestDB(t)
	w := seed(t, db, 10)
	addLine(t, db, w.user.ID, w.product.ID, 1, false) // 只有未勾选的行

	_, err := NewValidator(db).Validate(w.user.ID, w.store.ID, nil, time.Now())
	if !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("err = %v, want ErrCartEmpty", err)
	}
}

func TestValidateQuota(t *testing.T) {
	db := newTestDB(t)
	w := seed(t, db, 100)
	addLine(t, db, w.user.ID, w.product.ID, 11, true)

	_, err := NewValidator(db).Validate(w.user.ID, w.store.ID, nil, time.Now())
	var quota *QuotaError
	if !errors.As(err, &quota) {
		t.Fatalf("err = %v, want QuotaError", err)
	}
	if quota.Quota != 10 || quota.Got != 11 {
		t.Fatalf("QuotaError = %+v, want quota 10 got 11", quota)
	}
}

func TestValidateStoreNotFound(t *testing.T) {
	db := newTestDB(t)
	w := seed(t, db, 10)
	addLine(t, db, w.user.ID, w.product.ID, 1, true)

	_, err := NewValidator(db).Validate(w.user.ID, w.store.ID+99, nil, time.Now())
	if !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("err = %v, want ErrStoreNotFound", err)
	}
}

func TestValidateProductNotInStore(t *testing.T) {
	db := newTestDB(t)
	w := seed(t, db, 10)
	other := model.Store{Name: "branch"}
	db.Create(&other)
	addLine(t, db, w.user.ID, w.product.ID, 1, true)

	_, err := NewValidator(db).Validate(w.user.ID, other.ID, nil, time.Now())
	var unavailable *UnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("err = %v, want UnavailableError", err)
	}
	if unavailable.ProductName != w.product.Name {
		t.Fatalf("product name = %q, want %q", unavailable.ProductName, w.product.Name)
	}
}

func TestValidateStock(t *testing.T) {
	db := newTestDB(t)
	w := seed(t, db, 1)
	addLine(t, db, w.user.ID, w.product.ID, 2, true)

	_, err := NewValidator(db).Validate(w.user.ID, w.store.ID, nil, time.Now())
	var stock *StockError
	if !errors.As(err, &stock) {
		t.Fatalf("err = %v, want StockError", err)
	}
}

func TestValidateVoucherChain(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	w := seed(t, db, 10)
	addLine(t, db, w.user.ID, w.product.ID, 1, true)

	v := model.Voucher{Name: "big basket", SourceType: model.VoucherSourceCode, MinItemQuantity: 2}
	db.Create(&v)
	claim := model.VoucherClaim{UserID: w.user.ID, VoucherID: v.ID}
	db.Create(&claim)

	_, err := NewValidator(db).Validate(w.user.ID, w.store.ID, &claim.ID, now)
	var minQty *voucher.MinQuantityError
	if !errors.As(err, &minQty) {
		t.Fatalf("err = %v, want MinQuantityError from the voucher chain", err)
	}
}

func TestValidateIsIdempotentAndReadOnly(t *testing.T) {
	db := newTestDB(t)
	now := time.Now()
	w := seed(t, db, 10)
	addLine(t, db, w.user.ID, w.product.ID, 2, true)

	v := model.Voucher{Name: "welcome", SourceType: model.VoucherSourceCode}
	db.Create(&v)
	claim := model.VoucherClaim{UserID: w.user.ID, VoucherID: v.ID}
	db.Create(&claim)

	validator := NewValidator(db)
	for i := 0; i < 3; i++ {
		lines, err := validator.Validate(w.user.ID, w.store.ID, &claim.ID, now)
		if err != nil {
			t.Fatalf("validate round %d: %v", i, err)
		}
		if len(lines) != 1 || lines[0].Product == nil {
			t.Fatalf("round %d lines = %+v, want 1 line with product preloaded", i, lines)
		}
	}

	// 试算是只读的：库存、额度、券、购物车全部原样。
	var inv model.StoreInventory
	db.First(&inv, w.inv.ID)
	if inv.Stock != 10 || inv.SoldCount != 0 {
		t.Fatalf("inventory mutated: %+v", inv)
	}
	var user model.User
	db.First(&user, w.user.ID)
	if user.DailyProductQuota != 10 {
		t.Fatalf("quota mutated: %d", user.DailyProductQuota)
	}
	var reloadedClaim model.VoucherClaim
	db.First(&reloadedClaim, claim.ID)
	if reloadedClaim.IsUsed {
		t.Fatal("dry run must never consume the claim")
	}
	var lineCount int64
	db.Model(&model.CartLine{}).Where("user_id = ?", w.user.ID).Count(&lineCount)
	if lineCount != 1 {
		t.Fatalf("cart mutated: %d lines", lineCount)
	}
}

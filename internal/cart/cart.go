package cart

import (
	"errors"
	"fmt"

	"storefront/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrQuotaExceeded 购物车总量超过用户当日限购额度。
	ErrQuotaExceeded = errors.New("cart: daily product quota exceeded")
	// ErrProductUnavailable 目标门店没有该商品的库存行。
	ErrProductUnavailable = errors.New("cart: product not available in store")
	// ErrInsufficientStock 目标门店库存不足以覆盖加购后的数量。
	ErrInsufficientStock = errors.New("cart: insufficient stock")
	// ErrLineNotFound 购物车行不存在或不属于该用户。
	ErrLineNotFound = errors.New("cart: line not found")
)

// Service owns the per-user cart lines. Adding an already-carted product
// merges into the existing line instead of duplicating rows.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Add puts quantity units of a product into the user's cart, merging with an
// existing line for the same product. The quota and stock checks here are
// advisory pre-checks; checkout and order creation re-validate everything.
func (s *Service) Add(userID, productID, storeID uint, quantity int) (*model.CartLine, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("cart: quantity must be >= 1, got %d", quantity)
	}

	var user model.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, err
	}

	var carried int64
	err := s.db.Model(&model.CartLine{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&carried).Error
	if err != nil {
		return nil, err
	}
	if int(carried)+quantity > user.DailyProductQuota {
		return nil, fmt.Errorf("%w: quota %d", ErrQuotaExceeded, user.DailyProductQuota)
	}

	var inv model.StoreInventory
	err = s.db.Where("product_id = ? AND store_id = ?", productID, storeID).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductUnavailable
	}
	if err != nil {
		return nil, err
	}
	if inv.Stock < quantity {
		return nil, ErrInsufficientStock
	}

	var line model.CartLine
	err = s.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&line).Error
	switch {
	case err == nil:
		line.Quantity += quantity
		if err := s.db.Save(&line).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		line = model.CartLine{
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			IsChecked: true,
		}
		if err := s.db.Create(&line).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return &line, nil
}

// Update changes quantity and/or the checked flag of a line owned by userID.
// Nil fields are left untouched.
func (s *Service) Update(userID, lineID uint, quantity *int, isChecked *bool) (*model.CartLine, error) {
	var line model.CartLine
	err := s.db.Where("id = ? AND user_id = ?", lineID, userID).First(&line).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLineNotFound
	}
	if err != nil {
		return nil, err
	}
	if quantity != nil {
		if *quantity < 1 {
			return nil, fmt.Errorf("cart: quantity must be >= 1, got %d", *quantity)
		}
		line.Quantity = *quantity
	}
	if isChecked != nil {
		line.IsChecked = *isChecked
	}
	if err := s.db.Save(&line).Error; err != nil {
		return nil, err
	}
	return &line, nil
}

// Remove deletes a line owned by userID.
func (s *Service) Remove(userID, lineID uint) error {
	res := s.db.Where("id = ? AND user_id = ?", lineID, userID).Delete(&model.CartLine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLineNotFound
	}
	return nil
}

// Lines returns every cart line of the user, products preloaded.
func (s *Service) Lines(userID uint) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := s.db.Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&lines).Error
	return lines, err
}

// CheckedLines returns the lines participating in checkout, products
// preloaded. Exposed on the db handle so the order engine can call it
// inside its transaction.
func CheckedLines(db *gorm.DB, userID uint) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := db.Preload("Product").
		Where("user_id = ? AND is_checked = ?", userID, true).
		Find(&lines).Error
	return lines, err
}

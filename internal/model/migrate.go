package model

import "gorm.io/gorm"

// AutoMigrateAll 建全部表；新增模型记得登记在这里。
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Store{},
		&ProductCategory{},
		&Product{},
		&StoreInventory{},
		&Flashsale{},
		&FlashsaleOffer{},
		&Discount{},
		&DiscountOffer{},
		&PointRule{},
		&CartLine{},
		&DeliveryType{},
		&Order{},
		&OrderLine{},
		&Voucher{},
		&VoucherCode{},
		&VoucherMembershipReward{},
		&VoucherPointRedeem{},
		&VoucherClaim{},
		&MembershipTier{},
		&UserMembership{},
		&UserMembershipHistory{},
		&PaymentMethod{},
		&OrderPayment{},
		&UserWallet{},
	)
}

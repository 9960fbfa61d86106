package catalog

import (
	"storefront/internal/model"

	"gorm.io/gorm"
)

// Provisioner keeps the (product x store) inventory matrix dense: every
// product has a zero-stock row in every store. The catalog and store
// services call these hooks explicitly after creating their records.
type Provisioner struct {
	db *gorm.DB
}

func NewProvisioner(db *gorm.DB) *Provisioner {
	return &Provisioner{db: db}
}

// OnProductCreated bulk-inserts a zero-stock inventory row for the product
// in every existing store.
func (p *Provisioner) OnProductCreated(productID uint) error {
	var storeIDs []uint
	if err := p.db.Model(&model.Store{}).Pluck("id", &storeIDs).Error; err != nil {
		return err
	}
	rows := make([]model.StoreInventory, 0, len(storeIDs))
	for _, sid := range storeIDs {
		rows = append(rows, model.StoreInventory{ProductID: productID, StoreID: sid})
	}
	if len(rows) == 0 {
		return nil
	}
	return p.db.CreateInBatches(rows, 200).Error
}

// OnStoreCreated bulk-inserts a zero-stock inventory row in the new store
// for every existing product.
func (p *Provisioner) OnStoreCreated(storeID uint) error {
	var productIDs []uint
	if err := p.db.Model(&model.Product{}).Pluck("id", &productIDs).Error; err != nil {
		return err
	}
	rows := make([]model.StoreInventory, 0, len(productIDs))
	for _, pid := range productIDs {
		rows = append(rows, model.StoreInventory{ProductID: pid, StoreID: storeID})
	}
	if len(rows) == 0 {
		return nil
	}
	return p.db.CreateInBatches(rows, 200).Error
}

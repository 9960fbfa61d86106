package router

import (
	"log"
	"net/http"

	"storefront/internal/catalog"
	"storefront/internal/model"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// listProducts 查询商品列表。
func listProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var list []model.Product
		if err := db.Preload("Category").Find(&list).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		ok(c, list)
	}
}

// createProduct 创建商品，并为所有门店补齐零库存行。
func createProduct(db *gorm.DB, provisioner *catalog.Provisioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name       string  `json:"name" binding:"required"`
			CategoryID *uint   `json:"category_id"`
			Unit       string  `json:"unit"`
			BuyPrice   float64 `json:"buy_price" binding:"required,gt=0"`
			SellPrice  float64 `json:"sell_price" binding:"required,gt=0"`
			PictureURL string  `json:"picture_url"`
			Tags       string  `json:"tags"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		p := &model.Product{
			Name:       req.Name,
			CategoryID: req.CategoryID,
			Unit:       req.Unit,
			BuyPrice:   req.BuyPrice,
			SellPrice:  req.SellPrice,
			PictureURL: req.PictureURL,
			Tags:       req.Tags,
		}
		if err := db.Create(p).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		if err := provisioner.OnProductCreated(p.ID); err != nil {
			// 商品已创建成功；补库存行失败只记录，后续可重放。
			log.Printf("provision inventory for product %d: %v", p.ID, err)
		}
		ok(c, p)
	}
}

// listStores 查询门店列表。
func listStores(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var list []model.Store
		if err := db.Find(&list).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		ok(c, list)
	}
}

// createStore 创建门店，并为所有商品补齐零库存行。
func createStore(db *gorm.DB, provisioner *catalog.Provisioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name      string   `json:"name" binding:"required"`
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		s := &model.Store{Name: req.Name, Latitude: req.Latitude, Longitude: req.Longitude}
		if err := db.Create(s).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		if err := provisioner.OnStoreCreated(s.ID); err != nil {
			log.Printf("provision inventory for store %d: %v", s.ID, err)
		}
		ok(c, s)
	}
}

// listDeliveryTypes 配送方式参考数据。
func listDeliveryTypes(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var list []model.DeliveryType
		if err := db.Find(&list).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		ok(c, list)
	}
}

// listPaymentMethods 支付方式参考数据。
func listPaymentMethods(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var list []model.PaymentMethod
		if err := db.Find(&list).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		ok(c, list)
	}
}

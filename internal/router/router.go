package router

import (
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/order"
	"storefront/internal/voucher"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Setup 注册全部 HTTP 路由。
func Setup(r *gin.Engine, db *gorm.DB, rdb *rd.Client, cfg config.AppConfig) {
	carts := cart.NewService(db)
	claimer := voucher.NewClaimer(db)
	validator := checkout.NewValidator(db)
	engine := order.NewEngine(db, validator)
	provisioner := catalog.NewProvisioner(db)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})

	api := r.Group("/api", middleware.Auth(db, cfg.JWTSecret))
	rateLimited := middleware.RedisRateLimit(rdb, cfg.CheckoutRateLimit, cfg.CheckoutRateWindow)

	// Catalog
	api.GET("/products", listProducts(db))
	api.POST("/products", middleware.StaffOnly(), createProduct(db, provisioner))
	api.GET("/stores", listStores(db))
	api.POST("/stores", middleware.StaffOnly(), createStore(db, provisioner))

	// Flat reference registries
	api.GET("/delivery_types", listDeliveryTypes(db))
	api.GET("/payment_methods", listPaymentMethods(db))

	// Cart
	api.GET("/cart", listCart(carts))
	api.POST("/cart", addCartLine(carts))
	api.PATCH("/cart/:line_id", updateCartLine(carts))
	api.DELETE("/cart/:line_id", removeCartLine(carts))

	// Vouchers
	api.GET("/vouchers/claims", listVoucherClaims(db))
	api.POST("/vouchers/claims", claimVoucher(claimer))

	// Checkout & orders
	api.POST("/checkout", rateLimited, checkoutDryRun(validator))
	api.POST("/orders", rateLimited, createOrder(engine, rdb, cfg))
	api.GET("/orders", listOrders(db))
	api.GET("/orders/:id", getOrder(db, engine))
	api.POST("/orders/:id/processed", middleware.StaffOnly(), transitionOrder(engine, "processed"))
	api.POST("/orders/:id/shipped", middleware.StaffOnly(), transitionOrder(engine, "shipped"))
	api.POST("/orders/:id/finish", transitionOrder(engine, "finished"))
	api.POST("/orders/:id/cancel", transitionOrder(engine, "cancelled"))

	// Membership
	api.GET("/membership", getMembership(db))
	api.GET("/membership/tiers", listMembershipTiers(db))
}

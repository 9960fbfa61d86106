package router

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/order"
	"storefront/internal/queue"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	rd "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// checkoutDryRun 结算试算：只读校验，给客户端可操作的失败原因，绝不落库。
func checkoutDryRun(validator *checkout.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			StoreID        uint  `json:"store_id" binding:"required,min=1"`
			VoucherClaimID *uint `json:"voucher_claim_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		user := middleware.CurrentUser(c)
		if _, err := validator.Validate(user.ID, req.StoreID, req.VoucherClaimID, time.Now()); err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"msg": "checkout validation passed, proceed to payment"})
	}
}

// createOrder 下单入口。
// 关键流程：
// 1. 引擎在单事务内完成校验、扣库存、快照、清购物车、扣额度、核销券、加积分
// 2. 事务提交后把支付事件写入 Redis Stream outbox（COD 不走网关）
// 3. 返回订单与计算好的费用汇总
func createOrder(engine *order.Engine, rdb *rd.Client, cfg config.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			StoreID          uint   `json:"store_id" binding:"required,min=1"`
			AddressID        uint   `json:"address_id" binding:"required,min=1"`
			DeliveryTypeID   uint   `json:"delivery_type_id" binding:"required,min=1"`
			PaymentMethodID  uint   `json:"payment_method_id" binding:"required,min=1"`
			VoucherClaimID   *uint  `json:"voucher_claim_id"`
			DriverID         *uint  `json:"driver_id"`
			MessageForDriver string `json:"message_for_driver"`
			IsOnlineOrder    *bool  `json:"is_online_order"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		isOnline := true
		if req.IsOnlineOrder != nil {
			isOnline = *req.IsOnlineOrder
		}

		user := middleware.CurrentUser(c)
		ord, err := engine.Create(c.Request.Context(), user.ID, order.CreateInput{
			StoreID:          req.StoreID,
			AddressID:        req.AddressID,
			DeliveryTypeID:   req.DeliveryTypeID,
			PaymentMethodID:  req.PaymentMethodID,
			VoucherClaimID:   req.VoucherClaimID,
			DriverID:         req.DriverID,
			MessageForDriver: req.MessageForDriver,
			IsOnlineOrder:    isOnline,
		})
		if err != nil {
			fail(c, err)
			return
		}

		summary := order.Summarize(ord)
		publishPaymentEvent(c, rdb, cfg, ord, summary)

		ok(c, gin.H{"order": ord, "summary": summary})
	}
}

// publishPaymentEvent 提交后通知支付网关 worker。COD 无网关交易；
// outbox 写失败不影响已提交的订单，只记录等待人工补偿。
func publishPaymentEvent(c *gin.Context, rdb *rd.Client, cfg config.AppConfig, ord *model.Order, summary order.Summary) {
	if ord.Payment == nil {
		return
	}
	method := ""
	if ord.Payment.PaymentMethod != nil {
		method = ord.Payment.PaymentMethod.Name
	}
	if method == "COD" {
		return
	}
	msg := queue.PaymentMessage{
		EventID:    uuid.New().String(),
		OrderID:    ord.ID,
		PaymentID:  ord.Payment.ID,
		CustomerID: ord.CustomerID,
		Method:     method,
		Amount:     summary.Total,
	}
	if err := queue.AppendToOutbox(c.Request.Context(), rdb, cfg.PaymentEventStream, msg); err != nil {
		log.Printf("payment outbox append order=%s: %v", ord.OrderNo, err)
	}
}

// listOrders 订单列表：普通用户只能看自己的，员工可见全部。
func listOrders(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		q := db.Preload("DeliveryType")
		if !user.IsStaff {
			q = q.Where("customer_id = ?", user.ID)
		}
		if status := c.Query("status"); status != "" {
			q = q.Where("status = ?", status)
		}
		var orders []model.Order
		if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		ok(c, orders)
	}
}

// getOrder 订单详情，带费用汇总。
func getOrder(db *gorm.DB, engine *order.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			badRequest(c, err)
			return
		}
		user := middleware.CurrentUser(c)

		ord, err := engine.Load(c.Request.Context(), uint(id))
		if err != nil {
			fail(c, order.ErrOrderNotFound)
			return
		}
		if ord.CustomerID != user.ID && !user.IsStaff {
			fail(c, order.ErrNotOwner)
			return
		}
		ok(c, gin.H{"order": ord, "summary": order.Summarize(ord)})
	}
}

// transitionOrder 状态迁移端点：角色门禁在引擎里统一裁决。
func transitionOrder(engine *order.Engine, to model.OrderStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			badRequest(c, err)
			return
		}
		user := middleware.CurrentUser(c)
		ord, err := engine.Transition(c.Request.Context(), uint(id), user, to)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, ord)
	}
}

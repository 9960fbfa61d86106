package router

import (
	"net/http"
	"time"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/voucher"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// claimVoucher 领券：code 走兑换码流程，voucher_id 走奖励/积分兑换流程。
func claimVoucher(claimer *voucher.Claimer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Code      string `json:"code"`
			VoucherID uint   `json:"voucher_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.Code == "" && req.VoucherID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "either code or voucher_id is required"})
			return
		}
		user := middleware.CurrentUser(c)
		claim, err := claimer.Claim(user.ID, voucher.ClaimInput{Code: req.Code, VoucherID: req.VoucherID}, time.Now())
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, claim)
	}
}

// listVoucherClaims 当前用户的领取记录（员工可见全部）。
func listVoucherClaims(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		q := db.Preload("Voucher")
		if !user.IsStaff {
			q = q.Where("user_id = ?", user.ID)
		}
		var claims []model.VoucherClaim
		if err := q.Order("created_at DESC").Find(&claims).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		ok(c, claims)
	}
}

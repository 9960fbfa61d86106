package router

import (
	"strconv"

	"storefront/internal/cart"
	"storefront/internal/middleware"

	"github.com/gin-gonic/gin"
)

// listCart 当前用户的购物车。
func listCart(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		lines, err := carts.Lines(user.ID)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, lines)
	}
}

// addCartLine 加购：同商品合并数量，带额度与库存预检。
func addCartLine(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ProductID uint `json:"product_id" binding:"required,min=1"`
			StoreID   uint `json:"store_id" binding:"required,min=1"`
			Quantity  int  `json:"quantity" binding:"omitempty,min=1"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		user := middleware.CurrentUser(c)
		line, err := carts.Add(user.ID, req.ProductID, req.StoreID, req.Quantity)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, line)
	}
}

// updateCartLine 修改数量或勾选状态。
func updateCartLine(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		lineID, err := strconv.ParseUint(c.Param("line_id"), 10, 32)
		if err != nil {
			badRequest(c, err)
			return
		}
		var req struct {
			Quantity  *int  `json:"quantity" binding:"omitempty,min=1"`
			IsChecked *bool `json:"is_checked"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		user := middleware.CurrentUser(c)
		line, err := carts.Update(user.ID, uint(lineID), req.Quantity, req.IsChecked)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, line)
	}
}

// removeCartLine 删除购物车行。
func removeCartLine(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		lineID, err := strconv.ParseUint(c.Param("line_id"), 10, 32)
		if err != nil {
			badRequest(c, err)
			return
		}
		user := middleware.CurrentUser(c)
		if err := carts.Remove(user.ID, uint(lineID)); err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"deleted": true})
	}
}

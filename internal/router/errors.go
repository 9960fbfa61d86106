package router

import (
	"errors"
	"net/http"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/order"
	"storefront/internal/voucher"

	"github.com/gin-gonic/gin"
)

// statusFor maps domain errors onto HTTP statuses: not-found style errors to
// 404, state conflicts to 409, stock and client-fixable validation failures
// to 400. Unknown errors fall through to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, voucher.ErrNotFound),
		errors.Is(err, checkout.ErrStoreNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrDeliveryTypeNotFound),
		errors.Is(err, order.ErrPaymentMethodNotFound),
		errors.Is(err, order.ErrDriverNotFound),
		errors.Is(err, cart.ErrProductUnavailable),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound

	case errors.Is(err, checkout.ErrActiveOrderExists),
		errors.Is(err, voucher.ErrAlreadyUsed),
		errors.Is(err, voucher.ErrAlreadyClaimed):
		return http.StatusConflict

	case errors.Is(err, order.ErrNotOwner),
		errors.Is(err, order.ErrStaffOnly):
		return http.StatusForbidden

	case errors.Is(err, checkout.ErrCartEmpty),
		errors.Is(err, cart.ErrQuotaExceeded),
		errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, voucher.ErrNotStarted),
		errors.Is(err, voucher.ErrExpired),
		errors.Is(err, voucher.ErrMembershipMismatch),
		errors.Is(err, voucher.ErrInsufficientPoints),
		errors.Is(err, order.ErrCashierStoreMismatch):
		return http.StatusBadRequest
	}

	var (
		quotaErr       *checkout.QuotaError
		unavailableErr *checkout.UnavailableError
		stockErr       *checkout.StockError
		minQtyErr      *voucher.MinQuantityError
		minCostErr     *voucher.MinCostError
		transitionErr  *order.InvalidTransitionError
	)
	switch {
	case errors.As(err, &quotaErr),
		errors.As(err, &unavailableErr),
		errors.As(err, &stockErr),
		errors.As(err, &minQtyErr),
		errors.As(err, &minCostErr):
		return http.StatusBadRequest
	case errors.As(err, &transitionErr):
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

// fail 以统一的 {code,msg} 信封返回错误。
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	c.JSON(status, gin.H{"code": status, "msg": err.Error()})
}

// badRequest 入参绑定失败的快捷返回。
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
}

// ok 以统一的 {code,data} 信封返回数据。
func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"code": 0, "data": data})
}

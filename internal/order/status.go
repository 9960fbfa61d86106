package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"

	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound 订单不存在。
	ErrOrderNotFound = errors.New("order: not found")
	// ErrNotOwner 只有订单归属人（或员工）能执行该操作。
	ErrNotOwner = errors.New("order: not the order owner")
	// ErrStaffOnly 该状态迁移仅限员工触发。
	ErrStaffOnly = errors.New("order: staff only")
)

// InvalidTransitionError reports a status move outside the state machine.
type InvalidTransitionError struct {
	From model.OrderStatus
	To   model.OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("order: invalid transition %s -> %s", e.From, e.To)
}

// Transition advances the order's status on behalf of actor:
//
//	pending   -> processed  (staff)
//	processed -> shipped    (staff)
//	shipped   -> finished   (owner or staff)
//	processed -> finished   (owner or staff; pickup orders skip shipping)
//	pending   -> cancelled  (owner, only while pending)
//
// finished and cancelled are terminal. Cancellation does NOT restore the
// stock decremented at creation; that gap is intentional and pinned by
// tests, do not "fix" it here without a product decision.
func (e *Engine) Transition(ctx context.Context, orderID uint, actor *model.User, to model.OrderStatus) (*model.Order, error) {
	now := time.Now()

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ord model.Order
		if err := lockForUpdate(tx).First(&ord, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		isOwner := ord.CustomerID == actor.ID
		if !isOwner && !actor.IsStaff {
			return ErrNotOwner
		}

		switch to {
		case model.OrderProcessed:
			if !actor.IsStaff {
				return ErrStaffOnly
			}
			if ord.Status != model.OrderPending {
				return &InvalidTransitionError{From: ord.Status, To: to}
			}
			ord.ProcessedAt = &now

		case model.OrderShipped:
			if !actor.IsStaff {
				return ErrStaffOnly
			}
			if ord.Status != model.OrderProcessed {
				return &InvalidTransitionError{From: ord.Status, To: to}
			}
			ord.ShippedAt = &now

		case model.OrderFinished:
			if ord.Status != model.OrderShipped && ord.Status != model.OrderProcessed {
				return &InvalidTransitionError{From: ord.Status, To: to}
			}
			ord.FinishedAt = &now

		case model.OrderCancelled:
			if !isOwner {
				return ErrNotOwner
			}
			if ord.Status != model.OrderPending {
				return &InvalidTransitionError{From: ord.Status, To: to}
			}
			ord.CancelledAt = &now

		default:
			return &InvalidTransitionError{From: ord.Status, To: to}
		}

		ord.Status = to
		return tx.Save(&ord).Error
	})
	if err != nil {
		return nil, err
	}
	return e.Load(ctx, orderID)
}

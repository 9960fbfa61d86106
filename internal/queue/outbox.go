package queue

import (
	"context"

	rd "github.com/redis/go-redis/v9"
)

// AppendToOutbox 将支付事件原子写入 Redis Stream outbox。
// 订单事务提交后由 handler 调用；Relay 异步把它转发到 Kafka。
// 对核心而言这是 fire-and-forget：写失败只记录，不回滚订单。
func AppendToOutbox(ctx context.Context, rdb *rd.Client, stream string, msg PaymentMessage) error {
	return rdb.XAdd(ctx, &rd.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"event_id":    msg.EventID,
			"order_id":    msg.OrderID,
			"payment_id":  msg.PaymentID,
			"customer_id": msg.CustomerID,
			"method":      msg.Method,
			"amount":      msg.Amount,
		},
	}).Err()
}

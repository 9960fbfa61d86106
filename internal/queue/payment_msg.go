package queue

import "fmt"

// PaymentMessage 是订单支付记录创建后发往网关 worker 的事件。
// EventID 贯穿 outbox → Kafka → 网关回写，作为幂等标识。
type PaymentMessage struct {
	EventID    string  `json:"event_id"`
	OrderID    uint    `json:"order_id"`
	PaymentID  uint    `json:"payment_id"`
	CustomerID uint    `json:"customer_id"`
	Method     string  `json:"method"`
	Amount     float64 `json:"amount"`
}

// Validate 做最小字段校验，防止消费者处理脏消息。
func (m PaymentMessage) Validate() error {
	if m.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if m.OrderID == 0 {
		return fmt.Errorf("order_id is required")
	}
	if m.PaymentID == 0 {
		return fmt.Errorf("payment_id is required")
	}
	if m.CustomerID == 0 {
		return fmt.Errorf("customer_id is required")
	}
	if m.Amount < 0 {
		return fmt.Errorf("amount must be >= 0")
	}
	return nil
}

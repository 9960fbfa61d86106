package queue

import (
	"context"
	"encoding/json"
	"log"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"
)

// Consumer stands in for the payment-gateway worker: it consumes
// payment-created events and writes the gateway's transaction token and
// redirect URL back onto the OrderPayment row. The real gateway protocol is
// out of scope; failures here never roll back into the order transaction.
type Consumer struct {
	r  *kafka.Reader
	db *gorm.DB
}

func NewConsumer(brokers []string, topic, groupID string, db *gorm.DB) *Consumer {
	return &Consumer{
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1e3,
			MaxBytes: 1e6,
		}),
		db: db,
	}
}

func (c *Consumer) Close() error { return c.r.Close() }

func (c *Consumer) Run(ctx context.Context) {
	for {
		m, err := c.r.ReadMessage(ctx)
		if err != nil {
			return // ctx cancel / 连接断开等
		}

		var msg PaymentMessage
		if err := json.Unmarshal(m.Value, &msg); err != nil {
			log.Printf("payment consumer unmarshal: %v", err)
			continue
		}
		if err := msg.Validate(); err != nil {
			log.Printf("payment consumer skip dirty message: %v", err)
			continue
		}

		if err := c.attachTransaction(msg); err != nil {
			log.Printf("payment consumer attach tx payment_id=%d: %v", msg.PaymentID, err)
			continue
		}
	}
}

// attachTransaction 幂等回写：已有 token 的支付记录视为重复消息，跳过。
func (c *Consumer) attachTransaction(msg PaymentMessage) error {
	var payment model.OrderPayment
	if err := c.db.First(&payment, msg.PaymentID).Error; err != nil {
		return err
	}
	if payment.TransactionToken != nil {
		return nil
	}

	token := uuid.New().String()
	redirect := "https://pay.example.com/redirect/" + token
	return c.db.Model(&payment).Updates(map[string]any{
		"transaction_token":        token,
		"transaction_redirect_url": redirect,
	}).Error
}

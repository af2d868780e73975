package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"orderdesk/internal/model"
)

type OrderPlacedEvent struct {
	OrderID    string           `json:"order_id"`
	Items      []model.CartItem `json:"items"`
	TotalPrice int64            `json:"total_price"`
	CouponCode *string          `json:"coupon_code,omitempty"`
	Summary    string           `json:"summary"`
	CreatedAt  time.Time        `json:"created_at"`
}

// KafkaAlerter publishes an OrderPlacedEvent for every new order, keyed by
// order id.
type KafkaAlerter struct {
	writer   *kafka.Writer
	currency string
}

func NewKafkaAlerter(brokers []string, topic, currency string) *KafkaAlerter {
	return &KafkaAlerter{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
		currency: currency,
	}
}

func (k *KafkaAlerter) Name() string { return "kafka" }

func (k *KafkaAlerter) SendOrderAlert(ctx context.Context, o model.Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	value, err := json.Marshal(OrderPlacedEvent{
		OrderID:    o.ID,
		Items:      o.Items,
		TotalPrice: o.TotalPrice,
		CouponCode: o.AppliedCouponCode,
		Summary:    OrderSummary(o, k.currency),
		CreatedAt:  o.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	if err := k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(o.ID),
		Value: value,
	}); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

func (k *KafkaAlerter) Close() error {
	return k.writer.Close()
}

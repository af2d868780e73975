package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderPlacedEvent_JSON(t *testing.T) {
	o := sampleOrder()
	raw, err := json.Marshal(OrderPlacedEvent{
		OrderID:    o.ID,
		Items:      o.Items,
		TotalPrice: o.TotalPrice,
		CouponCode: o.AppliedCouponCode,
		Summary:    OrderSummary(o, "YER"),
		CreatedAt:  o.CreatedAt,
	})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, o.ID, got["order_id"])
	assert.Equal(t, "SAVE10", got["coupon_code"])
	assert.EqualValues(t, 3870, got["total_price"])
	assert.Contains(t, got["summary"], "3870 YER")
}

func TestKafkaAlerter_UnreachableBroker(t *testing.T) {
	k := NewKafkaAlerter([]string{"127.0.0.1:1"}, "order.placed", "YER")
	defer k.Close()
	assert.Equal(t, "kafka", k.Name())

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	assert.Error(t, k.SendOrderAlert(ctx, sampleOrder()))
}

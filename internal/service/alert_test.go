package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/model"
)

func sampleOrder() model.Order {
	code := "SAVE10"
	return model.Order{
		ID:                "3f1c6a52-0d55-4b3a-9d0b-5a2f1c7e9b10",
		Items:             pizzaCart().Items,
		TotalPrice:        3870,
		AppliedCouponCode: &code,
		CreatedAt:         time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC),
	}
}

func TestTelegramClient_SendOrderAlert(t *testing.T) {
	var got telegramMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewTelegramClient(srv.URL+"/", "token", "42", "RUB")
	require.NoError(t, c.SendOrderAlert(context.Background(), sampleOrder()))

	assert.Equal(t, "42", got.ChatID)
	assert.Contains(t, got.Text, "3f1c6a52-0d55-4b3a-9d0b-5a2f1c7e9b10")
	assert.Contains(t, got.Text, "Pizza (2)")
	assert.Contains(t, got.Text, "Cola (1)")
	assert.Contains(t, got.Text, "Coupon: SAVE10")
	assert.Contains(t, got.Text, "3870 RUB")
	assert.Contains(t, got.Text, "18:30")
}

func TestTelegramClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "rejected", status: http.StatusOK, body: `{"ok":false,"description":"chat not found"}`},
		{name: "rate limited", status: http.StatusTooManyRequests},
		{name: "server error", status: http.StatusInternalServerError, body: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewTelegramClient(srv.URL, "token", "42", "RUB")
			assert.Error(t, c.SendOrderAlert(context.Background(), sampleOrder()))
		})
	}
}

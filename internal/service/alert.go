package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"orderdesk/internal/model"
)

// TelegramClient posts order summaries to a Telegram chat through the Bot API.
type TelegramClient struct {
	baseURL  string
	token    string
	chatID   string
	currency string
	client   *http.Client
}

func NewTelegramClient(baseURL, token, chatID, currency string) *TelegramClient {
	return &TelegramClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		chatID:   chatID,
		currency: currency,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *TelegramClient) Name() string { return "telegram" }

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

func (c *TelegramClient) SendOrderAlert(ctx context.Context, o model.Order) error {
	body, err := json.Marshal(telegramMessage{
		ChatID:    c.chatID,
		Text:      OrderSummary(o, c.currency),
		ParseMode: "Markdown",
	})
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var res telegramResponse
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		if !res.OK {
			return fmt.Errorf("telegram rejected message: %s", res.Description)
		}
		return nil
	case http.StatusTooManyRequests:
		return errors.New("telegram rate limit exceeded")
	default:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected status: %d, body: %s", resp.StatusCode, string(raw))
	}
}

// OrderSummary renders the staff-facing text for a new order.
func OrderSummary(o model.Order, currency string) string {
	var b strings.Builder
	b.WriteString("*New order*\n")
	fmt.Fprintf(&b, "Order: %s\n", o.ID)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "• %s (%d)\n", it.Name, it.Quantity)
	}
	if o.AppliedCouponCode != nil {
		fmt.Fprintf(&b, "Coupon: %s\n", *o.AppliedCouponCode)
	}
	fmt.Fprintf(&b, "Total: *%d %s*\n", o.TotalPrice, currency)
	fmt.Fprintf(&b, "Time: %s", o.CreatedAt.Format("15:04"))
	return b.String()
}

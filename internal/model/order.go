package model

import (
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusPreparing OrderStatus = "Preparing"
	StatusReady     OrderStatus = "Ready"
)

// Valid reports whether s is one of the three staff-settable statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady:
		return true
	}
	return false
}

type Order struct {
	ID                string      `json:"id"`
	Items             []CartItem  `json:"items"`
	TotalPrice        int64       `json:"total_price"`
	Status            OrderStatus `json:"status"`
	AppliedCouponCode *string     `json:"applied_coupon_code,omitempty"`
	IdempotencyKey    *string     `json:"-"`
	CreatedAt         time.Time   `json:"created_at"`
}

type Stats struct {
	OrdersCount    int64 `json:"orders_count"`
	Revenue        int64 `json:"revenue"`
	MenuItemsCount int64 `json:"menu_items_count"`
}

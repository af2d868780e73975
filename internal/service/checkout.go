package service

import (
	"context"
	"log/slog"

	"orderdesk/internal/cart"
	"orderdesk/internal/model"
)

// CheckoutService submits a session's cart, empties it and starts tracking
// the new order.
type CheckoutService struct {
	orders   *OrderService
	tracking *TrackingService
}

func NewCheckoutService(orders *OrderService, tracking *TrackingService) *CheckoutService {
	return &CheckoutService{orders: orders, tracking: tracking}
}

// Checkout leaves the cart untouched when submission fails. Once the order
// exists, failures to clear the cart or remember the order are only logged.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, c *cart.Store, opts SubmitOptions) (*model.Order, error) {
	order, err := s.orders.Submit(ctx, c.Snapshot(), opts)
	if err != nil {
		return nil, err
	}

	if err := c.Clear(ctx); err != nil {
		slog.Warn("failed to clear cart after checkout", "order", order.ID, "error", err)
	}
	if err := s.tracking.Remember(ctx, sessionID, TrackedOrder{OrderID: order.ID, Total: order.TotalPrice}); err != nil {
		slog.Warn("failed to remember tracked order", "order", order.ID, "error", err)
	}
	return order, nil
}

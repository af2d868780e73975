package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"orderdesk/internal/model"
	"orderdesk/internal/notify"
	"orderdesk/internal/pricing"
	"orderdesk/internal/repository"
)

var ErrInvalidItem = errors.New("cart item needs a quantity in [1,999] and a non-negative price")

type SubmitOptions struct {
	CouponCode string
	// IgnoreCouponError submits at full price instead of failing when the
	// coupon does not validate.
	IgnoreCouponError bool
	// IdempotencyKey makes retries of the same submission return the order
	// created by the first attempt.
	IdempotencyKey string
}

type OrderService struct {
	orders       repository.OrderRepo
	coupons      *CouponService
	bridge       notify.Bridge
	statusBuffer int
}

func NewOrderService(orders repository.OrderRepo, coupons *CouponService, bridge notify.Bridge) *OrderService {
	return &OrderService{
		orders:       orders,
		coupons:      coupons,
		bridge:       bridge,
		statusBuffer: 8,
	}
}

// Submit turns a snapshot of cart into a Pending order with a frozen total.
func (s *OrderService) Submit(ctx context.Context, cart model.Cart, opts SubmitOptions) (*model.Order, error) {
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	snapshot := cart.Clone()
	for _, it := range snapshot.Items {
		if it.Quantity < 1 || it.Quantity > model.MaxQuantity || it.UnitPrice < 0 {
			return nil, ErrInvalidItem
		}
	}
	if _, ok := pricing.CheckedSubtotal(snapshot); !ok {
		return nil, fmt.Errorf("%w: subtotal overflows", ErrInvalidItem)
	}

	var (
		percent float64
		applied *string
	)
	if strings.TrimSpace(opts.CouponCode) != "" {
		c, err := s.coupons.Validate(ctx, opts.CouponCode)
		switch {
		case err == nil:
			percent = c.DiscountPercent
			applied = &c.Code
		case KindOf(err) == KindTransient:
			return nil, err
		case opts.IgnoreCouponError:
			slog.Info("submitting without coupon", "code", opts.CouponCode, "reason", err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrInvalidCoupon, err)
		}
	}

	total := pricing.ComputeTotal(snapshot, percent)

	order := &model.Order{
		Items:             snapshot.Items,
		TotalPrice:        total.Total,
		Status:            model.StatusPending,
		AppliedCouponCode: applied,
	}
	if key := strings.TrimSpace(opts.IdempotencyKey); key != "" {
		order.IdempotencyKey = &key
	}

	if err := s.orders.Create(ctx, order); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			slog.Info("order submission replayed", "id", order.ID)
			return order, nil
		}
		return nil, storeErr("create order", err)
	}

	slog.Info("order submitted", "id", order.ID, "items", len(order.Items), "total", order.TotalPrice)
	return order, nil
}

// SetStatus stores status on the order. Any of the three statuses may be set
// at any time; concurrent writers race and the last one wins.
func (s *OrderService) SetStatus(ctx context.Context, id string, status model.OrderStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	if err := s.orders.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return storeErr("update order status", err)
	}
	slog.Info("order status changed", "id", id, "status", status)
	return nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*model.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, storeErr("get order", err)
	}
	return o, nil
}

func (s *OrderService) GetStatus(ctx context.Context, id string) (model.OrderStatus, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return o.Status, nil
}

func (s *OrderService) List(ctx context.Context, f repository.OrderListFilter) ([]model.Order, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	orders, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, storeErr("list orders", err)
	}
	return orders, nil
}

// Delete removes the order. Customers tracking it see their stream end.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		return storeErr("delete order", err)
	}
	slog.Info("order deleted", "id", id)
	return nil
}

func (s *OrderService) OnNewOrder(h notify.Handler) notify.Subscription {
	return s.bridge.OnNewOrder(h)
}

// SubscribeToStatus streams the status of order id. The current status is
// always delivered first, then the latest distinct status as it changes:
// repeats are collapsed and a reader that falls behind skips intermediate
// values. The channel is closed when ctx is done or the order is deleted.
func (s *OrderService) SubscribeToStatus(ctx context.Context, id string) (<-chan model.OrderStatus, error) {
	ctx, cancel := context.WithCancel(ctx)
	t := &statusTracker{out: make(chan model.OrderStatus, s.statusBuffer)}

	// Subscribe before the read so no change slips between the two; events
	// arriving meanwhile are held until the initial status is queued.
	sub := s.bridge.OnStatusChange(id, func(ev model.OrderEvent) {
		switch ev.Kind {
		case model.EventUpdate:
			t.send(ev.Status)
		case model.EventResync:
			go s.resync(ctx, cancel, id, t)
		}
	})

	status, err := s.GetStatus(ctx, id)
	if err != nil {
		sub.Close()
		cancel()
		return nil, err
	}
	t.start(status)

	go func() {
		defer cancel()
		select {
		case <-ctx.Done():
		case <-sub.Done():
		}
		sub.Close()
		t.close()
	}()

	return t.out, nil
}

// resync re-reads the status after the notification transport reconnected.
// An order deleted during the outage ends the stream.
func (s *OrderService) resync(ctx context.Context, stop context.CancelFunc, id string, t *statusTracker) {
	status, err := s.GetStatus(ctx, id)
	switch {
	case errors.Is(err, ErrOrderNotFound):
		stop()
	case err != nil:
		if ctx.Err() == nil {
			slog.Warn("status resync failed", "id", id, "error", err)
		}
	default:
		t.send(status)
	}
}

type statusTracker struct {
	mu      sync.Mutex
	out     chan model.OrderStatus
	last    model.OrderStatus
	started bool
	pending []model.OrderStatus
	closed  bool
}

func (t *statusTracker) send(st model.OrderStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		t.pending = append(t.pending, st)
		return
	}
	t.sendLocked(st)
}

// start queues the initial status ahead of anything received before it.
func (t *statusTracker) start(initial model.OrderStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sendLocked(initial)
	for _, st := range t.pending {
		t.sendLocked(st)
	}
	t.pending = nil
	t.started = true
}

// sendLocked never blocks. Consecutive repeats are skipped, and when the
// reader lags the oldest queued status is dropped so the latest one is kept.
func (t *statusTracker) sendLocked(st model.OrderStatus) {
	if t.closed || st == t.last {
		return
	}
	t.last = st
	for {
		select {
		case t.out <- st:
			return
		default:
			select {
			case <-t.out:
			default:
			}
		}
	}
}

func (t *statusTracker) close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.closed = true
		close(t.out)
	}
}

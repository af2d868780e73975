package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"orderdesk/internal/model"
	"orderdesk/internal/notify"
	"orderdesk/internal/repository"
)

type testEnv struct {
	hub     *notify.Hub
	repo    *repository.Repository
	coupons *CouponService
	orders  *OrderService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	hub := notify.NewHub()
	repo := repository.NewMemory(hub)
	coupons := NewCouponService(repo.Coupons)
	return &testEnv{
		hub:     hub,
		repo:    repo,
		coupons: coupons,
		orders:  NewOrderService(repo.Orders, coupons, hub),
	}
}

func (e *testEnv) addCoupon(t *testing.T, code string, percent float64, active bool) {
	t.Helper()
	_, err := e.coupons.Create(context.Background(), code, percent, active)
	require.NoError(t, err)
}

func pizzaCart() model.Cart {
	return model.Cart{Items: []model.CartItem{
		{MenuItemID: 1, Name: "Pizza", UnitPrice: 2000, Quantity: 2},
		{MenuItemID: 2, Name: "Cola", UnitPrice: 300, Quantity: 1},
	}}
}

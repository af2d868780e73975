package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/model"
)

func TestMenuService_CRUD(t *testing.T) {
	env := newTestEnv(t)
	svc := NewMenuService(env.repo.Menu)
	ctx := context.Background()

	require.ErrorIs(t, svc.Create(ctx, &model.MenuItem{Name: "  ", Price: 100}), ErrMenuItemInvalid)
	require.ErrorIs(t, svc.Create(ctx, &model.MenuItem{Name: "Soup", Price: -1}), ErrMenuItemInvalid)

	pizza := &model.MenuItem{Name: " Pizza ", Category: "main", Price: 2000}
	require.NoError(t, svc.Create(ctx, pizza))
	assert.Equal(t, "Pizza", pizza.Name)
	require.NoError(t, svc.Create(ctx, &model.MenuItem{Name: "Cola", Category: "drinks", Price: 300}))

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	drinks, err := svc.List(ctx, "drinks")
	require.NoError(t, err)
	require.Len(t, drinks, 1)
	assert.Equal(t, "Cola", drinks[0].Name)

	pizza.Price = 2200
	require.NoError(t, svc.Update(ctx, pizza))
	line, err := svc.CartItem(ctx, pizza.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CartItem{MenuItemID: pizza.ID, Name: "Pizza", UnitPrice: 2200, Quantity: 1}, line)

	require.NoError(t, svc.Delete(ctx, pizza.ID))
	_, err = svc.Get(ctx, pizza.ID)
	require.ErrorIs(t, err, ErrMenuItemNotFound)
	require.ErrorIs(t, svc.Update(ctx, pizza), ErrMenuItemNotFound)
	require.ErrorIs(t, svc.Delete(ctx, pizza.ID), ErrMenuItemNotFound)
}

func TestStatsService_Get(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	menu := NewMenuService(env.repo.Menu)
	stats := NewStatsService(env.repo.Orders, env.repo.Menu)

	require.NoError(t, menu.Create(ctx, &model.MenuItem{Name: "Pizza", Price: 2000}))
	_, err := env.orders.Submit(ctx, pizzaCart(), SubmitOptions{})
	require.NoError(t, err)
	_, err = env.orders.Submit(ctx, pizzaCart(), SubmitOptions{})
	require.NoError(t, err)

	got, err := stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, &model.Stats{OrdersCount: 2, Revenue: 8600, MenuItemsCount: 1}, got)
}

package service

import (
	"context"

	"orderdesk/internal/model"
	"orderdesk/internal/repository"
)

type StatsService struct {
	orders repository.OrderRepo
	menu   repository.MenuRepo
}

func NewStatsService(orders repository.OrderRepo, menu repository.MenuRepo) *StatsService {
	return &StatsService{orders: orders, menu: menu}
}

// Get returns the staff dashboard counters.
func (s *StatsService) Get(ctx context.Context) (*model.Stats, error) {
	count, revenue, err := s.orders.Totals(ctx)
	if err != nil {
		return nil, storeErr("order totals", err)
	}
	items, err := s.menu.Count(ctx)
	if err != nil {
		return nil, storeErr("count menu items", err)
	}
	return &model.Stats{
		OrdersCount:    count,
		Revenue:        revenue,
		MenuItemsCount: items,
	}, nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"orderdesk/internal/model"
	"orderdesk/internal/repository"
)

type MenuService struct {
	repo repository.MenuRepo
}

func NewMenuService(repo repository.MenuRepo) *MenuService {
	return &MenuService{repo: repo}
}

func (s *MenuService) List(ctx context.Context, category string) ([]model.MenuItem, error) {
	items, err := s.repo.List(ctx, strings.TrimSpace(category))
	if err != nil {
		return nil, storeErr("list menu", err)
	}
	return items, nil
}

func (s *MenuService) Get(ctx context.Context, id int64) (*model.MenuItem, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, storeErr("get menu item", err)
	}
	return m, nil
}

// CartItem builds a cart line for menu item id at its current price.
func (s *MenuService) CartItem(ctx context.Context, id int64) (model.CartItem, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return model.CartItem{}, err
	}
	return model.CartItem{
		MenuItemID: m.ID,
		Name:       m.Name,
		UnitPrice:  m.Price,
		Quantity:   1,
	}, nil
}

func (s *MenuService) Create(ctx context.Context, m *model.MenuItem) error {
	if err := validateMenuItem(m); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return storeErr("create menu item", err)
	}
	return nil
}

func (s *MenuService) Update(ctx context.Context, m *model.MenuItem) error {
	if err := validateMenuItem(m); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, m); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMenuItemNotFound
		}
		return storeErr("update menu item", err)
	}
	return nil
}

func (s *MenuService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMenuItemNotFound
		}
		return storeErr("delete menu item", err)
	}
	return nil
}

func validateMenuItem(m *model.MenuItem) error {
	m.Name = strings.TrimSpace(m.Name)
	m.Category = strings.TrimSpace(m.Category)
	if m.Name == "" || m.Price < 0 {
		return ErrMenuItemInvalid
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"orderdesk/internal/model"
)

type menuRepo struct {
	db *sql.DB
}

func NewMenuRepo(db *sql.DB) MenuRepo {
	return &menuRepo{db: db}
}

func (r *menuRepo) Create(ctx context.Context, m *model.MenuItem) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO menu_items (name, description, category, price, image)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, m.Name, m.Description, m.Category, m.Price, m.Image).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert menu item: %w", err)
	}
	return nil
}

func (r *menuRepo) GetByID(ctx context.Context, id int64) (*model.MenuItem, error) {
	var m model.MenuItem
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, category, price, image, created_at
		FROM menu_items WHERE id = $1
	`, id).Scan(&m.ID, &m.Name, &m.Description, &m.Category, &m.Price, &m.Image, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	return &m, nil
}

func (r *menuRepo) List(ctx context.Context, category string) ([]model.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, category, price, image, created_at
		FROM menu_items
		WHERE $1 = '' OR category = $1
		ORDER BY id DESC
	`, category)
	if err != nil {
		return nil, fmt.Errorf("query menu: %w", err)
	}
	defer rows.Close()

	var items []model.MenuItem
	for rows.Next() {
		var m model.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Category, &m.Price, &m.Image, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return items, nil
}

func (r *menuRepo) Update(ctx context.Context, m *model.MenuItem) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE menu_items
		SET name = $1, description = $2, category = $3, price = $4, image = $5
		WHERE id = $6
	`, m.Name, m.Description, m.Category, m.Price, m.Image, m.ID)
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}
	return expectRow(res)
}

func (r *menuRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return expectRow(res)
}

func (r *menuRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count menu items: %w", err)
	}
	return n, nil
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"orderdesk/internal/model"
)

type orderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepo {
	return &orderRepo{db: db}
}

const orderColumns = `id, items, total_price, status, promo_code, created_at`

func (r *orderRepo) Create(ctx context.Context, o *model.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	if o.Status == "" {
		o.Status = model.StatusPending
	}

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO orders (items, total_price, status, promo_code, idempotency_key)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING id, created_at
	`, string(items), o.TotalPrice, o.Status, o.AppliedCouponCode, o.IdempotencyKey).Scan(&o.ID, &o.CreatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) || o.IdempotencyKey == nil {
		return fmt.Errorf("insert order: %w", err)
	}

	existing, err := r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, *o.IdempotencyKey))
	if err != nil {
		return fmt.Errorf("load replayed order: %w", err)
	}
	key := o.IdempotencyKey
	*o = *existing
	o.IdempotencyKey = key
	return ErrDuplicate
}

func (r *orderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	o, err := r.scanOne(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return expectRow(res)
}

func (r *orderRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return expectRow(res)
}

func (r *orderRepo) List(ctx context.Context, f OrderListFilter) ([]model.Order, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}

	var status any
	if f.Status != nil {
		status = string(*f.Status)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, status, f.Limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	return r.scanAll(rows)
}

func (r *orderRepo) Totals(ctx context.Context) (int64, int64, error) {
	var count, revenue int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total_price), 0) FROM orders`,
	).Scan(&count, &revenue)
	if err != nil {
		return 0, 0, fmt.Errorf("order totals: %w", err)
	}
	return count, revenue, nil
}

func (r *orderRepo) Unalerted(ctx context.Context, limit int) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE alerted_at IS NULL
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unalerted: %w", err)
	}
	return r.scanAll(rows)
}

func (r *orderRepo) MarkAlerted(ctx context.Context, id string, at time.Time) error {
	if !validID(id) {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET alerted_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("mark alerted: %w", err)
	}
	return expectRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *orderRepo) scanOne(row scanner) (*model.Order, error) {
	var (
		o     model.Order
		items []byte
		promo sql.NullString
	)
	if err := row.Scan(&o.ID, &items, &o.TotalPrice, &o.Status, &promo, &o.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if promo.Valid {
		o.AppliedCouponCode = &promo.String
	}
	return &o, nil
}

func (r *orderRepo) scanAll(rows *sql.Rows) ([]model.Order, error) {
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		o, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return orders, nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// validID rejects ids that cannot be a uuid so they surface as not found
// instead of a type error from Postgres.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

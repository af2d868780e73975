package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"orderdesk/internal/model"
)

const uniqueViolation = "23505"

type couponRepo struct {
	db *sql.DB
}

func NewCouponRepo(db *sql.DB) CouponRepo {
	return &couponRepo{db: db}
}

func (r *couponRepo) Create(ctx context.Context, c *model.Coupon) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO coupons (code, discount_percent, is_active)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, c.Code, c.DiscountPercent, c.Active).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

func (r *couponRepo) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var c model.Coupon
	err := r.db.QueryRowContext(ctx,
		`SELECT id, code, discount_percent, is_active, created_at FROM coupons WHERE code = $1`,
		code,
	).Scan(&c.ID, &c.Code, &c.DiscountPercent, &c.Active, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	return &c, nil
}

func (r *couponRepo) List(ctx context.Context) ([]model.Coupon, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code, discount_percent, is_active, created_at FROM coupons ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query coupons: %w", err)
	}
	defer rows.Close()

	var coupons []model.Coupon
	for rows.Next() {
		var c model.Coupon
		if err := rows.Scan(&c.ID, &c.Code, &c.DiscountPercent, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration failed: %w", err)
	}

	return coupons, nil
}

func (r *couponRepo) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE coupons SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("update coupon: %w", err)
	}
	return expectRow(res)
}

func (r *couponRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon: %w", err)
	}
	return expectRow(res)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

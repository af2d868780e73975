package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"orderdesk/internal/model"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key already exists. For orders
	// created with an idempotency key the existing row is loaded into the
	// argument before returning it.
	ErrDuplicate = errors.New("duplicate")
)

type OrderListFilter struct {
	Status *model.OrderStatus
	Limit  int
	Offset int
}

type OrderRepo interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f OrderListFilter) ([]model.Order, error)
	Totals(ctx context.Context) (count, revenue int64, err error)

	// Unalerted returns the oldest orders whose staff alert has not been sent.
	Unalerted(ctx context.Context, limit int) ([]model.Order, error)
	MarkAlerted(ctx context.Context, id string, at time.Time) error
}

type CouponRepo interface {
	Create(ctx context.Context, c *model.Coupon) error
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	List(ctx context.Context) ([]model.Coupon, error)
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

type MenuRepo interface {
	Create(ctx context.Context, m *model.MenuItem) error
	GetByID(ctx context.Context, id int64) (*model.MenuItem, error)
	List(ctx context.Context, category string) ([]model.MenuItem, error)
	Update(ctx context.Context, m *model.MenuItem) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

type Repository struct {
	Orders  OrderRepo
	Coupons CouponRepo
	Menu    MenuRepo
}

func New(db *sql.DB) *Repository {
	return &Repository{
		Orders:  NewOrderRepo(db),
		Coupons: NewCouponRepo(db),
		Menu:    NewMenuRepo(db),
	}
}

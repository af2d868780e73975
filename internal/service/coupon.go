package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"orderdesk/internal/model"
	"orderdesk/internal/repository"
)

type CouponService struct {
	repo repository.CouponRepo
}

func NewCouponService(repo repository.CouponRepo) *CouponService {
	return &CouponService{repo: repo}
}

// Validate looks up code (trimmed, upper-cased) and returns the coupon if it
// exists and is active. The check is point-in-time; a coupon disabled right
// after validation is still honored by a submission already in flight.
func (s *CouponService) Validate(ctx context.Context, code string) (*model.Coupon, error) {
	code = model.NormalizeCode(code)
	if code == "" {
		return nil, ErrCouponEmpty
	}

	c, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, storeErr("get coupon", err)
	}
	if !c.Active {
		return nil, ErrCouponInactive
	}
	return c, nil
}

func (s *CouponService) Create(ctx context.Context, code string, percent float64, active bool) (*model.Coupon, error) {
	code = model.NormalizeCode(code)
	if code == "" {
		return nil, ErrCouponEmpty
	}
	if math.IsNaN(percent) || percent < 0 || percent > 100 {
		return nil, ErrCouponPercent
	}

	c := &model.Coupon{Code: code, DiscountPercent: percent, Active: active}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCouponExists
		}
		return nil, storeErr("create coupon", err)
	}
	return c, nil
}

func (s *CouponService) List(ctx context.Context) ([]model.Coupon, error) {
	coupons, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeErr("list coupons", err)
	}
	return coupons, nil
}

func (s *CouponService) SetActive(ctx context.Context, id int64, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCouponNotFound
		}
		return storeErr("update coupon", err)
	}
	return nil
}

func (s *CouponService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCouponNotFound
		}
		return storeErr("delete coupon", err)
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}

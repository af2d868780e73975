package service

import "errors"

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrInvalidCoupon = errors.New("invalid coupon")
	ErrInvalidStatus = errors.New("invalid order status")
	ErrOrderNotFound = errors.New("order not found")

	ErrCouponEmpty    = errors.New("coupon code is empty")
	ErrCouponNotFound = errors.New("coupon not found")
	ErrCouponInactive = errors.New("coupon is inactive")
	ErrCouponExists   = errors.New("coupon code already exists")
	ErrCouponPercent  = errors.New("discount percent must be between 0 and 100")

	ErrMenuItemNotFound = errors.New("menu item not found")
	ErrMenuItemInvalid  = errors.New("menu item needs a name and a non-negative price")

	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStore marks a failed read or write against the durable store. The
	// caller may retry; nothing is retried automatically.
	ErrStore = errors.New("store unavailable")
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindTransient
	KindUnauthorized
)

// KindOf classifies an error returned by this package.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrOrderNotFound),
		errors.Is(err, ErrCouponNotFound),
		errors.Is(err, ErrMenuItemNotFound):
		// an invalid coupon wrapping "not found" is still a validation error
		if errors.Is(err, ErrInvalidCoupon) {
			return KindValidation
		}
		return KindNotFound
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInvalidCoupon),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrCouponEmpty),
		errors.Is(err, ErrCouponInactive),
		errors.Is(err, ErrCouponExists),
		errors.Is(err, ErrCouponPercent),
		errors.Is(err, ErrMenuItemInvalid),
		errors.Is(err, ErrInvalidItem):
		return KindValidation
	case errors.Is(err, ErrInvalidCredentials):
		return KindUnauthorized
	case errors.Is(err, ErrStore):
		return KindTransient
	}
	return KindInternal
}

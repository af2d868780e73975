// Package pricing computes cart totals. It performs no I/O.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"

	"orderdesk/internal/model"
)

type Breakdown struct {
	Subtotal       int64 `json:"subtotal"`
	DiscountAmount int64 `json:"discount_amount"`
	Total          int64 `json:"total"`
}

var hundred = decimal.NewFromInt(100)

func Subtotal(cart model.Cart) int64 {
	var sum int64
	for _, it := range cart.Items {
		sum += it.UnitPrice * int64(it.Quantity)
	}
	return sum
}

// CheckedSubtotal is Subtotal for untrusted carts. ok is false when a
// quantity or price is negative or the sum does not fit in an int64.
func CheckedSubtotal(cart model.Cart) (sum int64, ok bool) {
	for _, it := range cart.Items {
		q := int64(it.Quantity)
		if q < 0 || it.UnitPrice < 0 {
			return 0, false
		}
		if q != 0 && it.UnitPrice > math.MaxInt64/q {
			return 0, false
		}
		line := it.UnitPrice * q
		if sum > math.MaxInt64-line {
			return 0, false
		}
		sum += line
	}
	return sum, true
}

// ComputeTotal prices cart with the given discount percentage. The percentage
// is clamped to [0,100]; the discount is rounded half-up exactly once.
func ComputeTotal(cart model.Cart, discountPercent float64) Breakdown {
	subtotal := Subtotal(cart)
	p := ClampPercent(discountPercent)

	discount := decimal.NewFromInt(subtotal).
		Mul(decimal.NewFromFloat(p)).
		Div(hundred).
		Round(0).
		IntPart()

	return Breakdown{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          subtotal - discount,
	}
}

func ClampPercent(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

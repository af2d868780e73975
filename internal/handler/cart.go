package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"orderdesk/internal/cart"
	"orderdesk/internal/model"
	"orderdesk/internal/mw"
	"orderdesk/internal/pricing"
	"orderdesk/internal/service"
	"orderdesk/internal/storage"
)

const cartCountHeader = "X-Cart-Count"

type cartView struct {
	Items          []model.CartItem `json:"items"`
	Count          int              `json:"count"`
	Subtotal       int64            `json:"subtotal"`
	DiscountAmount int64            `json:"discount_amount"`
	Total          int64            `json:"total"`
	Coupon         *couponResponse  `json:"coupon,omitempty"`
	CouponError    string           `json:"coupon_error,omitempty"`
}

func newCartView(c model.Cart, coupon *model.Coupon) cartView {
	var percent float64
	v := cartView{Items: c.Items, Count: c.Count()}
	if coupon != nil {
		percent = coupon.DiscountPercent
		v.Coupon = &couponResponse{Code: coupon.Code, DiscountPercent: coupon.DiscountPercent}
	}
	b := pricing.ComputeTotal(c, percent)
	v.Subtotal, v.DiscountAmount, v.Total = b.Subtotal, b.DiscountAmount, b.Total
	return v
}

// openCart loads the session's cart and reports every change through the
// X-Cart-Count header.
func openCart(w http.ResponseWriter, r *http.Request, kv storage.KV) (*cart.Store, bool) {
	store, err := cart.Open(r.Context(), kv, mw.SessionID(r.Context()))
	if err != nil {
		slog.Warn("open cart failed", "error", err)
		http.Error(w, "service temporarily unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	w.Header().Set(cartCountHeader, strconv.Itoa(store.Snapshot().Count()))
	store.Subscribe(func(c model.Cart) {
		w.Header().Set(cartCountHeader, strconv.Itoa(c.Count()))
	})
	return store, true
}

// GetCartHandler prices the cart, optionally with the coupon given in the
// coupon query parameter. An unusable coupon is reported, not fatal.
func GetCartHandler(kv storage.KV, couponSvc *service.CouponService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, ok := openCart(w, r, kv)
		if !ok {
			return
		}

		var (
			coupon    *model.Coupon
			couponErr string
		)
		if code := r.URL.Query().Get("coupon"); code != "" {
			c, err := couponSvc.Validate(r.Context(), code)
			switch {
			case err == nil:
				coupon = c
			case service.KindOf(err) == service.KindTransient:
				writeError(w, "validate coupon", err)
				return
			default:
				couponErr = err.Error()
			}
		}

		v := newCartView(store.Snapshot(), coupon)
		v.CouponError = couponErr
		writeJSON(w, http.StatusOK, v)
	}
}

type addCartItemRequest struct {
	MenuItemID int64 `json:"id"`
}

func AddCartItemHandler(kv storage.KV, menuSvc *service.MenuService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addCartItemRequest
		if err := decodeJSON(w, r, &req); err != nil || req.MenuItemID <= 0 {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		item, err := menuSvc.CartItem(r.Context(), req.MenuItemID)
		if err != nil {
			writeError(w, "add cart item", err)
			return
		}

		mutateCart(w, r, kv, func(ctx context.Context, s *cart.Store) error {
			return s.Add(ctx, item)
		})
	}
}

type updateCartItemRequest struct {
	Delta int `json:"delta"`
}

func UpdateCartItemHandler(kv storage.KV) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := int64Param(r, "id")
		if !ok {
			http.Error(w, "invalid menu item id", http.StatusBadRequest)
			return
		}

		var req updateCartItemRequest
		if err := decodeJSON(w, r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		mutateCart(w, r, kv, func(ctx context.Context, s *cart.Store) error {
			return s.UpdateQuantity(ctx, id, req.Delta)
		})
	}
}

func RemoveCartItemHandler(kv storage.KV) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := int64Param(r, "id")
		if !ok {
			http.Error(w, "invalid menu item id", http.StatusBadRequest)
			return
		}

		mutateCart(w, r, kv, func(ctx context.Context, s *cart.Store) error {
			return s.Remove(ctx, id)
		})
	}
}

func ClearCartHandler(kv storage.KV) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutateCart(w, r, kv, func(ctx context.Context, s *cart.Store) error {
			return s.Clear(ctx)
		})
	}
}

func mutateCart(w http.ResponseWriter, r *http.Request, kv storage.KV, fn func(context.Context, *cart.Store) error) {
	store, ok := openCart(w, r, kv)
	if !ok {
		return
	}
	if err := fn(r.Context(), store); err != nil {
		slog.Warn("cart update failed", "error", err)
		http.Error(w, "service temporarily unavailable", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(store.Snapshot(), nil))
}

package handler

import (
	"net/http"

	"orderdesk/internal/model"
	"orderdesk/internal/service"
)

type couponRequest struct {
	Code string `json:"code"`
}

type couponResponse struct {
	Code            string  `json:"code"`
	DiscountPercent float64 `json:"discount_percent"`
}

// ValidateCouponHandler answers whether a code can be applied right now.
func ValidateCouponHandler(couponSvc *service.CouponService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req couponRequest
		if err := decodeJSON(w, r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := couponSvc.Validate(r.Context(), req.Code)
		if err != nil {
			writeError(w, "validate coupon", err)
			return
		}
		writeJSON(w, http.StatusOK, couponResponse{Code: c.Code, DiscountPercent: c.DiscountPercent})
	}
}

func ListCouponsHandler(couponSvc *service.CouponService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		coupons, err := couponSvc.List(r.Context())
		if err != nil {
			writeError(w, "list coupons", err)
			return
		}
		if coupons == nil {
			coupons = []model.Coupon{}
		}
		writeJSON(w, http.StatusOK, coupons)
	}
}

type createCouponRequest struct {
	Code            string  `json:"code"`
	DiscountPercent float64 `json:"discount_percent"`
	Active          *bool   `json:"is_active"`
}

func CreateCouponHandler(couponSvc *service.CouponService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createCouponRequest
		if err := decodeJSON(w, r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		active := true
		if req.Active != nil {
			active = *req.Active
		}

		c, err := couponSvc.Create(r.Context(), req.Code, req.DiscountPercent, active)
		if err != nil {
			writeError(w, "create coupon", err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

type toggleCouponRequest struct {
	Active *bool `json:"is_active"`
}

func ToggleCouponHandler(couponSvc *service.CouponService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := int64Param(r, "id")
		if !ok {
			http.Error(w, "invalid coupon id", http.StatusBadRequest)
			return
		}

		var req toggleCouponRequest
		if err := decodeJSON(w, r, &req); err != nil || req.Active == nil {
			http.Error(w, "is_active is required", http.StatusBadRequest)
			return
		}

		if err := couponSvc.SetActive(r.Context(), id, *req.Active); err != nil {
			writeError(w, "toggle coupon", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteCouponHandler(couponSvc *service.CouponService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := int64Param(r, "id")
		if !ok {
			http.Error(w, "invalid coupon id", http.StatusBadRequest)
			return
		}

		if err := couponSvc.Delete(r.Context(), id); err != nil {
			writeError(w, "delete coupon", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

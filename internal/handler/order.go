package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"orderdesk/internal/model"
	"orderdesk/internal/mw"
	"orderdesk/internal/service"
	"orderdesk/internal/storage"
)

const idempotencyHeader = "Idempotency-Key"

type submitOrderRequest struct {
	CouponCode        string `json:"coupon_code"`
	IgnoreCouponError bool   `json:"ignore_coupon_error"`
}

// SubmitOrderHandler places an order from the session's cart. The body is
// optional.
func SubmitOrderHandler(kv storage.KV, checkoutSvc *service.CheckoutService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitOrderRequest
		if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		store, ok := openCart(w, r, kv)
		if !ok {
			return
		}

		order, err := checkoutSvc.Checkout(r.Context(), mw.SessionID(r.Context()), store, service.SubmitOptions{
			CouponCode:        req.CouponCode,
			IgnoreCouponError: req.IgnoreCouponError,
			IdempotencyKey:    r.Header.Get(idempotencyHeader),
		})
		if err != nil {
			writeError(w, "submit order", err)
			return
		}
		writeJSON(w, http.StatusCreated, order)
	}
}

func GetOrderHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := orderSvc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, "get order", err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

type statusEvent struct {
	OrderID string            `json:"order_id"`
	Status  model.OrderStatus `json:"status"`
}

// OrderEventsHandler streams status changes of one order as server-sent
// events. The first event carries the current status; an "end" event is sent
// when the order is deleted.
func OrderEventsHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		statuses, err := orderSvc.SubscribeToStatus(r.Context(), id)
		if err != nil {
			writeError(w, "subscribe to order", err)
			return
		}

		stream := startSSE(w)
		heartbeat := time.NewTicker(sseHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case st, ok := <-statuses:
				if !ok {
					if r.Context().Err() == nil {
						_ = stream.event("end", statusEvent{OrderID: id})
					}
					return
				}
				if err := stream.event("status", statusEvent{OrderID: id, Status: st}); err != nil {
					slog.Debug("order stream closed", "id", id, "error", err)
					return
				}
			case <-heartbeat.C:
				if err := stream.ping(); err != nil {
					return
				}
			}
		}
	}
}

type trackedOrderResponse struct {
	service.TrackedOrder
	Status model.OrderStatus `json:"status"`
}

// GetTrackedOrderHandler returns the order this session placed last, with its
// current status. A tracked order that no longer exists is forgotten.
func GetTrackedOrderHandler(trackingSvc *service.TrackingService, orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mw.SessionID(r.Context())
		tracked, err := trackingSvc.Current(r.Context(), session)
		if err != nil {
			writeError(w, "load tracked order", err)
			return
		}
		if tracked == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		status, err := orderSvc.GetStatus(r.Context(), tracked.OrderID)
		if errors.Is(err, service.ErrOrderNotFound) {
			if err := trackingSvc.Forget(r.Context(), session); err != nil {
				slog.Warn("failed to forget tracked order", "error", err)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err != nil {
			writeError(w, "get tracked order status", err)
			return
		}
		writeJSON(w, http.StatusOK, trackedOrderResponse{TrackedOrder: *tracked, Status: status})
	}
}

func ForgetTrackedOrderHandler(trackingSvc *service.TrackingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := trackingSvc.Forget(r.Context(), mw.SessionID(r.Context())); err != nil {
			writeError(w, "forget tracked order", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"orderdesk/internal/model"
	"orderdesk/internal/repository"
	"orderdesk/internal/service"
)

func ListOrdersHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var f repository.OrderListFilter
		if s := q.Get("status"); s != "" {
			status := model.OrderStatus(s)
			f.Status = &status
		}
		var err error
		if f.Limit, err = queryInt(q.Get("limit")); err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		if f.Offset, err = queryInt(q.Get("offset")); err != nil {
			http.Error(w, "invalid offset", http.StatusBadRequest)
			return
		}

		orders, err := orderSvc.List(r.Context(), f)
		if err != nil {
			writeError(w, "list orders", err)
			return
		}
		if orders == nil {
			orders = []model.Order{}
		}
		writeJSON(w, http.StatusOK, orders)
	}
}

func queryInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

type updateStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

func UpdateOrderStatusHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateStatusRequest
		if err := decodeJSON(w, r, &req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := orderSvc.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
			writeError(w, "update order status", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func DeleteOrderHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := orderSvc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, "delete order", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// NewOrdersEventsHandler streams every newly placed order to the staff
// dashboard. Events that arrive while the client is too slow to read are
// dropped; the dashboard reloads the list on reconnect.
func NewOrdersEventsHandler(orderSvc *service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events := make(chan model.OrderEvent, 32)
		sub := orderSvc.OnNewOrder(func(ev model.OrderEvent) {
			select {
			case events <- ev:
			default:
				slog.Warn("dropping new order event for slow client", "order", ev.OrderID)
			}
		})
		defer sub.Close()

		stream := startSSE(w)
		heartbeat := time.NewTicker(sseHeartbeat)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case ev := <-events:
				if err := stream.event("order", ev); err != nil {
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

func StatsHandler(statsSvc *service.StatsService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := statsSvc.Get(r.Context())
		if err != nil {
			writeError(w, "get stats", err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

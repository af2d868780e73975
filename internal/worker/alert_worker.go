package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"orderdesk/internal/model"
	"orderdesk/internal/repository"
	"orderdesk/internal/service"
)

// AlertWorker sends a staff alert for every order that has not had one yet.
// An order is marked alerted once all alerters accepted it; failed orders are
// retried on the next tick.
type AlertWorker struct {
	orders    repository.OrderRepo
	alerters  []service.Alerter
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

func NewAlertWorker(orders repository.OrderRepo, interval time.Duration, alerters ...service.Alerter) *AlertWorker {
	return &AlertWorker{
		orders:    orders,
		alerters:  alerters,
		interval:  interval,
		batchSize: 20,
		now:       time.Now,
	}
}

func (w *AlertWorker) Start(ctx context.Context) {
	slog.Info("starting alert worker", "interval", w.interval, "alerters", len(w.alerters))
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("alert worker stopped")
			return
		case <-ticker.C:
			if err := w.processBatch(ctx); err != nil {
				slog.Error("batch processing failed", "error", err)
			}
		}
	}
}

func (w *AlertWorker) processBatch(ctx context.Context) error {
	orders, err := w.orders.Unalerted(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get unalerted orders: %w", err)
	}

	for _, order := range orders {
		if !w.send(ctx, order) {
			continue
		}
		if err := w.orders.MarkAlerted(ctx, order.ID, w.now()); err != nil {
			slog.Error("failed to mark order alerted", "order", order.ID, "error", err)
		}
	}
	return nil
}

func (w *AlertWorker) send(ctx context.Context, order model.Order) bool {
	ok := true
	for _, a := range w.alerters {
		if err := a.SendOrderAlert(ctx, order); err != nil {
			slog.Warn("order alert failed", "alerter", a.Name(), "order", order.ID, "error", err)
			ok = false
			continue
		}
		slog.Info("order alert sent", "alerter", a.Name(), "order", order.ID)
	}
	return ok
}

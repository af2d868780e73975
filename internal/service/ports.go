package service

import (
	"context"

	"orderdesk/internal/model"
)

// Alerter delivers a human-readable summary of a new order to staff.
type Alerter interface {
	Name() string
	SendOrderAlert(ctx context.Context, o model.Order) error
}

// Package notify fans order change events out to interested subscribers.
package notify

import (
	"orderdesk/internal/model"
)

type Handler func(model.OrderEvent)

// Subscription is a live registration on a Bridge.
type Subscription interface {
	// Close stops delivery. It is idempotent; once it returns the handler
	// will not be invoked again. It must not be called from inside the handler.
	Close()
	// Done is closed when the subscription ends, either through Close or
	// because the watched order was deleted.
	Done() <-chan struct{}
}

// Bridge narrows the raw change stream to the two views the application uses.
type Bridge interface {
	// OnNewOrder delivers INSERT events for any order.
	OnNewOrder(h Handler) Subscription
	// OnStatusChange delivers UPDATE and RESYNC events for a single order.
	// Deleting the order ends the subscription without invoking h.
	OnStatusChange(orderID string, h Handler) Subscription
}

type Publisher interface {
	Publish(ev model.OrderEvent)
}

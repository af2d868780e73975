package model

import "time"

type EventKind string

const (
	EventInsert EventKind = "INSERT"
	EventUpdate EventKind = "UPDATE"
	EventDelete EventKind = "DELETE"
	// EventResync is emitted after the notification transport reconnected;
	// events from the outage are lost and state must be re-read.
	EventResync EventKind = "RESYNC"
)

type OrderEvent struct {
	Kind       EventKind   `json:"kind"`
	OrderID    string      `json:"order_id"`
	Status     OrderStatus `json:"status"`
	TotalPrice int64       `json:"total_price"`
	At         time.Time   `json:"at"`
}

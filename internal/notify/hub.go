package notify

import (
	"sync"
	"sync/atomic"

	"orderdesk/internal/model"
)

// Hub is the in-process Bridge. Events are delivered synchronously on the
// publishing goroutine, so handlers must not block. Callers serialize
// Publish to keep events in order.
type Hub struct {
	mu       sync.RWMutex
	next     uint64
	newOrder map[uint64]*subscription
	byOrder  map[string]map[uint64]*subscription
}

func NewHub() *Hub {
	return &Hub{
		newOrder: make(map[uint64]*subscription),
		byOrder:  make(map[string]map[uint64]*subscription),
	}
}

type subscription struct {
	hub     *Hub
	id      uint64
	orderID string
	handler Handler
	done    chan struct{}
	once    sync.Once

	// mu is held for the duration of a handler call, so Close returns only
	// once any in-flight call has finished.
	mu     sync.Mutex
	closed atomic.Bool
}

func (s *subscription) Done() <-chan struct{} { return s.done }

func (s *subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hub.mu.Lock()
	s.hub.removeLocked(s)
	s.hub.mu.Unlock()
}

func (s *subscription) end() {
	s.once.Do(func() { close(s.done) })
}

func (s *subscription) deliver(ev model.OrderEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed.Load() {
		return
	}
	s.handler(ev)
}

func (h *Hub) OnNewOrder(fn Handler) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.newSubLocked("", fn)
	h.newOrder[s.id] = s
	return s
}

func (h *Hub) OnStatusChange(orderID string, fn Handler) Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.newSubLocked(orderID, fn)
	subs, ok := h.byOrder[orderID]
	if !ok {
		subs = make(map[uint64]*subscription)
		h.byOrder[orderID] = subs
	}
	subs[s.id] = s
	return s
}

// Publish routes ev to its subscribers. Handlers run after the hub lock is
// released, so they may subscribe or close other subscriptions.
func (h *Hub) Publish(ev model.OrderEvent) {
	type delivery struct {
		sub *subscription
		ev  model.OrderEvent
	}
	var out []delivery

	switch ev.Kind {
	case model.EventInsert:
		h.mu.RLock()
		for _, s := range h.newOrder {
			out = append(out, delivery{s, ev})
		}
		h.mu.RUnlock()

	case model.EventUpdate:
		h.mu.RLock()
		for _, s := range h.byOrder[ev.OrderID] {
			out = append(out, delivery{s, ev})
		}
		h.mu.RUnlock()

	case model.EventDelete:
		h.mu.Lock()
		for _, s := range h.byOrder[ev.OrderID] {
			h.removeLocked(s)
		}
		h.mu.Unlock()

	case model.EventResync:
		h.mu.RLock()
		for orderID, subs := range h.byOrder {
			for _, s := range subs {
				out = append(out, delivery{s, model.OrderEvent{Kind: model.EventResync, OrderID: orderID, At: ev.At}})
			}
		}
		h.mu.RUnlock()
	}

	for _, d := range out {
		d.sub.deliver(d.ev)
	}
}

// Subscribers returns the number of live subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := len(h.newOrder)
	for _, subs := range h.byOrder {
		n += len(subs)
	}
	return n
}

func (h *Hub) newSubLocked(orderID string, fn Handler) *subscription {
	h.next++
	return &subscription{
		hub:     h,
		id:      h.next,
		orderID: orderID,
		handler: fn,
		done:    make(chan struct{}),
	}
}

func (h *Hub) removeLocked(s *subscription) {
	s.closed.Store(true)
	if s.orderID == "" {
		delete(h.newOrder, s.id)
	} else if subs, ok := h.byOrder[s.orderID]; ok {
		delete(subs, s.id)
		if len(subs) == 0 {
			delete(h.byOrder, s.orderID)
		}
	}
	s.end()
}

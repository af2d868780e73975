// Package cart holds the shopper's in-progress selection for one session.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"orderdesk/internal/model"
	"orderdesk/internal/storage"
)

// Observer is called after every successful mutation with a copy of the cart.
type Observer func(model.Cart)

// Store owns a single session's cart. Mutations are applied in call order and
// each one is written to the backing KV before the call returns.
type Store struct {
	mu        sync.Mutex
	kv        storage.KV
	key       string
	items     []model.CartItem
	observers map[int]Observer
	nextObs   int
}

func Key(sessionID string) string {
	return "cart:" + sessionID
}

// Open restores the persisted cart for sessionID, or starts an empty one.
func Open(ctx context.Context, kv storage.KV, sessionID string) (*Store, error) {
	s := &Store{
		kv:        kv,
		key:       Key(sessionID),
		observers: make(map[int]Observer),
	}

	raw, err := kv.Get(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("load cart: %w", err)
	}

	var c model.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	for _, it := range c.Items {
		it.Quantity = min(max(it.Quantity, 1), model.MaxQuantity)
		s.items = append(s.items, it)
	}
	return s, nil
}

// Add puts one unit of item into the cart. An item already present has its
// quantity incremented, up to model.MaxQuantity, instead of being appended
// again.
func (s *Store) Add(ctx context.Context, item model.CartItem) error {
	return s.mutate(ctx, func() {
		for i := range s.items {
			if s.items[i].MenuItemID == item.MenuItemID {
				if s.items[i].Quantity < model.MaxQuantity {
					s.items[i].Quantity++
				}
				return
			}
		}
		item.Quantity = 1
		s.items = append(s.items, item)
	})
}

// UpdateQuantity shifts an item's quantity by delta, saturating at 1 and
// model.MaxQuantity. Unknown ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, menuItemID int64, delta int) error {
	return s.mutate(ctx, func() {
		for i := range s.items {
			if s.items[i].MenuItemID == menuItemID {
				s.items[i].Quantity = shift(s.items[i].Quantity, delta)
				return
			}
		}
	})
}

func shift(q, delta int) int {
	switch {
	case delta >= model.MaxQuantity-q:
		return model.MaxQuantity
	case delta <= 1-q:
		return 1
	}
	return q + delta
}

func (s *Store) Remove(ctx context.Context, menuItemID int64) error {
	return s.mutate(ctx, func() {
		for i := range s.items {
			if s.items[i].MenuItemID == menuItemID {
				s.items = append(s.items[:i], s.items[i+1:]...)
				return
			}
		}
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, func() {
		s.items = nil
	})
}

func (s *Store) Snapshot() model.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshotLocked() model.Cart {
	return model.Cart{Items: s.items}.Clone()
}

func (s *Store) mutate(ctx context.Context, apply func()) error {
	s.mu.Lock()
	apply()
	snap := s.snapshotLocked()
	observers := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	err := s.persistLocked(ctx, snap)
	s.mu.Unlock()

	if err != nil {
		return err
	}
	for _, o := range observers {
		o(snap.Clone())
	}
	return nil
}

func (s *Store) persistLocked(ctx context.Context, c model.Cart) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

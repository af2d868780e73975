package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"orderdesk/internal/storage"
)

// TrackedOrder is the order a client session is currently following.
type TrackedOrder struct {
	OrderID string `json:"order_id"`
	Total   int64  `json:"total"`
}

type TrackingService struct {
	kv storage.KV
}

func NewTrackingService(kv storage.KV) *TrackingService {
	return &TrackingService{kv: kv}
}

func trackingKey(sessionID string) string {
	return "tracked:" + sessionID
}

func (s *TrackingService) Remember(ctx context.Context, sessionID string, t TrackedOrder) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode tracked order: %w", err)
	}
	if err := s.kv.Set(ctx, trackingKey(sessionID), raw); err != nil {
		return storeErr("remember tracked order", err)
	}
	return nil
}

// Current returns nil when the session tracks nothing.
func (s *TrackingService) Current(ctx context.Context, sessionID string) (*TrackedOrder, error) {
	raw, err := s.kv.Get(ctx, trackingKey(sessionID))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, storeErr("load tracked order", err)
	}
	var t TrackedOrder
	if err := json.Unmarshal(raw, &t); err != nil || t.OrderID == "" {
		return nil, nil
	}
	return &t, nil
}

func (s *TrackingService) Forget(ctx context.Context, sessionID string) error {
	if err := s.kv.Delete(ctx, trackingKey(sessionID)); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return storeErr("forget tracked order", err)
	}
	return nil
}

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"orderdesk/internal/model"
)

// Channel is the Postgres NOTIFY channel the orders trigger writes to.
const Channel = "order_events"

// PGListener turns Postgres NOTIFY payloads into OrderEvents. It keeps one
// dedicated connection and reconnects with backoff; after every reconnect it
// publishes a RESYNC event since notifications sent during the gap are lost.
type PGListener struct {
	uri        string
	pub        Publisher
	minBackoff time.Duration
	maxBackoff time.Duration
	ready      chan struct{}
	listened   bool
}

func NewPGListener(uri string, pub Publisher) *PGListener {
	return &PGListener{
		uri:        uri,
		pub:        pub,
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
		ready:      make(chan struct{}),
	}
}

// Ready is closed once the first LISTEN has been issued.
func (l *PGListener) Ready() <-chan struct{} { return l.ready }

func (l *PGListener) Start(ctx context.Context) {
	slog.Info("starting order listener", "channel", Channel)
	backoff := l.minBackoff

	for {
		listening, err := l.listen(ctx)
		if ctx.Err() != nil {
			slog.Info("order listener stopped")
			return
		}
		if listening {
			backoff = l.minBackoff
		}
		slog.Warn("order listener disconnected", "error", err, "retry_in", backoff)

		select {
		case <-ctx.Done():
			slog.Info("order listener stopped")
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, l.maxBackoff)
	}
}

// listen runs one connection until it fails. The bool reports whether LISTEN
// succeeded on that connection.
func (l *PGListener) listen(ctx context.Context) (bool, error) {
	conn, err := pgx.Connect(ctx, l.uri)
	if err != nil {
		return false, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return false, fmt.Errorf("listen: %w", err)
	}

	if l.listened {
		slog.Info("order listener reconnected, requesting resync")
		l.pub.Publish(model.OrderEvent{Kind: model.EventResync, At: time.Now()})
	} else {
		l.listened = true
		close(l.ready)
	}

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return true, fmt.Errorf("wait for notification: %w", err)
		}

		ev, err := decodeEvent(n.Payload)
		if err != nil {
			slog.Error("bad order notification", "payload", n.Payload, "error", err)
			continue
		}
		l.pub.Publish(ev)
	}
}

func decodeEvent(payload string) (model.OrderEvent, error) {
	var ev model.OrderEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ev, fmt.Errorf("decode: %w", err)
	}
	switch ev.Kind {
	case model.EventInsert, model.EventUpdate, model.EventDelete:
	default:
		return ev, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	if ev.OrderID == "" {
		return ev, errors.New("missing order id")
	}
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	return ev, nil
}

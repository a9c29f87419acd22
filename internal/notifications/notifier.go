// Package notifications delivers moderation events to connected admins.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"postboard/internal/observability"

	"github.com/redis/go-redis/v9"
)

// ModerationChannel is the Redis channel moderation events travel on.
const ModerationChannel = "moderation:events"

// Event is the envelope written to the moderation stream.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"ts"`
}

// Notifier publishes moderation events into Redis. Without Redis, events
// go straight to the local sink, if one is attached.
type Notifier struct {
	rdb   *redis.Client
	local func(payload string)
	now   func() time.Time
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb, now: time.Now}
}

// SetLocalSink installs the delivery function used when Redis is absent.
func (n *Notifier) SetLocalSink(sink func(payload string)) {
	n.local = sink
}

// PublishModerationEvent wraps payload in an Event and publishes it.
func (n *Notifier) PublishModerationEvent(ctx context.Context, eventType string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	msg, err := json.Marshal(Event{Type: eventType, Payload: body, Timestamp: n.now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if n.rdb == nil {
		if n.local != nil {
			n.local(string(msg))
		}
		return nil
	}
	return n.rdb.Publish(ctx, ModerationChannel, string(msg)).Err()
}

// StartModerationSubscriber subscribes to the moderation channel and calls
// onMessage for each payload until ctx is cancelled.
func (n *Notifier) StartModerationSubscriber(ctx context.Context, onMessage func(payload string)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, ModerationChannel)
	// wait for the subscription so nothing published after return is missed
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", ModerationChannel, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							observability.GlobalLogger.Error("panic in moderation subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}

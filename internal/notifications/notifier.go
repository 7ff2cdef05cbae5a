// Package notifications relays store events across instances through Redis
// and delivers them to WebSocket clients.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"

	"domin8x/internal/events"
	"domin8x/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	BroadcastChannel  = "events:broadcast"
	userChannelPrefix = "events:user:"
)

// Notifier publishes events into Redis channels and feeds received ones back to a broker.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return userChannelPrefix + strconv.FormatUint(uint64(userID), 10)
}

// Publish implements events.Relay.
func (n *Notifier) Publish(ctx context.Context, e events.Event) error {
	if n.rdb == nil {
		return fmt.Errorf("redis unavailable")
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	channel := BroadcastChannel
	if e.UserID != 0 {
		channel = UserChannel(e.UserID)
	}
	return n.rdb.Publish(ctx, channel, payload).Err()
}

// StartRelay subscribes to the event channels and delivers each message to b
// until ctx is cancelled.
func (n *Notifier) StartRelay(ctx context.Context, b *events.Broker) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*", BroadcastChannel)
	// Wait for the subscription so events published right after start are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe to event channels: %w", err)
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
				n.handle(ctx, b, msg)
			}
		}
	}()

	return nil
}

func (n *Notifier) handle(ctx context.Context, b *events.Broker, msg *redis.Message) {
	defer func() {
		if r := recover(); r != nil {
			middleware.Logger.ErrorContext(ctx, "panic in event relay",
				"panic", fmt.Sprint(r), "stack", string(debug.Stack()))
		}
	}()

	if msg.Channel != BroadcastChannel && !strings.HasPrefix(msg.Channel, userChannelPrefix) {
		middleware.Logger.WarnContext(ctx, "invalid event channel", "channel", msg.Channel)
		return
	}

	var e events.Event
	if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
		middleware.Logger.WarnContext(ctx, "invalid event payload", "channel", msg.Channel, "error", err.Error())
		return
	}
	b.Deliver(e)
}

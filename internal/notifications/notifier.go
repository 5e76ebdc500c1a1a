// Package notifications provides real-time delivery of community feed events.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"moodmate/internal/middleware"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// CommunityChannel is the Redis channel carrying every feed event.
const CommunityChannel = "community:events"

// Community event types.
const (
	EventVibeCreated     = "vibe_created"
	EventVibeUpdated     = "vibe_updated"
	EventVibeDeleted     = "vibe_deleted"
	EventVibeLikeChanged = "vibe_like_changed"
	EventCommentCreated  = "comment_created"
	EventCommentDeleted  = "comment_deleted"
)

// Event is the envelope written to the channel and to WebSocket clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Notifier provides helpers to publish community events into Redis.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishCommunityEvent encodes an event and publishes it on CommunityChannel.
// A Notifier without Redis is a no-op.
func (n *Notifier) PublishCommunityEvent(ctx context.Context, eventType string, payload any) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	b, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	return n.rdb.Publish(ctx, CommunityChannel, b).Err()
}

// StartCommunitySubscriber subscribes to CommunityChannel and calls onMessage
// for each payload until ctx is cancelled. A panicking handler is logged and
// the subscription keeps running.
func (n *Notifier) StartCommunitySubscriber(ctx context.Context, onMessage func(payload string)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, CommunityChannel)
	// Wait for the subscription to be confirmed so early publishes are not lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", CommunityChannel, err)
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
							middleware.Logger.Error("panic in community subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}

package notifications

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishCommunityEvent(context.Background(), EventVibeCreated, map[string]string{"id": "x"}))
	assert.NoError(t, n.StartCommunitySubscriber(context.Background(), func(string) {}))

	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.PublishCommunityEvent(context.Background(), EventVibeDeleted, nil))
}

func TestNotifier_PublishesEnvelope(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payloads := make(chan string, 1)
	require.NoError(t, n.StartCommunitySubscriber(ctx, func(p string) { payloads <- p }))
	require.NoError(t, n.PublishCommunityEvent(context.Background(), EventVibeLikeChanged,
		map[string]any{"id": "abc", "likes": 3}))

	select {
	case p := <-payloads:
		var ev struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		require.NoError(t, json.Unmarshal([]byte(p), &ev))
		assert.Equal(t, EventVibeLikeChanged, ev.Type)
		assert.Equal(t, "abc", ev.Payload["id"])
		assert.EqualValues(t, 3, ev.Payload["likes"])
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestNotifier_SubscriberSurvivesPanicAndStopsOnCancel(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received int32
	require.NoError(t, n.StartCommunitySubscriber(ctx, func(p string) {
		atomic.AddInt32(&received, 1)
		if p == `"boom"` {
			panic("handler failure")
		}
	}))

	require.NoError(t, rdb.Publish(context.Background(), CommunityChannel, `"boom"`).Err())
	require.NoError(t, n.PublishCommunityEvent(context.Background(), EventCommentCreated, nil))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&received) == 2 }, time.Second, 10*time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	_ = rdb.Publish(context.Background(), CommunityChannel, `{"type":"after"}`).Err()
	assert.Never(t, func() bool { return atomic.LoadInt32(&received) > 2 }, 150*time.Millisecond, 10*time.Millisecond)
}

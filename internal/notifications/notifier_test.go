package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_LocalSinkWithoutRedis(t *testing.T) {
	n := NewNotifier(nil)
	assert.NoError(t, n.PublishModerationEvent(context.Background(), "post_submitted", map[string]int{"id": 1}),
		"no sink, no redis is a no-op")

	var got []string
	n.SetLocalSink(func(payload string) { got = append(got, payload) })
	require.NoError(t, n.PublishModerationEvent(context.Background(), "post_submitted", map[string]int{"id": 1}))
	require.Len(t, got, 1)

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(got[0]), &ev))
	assert.Equal(t, "post_submitted", ev.Type)
	assert.JSONEq(t, `{"id":1}`, string(ev.Payload))
	assert.False(t, ev.Timestamp.IsZero())
}

func TestNotifier_ModerationSubscriberStopsOnCancel(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	payloads := make(chan string, 4)
	require.NoError(t, n.StartModerationSubscriber(ctx, func(payload string) {
		payloads <- payload
	}))

	require.NoError(t, n.PublishModerationEvent(context.Background(), "post_reviewed", map[string]string{"status": "approved"}))
	select {
	case payload := <-payloads:
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(payload), &ev))
		assert.Equal(t, "post_reviewed", ev.Type)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	cancel()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, n.PublishModerationEvent(context.Background(), "post_reviewed", "after-cancel"))
	assert.Never(t, func() bool {
		select {
		case <-payloads:
			return true
		default:
			return false
		}
	}, 200*time.Millisecond, 10*time.Millisecond)
}

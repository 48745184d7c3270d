package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cbodonnell/fakegame/pkg/entitlements"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func TestEventHub_Publish(t *testing.T) {
	hub := NewEventHub()
	events, unsubscribe := hub.Subscribe()

	hub.NotifyBusy(true)
	hub.NotifyUpdate(entitlements.GameData{ExtraLives: 3})
	hub.NotifyError(errors.New("declined"))
	hub.NotifyRestoreEmpty()
	hub.NotifyRestoreDone()

	busy := <-events
	assert.Equal(t, EventTypeBusy, busy.Type)
	require.NotNil(t, busy.Busy)
	assert.True(t, *busy.Busy)

	update := <-events
	assert.Equal(t, EventTypeUpdate, update.Type)
	assert.Equal(t, &entitlements.GameData{ExtraLives: 3}, update.GameData)

	failure := <-events
	assert.Equal(t, EventTypeError, failure.Type)
	assert.Equal(t, "declined", failure.Error)

	assert.Equal(t, EventTypeRestoreEmpty, (<-events).Type)
	assert.Equal(t, EventTypeRestoreDone, (<-events).Type)

	unsubscribe()
	unsubscribe()
	hub.NotifyRestoreDone()
	assert.Empty(t, events)
}

func TestEventHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewEventHub()
	events, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBufferSize*2; i++ {
			hub.NotifyBusy(i%2 == 0)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	assert.Len(t, events, subscriberBufferSize)
}

func TestEventHub_WebSocket(t *testing.T) {
	s := newTestServer(t, testServerOptions{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(s.URL, "http") + "/events"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/slots/0/purchase", nil))

	var got []Event
	for i := 0; i < 3; i++ {
		var event Event
		require.NoError(t, wsjson.Read(ctx, conn, &event))
		got = append(got, event)
	}

	assert.Equal(t, EventTypeBusy, got[0].Type)
	assert.True(t, *got[0].Busy)
	assert.Equal(t, EventTypeBusy, got[1].Type)
	assert.False(t, *got[1].Busy)
	assert.Equal(t, EventTypeUpdate, got[2].Type)
	assert.Equal(t, 3, got[2].GameData.ExtraLives)
}

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/cbodonnell/fakegame/pkg/entitlements"
	"github.com/cbodonnell/fakegame/pkg/log"
	"github.com/cbodonnell/fakegame/pkg/reconciler"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type EventType string

const (
	EventTypeBusy         EventType = "busy"
	EventTypeUpdate       EventType = "update"
	EventTypeError        EventType = "error"
	EventTypeRestoreEmpty EventType = "restore_empty"
	EventTypeRestoreDone  EventType = "restore_done"
)

const (
	subscriberBufferSize = 32
	eventWriteTimeout    = 5 * time.Second
)

// Event is a UI signal as streamed on /events.
type Event struct {
	Type     EventType              `json:"type"`
	Busy     *bool                  `json:"busy,omitempty"`
	GameData *entitlements.GameData `json:"game_data,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

// EventHub fans reconciler signals out to websocket subscribers.
// Slow subscribers lose events rather than block the reconciler.
type EventHub struct {
	lock        sync.Mutex
	subscribers map[chan Event]struct{}
}

var _ reconciler.Notifier = (*EventHub)(nil)

// NewEventHub creates a new EventHub
func NewEventHub() *EventHub {
	return &EventHub{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a subscriber. The returned function unsubscribes it.
func (h *EventHub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBufferSize)
	h.lock.Lock()
	h.subscribers[ch] = struct{}{}
	h.lock.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.lock.Lock()
			delete(h.subscribers, ch)
			h.lock.Unlock()
		})
	}
}

func (h *EventHub) publish(event Event) {
	h.lock.Lock()
	defer h.lock.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			log.Warn("Event subscriber is full, dropping %s event", event.Type)
		}
	}
}

func (h *EventHub) NotifyBusy(busy bool) {
	h.publish(Event{Type: EventTypeBusy, Busy: &busy})
}

func (h *EventHub) NotifyUpdate(data entitlements.GameData) {
	h.publish(Event{Type: EventTypeUpdate, GameData: &data})
}

func (h *EventHub) NotifyError(err error) {
	h.publish(Event{Type: EventTypeError, Error: err.Error()})
}

func (h *EventHub) NotifyRestoreEmpty() {
	h.publish(Event{Type: EventTypeRestoreEmpty})
}

func (h *EventHub) NotifyRestoreDone() {
	h.publish(Event{Type: EventTypeRestoreDone})
}

// HandleEvents upgrades the request to a websocket and streams events
// until the client disconnects.
func (h *EventHub) HandleEvents(w http.ResponseWriter, r *http.Request) {
	// Subscribed before the handshake completes so no event after it is missed.
	events, unsubscribe := h.Subscribe()
	defer unsubscribe()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Error("Failed to upgrade to WebSocket: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	log.Debug("New event subscriber from %s", r.RemoteAddr)

	// Clients only listen, so reads are discarded and a close cancels ctx.
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			log.Trace("Event subscriber %s closed", r.RemoteAddr)
			return
		case event := <-events:
			if err := writeEvent(ctx, conn, event); err != nil {
				log.Debug("Failed to write event to %s: %v", r.RemoteAddr, err)
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, event Event) error {
	ctx, cancel := context.WithTimeout(ctx, eventWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, event)
}

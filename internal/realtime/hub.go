package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/zapline/whatsapp-server/internal/metrics"
)

// Hub fans lifecycle and message events out to connected observers. Targeted
// events go to the single observer bound to a session; broadcast events go to
// everyone.
//
// Delivery order per observer matches emit order: emits run synchronously on
// the caller's goroutine and push into each observer's FIFO send queue, which
// a single writer goroutine drains.
type Hub struct {
	mu        sync.RWMutex
	observers map[string]*Observer
	bindings  map[string]string // sessionID -> observerID

	// OnBind, when set, is invoked after a bind-session request is recorded.
	OnBind func(sessionID, observerID string)

	log zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		observers: make(map[string]*Observer),
		bindings:  make(map[string]string),
		log:       log,
	}
}

// Register wraps a websocket connection in an Observer and adds it to the
// broadcast audience. The caller is responsible for starting its pumps.
func (h *Hub) Register(conn *websocket.Conn) *Observer {
	obs := newObserver(uuid.NewString(), h, conn)

	h.mu.Lock()
	h.observers[obs.ID] = obs
	h.mu.Unlock()

	h.log.Debug().Str("observer", obs.ID).Msg("observer connected")
	return obs
}

// Unregister drops an observer. Session bindings pointing at it are left in
// place; targeted emits to a gone observer are no-ops.
func (h *Hub) Unregister(obs *Observer) {
	h.mu.Lock()
	_, exists := h.observers[obs.ID]
	delete(h.observers, obs.ID)
	h.mu.Unlock()

	if exists {
		obs.close()
		h.log.Debug().Str("observer", obs.ID).Msg("observer disconnected")
	}
}

// Bind associates an observer with a session for targeted events. At most one
// observer is bound per session; a later bind replaces the earlier one.
func (h *Hub) Bind(sessionID, observerID string) {
	h.mu.Lock()
	h.bindings[sessionID] = observerID
	h.mu.Unlock()

	h.log.Debug().Str("session", sessionID).Str("observer", observerID).Msg("observer bound to session")
	if h.OnBind != nil {
		h.OnBind(sessionID, observerID)
	}
}

// EmitToSession delivers an event to the observer bound to sessionID, if any.
// Unbound sessions and dead observers drop the event silently.
func (h *Hub) EmitToSession(sessionID, event string, data any) {
	h.mu.RLock()
	observerID, bound := h.bindings[sessionID]
	var obs *Observer
	if bound {
		obs = h.observers[observerID]
	}
	h.mu.RUnlock()

	if obs == nil {
		return
	}
	obs.deliver(Envelope{Event: event, Data: data})
	metrics.RealtimeEvents.WithLabelValues(event, "session").Inc()
}

// EmitBroadcast delivers an event to every connected observer.
func (h *Hub) EmitBroadcast(event string, data any) {
	h.mu.RLock()
	targets := make([]*Observer, 0, len(h.observers))
	for _, obs := range h.observers {
		targets = append(targets, obs)
	}
	h.mu.RUnlock()

	envelope := Envelope{Event: event, Data: data}
	for _, obs := range targets {
		obs.deliver(envelope)
	}
	metrics.RealtimeEvents.WithLabelValues(event, "broadcast").Add(float64(len(targets)))
}

// ObserverCount returns the size of the broadcast audience.
func (h *Hub) ObserverCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.observers)
}

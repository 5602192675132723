package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	maxInboundSize = 4096

	// sendQueueSize bounds how far a slow observer may fall behind before
	// events are dropped for it.
	sendQueueSize = 64
)

// Observer is one realtime connection (a dashboard tab). It always receives
// broadcast events and additionally receives targeted events for the session
// it is bound to.
type Observer struct {
	ID string

	hub  *Hub
	conn *websocket.Conn
	send chan Envelope
	done chan struct{}

	closeOnce sync.Once
}

func newObserver(id string, hub *Hub, conn *websocket.Conn) *Observer {
	return &Observer{
		ID:   id,
		hub:  hub,
		conn: conn,
		send: make(chan Envelope, sendQueueSize),
		done: make(chan struct{}),
	}
}

// deliver enqueues an envelope without blocking the emitter. Observers that
// cannot keep up lose events rather than stalling the lifecycle manager; a
// gone observer drops them silently.
func (o *Observer) deliver(e Envelope) {
	select {
	case <-o.done:
		return
	default:
	}
	select {
	case o.send <- e:
	default:
		o.hub.log.Warn().Str("observer", o.ID).Str("event", e.Event).Msg("observer send queue full, dropping event")
	}
}

func (o *Observer) close() {
	o.closeOnce.Do(func() {
		close(o.done)
	})
}

// ReadPump consumes inbound envelopes until the connection dies. The only
// inbound event is bind-session.
func (o *Observer) ReadPump() {
	defer func() {
		o.hub.Unregister(o)
		o.conn.Close()
	}()

	o.conn.SetReadLimit(maxInboundSize)
	_ = o.conn.SetReadDeadline(time.Now().Add(pongWait))
	o.conn.SetPongHandler(func(string) error {
		return o.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var envelope struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := o.conn.ReadJSON(&envelope); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				o.hub.log.Debug().Err(err).Str("observer", o.ID).Msg("observer read error")
			}
			return
		}

		if envelope.Event != EventBindSession {
			continue
		}
		var req bindRequest
		if err := json.Unmarshal(envelope.Data, &req); err != nil || req.SessionID == "" {
			o.hub.log.Warn().Str("observer", o.ID).Msg("invalid bind-session payload")
			continue
		}
		o.hub.Bind(req.SessionID, o.ID)
	}
}

// WritePump drains the send queue onto the wire and keeps the connection
// alive with pings.
func (o *Observer) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		o.conn.Close()
	}()

	for {
		select {
		case <-o.done:
			_ = o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = o.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case envelope := <-o.send:
			_ = o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := o.conn.WriteJSON(envelope); err != nil {
				return
			}
		case <-ticker.C:
			_ = o.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := o.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

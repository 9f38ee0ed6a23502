// Package events provides best-effort fan-out of wallet registry events to
// WebSocket subscribers. Delivery is not guaranteed: slow or broken
// subscribers are dropped rather than backpressuring the registry.
package events

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-wallet-registry/internal/domain"
)

// Event types published by the registry
const (
	TypeWalletConnected   = "wallet.connected"
	TypeWalletDeactivated = "wallet.deactivated"
)

// Event is the wire format pushed to subscribers.
type Event struct {
	Type   string               `json:"type"`
	Wallet *domain.WalletRecord `json:"wallet"`
	SentAt time.Time            `json:"sent_at"`
}

// subscriber is a connected WebSocket client
type subscriber struct {
	id   string
	conn *websocket.Conn
	send chan Event
}

// Hub broadcasts registry events to WebSocket subscribers
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	subscribersMu sync.RWMutex
	subscribers   map[string]*subscriber
}

// NewHub creates a new event hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger.Named("events-hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		subscribers: make(map[string]*subscriber),
	}
}

// HandleSubscribe upgrades the request to a WebSocket subscription.
// The connection is read-only for the client; incoming messages are drained
// and discarded so close frames are processed.
func (h *Hub) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", zap.Error(err))
		return
	}

	sub := &subscriber{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan Event, 16),
	}

	h.subscribersMu.Lock()
	h.subscribers[sub.id] = sub
	h.subscribersMu.Unlock()

	h.logger.Info("Event subscriber connected", zap.String("subscriber_id", sub.id))

	go h.writeLoop(sub)
	go h.readLoop(sub)
}

func (h *Hub) writeLoop(sub *subscriber) {
	defer sub.conn.Close()

	for event := range sub.send {
		if err := sub.conn.WriteJSON(event); err != nil {
			h.logger.Debug("Subscriber write failed",
				zap.String("subscriber_id", sub.id),
				zap.Error(err))
			h.remove(sub)
			return
		}
	}
}

func (h *Hub) readLoop(sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Subscriber read error",
					zap.String("subscriber_id", sub.id),
					zap.Error(err))
			}
			h.remove(sub)
			return
		}
	}
}

// Publish delivers an event to all subscribers. Subscribers whose buffers
// are full are dropped.
func (h *Hub) Publish(eventType string, wallet *domain.WalletRecord) {
	event := Event{
		Type:   eventType,
		Wallet: wallet,
		SentAt: time.Now(),
	}

	// Sends happen under the read lock so a concurrent remove cannot close
	// a channel mid-send; buffered channels plus the default case keep this
	// from ever blocking.
	var dropped []*subscriber
	h.subscribersMu.RLock()
	for _, sub := range h.subscribers {
		select {
		case sub.send <- event:
		default:
			dropped = append(dropped, sub)
		}
	}
	h.subscribersMu.RUnlock()

	for _, sub := range dropped {
		h.logger.Warn("Dropping slow event subscriber", zap.String("subscriber_id", sub.id))
		h.remove(sub)
	}
}

// SubscriberCount returns the number of connected subscribers
func (h *Hub) SubscriberCount() int {
	h.subscribersMu.RLock()
	defer h.subscribersMu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) remove(sub *subscriber) {
	h.subscribersMu.Lock()
	if existing, ok := h.subscribers[sub.id]; ok && existing == sub {
		delete(h.subscribers, sub.id)
		close(sub.send)
	}
	h.subscribersMu.Unlock()
}

// Close closes all subscriber connections
func (h *Hub) Close() {
	h.subscribersMu.Lock()
	defer h.subscribersMu.Unlock()

	for _, sub := range h.subscribers {
		sub.conn.Close()
		close(sub.send)
	}
	h.subscribers = make(map[string]*subscriber)
}

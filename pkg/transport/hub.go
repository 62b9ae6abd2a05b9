package transport

import (
	"log/slog"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"github.com/meetsignal/visualdelta/pkg/protocol"
)

const clientSendBuffer = 64

// client is one subscriber's websocket connection and its outbound
// queue. Once the client is registered, only client.writePump writes
// to conn.
type client struct {
	conn *websocket.Conn
	send chan protocol.StreamMessage
}

// eventHub fans out StreamMessages to every subscriber of one call's
// visual event stream. Registration and unregistration go through
// channels so the broadcast loop never touches the client map from
// another goroutine.
type eventHub struct {
	logger *slog.Logger

	clients    map[*client]bool
	broadcast  chan protocol.StreamMessage
	register   chan *client
	unregister chan *client

	mu      sync.RWMutex
	started bool
}

func newEventHub(logger *slog.Logger) *eventHub {
	return &eventHub{
		logger:     logger,
		clients:    make(map[*client]bool),
		broadcast:  make(chan protocol.StreamMessage, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// run is the hub's single-goroutine broadcast loop. Call it once in a
// goroutine before accepting connections.
func (h *eventHub) run() {
	h.mu.Lock()
	h.started = true
	h.mu.Unlock()

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("subscriber connected", "subscribers", count)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("subscriber disconnected", "subscribers", count)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.logger.Warn("dropping slow subscriber")
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues msg for every connected subscriber. It never blocks;
// if the hub's internal buffer is full the message is dropped.
func (h *eventHub) Broadcast(msg protocol.StreamMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("broadcast buffer full, dropping message")
	}
}

// SubscriberCount reports how many clients are currently registered.
// Safe to call from any goroutine, though it races benignly with the
// broadcast loop's own view by at most one register/unregister.
func (h *eventHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

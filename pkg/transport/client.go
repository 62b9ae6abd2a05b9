package transport

import (
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/meetsignal/visualdelta/pkg/protocol"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// newClient registers a fresh subscriber with the hub and returns it.
func newClient(hub *eventHub, conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan protocol.StreamMessage, clientSendBuffer)}
	hub.register <- c
	return c
}

// run blocks for the lifetime of the connection, running the write
// pump in a goroutine and the read pump on the calling goroutine.
func (c *client) run(hub *eventHub) {
	go c.writePump()
	c.readPump(hub)
}

// readPump only exists to detect disconnection and answer pings; the
// event stream is one-directional so no inbound frame is ever acted
// on.
func (c *client) readPump(hub *eventHub) {
	defer func() {
		hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := msg.Bytes()
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/meetsignal/visualdelta/internal/log"
	"github.com/meetsignal/visualdelta/pkg/events"
	"github.com/meetsignal/visualdelta/pkg/protocol"
	"github.com/meetsignal/visualdelta/pkg/visualtypes"
)

// reconnectDelay is the fixed delay between a closed connection and
// the next reconnect attempt. Not exponential backoff — the interval
// is pinned.
const reconnectDelay = 3 * time.Second

// Subscriber is a reconnecting client for the visual event-stream
// WebSocket, for consumers such as integration tests or a caption
// renderer that cannot run inside the process hosting Server. Uses
// gorilla/websocket's client dialer and a fixed reconnect interval.
type Subscriber struct {
	url    string
	header http.Header
	logger *slog.Logger

	// OnEvents is called for every visual_events frame, in the order
	// received.
	OnEvents func(evts []events.VisualEvent)
	// OnStateSync is called for the visual_state_sync frame sent on
	// every (re)connect.
	OnStateSync func(state visualtypes.VisualState)
	// OnError is called for a visual_error frame or a connection
	// failure; the subscriber keeps retrying regardless.
	OnError func(err error)

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
}

// NewSubscriber returns a Subscriber that will dial url (scheme
// ws/wss) with the given headers, e.g. for a bearer token.
func NewSubscriber(url string, header http.Header) *Subscriber {
	return &Subscriber{
		url:    url,
		header: header,
		logger: log.Component("transport.subscriber"),
	}
}

// Subscribe starts the connect/read/reconnect loop in a background
// goroutine and returns immediately. It is a no-op if already
// subscribed.
func (s *Subscriber) Subscribe(ctx context.Context) {
	s.mu.Lock()
	if s.cancel != nil {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(ctx)
}

// Unsubscribe cancels the loop and closes any live connection. After
// Unsubscribe, Subscribe may be called again to resume.
func (s *Subscriber) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

func (s *Subscriber) run(ctx context.Context) {
	for ctx.Err() == nil {
		if err := s.connectAndRead(ctx); err != nil {
			s.logger.Warn("event stream connection lost", "error", err)
			if s.OnError != nil {
				s.OnError(err)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *Subscriber) connectAndRead(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, s.header)
	if err != nil {
		return fmt.Errorf("transport: dial event stream: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if s.conn == conn {
			s.conn = nil
		}
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("transport: read event stream: %w", err)
		}
		msg, err := protocol.ParseStreamMessage(data)
		if err != nil {
			s.logger.Warn("malformed stream message", "error", err)
			continue
		}
		s.dispatch(msg)
	}
}

func (s *Subscriber) dispatch(msg *protocol.StreamMessage) {
	switch msg.Type {
	case protocol.StreamVisualEvents:
		var evts []events.VisualEvent
		if err := msg.ParseData(&evts); err != nil {
			s.logger.Warn("decode visual_events frame failed", "error", err)
			return
		}
		if s.OnEvents != nil {
			s.OnEvents(evts)
		}

	case protocol.StreamVisualStateSync:
		var state visualtypes.VisualState
		if err := msg.ParseData(&state); err != nil {
			s.logger.Warn("decode visual_state_sync frame failed", "error", err)
			return
		}
		if s.OnStateSync != nil {
			s.OnStateSync(state)
		}

	case protocol.StreamVisualError:
		var payload struct {
			Error string `json:"error"`
		}
		if err := msg.ParseData(&payload); err != nil {
			return
		}
		if s.OnError != nil {
			s.OnError(fmt.Errorf("transport: server reported error: %s", payload.Error))
		}
	}
}

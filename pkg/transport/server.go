// Package transport implements the HTTP+WebSocket surface the core
// pipeline is driven through: snapshot submission, the per-call event
// stream, and a reconnecting subscriber client for consumers of that
// stream. Nothing in here touches tracker/detector/gate/verbalizer
// logic directly — it only marshals wire shapes and drives one
// pipeline.Pipeline per call.
package transport

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/meetsignal/visualdelta/internal/log"
	"github.com/meetsignal/visualdelta/pkg/pipeline"
	"github.com/meetsignal/visualdelta/pkg/protocol"
	"github.com/meetsignal/visualdelta/pkg/verbalizer"
	"github.com/meetsignal/visualdelta/pkg/visualtypes"
)

// callSession bundles one meeting's pipeline with its own event
// broadcaster. A callSession is created lazily on first snapshot or
// first subscriber for a given callId and lives until the process
// drops it; the core pipeline it wraps has no persistence of its own.
type callSession struct {
	callID   string
	pipeline *pipeline.Pipeline
	hub      *eventHub

	mu            sync.Mutex
	snapshotCount int64
}

// Server exposes the snapshot-submission and event-stream endpoints
// over a fiber.App, plus health/stats endpoints for operators.
type Server struct {
	app       *fiber.App
	cfg       pipeline.Config
	authToken string
	logger    *slog.Logger

	mu         sync.RWMutex
	sessions   map[string]*callSession
	llmHandler verbalizer.LLMHandler
}

// NewServer builds a Server with its routes registered but not yet
// listening. authToken is empty to disable bearer-token enforcement,
// matching the optional "Authorization: Bearer <token>" contract.
func NewServer(cfg pipeline.Config, authToken string) *Server {
	s := &Server{
		cfg:       cfg,
		authToken: authToken,
		logger:    log.Component("transport"),
		sessions:  make(map[string]*callSession),
	}

	app := fiber.New(fiber.Config{
		AppName:               "visualdeltad",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))

	app.Get("/healthz", s.handleHealth)
	app.Post("/v1/calls/:callId/visual/snapshot", s.handleSnapshot)
	app.Get("/v1/calls/:callId/visual/stats", s.handleStats)

	app.Use("/v1/calls/:callId/visual/events", s.requireUpgrade)
	app.Get("/v1/calls/:callId/visual/events", websocket.New(s.handleEvents))

	s.app = app
	return s
}

// SetLLMHandler injects the LLM handler every session's Verbalizer is
// given from then on. Existing sessions are updated too; new sessions
// pick it up at creation. Passing nil reverts every session to the
// template-only path.
func (s *Server) SetLLMHandler(h verbalizer.LLMHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.llmHandler = h
	for _, sess := range s.sessions {
		sess.pipeline.SetLLMHandler(h)
	}
}

// App exposes the underlying fiber.App for tests that want to drive
// it with app.Test without binding a real port.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP on addr.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully drains in-flight requests and connections.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	s.mu.RLock()
	n := len(s.sessions)
	s.mu.RUnlock()
	return c.JSON(fiber.Map{"status": "ok", "active_calls": n})
}

// handleStats reports per-call subscriber count and snapshot
// throughput.
func (s *Server) handleStats(c *fiber.Ctx) error {
	callID := c.Params("callId")
	sess := s.getSession(callID, false)
	if sess == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": ErrUnknownCall.Error()})
	}
	sess.mu.Lock()
	snapshots := sess.snapshotCount
	sess.mu.Unlock()
	return c.JSON(fiber.Map{
		"call_id":     callID,
		"subscribers": sess.hub.SubscriberCount(),
		"snapshots":   snapshots,
	})
}

func (s *Server) authorize(c *fiber.Ctx) bool {
	if s.authToken == "" {
		return true
	}
	header := c.Get(fiber.HeaderAuthorization)
	return strings.TrimPrefix(header, "Bearer ") == s.authToken && header != ""
}

// requireUpgrade gates the event-stream route on both the WS upgrade
// handshake and the same bearer token snapshot submission uses.
func (s *Server) requireUpgrade(c *fiber.Ctx) error {
	if !s.authorize(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": ErrUnauthorized.Error()})
	}
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// handleSnapshot implements POST /v1/calls/{callId}/visual/snapshot:
// decode, run one pipeline tick, broadcast the resulting events to
// any subscribers, and return them alongside the next VisualState.
func (s *Server) handleSnapshot(c *fiber.Ctx) error {
	if !s.authorize(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(protocol.ErrorResponse(ErrUnauthorized.Error()))
	}

	callID := c.Params("callId")
	reqID := uuid.NewString()
	logger := s.logger.With("call_id", callID, "req_id", reqID)

	var req protocol.SnapshotRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Warn("malformed snapshot body", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(protocol.ErrorResponse(ErrMalformedRequest.Error()))
	}

	regions, layout := clientAnalysis(req.ClientAnalysis)

	sess := s.getSession(callID, true)
	sess.mu.Lock()
	sess.snapshotCount++
	sess.mu.Unlock()

	result := sess.pipeline.Tick(c.Context(), regions, layout, req.TsObsMs, req.ContentHash, req.Width, req.Height, nil)

	if msg, err := protocol.NewEventsMessage(result.Events); err != nil {
		logger.Warn("encode events message failed", "error", err)
	} else {
		sess.hub.Broadcast(*msg)
	}

	resp := protocol.SnapshotResponse{Success: true, Events: result.Events, State: &result.State}
	return c.JSON(resp)
}

// clientAnalysis extracts regions/layout from an optional
// client_analysis payload; callers that never provide one simply get
// no regions, which the tracker treats as every live entry going
// unclaimed this tick.
func clientAnalysis(a *protocol.ClientAnalysis) ([]visualtypes.DetectedRegion, visualtypes.LayoutType) {
	if a == nil {
		return nil, visualtypes.LayoutUnknown
	}
	return a.Regions, a.Layout
}

// handleEvents implements the WebSocket side of the event stream: on
// connect it sends a visual_state_sync frame, then the connection is
// just a subscriber of the call's eventHub until it closes.
func (s *Server) handleEvents(conn *websocket.Conn) {
	callID := conn.Params("callId")
	connID := uuid.NewString()
	logger := s.logger.With("call_id", callID, "conn_id", connID)

	sess := s.getSession(callID, true)

	if msg, err := protocol.NewStateSyncMessage(sess.pipeline.State()); err != nil {
		logger.Warn("encode state sync failed", "error", err)
	} else if data, err := msg.Bytes(); err != nil {
		logger.Warn("marshal state sync failed", "error", err)
	} else if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		logger.Debug("state sync write failed", "error", err)
		return
	}

	c := newClient(sess.hub, conn)
	c.run(sess.hub)
}

// getSession returns the session for callID, creating one (and
// starting its hub's broadcast loop) when create is true and none
// exists yet.
func (s *Server) getSession(callID string, create bool) *callSession {
	s.mu.RLock()
	sess, ok := s.sessions[callID]
	s.mu.RUnlock()
	if ok || !create {
		return sess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[callID]; ok {
		return sess
	}

	sess = &callSession{
		callID:   callID,
		pipeline: pipeline.New(s.cfg),
		hub:      newEventHub(s.logger.With("call_id", callID)),
	}
	if s.llmHandler != nil {
		sess.pipeline.SetLLMHandler(s.llmHandler)
	}
	go sess.hub.run()
	s.sessions[callID] = sess
	return sess
}

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/meetsignal/visualdelta/pkg/events"
	"github.com/meetsignal/visualdelta/pkg/protocol"
	"github.com/meetsignal/visualdelta/pkg/visualtypes"
)

// startTestServer binds an ephemeral loopback port and serves s on it
// in the background, returning the base "ws://host:port" URL and a
// cleanup func.
func startTestServer(t *testing.T, s *Server) (string, func()) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	go func() {
		_ = s.App().Listener(ln)
	}()

	addr := ln.Addr().String()
	cleanup := func() {
		_ = s.Shutdown(context.Background())
	}
	return "ws://" + addr, cleanup
}

func TestSubscriberReceivesStateSyncOnConnect(t *testing.T) {
	s := testServer()
	base, cleanup := startTestServer(t, s)
	defer cleanup()

	syncCh := make(chan visualtypes.VisualState, 1)
	sub := NewSubscriber(base+"/v1/calls/sub-call/visual/events", http.Header{})
	sub.OnStateSync = func(state visualtypes.VisualState) {
		select {
		case syncCh <- state:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub.Subscribe(ctx)
	defer sub.Unsubscribe()

	select {
	case <-syncCh:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for visual_state_sync frame")
	}
}

func TestSubscriberReceivesBroadcastEvents(t *testing.T) {
	s := testServer()
	base, cleanup := startTestServer(t, s)
	defer cleanup()

	eventsCh := make(chan []events.VisualEvent, 4)
	sub := NewSubscriber(base+"/v1/calls/broadcast-call/visual/events", http.Header{})
	sub.OnEvents = func(evts []events.VisualEvent) {
		eventsCh <- evts
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub.Subscribe(ctx)
	defer sub.Unsubscribe()

	// Give the subscriber time to complete the handshake, so the hub
	// has a registered client before the snapshot is broadcast.
	time.Sleep(100 * time.Millisecond)

	body, _ := json.Marshal(protocol.SnapshotRequest{TsObsMs: 1000, ContentHash: "h"})
	httpURL := "http" + strings.TrimPrefix(base, "ws") + "/v1/calls/broadcast-call/visual/snapshot"
	resp, err := http.Post(httpURL, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post snapshot: %v", err)
	}
	resp.Body.Close()

	select {
	case evts := <-eventsCh:
		if len(evts) == 0 {
			t.Fatal("expected at least one event")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast events")
	}
}

func TestSubscriberUnsubscribeStopsReconnecting(t *testing.T) {
	sub := NewSubscriber("ws://127.0.0.1:1/nope", http.Header{})

	errCh := make(chan struct{}, 8)
	sub.OnError = func(err error) {
		select {
		case errCh <- struct{}{}:
		default:
		}
	}

	ctx := context.Background()
	sub.Subscribe(ctx)

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("expected at least one dial error")
	}

	sub.Unsubscribe()

	for len(errCh) > 0 {
		<-errCh
	}
	select {
	case <-errCh:
		t.Fatal("expected no reconnect attempt after Unsubscribe")
	case <-time.After(reconnectDelay + time.Second):
	}
}

package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meetsignal/visualdelta/pkg/pipeline"
	"github.com/meetsignal/visualdelta/pkg/protocol"
	"github.com/meetsignal/visualdelta/pkg/visualtypes"
)

func testServer() *Server {
	return NewServer(pipeline.DefaultConfig(), "")
}

func doSnapshot(t *testing.T, s *Server, callID string, req protocol.SnapshotRequest) protocol.SnapshotResponse {
	t.Helper()

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	httpReq := httptest.NewRequest(http.MethodPost, "/v1/calls/"+callID+"/visual/snapshot", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(httpReq)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}

	var out protocol.SnapshotResponse
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal response: %v\nbody: %s", err, data)
	}
	return out
}

func TestHandleSnapshotEmptyRegionsProducesSnapshotReceivedOnly(t *testing.T) {
	s := testServer()

	resp := doSnapshot(t, s, "call-1", protocol.SnapshotRequest{TsObsMs: 1000, ContentHash: "deadbeef"})

	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if len(resp.Events) != 1 || resp.Events[0].Type != "snapshot_received" {
		t.Fatalf("expected exactly one snapshot_received event, got %+v", resp.Events)
	}
	if resp.State == nil || resp.State.SnapshotCount != 1 {
		t.Fatalf("expected snapshot count 1, got %+v", resp.State)
	}
}

func TestHandleSnapshotWithRegionAppearsAsVID(t *testing.T) {
	s := testServer()

	req := protocol.SnapshotRequest{
		TsObsMs:     1000,
		ContentHash: "deadbeef",
		ClientAnalysis: &protocol.ClientAnalysis{
			Layout: visualtypes.LayoutGrid,
			Regions: []visualtypes.DetectedRegion{
				{BBox: visualtypes.BBox{X: 0, Y: 0, W: 0.5, H: 0.5}, Kind: visualtypes.RegionTile, Fingerprint: "POS:0055"},
			},
		},
	}

	resp := doSnapshot(t, s, "call-appear", req)

	found := false
	for _, evt := range resp.Events {
		if evt.Type == "vid_appeared" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a vid_appeared event, got %+v", resp.Events)
	}
	if resp.State == nil || len(resp.State.VIDs) != 1 {
		t.Fatalf("expected one tracked vid, got %+v", resp.State)
	}
}

func TestHandleSnapshotUnauthorizedWithoutToken(t *testing.T) {
	s := NewServer(pipeline.DefaultConfig(), "secret-token")

	body, _ := json.Marshal(protocol.SnapshotRequest{TsObsMs: 1000})
	httpReq := httptest.NewRequest(http.MethodPost, "/v1/calls/call-1/visual/snapshot", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(httpReq)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestHandleSnapshotAuthorizedWithToken(t *testing.T) {
	s := NewServer(pipeline.DefaultConfig(), "secret-token")

	body, _ := json.Marshal(protocol.SnapshotRequest{TsObsMs: 1000})
	httpReq := httptest.NewRequest(http.MethodPost, "/v1/calls/call-1/visual/snapshot", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer secret-token")

	resp, err := s.App().Test(httpReq)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestHandleHealth(t *testing.T) {
	s := testServer()

	httpReq := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, err := s.App().Test(httpReq)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestHandleStatsUnknownCall(t *testing.T) {
	s := testServer()

	httpReq := httptest.NewRequest(http.MethodGet, "/v1/calls/never-seen/visual/stats", nil)
	resp, err := s.App().Test(httpReq)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHandleStatsAfterSnapshot(t *testing.T) {
	s := testServer()
	doSnapshot(t, s, "call-2", protocol.SnapshotRequest{TsObsMs: 1000})

	httpReq := httptest.NewRequest(http.MethodGet, "/v1/calls/call-2/visual/stats", nil)
	resp, err := s.App().Test(httpReq)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["snapshots"].(float64) != 1 {
		t.Fatalf("expected 1 snapshot recorded, got %+v", out)
	}
}

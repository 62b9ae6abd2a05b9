// Package protocol defines the wire shapes for visual-delta snapshot
// submission and the event stream. It is shared between the
// transport server and any client.
package protocol

import (
	"github.com/meetsignal/visualdelta/pkg/events"
	"github.com/meetsignal/visualdelta/pkg/visualtypes"
)

// ClientAnalysis is the optional caller-supplied region/layout
// analysis of a snapshot, letting a thin client skip server-side
// detection entirely.
type ClientAnalysis struct {
	Regions []visualtypes.DetectedRegion `json:"regions"`
	Layout  visualtypes.LayoutType       `json:"layout"`
}

// SnapshotRequest is the body of POST /v1/calls/{callId}/visual/snapshot.
type SnapshotRequest struct {
	TsObsMs        int64            `json:"ts_obs_ms"`
	ContentHash    string           `json:"content_hash"`
	Mime           string           `json:"mime"`
	Width          int              `json:"width"`
	Height         int              `json:"height"`
	BytesBase64    string           `json:"bytes_base64"`
	ClientAnalysis *ClientAnalysis  `json:"client_analysis,omitempty"`
}

// SnapshotResponse is the body returned from a snapshot submission.
type SnapshotResponse struct {
	Success bool                  `json:"success"`
	Events  []events.VisualEvent  `json:"events"`
	State   *visualtypes.VisualState `json:"state,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// ErrorResponse builds the {success:false, events:[], error} shape
// used for non-2xx upstream responses and malformed input.
func ErrorResponse(msg string) SnapshotResponse {
	return SnapshotResponse{Success: false, Events: []events.VisualEvent{}, Error: msg}
}

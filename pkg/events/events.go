// Package events defines the VisualEvent schema emitted by the delta
// detector: a common envelope (id, emission/observation timestamps,
// source, confidence) plus a typed payload per event variant.
package events

import "github.com/meetsignal/visualdelta/pkg/visualtypes"

// Source identifies the emitting subsystem on every VisualEvent.
const Source = "visual_delta"

// Type identifies a VisualEvent variant.
type Type string

const (
	TypeSnapshotReceived   Type = "snapshot_received"
	TypeVIDAppeared        Type = "vid_appeared"
	TypeVIDDisappeared     Type = "vid_disappeared"
	TypeHandRaised         Type = "hand_raised"
	TypeHandLowered        Type = "hand_lowered"
	TypeScreenShareStarted Type = "screen_share_started"
	TypeScreenShareStopped Type = "screen_share_stopped"
	TypeSlideChanged       Type = "slide_changed"
	TypeLayoutChanged      Type = "layout_changed"
	TypeAudioVideoLink     Type = "audio_video_link"
)

// VisualEvent is the common envelope for every emitted event. Payload
// holds the variant-specific fields; callers switch on Type to know
// which payload struct to expect.
type VisualEvent struct {
	ID         string               `json:"id"`
	Type       Type                 `json:"type"`
	TsEmitMs   int64                `json:"ts_emit_ms"`
	TsObsMs    int64                `json:"ts_obs_ms"`
	Source     string               `json:"source"`
	Confidence visualtypes.Confidence `json:"confidence"`
	Payload    interface{}          `json:"payload"`
}

// SnapshotReceivedPayload marks that a snapshot was processed at
// ts_obs_ms, carrying the caller-supplied content identity for
// downstream correlation. The core never inspects image bytes; this
// is the opaque content_hash/width/height triple from the submission
// request, not pixel data.
type SnapshotReceivedPayload struct {
	ContentHash string `json:"content_hash,omitempty"`
	Width       int    `json:"width,omitempty"`
	Height      int    `json:"height,omitempty"`
}

// VIDAppearedPayload describes a newly minted continuity handle.
type VIDAppearedPayload struct {
	VID  visualtypes.VID         `json:"vid"`
	Kind visualtypes.RegionKind  `json:"kind"`
	BBox visualtypes.BBox        `json:"bbox"`
}

// VIDDisappearedPayload describes an expired continuity handle.
type VIDDisappearedPayload struct {
	VID visualtypes.VID `json:"vid"`
}

// HandRaisedPayload / HandLoweredPayload report a hand-signal
// transition for a single VID.
type HandRaisedPayload struct {
	VID visualtypes.VID `json:"vid"`
}

type HandLoweredPayload struct {
	VID visualtypes.VID `json:"vid"`
}

// ScreenShareStartedPayload / ScreenShareStoppedPayload report a
// screen-share signal transition for a single VID.
type ScreenShareStartedPayload struct {
	VID visualtypes.VID `json:"vid"`
}

type ScreenShareStoppedPayload struct {
	VID visualtypes.VID `json:"vid"`
}

// SlideChangedPayload reports a new confirmed slide content hash for
// the presenting VID. FromHash is empty when this is the first slide
// hash observed since the VID started presenting.
type SlideChangedPayload struct {
	VID      visualtypes.VID `json:"vid"`
	FromHash string          `json:"from_hash,omitempty"`
	ToHash   string          `json:"to_hash"`
}

// LayoutChangedPayload reports a change in the overall meeting layout.
type LayoutChangedPayload struct {
	From visualtypes.LayoutType `json:"from"`
	To   visualtypes.LayoutType `json:"to"`
}

// AudioVideoLinkPayload reports a caller-supplied link between a VID
// and an external audio stream reference.
type AudioVideoLinkPayload struct {
	VID      visualtypes.VID    `json:"vid"`
	AudioSID visualtypes.AudioSID `json:"audio_sid"`
}

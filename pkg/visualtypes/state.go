package visualtypes

// VIDState is the world-model projection of one tracked handle.
type VIDState struct {
	VID             VID        `json:"vid"`
	LastSeenMs      int64      `json:"last_seen_ms"`
	BBox            BBox       `json:"bbox"`
	Kind            RegionKind `json:"kind"`
	HandRaised      bool       `json:"hand_raised"`
	CameraOn        bool       `json:"camera_on"`
	IsActiveSpeaker bool       `json:"is_active_speaker"`
	IsPresenting    bool       `json:"is_presenting"`
	SlideHash       string     `json:"slide_hash,omitempty"`
	Confidence      Confidence `json:"confidence"`
	AudioSID        AudioSID   `json:"audio_sid,omitempty"`
	Fingerprint     string     `json:"fingerprint,omitempty"`
}

// ScreenShareState is the top-level screen-share projection.
type ScreenShareState struct {
	Active    bool   `json:"active"`
	VID       VID    `json:"vid,omitempty"`
	SlideHash string `json:"slide_hash,omitempty"`
}

// VisualState is the full world model: one VIDState per live handle
// plus derived top-level scalars. Map key order is never observable;
// the only documented order-dependent rule is the screen-share
// first-in-iteration-order tie-break, applied when the state is built.
type VisualState struct {
	VIDs            map[VID]VIDState `json:"vids"`
	ScreenShare     ScreenShareState `json:"screen_share"`
	Layout          LayoutType       `json:"layout"`
	HandRaisedCount int              `json:"hand_raised_count"`
	LastSnapshotMs  int64            `json:"last_snapshot_ms"`
	SnapshotCount   int64            `json:"snapshot_count"`
}

// NewVisualState returns the zero-value initial world model: no
// handles, no screen share, unknown layout, zero counters.
func NewVisualState() VisualState {
	return VisualState{
		VIDs:        make(map[VID]VIDState),
		ScreenShare: ScreenShareState{},
		Layout:      LayoutUnknown,
	}
}

// Clone returns a deep-enough copy of s: the VIDs map is copied so
// callers can mutate the result without aliasing the original.
func (s VisualState) Clone() VisualState {
	out := s
	out.VIDs = make(map[VID]VIDState, len(s.VIDs))
	for k, v := range s.VIDs {
		out.VIDs[k] = v
	}
	return out
}

// RecomputeHandRaisedCount recounts HandRaisedCount from the current
// VIDs map. This must be called after any mutation to VIDs rather than
// trusting an incrementally patched counter — a cached counter is not
// a substitute for recomputation from signals.
func (s *VisualState) RecomputeHandRaisedCount() {
	n := 0
	for _, v := range s.VIDs {
		if v.HandRaised {
			n++
		}
	}
	s.HandRaisedCount = n
}

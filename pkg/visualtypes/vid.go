package visualtypes

import "strconv"

// VID is an opaque, session-local continuity handle. It is never
// derived from or linked to identity. The external wire representation
// is the literal "v" concatenated with a monotonically increasing
// 1-based integer, minted per tracker instance and never reused after
// expiry.
type VID string

// NewVID renders the nth minted handle (1-based) in its wire form.
func NewVID(n uint64) VID {
	return VID("v" + strconv.FormatUint(n, 10))
}

// DetectedRegion is the input to the core per snapshot: one region of
// a composite frame, plus whatever instantaneous signals the caller's
// detection layer observed for it.
type DetectedRegion struct {
	BBox        BBox          `json:"bbox"`
	Kind        RegionKind    `json:"kind"`
	Fingerprint string        `json:"fingerprint,omitempty"`
	Signals     RegionSignals `json:"signals"`
}

// RegionSignals is the partial set of instantaneous signals a detected
// region may carry. All fields are optional; a missing boolean signal
// is treated as false by downstream consumers.
type RegionSignals struct {
	HandRaised      *bool  `json:"handRaised,omitempty"`
	CameraOn        *bool  `json:"cameraOn,omitempty"`
	IsActiveSpeaker *bool  `json:"isActiveSpeaker,omitempty"`
	IsPresenting    *bool  `json:"isPresenting,omitempty"`
	SlideHash       string `json:"slideHash,omitempty"`
}

// BoolOr returns the dereferenced value of p, or def if p is nil.
func BoolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// VIDEntry is the tracker's internal record for a live handle. Kind is
// immutable for the entry's lifetime.
type VIDEntry struct {
	VID         VID
	BBox        BBox
	Kind        RegionKind
	Fingerprint string
	LastSeenMs  int64
	Confidence  Confidence
}

// Package delta implements the DeltaDetector: it drives a VIDTracker
// per snapshot, debounces boolean signal transitions, diffs slide
// content, and emits a deterministically ordered VisualEvent stream
// alongside the next VisualState.
package delta

import "github.com/meetsignal/visualdelta/pkg/tracking"

// Config holds the DeltaDetector's own tunables plus the embedded
// tracker config it hands to its owned Tracker.
type Config struct {
	// DebounceSnapshots is the number of consecutive snapshots a
	// boolean signal must hold its new value before an event fires.
	DebounceSnapshots int

	Tracker tracking.Config
}

// DefaultConfig returns the detector's default tunables.
func DefaultConfig() Config {
	return Config{
		DebounceSnapshots: 2,
		Tracker:           tracking.DefaultConfig(),
	}
}

// Package adgate implements the audio-description policy gate: a
// multi-axis admission controller that decides which VisualEvents are
// worth announcing, in what priority order, and when it is safe to
// speak given cooldowns and live speech activity.
package adgate

import "github.com/meetsignal/visualdelta/pkg/events"

// Verbosity controls how aggressively events are filtered before
// being queued for announcement.
type Verbosity string

const (
	VerbosityMinimal Verbosity = "minimal"
	VerbosityNormal  Verbosity = "normal"
)

// Config holds the gate's tunables.
type Config struct {
	Enabled             bool
	Verbosity           Verbosity
	AvoidSpeechOverlap  bool
	GlobalCooldownMs    int64
	EventCooldownMs     map[events.Type]int64
	MaxPendingAnnouncements int
}

// DefaultConfig returns the gate's default tunables.
func DefaultConfig() Config {
	return Config{
		Enabled:            true,
		Verbosity:          VerbosityNormal,
		AvoidSpeechOverlap: true,
		GlobalCooldownMs:   2000,
		EventCooldownMs: map[events.Type]int64{
			events.TypeHandRaised:  5000,
			events.TypeHandLowered: 5000,
			events.TypeSlideChanged:  3000,
			events.TypeLayoutChanged: 10000,
		},
		MaxPendingAnnouncements: 5,
	}
}

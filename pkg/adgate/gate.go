package adgate

import (
	"sort"

	"github.com/meetsignal/visualdelta/pkg/events"
)

// priority assigns the base priority table. Events absent from this
// table are not in the allowlist and are always rejected.
var priority = map[events.Type]int{
	events.TypeScreenShareStarted: 10,
	events.TypeScreenShareStopped: 9,
	events.TypeHandRaised:         8,
	events.TypeSlideChanged:       6,
	events.TypeHandLowered:        5,
	events.TypeLayoutChanged:      4,
	events.TypeVIDAppeared:        3,
	events.TypeVIDDisappeared:     2,
}

// minimalThreshold is the minimum priority kept under VerbosityMinimal.
const minimalThreshold = 8

// AllowedADEvent pairs an admitted event with its resolved priority.
type AllowedADEvent struct {
	Event    events.VisualEvent
	Priority int
}

// AudioActivity describes live speech state, used only when
// AvoidSpeechOverlap is enabled.
type AudioActivity struct {
	IsSpeechActive bool
	Confidence     float64
	LastSpeechMs   int64
}

// Gate admits, prioritizes, and queues VisualEvents for audio
// description. A Gate is owned by one pipeline; it is not safe for
// concurrent use.
type Gate struct {
	cfg Config

	lastAnnouncementMs int64
	lastEventTypeMs    map[events.Type]int64
	pending            []AllowedADEvent
}

// New returns a Gate with an empty queue and no cooldowns elapsed.
func New(cfg Config) *Gate {
	return &Gate{
		cfg:             cfg,
		lastEventTypeMs: make(map[events.Type]int64),
	}
}

// SelectADCandidates filters evts by the allowlist, per-type cooldown,
// and verbosity, returning admitted events sorted by priority
// descending.
func (g *Gate) SelectADCandidates(evts []events.VisualEvent, nowMs int64) []AllowedADEvent {
	var out []AllowedADEvent

	for _, e := range evts {
		p, allowed := priority[e.Type]
		if !allowed {
			continue
		}
		if g.cfg.Verbosity == VerbosityMinimal && p < minimalThreshold {
			continue
		}
		cooldown := g.cfg.EventCooldownMs[e.Type]
		if cooldown > 0 {
			if last, ok := g.lastEventTypeMs[e.Type]; ok && nowMs-last < cooldown {
				continue
			}
		}
		out = append(out, AllowedADEvent{Event: e, Priority: p})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})

	return out
}

// QueueAnnouncements appends candidates to the pending queue,
// trimming the queue to the last MaxPendingAnnouncements entries if
// it overflows.
func (g *Gate) QueueAnnouncements(candidates []AllowedADEvent) {
	g.pending = append(g.pending, candidates...)
	if len(g.pending) > g.cfg.MaxPendingAnnouncements {
		g.pending = g.pending[len(g.pending)-g.cfg.MaxPendingAnnouncements:]
	}
}

// ShouldSpeakAD reports whether the gate is ready to emit its next
// announcement right now.
func (g *Gate) ShouldSpeakAD(nowMs int64, activity *AudioActivity) bool {
	if !g.cfg.Enabled || len(g.pending) == 0 {
		return false
	}
	if nowMs-g.lastAnnouncementMs < g.cfg.GlobalCooldownMs {
		return false
	}
	if g.cfg.AvoidSpeechOverlap && activity != nil {
		if activity.IsSpeechActive && activity.Confidence > 0.5 {
			return false
		}
		if nowMs-activity.LastSpeechMs < 500 {
			return false
		}
	}
	return true
}

// GetNextAnnouncement re-sorts the queue by priority descending, pops
// the head, and updates the cooldown clocks. It returns false if the
// queue is empty.
func (g *Gate) GetNextAnnouncement(nowMs int64) (AllowedADEvent, bool) {
	if len(g.pending) == 0 {
		return AllowedADEvent{}, false
	}

	sort.SliceStable(g.pending, func(i, j int) bool {
		return g.pending[i].Priority > g.pending[j].Priority
	})

	next := g.pending[0]
	g.pending = g.pending[1:]

	g.lastAnnouncementMs = nowMs
	g.lastEventTypeMs[next.Event.Type] = nowMs

	return next, true
}

// ClearPending empties the queue without affecting cooldown clocks.
func (g *Gate) ClearPending() {
	g.pending = nil
}

// PendingLen reports the current queue length, used to verify the
// queue-bound invariant.
func (g *Gate) PendingLen() int {
	return len(g.pending)
}

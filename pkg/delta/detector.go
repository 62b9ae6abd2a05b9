package delta

import (
	"fmt"

	"github.com/meetsignal/visualdelta/pkg/events"
	"github.com/meetsignal/visualdelta/pkg/tracking"
	"github.com/meetsignal/visualdelta/pkg/visualtypes"
)

const (
	fieldHandRaised   = "handRaised"
	fieldIsPresenting = "isPresenting"
	fieldSlideHash    = "slideHash"
)

type pendingSignal struct {
	value     bool
	seenCount int
	firstSeen int64
}

// Detector runs one VIDTracker, debounces boolean signal transitions,
// and diffs slide content, emitting a deterministically ordered
// VisualEvent stream per snapshot.
type Detector struct {
	cfg     Config
	tracker *tracking.Tracker
	factory *events.Factory

	pendingSignals   map[string]pendingSignal
	confirmedSignals map[string]bool
	confirmedSlide   map[string]string

	previousLayout visualtypes.LayoutType
}

// New returns a Detector owning a fresh Tracker and event Factory.
func New(cfg Config) *Detector {
	return &Detector{
		cfg:              cfg,
		tracker:          tracking.New(cfg.Tracker),
		factory:          events.NewFactory(),
		pendingSignals:   make(map[string]pendingSignal),
		confirmedSignals: make(map[string]bool),
		confirmedSlide:   make(map[string]string),
		previousLayout:   visualtypes.LayoutUnknown,
	}
}

func signalKey(vid visualtypes.VID, field string) string {
	return fmt.Sprintf("%s:%s", vid, field)
}

// ComputeDeltas runs one snapshot tick: it drives the tracker,
// debounces and diffs signals, and projects the next VisualState.
// contentHash/width/height are passed through into the
// snapshot_received event for caller-side correlation only; the core
// never interprets them.
func (d *Detector) ComputeDeltas(
	prevState visualtypes.VisualState,
	regions []visualtypes.DetectedRegion,
	detectedLayout visualtypes.LayoutType,
	nowMs int64,
	contentHash string,
	width, height int,
) (visualtypes.VisualState, []events.VisualEvent) {
	var out []events.VisualEvent

	out = append(out, d.factory.SnapshotReceived(nowMs, contentHash, width, height))

	result := d.tracker.ProcessRegions(regions, nowMs)

	for _, vid := range result.Appeared {
		entry, _ := d.tracker.Entry(vid)
		out = append(out, d.factory.VIDAppeared(nowMs, entry.Confidence, vid, entry.Kind, entry.BBox))
	}

	for _, vid := range result.Expired {
		out = append(out, d.factory.VIDDisappeared(nowMs, vid))
		d.purgeVID(vid)
	}

	for i, vid := range result.Assignments {
		region := regions[i]
		out = append(out, d.processRegionSignals(vid, region, nowMs)...)
	}

	if detectedLayout != visualtypes.LayoutUnknown && detectedLayout != d.previousLayout {
		out = append(out, d.factory.LayoutChanged(nowMs, d.previousLayout, detectedLayout))
		d.previousLayout = detectedLayout
	}

	nextState := d.projectState(prevState, result, regions, nowMs)

	return nextState, out
}

// processRegionSignals runs the debounce protocol for one region's
// boolean signals, then the slide-hash diff, in the per-region order
// the ordering guarantee requires: booleans before slide hash.
func (d *Detector) processRegionSignals(vid visualtypes.VID, region visualtypes.DetectedRegion, nowMs int64) []events.VisualEvent {
	var out []events.VisualEvent

	handKey := signalKey(vid, fieldHandRaised)
	incomingHand := visualtypes.BoolOr(region.Signals.HandRaised, false)
	handFired, handConfirmed := d.debounce(handKey, incomingHand, nowMs)
	if handFired {
		if handConfirmed {
			out = append(out, d.factory.HandRaised(nowMs, vid))
		} else {
			out = append(out, d.factory.HandLowered(nowMs, vid))
		}
	}

	presKey := signalKey(vid, fieldIsPresenting)
	preConfirmedPres := d.confirmedSignals[presKey]
	incomingPres := visualtypes.BoolOr(region.Signals.IsPresenting, false)
	presFired, presConfirmed := d.debounce(presKey, incomingPres, nowMs)
	if presFired {
		if presConfirmed {
			out = append(out, d.factory.ScreenShareStarted(nowMs, vid))
		} else {
			out = append(out, d.factory.ScreenShareStopped(nowMs, vid))
		}
	}

	slideKey := signalKey(vid, fieldSlideHash)
	switch {
	case presFired && presConfirmed:
		// Just started presenting: capture the current slide as the
		// baseline without announcing it as a change.
		if region.Signals.SlideHash != "" {
			d.confirmedSlide[slideKey] = region.Signals.SlideHash
		}
	case !presFired && preConfirmedPres:
		incomingHash := region.Signals.SlideHash
		confirmedHash := d.confirmedSlide[slideKey]
		if incomingHash != "" && incomingHash != confirmedHash {
			d.confirmedSlide[slideKey] = incomingHash
			out = append(out, d.factory.SlideChanged(nowMs, vid, confirmedHash, incomingHash))
		}
	}

	return out
}

// debounce runs the per-key debounce protocol and reports whether a
// confirmed transition fired this call, plus the resulting confirmed
// value (whether or not it changed).
func (d *Detector) debounce(key string, incoming bool, nowMs int64) (fired bool, confirmed bool) {
	current := d.confirmedSignals[key]

	if incoming == current {
		delete(d.pendingSignals, key)
		return false, current
	}

	pending, ok := d.pendingSignals[key]
	if !ok || pending.value != incoming {
		d.pendingSignals[key] = pendingSignal{value: incoming, seenCount: 1, firstSeen: nowMs}
		return false, current
	}

	pending.seenCount++
	if pending.seenCount >= d.cfg.DebounceSnapshots {
		delete(d.pendingSignals, key)
		d.confirmedSignals[key] = incoming
		return true, incoming
	}

	d.pendingSignals[key] = pending
	return false, current
}

// purgeVID removes every pending/confirmed entry belonging to vid,
// called when the tracker reports it expired.
func (d *Detector) purgeVID(vid visualtypes.VID) {
	prefix := string(vid) + ":"
	for k := range d.pendingSignals {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(d.pendingSignals, k)
		}
	}
	for k := range d.confirmedSignals {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(d.confirmedSignals, k)
		}
	}
	for k := range d.confirmedSlide {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(d.confirmedSlide, k)
		}
	}
}

// projectState rebuilds VisualState.VIDs from scratch for every
// assigned vid from its confirmed signals, then derives the top-level
// screenShare/handRaisedCount/layout/snapshot fields.
func (d *Detector) projectState(prevState visualtypes.VisualState, result tracking.Result, regions []visualtypes.DetectedRegion, nowMs int64) visualtypes.VisualState {
	next := visualtypes.NewVisualState()
	next.Layout = d.previousLayout
	next.SnapshotCount = prevState.SnapshotCount + 1
	next.LastSnapshotMs = nowMs

	var presentingVID visualtypes.VID
	havePresenter := false

	for i, vid := range result.Assignments {
		region := regions[i]
		entry, _ := d.tracker.Entry(vid)

		handRaised := d.confirmedSignals[signalKey(vid, fieldHandRaised)]
		isPresenting := d.confirmedSignals[signalKey(vid, fieldIsPresenting)]

		vs := visualtypes.VIDState{
			VID:             vid,
			LastSeenMs:      entry.LastSeenMs,
			BBox:            entry.BBox,
			Kind:            entry.Kind,
			HandRaised:      handRaised,
			CameraOn:        visualtypes.BoolOr(region.Signals.CameraOn, false),
			IsActiveSpeaker: visualtypes.BoolOr(region.Signals.IsActiveSpeaker, false),
			IsPresenting:    isPresenting,
			Confidence:      entry.Confidence,
			Fingerprint:     entry.Fingerprint,
		}
		if isPresenting {
			vs.SlideHash = d.confirmedSlide[signalKey(vid, fieldSlideHash)]
		}
		if prev, ok := prevState.VIDs[vid]; ok {
			vs.AudioSID = prev.AudioSID
		}

		next.VIDs[vid] = vs

		if isPresenting && !havePresenter {
			presentingVID = vid
			havePresenter = true
		}
	}

	if havePresenter {
		next.ScreenShare = visualtypes.ScreenShareState{
			Active:    true,
			VID:       presentingVID,
			SlideHash: next.VIDs[presentingVID].SlideHash,
		}
	}

	next.RecomputeHandRaisedCount()

	return next
}

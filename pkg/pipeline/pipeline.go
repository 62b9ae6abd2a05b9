package pipeline

import (
	"context"

	"github.com/meetsignal/visualdelta/pkg/adgate"
	"github.com/meetsignal/visualdelta/pkg/delta"
	"github.com/meetsignal/visualdelta/pkg/events"
	"github.com/meetsignal/visualdelta/pkg/verbalizer"
	"github.com/meetsignal/visualdelta/pkg/visualtypes"
)

// TickResult is everything one Tick call produced: the emitted
// events, the resulting world state, and the spoken AD line, if the
// gate decided this was the moment to speak.
type TickResult struct {
	Events    []events.VisualEvent
	State     visualtypes.VisualState
	Spoken    string
	HasSpoken bool
}

// Pipeline owns one detector, gate, and verbalizer for one session.
// Call Tick once per snapshot; the pipeline holds the previous
// VisualState between calls.
type Pipeline struct {
	detector   *delta.Detector
	gate       *adgate.Gate
	verbalizer *verbalizer.Verbalizer
	state      visualtypes.VisualState
}

// New returns a Pipeline assembled from cfg, with an initial empty
// VisualState.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		detector:   delta.New(cfg.Detector),
		gate:       adgate.New(cfg.Gate),
		verbalizer: verbalizer.New(cfg.Verbalizer),
		state:      visualtypes.NewVisualState(),
	}
}

// SetLLMHandler injects the optional LLM path into the owned
// Verbalizer. Passing nil reverts to template-only.
func (p *Pipeline) SetLLMHandler(h verbalizer.LLMHandler) {
	p.verbalizer.SetLLMHandler(h)
}

// State returns the pipeline's current VisualState.
func (p *Pipeline) State() visualtypes.VisualState {
	return p.state
}

// Reset clears the pipeline's VisualState and pending AD queue. The
// detector keeps its tracker and debounce state; callers that need a
// fully clean tracker should construct a new Pipeline instead.
func (p *Pipeline) Reset() {
	p.state = visualtypes.NewVisualState()
	p.gate.ClearPending()
}

// Tick runs one snapshot through the full pipeline: tracker and
// delta detection, AD candidate selection and queueing, and — if the
// gate judges this the moment to speak — verbalization of the next
// queued announcement.
func (p *Pipeline) Tick(
	ctx context.Context,
	regions []visualtypes.DetectedRegion,
	detectedLayout visualtypes.LayoutType,
	nowMs int64,
	contentHash string,
	width, height int,
	audioActivity *adgate.AudioActivity,
) TickResult {
	nextState, evts := p.detector.ComputeDeltas(p.state, regions, detectedLayout, nowMs, contentHash, width, height)
	p.state = nextState

	candidates := p.gate.SelectADCandidates(evts, nowMs)
	p.gate.QueueAnnouncements(candidates)

	result := TickResult{Events: evts, State: nextState}

	if !p.gate.ShouldSpeakAD(nowMs, audioActivity) {
		return result
	}

	announcement, ok := p.gate.GetNextAnnouncement(nowMs)
	if !ok {
		return result
	}

	bbox, kind := subjectOf(announcement.Event, nextState)
	result.Spoken = p.verbalizer.Verbalize(
		ctx,
		announcement.Event,
		bbox,
		kind,
		len(nextState.VIDs),
		nextState.HandRaisedCount,
		nextState.ScreenShare.Active,
		nextState.Layout,
	)
	result.HasSpoken = true

	return result
}

// subjectOf extracts the bbox/kind of the vid an event is about, if
// any, so the verbalizer can render a position descriptor without
// ever touching raw coordinates outside this boundary.
func subjectOf(evt events.VisualEvent, state visualtypes.VisualState) (visualtypes.BBox, visualtypes.RegionKind) {
	var vid visualtypes.VID

	switch p := evt.Payload.(type) {
	case events.VIDAppearedPayload:
		return p.BBox, p.Kind
	case events.VIDDisappearedPayload:
		vid = p.VID
	case events.HandRaisedPayload:
		vid = p.VID
	case events.HandLoweredPayload:
		vid = p.VID
	case events.ScreenShareStartedPayload:
		vid = p.VID
	case events.ScreenShareStoppedPayload:
		vid = p.VID
	case events.SlideChangedPayload:
		vid = p.VID
	default:
		return visualtypes.BBox{}, visualtypes.RegionUnknown
	}

	if v, ok := state.VIDs[vid]; ok {
		return v.BBox, v.Kind
	}
	return visualtypes.BBox{}, visualtypes.RegionUnknown
}

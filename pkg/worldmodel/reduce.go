// Package worldmodel implements the pure VisualState reducer: given
// any state and any VisualEvent, it returns the next state. It is
// independent of the delta detector, so replaying an event log
// through Reduce reconstructs the same world model the detector
// produced live.
package worldmodel

import (
	"github.com/meetsignal/visualdelta/pkg/events"
	"github.com/meetsignal/visualdelta/pkg/visualtypes"
)

// Reduce returns the next VisualState after applying evt to state.
// state is not mutated; the returned value may share unmodified
// substructure with it.
func Reduce(state visualtypes.VisualState, evt events.VisualEvent) visualtypes.VisualState {
	next := state.Clone()

	switch evt.Type {
	case events.TypeSnapshotReceived:
		next.LastSnapshotMs = evt.TsObsMs
		next.SnapshotCount++

	case events.TypeVIDAppeared:
		p, ok := evt.Payload.(events.VIDAppearedPayload)
		if !ok {
			break
		}
		next.VIDs[p.VID] = visualtypes.VIDState{
			VID:        p.VID,
			Kind:       p.Kind,
			BBox:       p.BBox,
			LastSeenMs: evt.TsObsMs,
			Confidence: evt.Confidence,
		}

	case events.TypeVIDDisappeared:
		p, ok := evt.Payload.(events.VIDDisappearedPayload)
		if !ok {
			break
		}
		delete(next.VIDs, p.VID)
		if next.ScreenShare.Active && next.ScreenShare.VID == p.VID {
			next.ScreenShare = visualtypes.ScreenShareState{}
		}
		next.RecomputeHandRaisedCount()

	case events.TypeHandRaised:
		p, ok := evt.Payload.(events.HandRaisedPayload)
		if !ok {
			break
		}
		if v, ok := next.VIDs[p.VID]; ok {
			v.HandRaised = true
			next.VIDs[p.VID] = v
		}
		next.RecomputeHandRaisedCount()

	case events.TypeHandLowered:
		p, ok := evt.Payload.(events.HandLoweredPayload)
		if !ok {
			break
		}
		if v, ok := next.VIDs[p.VID]; ok {
			v.HandRaised = false
			next.VIDs[p.VID] = v
		}
		next.RecomputeHandRaisedCount()

	case events.TypeScreenShareStarted:
		p, ok := evt.Payload.(events.ScreenShareStartedPayload)
		if !ok {
			break
		}
		if v, ok := next.VIDs[p.VID]; ok {
			v.IsPresenting = true
			next.VIDs[p.VID] = v
			next.ScreenShare = visualtypes.ScreenShareState{Active: true, VID: p.VID, SlideHash: v.SlideHash}
		}

	case events.TypeScreenShareStopped:
		p, ok := evt.Payload.(events.ScreenShareStoppedPayload)
		if !ok {
			break
		}
		if v, ok := next.VIDs[p.VID]; ok {
			v.IsPresenting = false
			next.VIDs[p.VID] = v
		}
		if next.ScreenShare.VID == p.VID {
			next.ScreenShare = visualtypes.ScreenShareState{}
		}

	case events.TypeSlideChanged:
		p, ok := evt.Payload.(events.SlideChangedPayload)
		if !ok {
			break
		}
		if v, ok := next.VIDs[p.VID]; ok {
			v.SlideHash = p.ToHash
			next.VIDs[p.VID] = v
			if next.ScreenShare.Active && next.ScreenShare.VID == p.VID {
				next.ScreenShare.SlideHash = p.ToHash
			}
		}

	case events.TypeLayoutChanged:
		p, ok := evt.Payload.(events.LayoutChangedPayload)
		if !ok {
			break
		}
		next.Layout = p.To

	case events.TypeAudioVideoLink:
		p, ok := evt.Payload.(events.AudioVideoLinkPayload)
		if !ok {
			break
		}
		if v, ok := next.VIDs[p.VID]; ok {
			v.AudioSID = p.AudioSID
			next.VIDs[p.VID] = v
		}

	default:
		// Unknown variant: no-op, forward-compatible with schema drift.
	}

	return next
}

// ReduceAll folds Reduce over log starting from an initial state,
// used for replay and for cross-checking against a detector's live
// nextState.
func ReduceAll(initial visualtypes.VisualState, log []events.VisualEvent) visualtypes.VisualState {
	state := initial
	for _, evt := range log {
		state = Reduce(state, evt)
	}
	return state
}

package events

import (
	"fmt"
	"sync/atomic"

	"github.com/meetsignal/visualdelta/pkg/visualtypes"
)

// Factory mints VisualEvents for one session. Each factory owns its
// own id counter: ids are never shared across sessions, so two
// factories can safely mint "evt-1" concurrently for different calls.
type Factory struct {
	seq atomic.Uint64
}

// NewFactory returns a Factory with its counter at zero.
func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) nextID() string {
	n := f.seq.Add(1)
	return fmt.Sprintf("evt-%d", n)
}

func (f *Factory) build(typ Type, tsObsMs int64, confidence visualtypes.Confidence, payload interface{}) VisualEvent {
	return VisualEvent{
		ID:         f.nextID(),
		Type:       typ,
		TsEmitMs:   tsObsMs,
		TsObsMs:    tsObsMs,
		Source:     Source,
		Confidence: confidence.Clamp(),
		Payload:    payload,
	}
}

// SnapshotReceived builds a snapshot_received event.
func (f *Factory) SnapshotReceived(tsObsMs int64, contentHash string, width, height int) VisualEvent {
	return f.build(TypeSnapshotReceived, tsObsMs, 1.0, SnapshotReceivedPayload{
		ContentHash: contentHash,
		Width:       width,
		Height:      height,
	})
}

// VIDAppeared builds a vid_appeared event.
func (f *Factory) VIDAppeared(tsObsMs int64, confidence visualtypes.Confidence, vid visualtypes.VID, kind visualtypes.RegionKind, bbox visualtypes.BBox) VisualEvent {
	return f.build(TypeVIDAppeared, tsObsMs, confidence, VIDAppearedPayload{VID: vid, Kind: kind, BBox: bbox})
}

// VIDDisappeared builds a vid_disappeared event.
func (f *Factory) VIDDisappeared(tsObsMs int64, vid visualtypes.VID) VisualEvent {
	return f.build(TypeVIDDisappeared, tsObsMs, 1.0, VIDDisappearedPayload{VID: vid})
}

// HandRaised builds a hand_raised event.
func (f *Factory) HandRaised(tsObsMs int64, vid visualtypes.VID) VisualEvent {
	return f.build(TypeHandRaised, tsObsMs, 1.0, HandRaisedPayload{VID: vid})
}

// HandLowered builds a hand_lowered event.
func (f *Factory) HandLowered(tsObsMs int64, vid visualtypes.VID) VisualEvent {
	return f.build(TypeHandLowered, tsObsMs, 1.0, HandLoweredPayload{VID: vid})
}

// ScreenShareStarted builds a screen_share_started event.
func (f *Factory) ScreenShareStarted(tsObsMs int64, vid visualtypes.VID) VisualEvent {
	return f.build(TypeScreenShareStarted, tsObsMs, 1.0, ScreenShareStartedPayload{VID: vid})
}

// ScreenShareStopped builds a screen_share_stopped event.
func (f *Factory) ScreenShareStopped(tsObsMs int64, vid visualtypes.VID) VisualEvent {
	return f.build(TypeScreenShareStopped, tsObsMs, 1.0, ScreenShareStoppedPayload{VID: vid})
}

// SlideChanged builds a slide_changed event.
func (f *Factory) SlideChanged(tsObsMs int64, vid visualtypes.VID, fromHash, toHash string) VisualEvent {
	return f.build(TypeSlideChanged, tsObsMs, 1.0, SlideChangedPayload{VID: vid, FromHash: fromHash, ToHash: toHash})
}

// LayoutChanged builds a layout_changed event.
func (f *Factory) LayoutChanged(tsObsMs int64, from, to visualtypes.LayoutType) VisualEvent {
	return f.build(TypeLayoutChanged, tsObsMs, 1.0, LayoutChangedPayload{From: from, To: to})
}

// AudioVideoLink builds an audio_video_link event.
func (f *Factory) AudioVideoLink(tsObsMs int64, vid visualtypes.VID, audioSID visualtypes.AudioSID) VisualEvent {
	return f.build(TypeAudioVideoLink, tsObsMs, 1.0, AudioVideoLinkPayload{VID: vid, AudioSID: audioSID})
}

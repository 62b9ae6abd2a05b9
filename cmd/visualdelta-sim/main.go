// visualdelta-sim feeds a scripted sequence of DetectedRegions through
// a pkg/pipeline.Pipeline and prints the events and AD lines it
// produces, for manually exercising debounce/expiry/gate behavior
// without standing up the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/meetsignal/visualdelta/pkg/pipeline"
	"github.com/meetsignal/visualdelta/pkg/visualtypes"
)

func main() {
	ticks := flag.Int("ticks", 12, "number of snapshot ticks to simulate")
	tickMs := flag.Int64("tick-ms", 1000, "milliseconds advanced per tick")
	flag.Parse()

	fmt.Println("visualdelta-sim")
	fmt.Println("===============")

	p := pipeline.New(pipeline.DefaultConfig())
	ctx := context.Background()

	var nowMs int64 = 1000
	for i := 0; i < *ticks; i++ {
		regions := scriptedRegions(i)
		layout := visualtypes.LayoutGrid

		result := p.Tick(ctx, regions, layout, nowMs, fmt.Sprintf("hash%02d", i), 640, 360, nil)

		fmt.Printf("\n--- tick %d (t=%dms) ---\n", i, nowMs)
		for _, evt := range result.Events {
			fmt.Printf("  event: %-20s confidence=%.2f payload=%+v\n", evt.Type, evt.Confidence, evt.Payload)
		}
		if result.HasSpoken {
			fmt.Printf("  AD: %q\n", result.Spoken)
		}
		fmt.Printf("  state: %d handles, hands_raised=%d, screen_share_active=%v\n",
			len(result.State.VIDs), result.State.HandRaisedCount, result.State.ScreenShare.Active)

		nowMs += *tickMs
	}
}

// scriptedRegions hand-codes a small walk through a typical session:
// a tile appears, raises its
// hand after the debounce window, starts presenting, changes slides,
// then leaves view.
func scriptedRegions(tick int) []visualtypes.DetectedRegion {
	presenting := tick >= 4
	handRaised := tick >= 1 && tick < 8
	slideHash := "slide-a"
	if tick >= 6 {
		slideHash = "slide-b"
	}

	if tick >= 10 {
		return nil
	}

	return []visualtypes.DetectedRegion{
		{
			BBox:        visualtypes.BBox{X: 0, Y: 0, W: 0.5, H: 0.5},
			Kind:        visualtypes.RegionTile,
			Fingerprint: "POS:0055",
			Signals: visualtypes.RegionSignals{
				HandRaised:   boolPtr(handRaised),
				IsPresenting: boolPtr(presenting),
				SlideHash:    slideHash,
			},
		},
	}
}

func boolPtr(b bool) *bool { return &b }

// Package verbalizer renders VisualEvents into short spoken
// audio-description text. It always has a deterministic template
// path; an optional LLM path may be layered on top, but any failure
// or output-validation rejection falls back to the template silently.
package verbalizer

import (
	"math"
	"strings"

	"github.com/meetsignal/visualdelta/pkg/events"
	"github.com/meetsignal/visualdelta/pkg/visualtypes"
)

// Verbosity mirrors the gate's verbosity axis; templates are selected
// per-verbosity independently of which events the gate admitted.
type Verbosity string

const (
	VerbosityMinimal Verbosity = "minimal"
	VerbosityNormal  Verbosity = "normal"
)

type templatePair struct {
	minimal string
	normal  string
}

// templates holds one entry per allowed event, with placeholders
// ${position} (hand_raised/hand_lowered) and ${to} (layout_changed).
var templates = map[events.Type]templatePair{
	events.TypeHandRaised:         {minimal: "Participant ${position} raised their hand", normal: "Participant ${position} raised their hand"},
	events.TypeHandLowered:        {minimal: "Participant ${position} lowered their hand", normal: "Participant ${position} lowered their hand"},
	events.TypeScreenShareStarted: {minimal: "Screen sharing started", normal: "A participant started sharing their screen"},
	events.TypeScreenShareStopped: {minimal: "Screen sharing stopped", normal: "Screen sharing has stopped"},
	events.TypeSlideChanged:       {minimal: "Slide changed", normal: "The presenter advanced to a new slide"},
	events.TypeLayoutChanged:      {minimal: "Layout changed to ${to}", normal: "The meeting layout changed to ${to}"},
	events.TypeVIDAppeared:        {minimal: "New participant joined view", normal: "A new participant tile appeared"},
	events.TypeVIDDisappeared:     {minimal: "Participant left view", normal: "A participant tile disappeared"},
}

// position renders a bbox's location as a 3x3 grid descriptor, never
// identity: {top,middle,bottom} x {left,center,right}.
func position(bbox visualtypes.BBox) string {
	col := clampIndex(int(math.Floor(bbox.X * 3)))
	row := clampIndex(int(math.Floor(bbox.Y * 3)))

	rows := [3]string{"top", "middle", "bottom"}
	cols := [3]string{"left", "center", "right"}
	return rows[row] + " " + cols[col]
}

func clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i > 2 {
		return 2
	}
	return i
}

// renderTemplate fills the template for typ at the given verbosity
// using only positional/layout data, never identity.
func renderTemplate(typ events.Type, verbosity Verbosity, bbox visualtypes.BBox, layoutTo visualtypes.LayoutType) (string, bool) {
	pair, ok := templates[typ]
	if !ok {
		return "", false
	}

	tmpl := pair.normal
	if verbosity == VerbosityMinimal {
		tmpl = pair.minimal
	}

	tmpl = strings.ReplaceAll(tmpl, "${position}", position(bbox))
	tmpl = strings.ReplaceAll(tmpl, "${to}", string(layoutTo))

	return tmpl, true
}

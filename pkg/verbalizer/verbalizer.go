package verbalizer

import (
	"context"
	"log/slog"

	"github.com/meetsignal/visualdelta/internal/log"
	"github.com/meetsignal/visualdelta/pkg/events"
	"github.com/meetsignal/visualdelta/pkg/visualtypes"
)

// Config holds the verbalizer's tunables.
type Config struct {
	UseLLM    bool
	MaxLength int
	Verbosity Verbosity
}

// DefaultConfig returns the verbalizer's default tunables.
func DefaultConfig() Config {
	return Config{
		UseLLM:    false,
		MaxLength: 120,
		Verbosity: VerbosityNormal,
	}
}

// LLMContext is everything the optional LLM path is allowed to see.
// It deliberately excludes bbox coordinates, fingerprints, and
// images — only a coarse position descriptor and aggregate counts.
type LLMContext struct {
	EventType         events.Type
	Position          string
	Kind              visualtypes.RegionKind
	LayoutFrom        visualtypes.LayoutType
	LayoutTo          visualtypes.LayoutType
	ParticipantCount  int
	HandRaisedCount   int
	ScreenShareActive bool
	CurrentLayout     visualtypes.LayoutType
	Verbosity         Verbosity
}

// LLMHandler is an externally injected async text generator. Any
// error it returns, or panic-free non-nil-error rejection, is caught
// by Verbalize and treated as fallback-to-template.
type LLMHandler func(ctx context.Context, llmCtx LLMContext) (string, error)

// Verbalizer renders VisualEvents into AD text, optionally trying an
// LLM handler first and always able to fall back to the template
// table.
type Verbalizer struct {
	cfg     Config
	handler LLMHandler
	logger  *slog.Logger
}

// New returns a Verbalizer with no LLM handler set.
func New(cfg Config) *Verbalizer {
	return &Verbalizer{cfg: cfg, logger: log.Component("verbalizer")}
}

// SetLLMHandler injects the async text-generation handler used when
// cfg.UseLLM is true. Passing nil reverts to template-only, which is
// also the behavior when UseLLM is true but no handler was ever set —
// "LLM enabled" and "LLM available" are independent conditions.
func (v *Verbalizer) SetLLMHandler(h LLMHandler) {
	v.handler = h
}

// Verbalize renders evt into spoken text. bbox is the subject vid's
// bbox if any (zero value for events with no single-vid subject,
// e.g. layout_changed). participantCount/handRaisedCount/
// screenShareActive/currentLayout describe the surrounding state for
// the optional LLM context.
func (v *Verbalizer) Verbalize(ctx context.Context, evt events.VisualEvent, bbox visualtypes.BBox, kind visualtypes.RegionKind, participantCount, handRaisedCount int, screenShareActive bool, currentLayout visualtypes.LayoutType) string {
	layoutTo := currentLayout
	layoutFrom := visualtypes.LayoutUnknown
	if p, ok := evt.Payload.(events.LayoutChangedPayload); ok {
		layoutFrom = p.From
		layoutTo = p.To
	}

	templateText, known := renderTemplate(evt.Type, v.cfg.Verbosity, bbox, layoutTo)
	if !known {
		return ""
	}

	if !v.cfg.UseLLM || v.handler == nil {
		return templateText
	}

	llmCtx := LLMContext{
		EventType:         evt.Type,
		Position:          position(bbox),
		Kind:              kind,
		LayoutFrom:        layoutFrom,
		LayoutTo:          layoutTo,
		ParticipantCount:  participantCount,
		HandRaisedCount:   handRaisedCount,
		ScreenShareActive: screenShareActive,
		CurrentLayout:     currentLayout,
		Verbosity:         v.cfg.Verbosity,
	}

	text, err := v.handler(ctx, llmCtx)
	if err != nil {
		v.logger.Warn("llm handler failed, falling back to template", "event_type", evt.Type, "error", err)
		return templateText
	}

	result := ValidateOutput(text, v.cfg.MaxLength)
	if !result.Valid {
		v.logger.Warn("llm output rejected, falling back to template", "event_type", evt.Type, "reason", result.Reason)
		return templateText
	}

	return text
}

// Package pipeline wires the VIDTracker, DeltaDetector, ADPolicyGate,
// and Verbalizer into the single per-session orchestrator a caller
// drives one snapshot tick at a time. The pipeline itself holds no
// network or storage code — it is purely the data-flow diagram from
// the system overview turned into a type.
package pipeline

import (
	"github.com/meetsignal/visualdelta/pkg/adgate"
	"github.com/meetsignal/visualdelta/pkg/delta"
	"github.com/meetsignal/visualdelta/pkg/verbalizer"
)

// Config bundles the per-component configs the pipeline assembles.
type Config struct {
	Detector   delta.Config
	Gate       adgate.Config
	Verbalizer verbalizer.Config
}

// DefaultConfig returns every component's defaults.
func DefaultConfig() Config {
	return Config{
		Detector:   delta.DefaultConfig(),
		Gate:       adgate.DefaultConfig(),
		Verbalizer: verbalizer.DefaultConfig(),
	}
}

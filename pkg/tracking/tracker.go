package tracking

import (
	"github.com/meetsignal/visualdelta/pkg/fingerprint"
	"github.com/meetsignal/visualdelta/pkg/visualtypes"
)

// Result is the output of one ProcessRegions call.
type Result struct {
	// Assignments maps each input region's index to the vid it was
	// matched or minted for. Every region appears exactly once.
	Assignments []visualtypes.VID

	// Appeared holds the vids newly minted in this call.
	Appeared []visualtypes.VID

	// Updated holds the vids of pre-existing entries reused in this
	// call.
	Updated []visualtypes.VID

	// Expired holds the vids dropped in this call because they were
	// not claimed and their idle time exceeded ExpireMs.
	Expired []visualtypes.VID
}

// Tracker matches DetectedRegions to continuity handles, minting new
// ones on no-match and expiring ones that go unclaimed for too long.
// A Tracker owns its entries; it is not safe for concurrent use.
type Tracker struct {
	cfg     Config
	nextNum uint64
	entries map[visualtypes.VID]visualtypes.VIDEntry
}

// New returns a Tracker with the given config and no live entries.
func New(cfg Config) *Tracker {
	return &Tracker{
		cfg:     cfg,
		nextNum: 1,
		entries: make(map[visualtypes.VID]visualtypes.VIDEntry),
	}
}

// Size returns the number of currently live entries.
func (t *Tracker) Size() int {
	return len(t.entries)
}

// Entry returns the live entry for vid, if any.
func (t *Tracker) Entry(vid visualtypes.VID) (visualtypes.VIDEntry, bool) {
	e, ok := t.entries[vid]
	return e, ok
}

type candidate struct {
	vid   visualtypes.VID
	score float64
}

// ProcessRegions matches regions against live entries, in input
// order, per the scoring and tie-break rules of bestCandidate. After all regions are processed, any unclaimed entry idle
// longer than cfg.ExpireMs is expired and removed.
func (t *Tracker) ProcessRegions(regions []visualtypes.DetectedRegion, nowMs int64) Result {
	result := Result{
		Assignments: make([]visualtypes.VID, len(regions)),
	}
	claimed := make(map[visualtypes.VID]bool, len(regions))

	for i, region := range regions {
		best, found := t.bestCandidate(region, claimed)
		if found {
			entry := t.entries[best.vid]
			entry.BBox = region.BBox
			entry.Fingerprint = region.Fingerprint
			entry.LastSeenMs = nowMs
			entry.Confidence = visualtypes.Confidence(best.score).Clamp()
			t.entries[best.vid] = entry
			claimed[best.vid] = true
			result.Assignments[i] = best.vid
			result.Updated = append(result.Updated, best.vid)
			continue
		}

		vid := visualtypes.NewVID(t.nextNum)
		t.nextNum++
		t.entries[vid] = visualtypes.VIDEntry{
			VID:         vid,
			BBox:        region.BBox,
			Kind:        region.Kind,
			Fingerprint: region.Fingerprint,
			LastSeenMs:  nowMs,
			Confidence:  1.0,
		}
		claimed[vid] = true
		result.Assignments[i] = vid
		result.Appeared = append(result.Appeared, vid)
	}

	for vid, entry := range t.entries {
		if claimed[vid] {
			continue
		}
		if entry.LastSeenMs < nowMs-t.cfg.ExpireMs {
			result.Expired = append(result.Expired, vid)
			delete(t.entries, vid)
		}
	}

	return result
}

// bestCandidate scans live entries in a stable order and returns the
// highest-scoring unclaimed, same-kind, non-rejected candidate for
// region. Ties keep the first (iteration-order) candidate found.
func (t *Tracker) bestCandidate(region visualtypes.DetectedRegion, claimed map[visualtypes.VID]bool) (candidate, bool) {
	var best candidate
	found := false

	for _, vid := range t.orderedVIDs() {
		if claimed[vid] {
			continue
		}
		entry := t.entries[vid]
		if entry.Kind != region.Kind {
			continue
		}

		d := visualtypes.Distance(entry.BBox, region.BBox)
		if d > t.cfg.BBoxDistanceThreshold {
			continue
		}
		s := fingerprint.Similarity(entry.Fingerprint, region.Fingerprint)
		if s < t.cfg.FingerprintSimilarityThreshold {
			continue
		}

		score := t.cfg.BBoxWeight*(1-d/t.cfg.BBoxDistanceThreshold) + (1-t.cfg.BBoxWeight)*s
		if !found || score > best.score {
			best = candidate{vid: vid, score: score}
			found = true
		}
	}

	return best, found
}

// orderedVIDs returns the minted-order sequence of live vids, giving
// the tie-break rule a stable, deterministic iteration order rather
// than Go's randomized map order.
func (t *Tracker) orderedVIDs() []visualtypes.VID {
	out := make([]visualtypes.VID, 0, len(t.entries))
	for n := uint64(1); n < t.nextNum; n++ {
		vid := visualtypes.NewVID(n)
		if _, ok := t.entries[vid]; ok {
			out = append(out, vid)
		}
	}
	return out
}

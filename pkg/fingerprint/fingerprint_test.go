package fingerprint

import (
	"testing"

	"github.com/meetsignal/visualdelta/pkg/visualtypes"
)

func TestGenerateDeterministic(t *testing.T) {
	bbox := visualtypes.BBox{X: 0.12, Y: 0.34, W: 0.5, H: 0.6}
	a := Generate(bbox, "")
	b := Generate(bbox, "")
	if a != b {
		t.Fatalf("expected deterministic output, got %q and %q", a, b)
	}
	if a != "POS:1356" {
		t.Fatalf("unexpected fingerprint %q", a)
	}
}

func TestGenerateWithColor(t *testing.T) {
	bbox := visualtypes.BBox{X: 0, Y: 0, W: 0.5, H: 0.5}
	got := Generate(bbox, "AABBCC")
	want := "POS:0055|CLR:aabbcc"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSimilarityEqualStrings(t *testing.T) {
	if s := Similarity("POS:1234", "POS:1234"); s != 1.0 {
		t.Fatalf("expected 1.0, got %v", s)
	}
}

func TestSimilarityEmptyString(t *testing.T) {
	if s := Similarity("", "POS:1234"); s != 0 {
		t.Fatalf("expected 0, got %v", s)
	}
	if s := Similarity("", ""); s != 0 {
		t.Fatalf("expected 0 for two empties, got %v", s)
	}
}

func TestSimilarityPositionOnly(t *testing.T) {
	a := "POS:0055"
	b := "POS:0155"
	got := Similarity(a, b)
	// position digits differ by 1 in one slot out of four: mean = (1 + 1 + 0.9 + 1)/4 = 0.975
	// color sub-score defaults to 0.5 since neither has CLR.
	want := 0.6*0.975 + 0.4*0.5
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSimilarityWithColor(t *testing.T) {
	a := "POS:0000|CLR:000000"
	b := "POS:0000|CLR:ffffff"
	got := Similarity(a, b)
	// position identical => 1.0, color maximally distant => 0.0
	want := 0.6*1.0 + 0.4*0.0
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSimilarityFallbackCharacterMatch(t *testing.T) {
	got := Similarity("abcd", "abef")
	want := 0.5 // 2 of 4 characters equal
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestContentHashDeterministic(t *testing.T) {
	a := ContentHash("slide one content")
	b := ContentHash("slide one content")
	if a != b {
		t.Fatalf("expected deterministic hash, got %q and %q", a, b)
	}
	if len(a) != 8 {
		t.Fatalf("expected 8 hex chars, got %q", a)
	}
}

func TestContentHashDiffers(t *testing.T) {
	a := ContentHash("slide one")
	b := ContentHash("slide two")
	if a == b {
		t.Fatalf("expected different hashes for different content")
	}
}

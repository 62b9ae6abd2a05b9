// Package fingerprint provides the pure, stateless primitives used by
// the continuity tracker to answer "is this the same region as
// before?" without ever touching biometrics: a position-bucket and
// average-color hash, a similarity score over that hash, and a
// deterministic content hash for opaque strings like slide content.
package fingerprint

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/meetsignal/visualdelta/pkg/visualtypes"
)

// Generate emits the position-bucket fingerprint for bbox, optionally
// suffixed with a color bucket when colorHex (a 6-hex-digit RGB string,
// no leading '#') is non-empty. Each coordinate is bucketed into one of
// 10 digits via floor(value*10), clamped to [0,9].
func Generate(bbox visualtypes.BBox, colorHex string) string {
	px := bucket(bbox.X)
	py := bucket(bbox.Y)
	pw := bucket(bbox.W)
	ph := bucket(bbox.H)

	s := fmt.Sprintf("POS:%d%d%d%d", px, py, pw, ph)
	if colorHex != "" {
		s += "|CLR:" + strings.ToLower(colorHex)
	}
	return s
}

func bucket(v float64) int {
	d := int(math.Floor(v * 10))
	if d < 0 {
		return 0
	}
	if d > 9 {
		return 9
	}
	return d
}

// Similarity scores how alike two fingerprints are, in [0,1]. Equal
// non-empty strings score 1.0; an empty string scores 0 against
// anything, including another empty string.
// When both strings carry the "POS:"/"|CLR:" shape, the score is a
// weighted blend of a position sub-score (mean of the four bucket
// digits' closeness) and a color sub-score (euclidean RGB closeness,
// or 0.5 when either side lacks a color). Anything else falls back to
// the fraction of character positions that agree.
func Similarity(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1.0
	}
	if a == "" || b == "" {
		return 0
	}

	if strings.HasPrefix(a, "POS:") && strings.HasPrefix(b, "POS:") {
		return positionalSimilarity(a, b)
	}

	return charSimilarity(a, b)
}

func positionalSimilarity(a, b string) float64 {
	aPos, aClr := splitFingerprint(a)
	bPos, bClr := splitFingerprint(b)

	posScore := positionScore(aPos, bPos)
	clrScore := colorScore(aClr, bClr)

	return 0.6*posScore + 0.4*clrScore
}

func splitFingerprint(s string) (pos string, clr string) {
	parts := strings.SplitN(s, "|", 2)
	pos = strings.TrimPrefix(parts[0], "POS:")
	if len(parts) == 2 {
		clr = strings.TrimPrefix(parts[1], "CLR:")
	}
	return pos, clr
}

func positionScore(a, b string) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		ad := digitAt(a, i)
		bd := digitAt(b, i)
		sum += 1 - math.Abs(float64(ad-bd))/10
	}
	return sum / float64(n)
}

func digitAt(s string, i int) int {
	if i >= len(s) {
		return 0
	}
	d, err := strconv.Atoi(string(s[i]))
	if err != nil {
		return 0
	}
	return d
}

func colorScore(a, b string) float64 {
	if a == "" || b == "" {
		return 0.5
	}
	ar, ag, ab, aok := parseHexColor(a)
	br, bg, bb, bok := parseHexColor(b)
	if !aok || !bok {
		return 0.5
	}
	dr := float64(ar) - float64(br)
	dg := float64(ag) - float64(bg)
	db := float64(ab) - float64(bb)
	dist := math.Sqrt(dr*dr + dg*dg + db*db)
	maxDist := math.Sqrt(3 * 255 * 255)
	return 1 - dist/maxDist
}

func parseHexColor(s string) (r, g, b int, ok bool) {
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	rv, err1 := strconv.ParseInt(s[0:2], 16, 32)
	gv, err2 := strconv.ParseInt(s[2:4], 16, 32)
	bv, err3 := strconv.ParseInt(s[4:6], 16, 32)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return int(rv), int(gv), int(bv), true
}

func charSimilarity(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}
	equal := 0
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		if a[i] == b[i] {
			equal++
		}
	}
	return float64(equal) / float64(maxLen)
}

// ContentHash computes a deterministic 32-bit rolling hash over s and
// renders it as 8 lowercase hex digits, left-padded with zeros.
func ContentHash(s string) string {
	var h uint32 = 2166136261 // FNV-1a-style seed, rolled manually below
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
		h = (h << 5) | (h >> 27) // roll
	}
	return fmt.Sprintf("%08x", h)
}

// Package visualtypes holds the fundamental data model shared by every
// visual-delta component: bounding boxes, region/layout enums, the
// VID continuity handle, and the VisualState world model.
package visualtypes

import (
	"fmt"
	"math"
)

// epsilon tolerates floating point slack at the frame edge.
const epsilon = 1e-6

// BBox is a rectangle normalized to [0,1] relative to the composite
// snapshot frame.
type BBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Valid reports whether the box satisfies w>0, h>0, x+w<=1+epsilon,
// y+h<=1+epsilon, and has no NaN/Inf components.
func (b BBox) Valid() bool {
	if math.IsNaN(b.X) || math.IsNaN(b.Y) || math.IsNaN(b.W) || math.IsNaN(b.H) {
		return false
	}
	if math.IsInf(b.X, 0) || math.IsInf(b.Y, 0) || math.IsInf(b.W, 0) || math.IsInf(b.H, 0) {
		return false
	}
	if b.W <= 0 || b.H <= 0 {
		return false
	}
	if b.X+b.W > 1+epsilon || b.Y+b.H > 1+epsilon {
		return false
	}
	return true
}

// Center returns the center point of the box.
func (b BBox) Center() (x, y float64) {
	return b.X + b.W/2, b.Y + b.H/2
}

// Distance returns the euclidean distance between the centers of two boxes.
func Distance(a, b BBox) float64 {
	ax, ay := a.Center()
	bx, by := b.Center()
	dx := ax - bx
	dy := ay - by
	return math.Sqrt(dx*dx + dy*dy)
}

func (b BBox) String() string {
	return fmt.Sprintf("BBox{x=%.3f,y=%.3f,w=%.3f,h=%.3f}", b.X, b.Y, b.W, b.H)
}

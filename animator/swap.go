// ABOUTME: Two-phase arc swap: each target detours through its own intermediate point.
// ABOUTME: The offset grows until the paths keep the targets from overlapping.
package animator

import (
	"math"
	"time"

	"github.com/2389-research/ducksort/animation"
)

const (
	swapLift       = 50   // intermediate points sit this far above the higher target
	swapMargin     = 20   // added to the mean size for the base detour
	swapOffsetGain = 1.2  // base offset relative to the safe distance
	swapGrowth     = 1.25 // offset growth per clearance retry
	swapMaxOffset  = 16   // offset ceiling relative to the safe distance
	swapMinGain    = 0.5  // growth stops once a retry gains less clearance than this
)

// Arc is a precomputed swap path. Phase one (t < 0.5) moves each target from
// its start to its own intermediate point, phase two continues to the other
// target's start.
type Arc struct {
	Start1, Start2 Point
	Mid1, Mid2     Point
}

// SwapArc computes the swap path for two targets of the given sizes.
//
// Horizontally separated pairs split vertically (first above, second below),
// vertically separated pairs split horizontally. If the base detour would let
// the targets come closer than their mean size the offset is grown until it
// does not; typical row layouts keep the base geometry. Targets that already
// start closer than their mean size only need to keep that distance, and the
// offset stops growing once it no longer buys clearance.
func SwapArc(p1, p2 Point, s1, s2 float64) Arc {
	mid := Point{(p1.X + p2.X) / 2, math.Min(p1.Y, p2.Y) - swapLift}
	safe := (s1+s2)/2 + swapMargin
	offset := safe * swapOffsetGain
	need := math.Min((s1+s2)/2, p1.Dist(p2))
	horizontal := math.Abs(p2.X-p1.X) > math.Abs(p2.Y-p1.Y)

	arc := Arc{Start1: p1, Start2: p2}
	prev := math.Inf(-1)
	for {
		if horizontal {
			arc.Mid1 = Point{mid.X, mid.Y - offset/2}
			arc.Mid2 = Point{mid.X, mid.Y + offset/2}
		} else {
			arc.Mid1 = Point{mid.X - offset, mid.Y}
			arc.Mid2 = Point{mid.X + offset, mid.Y}
		}
		cl := arc.Clearance()
		if cl >= need || cl-prev < swapMinGain || offset*swapGrowth > safe*swapMaxOffset {
			return arc
		}
		prev = cl
		offset *= swapGrowth
	}
}

// At returns both positions at fraction t.
func (a Arc) At(t float64) (Point, Point) {
	if t >= 1 {
		return a.Start2, a.Start1
	}
	if t < 0.5 {
		u := t * 2
		return Lerp(a.Start1, a.Mid1, u), Lerp(a.Start2, a.Mid2, u)
	}
	u := (t - 0.5) * 2
	return Lerp(a.Mid1, a.Start2, u), Lerp(a.Mid2, a.Start1, u)
}

// Clearance returns the minimum distance between the two targets over the
// whole path. Both targets move linearly within a phase, so the separation
// vector sweeps a segment and the minimum is exact.
func (a Arc) Clearance() float64 {
	v0 := a.Start1.Sub(a.Start2)
	v1 := a.Mid1.Sub(a.Mid2)
	v2 := a.Start2.Sub(a.Start1)
	return math.Min(segmentDistance(v0, v1), segmentDistance(v1, v2))
}

// Swap exchanges the positions of two targets along an arc. The arc is
// computed from their positions when the animation starts.
func Swap(t1, t2 Positionable, d time.Duration) *animation.Animation {
	a := animation.New(animation.KindSwap, d)
	var arc Arc
	a.OnStart = func() {
		arc = SwapArc(t1.Position(), t2.Position(), t1.Size(), t2.Size())
	}
	a.OnProgress = func(f float64) {
		p1, p2 := arc.At(f)
		t1.MoveTo(p1)
		t2.MoveTo(p2)
	}
	return a
}

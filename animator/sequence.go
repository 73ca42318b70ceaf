// ABOUTME: Composite sequences built from the primitive builders.
// ABOUTME: ComparePair is the mother's walk-point-highlight-nod routine for one comparison.
package animator

import (
	"math"
	"time"

	"github.com/2389-research/ducksort/animation"
)

// Fractions of the total compare duration given to each part.
const (
	compareWalkShare   = 0.3
	comparePointShare  = 0.2
	compareHiliteShare = 0.2
	compareNodShare    = 0.3
)

const (
	motherCompareY     = 100 // mother's standing height while comparing
	motherEdgeMargin   = 20  // added to half the mother's size
	farApartThreshold  = 400
	farApartHalfWindow = 300
)

// CompareStation returns where the mother stands to compare t1 and t2: above
// their midpoint, inside the canvas, and near the center when they are far apart.
func CompareStation(mother, t1, t2 Positionable, bounds Bounds) Point {
	p1, p2 := t1.Position(), t2.Position()
	p := bounds.Clamp(Point{(p1.X + p2.X) / 2, motherCompareY}, mother.Size()/2+motherEdgeMargin)
	if math.Abs(p1.X-p2.X) > farApartThreshold {
		c := bounds.Width / 2
		p.X = math.Max(c-farApartHalfWindow, math.Min(c+farApartHalfWindow, p.X))
	}
	return p
}

// ComparePair returns the comparison routine in play order: walk to the
// station, point at the first target, highlight each target, nod.
func ComparePair(mother, t1, t2 Positionable, bounds Bounds, total time.Duration) []*animation.Animation {
	share := func(f float64) time.Duration { return time.Duration(math.Round(float64(total) * f)) }

	station := func() Point { return CompareStation(mother, t1, t2, bounds) }

	return []*animation.Animation{
		walk(mother, station, bounds, share(compareWalkShare)),
		PointTo(mother, t1, share(comparePointShare)),
		Highlight(t1, share(compareHiliteShare)),
		Highlight(t2, share(compareHiliteShare)),
		Nod(mother, share(compareNodShare)),
	}
}

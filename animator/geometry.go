// ABOUTME: 2D points and canvas bounds used by the animation builders.
// ABOUTME: Bounds clamp positions so animated targets never leave the canvas.
package animator

import "math"

// Point is a position on the canvas.
type Point struct {
	X, Y float64
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Len returns the Euclidean length of p as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float64 { return p.Sub(q).Len() }

// Lerp interpolates from p to q by t in [0,1].
func Lerp(p, q Point, t float64) Point {
	if t >= 1 {
		return q
	}
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Bounds is the drawable canvas area, anchored at the origin.
type Bounds struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DefaultBounds is the canvas the pond is laid out on.
var DefaultBounds = Bounds{Width: 1000, Height: 400}

// Clamp keeps p at least margin away from every edge. When the canvas is
// narrower than two margins the coordinate collapses to the center.
func (b Bounds) Clamp(p Point, margin float64) Point {
	return Point{
		X: clampAxis(p.X, margin, b.Width-margin),
		Y: clampAxis(p.Y, margin, b.Height-margin),
	}
}

// Center returns the middle of the canvas.
func (b Bounds) Center() Point { return Point{b.Width / 2, b.Height / 2} }

func clampAxis(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	return math.Max(lo, math.Min(hi, v))
}

// segmentDistance returns the distance from the origin to the segment a→b.
func segmentDistance(a, b Point) float64 {
	d := b.Sub(a)
	l2 := d.X*d.X + d.Y*d.Y
	if l2 == 0 {
		return a.Len()
	}
	t := -(a.X*d.X + a.Y*d.Y) / l2
	t = math.Max(0, math.Min(1, t))
	return Lerp(a, b, t).Len()
}

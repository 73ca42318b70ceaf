// ABOUTME: Mother-duck gestures: walk with wobble, point, nod, and celebrate.
// ABOUTME: Every gesture keeps the mother inside the canvas margins.
package animator

import (
	"math"
	"time"

	"github.com/2389-research/ducksort/animation"
)

// GestureMargin keeps the mother's gestures away from the canvas edges.
const GestureMargin = 80

// WalkTo walks the mother to the destination with a small vertical wobble.
func WalkTo(mother Positionable, to Point, bounds Bounds, d time.Duration) *animation.Animation {
	return walk(mother, func() Point { return to }, bounds, d)
}

// walk resolves its destination when the animation starts.
func walk(mother Positionable, dest func() Point, bounds Bounds, d time.Duration) *animation.Animation {
	a := animation.New(animation.KindCustom, d)
	a.Label = "walk"
	var start, target Point
	a.OnStart = func() {
		start = mother.Position()
		target = bounds.Clamp(dest(), GestureMargin)
	}
	a.OnProgress = func(f float64) {
		p := Lerp(start, target, f)
		if f < 1 {
			p.Y += 2 * math.Sin(f*math.Pi*8)
		}
		mother.MoveTo(bounds.Clamp(p, GestureMargin))
	}
	return a
}

// PointTo has the mother gesture at target: she is highlighted from the
// halfway point until the gesture ends.
func PointTo(mother Positionable, target Positionable, d time.Duration) *animation.Animation {
	a := animation.New(animation.KindCustom, d)
	a.Label = "point"
	a.OnProgress = func(f float64) {
		if f > 0.5 {
			setHighlighted(mother, true)
		}
	}
	a.OnComplete = func() { setHighlighted(mother, false) }
	return a
}

// Nod dips the mother down and back up.
func Nod(mother Positionable, d time.Duration) *animation.Animation {
	a := animation.New(animation.KindCustom, d)
	a.Label = "nod"
	var start Point
	a.OnStart = func() { start = mother.Position() }
	a.OnProgress = func(f float64) {
		mother.MoveTo(Point{start.X, start.Y + 10*math.Sin(f*math.Pi)})
	}
	a.OnComplete = func() { mother.MoveTo(start) }
	return a
}

// Celebrate makes the mother jump twice with a side-to-side wobble, then
// returns her to where she started.
func Celebrate(mother Positionable, bounds Bounds, d time.Duration) *animation.Animation {
	a := animation.New(animation.KindCustom, d)
	a.Label = "celebrate"
	var start Point
	a.OnStart = func() { start = mother.Position() }
	a.OnProgress = func(f float64) {
		p := Point{
			X: start.X + 3*math.Sin(f*math.Pi*6),
			Y: start.Y - 20*math.Abs(math.Sin(f*math.Pi*2)),
		}
		mother.MoveTo(bounds.Clamp(p, GestureMargin))
	}
	a.OnComplete = func() { mother.MoveTo(bounds.Clamp(start, GestureMargin)) }
	return a
}

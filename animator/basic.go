// ABOUTME: Builders for single-target animations: move, highlight, compare, complete, and effects.
// ABOUTME: Start positions are read when the animation starts, not when it is built.
package animator

import (
	"math"
	"time"

	"github.com/2389-research/ducksort/animation"
)

// Move slides target in a straight line to the destination.
func Move(target Positionable, to Point, d time.Duration) *animation.Animation {
	a := animation.New(animation.KindMove, d)
	var from Point
	a.OnStart = func() { from = target.Position() }
	a.OnProgress = func(f float64) { target.MoveTo(Lerp(from, to, f)) }
	return a
}

// Highlight emphasizes target for the animation's duration. Targets that are
// not Highlightable still get a timed pause.
func Highlight(target any, d time.Duration) *animation.Animation {
	a := animation.New(animation.KindHighlight, d)
	a.OnStart = func() { setHighlighted(target, true) }
	a.OnComplete = func() { setHighlighted(target, false) }
	return a
}

// Compare marks both targets as being compared while it plays.
func Compare(t1, t2 any, d time.Duration) *animation.Animation {
	a := animation.New(animation.KindCompare, d)
	a.OnStart = func() {
		setComparing(t1, true)
		setComparing(t2, true)
	}
	a.OnComplete = func() {
		setComparing(t1, false)
		setComparing(t2, false)
	}
	return a
}

// Complete marks every target sorted and clears their transient flags.
func Complete[T any](targets []T, d time.Duration) *animation.Animation {
	a := animation.New(animation.KindComplete, d)
	a.OnStart = func() {
		for _, t := range targets {
			setHighlighted(t, false)
			setComparing(t, false)
			setSorted(t, true)
		}
	}
	return a
}

// Bounce hops target up and back down once.
func Bounce(target Positionable, height float64, d time.Duration) *animation.Animation {
	a := animation.New(animation.KindCustom, d)
	var start Point
	a.OnStart = func() { start = target.Position() }
	a.OnProgress = func(f float64) {
		target.MoveTo(Point{start.X, start.Y - height*math.Sin(f*math.Pi)})
	}
	a.OnComplete = func() { target.MoveTo(start) }
	return a
}

// Shake wiggles target horizontally twice and returns it to its start.
func Shake(target Positionable, intensity float64, d time.Duration) *animation.Animation {
	a := animation.New(animation.KindCustom, d)
	var start Point
	a.OnStart = func() { start = target.Position() }
	a.OnProgress = func(f float64) {
		target.MoveTo(Point{start.X + intensity*math.Sin(f*math.Pi*4), start.Y})
	}
	a.OnComplete = func() { target.MoveTo(start) }
	return a
}

// Pulse grows and shrinks a Resizable target around its original size.
// Other targets are highlighted instead.
func Pulse(target Positionable, scale float64, d time.Duration) *animation.Animation {
	r, ok := target.(Resizable)
	if !ok {
		return Highlight(target, d)
	}
	a := animation.New(animation.KindHighlight, d)
	var size float64
	a.OnStart = func() { size = target.Size() }
	a.OnProgress = func(f float64) {
		r.SetSize(size * (1 + (scale-1)*math.Sin(f*math.Pi)))
	}
	a.OnComplete = func() { r.SetSize(size) }
	return a
}

// SequentialHighlight returns one highlight per target, to be enqueued in order.
func SequentialHighlight[T any](targets []T, each time.Duration) []*animation.Animation {
	out := make([]*animation.Animation, 0, len(targets))
	for _, t := range targets {
		out = append(out, Highlight(t, each))
	}
	return out
}

// ABOUTME: A single timed transition with start, progress, and completion callbacks.
// ABOUTME: Driven purely by elapsed time; holds no reference to anything it animates.
package animation

import (
	"fmt"
	"time"
)

// MinDuration is the floor applied to every animation duration. It keeps
// progress math away from division by zero and instant-complete races.
const MinDuration = 100 * time.Millisecond

// Kind classifies an animation for logging and inspection.
type Kind int

const (
	KindMove Kind = iota
	KindSwap
	KindHighlight
	KindCompare
	KindComplete
	KindCustom
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindSwap:
		return "swap"
	case KindHighlight:
		return "highlight"
	case KindCompare:
		return "compare"
	case KindComplete:
		return "complete"
	case KindCustom:
		return "custom"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Animation is a timed transition. OnProgress receives a non-decreasing
// fraction in [0,1]; OnComplete fires exactly once after the fraction reaches
// 1.0 or the animation is finished early with Finish.
//
// An Animation is owned by its creator until it is enqueued, and by the
// engine's loop afterwards. It is not safe for concurrent use.
type Animation struct {
	Kind     Kind
	Label    string // optional, used in log lines
	Duration time.Duration

	OnStart    func()
	OnProgress func(fraction float64)
	OnComplete func()

	startTime time.Time
	started   bool
	progress  float64
	completed bool
	finalized bool // OnComplete has fired
}

// New creates an animation of the given kind and duration. The duration is
// clamped to MinDuration.
func New(kind Kind, duration time.Duration) *Animation {
	a := &Animation{Kind: kind}
	a.SetDuration(duration)
	return a
}

// SetDuration sets the duration, clamped to MinDuration.
func (a *Animation) SetDuration(d time.Duration) {
	if d < MinDuration {
		d = MinDuration
	}
	a.Duration = d
}

// Start stamps the activation time, clears completion, and fires OnStart.
func (a *Animation) Start(now time.Time) {
	a.startTime = now
	a.started = true
	a.progress = 0
	a.completed = false
	a.finalized = false
	if a.OnStart != nil {
		a.OnStart()
	}
}

// Update advances the animation to the given time and reports whether it has
// completed. Calling Update on a completed animation is a no-op returning true.
func (a *Animation) Update(now time.Time) bool {
	if a.completed {
		return true
	}
	if !a.started {
		a.Start(now)
	}

	duration := a.Duration
	if duration < MinDuration {
		duration = MinDuration
	}
	p := float64(now.Sub(a.startTime)) / float64(duration)
	if p > 1 {
		p = 1
	}
	if p < a.progress {
		p = a.progress
	}
	a.progress = p

	if a.OnProgress != nil {
		a.OnProgress(p)
	}
	if p >= 1 {
		a.complete()
		return true
	}
	return false
}

// Finish force-finalizes the animation: progress jumps to 1.0 and OnComplete
// fires if it has not already.
func (a *Animation) Finish() {
	if a.completed {
		return
	}
	a.progress = 1
	if a.OnProgress != nil {
		a.OnProgress(1)
	}
	a.complete()
}

func (a *Animation) complete() {
	a.completed = true
	if a.finalized {
		return
	}
	a.finalized = true
	if a.OnComplete != nil {
		a.OnComplete()
	}
}

// Progress returns the last reported fraction.
func (a *Animation) Progress() float64 { return a.progress }

// IsCompleted reports whether the animation has finished.
func (a *Animation) IsCompleted() bool { return a.completed }

// StartTime returns the activation time, or the zero time before Start.
func (a *Animation) StartTime() time.Time { return a.startTime }

// String describes the animation for log lines.
func (a *Animation) String() string {
	if a.Label != "" {
		return fmt.Sprintf("%s(%s, %s)", a.Kind, a.Label, a.Duration)
	}
	return fmt.Sprintf("%s(%s)", a.Kind, a.Duration)
}

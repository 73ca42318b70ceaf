// ABOUTME: Sort-animation integration: lets exactly one sort step proceed per drained animation batch.
// ABOUTME: Joins the host loop and the engine goroutine through an atomic gate and the engine queue.
package sortanim

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/2389-research/ducksort/animation"
	"github.com/2389-research/ducksort/animator"
	"github.com/2389-research/ducksort/sorting"
)

// ErrIndexOutOfRange is returned for a target index the integration does not hold.
var ErrIndexOutOfRange = errors.New("sortanim: target index out of range")

// ErrStepPanicked wraps a panic raised while the source was stepping.
var ErrStepPanicked = errors.New("sortanim: step panicked")

// StepSource is an algorithm that advances one observable step at a time.
type StepSource interface {
	Step() (bool, error)
	IsCompleted() bool
	Reset()
	Pause()
	Resume()
	IsPaused() bool
	SetCallbacks(sorting.Callbacks)
	Progress() float64
	Comparisons() int
	Swaps() int
	Len() int
}

// Scheduler runs fn on the host loop after d. Implementations must not run
// fn on the calling goroutine.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// Effects selects which step kinds produce animations.
type Effects struct {
	Compare  bool
	Swap     bool
	Complete bool
}

// AllEffects enables every animation.
func AllEffects() Effects { return Effects{Compare: true, Swap: true, Complete: true} }

// Config holds protocol timing, animation lengths, and dependencies.
type Config struct {
	StepDelay         time.Duration // drain to next step (default 10ms)
	RetryDelay        time.Duration // wait after a step that produced no animation (default 50ms)
	CompareDuration   time.Duration // whole comparison routine (default 1.5s)
	SwapDuration      time.Duration // default 1s
	CompleteDuration  time.Duration // default 2s
	CelebrateDuration time.Duration // default 2s
	Bounds            animator.Bounds
	Logger            animation.Logger
}

// DefaultConfig returns the protocol defaults on the default canvas.
func DefaultConfig() Config {
	return Config{
		StepDelay:         10 * time.Millisecond,
		RetryDelay:        50 * time.Millisecond,
		CompareDuration:   1500 * time.Millisecond,
		SwapDuration:      time.Second,
		CompleteDuration:  2 * time.Second,
		CelebrateDuration: 2 * time.Second,
		Bounds:            animator.DefaultBounds,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.StepDelay <= 0 {
		c.StepDelay = d.StepDelay
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.CompareDuration <= 0 {
		c.CompareDuration = d.CompareDuration
	}
	if c.SwapDuration <= 0 {
		c.SwapDuration = d.SwapDuration
	}
	if c.CompleteDuration <= 0 {
		c.CompleteDuration = d.CompleteDuration
	}
	if c.CelebrateDuration <= 0 {
		c.CelebrateDuration = d.CelebrateDuration
	}
	if c.Bounds.Width <= 0 || c.Bounds.Height <= 0 {
		c.Bounds = d.Bounds
	}
	return c
}

// Stats summarizes a run.
type Stats struct {
	Comparisons int
	Swaps       int
	Progress    float64
	Steps       int // steps that did work
	Retries     int // steps that produced no animation
	Running     bool
	Animating   bool
	Completed   bool
	Finished    bool // the completion sequence has played out
	Engine      animation.Status
}

// Integration drives a StepSource through an animation Engine. All methods
// except the engine callback are meant to be called on the host loop.
type Integration struct {
	cfg      Config
	log      animation.Logger
	source   StepSource
	engine   *animation.Engine
	sched    Scheduler
	watchdog *Watchdog

	animating atomic.Bool // a step is claimed and its batch has not drained
	running   atomic.Bool // steps are requested automatically after each drain
	gen       atomic.Uint64 // bumped by Start and Stop; stale deferred calls compare against it

	mu               sync.Mutex
	targets          []animator.Positionable // aligned with the source order
	initial          []animator.Positionable
	homes            []animator.Point
	mother           animator.Positionable
	motherHome       animator.Point
	effects          Effects
	batch            []*animation.Animation
	started          bool
	completionQueued bool
	finished         bool
	steps            int
	retries          int
	onFinished       func(Stats)
}

// New wires source and engine together. It takes over the source's and the
// engine's callbacks. targets must be in the source's order; mother may be nil.
func New(source StepSource, engine *animation.Engine, sched Scheduler, targets []animator.Positionable, mother animator.Positionable, cfg Config) *Integration {
	cfg = cfg.withDefaults()
	i := &Integration{
		cfg:     cfg,
		log:     animation.OrDiscard(cfg.Logger),
		source:  source,
		engine:  engine,
		sched:   sched,
		mother:  mother,
		effects: AllEffects(),
	}
	i.setTargetsLocked(targets)
	if mother != nil {
		i.motherHome = mother.Position()
	}
	if n := source.Len(); n != len(targets) {
		i.log.Printf("sortanim target mismatch targets=%d source=%d", len(targets), n)
	}

	source.SetCallbacks(sorting.Callbacks{
		OnCompare:  i.onCompare,
		OnSwap:     i.onSwap,
		OnComplete: i.onComplete,
	})
	engine.SetCallbacks(animation.Callbacks{OnQueueEmpty: i.handleQueueEmpty})
	return i
}

func (i *Integration) setTargetsLocked(targets []animator.Positionable) {
	i.initial = slices.Clone(targets)
	i.targets = slices.Clone(targets)
	i.homes = make([]animator.Point, len(targets))
	for k, t := range targets {
		i.homes[k] = t.Position()
	}
}

// SetWatchdog attaches a stall watchdog that is told about every claimed step.
func (i *Integration) SetWatchdog(w *Watchdog) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.watchdog = w
}

// OnFinished registers a hook called on the host loop once the completion
// sequence of a run has played out.
func (i *Integration) OnFinished(fn func(Stats)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.onFinished = fn
}

// Start resets the source and targets and begins automatic stepping.
func (i *Integration) Start() {
	i.prepare()
	i.running.Store(true)
	i.engine.Play()
	i.log.Printf("sortanim start targets=%d", i.Len())
	i.RequestStep()
}

// prepare drops any animation from a previous run and rewinds everything.
func (i *Integration) prepare() {
	i.running.Store(false)
	i.engine.Stop()
	i.gen.Add(1)
	i.source.Reset()
	i.resetTargets()
	i.animating.Store(false)
	i.releaseWatchdog()

	i.mu.Lock()
	i.started = true
	i.completionQueued = false
	i.finished = false
	i.steps, i.retries = 0, 0
	i.batch = nil
	i.mu.Unlock()
}

// RequestStep performs one step if none is in flight. Safe to call at any
// time; redundant calls and calls outside a run are no-ops.
func (i *Integration) RequestStep() {
	i.mu.Lock()
	started := i.started
	i.mu.Unlock()
	if !started || i.source.IsCompleted() || i.source.IsPaused() {
		return
	}
	if !i.animating.CompareAndSwap(false, true) {
		return
	}

	worked, err := i.step()
	batch := i.takeBatch()
	if err != nil {
		i.log.Printf("sortanim step failed err=%v", err)
		i.animating.Store(false)
		return
	}

	if !worked {
		i.animating.Store(false)
		if len(batch) > 0 {
			i.engine.EnqueueAll(batch)
			i.playIfNeeded()
		} else if i.source.IsCompleted() {
			i.finish()
		}
		return
	}

	i.mu.Lock()
	i.steps++
	step := i.steps
	if len(batch) == 0 {
		i.retries++
	}
	w := i.watchdog
	i.mu.Unlock()

	if len(batch) == 0 {
		i.animating.Store(false)
		// Manual steps do not chain; the next StepOnce moves on.
		if i.running.Load() {
			i.scheduleStep(i.cfg.RetryDelay)
		}
		return
	}
	if w != nil {
		w.StepClaimed(step)
	}
	i.engine.EnqueueAll(batch)
	i.playIfNeeded()
}

// step runs one source step. A panic inside the source or its callbacks
// becomes an error so the gate is always released.
func (i *Integration) step() (worked bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			worked, err = false, fmt.Errorf("%w: %v", ErrStepPanicked, r)
		}
	}()
	return i.source.Step()
}

// scheduleStep requests a step on the host loop after d, unless the run is
// stopped, restarted, or switched to manual stepping in the meantime.
func (i *Integration) scheduleStep(d time.Duration) {
	gen := i.gen.Load()
	i.sched.After(d, func() {
		if i.gen.Load() != gen || !i.running.Load() {
			return
		}
		i.RequestStep()
	})
}

// StepOnce switches to manual stepping and performs a single step.
func (i *Integration) StepOnce() {
	if i.source.IsCompleted() {
		return
	}
	i.mu.Lock()
	started := i.started
	i.mu.Unlock()
	if !started {
		i.prepare()
	}
	i.running.Store(false)
	i.source.Resume()
	i.engine.Resume()
	i.RequestStep()
}

// Pause suspends both the animations and the stepping.
func (i *Integration) Pause() {
	i.engine.Pause()
	i.source.Pause()
}

// Resume continues after Pause or manual stepping. If no step is in flight
// a new one is requested.
func (i *Integration) Resume() {
	i.mu.Lock()
	started := i.started
	i.mu.Unlock()
	if !started {
		return
	}
	i.source.Resume()
	i.engine.Resume()
	if i.source.IsCompleted() {
		return
	}
	i.running.Store(true)
	if !i.animating.Load() {
		i.scheduleStep(i.cfg.StepDelay)
	}
}

// Stop halts everything and returns the targets to their starting slots.
func (i *Integration) Stop() {
	i.running.Store(false)
	i.engine.Stop()
	i.gen.Add(1)
	i.source.Reset()
	i.resetTargets()
	i.animating.Store(false)
	i.releaseWatchdog()

	i.mu.Lock()
	i.started = false
	i.completionQueued = false
	i.finished = false
	i.batch = nil
	i.mu.Unlock()
	i.log.Printf("sortanim stop")
}

// SetSpeed sets the speed multiplier for animations enqueued from now on.
func (i *Integration) SetSpeed(multiplier float64) { i.engine.SetSpeed(multiplier) }

// SetEffects selects which step kinds are animated.
func (i *Integration) SetEffects(e Effects) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.effects = e
}

// Effects returns the current effect selection.
func (i *Integration) Effects() Effects {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.effects
}

// EnableAnimations turns every effect on or off.
func (i *Integration) EnableAnimations(on bool) {
	i.SetEffects(Effects{Compare: on, Swap: on, Complete: on})
}

// HighlightDuck plays a highlight on the target currently at slot k.
func (i *Integration) HighlightDuck(k int, d time.Duration) error {
	t, err := i.target(k)
	if err != nil {
		return fmt.Errorf("highlight duck: %w", err)
	}
	i.EnqueueCustom(animator.Highlight(t, d))
	return nil
}

// HighlightRange highlights slots lo through hi inclusive, one after another.
func (i *Integration) HighlightRange(lo, hi int, each time.Duration) error {
	i.mu.Lock()
	if lo < 0 || hi >= len(i.targets) || lo > hi {
		n := len(i.targets)
		i.mu.Unlock()
		return fmt.Errorf("highlight range %d..%d of %d: %w", lo, hi, n, ErrIndexOutOfRange)
	}
	span := slices.Clone(i.targets[lo : hi+1])
	i.mu.Unlock()
	i.EnqueueCustom(animator.SequentialHighlight(span, each)...)
	return nil
}

// EnqueueCustom plays arbitrary animations through the shared engine queue.
func (i *Integration) EnqueueCustom(anims ...*animation.Animation) {
	if len(anims) == 0 {
		return
	}
	i.engine.EnqueueAll(anims)
	i.playIfNeeded()
}

// Targets returns the targets in current source order.
func (i *Integration) Targets() []animator.Positionable {
	i.mu.Lock()
	defer i.mu.Unlock()
	return slices.Clone(i.targets)
}

// Len returns the number of targets.
func (i *Integration) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.targets)
}

// IsAnimating reports whether a step's animations are still in flight.
func (i *Integration) IsAnimating() bool { return i.animating.Load() }

// IsRunning reports whether steps are requested automatically.
func (i *Integration) IsRunning() bool { return i.running.Load() }

// Stats returns the current run statistics.
func (i *Integration) Stats() Stats {
	i.mu.Lock()
	steps, retries, finished := i.steps, i.retries, i.finished
	i.mu.Unlock()
	return Stats{
		Comparisons: i.source.Comparisons(),
		Swaps:       i.source.Swaps(),
		Progress:    i.source.Progress(),
		Steps:       steps,
		Retries:     retries,
		Running:     i.running.Load(),
		Animating:   i.animating.Load(),
		Completed:   i.source.IsCompleted(),
		Finished:    finished,
		Engine:      i.engine.Status(),
	}
}

// handleQueueEmpty runs on the engine goroutine. It only releases the gate
// and defers everything else to the host loop.
func (i *Integration) handleQueueEmpty() {
	gen := i.gen.Load()
	i.animating.Store(false)
	i.releaseWatchdog()

	if i.source.IsCompleted() {
		i.mu.Lock()
		queued := i.completionQueued
		i.mu.Unlock()
		if queued {
			i.sched.After(0, func() {
				if i.gen.Load() == gen {
					i.finish()
				}
			})
		}
		return
	}
	if i.running.Load() {
		i.scheduleStep(i.cfg.StepDelay)
	}
}

func (i *Integration) finish() {
	i.mu.Lock()
	if i.finished || !i.started || !i.source.IsCompleted() {
		i.mu.Unlock()
		return
	}
	i.finished = true
	fn := i.onFinished
	i.mu.Unlock()

	i.running.Store(false)
	st := i.Stats()
	i.log.Printf("sortanim finished comparisons=%d swaps=%d steps=%d retries=%d",
		st.Comparisons, st.Swaps, st.Steps, st.Retries)
	if fn != nil {
		fn(st)
	}
}

func (i *Integration) onCompare(a, b int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.effects.Compare {
		return
	}
	ta, tb, ok := i.pairLocked(a, b)
	if !ok {
		return
	}
	if i.mother == nil {
		i.batch = append(i.batch, animator.Compare(ta, tb, i.cfg.CompareDuration))
		return
	}
	i.batch = append(i.batch, animator.ComparePair(i.mother, ta, tb, i.cfg.Bounds, i.cfg.CompareDuration)...)
}

func (i *Integration) onSwap(a, b int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	ta, tb, ok := i.pairLocked(a, b)
	if !ok {
		return
	}
	if i.effects.Swap {
		i.batch = append(i.batch, animator.Swap(ta, tb, i.cfg.SwapDuration))
	} else {
		pa, pb := ta.Position(), tb.Position()
		ta.MoveTo(pb)
		tb.MoveTo(pa)
	}
	i.targets[a], i.targets[b] = tb, ta
}

func (i *Integration) onComplete() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.completionQueued {
		return
	}
	i.completionQueued = true
	if !i.effects.Complete {
		return
	}
	i.batch = append(i.batch, animator.Complete(slices.Clone(i.targets), i.cfg.CompleteDuration))
	if i.mother != nil {
		i.batch = append(i.batch, animator.Celebrate(i.mother, i.cfg.Bounds, i.cfg.CelebrateDuration))
	}
}

func (i *Integration) pairLocked(a, b int) (animator.Positionable, animator.Positionable, bool) {
	n := len(i.targets)
	if a < 0 || b < 0 || a >= n || b >= n {
		i.log.Printf("sortanim index out of range i=%d j=%d targets=%d", a, b, n)
		return nil, nil, false
	}
	return i.targets[a], i.targets[b], true
}

func (i *Integration) target(k int) (animator.Positionable, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if k < 0 || k >= len(i.targets) {
		return nil, fmt.Errorf("index %d of %d: %w", k, len(i.targets), ErrIndexOutOfRange)
	}
	return i.targets[k], nil
}

func (i *Integration) takeBatch() []*animation.Animation {
	i.mu.Lock()
	defer i.mu.Unlock()
	b := i.batch
	i.batch = nil
	return b
}

func (i *Integration) playIfNeeded() {
	if !i.engine.IsPlaying() {
		i.engine.Play()
	}
}

func (i *Integration) releaseWatchdog() {
	i.mu.Lock()
	w := i.watchdog
	i.mu.Unlock()
	if w != nil {
		w.StepReleased()
	}
}

func (i *Integration) resetTargets() {
	i.mu.Lock()
	i.targets = slices.Clone(i.initial)
	targets, homes := i.initial, i.homes
	mother, motherHome := i.mother, i.motherHome
	i.mu.Unlock()

	for k, t := range targets {
		resetTarget(t, homes[k])
	}
	if mother != nil {
		resetTarget(mother, motherHome)
	}
}

type resettable interface{ Reset() }

func resetTarget(t animator.Positionable, home animator.Point) {
	if r, ok := t.(resettable); ok {
		r.Reset()
		return
	}
	t.MoveTo(home)
	if h, ok := t.(animator.Highlightable); ok {
		h.SetHighlighted(false)
	}
	if c, ok := t.(animator.Comparable); ok {
		c.SetComparing(false)
	}
	if s, ok := t.(animator.Sortable); ok {
		s.SetSorted(false)
	}
}

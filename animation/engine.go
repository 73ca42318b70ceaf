// ABOUTME: Animation engine that plays a FIFO queue of animations one at a time on its own goroutine.
// ABOUTME: Exposes play/pause/resume/stop/speed controls and start, complete, and queue-empty callbacks.
package animation

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"
)

// State is the engine's playback state.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
	StateStopped
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MinSpeed is the lowest accepted speed multiplier.
const MinSpeed = 0.1

// Callbacks are the engine lifecycle hooks. They run on the engine's loop
// goroutine, outside the engine lock, so they may call back into the engine.
// A panicking callback is recovered and logged.
type Callbacks struct {
	OnAnimationStart    func(*Animation)
	OnAnimationComplete func(*Animation)
	OnQueueEmpty        func()
}

// Config holds engine timing and dependencies. Zero values take defaults.
type Config struct {
	Tick        time.Duration // scheduling tick (default 16ms)
	IdleGrace   time.Duration // wait for new work before the loop exits (default 50ms)
	PausePoll   time.Duration // re-check interval while paused (default 100ms)
	StopTimeout time.Duration // bounded wait for the loop to exit in Stop (default 500ms)
	Time        TimeSource    // nil = SystemTime
	Logger      Logger        // nil = discard
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Tick:        16 * time.Millisecond,
		IdleGrace:   50 * time.Millisecond,
		PausePoll:   100 * time.Millisecond,
		StopTimeout: 500 * time.Millisecond,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Tick <= 0 {
		c.Tick = d.Tick
	}
	if c.IdleGrace <= 0 {
		c.IdleGrace = d.IdleGrace
	}
	if c.PausePoll <= 0 {
		c.PausePoll = d.PausePoll
	}
	if c.StopTimeout <= 0 {
		c.StopTimeout = d.StopTimeout
	}
	return c
}

// Status is a point-in-time view of the engine for display.
type Status struct {
	State       State
	QueueLength int
	Current     string // description of the playing animation, empty if none
	Speed       float64
	LoopRunning bool
}

// loop identifies one run of the scheduling goroutine. A loop only mutates
// engine state while it is still the engine's current loop.
type loop struct {
	stop chan struct{}
	done chan struct{}
}

type tickResult int

const (
	tickBusy tickResult = iota
	tickIdle
	tickPaused
	tickExit
)

// Engine owns the animation queue and the single active-animation slot.
type Engine struct {
	cfg   Config
	log   Logger
	clock *Clock
	wake  chan struct{}

	mu         sync.Mutex
	state      State
	queue      []*Animation
	current    *Animation
	speed      float64
	sinceDrain int // animations finished since the last queue-empty notification
	skip       bool
	loop       *loop
	callbacks  Callbacks
}

// NewEngine creates an idle engine. No goroutine runs until Play.
func NewEngine(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:   cfg,
		log:   OrDiscard(cfg.Logger),
		clock: NewClock(cfg.Time),
		wake:  make(chan struct{}, 1),
		state: StateIdle,
		speed: 1,
	}
}

// SetCallbacks replaces the lifecycle callbacks.
func (e *Engine) SetCallbacks(cb Callbacks) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callbacks = cb
}

// Clock returns the engine's pausable clock.
func (e *Engine) Clock() *Clock { return e.clock }

// Enqueue appends an animation. Its duration is divided by the current speed
// multiplier now; later speed changes do not affect it.
func (e *Engine) Enqueue(a *Animation) {
	if a == nil {
		return
	}
	e.mu.Lock()
	a.SetDuration(scaleDuration(a.Duration, e.speed))
	e.queue = append(e.queue, a)
	e.mu.Unlock()
	e.signal()
}

// EnqueueAll appends a batch under one lock, so the loop never sees a
// partially enqueued batch.
func (e *Engine) EnqueueAll(batch []*Animation) {
	e.mu.Lock()
	n := 0
	for _, a := range batch {
		if a == nil {
			continue
		}
		a.SetDuration(scaleDuration(a.Duration, e.speed))
		e.queue = append(e.queue, a)
		n++
	}
	e.mu.Unlock()
	if n > 0 {
		e.signal()
	}
}

// EnqueueFront inserts an animation at the head of the queue.
func (e *Engine) EnqueueFront(a *Animation) {
	if a == nil {
		return
	}
	e.mu.Lock()
	a.SetDuration(scaleDuration(a.Duration, e.speed))
	e.queue = append([]*Animation{a}, e.queue...)
	e.mu.Unlock()
	e.signal()
}

// ClearQueue drops every pending animation. The current animation keeps playing.
func (e *Engine) ClearQueue() {
	e.mu.Lock()
	defer e.mu.Unlock()
	clear(e.queue)
	e.queue = e.queue[:0]
}

// Play starts playback. When the scheduling loop is alive only the state
// changes, so Play is safe to call from engine callbacks. When the loop has
// exited a new one is started; queued work is never dropped.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StatePaused {
		e.clock.Resume()
	}
	e.state = StatePlaying
	if e.loop != nil {
		e.signal()
		return
	}
	e.startLoopLocked()
}

// Pause suspends playback. Animation time stops with it.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePlaying {
		return
	}
	e.state = StatePaused
	e.clock.Pause()
}

// Resume continues playback after Pause.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StatePaused {
		return
	}
	e.clock.Resume()
	e.state = StatePlaying
	if e.loop == nil {
		e.startLoopLocked()
		return
	}
	e.signal()
}

// Stop halts the loop, drops the current animation and the queue, and waits
// up to Config.StopTimeout for the loop goroutine to exit. Stop is idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.state == StatePaused {
		e.clock.Resume()
	}
	e.state = StateStopped
	e.current = nil
	clear(e.queue)
	e.queue = e.queue[:0]
	e.sinceDrain = 0
	e.skip = false
	l := e.loop
	e.loop = nil
	if l != nil {
		close(l.stop)
	}
	e.mu.Unlock()

	if l == nil {
		return
	}
	timer := time.NewTimer(e.cfg.StopTimeout)
	defer timer.Stop()
	select {
	case <-l.done:
	case <-timer.C:
		e.log.Printf("animation engine stop timeout=%s: loop still running, continuing cleanup", e.cfg.StopTimeout)
	}
}

// Skip finishes the current animation on the next tick, firing its
// completion as if it had played out.
func (e *Engine) Skip() {
	e.mu.Lock()
	if e.current != nil {
		e.skip = true
	}
	e.mu.Unlock()
	e.signal()
}

// SetSpeed sets the multiplier applied to animations enqueued afterwards.
func (e *Engine) SetSpeed(multiplier float64) {
	if multiplier < MinSpeed {
		multiplier = MinSpeed
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.speed = multiplier
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// State returns the playback state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// IsPlaying reports whether the engine is in StatePlaying.
func (e *Engine) IsPlaying() bool { return e.State() == StatePlaying }

// IsPaused reports whether the engine is in StatePaused.
func (e *Engine) IsPaused() bool { return e.State() == StatePaused }

// IsIdle reports whether the engine is in StateIdle.
func (e *Engine) IsIdle() bool { return e.State() == StateIdle }

// QueueLength returns the number of animations waiting to start.
func (e *Engine) QueueLength() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.queue)
}

// Pending returns queued animations plus the one currently playing.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := len(e.queue)
	if e.current != nil {
		n++
	}
	return n
}

// Status returns a snapshot for display.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{
		State:       e.state,
		QueueLength: len(e.queue),
		Speed:       e.speed,
		LoopRunning: e.loop != nil,
	}
	if e.current != nil {
		st.Current = e.current.String()
	}
	return st
}

func (e *Engine) startLoopLocked() {
	l := &loop{stop: make(chan struct{}), done: make(chan struct{})}
	e.loop = l
	go e.run(l)
}

// signal wakes a loop waiting in its idle grace period or pause poll.
func (e *Engine) signal() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

func (e *Engine) run(l *loop) {
	defer close(l.done)

	ticker := time.NewTicker(e.cfg.Tick)
	defer ticker.Stop()

	for {
		switch e.tick(l) {
		case tickExit:
			return
		case tickBusy:
			select {
			case <-l.stop:
				return
			case <-ticker.C:
			}
		case tickPaused:
			if !e.wait(l, e.cfg.PausePoll) {
				return
			}
		case tickIdle:
			if !e.wait(l, e.cfg.IdleGrace) {
				return
			}
			if e.exitIfIdle(l) {
				return
			}
		}
	}
}

// wait blocks for d, a wake-up, or a stop. It returns false on stop.
func (e *Engine) wait(l *loop, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-l.stop:
		return false
	case <-e.wake:
	case <-timer.C:
	}
	return true
}

// tick performs one scheduling step on behalf of owner. It is the whole of
// the loop body apart from waiting, which keeps it drivable from tests.
func (e *Engine) tick(owner *loop) tickResult {
	e.mu.Lock()
	if e.loop != owner || e.state == StateStopped {
		e.mu.Unlock()
		return tickExit
	}
	if e.state == StatePaused {
		e.mu.Unlock()
		return tickPaused
	}

	var started *Animation
	if e.current == nil && len(e.queue) > 0 {
		started = e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]
		e.current = started
		e.state = StatePlaying
	}
	cur := e.current
	cb := e.callbacks
	now := e.clock.Now()

	if cur == nil {
		drained := e.drainLocked()
		e.mu.Unlock()
		if drained {
			e.protect("queue empty", cb.OnQueueEmpty)
			return tickBusy
		}
		return tickIdle
	}

	skip := e.skip
	e.skip = false
	e.mu.Unlock()

	if started != nil {
		e.protect("animation start", func() { started.Start(now) })
		if cb.OnAnimationStart != nil {
			e.protect("animation start callback", func() { cb.OnAnimationStart(started) })
		}
	}

	done := true
	var ok bool
	if skip {
		ok = e.protect("animation finish", cur.Finish)
	} else {
		ok = e.protect("animation update", func() { done = cur.Update(now) })
	}
	if !ok {
		e.log.Printf("animation engine dropped animation=%s after panic", cur)
	}
	if !done {
		return tickBusy
	}

	if cb.OnAnimationComplete != nil {
		e.protect("animation complete callback", func() { cb.OnAnimationComplete(cur) })
	}

	e.mu.Lock()
	if e.loop != owner {
		e.mu.Unlock()
		return tickExit
	}
	if e.current == cur {
		e.current = nil
		e.sinceDrain++
	}
	drained := e.drainLocked()
	cb = e.callbacks
	e.mu.Unlock()

	if drained {
		e.protect("queue empty", cb.OnQueueEmpty)
	}
	return tickBusy
}

// drainLocked moves a playing engine with no work left to idle. It reports
// true exactly once per drain.
func (e *Engine) drainLocked() bool {
	if e.current != nil || len(e.queue) > 0 || e.state != StatePlaying || e.sinceDrain == 0 {
		return false
	}
	e.state = StateIdle
	e.sinceDrain = 0
	return true
}

// exitIfIdle retires the loop when there is still nothing to do after the
// grace wait. A later Play starts a fresh loop.
func (e *Engine) exitIfIdle(l *loop) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.loop != l {
		return true
	}
	if e.current != nil || len(e.queue) > 0 || e.state == StatePaused {
		return false
	}
	e.loop = nil
	if e.state == StatePlaying {
		e.state = StateIdle
	}
	return true
}

// protect runs fn, recovering and logging a panic. It reports whether fn
// returned normally.
func (e *Engine) protect(what string, fn func()) (ok bool) {
	if fn == nil {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Printf("animation engine panic hook=%q err=%v\n%s", what, r, debug.Stack())
			ok = false
		}
	}()
	fn()
	return true
}

func scaleDuration(d time.Duration, speed float64) time.Duration {
	if speed <= 0 {
		speed = 1
	}
	return time.Duration(float64(d) / speed)
}

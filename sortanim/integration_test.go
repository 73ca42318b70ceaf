// ABOUTME: Tests for the step-synchronization protocol against a real engine and host loop.
// ABOUTME: Covers the end-to-end sort, single stepping, zero-animation retries, pause, stop, and restart.
package sortanim

import (
	"bytes"
	"context"
	"errors"
	"log"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/2389-research/ducksort/animation"
	"github.com/2389-research/ducksort/animator"
	"github.com/2389-research/ducksort/hostloop"
	"github.com/2389-research/ducksort/pond"
	"github.com/2389-research/ducksort/sorting"
)

// countingSource wraps BubbleSort, counting callbacks and flagging any step
// taken while animations from an earlier step are still pending.
type countingSource struct {
	*sorting.BubbleSort
	engine *animation.Engine

	compares   atomic.Int32
	swaps      atomic.Int32
	completes  atomic.Int32
	violations atomic.Int32
}

func (c *countingSource) SetCallbacks(cb sorting.Callbacks) {
	c.BubbleSort.SetCallbacks(sorting.Callbacks{
		OnCompare: func(i, j int) {
			c.compares.Add(1)
			cb.OnCompare(i, j)
		},
		OnSwap: func(i, j int) {
			c.swaps.Add(1)
			cb.OnSwap(i, j)
		},
		OnComplete: func() {
			c.completes.Add(1)
			cb.OnComplete()
		},
	})
}

func (c *countingSource) Step() (bool, error) {
	if c.engine.Pending() != 0 {
		c.violations.Add(1)
	}
	return c.BubbleSort.Step()
}

type harness struct {
	loop   *hostloop.Loop
	engine *animation.Engine
	source *countingSource
	pond   *pond.Pond
	integ  *Integration
	done   chan Stats
	logBuf *lockedBuffer
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func fastConfig() Config {
	return Config{
		StepDelay:         time.Millisecond,
		RetryDelay:        2 * time.Millisecond,
		CompareDuration:   animation.MinDuration,
		SwapDuration:      animation.MinDuration,
		CompleteDuration:  animation.MinDuration,
		CelebrateDuration: animation.MinDuration,
	}
}

func newHarness(t *testing.T, values []int, withMother bool) *harness {
	t.Helper()
	logBuf := &lockedBuffer{}
	logger := log.New(logBuf, "", 0)

	h := &harness{logBuf: logBuf, done: make(chan Stats, 1)}
	h.loop = hostloop.New(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go h.loop.Run(ctx)

	h.engine = animation.NewEngine(animation.Config{Tick: 2 * time.Millisecond, Logger: logger})
	h.source = &countingSource{BubbleSort: sorting.NewBubbleSort(values), engine: h.engine}
	h.pond = pond.New(values)

	var mother animator.Positionable
	if withMother {
		mother = h.pond.Mother
	}
	cfg := fastConfig()
	cfg.Logger = logger
	h.integ = New(h.source, h.engine, h.loop, h.pond.Targets(), mother, cfg)
	h.integ.OnFinished(func(st Stats) { h.done <- st })

	t.Cleanup(func() {
		h.engine.Stop()
		cancel()
		<-h.loop.Done()
	})
	return h
}

func (h *harness) onHost(t *testing.T, fn func()) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.loop.Do(ctx, fn); err != nil {
		t.Fatalf("host call: %v", err)
	}
}

func (h *harness) waitFinished(t *testing.T) Stats {
	t.Helper()
	select {
	case st := <-h.done:
		return st
	case <-time.After(20 * time.Second):
		t.Fatalf("run never finished; stats=%+v", h.integ.Stats())
		return Stats{}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func targetValues(ts []animator.Positionable) []int {
	out := make([]int, len(ts))
	for i, t := range ts {
		out[i] = t.(*pond.Duck).Value()
	}
	return out
}

func TestEndToEndSort(t *testing.T) {
	h := newHarness(t, []int{5, 2, 8, 1}, false)
	h.onHost(t, h.integ.Start)
	st := h.waitFinished(t)

	if got := h.source.swaps.Load(); got != 4 {
		t.Errorf("swaps = %d, want 4", got)
	}
	if got := h.source.compares.Load(); got != 6 {
		t.Errorf("compares = %d, want 6", got)
	}
	if got := h.source.completes.Load(); got != 1 {
		t.Errorf("completes = %d, want 1", got)
	}
	if got := h.source.Values(); !slices.Equal(got, []int{1, 2, 5, 8}) {
		t.Errorf("source values = %v, want [1 2 5 8]", got)
	}
	if v := h.source.violations.Load(); v != 0 {
		t.Errorf("%d steps ran while animations were pending", v)
	}
	if !h.engine.IsIdle() || h.engine.Pending() != 0 {
		t.Errorf("engine state=%s pending=%d, want idle and empty", h.engine.State(), h.engine.Pending())
	}
	if !st.Completed || !st.Finished || st.Running || st.Comparisons != 6 || st.Swaps != 4 {
		t.Errorf("stats = %+v", st)
	}

	targets := h.integ.Targets()
	if got := targetValues(targets); !slices.Equal(got, []int{1, 2, 5, 8}) {
		t.Errorf("target order = %v, want aligned with source", got)
	}
	for k, tg := range targets {
		want := animator.Point{X: pond.RowStartX + float64(k)*pond.Spacing, Y: pond.RowY}
		if got := tg.Position(); got != want {
			t.Errorf("target %d at %v, want slot %v", k, got, want)
		}
		if v := tg.(*pond.Duck).View(); !v.Sorted || v.Highlighted || v.Comparing {
			t.Errorf("target %d flags = %+v, want only sorted", k, v)
		}
	}
}

func TestNoDoubleSteppingUnderRepeatedRequests(t *testing.T) {
	h := newHarness(t, []int{4, 3, 2, 1}, false)
	h.onHost(t, h.integ.Start)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			h.loop.Post(h.integ.RequestStep)
			time.Sleep(time.Millisecond)
		}
	}()

	h.waitFinished(t)
	close(stop)
	wg.Wait()

	if v := h.source.violations.Load(); v != 0 {
		t.Errorf("%d steps ran while animations were pending", v)
	}
	if got := h.source.compares.Load(); got != 6 {
		t.Errorf("compares = %d, want 6", got)
	}
}

func TestZeroAnimationStepsRetry(t *testing.T) {
	h := newHarness(t, []int{5, 2, 8, 1}, true)
	h.onHost(t, func() {
		h.integ.EnableAnimations(false)
		h.integ.Start()
	})
	st := h.waitFinished(t)

	if st.Retries != st.Steps || st.Steps != 8 {
		t.Errorf("steps=%d retries=%d, want 8 each", st.Steps, st.Retries)
	}
	if got := targetValues(h.integ.Targets()); !slices.Equal(got, []int{1, 2, 5, 8}) {
		t.Errorf("target order = %v", got)
	}
	for k, tg := range h.integ.Targets() {
		if want := pond.RowStartX + float64(k)*pond.Spacing; tg.Position().X != want {
			t.Errorf("target %d x = %v, want %v", k, tg.Position().X, want)
		}
	}
}

func TestFullEffectsWithMother(t *testing.T) {
	h := newHarness(t, []int{2, 1}, true)
	h.onHost(t, h.integ.Start)
	h.waitFinished(t)

	if got := targetValues(h.integ.Targets()); !slices.Equal(got, []int{1, 2}) {
		t.Errorf("target order = %v", got)
	}
	if h.pond.Mother.View().Highlighted {
		t.Error("mother left highlighted")
	}
	if h.source.completes.Load() != 1 {
		t.Errorf("completes = %d", h.source.completes.Load())
	}
}

func TestPauseHoldsStepping(t *testing.T) {
	h := newHarness(t, []int{6, 5, 4, 3, 2, 1}, false)
	h.onHost(t, h.integ.Start)
	waitFor(t, "first comparison", func() bool { return h.source.Comparisons() >= 1 })

	h.onHost(t, h.integ.Pause)
	before := h.source.Comparisons()
	time.Sleep(300 * time.Millisecond)
	if got := h.source.Comparisons(); got != before {
		t.Errorf("comparisons advanced while paused: %d -> %d", before, got)
	}
	if !h.engine.IsPaused() && h.engine.Pending() > 0 {
		t.Errorf("engine state = %s with pending work", h.engine.State())
	}

	h.onHost(t, h.integ.Resume)
	h.waitFinished(t)
	if got := h.source.Values(); !slices.Equal(got, []int{1, 2, 3, 4, 5, 6}) {
		t.Errorf("values = %v", got)
	}
	if v := h.source.violations.Load(); v != 0 {
		t.Errorf("%d overlapping steps", v)
	}
}

func TestStopResetsAndRestarts(t *testing.T) {
	h := newHarness(t, []int{3, 1, 2}, true)
	h.onHost(t, h.integ.Start)
	waitFor(t, "a swap", func() bool { return h.source.Swaps() >= 1 })

	h.onHost(t, h.integ.Stop)
	h.onHost(t, h.integ.Stop) // idempotent

	if h.engine.State() != animation.StateStopped || h.engine.Pending() != 0 {
		t.Errorf("engine state=%s pending=%d", h.engine.State(), h.engine.Pending())
	}
	if h.source.Comparisons() != 0 || h.source.IsCompleted() {
		t.Error("source not reset")
	}
	if got := targetValues(h.integ.Targets()); !slices.Equal(got, []int{3, 1, 2}) {
		t.Errorf("targets = %v, want initial order", got)
	}
	for k, d := range h.pond.Ducks {
		v := d.View()
		if v.X != pond.RowStartX+float64(k)*pond.Spacing || v.Y != pond.RowY || v.Highlighted || v.Comparing || v.Sorted {
			t.Errorf("duck %d not home: %+v", k, v)
		}
	}
	if m := h.pond.Mother.View(); m.X != pond.MotherX || m.Y != pond.MotherY {
		t.Errorf("mother at (%v,%v), want home", m.X, m.Y)
	}
	if h.integ.IsAnimating() || h.integ.IsRunning() {
		t.Error("flags left set after Stop")
	}

	h.onHost(t, h.integ.Start)
	h.waitFinished(t)
	if got := h.source.Values(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("values after restart = %v", got)
	}
}

func TestStepOnceIsManual(t *testing.T) {
	h := newHarness(t, []int{2, 1, 3}, false)
	h.onHost(t, h.integ.StepOnce)
	if h.source.Comparisons() != 1 {
		t.Fatalf("comparisons = %d, want 1", h.source.Comparisons())
	}
	waitFor(t, "batch drained", func() bool { return !h.integ.IsAnimating() })
	time.Sleep(20 * time.Millisecond)
	if h.source.Comparisons() != 1 {
		t.Errorf("manual mode stepped on its own: %d", h.source.Comparisons())
	}
	h.onHost(t, h.integ.StepOnce)
	if h.source.Comparisons() != 2 {
		t.Errorf("comparisons = %d, want 2", h.source.Comparisons())
	}

	// Resume hands control back to automatic stepping.
	waitFor(t, "batch drained", func() bool { return !h.integ.IsAnimating() })
	h.onHost(t, h.integ.Resume)
	h.waitFinished(t)
}

func TestHighlightDuckBounds(t *testing.T) {
	h := newHarness(t, []int{1, 2, 3}, false)
	var err error
	h.onHost(t, func() { err = h.integ.HighlightDuck(5, time.Second) })
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("err = %v, want ErrIndexOutOfRange", err)
	}
	h.onHost(t, func() { err = h.integ.HighlightRange(2, 1, time.Second) })
	if !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("range err = %v, want ErrIndexOutOfRange", err)
	}
	h.onHost(t, func() { err = h.integ.HighlightRange(0, 2, animation.MinDuration) })
	if err != nil {
		t.Fatalf("HighlightRange: %v", err)
	}
	waitFor(t, "highlights drained", func() bool { return h.engine.Pending() == 0 })
	if h.source.Comparisons() != 0 {
		t.Error("custom animations triggered a sort step")
	}
}

func TestStepErrorReleasesGate(t *testing.T) {
	var buf lockedBuffer
	loop := hostloop.New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	engine := animation.NewEngine(animation.Config{})
	defer engine.Stop()
	cfg := fastConfig()
	cfg.Logger = log.New(&buf, "", 0)
	integ := New(&sorting.BubbleSort{}, engine, loop, nil, nil, cfg)

	if err := loop.Do(ctx, integ.StepOnce); err != nil {
		t.Fatal(err)
	}
	if integ.IsAnimating() {
		t.Error("gate held after step error")
	}
	if !strings.Contains(buf.String(), "step failed") {
		t.Errorf("error not logged: %q", buf.String())
	}
}

// manualScheduler holds deferred calls until the test runs them.
type manualScheduler struct {
	mu    sync.Mutex
	calls []func()
}

func (m *manualScheduler) After(_ time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, fn)
}

func (m *manualScheduler) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *manualScheduler) take() []func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := m.calls
	m.calls = nil
	return calls
}

func TestDeferredStepsFromEarlierRunAreDropped(t *testing.T) {
	// The test goroutine plays the host loop; the scheduler never runs anything
	// on its own.
	sched := &manualScheduler{}
	engine := animation.NewEngine(animation.Config{Tick: 2 * time.Millisecond})
	defer engine.Stop()
	source := sorting.NewBubbleSort([]int{3, 1, 2})
	p := pond.New([]int{3, 1, 2})
	integ := New(source, engine, sched, p.Targets(), nil, fastConfig())

	t.Run("after stop", func(t *testing.T) {
		integ.Start()
		waitFor(t, "deferred step", func() bool { return sched.pending() > 0 })
		integ.Stop()

		for _, fn := range sched.take() {
			fn()
		}
		if got := source.Comparisons(); got != 0 {
			t.Errorf("comparisons = %d, want 0", got)
		}
		if engine.State() != animation.StateStopped {
			t.Errorf("engine state = %s, want stopped", engine.State())
		}
		if integ.IsAnimating() || integ.IsRunning() {
			t.Error("stale call revived the stopped run")
		}
	})

	t.Run("after restart", func(t *testing.T) {
		integ.Start()
		waitFor(t, "deferred step", func() bool { return sched.pending() > 0 })
		stale := sched.take()

		integ.Start()
		waitFor(t, "restarted batch drained", func() bool { return sched.pending() > 0 })
		for _, fn := range stale {
			fn()
		}
		if got := source.Comparisons(); got != 1 {
			t.Errorf("comparisons = %d, want 1", got)
		}

		// The live run still advances.
		for _, fn := range sched.take() {
			fn()
		}
		if got := source.Comparisons(); got != 2 {
			t.Errorf("comparisons after live call = %d, want 2", got)
		}
		integ.Stop()
	})
}

// panickingSource panics on its first Step.
type panickingSource struct {
	*sorting.BubbleSort
	panicked atomic.Bool
}

func (p *panickingSource) Step() (bool, error) {
	if p.panicked.CompareAndSwap(false, true) {
		panic("source broke")
	}
	return p.BubbleSort.Step()
}

func TestStepPanicReleasesGate(t *testing.T) {
	var buf lockedBuffer
	loop := hostloop.New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	engine := animation.NewEngine(animation.Config{Tick: 2 * time.Millisecond})
	defer engine.Stop()
	source := &panickingSource{BubbleSort: sorting.NewBubbleSort([]int{3, 1, 2})}
	p := pond.New([]int{3, 1, 2})
	cfg := fastConfig()
	cfg.Logger = log.New(&buf, "", 0)
	integ := New(source, engine, loop, p.Targets(), nil, cfg)
	done := make(chan Stats, 1)
	integ.OnFinished(func(st Stats) { done <- st })

	if err := loop.Do(ctx, integ.Start); err != nil {
		t.Fatal(err)
	}
	if integ.IsAnimating() {
		t.Error("gate held after a panicking step")
	}
	if !strings.Contains(buf.String(), "step panicked") {
		t.Errorf("panic not logged: %q", buf.String())
	}

	if err := loop.Do(ctx, integ.Resume); err != nil {
		t.Fatal(err)
	}
	select {
	case st := <-done:
		if st.Comparisons != 3 || st.Swaps != 2 {
			t.Errorf("stats = %+v, want 3 comparisons and 2 swaps", st)
		}
	case <-time.After(20 * time.Second):
		t.Fatalf("run never finished; stats=%+v", integ.Stats())
	}
	if got := source.Values(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("values = %v, want [1 2 3]", got)
	}
}

func TestStepOnceWithoutAnimationDoesNotChain(t *testing.T) {
	h := newHarness(t, []int{3, 2, 1}, false)
	h.onHost(t, func() {
		h.integ.EnableAnimations(false)
		h.integ.StepOnce()
	})
	if got := h.source.Comparisons(); got != 1 {
		t.Fatalf("comparisons = %d, want 1", got)
	}
	time.Sleep(50 * time.Millisecond)
	if got := h.source.Comparisons(); got != 1 {
		t.Errorf("comparisons after idle wait = %d, want 1", got)
	}
	h.onHost(t, h.integ.StepOnce)
	if got := h.source.Comparisons(); got != 2 {
		t.Errorf("comparisons = %d, want 2", got)
	}
}

func TestLengthMismatchLogged(t *testing.T) {
	var buf lockedBuffer
	engine := animation.NewEngine(animation.Config{})
	p := pond.New([]int{1, 2})
	cfg := fastConfig()
	cfg.Logger = log.New(&buf, "", 0)
	New(sorting.NewBubbleSort([]int{1, 2, 3}), engine, hostloop.New(nil), p.Targets(), nil, cfg)
	if !strings.Contains(buf.String(), "target mismatch") {
		t.Errorf("mismatch not logged: %q", buf.String())
	}
}

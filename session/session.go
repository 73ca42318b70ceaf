// ABOUTME: Session composes one pond, bubble sort, animation engine, and integration from a scenario.
// ABOUTME: Hosts (TUI, web, headless) drive it from their own loop and read State snapshots; finished runs go to history.
package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/2389-research/ducksort/animation"
	"github.com/2389-research/ducksort/history"
	"github.com/2389-research/ducksort/pond"
	"github.com/2389-research/ducksort/scenario"
	"github.com/2389-research/ducksort/sortanim"
	"github.com/2389-research/ducksort/sorting"
	"github.com/oklog/ulid/v2"
)

// ErrInvalidSpeed is returned by SetSpeed for non-positive or non-finite values.
var ErrInvalidSpeed = errors.New("session: speed must be a positive number")

// HighlightDuration is how long a requested duck highlight plays.
const HighlightDuration = 600 * time.Millisecond

// Config assembles a session. Zero timing fields take the package defaults.
type Config struct {
	Scenario scenario.Scenario
	Sort     sortanim.Config
	Engine   animation.Config
	Watchdog sortanim.WatchdogConfig // zero StallTimeout disables the watchdog
	History  *history.Store          // optional
	Logger   animation.Logger
}

// Session owns every component of one duck pond. All methods must be called
// from the host loop that backs the Scheduler passed to New.
type Session struct {
	cfg    Config
	log    animation.Logger
	sched  sortanim.Scheduler
	rng    *rand.Rand
	cancel context.CancelFunc

	pond     *pond.Pond
	sorter   *sorting.BubbleSort
	engine   *animation.Engine
	integ    *sortanim.Integration
	watchdog *sortanim.Watchdog

	runID      ulid.ULID
	startedAt  time.Time
	active     bool // a run has been started and not yet recorded
	lastRun    *history.Run
	onFinished func(history.Run)
}

// New validates the scenario and builds the pond from its values.
func New(sched sortanim.Scheduler, cfg Config) (*Session, error) {
	if err := cfg.Scenario.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Scenario.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		cfg:    cfg,
		log:    animation.OrDiscard(cfg.Logger),
		sched:  sched,
		rng:    rand.New(rand.NewSource(seed)),
		cancel: cancel,
	}
	if cfg.Watchdog.StallTimeout > 0 {
		if cfg.Watchdog.CheckInterval <= 0 {
			cfg.Watchdog.CheckInterval = sortanim.DefaultWatchdogConfig().CheckInterval
		}
		s.watchdog = sortanim.NewWatchdog(cfg.Watchdog, func(st sortanim.Stall) {
			s.log.Printf("sortanim stall step=%d elapsed=%s timeout=%s", st.Step, st.Elapsed, st.Timeout)
		})
		s.watchdog.Start(ctx)
	}
	s.build(cfg.Scenario.ResolveValues())
	return s, nil
}

func (s *Session) build(values []int) {
	scen := s.cfg.Scenario

	engCfg := s.cfg.Engine
	if engCfg.Logger == nil {
		engCfg.Logger = s.cfg.Logger
	}
	sortCfg := scen.SortConfig(s.cfg.Sort)
	if sortCfg.Logger == nil {
		sortCfg.Logger = s.cfg.Logger
	}

	s.pond = pond.NewWithBounds(values, scen.Bounds())
	s.sorter = sorting.NewBubbleSort(values)
	s.sorter.SetLogger(sortCfg.Logger)
	s.engine = animation.NewEngine(engCfg)
	if scen.Speed > 0 {
		s.engine.SetSpeed(scen.Speed)
	}
	s.integ = sortanim.New(s.sorter, s.engine, s.sched, s.pond.Targets(), s.pond.Mother, sortCfg)
	s.integ.SetEffects(scen.SortEffects())
	s.integ.OnFinished(s.handleFinished)
	if s.watchdog != nil {
		s.integ.SetWatchdog(s.watchdog)
	}
	s.log.Printf("session pond ducks=%d scenario=%s", len(values), scen.Name)
}

// OnFinished registers a hook called with the recorded run once a sort has
// completed and its celebration has played out.
func (s *Session) OnFinished(fn func(history.Run)) { s.onFinished = fn }

// Start begins a new run from the pond's starting order. An unfinished run
// in progress is recorded as incomplete first.
func (s *Session) Start() {
	s.recordIfActive()
	s.beginRun()
	s.integ.Start()
}

func (s *Session) beginRun() {
	s.runID = history.NewRunID()
	s.startedAt = time.Now()
	s.active = true
}

// Pause freezes animations and stepping.
func (s *Session) Pause() { s.integ.Pause() }

// Resume continues a paused or manually stepped run.
func (s *Session) Resume() { s.integ.Resume() }

// Step performs a single sort step and leaves the run in manual mode.
func (s *Session) Step() {
	if !s.active {
		s.beginRun()
	}
	s.integ.StepOnce()
}

// Stop halts the run and returns the ducks to their starting slots.
func (s *Session) Stop() {
	s.recordIfActive()
	s.integ.Stop()
}

// Skip finishes the animation currently playing.
func (s *Session) Skip() { s.engine.Skip() }

// SetSpeed changes the speed multiplier for animations enqueued afterwards.
func (s *Session) SetSpeed(v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidSpeed, v)
	}
	s.integ.SetSpeed(v)
	return nil
}

// Speed returns the current speed multiplier.
func (s *Session) Speed() float64 { return s.engine.Speed() }

// NewDucks replaces the pond. With no values, the same number of ducks is
// drawn at random.
func (s *Session) NewDucks(values []int) {
	s.Stop()
	if len(values) == 0 {
		n := len(s.pond.Ducks)
		if n == 0 {
			n = pond.DefaultCount
		}
		values = pond.RandomValues(s.rng, n)
	}
	s.build(append([]int(nil), values...))
}

// Highlight flashes the duck currently at slot k.
func (s *Session) Highlight(k int) error {
	return s.integ.HighlightDuck(k, HighlightDuration)
}

// SetEffects selects which step kinds are animated.
func (s *Session) SetEffects(e sortanim.Effects) { s.integ.SetEffects(e) }

// Pond returns the scene for rendering.
func (s *Session) Pond() *pond.Pond { return s.pond }

// Events returns the sort's event log for the current run.
func (s *Session) Events() []sorting.Event { return s.sorter.History() }

// LastRun returns the most recently recorded run, if any.
func (s *Session) LastRun() (history.Run, bool) {
	if s.lastRun == nil {
		return history.Run{}, false
	}
	return *s.lastRun, true
}

// Close stops the engine and the watchdog. An unfinished run is recorded.
func (s *Session) Close() {
	s.recordIfActive()
	s.engine.Stop()
	s.cancel()
}

// State is a snapshot of the session for display and the HTTP API.
type State struct {
	RunID       string        `json:"run_id,omitempty"`
	Scenario    string        `json:"scenario"`
	Values      []int         `json:"values"`
	Initial     []int         `json:"initial"`
	Comparisons int           `json:"comparisons"`
	Swaps       int           `json:"swaps"`
	Steps       int           `json:"steps"`
	Retries     int           `json:"retries"`
	Progress    float64       `json:"progress"`
	SortedFrom  int           `json:"sorted_from"`
	Running     bool          `json:"running"`
	Paused      bool          `json:"paused"`
	Animating   bool          `json:"animating"`
	Completed   bool          `json:"completed"`
	Finished    bool          `json:"finished"`
	Engine      string        `json:"engine"`
	Current     string        `json:"current,omitempty"`
	Queue       int           `json:"queue"`
	Speed       float64       `json:"speed"`
	Pond        pond.Snapshot `json:"pond"`
}

// State captures the current session state.
func (s *Session) State() State {
	st := s.integ.Stats()
	out := State{
		Scenario:    s.cfg.Scenario.Name,
		Values:      s.sorter.Values(),
		Initial:     s.sorter.Initial(),
		Comparisons: st.Comparisons,
		Swaps:       st.Swaps,
		Steps:       st.Steps,
		Retries:     st.Retries,
		Progress:    st.Progress,
		SortedFrom:  s.sorter.SortedFrom(),
		Running:     st.Running,
		Paused:      s.sorter.IsPaused(),
		Animating:   st.Animating,
		Completed:   st.Completed,
		Finished:    st.Finished,
		Engine:      st.Engine.State.String(),
		Current:     st.Engine.Current,
		Queue:       st.Engine.QueueLength,
		Speed:       st.Engine.Speed,
		Pond:        s.pond.Snapshot(),
	}
	if s.runID != (ulid.ULID{}) {
		out.RunID = s.runID.String()
	}
	return out
}

func (s *Session) handleFinished(sortanim.Stats) {
	run := s.record(true)
	if s.onFinished != nil {
		s.onFinished(run)
	}
}

func (s *Session) recordIfActive() {
	if s.active {
		s.record(false)
	}
}

// record closes the active run and persists it when a store is configured.
func (s *Session) record(completed bool) history.Run {
	st := s.integ.Stats()
	run := history.Run{
		RunID:       s.runID,
		Scenario:    s.cfg.Scenario.Name,
		Initial:     s.sorter.Initial(),
		Final:       s.sorter.Values(),
		Comparisons: st.Comparisons,
		Swaps:       st.Swaps,
		Steps:       st.Steps,
		Retries:     st.Retries,
		Speed:       s.engine.Speed(),
		Completed:   completed,
		StartedAt:   s.startedAt,
		FinishedAt:  time.Now(),
	}
	s.active = false
	s.lastRun = &run

	if s.cfg.History != nil {
		if err := s.cfg.History.RecordRun(run, s.sorter.History()); err != nil {
			s.log.Printf("session record run failed run_id=%s err=%v", run.RunID, err)
		}
	}
	s.log.Printf("session run recorded run_id=%s completed=%t comparisons=%d swaps=%d",
		run.RunID, completed, run.Comparisons, run.Swaps)
	return run
}

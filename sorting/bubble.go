// ABOUTME: Step-wise bubble sort that reports each comparison, swap, and completion through callbacks.
// ABOUTME: One Step is at most one comparison; callbacks fire after the internal lock is released.
package sorting

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/2389-research/ducksort/animation"
)

// ErrNotInitialized is returned by Step on a sorter that was never given values.
var ErrNotInitialized = errors.New("sorting: no values to sort")

// Callbacks receive the sort's observable steps. Indices refer to positions
// in the sequence before the step is applied.
type Callbacks struct {
	OnCompare  func(i, j int)
	OnSwap     func(i, j int)
	OnComplete func()
}

// BubbleSort sorts a sequence of ints in ascending order one comparison at a
// time. It is safe for concurrent use; callbacks run on the caller of Step.
type BubbleSort struct {
	mu          sync.Mutex
	initial     []int
	values      []int
	ready       bool
	i, j        int // outer pass and inner position
	completed   bool
	paused      bool
	comparisons int
	swaps       int
	lastCompare [2]int
	lastSwap    [2]int
	history     []Event
	cb          Callbacks
	log         animation.Logger
	now         func() time.Time
}

// NewBubbleSort returns a sorter over a copy of values.
func NewBubbleSort(values []int) *BubbleSort {
	s := &BubbleSort{now: time.Now}
	s.SetValues(values)
	return s
}

// SetValues replaces the sequence and resets all progress.
func (s *BubbleSort) SetValues(values []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initial = slices.Clone(values)
	s.ready = true
	s.resetLocked()
}

// SetCallbacks replaces the step callbacks.
func (s *BubbleSort) SetCallbacks(cb Callbacks) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cb = cb
}

// SetLogger sets where recovered callback panics are reported.
func (s *BubbleSort) SetLogger(l animation.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = l
}

// Step performs one unit of work. It returns true when work was done (a
// comparison, possibly followed by a swap, or the end of a pass) and false
// when the sort is complete or paused. Completing the sort fires OnComplete
// exactly once, from the Step call that finishes it.
func (s *BubbleSort) Step() (bool, error) {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return false, ErrNotInitialized
	}
	if s.completed || s.paused {
		s.mu.Unlock()
		return false, nil
	}

	var fire []func()
	cb := s.cb
	logger := s.log
	n := len(s.values)
	s.lastCompare = [2]int{-1, -1}
	s.lastSwap = [2]int{-1, -1}
	worked := true

	switch {
	case n <= 1 || s.i >= n-1:
		fire = s.completeLocked(fire, cb)
		worked = false
	case s.j < n-s.i-1:
		i, j := s.j, s.j+1
		a, b := s.values[i], s.values[j]
		s.comparisons++
		s.lastCompare = [2]int{i, j}
		s.record(CompareEvent{I: i, J: j, ValueI: a, ValueJ: b})
		if cb.OnCompare != nil {
			fire = append(fire, func() { cb.OnCompare(i, j) })
		}
		if a > b {
			s.values[i], s.values[j] = b, a
			s.swaps++
			s.lastSwap = [2]int{i, j}
			s.record(SwapEvent{I: i, J: j, ValueI: a, ValueJ: b})
			if cb.OnSwap != nil {
				fire = append(fire, func() { cb.OnSwap(i, j) })
			}
		}
		s.j++
	default:
		// end of pass
		s.i++
		s.j = 0
		if s.i >= n-1 {
			fire = s.completeLocked(fire, cb)
			worked = false
		}
	}
	s.mu.Unlock()

	for _, f := range fire {
		fireCallback(f, logger)
	}
	return worked, nil
}

// fireCallback runs f and logs instead of propagating a panic, so one bad
// observer cannot leave the sort half stepped.
func fireCallback(f func(), l animation.Logger) {
	defer func() {
		if r := recover(); r != nil {
			animation.OrDiscard(l).Printf("sorting callback panicked err=%v", r)
		}
	}()
	f()
}

func (s *BubbleSort) completeLocked(fire []func(), cb Callbacks) []func() {
	s.completed = true
	s.record(CompleteEvent{Comparisons: s.comparisons, Swaps: s.swaps, Final: slices.Clone(s.values)})
	if cb.OnComplete != nil {
		fire = append(fire, cb.OnComplete)
	}
	return fire
}

func (s *BubbleSort) record(p EventPayload) {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	s.history = append(s.history, Event{
		ID:        NewULID(),
		Seq:       len(s.history) + 1,
		Timestamp: now(),
		Payload:   p,
	})
}

// Reset returns to the initial sequence and clears progress, pause, and history.
func (s *BubbleSort) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

func (s *BubbleSort) resetLocked() {
	s.values = slices.Clone(s.initial)
	s.i, s.j = 0, 0
	s.completed = false
	s.paused = false
	s.comparisons, s.swaps = 0, 0
	s.lastCompare = [2]int{-1, -1}
	s.lastSwap = [2]int{-1, -1}
	s.history = nil
}

// Pause makes Step a no-op until Resume.
func (s *BubbleSort) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
}

// Resume undoes Pause.
func (s *BubbleSort) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
}

// IsPaused reports whether the sort is paused.
func (s *BubbleSort) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// IsCompleted reports whether the sort has finished.
func (s *BubbleSort) IsCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Progress returns the fraction of the worst-case comparison count done so far.
func (s *BubbleSort) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.values)
	if n <= 1 || s.completed {
		return 1
	}
	total := n * (n - 1) / 2
	return min(float64(s.comparisons)/float64(total), 1)
}

// Comparisons returns the number of comparisons made.
func (s *BubbleSort) Comparisons() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comparisons
}

// Swaps returns the number of swaps made.
func (s *BubbleSort) Swaps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.swaps
}

// Len returns the sequence length.
func (s *BubbleSort) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

// Values returns a copy of the current sequence.
func (s *BubbleSort) Values() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.values)
}

// Initial returns a copy of the sequence as it was before sorting.
func (s *BubbleSort) Initial() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.initial)
}

// LastCompare returns the pair compared by the most recent Step, or -1,-1.
func (s *BubbleSort) LastCompare() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastCompare[0], s.lastCompare[1]
}

// LastSwap returns the pair swapped by the most recent Step, or -1,-1.
func (s *BubbleSort) LastSwap() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSwap[0], s.lastSwap[1]
}

// SortedFrom returns the index from which the tail is known to be in final
// position. It is 0 once the sort completes.
func (s *BubbleSort) SortedFrom() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.completed {
		return 0
	}
	return len(s.values) - s.i
}

// History returns a copy of the recorded events.
func (s *BubbleSort) History() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

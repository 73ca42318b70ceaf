// ABOUTME: Background watchdog that notices a sort step whose animations have not drained in time.
// ABOUTME: Emits one warning per stalled step; it never intervenes in the step protocol.
package sortanim

import (
	"context"
	"sync"
	"time"
)

// WatchdogConfig holds configuration for the stall-detection watchdog.
type WatchdogConfig struct {
	StallTimeout  time.Duration // how long a step may hold the gate before it is reported
	CheckInterval time.Duration // how often to check
}

// DefaultWatchdogConfig returns a 30 second stall timeout checked every second.
func DefaultWatchdogConfig() WatchdogConfig {
	return WatchdogConfig{
		StallTimeout:  30 * time.Second,
		CheckInterval: time.Second,
	}
}

// Stall describes a step that has been in flight longer than the timeout.
type Stall struct {
	Step    int
	Elapsed time.Duration
	Timeout time.Duration
}

// Watchdog tracks the single in-flight step. Only observability: the
// handler is called from the watchdog goroutine.
type Watchdog struct {
	config  WatchdogConfig
	handler func(Stall)
	now     func() time.Time

	mu      sync.Mutex
	active  bool
	step    int
	claimed time.Time
	warned  bool
}

// NewWatchdog creates a Watchdog with the given config and stall handler.
func NewWatchdog(cfg WatchdogConfig, handler func(Stall)) *Watchdog {
	return &Watchdog{config: cfg, handler: handler, now: time.Now}
}

// Start launches the monitoring goroutine. It stops when ctx is cancelled.
func (w *Watchdog) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.config.CheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.check()
			}
		}
	}()
}

// StepClaimed records that step n now holds the gate.
func (w *Watchdog) StepClaimed(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = true
	w.step = n
	w.claimed = w.now()
	w.warned = false
}

// StepReleased records that the gate is free again.
func (w *Watchdog) StepReleased() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = false
	w.warned = false
}

// check emits at most one warning per claimed step, outside the lock.
func (w *Watchdog) check() {
	w.mu.Lock()
	var stall *Stall
	if w.active && !w.warned {
		if elapsed := w.now().Sub(w.claimed); elapsed > w.config.StallTimeout {
			w.warned = true
			stall = &Stall{Step: w.step, Elapsed: elapsed, Timeout: w.config.StallTimeout}
		}
	}
	w.mu.Unlock()

	if stall != nil && w.handler != nil {
		w.handler(*stall)
	}
}

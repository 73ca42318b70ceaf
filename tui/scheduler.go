// ABOUTME: Scheduler bridging the sort integration's deferred calls into the Bubble Tea message loop.
// ABOUTME: Timers deliver RunMsg via program.Send so every step runs on the Bubble Tea goroutine; also provides FrameCmd.
package tui

import (
	"sync"
	"time"

	"github.com/2389-research/ducksort/animation"
	tea "github.com/charmbracelet/bubbletea"
)

// Scheduler implements the host "after" primitive on top of a tea.Program.
// Calls scheduled before Bind are held and delivered once a sender exists.
type Scheduler struct {
	log animation.Logger

	mu      sync.Mutex
	send    func(msg tea.Msg)
	pending []tea.Msg
}

// NewScheduler creates an unbound Scheduler.
func NewScheduler(logger animation.Logger) *Scheduler {
	return &Scheduler{log: animation.OrDiscard(logger)}
}

// Bind attaches the sender, typically program.Send, and flushes held calls.
func (s *Scheduler) Bind(send func(msg tea.Msg)) {
	s.mu.Lock()
	s.send = send
	held := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, msg := range held {
		send(msg)
	}
}

// After delivers fn as a RunMsg once d has elapsed. fn never runs on the
// calling goroutine.
func (s *Scheduler) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() { s.deliver(RunMsg{Fn: fn}) })
}

func (s *Scheduler) deliver(msg tea.Msg) {
	s.mu.Lock()
	send := s.send
	if send == nil {
		s.pending = append(s.pending, msg)
		n := len(s.pending)
		s.mu.Unlock()
		s.log.Printf("tui scheduler holding call pending=%d", n)
		return
	}
	s.mu.Unlock()
	send(msg)
}

// FrameCmd returns a tea.Cmd that sends a FrameMsg after interval.
func FrameCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return FrameMsg{Time: t}
	})
}

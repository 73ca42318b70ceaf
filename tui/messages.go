// ABOUTME: Bubble Tea message types used in the TUI message loop.
// ABOUTME: RunMsg carries deferred host work into Update; FrameMsg drives repainting.
package tui

import "time"

// RunMsg asks the model to run Fn on the Bubble Tea goroutine. It is how
// the sort integration's deferred steps reach the host loop.
type RunMsg struct {
	Fn func()
}

// FrameMsg is sent periodically to repaint the pond and pull new events.
type FrameMsg struct {
	Time time.Time
}

// ABOUTME: Implements a single-line status bar for the bottom of the TUI showing sort progress.
// ABOUTME: Displays scenario name, elapsed time, a bubbles progress bar, run mode, and a step spinner.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// RunMode is what the session is currently doing, as shown in the bar.
type RunMode int

const (
	ModeReady RunMode = iota
	ModeRunning
	ModeStepping // manual single steps
	ModePaused
	ModeDone
)

// String returns the label shown in the status bar.
func (m RunMode) String() string {
	switch m {
	case ModeReady:
		return "ready"
	case ModeRunning:
		return "running"
	case ModeStepping:
		return "stepping"
	case ModePaused:
		return "paused"
	case ModeDone:
		return "done"
	default:
		return "unknown"
	}
}

// StatusBarModel displays run status in a single line.
type StatusBarModel struct {
	scenario  string
	startTime time.Time
	endTime   time.Time
	mode      RunMode
	percent   float64
	animating bool
	spinner   int
	bar       progress.Model
	width     int
}

// NewStatusBarModel creates a status bar for the named scenario.
func NewStatusBarModel(scenario string) StatusBarModel {
	return StatusBarModel{
		scenario: scenario,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(20), progress.WithoutPercentage()),
	}
}

// Start records the run start time.
func (m *StatusBarModel) Start() {
	m.startTime = time.Now()
	m.endTime = time.Time{}
}

// Finish freezes the elapsed time.
func (m *StatusBarModel) Finish() {
	if !m.startTime.IsZero() && m.endTime.IsZero() {
		m.endTime = time.Now()
	}
}

// Reset clears the timer.
func (m *StatusBarModel) Reset() {
	m.startTime = time.Time{}
	m.endTime = time.Time{}
}

// SetMode updates the run mode.
func (m *StatusBarModel) SetMode(mode RunMode) {
	m.mode = mode
}

// SetProgress sets the sort progress in [0, 1].
func (m *StatusBarModel) SetProgress(p float64) {
	m.percent = max(0, min(p, 1))
}

// SetAnimating marks whether a step's animations are in flight.
func (m *StatusBarModel) SetAnimating(on bool) {
	m.animating = on
}

// AdvanceSpinner increments the spinner frame index.
func (m *StatusBarModel) AdvanceSpinner() {
	m.spinner++
}

// SetWidth sets the bar width for rendering.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// Elapsed returns the run time so far, or zero if not started.
func (m StatusBarModel) Elapsed() time.Duration {
	if m.startTime.IsZero() {
		return 0
	}
	if !m.endTime.IsZero() {
		return m.endTime.Sub(m.startTime)
	}
	return time.Since(m.startTime)
}

// formatElapsed formats a duration as a human-readable string.
// Durations under a minute show as seconds (e.g. "12s").
// Durations of a minute or more show as minutes and seconds (e.g. "2m30s").
func formatElapsed(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) - minutes*60
	return fmt.Sprintf("%dm%ds", minutes, seconds)
}

// View renders the status bar as a single styled line.
func (m StatusBarModel) View() string {
	mode := m.mode.String()
	switch m.mode {
	case ModePaused:
		mode = PausedStyle.Render(mode)
	case ModeDone:
		mode = DoneStyle.Render(mode)
	}
	spin := " "
	if m.animating {
		spin = SpinnerFrames[m.spinner%len(SpinnerFrames)]
	}

	content := fmt.Sprintf("Scenario: %s | Elapsed: %s | %s %3.0f%% | %s %s",
		m.scenario, formatElapsed(m.Elapsed()), m.bar.ViewAs(m.percent), m.percent*100, spin, mode)

	style := StatusBarStyle.Width(m.width)

	return lipgloss.PlaceHorizontal(m.width, lipgloss.Left, style.Render(content))
}

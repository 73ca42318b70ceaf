// ABOUTME: Bubble Tea sub-model showing the current run's statistics and engine status.
// ABOUTME: Renders comparisons, swaps, steps, engine state, current animation, and the last recorded run.
package tui

import (
	"fmt"
	"strings"

	"github.com/2389-research/ducksort/history"
	"github.com/2389-research/ducksort/session"
)

// StatsPanelModel displays run statistics.
type StatsPanelModel struct {
	state   session.State
	lastRun *history.Run
	width   int
	height  int
}

// NewStatsPanelModel creates an empty stats panel.
func NewStatsPanelModel() StatsPanelModel {
	return StatsPanelModel{}
}

// SetState updates the panel from a session snapshot.
func (m *StatsPanelModel) SetState(st session.State) {
	m.state = st
}

// SetLastRun records the most recently finished run.
func (m *StatsPanelModel) SetLastRun(r history.Run) {
	m.lastRun = &r
}

// SetSize sets the available dimensions.
func (m *StatsPanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// maxCurrentLen is the maximum number of characters shown for the current animation.
const maxCurrentLen = 40

// truncate shortens s to n runes, appending "..." if truncated.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// View renders the stats panel.
func (m StatsPanelModel) View() string {
	st := m.state
	current := st.Current
	if current == "" {
		current = "-"
	}

	lines := []string{
		TitleStyle.Render("RUN"),
		row("Compares:", fmt.Sprintf("%d", st.Comparisons)),
		row("Swaps:", fmt.Sprintf("%d", st.Swaps)),
		row("Steps:", fmt.Sprintf("%d (%d retries)", st.Steps, st.Retries)),
		row("Engine:", fmt.Sprintf("%s, %d queued", st.Engine, st.Queue)),
		row("Playing:", truncate(current, maxCurrentLen)),
		row("Speed:", fmt.Sprintf("%.1fx", st.Speed)),
		row("Values:", fmt.Sprint(st.Values)),
	}
	if m.lastRun != nil {
		r := m.lastRun
		outcome := "stopped"
		if r.Completed {
			outcome = "sorted"
		}
		lines = append(lines, row("Last run:", fmt.Sprintf("%s in %s, %d swaps",
			outcome, formatElapsed(r.Duration()), r.Swaps)))
	}

	style := BorderStyle
	if m.width > 0 {
		style = style.Width(m.width - 2)
	}
	if m.height > 0 {
		style = style.Height(m.height - 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}

// row renders a label-value pair using the standard label and value styles.
func row(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}

// ABOUTME: Implements a scrollable event log panel using the bubbles viewport component.
// ABOUTME: Displays sort events (compare, swap, complete) and session notes with colour-coded formatting.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/ducksort/sorting"
)

// logEntry is either a sort event or a free-form note.
type logEntry struct {
	event *sorting.Event
	note  string
	at    time.Time
}

// LogPanelModel is a scrollable log of sort events.
type LogPanelModel struct {
	entries  []logEntry
	max      int
	viewport viewport.Model
	focused  bool
	width    int
	height   int
}

// NewLogPanelModel creates a new log panel with a maximum number of entries.
// If maxEntries is <= 0, it defaults to 200.
func NewLogPanelModel(maxEntries int) LogPanelModel {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	vp := viewport.New(80, 10)
	return LogPanelModel{
		entries:  make([]logEntry, 0, maxEntries),
		max:      maxEntries,
		viewport: vp,
	}
}

// Append adds a sort event, evicting the oldest entry if at capacity.
func (m *LogPanelModel) Append(evt sorting.Event) {
	m.push(logEntry{event: &evt, at: evt.Timestamp})
}

// Note adds a session message such as "run started".
func (m *LogPanelModel) Note(text string) {
	m.push(logEntry{note: text, at: time.Now()})
}

func (m *LogPanelModel) push(e logEntry) {
	if len(m.entries) >= m.max {
		m.entries = m.entries[1:]
	}
	m.entries = append(m.entries, e)
	m.syncViewport()
}

// Len returns the number of entries in the log.
func (m LogPanelModel) Len() int {
	return len(m.entries)
}

// SetFocused sets whether this panel accepts scroll keys.
func (m *LogPanelModel) SetFocused(focused bool) {
	m.focused = focused
}

// IsFocused returns whether the panel is focused.
func (m LogPanelModel) IsFocused() bool {
	return m.focused
}

// Update forwards scroll keys to the viewport while focused.
func (m LogPanelModel) Update(msg tea.Msg) (LogPanelModel, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetSize sets the available dimensions and updates the viewport.
func (m *LogPanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	// Reserve space for the border (2 lines top/bottom) and title (1 line)
	m.viewport.Width = max(w-2, 1)
	m.viewport.Height = max(h-3, 1)
	m.syncViewport()
}

// View renders the log panel.
func (m LogPanelModel) View() string {
	title := "EVENT LOG"
	if m.focused {
		title = "EVENT LOG (focused)"
	}

	var content string
	if len(m.entries) == 0 {
		content = "No events yet"
	} else {
		content = m.viewport.View()
	}

	rendered := TitleStyle.Render(title) + "\n" + content

	return BorderStyle.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(rendered)
}

// syncViewport rebuilds the viewport content from entries and scrolls to the bottom.
func (m *LogPanelModel) syncViewport() {
	if len(m.entries) == 0 {
		m.viewport.SetContent("")
		return
	}
	lines := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		lines = append(lines, formatEntry(e))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

// formatEntry formats a single log entry as one line.
func formatEntry(e logEntry) string {
	ts := LogTimestampStyle.Render(e.at.Format("15:04:05"))
	if e.event == nil {
		return ts + " " + LogNoteStyle.Render(e.note)
	}
	kind := e.event.Payload.EventPayloadType()
	return fmt.Sprintf("%s %s %s", ts, eventStyle(kind).Render(kind), describe(e.event.Payload))
}

// describe renders a payload as compact key=value pairs.
func describe(p sorting.EventPayload) string {
	switch p := p.(type) {
	case sorting.CompareEvent:
		rel := "<="
		if p.ValueI > p.ValueJ {
			rel = ">"
		}
		return fmt.Sprintf("[%d]=%d %s [%d]=%d", p.I, p.ValueI, rel, p.J, p.ValueJ)
	case sorting.SwapEvent:
		return fmt.Sprintf("[%d]<->[%d] %d,%d", p.I, p.J, p.ValueI, p.ValueJ)
	case sorting.CompleteEvent:
		return fmt.Sprintf("comparisons=%d swaps=%d final=%v", p.Comparisons, p.Swaps, p.Final)
	default:
		return ""
	}
}

// eventStyle returns the lipgloss style for an event type name.
func eventStyle(kind string) lipgloss.Style {
	switch kind {
	case "Compare":
		return LogCompareStyle
	case "Swap":
		return LogSwapStyle
	case "Complete":
		return LogCompleteStyle
	default:
		return LogNoteStyle
	}
}

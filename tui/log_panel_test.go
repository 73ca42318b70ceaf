// ABOUTME: Tests for the LogPanelModel scrollable event log panel.
// ABOUTME: Validates creation, append, eviction, notes, focus, formatting, and view rendering.
package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/2389-research/ducksort/sorting"
)

func compareEvt(seq, i, j, vi, vj int) sorting.Event {
	return sorting.Event{
		Seq:       seq,
		Timestamp: time.Date(2026, 2, 9, 14, 30, 45, 0, time.UTC),
		Payload:   sorting.CompareEvent{I: i, J: j, ValueI: vi, ValueJ: vj},
	}
}

func TestLogPanel_NewLogPanelModel_EmptyEntries(t *testing.T) {
	m := NewLogPanelModel(100)
	if m.Len() != 0 {
		t.Errorf("expected 0 entries, got %d", m.Len())
	}
}

func TestLogPanel_NewLogPanelModel_DefaultsTo200WhenZero(t *testing.T) {
	m := NewLogPanelModel(0)
	for i := 0; i < 200; i++ {
		m.Append(compareEvt(i+1, 0, 1, 1, 2))
	}
	if m.Len() != 200 {
		t.Errorf("expected 200 entries after filling to capacity, got %d", m.Len())
	}
	m.Append(compareEvt(201, 0, 1, 1, 2))
	if m.Len() != 200 {
		t.Errorf("expected 200 entries after overflow, got %d", m.Len())
	}
}

func TestLogPanel_EvictsOldest(t *testing.T) {
	m := NewLogPanelModel(2)
	m.Append(compareEvt(1, 0, 1, 1, 2))
	m.Append(compareEvt(2, 1, 2, 2, 3))
	m.Note("third")
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	if m.entries[0].event == nil || m.entries[0].event.Seq != 2 {
		t.Errorf("oldest surviving entry = %+v, want seq 2", m.entries[0])
	}
	if m.entries[1].note != "third" {
		t.Errorf("newest entry note = %q, want %q", m.entries[1].note, "third")
	}
}

func TestLogPanel_SetFocused_IsFocused_RoundTrip(t *testing.T) {
	m := NewLogPanelModel(10)
	if m.IsFocused() {
		t.Error("expected unfocused initially")
	}
	m.SetFocused(true)
	if !m.IsFocused() {
		t.Error("expected focused after SetFocused(true)")
	}
}

func TestLogPanel_View_TitleShowsFocused(t *testing.T) {
	m := NewLogPanelModel(10)
	m.SetSize(60, 10)
	if view := m.View(); !strings.Contains(view, "EVENT LOG") || strings.Contains(view, "(focused)") {
		t.Errorf("unfocused view title wrong: %q", view)
	}
	m.SetFocused(true)
	if view := m.View(); !strings.Contains(view, "EVENT LOG (focused)") {
		t.Errorf("focused view missing marker: %q", view)
	}
}

func TestLogPanel_View_ShowsNoEventsWhenEmpty(t *testing.T) {
	m := NewLogPanelModel(10)
	m.SetSize(60, 10)
	if view := m.View(); !strings.Contains(view, "No events yet") {
		t.Errorf("expected empty placeholder, got %q", view)
	}
}

func TestLogPanel_formatEntry(t *testing.T) {
	ts := time.Date(2026, 2, 9, 14, 30, 45, 0, time.UTC)
	tests := []struct {
		name    string
		payload sorting.EventPayload
		want    []string
	}{
		{
			name:    "compare greater",
			payload: sorting.CompareEvent{I: 0, J: 1, ValueI: 5, ValueJ: 2},
			want:    []string{"14:30:45", "Compare", "[0]=5 > [1]=2"},
		},
		{
			name:    "compare in order",
			payload: sorting.CompareEvent{I: 2, J: 3, ValueI: 1, ValueJ: 8},
			want:    []string{"[2]=1 <= [3]=8"},
		},
		{
			name:    "swap",
			payload: sorting.SwapEvent{I: 0, J: 1, ValueI: 5, ValueJ: 2},
			want:    []string{"Swap", "[0]<->[1] 5,2"},
		},
		{
			name:    "complete",
			payload: sorting.CompleteEvent{Comparisons: 6, Swaps: 4, Final: []int{1, 2, 5, 8}},
			want:    []string{"Complete", "comparisons=6 swaps=4 final=[1 2 5 8]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt := sorting.Event{Timestamp: ts, Payload: tt.payload}
			line := formatEntry(logEntry{event: &evt, at: ts})
			for _, w := range tt.want {
				if !strings.Contains(line, w) {
					t.Errorf("formatEntry() = %q, missing %q", line, w)
				}
			}
		})
	}
}

func TestLogPanel_formatEntry_Note(t *testing.T) {
	line := formatEntry(logEntry{note: "run started", at: time.Date(2026, 1, 1, 9, 5, 0, 0, time.UTC)})
	if !strings.Contains(line, "09:05:00") || !strings.Contains(line, "run started") {
		t.Errorf("note line = %q", line)
	}
}

func TestLogPanel_View_ShowsEvents(t *testing.T) {
	m := NewLogPanelModel(10)
	m.SetSize(80, 10)
	m.Append(compareEvt(1, 0, 1, 5, 2))
	view := m.View()
	if !strings.Contains(view, "Compare") || !strings.Contains(view, "14:30:45") {
		t.Errorf("view missing event line: %q", view)
	}
}

func TestLogPanel_SetSize(t *testing.T) {
	m := NewLogPanelModel(10)
	m.SetSize(50, 20)
	if m.viewport.Width != 48 || m.viewport.Height != 17 {
		t.Errorf("viewport = %dx%d, want 48x17", m.viewport.Width, m.viewport.Height)
	}
	m.SetSize(1, 1)
	if m.viewport.Width != 1 || m.viewport.Height != 1 {
		t.Errorf("viewport = %dx%d, want 1x1 floor", m.viewport.Width, m.viewport.Height)
	}
}

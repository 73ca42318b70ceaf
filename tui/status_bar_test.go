// ABOUTME: Tests for StatusBarModel which renders a single-line sort status bar.
// ABOUTME: Covers construction, mode labels, progress clamping, elapsed time, and View() rendering.
package tui

import (
	"strings"
	"testing"
	"time"
)

func TestRunModeString(t *testing.T) {
	tests := []struct {
		mode RunMode
		want string
	}{
		{ModeReady, "ready"},
		{ModeRunning, "running"},
		{ModeStepping, "stepping"},
		{ModePaused, "paused"},
		{ModeDone, "done"},
		{RunMode(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("RunMode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestStatusBarSetProgressClamps(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-0.5, 0},
		{0.25, 0.25},
		{1.5, 1},
	}
	for _, tt := range tests {
		m := NewStatusBarModel("test")
		m.SetProgress(tt.in)
		if m.percent != tt.want {
			t.Errorf("SetProgress(%v) percent = %v, want %v", tt.in, m.percent, tt.want)
		}
	}
}

func TestStatusBarElapsed(t *testing.T) {
	t.Run("returns zero when not started", func(t *testing.T) {
		m := NewStatusBarModel("test")
		if elapsed := m.Elapsed(); elapsed != 0 {
			t.Errorf("Elapsed() = %v, want 0", elapsed)
		}
	})

	t.Run("returns positive duration after start", func(t *testing.T) {
		m := NewStatusBarModel("test")
		m.Start()
		time.Sleep(5 * time.Millisecond)
		if elapsed := m.Elapsed(); elapsed <= 0 {
			t.Errorf("Elapsed() = %v, want > 0", elapsed)
		}
	})

	t.Run("freezes after finish", func(t *testing.T) {
		m := NewStatusBarModel("test")
		m.startTime = time.Now().Add(-3 * time.Second)
		m.Finish()
		first := m.Elapsed()
		time.Sleep(5 * time.Millisecond)
		if got := m.Elapsed(); got != first {
			t.Errorf("Elapsed() moved after Finish: %v then %v", first, got)
		}
	})

	t.Run("reset clears", func(t *testing.T) {
		m := NewStatusBarModel("test")
		m.Start()
		m.Reset()
		if elapsed := m.Elapsed(); elapsed != 0 {
			t.Errorf("Elapsed() after Reset = %v, want 0", elapsed)
		}
	})
}

func TestStatusBarViewContainsScenarioName(t *testing.T) {
	m := NewStatusBarModel("my_cool_scenario")
	m.SetWidth(120)
	if view := m.View(); !strings.Contains(view, "my_cool_scenario") {
		t.Errorf("View() does not contain scenario name, got: %q", view)
	}
}

func TestStatusBarViewShowsModeAndPercent(t *testing.T) {
	tests := []struct {
		name    string
		mode    RunMode
		percent float64
		want    []string
	}{
		{"ready", ModeReady, 0, []string{"ready", "0%"}},
		{"running half", ModeRunning, 0.5, []string{"running", "50%"}},
		{"paused", ModePaused, 0.25, []string{"paused", "25%"}},
		{"done", ModeDone, 1, []string{"done", "100%"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewStatusBarModel("test")
			m.SetMode(tt.mode)
			m.SetProgress(tt.percent)
			m.SetWidth(140)
			view := m.View()
			for _, w := range tt.want {
				if !strings.Contains(view, w) {
					t.Errorf("View() missing %q, got: %q", w, view)
				}
			}
		})
	}
}

func TestStatusBarViewSpinnerOnlyWhileAnimating(t *testing.T) {
	m := NewStatusBarModel("test")
	m.SetWidth(140)
	if strings.Contains(m.View(), SpinnerFrames[0]) {
		t.Error("spinner shown while idle")
	}
	m.SetAnimating(true)
	m.AdvanceSpinner()
	if !strings.Contains(m.View(), SpinnerFrames[1]) {
		t.Errorf("spinner frame %q missing while animating", SpinnerFrames[1])
	}
}

func TestStatusBarViewMinutesFormat(t *testing.T) {
	m := NewStatusBarModel("test")
	m.startTime = time.Now().Add(-150 * time.Second)
	m.SetWidth(140)
	if view := m.View(); !strings.Contains(view, "2m30s") {
		t.Errorf("View() should format as '2m30s' for 150 seconds, got: %q", view)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0s"},
		{1500 * time.Millisecond, "1s"},
		{59 * time.Second, "59s"},
		{61 * time.Second, "1m1s"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestStatusBarSetWidthAffectsRendering(t *testing.T) {
	m := NewStatusBarModel("test")

	m.SetWidth(100)
	narrow := m.View()

	m.SetWidth(140)
	wide := m.View()

	if len(wide) <= len(narrow) {
		t.Errorf("wider SetWidth should produce longer output: narrow=%d, wide=%d", len(narrow), len(wide))
	}
}

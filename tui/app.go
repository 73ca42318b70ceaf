// ABOUTME: Top-level Bubble Tea AppModel that hosts a duck-sort session and composes the TUI panels.
// ABOUTME: Implements tea.Model; RunMsg makes the Bubble Tea goroutine the host loop for sort steps.
package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/2389-research/ducksort/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/oklog/ulid/v2"
)

// FocusTarget indicates which panel currently has keyboard focus.
type FocusTarget int

const (
	FocusPond FocusTarget = iota
	FocusLog
)

// DefaultFrameInterval is the repaint period.
const DefaultFrameInterval = 33 * time.Millisecond

// maxSpeed caps the speed keys.
const maxSpeed = 16.0

// helpLine lists the key bindings.
const helpLine = "s start  p pause  r resume  x stop  n step  k skip  g new ducks  +/- speed  0-9 highlight  tab focus  q quit"

// AppModel is the top-level Bubble Tea model. The session must only be
// driven from this model's Update.
type AppModel struct {
	sess   *session.Session
	name   string
	pond   PondPanelModel
	stats  StatsPanelModel
	log    LogPanelModel
	status StatusBarModel

	frame     time.Duration
	focus     FocusTarget
	mode      RunMode
	lastSeq   int
	lastRunID ulid.ULID
	width     int
	height    int
}

// NewAppModel creates an AppModel for sess. name is shown in the title and
// status bar.
func NewAppModel(sess *session.Session, name string) AppModel {
	m := AppModel{
		sess:   sess,
		name:   name,
		pond:   NewPondPanelModel(name),
		stats:  NewStatsPanelModel(),
		log:    NewLogPanelModel(200),
		status: NewStatusBarModel(name),
		frame:  DefaultFrameInterval,
		focus:  FocusPond,
	}
	m.refresh()
	return m
}

// Init implements tea.Model and starts the repaint ticker.
func (m AppModel) Init() tea.Cmd {
	return FrameCmd(m.frame)
}

// Update implements tea.Model.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case RunMsg:
		if msg.Fn != nil {
			msg.Fn()
		}
		m.refresh()
		return m, nil

	case FrameMsg:
		m.status.AdvanceSpinner()
		m.refresh()
		return m, FrameCmd(m.frame)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// refresh pulls the session state, new sort events, and any newly recorded run.
func (m *AppModel) refresh() {
	st := m.sess.State()
	m.pond.SetSnapshot(st.Pond)
	m.stats.SetState(st)
	m.status.SetProgress(st.Progress)
	m.status.SetAnimating(st.Animating)

	events := m.sess.Events()
	if n := len(events); n > 0 && events[n-1].Seq < m.lastSeq {
		m.lastSeq = 0
	}
	for _, evt := range events {
		if evt.Seq > m.lastSeq {
			m.log.Append(evt)
			m.lastSeq = evt.Seq
		}
	}

	if run, ok := m.sess.LastRun(); ok && run.RunID != m.lastRunID {
		m.lastRunID = run.RunID
		m.stats.SetLastRun(run)
		if run.Completed {
			m.log.Note(fmt.Sprintf("run %s sorted: %d comparisons, %d swaps", run.RunID, run.Comparisons, run.Swaps))
		} else {
			m.log.Note(fmt.Sprintf("run %s stopped after %d comparisons", run.RunID, run.Comparisons))
		}
	}

	if st.Finished && m.mode != ModeDone {
		m.mode = ModeDone
		m.status.Finish()
	}
	m.status.SetMode(m.mode)
}

// handleKeyMsg maps key bindings onto session operations.
func (m AppModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		m.sess.Close()
		return m, tea.Quit

	case "tab":
		if m.focus == FocusPond {
			m.focus = FocusLog
		} else {
			m.focus = FocusPond
		}
		m.log.SetFocused(m.focus == FocusLog)
		return m, nil

	case "s":
		m.sess.Start()
		m.lastSeq = 0
		m.mode = ModeRunning
		m.status.Start()
		m.log.Note("run started")

	case "p":
		if m.mode == ModeRunning || m.mode == ModeStepping {
			m.sess.Pause()
			m.mode = ModePaused
		}

	case "r":
		if m.mode == ModePaused || m.mode == ModeStepping {
			m.sess.Resume()
			m.mode = ModeRunning
		}

	case "x":
		m.sess.Stop()
		m.lastSeq = 0
		m.mode = ModeReady
		m.status.Reset()
		m.log.Note("run stopped, ducks back in line")

	case "n":
		if m.mode == ModeDone {
			break
		}
		if m.mode == ModeReady {
			m.lastSeq = 0
			m.status.Start()
		}
		m.sess.Step()
		m.mode = ModeStepping

	case "k":
		m.sess.Skip()

	case "g":
		m.sess.NewDucks(nil)
		m.lastSeq = 0
		m.mode = ModeReady
		m.status.Reset()
		m.log.Note("new ducks")

	case "+", "=":
		m.changeSpeed(2)

	case "-", "_":
		m.changeSpeed(0.5)

	default:
		if k, err := strconv.Atoi(key); err == nil && len(key) == 1 {
			if err := m.sess.Highlight(k); err != nil {
				m.log.Note(fmt.Sprintf("no duck at slot %d", k))
			}
		} else if m.focus == FocusLog {
			var cmd tea.Cmd
			m.log, cmd = m.log.Update(msg)
			return m, cmd
		}
	}

	m.refresh()
	return m, nil
}

func (m *AppModel) changeSpeed(factor float64) {
	v := min(m.sess.Speed()*factor, maxSpeed)
	if err := m.sess.SetSpeed(v); err != nil {
		m.log.Note(err.Error())
		return
	}
	m.log.Note(fmt.Sprintf("speed %.2fx", m.sess.Speed()))
}

// View implements tea.Model. Renders the full TUI layout with all panels.
func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	// Minimum terminal size guard to prevent layout overflow
	if m.width < 60 || m.height < 16 {
		return fmt.Sprintf("Terminal too small (%dx%d). Minimum: 60x16.", m.width, m.height)
	}

	barHeight := 2 // status bar + help line
	pondHeight := (m.height - barHeight) * 55 / 100
	bottomHeight := m.height - barHeight - pondHeight

	statsWidth := m.width * 40 / 100
	logWidth := m.width - statsWidth

	m.pond.SetSize(m.width, pondHeight)
	m.stats.SetSize(statsWidth, bottomHeight)
	m.log.SetSize(logWidth, bottomHeight)
	m.status.SetWidth(m.width)

	bottom := lipgloss.JoinHorizontal(lipgloss.Top, m.stats.View(), m.log.View())

	var b strings.Builder
	b.WriteString(m.pond.View())
	b.WriteString("\n")
	b.WriteString(bottom)
	b.WriteString("\n")
	b.WriteString(m.status.View())
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render(truncate(helpLine, m.width)))
	return b.String()
}

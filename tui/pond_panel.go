// ABOUTME: Bubble Tea sub-model that draws the pond snapshot onto a scaled character grid.
// ABOUTME: Each duck is its status icon over its value, coloured with lipgloss by status.
package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/2389-research/ducksort/pond"
)

// cell is one grid position. ink is false for open water.
type cell struct {
	ch     rune
	status DuckStatus
	ink    bool
}

// PondPanelModel displays the ducks at their current canvas positions.
type PondPanelModel struct {
	title  string
	snap   pond.Snapshot
	width  int
	height int
}

// NewPondPanelModel creates a pond panel with the given title.
func NewPondPanelModel(title string) PondPanelModel {
	return PondPanelModel{title: title}
}

// SetSnapshot replaces the scene to draw.
func (m *PondPanelModel) SetSnapshot(s pond.Snapshot) {
	m.snap = s
}

// SetSize sets the outer dimensions including the border.
func (m *PondPanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// View renders the panel.
func (m PondPanelModel) View() string {
	title := TitleStyle.Render(fmt.Sprintf("=== POND: %s ===", m.title))
	cols, rows := m.width-2, m.height-3
	if cols < 1 || rows < 2 {
		return BorderStyle.Render(title)
	}

	grid := layoutCells(m.snap, cols, rows)
	lines := make([]string, 0, rows+1)
	lines = append(lines, title)
	for _, row := range grid {
		lines = append(lines, renderRow(row))
	}
	return BorderStyle.Width(m.width - 2).Render(strings.Join(lines, "\n"))
}

// layoutCells maps canvas coordinates onto a cols x rows grid. The last row
// is the water line.
func layoutCells(s pond.Snapshot, cols, rows int) [][]cell {
	grid := make([][]cell, rows)
	for r := range grid {
		grid[r] = make([]cell, cols)
		for c := range grid[r] {
			grid[r][c] = cell{ch: ' '}
		}
	}
	for c := range grid[rows-1] {
		grid[rows-1][c] = cell{ch: '~'}
	}
	if s.Bounds.Width <= 0 || s.Bounds.Height <= 0 {
		return grid
	}

	place := func(v pond.View, status DuckStatus, label string) {
		col, row := project(s, v.X, v.Y, cols, rows-1)
		put(grid, row-1, col, status.Icon(), status)
		put(grid, row, col, label, status)
	}
	for _, d := range s.Ducks {
		place(d, StatusOf(d), strconv.Itoa(d.Value))
	}
	if s.Mother.Size > 0 {
		status := DuckMother
		if s.Mother.Highlighted {
			status = DuckHighlighted
		}
		place(s.Mother, status, "MA")
	}
	return grid
}

// project returns the grid cell for a canvas point, rows being the drawable
// height above the water line.
func project(s pond.Snapshot, x, y float64, cols, rows int) (int, int) {
	col := int(math.Round(x / s.Bounds.Width * float64(cols-1)))
	row := int(math.Round(y / s.Bounds.Height * float64(rows-1)))
	return clampInt(col, 0, cols-1), clampInt(row, 0, rows-1)
}

// put writes text centered on col. Off-grid runes are dropped.
func put(grid [][]cell, row, col int, text string, status DuckStatus) {
	if row < 0 || row >= len(grid) {
		return
	}
	runes := []rune(text)
	start := col - len(runes)/2
	for i, r := range runes {
		c := start + i
		if c < 0 || c >= len(grid[row]) {
			continue
		}
		grid[row][c] = cell{ch: r, status: status, ink: true}
	}
}

// renderRow styles runs of equal cells together.
func renderRow(row []cell) string {
	var b strings.Builder
	for i := 0; i < len(row); {
		j := i
		var run strings.Builder
		for j < len(row) && row[j].ink == row[i].ink && row[j].status == row[i].status {
			run.WriteRune(row[j].ch)
			j++
		}
		if row[i].ink {
			b.WriteString(StyleForStatus(row[i].status).Render(run.String()))
		} else {
			b.WriteString(WaterStyle.Render(run.String()))
		}
		i = j
	}
	return b.String()
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

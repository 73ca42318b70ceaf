// ABOUTME: Defines the DuckStatus enum for how a duck is drawn on the pond panel.
// ABOUTME: Provides String/Icon methods and the status derived from a duck's view flags.
package tui

import "github.com/2389-research/ducksort/pond"

// DuckStatus is the visual state of one duck.
type DuckStatus int

const (
	DuckIdle        DuckStatus = iota // waiting in line
	DuckComparing                     // being compared by the mother
	DuckHighlighted                   // flashed or pointed at
	DuckSorted                        // in its final slot
	DuckMother                        // the mother duck
)

// String returns the lowercase name of the status.
func (s DuckStatus) String() string {
	switch s {
	case DuckIdle:
		return "idle"
	case DuckComparing:
		return "comparing"
	case DuckHighlighted:
		return "highlighted"
	case DuckSorted:
		return "sorted"
	case DuckMother:
		return "mother"
	default:
		return "unknown"
	}
}

// Icon returns the glyph drawn above a duck's value.
func (s DuckStatus) Icon() string {
	switch s {
	case DuckIdle:
		return "o"
	case DuckComparing:
		return "?"
	case DuckHighlighted:
		return "*"
	case DuckSorted:
		return "#"
	case DuckMother:
		return "M"
	default:
		return "."
	}
}

// StatusOf maps a duck's flags to a single status. Comparing wins over
// highlighted, which wins over sorted.
func StatusOf(v pond.View) DuckStatus {
	switch {
	case v.Comparing:
		return DuckComparing
	case v.Highlighted:
		return DuckHighlighted
	case v.Sorted:
		return DuckSorted
	default:
		return DuckIdle
	}
}

// SpinnerFrames animate the status bar while a step is in flight.
var SpinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

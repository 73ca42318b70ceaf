// ABOUTME: Duck is a sortable baby duck (or the mother) placed on the pond canvas.
// ABOUTME: Implements every animator capability; state is guarded so renderers can read while animations write.
package pond

import (
	"sync"

	"github.com/2389-research/ducksort/animator"
)

// edgeMargin is added to half a duck's size when clamping it to the canvas.
const edgeMargin = 10

// Duck is one animated duck. The zero value is not usable; use NewDuck.
type Duck struct {
	mu          sync.RWMutex
	bounds      animator.Bounds
	pos         animator.Point
	home        animator.Point
	size        float64
	baseSize    float64
	value       int
	highlighted bool
	comparing   bool
	sorted      bool
}

// NewDuck places a duck at p. p also becomes its home slot.
func NewDuck(bounds animator.Bounds, p animator.Point, size float64, value int) *Duck {
	d := &Duck{bounds: bounds, size: size, baseSize: size, value: value}
	d.pos = d.clamp(p)
	d.home = d.pos
	return d
}

// View is an immutable copy of a duck's drawable state.
type View struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Size        float64 `json:"size"`
	Value       int     `json:"value"`
	Highlighted bool    `json:"highlighted,omitempty"`
	Comparing   bool    `json:"comparing,omitempty"`
	Sorted      bool    `json:"sorted,omitempty"`
}

// View returns the current drawable state.
func (d *Duck) View() View {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return View{
		X: d.pos.X, Y: d.pos.Y, Size: d.size, Value: d.value,
		Highlighted: d.highlighted, Comparing: d.comparing, Sorted: d.sorted,
	}
}

func (d *Duck) Position() animator.Point {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.pos
}

func (d *Duck) Size() float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.size
}

// Value returns the number the duck stands for.
func (d *Duck) Value() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.value
}

// MoveTo moves the duck, keeping it fully inside the canvas.
func (d *Duck) MoveTo(p animator.Point) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pos = d.clamp(p)
}

func (d *Duck) clamp(p animator.Point) animator.Point {
	return d.bounds.Clamp(p, d.size/2+edgeMargin)
}

// Home returns the slot the duck returns to on reset.
func (d *Duck) Home() animator.Point {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.home
}

// SetHome assigns a new home slot without moving the duck.
func (d *Duck) SetHome(p animator.Point) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.home = p
}

func (d *Duck) SetSize(size float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.size = size
}

func (d *Duck) SetHighlighted(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.highlighted = on
}

func (d *Duck) SetComparing(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.comparing = on
}

func (d *Duck) SetSorted(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sorted = on
}

// Reset returns the duck to its home slot, restores its size, and clears
// every flag.
func (d *Duck) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.size = d.baseSize
	d.pos = d.clamp(d.home)
	d.highlighted, d.comparing, d.sorted = false, false, false
}

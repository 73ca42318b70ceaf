// ABOUTME: Capability interfaces an animation target may implement.
// ABOUTME: Builders type-assert optional capabilities and skip effects a target does not support.
package animator

// Positionable is the minimum an animation target provides.
type Positionable interface {
	Position() Point
	Size() float64
	MoveTo(p Point)
}

// Highlightable targets can be visually emphasized.
type Highlightable interface {
	SetHighlighted(on bool)
}

// Comparable targets can show that they are being compared.
type Comparable interface {
	SetComparing(on bool)
}

// Sortable targets can show that they are in their final position.
type Sortable interface {
	SetSorted(on bool)
}

// Resizable targets can change their drawn size.
type Resizable interface {
	SetSize(size float64)
}

func setHighlighted(target any, on bool) {
	if h, ok := target.(Highlightable); ok {
		h.SetHighlighted(on)
	}
}

func setComparing(target any, on bool) {
	if c, ok := target.(Comparable); ok {
		c.SetComparing(on)
	}
}

func setSorted(target any, on bool) {
	if s, ok := target.(Sortable); ok {
		s.SetSorted(on)
	}
}

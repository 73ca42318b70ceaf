// ABOUTME: Pond lays out a row of baby ducks sized by value plus the mother duck above them.
// ABOUTME: Also generates random duck values and snapshots the scene for renderers.
package pond

import (
	"math/rand"

	"github.com/2389-research/ducksort/animator"
)

// Layout constants for the default canvas.
const (
	RowStartX   = 100
	RowY        = 200
	Spacing     = 70
	MotherX     = 500
	MotherY     = 100
	MotherSize  = 60
	MinDuckSize = 20
	MaxDuckSize = 50

	DefaultCount = 12
	MinValue     = 1
	MaxValue     = 100
)

// Pond is the scene: baby ducks in slot order and the mother duck.
// The Ducks slice is owned by whoever drives the sort; renderers should use
// Snapshot.
type Pond struct {
	Bounds animator.Bounds
	Ducks  []*Duck
	Mother *Duck
}

// New builds a pond for the given values on the default canvas.
func New(values []int) *Pond {
	return NewWithBounds(values, animator.DefaultBounds)
}

// NewWithBounds builds a pond on a custom canvas.
func NewWithBounds(values []int, bounds animator.Bounds) *Pond {
	p := &Pond{Bounds: bounds}
	p.Ducks = BabyDucks(bounds, values)
	p.Mother = NewDuck(bounds, animator.Point{X: MotherX, Y: MotherY}, MotherSize, 0)
	return p
}

// BabyDucks creates one duck per value, left to right, sized between
// MinDuckSize and MaxDuckSize by value. Equal values get the middle size.
func BabyDucks(bounds animator.Bounds, values []int) []*Duck {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	ducks := make([]*Duck, 0, len(values))
	for i, v := range values {
		norm := 0.5
		if hi != lo {
			norm = float64(v-lo) / float64(hi-lo)
		}
		size := MinDuckSize + norm*(MaxDuckSize-MinDuckSize)
		slot := animator.Point{X: RowStartX + float64(i)*Spacing, Y: RowY}
		ducks = append(ducks, NewDuck(bounds, slot, size, v))
	}
	return ducks
}

// RandomValues returns n values drawn uniformly from [MinValue, MaxValue].
func RandomValues(rng *rand.Rand, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = MinValue + rng.Intn(MaxValue-MinValue+1)
	}
	return out
}

// Values returns the duck values in current slot order.
func (p *Pond) Values() []int {
	out := make([]int, len(p.Ducks))
	for i, d := range p.Ducks {
		out[i] = d.Value()
	}
	return out
}

// Targets returns the ducks as animation targets.
func (p *Pond) Targets() []animator.Positionable {
	out := make([]animator.Positionable, len(p.Ducks))
	for i, d := range p.Ducks {
		out[i] = d
	}
	return out
}

// Snapshot is a consistent-enough copy of the scene for one frame.
type Snapshot struct {
	Bounds animator.Bounds `json:"bounds"`
	Ducks  []View          `json:"ducks"`
	Mother View            `json:"mother"`
}

// Snapshot copies the drawable state of every duck.
func (p *Pond) Snapshot() Snapshot {
	s := Snapshot{Bounds: p.Bounds, Ducks: make([]View, len(p.Ducks))}
	for i, d := range p.Ducks {
		s.Ducks[i] = d.View()
	}
	if p.Mother != nil {
		s.Mother = p.Mother.View()
	}
	return s
}

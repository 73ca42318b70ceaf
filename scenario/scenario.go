// ABOUTME: Scenario files describe a sort run in YAML: the values (or how to generate them) and timing.
// ABOUTME: Loaded with gopkg.in/yaml.v3; durations are written as Go duration strings like "1.5s".
package scenario

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/2389-research/ducksort/animator"
	"github.com/2389-research/ducksort/pond"
	"github.com/2389-research/ducksort/sortanim"
	"gopkg.in/yaml.v3"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid scenario")

// Effects toggles animation kinds. Nil fields mean enabled.
type Effects struct {
	Compare  *bool `yaml:"compare,omitempty"`
	Swap     *bool `yaml:"swap,omitempty"`
	Complete *bool `yaml:"complete,omitempty"`
}

// Canvas overrides the drawing area.
type Canvas struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Scenario is one run description.
type Scenario struct {
	Name   string `yaml:"name"`
	Values []int  `yaml:"values,omitempty"`
	Count  int    `yaml:"count,omitempty"` // random values when Values is empty
	Seed   int64  `yaml:"seed,omitempty"`  // 0 = time-based

	Speed            float64       `yaml:"speed,omitempty"`
	StepDelay        time.Duration `yaml:"step_delay,omitempty"`
	RetryDelay       time.Duration `yaml:"retry_delay,omitempty"`
	CompareDuration  time.Duration `yaml:"compare_duration,omitempty"`
	SwapDuration     time.Duration `yaml:"swap_duration,omitempty"`
	CompleteDuration time.Duration `yaml:"complete_duration,omitempty"`

	Effects Effects `yaml:"effects,omitempty"`
	Canvas  *Canvas `yaml:"canvas,omitempty"`
}

// Default returns the scenario used when no file is given.
func Default() Scenario {
	return Scenario{Name: "random", Count: pond.DefaultCount, Speed: 1}
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (Scenario, error) {
	s := Default()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// Load reads and parses a scenario file.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return Scenario{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Marshal encodes the scenario as YAML.
func (s Scenario) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal scenario: %w", err)
	}
	return data, nil
}

// Save writes the scenario to path.
func (s Scenario) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scenario %s: %w", path, err)
	}
	return nil
}

// Validate checks ranges.
func (s Scenario) Validate() error {
	if len(s.Values) == 0 && s.Count <= 0 {
		return fmt.Errorf("%w: need values or a positive count", ErrInvalid)
	}
	if s.Count < 0 {
		return fmt.Errorf("%w: count %d is negative", ErrInvalid, s.Count)
	}
	if s.Speed < 0 {
		return fmt.Errorf("%w: speed %v is negative", ErrInvalid, s.Speed)
	}
	for _, d := range []time.Duration{s.StepDelay, s.RetryDelay, s.CompareDuration, s.SwapDuration, s.CompleteDuration} {
		if d < 0 {
			return fmt.Errorf("%w: negative duration %s", ErrInvalid, d)
		}
	}
	if s.Canvas != nil && (s.Canvas.Width <= 0 || s.Canvas.Height <= 0) {
		return fmt.Errorf("%w: canvas %vx%v", ErrInvalid, s.Canvas.Width, s.Canvas.Height)
	}
	return nil
}

// ResolveValues returns the explicit values, or Count random values drawn
// with Seed.
func (s Scenario) ResolveValues() []int {
	if len(s.Values) > 0 {
		return append([]int(nil), s.Values...)
	}
	seed := s.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return pond.RandomValues(rand.New(rand.NewSource(seed)), s.Count)
}

// Bounds returns the canvas, falling back to the default.
func (s Scenario) Bounds() animator.Bounds {
	if s.Canvas == nil {
		return animator.DefaultBounds
	}
	return animator.Bounds{Width: s.Canvas.Width, Height: s.Canvas.Height}
}

// SortConfig applies the scenario's timing to an integration config.
func (s Scenario) SortConfig(base sortanim.Config) sortanim.Config {
	if s.StepDelay > 0 {
		base.StepDelay = s.StepDelay
	}
	if s.RetryDelay > 0 {
		base.RetryDelay = s.RetryDelay
	}
	if s.CompareDuration > 0 {
		base.CompareDuration = s.CompareDuration
	}
	if s.SwapDuration > 0 {
		base.SwapDuration = s.SwapDuration
	}
	if s.CompleteDuration > 0 {
		base.CompleteDuration = s.CompleteDuration
		base.CelebrateDuration = s.CompleteDuration
	}
	base.Bounds = s.Bounds()
	return base
}

// SortEffects converts the toggles to integration effects.
func (s Scenario) SortEffects() sortanim.Effects {
	on := func(b *bool) bool { return b == nil || *b }
	return sortanim.Effects{
		Compare:  on(s.Effects.Compare),
		Swap:     on(s.Effects.Swap),
		Complete: on(s.Effects.Complete),
	}
}

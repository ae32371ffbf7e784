package gauge

import "math"

const (
	// DefaultMin and DefaultMax are the domain of a confidence score.
	DefaultMin = 0.0
	DefaultMax = 1.0

	// DefaultRadius is the dial radius in pixels when the caller gives none.
	DefaultRadius = 80.0

	// PointerInset is how far the pointer tip stops short of the dial radius.
	PointerInset = 10.0
)

// Formatter turns a raw gauge value into its display string.
type Formatter func(value float64) string

// Spec describes one gauge to render.
type Spec struct {
	Value    float64
	MinValue float64
	MaxValue float64

	// Fake selects the warning palette entry instead of the positive one.
	Fake bool

	// Label is an optional caption drawn under the value text.
	Label string

	// Formatter overrides the renderer's default display text.
	Formatter Formatter
}

// NewSpec returns a spec over the default [0, 1] domain.
func NewSpec(value float64) Spec {
	return Spec{
		Value:    value,
		MinValue: DefaultMin,
		MaxValue: DefaultMax,
	}
}

// WithDomain returns a copy of s with the given bounds.
func (s Spec) WithDomain(min, max float64) Spec {
	s.MinValue = min
	s.MaxValue = max
	return s
}

// Validate reports whether the spec can be normalized.
func (s Spec) Validate() error {
	_, err := Normalize(s.Value, s.MinValue, s.MaxValue)
	return err
}

// Point is a position on the drawing surface in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dial places the gauge on a surface.
type Dial struct {
	Center Point
	Radius float64
}

// radius returns the dial radius, falling back to DefaultRadius.
func (d Dial) radius() float64 {
	if d.Radius <= 0 || math.IsNaN(d.Radius) {
		return DefaultRadius
	}
	return d.Radius
}

package gauge

import (
	"fmt"
	"math"
)

// Geometry is the derived drawing data for one render.
type Geometry struct {
	// Normalized is (value-min)/(max-min). It is not clamped unless the
	// caller asked for it, so out-of-range values overshoot the dial.
	Normalized float64 `json:"normalized"`

	// StartAngle and EndAngle bound the value arc, drawn anticlockwise
	// from StartAngle (π).
	StartAngle float64 `json:"start_angle"`
	EndAngle   float64 `json:"end_angle"`

	PointerAngle float64 `json:"pointer_angle"`
	Pointer      Point   `json:"pointer"`
	Center       Point   `json:"center"`
	Radius       float64 `json:"radius"`

	DisplayText string `json:"display_text"`
}

// Option tunes Compute.
type Option func(*computeOptions)

type computeOptions struct {
	formatter Formatter
	clamp     bool
}

// WithFormatter sets the default display formatter, used when the spec has
// no formatter of its own.
func WithFormatter(f Formatter) Option {
	return func(o *computeOptions) {
		o.formatter = f
	}
}

// WithClamp clamps the normalized value into [0, 1] before any angle math.
func WithClamp(clamp bool) Option {
	return func(o *computeOptions) {
		o.clamp = clamp
	}
}

// Normalize maps value onto its domain. Reversed domains are allowed; an
// empty or non-finite one is not.
func Normalize(value, min, max float64) (float64, error) {
	if !finite(min) || !finite(max) || max == min {
		return 0, fmt.Errorf("%w: min=%v max=%v", ErrInvalidDomain, min, max)
	}
	if !finite(value) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidValue, value)
	}
	return (value - min) / (max - min), nil
}

// Clamp limits n to [0, 1].
func Clamp(n float64) float64 {
	return math.Max(0, math.Min(1, n))
}

// ValueAngle is the canvas angle for a normalized position: π at 0, π/2 at
// 0.5 and 0 at 1.
func ValueAngle(normalized float64) float64 {
	return math.Pi * (1 - normalized)
}

// PointerEndpoint returns the pointer tip for the given angle, PointerInset
// pixels inside the dial radius.
func PointerEndpoint(center Point, radius, angle float64) Point {
	length := radius - PointerInset
	return Point{
		X: center.X + math.Cos(angle)*length,
		Y: center.Y + math.Sin(angle)*length,
	}
}

// Compute derives the full geometry for spec on dial.
func Compute(spec Spec, dial Dial, opts ...Option) (Geometry, error) {
	o := computeOptions{formatter: IntegerPercent}
	for _, opt := range opts {
		opt(&o)
	}

	n, err := Normalize(spec.Value, spec.MinValue, spec.MaxValue)
	if err != nil {
		return Geometry{}, err
	}
	if o.clamp {
		n = Clamp(n)
	}

	radius := dial.radius()
	angle := ValueAngle(n)

	return Geometry{
		Normalized:   n,
		StartAngle:   math.Pi,
		EndAngle:     angle,
		PointerAngle: angle,
		Pointer:      PointerEndpoint(dial.Center, radius, angle),
		Center:       dial.Center,
		Radius:       radius,
		DisplayText:  DisplayText(spec, o.formatter),
	}, nil
}

// DisplayText picks the spec's formatter, then fallback, then IntegerPercent.
func DisplayText(spec Spec, fallback Formatter) string {
	switch {
	case spec.Formatter != nil:
		return spec.Formatter(spec.Value)
	case fallback != nil:
		return fallback(spec.Value)
	default:
		return IntegerPercent(spec.Value)
	}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

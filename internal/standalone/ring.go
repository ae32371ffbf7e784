package standalone

import (
	"fmt"
	"math"

	"github.com/seenimoa/confgauge/internal/canvas"
	"github.com/seenimoa/confgauge/internal/chart"
	"github.com/seenimoa/confgauge/internal/gauge"
)

// RingOptions configures CreateGaugeChart. Nil bounds mean the [0, 1]
// domain and a nil value is 0.
type RingOptions struct {
	Value    *float64 `json:"value,omitempty"`
	MinValue *float64 `json:"minValue,omitempty"`
	MaxValue *float64 `json:"maxValue,omitempty"`
	Color    string   `json:"color,omitempty"`

	// Remainder colors the unfilled share; empty uses the stock gray.
	Remainder string `json:"remainder,omitempty"`

	// Clamp limits the filled share to [0, 1].
	Clamp bool `json:"clamp,omitempty"`
}

// RingFactory is the signature of CreateGaugeChart.
type RingFactory func(canvas.Surface, RingOptions) (*Ring, error)

// Ring is a half ring whose filled share tracks a value. It draws no
// pointer and no text.
type Ring struct {
	surface canvas.Surface
	opts    RingOptions
}

// ringOptions is the chart geometry of the fallback ring: a 75% cutout
// half circle opening downwards, starting at 9 o'clock.
func ringOptions() chart.Options {
	return chart.Options{
		Rotation:      chart.Float(-math.Pi / 2),
		Circumference: math.Pi,
		Cutout:        "75%",
	}
}

// CreateGaugeChart builds a ring on surface and draws it once.
func CreateGaugeChart(surface canvas.Surface, opts RingOptions) (*Ring, error) {
	if surface == nil {
		return nil, chart.ErrNilSurface
	}
	r := &Ring{surface: surface, opts: opts}
	if err := r.Draw(); err != nil {
		return nil, err
	}
	return r, nil
}

// Spec returns the gauge spec the ring currently shows.
func (r *Ring) Spec() gauge.Spec {
	s := gauge.NewSpec(deref(r.opts.Value, 0))
	return s.WithDomain(deref(r.opts.MinValue, gauge.DefaultMin), deref(r.opts.MaxValue, gauge.DefaultMax))
}

// Segments returns the filled and remaining shares.
func (r *Ring) Segments() (filled, remainder float64, err error) {
	n, err := r.normalized()
	if err != nil {
		return 0, 0, err
	}
	filled, remainder = gauge.Segments(n)
	return filled, remainder, nil
}

func (r *Ring) normalized() (float64, error) {
	s := r.Spec()
	n, err := gauge.Normalize(s.Value, s.MinValue, s.MaxValue)
	if err != nil {
		return 0, err
	}
	if r.opts.Clamp {
		n = gauge.Clamp(n)
	}
	return n, nil
}

// Draw clears the surface and strokes the two segments. Without Clamp an
// out-of-range value overshoots the half ring.
func (r *Ring) Draw() error {
	n, err := r.normalized()
	if err != nil {
		return fmt.Errorf("draw ring: %w", err)
	}

	w, h := float64(r.surface.Width()), float64(r.surface.Height())
	r.surface.ClearRect(0, 0, w, h)

	colors := gauge.DefaultRingColors
	if r.opts.Color != "" {
		colors.Accent = r.opts.Color
	}
	if r.opts.Remainder != "" {
		colors.Remainder = r.opts.Remainder
	}

	layout := chart.RingLayout(chart.Area{Right: w, Bottom: h}, ringOptions())
	chart.DrawShare(r.surface, layout, n, []string{colors.Accent, colors.Remainder}, 0)
	return canvas.Err(r.surface)
}

// SetValue changes the value and redraws.
func (r *Ring) SetValue(v float64) error {
	r.opts.Value = &v
	return r.Draw()
}

func deref(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

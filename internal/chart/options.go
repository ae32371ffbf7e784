package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/seenimoa/confgauge/internal/gauge"
)

// Options is the per-type and per-chart option bag. Zero or nil fields are
// unset and fall through to the type defaults on Merge.
type Options struct {
	// AspectRatio is width/height; callers sizing a surface from a width
	// use it to pick the height.
	AspectRatio float64 `json:"aspectRatio,omitempty"`

	// Rotation is the start of the first segment in radians, measured
	// clockwise from 12 o'clock.
	Rotation *float64 `json:"rotation,omitempty"`

	// Circumference is the total sweep in radians. Unset means a full ring.
	Circumference float64 `json:"circumference,omitempty"`

	// Cutout is the hollow centre, either a percentage of the outer radius
	// ("75%") or a radius in pixels ("40").
	Cutout string `json:"cutout,omitempty"`

	// Padding insets the chart area from every surface edge.
	Padding float64 `json:"padding,omitempty"`

	Animation  *Animation  `json:"animation,omitempty"`
	Plugins    *Plugins    `json:"plugins,omitempty"`
	ValueLabel *ValueLabel `json:"valueLabel,omitempty"`
}

// Animation flags. Rendering here is single-frame, so they are carried for
// callers that drive their own animation loop.
type Animation struct {
	AnimateRotate bool `json:"animateRotate"`
	AnimateScale  bool `json:"animateScale"`
}

// Plugins toggles the host's stock plugins.
type Plugins struct {
	Legend  Legend  `json:"legend"`
	Tooltip Tooltip `json:"tooltip"`
}

type Legend struct {
	Display bool `json:"display"`
}

type Tooltip struct {
	Enabled bool `json:"enabled"`
}

// ValueLabel configures the centred value text of gauge-like charts.
type ValueLabel struct {
	Formatter gauge.Formatter `json:"-"`
	Label     string          `json:"label,omitempty"`
}

// Float returns a pointer to f, for option literals.
func Float(f float64) *float64 {
	return &f
}

// Merge returns o with every field set in over replacing its own.
func (o Options) Merge(over Options) Options {
	if over.AspectRatio > 0 {
		o.AspectRatio = over.AspectRatio
	}
	if over.Rotation != nil {
		o.Rotation = Float(*over.Rotation)
	}
	if over.Circumference > 0 {
		o.Circumference = over.Circumference
	}
	if over.Cutout != "" {
		o.Cutout = over.Cutout
	}
	if over.Padding > 0 {
		o.Padding = over.Padding
	}
	if over.Animation != nil {
		a := *over.Animation
		o.Animation = &a
	}
	if over.Plugins != nil {
		p := *over.Plugins
		o.Plugins = &p
	}
	if over.ValueLabel != nil {
		merged := ValueLabel{}
		if o.ValueLabel != nil {
			merged = *o.ValueLabel
		}
		if over.ValueLabel.Formatter != nil {
			merged.Formatter = over.ValueLabel.Formatter
		}
		if over.ValueLabel.Label != "" {
			merged.Label = over.ValueLabel.Label
		}
		o.ValueLabel = &merged
	}
	return o
}

// RotationValue returns Rotation or 0.
func (o Options) RotationValue() float64 {
	if o.Rotation == nil {
		return 0
	}
	return *o.Rotation
}

// CircumferenceValue returns Circumference or a full turn.
func (o Options) CircumferenceValue() float64 {
	if o.Circumference <= 0 {
		return 2 * math.Pi
	}
	return math.Min(o.Circumference, 2*math.Pi)
}

// CutoutRadius resolves Cutout against an outer radius. Unparsable values
// give a pie with no hole.
func (o Options) CutoutRadius(outer float64) float64 {
	c := strings.TrimSpace(o.Cutout)
	if c == "" {
		return 0
	}
	if pct, ok := strings.CutSuffix(c, "%"); ok {
		f, err := strconv.ParseFloat(pct, 64)
		if err != nil {
			return 0
		}
		return outer * math.Max(0, math.Min(100, f)) / 100
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(c, "px"), 64)
	if err != nil {
		return 0
	}
	return math.Max(0, math.Min(outer, f))
}

// LabelText returns the configured value-label caption.
func (o Options) LabelText() string {
	if o.ValueLabel == nil {
		return ""
	}
	return o.ValueLabel.Label
}

// LabelFormatter returns the configured value formatter, or nil.
func (o Options) LabelFormatter() gauge.Formatter {
	if o.ValueLabel == nil {
		return nil
	}
	return o.ValueLabel.Formatter
}

// Package chart is a small ring-chart host: a registry of chart types, chart
// instances bound to a drawing surface, and the built-in doughnut type other
// types build on.
//
// Rendering runs in two explicit passes. Every controller implements
// Drawable; Render clears the surface, then calls RenderBase and
// RenderOverlay in that order. A type that extends the doughnut composes a
// DoughnutController for its base pass instead of inheriting from it.
package chart

import (
	"fmt"
	"math"
	"sync"

	"github.com/seenimoa/confgauge/internal/canvas"
)

// Drawable is the render pipeline of one chart type.
type Drawable interface {
	RenderBase(c *Chart) error
	RenderOverlay(c *Chart) error
}

// Dataset is one series of a chart.
type Dataset struct {
	Data            []float64 `json:"data,omitempty"`
	BackgroundColor []string  `json:"backgroundColor,omitempty"`
	BorderWidth     float64   `json:"borderWidth,omitempty"`

	// Value, MinValue and MaxValue carry a scalar reading for gauge-like
	// types. Nil bounds mean the [0, 1] domain.
	Value    *float64 `json:"value,omitempty"`
	MinValue *float64 `json:"minValue,omitempty"`
	MaxValue *float64 `json:"maxValue,omitempty"`
}

// Data is the dataset list of a chart.
type Data struct {
	Datasets []*Dataset `json:"datasets"`
}

// Config creates a chart.
type Config struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

// Area is the rectangle the chart draws in.
type Area struct {
	Left, Top, Right, Bottom float64
}

func (a Area) Width() float64  { return a.Right - a.Left }
func (a Area) Height() float64 { return a.Bottom - a.Top }

// Center returns the middle of the area.
func (a Area) Center() (x, y float64) {
	return (a.Left + a.Right) / 2, (a.Top + a.Bottom) / 2
}

// Chart is one chart instance drawing on one surface. Like the surface it
// owns, a chart is not safe for concurrent use; the listener list is the
// exception.
type Chart struct {
	typ        string
	surface    canvas.Surface
	data       *Data
	options    Options
	controller Drawable

	mu        sync.Mutex
	listeners []func(*Chart)
}

// New creates a chart of cfg.Type on surface, layering cfg.Options over the
// type defaults held by reg.
func New(reg *Registry, surface canvas.Surface, cfg Config) (*Chart, error) {
	if surface == nil {
		return nil, ErrNilSurface
	}
	if reg == nil {
		reg = Global()
	}

	factory, ok := reg.Controller(cfg.Type)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}
	defaults, _ := reg.Defaults(cfg.Type)

	data := cfg.Data
	return &Chart{
		typ:        cfg.Type,
		surface:    surface,
		data:       &data,
		options:    defaults.Merge(cfg.Options),
		controller: factory(),
	}, nil
}

// Type returns the chart type name.
func (c *Chart) Type() string { return c.typ }

// Surface returns the surface the chart draws on.
func (c *Chart) Surface() canvas.Surface { return c.surface }

// Controller returns the drawing controller of the chart type.
func (c *Chart) Controller() Drawable { return c.controller }

// Data returns the live dataset list. Changes show on the next Render.
func (c *Chart) Data() *Data { return c.data }

// Options returns the merged options.
func (c *Chart) Options() Options { return c.options }

// ChartArea returns the surface rectangle inside the padding.
func (c *Chart) ChartArea() Area {
	p := math.Max(0, c.options.Padding)
	return Area{
		Left:   p,
		Top:    p,
		Right:  math.Max(p, float64(c.surface.Width())-p),
		Bottom: math.Max(p, float64(c.surface.Height())-p),
	}
}

// Render clears the surface and runs the base and overlay passes.
func (c *Chart) Render() error {
	c.surface.ClearRect(0, 0, float64(c.surface.Width()), float64(c.surface.Height()))

	if err := c.controller.RenderBase(c); err != nil {
		return fmt.Errorf("render %s base: %w", c.typ, err)
	}
	if err := c.controller.RenderOverlay(c); err != nil {
		return fmt.Errorf("render %s overlay: %w", c.typ, err)
	}
	return canvas.Err(c.surface)
}

// Update re-renders the chart and then notifies the OnUpdate listeners.
// Listeners are not called when rendering fails.
func (c *Chart) Update() error {
	if err := c.Render(); err != nil {
		return err
	}

	c.mu.Lock()
	listeners := make([]func(*Chart), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(c)
	}
	return nil
}

// OnUpdate registers fn to run after every successful Update.
func (c *Chart) OnUpdate(fn func(*Chart)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Package engine picks how gauges are drawn. It registers the gauge chart
// type once, selects the plugin or standalone strategy from the outcome and
// hands the chosen Renderer to the API and CLI.
package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/seenimoa/confgauge/internal/canvas"
	"github.com/seenimoa/confgauge/internal/chart"
	"github.com/seenimoa/confgauge/internal/gauge"
	"github.com/seenimoa/confgauge/internal/gaugechart"
	"github.com/seenimoa/confgauge/internal/standalone"
)

// Renderer draws one gauge on a surface.
type Renderer interface {
	Name() string
	Render(surface canvas.Surface, spec gauge.Spec) error
}

// Measurer is implemented by renderers that can report the geometry they
// draw without drawing it.
type Measurer interface {
	Geometry(spec gauge.Spec, width, height int) (gauge.Geometry, error)
}

// Strategy names a renderer.
type Strategy string

const (
	StrategyPlugin     Strategy = "plugin"
	StrategyStandalone Strategy = "standalone"
)

// Format is an output encoding.
type Format string

const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatJSON Format = "json"
)

// Default surface size, matching the gauge aspect ratio.
const (
	DefaultWidth  = 300
	DefaultHeight = 200
)

// ErrPluginUnavailable is returned when the plugin renderer is requested
// but the gauge chart type could not be registered.
var ErrPluginUnavailable = errors.New("engine: gauge chart plugin unavailable")

// Options configures New.
type Options struct {
	// Host is the chart registry to install the gauge type on. Nil means
	// chart.Global().
	Host *chart.Registry

	// DisableHost forces the standalone strategy, as if no chart host
	// existed.
	DisableHost bool

	// Clamp limits out-of-range values to the dial on both paths.
	Clamp bool

	Palette    gauge.Palette
	RingColors gauge.RingColors

	// Radius is the standalone dial radius.
	Radius float64

	// TextFont and LabelFont are CSS font strings for the standalone dial.
	TextFont  string
	LabelFont string

	// Background paints SVG and PNG output; empty is transparent.
	Background string

	Logger logrus.FieldLogger
}

// Engine is the composition root of the renderers.
type Engine struct {
	opts         Options
	log          logrus.FieldLogger
	host         *chart.Registry
	registration gaugechart.Result

	strategy   Strategy
	renderer   Renderer
	plugin     *PluginRenderer
	standalone *standalone.Renderer
}

// New registers the gauge chart type and selects the strategy. A host that
// cannot take the plugin selects the standalone path; only unparsable fonts
// are an error.
func New(opts Options) (*Engine, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.RingColors.Accent == "" {
		opts.RingColors.Accent = gauge.DefaultRingColors.Accent
	}
	if opts.RingColors.Remainder == "" {
		opts.RingColors.Remainder = gauge.DefaultRingColors.Remainder
	}

	host := opts.Host
	if host == nil && !opts.DisableHost {
		host = chart.Global()
	}
	if opts.DisableHost {
		host = nil
	}

	sopts := standalone.Options{
		Palette: opts.Palette,
		Radius:  opts.Radius,
		Clamp:   opts.Clamp,
	}
	var err error
	if opts.TextFont != "" {
		if sopts.TextFont, err = canvas.ParseFont(opts.TextFont); err != nil {
			return nil, err
		}
	}
	if opts.LabelFont != "" {
		if sopts.LabelFont, err = canvas.ParseFont(opts.LabelFont); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		log:  log,
		host: host,
	}

	e.registration = gaugechart.Register(host, log,
		gaugechart.WithClamp(opts.Clamp),
		gaugechart.WithRingColors(opts.RingColors))

	// A type registered earlier on a shared host keeps its settings; the
	// standalone path follows them so both paths still agree.
	if reg := e.registration; reg.AlreadyPresent && reg.Clamp != opts.Clamp {
		log.WithFields(logrus.Fields{
			"requested": opts.Clamp,
			"effective": reg.Clamp,
		}).Warn("gauge chart type already registered with another clamp policy")
		opts.Clamp = reg.Clamp
		sopts.Clamp = reg.Clamp
	}
	e.opts = opts
	e.standalone = standalone.NewRenderer(sopts)

	if e.registration.Registered {
		e.plugin = NewPluginRenderer(host)
		e.strategy, e.renderer = StrategyPlugin, e.plugin
	} else {
		e.strategy, e.renderer = StrategyStandalone, e.standalone
	}

	log.WithFields(logrus.Fields{
		"strategy": e.strategy,
		"clamp":    opts.Clamp,
	}).Info("gauge renderer selected")
	return e, nil
}

// Strategy returns the selected strategy.
func (e *Engine) Strategy() Strategy { return e.strategy }

// Renderer returns the selected renderer.
func (e *Engine) Renderer() Renderer { return e.renderer }

// Host returns the chart registry carrying the gauge type, or nil on the
// standalone strategy.
func (e *Engine) Host() *chart.Registry {
	if e.plugin == nil {
		return nil
	}
	return e.host
}

// Registration returns the outcome of the one-time type registration.
func (e *Engine) Registration() gaugechart.Result { return e.registration }

// Clamp reports the clamp policy shared by both paths. On a host where the
// gauge type was registered earlier it is the policy of that registration.
func (e *Engine) Clamp() bool { return e.opts.Clamp }

// RendererFor returns the renderer for s. An empty strategy is the
// selected one.
func (e *Engine) RendererFor(s Strategy) (Renderer, error) {
	switch s {
	case "":
		return e.renderer, nil
	case StrategyStandalone:
		return e.standalone, nil
	case StrategyPlugin:
		if e.plugin == nil {
			return nil, ErrPluginUnavailable
		}
		return e.plugin, nil
	}
	return nil, fmt.Errorf("unknown strategy %q", s)
}

// NewRing draws the fallback half ring on surface.
func (e *Engine) NewRing(surface canvas.Surface, opts standalone.RingOptions) (*standalone.Ring, error) {
	if opts.Color == "" {
		opts.Color = e.opts.RingColors.Accent
	}
	if opts.Remainder == "" {
		opts.Remainder = e.opts.RingColors.Remainder
	}
	opts.Clamp = opts.Clamp || e.opts.Clamp

	factory := e.registration.Fallback
	if factory == nil {
		factory = standalone.CreateGaugeChart
	}
	return factory(surface, opts)
}

// Size fills in missing dimensions from the gauge aspect ratio.
func Size(width, height int) (int, int) {
	if width <= 0 && height <= 0 {
		return DefaultWidth, DefaultHeight
	}
	aspect := gaugechart.Defaults().AspectRatio
	if width <= 0 {
		width = int(float64(height) * aspect)
	}
	if height <= 0 {
		height = int(float64(width) / aspect)
	}
	return width, height
}

// Geometry computes the geometry the selected renderer draws for spec on a
// width×height surface.
func (e *Engine) Geometry(spec gauge.Spec, width, height int) (gauge.Geometry, error) {
	return e.GeometryFor(e.renderer, spec, width, height)
}

// GeometryFor computes the geometry r draws for spec. The display text and
// centre match the primitives r emits on a surface of the same size.
func (e *Engine) GeometryFor(r Renderer, spec gauge.Spec, width, height int) (gauge.Geometry, error) {
	width, height = Size(width, height)
	m, ok := r.(Measurer)
	if !ok {
		return gauge.Geometry{}, fmt.Errorf("renderer %q cannot report geometry", r.Name())
	}
	return m.Geometry(spec, width, height)
}

// RenderSVG draws spec with the selected renderer as an SVG document.
func (e *Engine) RenderSVG(spec gauge.Spec, width, height int) ([]byte, error) {
	return e.Render(e.renderer, FormatSVG, spec, width, height)
}

// RenderPNG draws spec with the selected renderer as a PNG image.
func (e *Engine) RenderPNG(spec gauge.Spec, width, height int) ([]byte, error) {
	return e.Render(e.renderer, FormatPNG, spec, width, height)
}

// RenderPrimitives draws spec on a recorder and returns its primitives.
func (e *Engine) RenderPrimitives(spec gauge.Spec, width, height int) ([]canvas.Primitive, error) {
	width, height = Size(width, height)
	rec := canvas.NewRecorder(width, height)
	if err := e.renderer.Render(rec, spec); err != nil {
		return nil, err
	}
	return rec.Primitives(), nil
}

// Render draws spec with r in the given format. Each call owns a fresh
// surface, so concurrent calls are safe.
func (e *Engine) Render(r Renderer, format Format, spec gauge.Spec, width, height int) ([]byte, error) {
	width, height = Size(width, height)

	switch format {
	case FormatSVG, "":
		s := canvas.NewSVG(width, height, e.opts.Background)
		if err := r.Render(s, spec); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if _, err := s.WriteTo(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case FormatPNG:
		s := canvas.NewRaster(width, height, e.opts.Background)
		defer s.Close()
		if err := r.Render(s, spec); err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := s.EncodePNG(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	case FormatJSON:
		rec := canvas.NewRecorder(width, height)
		if err := r.Render(rec, spec); err != nil {
			return nil, err
		}
		out, err := json.Marshal(rec.Primitives())
		if err != nil {
			return nil, pkgerrors.Wrap(err, "failed to encode primitives")
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatSVG, FormatPNG, FormatJSON:
		return f, nil
	case "":
		return FormatSVG, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	}
	return "image/svg+xml"
}

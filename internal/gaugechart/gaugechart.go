// Package gaugechart adds the "gauge" chart type to a chart.Registry: a
// half doughnut with the value printed in the middle.
package gaugechart

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/seenimoa/confgauge/internal/canvas"
	"github.com/seenimoa/confgauge/internal/chart"
	"github.com/seenimoa/confgauge/internal/gauge"
	"github.com/seenimoa/confgauge/internal/standalone"
)

// TypeGauge is the registered chart type name.
const TypeGauge = "gauge"

const labelOffset = 30.0

var (
	textFont  = canvas.MustParseFont("24px Arial, sans-serif")
	labelFont = canvas.MustParseFont("16px Arial, sans-serif")
)

// Defaults returns the stock options of the gauge type.
func Defaults() chart.Options {
	return chart.Options{
		AspectRatio:   1.5,
		Rotation:      chart.Float(-math.Pi / 2),
		Circumference: math.Pi,
		Cutout:        "75%",
		Animation:     &chart.Animation{AnimateRotate: true, AnimateScale: true},
		Plugins: &chart.Plugins{
			Legend:  chart.Legend{Display: false},
			Tooltip: chart.Tooltip{Enabled: false},
		},
	}
}

// Controller draws a gauge chart. The base pass is the doughnut's; the
// overlay prints the value text.
type Controller struct {
	Colors gauge.RingColors
	Clamp  bool

	base chart.DoughnutController
}

// RenderBase draws the ring. A sole dataset that carries a Value but no
// Data is drawn as its filled and remaining shares; without Clamp an
// out-of-range value overshoots the half ring like the standalone dial.
func (g *Controller) RenderBase(c *chart.Chart) error {
	datasets := c.Data().Datasets
	if len(datasets) != 1 || datasets[0] == nil || len(datasets[0].Data) > 0 || datasets[0].Value == nil {
		return g.base.RenderBase(c)
	}

	ds := datasets[0]
	n, err := g.normalized(ds)
	if err != nil {
		return err
	}

	colors := ds.BackgroundColor
	if len(colors) == 0 {
		colors = []string{g.Colors.Accent, g.Colors.Remainder}
	}

	l := chart.RingLayout(c.ChartArea(), c.Options())
	chart.DrawShare(c.Surface(), l, n, colors, ds.BorderWidth)
	return nil
}

// RenderOverlay prints the value, and the label below it, in the middle of
// the chart area. Charts with more or fewer than one dataset get no text.
func (g *Controller) RenderOverlay(c *chart.Chart) error {
	datasets := c.Data().Datasets
	if len(datasets) != 1 || datasets[0] == nil {
		return nil
	}

	geo, err := g.geometry(c, datasets[0])
	if err != nil {
		return err
	}

	cx, cy := geo.Center.X, geo.Center.Y
	s := c.Surface()
	s.FillText(geo.DisplayText, cx, cy, canvas.TextStyle{
		Font:     textFont,
		Color:    "#333",
		Align:    canvas.AlignCenter,
		Baseline: canvas.BaselineMiddle,
	})
	if label := c.Options().LabelText(); label != "" {
		s.FillText(label, cx, cy+labelOffset, canvas.TextStyle{
			Font:     labelFont,
			Color:    "#777",
			Align:    canvas.AlignCenter,
			Baseline: canvas.BaselineMiddle,
		})
	}
	return nil
}

// geometry is the gauge reading of ds placed on the chart area: the text
// sits at the area centre and the radius is the middle of the ring band.
func (g *Controller) geometry(c *chart.Chart, ds *chart.Dataset) (gauge.Geometry, error) {
	spec := specFor(ds)
	spec.Formatter = c.Options().LabelFormatter()

	l := chart.RingLayout(c.ChartArea(), c.Options())
	cx, cy := c.ChartArea().Center()
	dial := gauge.Dial{
		Center: gauge.Point{X: cx, Y: cy},
		Radius: (l.Outer + l.Inner) / 2,
	}
	return gauge.Compute(spec, dial,
		gauge.WithFormatter(gauge.DecimalPercent),
		gauge.WithClamp(g.Clamp))
}

// Geometry reports the reading a gauge chart prints: the display text, the
// chart-area centre and the normalized value under the controller's clamp
// policy. It fails for charts of another type or without exactly one
// dataset.
func Geometry(c *chart.Chart) (gauge.Geometry, error) {
	g, ok := c.Controller().(*Controller)
	if !ok {
		return gauge.Geometry{}, fmt.Errorf("%w: %q is not a gauge chart", chart.ErrUnknownType, c.Type())
	}
	datasets := c.Data().Datasets
	if len(datasets) != 1 || datasets[0] == nil {
		return gauge.Geometry{}, fmt.Errorf("gauge chart needs exactly one dataset, has %d", len(datasets))
	}
	return g.geometry(c, datasets[0])
}

func (g *Controller) normalized(ds *chart.Dataset) (float64, error) {
	spec := specFor(ds)
	n, err := gauge.Normalize(spec.Value, spec.MinValue, spec.MaxValue)
	if err != nil {
		return 0, err
	}
	if g.Clamp {
		n = gauge.Clamp(n)
	}
	return n, nil
}

// specFor reads the scalar reading of a dataset. A missing value is 0 and
// missing bounds are the [0, 1] domain.
func specFor(ds *chart.Dataset) gauge.Spec {
	spec := gauge.NewSpec(0)
	if ds.Value != nil {
		spec.Value = *ds.Value
	}
	if ds.MinValue != nil {
		spec.MinValue = *ds.MinValue
	}
	if ds.MaxValue != nil {
		spec.MaxValue = *ds.MaxValue
	}
	return spec
}

// UpdateGauge stores value on the sole dataset of a gauge chart and
// re-renders it. Charts of another type, or without datasets, are left
// untouched and it reports false.
func UpdateGauge(c *chart.Chart, value float64) bool {
	if c == nil || c.Type() != TypeGauge || len(c.Data().Datasets) == 0 {
		return false
	}
	ds := c.Data().Datasets[0]
	if ds == nil {
		return false
	}
	ds.Value = &value
	return c.Update() == nil
}

// Option configures Register.
type Option func(*Controller)

// WithClamp clamps out-of-range values onto the dial.
func WithClamp(clamp bool) Option {
	return func(c *Controller) {
		c.Clamp = clamp
	}
}

// WithRingColors overrides the accent and remainder colors.
func WithRingColors(colors gauge.RingColors) Option {
	return func(c *Controller) {
		c.Colors = colors
	}
}

// Result reports what Register did.
type Result struct {
	// Registered is true when the host exposes the gauge type.
	Registered bool

	// AlreadyPresent is true when the type was registered before the call.
	AlreadyPresent bool

	// Clamp and Colors are what the registered controller draws with. When
	// the type was already present they come from the earlier registration,
	// not from the options of this call.
	Clamp  bool
	Colors gauge.RingColors

	// Fallback is set when the gauge type is unavailable; callers draw a
	// ring with it instead.
	Fallback standalone.RingFactory
}

// Register installs the gauge type on host unless it is already there.
// It never fails: when host is nil or refuses the controller, it logs a
// warning and returns the standalone ring factory as the fallback.
func Register(host *chart.Registry, log logrus.FieldLogger, opts ...Option) Result {
	if log == nil {
		log = logrus.StandardLogger()
	}
	fallback := func(reason string) Result {
		log.WithField("reason", reason).Warn("gauge chart type not supported, falling back to ring renderer")
		return Result{Fallback: standalone.CreateGaugeChart}
	}

	if host == nil {
		return fallback("no chart host")
	}
	proto := Controller{Colors: gauge.DefaultRingColors}
	for _, opt := range opts {
		opt(&proto)
	}

	if factory, ok := host.Controller(TypeGauge); ok {
		res := Result{Registered: true, AlreadyPresent: true, Clamp: proto.Clamp, Colors: proto.Colors}
		if existing, ok := factory().(*Controller); ok {
			res.Clamp, res.Colors = existing.Clamp, existing.Colors
		}
		if res.Clamp != proto.Clamp || res.Colors != proto.Colors {
			log.WithFields(logrus.Fields{
				"type":  TypeGauge,
				"clamp": res.Clamp,
			}).Debug("chart type already registered, ignoring controller options")
		}
		return res
	}

	host.SetDefaults(TypeGauge, Defaults())
	err := host.RegisterController(TypeGauge, func() chart.Drawable {
		ctrl := proto
		return &ctrl
	})
	if err != nil {
		return fallback(err.Error())
	}

	if _, ok := host.Controller(TypeGauge); !ok {
		return fallback("controller not exposed after registration")
	}
	log.WithField("type", TypeGauge).Debug("registered chart type")
	return Result{Registered: true, Clamp: proto.Clamp, Colors: proto.Colors}
}

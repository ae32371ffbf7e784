package standalone

import (
	"math"

	"github.com/seenimoa/confgauge/internal/canvas"
	"github.com/seenimoa/confgauge/internal/gauge"
)

// Styling of the standalone dial.
const (
	DefaultBottomMargin = 20.0

	TrackColor   = "#e0e0e0"
	TrackWidth   = 20.0
	PivotRadius  = 5.0
	PivotColor   = "#333"
	PointerWidth = 3.0
	TextColor    = "#333"
	LabelColor   = "#777"

	textOffset  = 50.0
	labelOffset = 72.0
)

var (
	textFont  = canvas.MustParseFont("bold 24px Arial")
	labelFont = canvas.MustParseFont("14px Arial")
)

// Options tunes Draw. The zero value is the stock dial.
type Options struct {
	Palette gauge.Palette

	// Radius of the dial; zero means gauge.DefaultRadius.
	Radius float64

	// BottomMargin is the distance from the pivot to the bottom edge.
	BottomMargin float64

	Clamp bool

	// TextFont and LabelFont replace the stock fonts when set.
	TextFont  canvas.Font
	LabelFont canvas.Font
}

func (o Options) palette() gauge.Palette {
	p := o.Palette
	if p.Positive == "" {
		p.Positive = gauge.DefaultPalette.Positive
	}
	if p.Warning == "" {
		p.Warning = gauge.DefaultPalette.Warning
	}
	return p
}

func (o Options) fonts() (text, label canvas.Font) {
	text, label = textFont, labelFont
	if o.TextFont.Size > 0 {
		text = o.TextFont
	}
	if o.LabelFont.Size > 0 {
		label = o.LabelFont
	}
	return text, label
}

// Geometry is what Draw computes for spec on a w×h surface.
func (o Options) Geometry(spec gauge.Spec, w, h int) (gauge.Geometry, error) {
	return gauge.Compute(spec, o.Dial(w, h),
		gauge.WithFormatter(gauge.IntegerPercent),
		gauge.WithClamp(o.Clamp))
}

// Dial returns where Draw puts the gauge on a w×h surface.
func (o Options) Dial(w, h int) gauge.Dial {
	margin := o.BottomMargin
	if margin <= 0 {
		margin = DefaultBottomMargin
	}
	return gauge.Dial{
		Center: gauge.Point{X: float64(w) / 2, Y: float64(h) - margin},
		Radius: o.Radius,
	}
}

// DrawGaugeChart looks up elementID in doc and draws the score on it. It
// reports false, leaving the surface untouched, when the element does not
// exist or the score cannot be drawn.
func DrawGaugeChart(doc *canvas.Document, elementID string, score float64, isFake bool) bool {
	if doc == nil {
		return false
	}
	surface, ok := doc.GetElementByID(elementID)
	if !ok {
		return false
	}

	spec := gauge.NewSpec(score)
	spec.Fake = isFake
	return Draw(surface, spec, Options{}) == nil
}

// Draw clears surface and paints the complete dial for spec: track, value
// arc, pivot, pointer and percentage text, plus the label when set. An
// invalid spec is reported before anything is cleared.
func Draw(surface canvas.Surface, spec gauge.Spec, opts Options) error {
	w, h := surface.Width(), surface.Height()
	g, err := opts.Geometry(spec, w, h)
	if err != nil {
		return err
	}

	surface.ClearRect(0, 0, float64(w), float64(h))

	cx, cy, r := g.Center.X, g.Center.Y, g.Radius

	surface.StrokeArc(cx, cy, r, math.Pi, 0, false, canvas.Stroke{Color: TrackColor, Width: TrackWidth})
	surface.StrokeArc(cx, cy, r, g.StartAngle, g.EndAngle, true, canvas.Stroke{
		Color: opts.palette().For(spec.Fake),
		Width: TrackWidth,
	})

	surface.FillCircle(cx, cy, PivotRadius, PivotColor)
	surface.StrokeLine(cx, cy, g.Pointer.X, g.Pointer.Y, canvas.Stroke{Color: PivotColor, Width: PointerWidth})

	tf, lf := opts.fonts()
	surface.FillText(g.DisplayText, cx, cy+textOffset, canvas.TextStyle{
		Font:  tf,
		Color: TextColor,
		Align: canvas.AlignCenter,
	})
	if spec.Label != "" {
		surface.FillText(spec.Label, cx, cy+labelOffset, canvas.TextStyle{
			Font:  lf,
			Color: LabelColor,
			Align: canvas.AlignCenter,
		})
	}

	return canvas.Err(surface)
}

// Renderer draws gauges with Draw.
type Renderer struct {
	Options Options
}

// NewRenderer returns a standalone renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{Options: opts}
}

func (r *Renderer) Name() string { return "standalone" }

// Render draws spec on surface with the pivot centred vertically when no
// margin is configured, so the full dial fits.
func (r *Renderer) Render(surface canvas.Surface, spec gauge.Spec) error {
	return Draw(surface, spec, r.placed(surface.Height()))
}

// Geometry is the geometry Render draws for spec on a w×h surface.
func (r *Renderer) Geometry(spec gauge.Spec, w, h int) (gauge.Geometry, error) {
	return r.placed(h).Geometry(spec, w, h)
}

func (r *Renderer) placed(h int) Options {
	opts := r.Options
	if opts.BottomMargin <= 0 {
		opts.BottomMargin = float64(h) / 2
	}
	return opts
}

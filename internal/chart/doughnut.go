package chart

import (
	"math"

	"github.com/seenimoa/confgauge/internal/canvas"
	"github.com/seenimoa/confgauge/internal/gauge"
)

const (
	defaultSegmentColor = "rgba(0, 0, 0, 0.1)"
	borderColor         = "#ffffff"
)

// DoughnutDefaults are the stock options of the doughnut type.
func DoughnutDefaults() Options {
	return Options{
		AspectRatio:   1,
		Rotation:      Float(0),
		Circumference: 2 * math.Pi,
		Cutout:        "50%",
		Animation:     &Animation{AnimateRotate: true, AnimateScale: false},
		Plugins: &Plugins{
			Legend:  Legend{Display: true},
			Tooltip: Tooltip{Enabled: true},
		},
	}
}

// Layout is the ring placement inside a chart area.
type Layout struct {
	Center gauge.Point

	Outer float64
	Inner float64

	// Start is the canvas angle of the first segment; Sweep is the total
	// angle covered clockwise from it.
	Start float64
	Sweep float64
}

// RingLayout fits the ring described by o into area. The ring is scaled so
// the bounding box of its visible sweep fills the area.
func RingLayout(area Area, o Options) Layout {
	start := o.RotationValue() - math.Pi/2
	sweep := o.CircumferenceValue()
	minX, minY, maxX, maxY := arcBounds(start, sweep, o.CutoutRadius(1))

	outer := math.Min(area.Width()/(maxX-minX), area.Height()/(maxY-minY))
	outer = math.Max(0, outer)

	cx, cy := area.Center()
	return Layout{
		Center: gauge.Point{
			X: cx - (minX+maxX)/2*outer,
			Y: cy - (minY+maxY)/2*outer,
		},
		Outer: outer,
		Inner: o.CutoutRadius(outer),
		Start: start,
		Sweep: sweep,
	}
}

// arcBounds is the bounding box of a unit ring sector with the given
// inner radius ratio.
func arcBounds(start, sweep, inner float64) (minX, minY, maxX, maxY float64) {
	minX, minY, maxX, maxY = math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)
	add := func(x, y float64) {
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	end := start + sweep
	for _, a := range []float64{start, end} {
		add(math.Cos(a), math.Sin(a))
		add(inner*math.Cos(a), inner*math.Sin(a))
	}
	// Axis crossings inside the sweep reach the outer edge.
	first := math.Ceil(start/(math.Pi/2)) * (math.Pi / 2)
	for a := first; a < end; a += math.Pi / 2 {
		add(math.Cos(a), math.Sin(a))
	}
	return minX, minY, maxX, maxY
}

// DoughnutController draws each dataset as a concentric ring of segments.
// It has no overlay.
type DoughnutController struct{}

func (DoughnutController) RenderBase(c *Chart) error {
	datasets := c.Data().Datasets
	if len(datasets) == 0 {
		return nil
	}

	l := RingLayout(c.ChartArea(), c.Options())
	for i, ds := range datasets {
		if ds == nil {
			continue
		}
		DrawRing(c.Surface(), l, i, len(datasets), ds.Data, ds.BackgroundColor, ds.BorderWidth)
	}
	return nil
}

func (DoughnutController) RenderOverlay(*Chart) error { return nil }

// DrawRing strokes one dataset's segments on ring index of count. Each
// segment spans a share of the layout sweep proportional to its value;
// non-positive values take no space.
func DrawRing(s canvas.Surface, l Layout, index, count int, data []float64, colors []string, borderWidth float64) {
	if count < 1 || l.Outer <= 0 {
		return
	}

	var total float64
	for _, v := range data {
		if v > 0 {
			total += v
		}
	}
	if total == 0 {
		return
	}

	band := (l.Outer - l.Inner) / float64(count)
	outer := l.Outer - float64(index)*band
	inner := outer - band
	mid := (outer + inner) / 2

	angle := l.Start
	for i, v := range data {
		if v <= 0 {
			continue
		}
		next := angle + l.Sweep*v/total
		s.StrokeArc(l.Center.X, l.Center.Y, mid, angle, next, false, canvas.Stroke{
			Color: segmentColor(colors, i),
			Width: band,
		})
		if borderWidth > 0 {
			drawBorder(s, l.Center, inner, outer, angle, borderWidth)
			drawBorder(s, l.Center, inner, outer, next, borderWidth)
		}
		angle = next
	}
}

// DrawShare strokes a single ring showing share n of the layout sweep in
// the first color and the rest in the second. Shares inside [0, 1] are
// drawn exactly like DrawRing. Outside it the filled arc overshoots: it is
// stroked over Sweep·n with canvas arc semantics, on top of the whole track
// when n is negative and with no remainder when n exceeds 1.
func DrawShare(s canvas.Surface, l Layout, n float64, colors []string, borderWidth float64) {
	if n >= 0 && n <= 1 {
		filled, remainder := gauge.Segments(n)
		DrawRing(s, l, 0, 1, []float64{filled, remainder}, colors, borderWidth)
		return
	}
	if l.Outer <= 0 {
		return
	}

	band := l.Outer - l.Inner
	mid := (l.Outer + l.Inner) / 2
	end := l.Start + l.Sweep*n
	if n < 0 {
		s.StrokeArc(l.Center.X, l.Center.Y, mid, l.Start, l.Start+l.Sweep, false, canvas.Stroke{
			Color: segmentColor(colors, 1),
			Width: band,
		})
	}
	s.StrokeArc(l.Center.X, l.Center.Y, mid, l.Start, end, false, canvas.Stroke{
		Color: segmentColor(colors, 0),
		Width: band,
	})
	if borderWidth > 0 {
		drawBorder(s, l.Center, l.Inner, l.Outer, l.Start, borderWidth)
		drawBorder(s, l.Center, l.Inner, l.Outer, end, borderWidth)
	}
}

func drawBorder(s canvas.Surface, c gauge.Point, inner, outer, angle, width float64) {
	cos, sin := math.Cos(angle), math.Sin(angle)
	s.StrokeLine(c.X+inner*cos, c.Y+inner*sin, c.X+outer*cos, c.Y+outer*sin, canvas.Stroke{
		Color: borderColor,
		Width: width,
	})
}

func segmentColor(colors []string, i int) string {
	if len(colors) == 0 {
		return defaultSegmentColor
	}
	return colors[i%len(colors)]
}

package canvas

import (
	"image"
	"io"
	"math"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Raster is a Surface backed by a gogpu/gg software context. Drawing
// errors are sticky: the first one is kept and returned by Err.
type Raster struct {
	dc         *gg.Context
	background string
	fonts      *FontBook
	err        error
}

// NewRaster returns a transparent raster surface, or one painted with
// background when it is non-empty.
func NewRaster(width, height int, background string) *Raster {
	r := &Raster{
		dc:         gg.NewContext(width, height),
		background: background,
		fonts:      DefaultFontBook(),
	}
	r.ClearRect(0, 0, float64(width), float64(height))
	return r
}

func (r *Raster) Width() int  { return r.dc.Width() }
func (r *Raster) Height() int { return r.dc.Height() }

// Err returns the first drawing error.
func (r *Raster) Err() error { return r.err }

func (r *Raster) ClearRect(x, y, w, h float64) {
	fill := gg.Transparent
	if r.background != "" {
		c, err := ParseColor(r.background)
		if err != nil {
			r.fail(err)
			return
		}
		fill = gg.FromColor(c)
	}

	if coversAll(x, y, w, h, r.Width(), r.Height()) {
		r.dc.ClearWithColor(fill)
		return
	}

	x0, y0 := max(0, int(math.Floor(x))), max(0, int(math.Floor(y)))
	x1, y1 := min(r.Width(), int(math.Ceil(x+w))), min(r.Height(), int(math.Ceil(y+h)))
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			r.dc.SetPixel(px, py, fill)
		}
	}
}

func (r *Raster) StrokeArc(cx, cy, radius, start, end float64, anticlockwise bool, s Stroke) {
	from, to := ArcSweep(start, end, anticlockwise)
	if to-from <= 0 || radius <= 0 {
		return
	}
	if !r.pen(s) {
		return
	}
	r.dc.ClearPath()
	r.dc.DrawArc(cx, cy, radius, from, to)
	r.fail(r.dc.Stroke())
}

func (r *Raster) StrokeLine(x1, y1, x2, y2 float64, s Stroke) {
	if !r.pen(s) {
		return
	}
	r.dc.ClearPath()
	r.dc.DrawLine(x1, y1, x2, y2)
	r.fail(r.dc.Stroke())
}

func (r *Raster) FillCircle(cx, cy, radius float64, color string) {
	if !r.color(color) {
		return
	}
	r.dc.ClearPath()
	r.dc.DrawCircle(cx, cy, radius)
	r.fail(r.dc.Fill())
}

func (r *Raster) FillText(s string, x, y float64, ts TextStyle) {
	face, err := r.fonts.Face(ts.Font)
	if err != nil {
		r.fail(err)
		return
	}
	if !r.color(ts.Color) {
		return
	}

	var ax, ay float64
	switch ts.Align {
	case AlignCenter:
		ax = 0.5
	case AlignRight:
		ax = 1
	}
	switch ts.Baseline {
	case BaselineMiddle:
		ay = 0.5
	case BaselineTop:
		ay = 1
	}

	r.dc.SetFont(face)
	r.dc.DrawStringAnchored(s, x, y, ax, ay)
}

// Image returns the rendered pixels.
func (r *Raster) Image() image.Image {
	return r.dc.Image()
}

// EncodePNG writes the surface as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	if r.err != nil {
		return pkgerrors.Wrap(r.err, "raster has a drawing error")
	}
	return pkgerrors.Wrap(r.dc.EncodePNG(w), "failed to encode PNG")
}

// Close releases the gg context.
func (r *Raster) Close() error {
	return r.dc.Close()
}

func (r *Raster) pen(s Stroke) bool {
	if !r.color(s.Color) {
		return false
	}
	r.dc.SetLineWidth(s.Width)
	r.dc.SetLineCap(gg.LineCapButt)
	return true
}

func (r *Raster) color(s string) bool {
	c, err := ParseColor(s)
	if err != nil {
		r.fail(err)
		return false
	}
	r.dc.SetColor(c)
	return true
}

func (r *Raster) fail(err error) {
	if err != nil && r.err == nil {
		r.err = err
	}
}

// FontBook hands out gg font faces. Every family maps onto the Go fonts,
// regular or bold; faces are cached per weight and size.
type FontBook struct {
	mu      sync.Mutex
	regular *text.FontSource
	bold    *text.FontSource
	faces   map[fontKey]text.Face
}

type fontKey struct {
	bold bool
	size float64
}

var (
	defaultBook     *FontBook
	defaultBookErr  error
	defaultBookOnce sync.Once
)

// DefaultFontBook returns the process-wide font book. Font parsing happens
// on first use.
func DefaultFontBook() *FontBook {
	defaultBookOnce.Do(func() {
		defaultBook, defaultBookErr = NewFontBook(goregular.TTF, gobold.TTF)
	})
	if defaultBookErr != nil {
		return &FontBook{}
	}
	return defaultBook
}

// NewFontBook parses the regular and bold TrueType data.
func NewFontBook(regular, bold []byte) (*FontBook, error) {
	reg, err := text.NewFontSource(regular)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to parse regular font")
	}
	b, err := text.NewFontSource(bold)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to parse bold font")
	}
	return &FontBook{regular: reg, bold: b, faces: make(map[fontKey]text.Face)}, nil
}

// Face returns a face for the font's weight and size.
func (fb *FontBook) Face(f Font) (text.Face, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	src := fb.regular
	if f.Bold {
		src = fb.bold
	}
	if src == nil {
		return nil, pkgerrors.New("font book has no fonts loaded")
	}

	size := f.Size
	if size <= 0 {
		size = 12
	}
	key := fontKey{bold: f.Bold, size: size}
	if face, ok := fb.faces[key]; ok {
		return face, nil
	}
	face := src.Face(size)
	fb.faces[key] = face
	return face, nil
}

package canvas

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	svg "github.com/ajstarks/svgo"
)

// SVG is a Surface that builds an SVG document. Primitives are buffered
// and serialised on WriteTo, so a full clear simply forgets them.
//
// Colors go through ParseColor before they reach a style attribute, like
// on Raster. The first rejected color is sticky and returned by Err; the
// primitive carrying it is dropped.
type SVG struct {
	width, height int
	background    string
	elems         []func(*svg.SVG)
	err           error
}

// NewSVG returns an empty SVG surface. A non-empty background is painted
// under every render.
func NewSVG(width, height int, background string) *SVG {
	s := &SVG{width: width, height: height}
	if background != "" && s.color(background) {
		s.background = background
	}
	return s
}

func (s *SVG) Width() int  { return s.width }
func (s *SVG) Height() int { return s.height }

// Err returns the first drawing error.
func (s *SVG) Err() error { return s.err }

func (s *SVG) ClearRect(x, y, w, h float64) {
	if coversAll(x, y, w, h, s.width, s.height) {
		s.elems = s.elems[:0]
		return
	}
	// SVG has no erase; paint the region with the background instead.
	fill := s.background
	if fill == "" {
		fill = "#ffffff"
	}
	d := fmt.Sprintf("M%s,%s h%s v%s h%s Z", num(x), num(y), num(w), num(h), num(-w))
	s.elems = append(s.elems, func(c *svg.SVG) {
		c.Path(d, "fill:"+fill+";stroke:none")
	})
}

func (s *SVG) StrokeArc(cx, cy, r, start, end float64, anticlockwise bool, st Stroke) {
	from, to := ArcSweep(start, end, anticlockwise)
	if to-from <= 0 || r <= 0 || !s.color(st.Color) {
		return
	}
	d := arcPath(cx, cy, r, from, to)
	style := strokeStyle(st)
	s.elems = append(s.elems, func(c *svg.SVG) {
		c.Path(d, style)
	})
}

func (s *SVG) StrokeLine(x1, y1, x2, y2 float64, st Stroke) {
	if !s.color(st.Color) {
		return
	}
	d := fmt.Sprintf("M%s,%s L%s,%s", num(x1), num(y1), num(x2), num(y2))
	style := strokeStyle(st) + ";stroke-linecap:butt"
	s.elems = append(s.elems, func(c *svg.SVG) {
		c.Path(d, style)
	})
}

func (s *SVG) FillCircle(cx, cy, r float64, color string) {
	if !s.color(color) {
		return
	}
	d := arcPath(cx, cy, r, 0, twoPi) + " Z"
	s.elems = append(s.elems, func(c *svg.SVG) {
		c.Path(d, "fill:"+color+";stroke:none")
	})
}

func (s *SVG) FillText(text string, x, y float64, ts TextStyle) {
	if !validFamily(ts.Font.Family) {
		s.fail(fmt.Errorf("%w: family %q", ErrBadFont, ts.Font.Family))
		return
	}
	if !s.color(ts.Color) {
		return
	}
	style := fmt.Sprintf("font-family:%s;font-size:%spx;fill:%s;text-anchor:%s",
		ts.Font.Family, num(ts.Font.Size), ts.Color, textAnchor(ts.Align))
	if ts.Font.Bold {
		style += ";font-weight:bold"
	}
	if ts.Font.Italic {
		style += ";font-style:italic"
	}
	if b := dominantBaseline(ts.Baseline); b != "" {
		style += ";dominant-baseline:" + b
	}
	ix, iy := int(math.Round(x)), int(math.Round(y))
	s.elems = append(s.elems, func(c *svg.SVG) {
		c.Text(ix, iy, text, style)
	})
}

// Len returns the number of buffered elements.
func (s *SVG) Len() int {
	return len(s.elems)
}

// WriteTo serialises the document. It refuses to write a surface that
// has a drawing error.
func (s *SVG) WriteTo(w io.Writer) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	var buf bytes.Buffer
	c := svg.New(&buf)
	c.Start(s.width, s.height)
	if s.background != "" {
		c.Rect(0, 0, s.width, s.height, "fill:"+s.background)
	}
	for _, draw := range s.elems {
		draw(c)
	}
	c.End()
	return buf.WriteTo(w)
}

// Bytes returns the serialised document, or nil after a drawing error.
func (s *SVG) Bytes() []byte {
	if s.err != nil {
		return nil
	}
	var buf bytes.Buffer
	_, _ = s.WriteTo(&buf)
	return buf.Bytes()
}

// arcPath builds a path along the circle from angle a to b (a < b). Sweeps
// of a full turn are split in two because a single SVG arc cannot close.
func arcPath(cx, cy, r, a, b float64) string {
	x1, y1 := arcPoint(cx, cy, r, a)
	if b-a >= twoPi {
		mx, my := arcPoint(cx, cy, r, a+math.Pi)
		return fmt.Sprintf("M%s,%s A%s,%s 0 1,1 %s,%s A%s,%s 0 1,1 %s,%s",
			num(x1), num(y1), num(r), num(r), num(mx), num(my), num(r), num(r), num(x1), num(y1))
	}
	x2, y2 := arcPoint(cx, cy, r, b)
	large := 0
	if b-a > math.Pi {
		large = 1
	}
	return fmt.Sprintf("M%s,%s A%s,%s 0 %d,1 %s,%s",
		num(x1), num(y1), num(r), num(r), large, num(x2), num(y2))
}

func (s *SVG) color(c string) bool {
	if _, err := ParseColor(c); err != nil {
		s.fail(err)
		return false
	}
	return true
}

func (s *SVG) fail(err error) {
	if err != nil && s.err == nil {
		s.err = err
	}
}

func strokeStyle(st Stroke) string {
	return fmt.Sprintf("fill:none;stroke:%s;stroke-width:%s", st.Color, num(st.Width))
}

func textAnchor(a Align) string {
	switch a {
	case AlignCenter:
		return "middle"
	case AlignRight:
		return "end"
	default:
		return "start"
	}
}

func dominantBaseline(b Baseline) string {
	switch b {
	case BaselineMiddle:
		return "middle"
	case BaselineTop:
		return "hanging"
	case BaselineBottom:
		return "text-after-edge"
	default:
		return ""
	}
}

// num formats a coordinate with at most two decimals.
func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

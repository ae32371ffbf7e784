// Package canvas defines the 2D drawing surface the gauge renderers paint
// on, together with three implementations: a primitive Recorder, an SVG
// document and a gogpu/gg raster image.
//
// A Surface is owned by one caller for the duration of a render. None of
// the implementations are safe for concurrent use.
package canvas

import "errors"

var (
	// ErrBadColor is returned for color strings ParseColor does not understand.
	ErrBadColor = errors.New("canvas: unsupported color")

	// ErrBadFont is returned for font strings ParseFont does not understand.
	ErrBadFont = errors.New("canvas: unsupported font")
)

// Surface is the subset of a canvas 2D context the renderers need.
type Surface interface {
	Width() int
	Height() int

	// ClearRect erases a region. Clearing the whole surface discards
	// everything drawn before.
	ClearRect(x, y, w, h float64)

	// StrokeArc strokes a circular arc using canvas arc() semantics.
	StrokeArc(cx, cy, r, start, end float64, anticlockwise bool, s Stroke)

	StrokeLine(x1, y1, x2, y2 float64, s Stroke)
	FillCircle(cx, cy, r float64, color string)
	FillText(text string, x, y float64, style TextStyle)
}

// Stroke is the pen used for arcs and lines.
type Stroke struct {
	Color string  `json:"color"`
	Width float64 `json:"width"`
}

// Align is the horizontal text alignment.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Baseline is the vertical text anchor.
type Baseline string

const (
	BaselineAlphabetic Baseline = "alphabetic"
	BaselineMiddle     Baseline = "middle"
	BaselineTop        Baseline = "top"
	BaselineBottom     Baseline = "bottom"
)

// TextStyle groups the text state of a canvas context.
type TextStyle struct {
	Font     Font     `json:"font"`
	Color    string   `json:"color"`
	Align    Align    `json:"align,omitempty"`
	Baseline Baseline `json:"baseline,omitempty"`
}

// errorer is implemented by surfaces that keep a sticky drawing error.
type errorer interface {
	Err() error
}

// Err returns the first drawing error recorded by s, if s tracks one.
func Err(s Surface) error {
	if e, ok := s.(errorer); ok {
		return e.Err()
	}
	return nil
}

// coversAll reports whether the rectangle spans a w×h surface.
func coversAll(x, y, w, h float64, width, height int) bool {
	return x <= 0 && y <= 0 && x+w >= float64(width) && y+h >= float64(height)
}

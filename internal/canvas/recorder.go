package canvas

// Op names a recorded drawing primitive.
type Op string

const (
	OpClear  Op = "clear"
	OpArc    Op = "arc"
	OpLine   Op = "line"
	OpCircle Op = "circle"
	OpText   Op = "text"
)

// Primitive is one drawing call captured by a Recorder.
type Primitive struct {
	Op Op `json:"op"`

	// Clear rectangle, line start or text anchor.
	X float64 `json:"x,omitempty"`
	Y float64 `json:"y,omitempty"`
	W float64 `json:"w,omitempty"`
	H float64 `json:"h,omitempty"`

	// Line end.
	X2 float64 `json:"x2,omitempty"`
	Y2 float64 `json:"y2,omitempty"`

	// Arc and circle.
	CX            float64 `json:"cx,omitempty"`
	CY            float64 `json:"cy,omitempty"`
	R             float64 `json:"r,omitempty"`
	Start         float64 `json:"start,omitempty"`
	End           float64 `json:"end,omitempty"`
	Anticlockwise bool    `json:"anticlockwise,omitempty"`

	Stroke *Stroke    `json:"stroke,omitempty"`
	Fill   string     `json:"fill,omitempty"`
	Text   string     `json:"text,omitempty"`
	Style  *TextStyle `json:"style,omitempty"`
}

// Recorder is a Surface that keeps the primitives drawn on it instead of
// pixels. A full clear drops everything recorded before it, so the log
// only ever holds what is visible.
type Recorder struct {
	width, height int
	ops           []Primitive
	fullClears    int
}

// NewRecorder returns an empty recorder of the given size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height}
}

func (r *Recorder) Width() int  { return r.width }
func (r *Recorder) Height() int { return r.height }

func (r *Recorder) ClearRect(x, y, w, h float64) {
	if coversAll(x, y, w, h, r.width, r.height) {
		r.ops = r.ops[:0]
		r.fullClears++
	}
	r.ops = append(r.ops, Primitive{Op: OpClear, X: x, Y: y, W: w, H: h})
}

func (r *Recorder) StrokeArc(cx, cy, radius, start, end float64, anticlockwise bool, s Stroke) {
	r.ops = append(r.ops, Primitive{
		Op: OpArc, CX: cx, CY: cy, R: radius,
		Start: start, End: end, Anticlockwise: anticlockwise,
		Stroke: &s,
	})
}

func (r *Recorder) StrokeLine(x1, y1, x2, y2 float64, s Stroke) {
	r.ops = append(r.ops, Primitive{Op: OpLine, X: x1, Y: y1, X2: x2, Y2: y2, Stroke: &s})
}

func (r *Recorder) FillCircle(cx, cy, radius float64, color string) {
	r.ops = append(r.ops, Primitive{Op: OpCircle, CX: cx, CY: cy, R: radius, Fill: color})
}

func (r *Recorder) FillText(text string, x, y float64, style TextStyle) {
	r.ops = append(r.ops, Primitive{Op: OpText, X: x, Y: y, Text: text, Style: &style})
}

// Primitives returns a copy of the visible primitives in draw order.
func (r *Recorder) Primitives() []Primitive {
	out := make([]Primitive, len(r.ops))
	copy(out, r.ops)
	return out
}

// Filter returns the visible primitives of one kind.
func (r *Recorder) Filter(op Op) []Primitive {
	var out []Primitive
	for _, p := range r.ops {
		if p.Op == op {
			out = append(out, p)
		}
	}
	return out
}

// FullClears counts the whole-surface clears seen so far.
func (r *Recorder) FullClears() int {
	return r.fullClears
}

// Replay draws the visible primitives onto another surface.
func (r *Recorder) Replay(dst Surface) {
	for _, p := range r.ops {
		switch p.Op {
		case OpClear:
			dst.ClearRect(p.X, p.Y, p.W, p.H)
		case OpArc:
			dst.StrokeArc(p.CX, p.CY, p.R, p.Start, p.End, p.Anticlockwise, *p.Stroke)
		case OpLine:
			dst.StrokeLine(p.X, p.Y, p.X2, p.Y2, *p.Stroke)
		case OpCircle:
			dst.FillCircle(p.CX, p.CY, p.R, p.Fill)
		case OpText:
			dst.FillText(p.Text, p.X, p.Y, *p.Style)
		}
	}
}

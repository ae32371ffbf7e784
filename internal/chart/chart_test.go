package chart

import (
	"errors"
	"math"
	"testing"

	"github.com/seenimoa/confgauge/internal/canvas"
)

const eps = 1e-9

// ════════════════════════════════════════════════════════════════════
// Registry
// ════════════════════════════════════════════════════════════════════

type stubController struct {
	calls *[]string
}

func (s stubController) RenderBase(*Chart) error {
	*s.calls = append(*s.calls, "base")
	return nil
}

func (s stubController) RenderOverlay(*Chart) error {
	*s.calls = append(*s.calls, "overlay")
	return nil
}

func TestRegistry_BuiltinDoughnut(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Controller(TypeDoughnut); !ok {
		t.Fatal("doughnut controller missing")
	}
	if _, ok := r.Defaults(TypeDoughnut); !ok {
		t.Fatal("doughnut defaults missing")
	}
	if got := r.Types(); len(got) != 1 || got[0] != TypeDoughnut {
		t.Errorf("Types() = %v, want [doughnut]", got)
	}
}

func TestRegistry_RegisterController(t *testing.T) {
	r := NewRegistry()
	var calls []string
	f := func() Drawable { return stubController{calls: &calls} }

	if err := r.RegisterController("stub", f); err != nil {
		t.Fatalf("RegisterController() error: %v", err)
	}
	if err := r.RegisterController("stub", f); err != nil {
		t.Fatalf("second RegisterController() error: %v", err)
	}
	if got := r.Types(); len(got) != 2 {
		t.Errorf("Types() = %v, want 2 entries", got)
	}

	if err := r.RegisterController("", f); err == nil {
		t.Error("expected error for empty type")
	}
	if err := r.RegisterController("nil", nil); err == nil {
		t.Error("expected error for nil factory")
	}
}

func TestRegistry_WithoutControllerPlugins(t *testing.T) {
	r := NewRegistry(WithoutControllerPlugins())
	err := r.RegisterController("stub", func() Drawable { return DoughnutController{} })
	if err != nil {
		t.Fatalf("RegisterController() error: %v", err)
	}
	if _, ok := r.Controller("stub"); ok {
		t.Error("plugin controller exposed by a host without plugin support")
	}
	if _, ok := r.Controller(TypeDoughnut); !ok {
		t.Error("built-in doughnut missing")
	}
}

func TestGlobal_IsSingleton(t *testing.T) {
	if Global() != Global() {
		t.Error("Global() returned different registries")
	}
}

// ════════════════════════════════════════════════════════════════════
// Options
// ════════════════════════════════════════════════════════════════════

func TestOptions_Merge(t *testing.T) {
	base := DoughnutDefaults()
	got := base.Merge(Options{
		Rotation:   Float(-math.Pi / 2),
		Cutout:     "75%",
		Plugins:    &Plugins{},
		ValueLabel: &ValueLabel{Label: "Confidence"},
	})

	if got.RotationValue() != -math.Pi/2 {
		t.Errorf("Rotation = %v, want -π/2", got.RotationValue())
	}
	if got.Cutout != "75%" {
		t.Errorf("Cutout = %q, want %q", got.Cutout, "75%")
	}
	if got.Plugins.Legend.Display {
		t.Error("legend should be off after merge")
	}
	if got.AspectRatio != base.AspectRatio {
		t.Errorf("AspectRatio = %v, want default %v", got.AspectRatio, base.AspectRatio)
	}
	if got.LabelText() != "Confidence" {
		t.Errorf("LabelText() = %q", got.LabelText())
	}
	if base.Plugins.Legend.Display != true {
		t.Error("Merge modified the defaults")
	}
}

func TestOptions_CutoutRadius(t *testing.T) {
	tests := []struct {
		cutout string
		want   float64
	}{
		{"75%", 75},
		{"50%", 50},
		{"40", 40},
		{"40px", 40},
		{"", 0},
		{"wide", 0},
		{"250%", 100},
	}

	for _, tt := range tests {
		t.Run(tt.cutout, func(t *testing.T) {
			o := Options{Cutout: tt.cutout}
			if got := o.CutoutRadius(100); math.Abs(got-tt.want) > eps {
				t.Errorf("CutoutRadius(100) = %v, want %v", got, tt.want)
			}
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// Layout
// ════════════════════════════════════════════════════════════════════

func TestRingLayout_HalfRing(t *testing.T) {
	o := Options{Rotation: Float(-math.Pi / 2), Circumference: math.Pi, Cutout: "75%"}
	l := RingLayout(Area{Right: 300, Bottom: 200}, o)

	if math.Abs(l.Outer-150) > eps {
		t.Errorf("Outer = %v, want 150", l.Outer)
	}
	if math.Abs(l.Inner-112.5) > eps {
		t.Errorf("Inner = %v, want 112.5", l.Inner)
	}
	if math.Abs(l.Center.X-150) > eps || math.Abs(l.Center.Y-175) > 1e-6 {
		t.Errorf("Center = %+v, want (150, 175)", l.Center)
	}
	if math.Abs(l.Start+math.Pi) > eps || math.Abs(l.Sweep-math.Pi) > eps {
		t.Errorf("Start, Sweep = %v, %v; want -π, π", l.Start, l.Sweep)
	}
}

func TestRingLayout_FullRing(t *testing.T) {
	l := RingLayout(Area{Right: 200, Bottom: 100}, DoughnutDefaults())
	if math.Abs(l.Outer-50) > eps {
		t.Errorf("Outer = %v, want 50", l.Outer)
	}
	if math.Abs(l.Center.X-100) > 1e-6 || math.Abs(l.Center.Y-50) > 1e-6 {
		t.Errorf("Center = %+v, want (100, 50)", l.Center)
	}
}

// ════════════════════════════════════════════════════════════════════
// Chart
// ════════════════════════════════════════════════════════════════════

func TestNew_Errors(t *testing.T) {
	r := NewRegistry()
	if _, err := New(r, nil, Config{Type: TypeDoughnut}); !errors.Is(err, ErrNilSurface) {
		t.Errorf("nil surface error = %v, want ErrNilSurface", err)
	}
	if _, err := New(r, canvas.NewRecorder(10, 10), Config{Type: "radar"}); !errors.Is(err, ErrUnknownType) {
		t.Errorf("unknown type error = %v, want ErrUnknownType", err)
	}
}

func TestChart_RenderPipelineOrder(t *testing.T) {
	r := NewRegistry()
	var calls []string
	_ = r.RegisterController("stub", func() Drawable { return stubController{calls: &calls} })

	rec := canvas.NewRecorder(100, 100)
	c, err := New(r, rec, Config{Type: "stub"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := c.Render(); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if len(calls) != 2 || calls[0] != "base" || calls[1] != "overlay" {
		t.Errorf("calls = %v, want [base overlay]", calls)
	}
	if rec.FullClears() != 1 {
		t.Errorf("FullClears() = %d, want 1", rec.FullClears())
	}
}

func TestChart_UpdateNotifiesListeners(t *testing.T) {
	rec := canvas.NewRecorder(100, 100)
	c, err := New(NewRegistry(), rec, Config{
		Type: TypeDoughnut,
		Data: Data{Datasets: []*Dataset{{Data: []float64{1, 3}}}},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	var notified int
	c.OnUpdate(func(*Chart) { notified++ })

	if err := c.Update(); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if err := c.Update(); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if notified != 2 {
		t.Errorf("listener called %d times, want 2", notified)
	}
	if n := len(rec.Filter(canvas.OpArc)); n != 2 {
		t.Errorf("visible arcs = %d, want 2", n)
	}
}

func TestChart_ChartAreaPadding(t *testing.T) {
	c, err := New(NewRegistry(), canvas.NewRecorder(100, 80), Config{
		Type:    TypeDoughnut,
		Options: Options{Padding: 10},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	a := c.ChartArea()
	if a.Left != 10 || a.Top != 10 || a.Right != 90 || a.Bottom != 70 {
		t.Errorf("ChartArea() = %+v", a)
	}
}

// ════════════════════════════════════════════════════════════════════
// DoughnutController
// ════════════════════════════════════════════════════════════════════

func TestDrawRing_ProportionalSegments(t *testing.T) {
	rec := canvas.NewRecorder(200, 200)
	l := Layout{Outer: 100, Inner: 50, Start: 0, Sweep: 2 * math.Pi}
	DrawRing(rec, l, 0, 1, []float64{1, 0, 3}, []string{"#111", "#222", "#333"}, 0)

	arcs := rec.Filter(canvas.OpArc)
	if len(arcs) != 2 {
		t.Fatalf("arcs = %d, want 2 (zero share skipped)", len(arcs))
	}
	if math.Abs(arcs[0].End-math.Pi/2) > eps {
		t.Errorf("first segment end = %v, want π/2", arcs[0].End)
	}
	if arcs[1].Stroke.Color != "#333" {
		t.Errorf("second segment color = %q, want #333", arcs[1].Stroke.Color)
	}
	if arcs[0].R != 75 || arcs[0].Stroke.Width != 50 {
		t.Errorf("segment r=%v width=%v, want 75 and 50", arcs[0].R, arcs[0].Stroke.Width)
	}
}

func TestDrawRing_Borders(t *testing.T) {
	rec := canvas.NewRecorder(200, 200)
	l := Layout{Outer: 100, Inner: 50, Sweep: math.Pi}
	DrawRing(rec, l, 0, 1, []float64{1, 1}, nil, 2)

	if n := len(rec.Filter(canvas.OpLine)); n != 4 {
		t.Errorf("border lines = %d, want 4", n)
	}
	if c := rec.Filter(canvas.OpArc)[0].Stroke.Color; c != defaultSegmentColor {
		t.Errorf("default color = %q", c)
	}
}

func TestDrawShare(t *testing.T) {
	l := Layout{Outer: 100, Inner: 50, Start: -math.Pi, Sweep: math.Pi}
	colors := []string{"#111", "#222"}

	tests := []struct {
		name   string
		n      float64
		colors []string
		sweeps []float64
	}{
		{"in range", 0.25, []string{"#111", "#222"}, []float64{math.Pi / 4, 3 * math.Pi / 4}},
		{"full", 1, []string{"#111"}, []float64{math.Pi}},
		{"above range", 1.5, []string{"#111"}, []float64{3 * math.Pi / 2}},
		{"below range", -0.5, []string{"#222", "#111"}, []float64{math.Pi, 3 * math.Pi / 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := canvas.NewRecorder(200, 200)
			DrawShare(rec, l, tt.n, colors, 0)

			arcs := rec.Filter(canvas.OpArc)
			if len(arcs) != len(tt.sweeps) {
				t.Fatalf("arcs = %d, want %d", len(arcs), len(tt.sweeps))
			}
			for i, a := range arcs {
				from, to := canvas.ArcSweep(a.Start, a.End, a.Anticlockwise)
				if math.Abs(to-from-tt.sweeps[i]) > eps {
					t.Errorf("arc %d sweep = %v, want %v", i, to-from, tt.sweeps[i])
				}
				if a.Stroke.Color != tt.colors[i] {
					t.Errorf("arc %d color = %q, want %q", i, a.Stroke.Color, tt.colors[i])
				}
				if i == 0 && a.Start != l.Start {
					t.Errorf("arc %d starts at %v, want %v", i, a.Start, l.Start)
				}
			}
		})
	}
}

func TestDoughnut_ConcentricDatasets(t *testing.T) {
	rec := canvas.NewRecorder(200, 200)
	c, err := New(NewRegistry(), rec, Config{
		Type: TypeDoughnut,
		Data: Data{Datasets: []*Dataset{
			{Data: []float64{1}},
			{Data: []float64{1}},
		}},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := c.Render(); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	arcs := rec.Filter(canvas.OpArc)
	if len(arcs) != 2 {
		t.Fatalf("arcs = %d, want 2", len(arcs))
	}
	if !(arcs[0].R > arcs[1].R) {
		t.Errorf("first dataset should be the outer ring: %v <= %v", arcs[0].R, arcs[1].R)
	}
}

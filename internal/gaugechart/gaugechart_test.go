package gaugechart

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/seenimoa/confgauge/internal/canvas"
	"github.com/seenimoa/confgauge/internal/chart"
	"github.com/seenimoa/confgauge/internal/gauge"
	"github.com/seenimoa/confgauge/internal/standalone"
)

func quietLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)
	return log, &buf
}

func ptr(f float64) *float64 { return &f }

func newGauge(t *testing.T, reg *chart.Registry, rec *canvas.Recorder, ds *chart.Dataset, opts chart.Options) *chart.Chart {
	t.Helper()
	c, err := chart.New(reg, rec, chart.Config{
		Type:    TypeGauge,
		Data:    chart.Data{Datasets: []*chart.Dataset{ds}},
		Options: opts,
	})
	if err != nil {
		t.Fatalf("chart.New() error: %v", err)
	}
	return c
}

// ════════════════════════════════════════════════════════════════════
// Register
// ════════════════════════════════════════════════════════════════════

func TestRegister(t *testing.T) {
	reg := chart.NewRegistry()
	log, buf := quietLogger()

	res := Register(reg, log)
	if !res.Registered || res.AlreadyPresent || res.Fallback != nil {
		t.Fatalf("Register() = %+v, want fresh registration", res)
	}

	d, ok := reg.Defaults(TypeGauge)
	if !ok {
		t.Fatal("gauge defaults missing")
	}
	if d.AspectRatio != 1.5 || d.Circumference != math.Pi || d.Cutout != "75%" {
		t.Errorf("defaults = %+v", d)
	}
	if d.RotationValue() != -math.Pi/2 {
		t.Errorf("rotation = %v, want -π/2", d.RotationValue())
	}
	if d.Plugins.Legend.Display || d.Plugins.Tooltip.Enabled {
		t.Error("legend and tooltip should be disabled")
	}
	if !d.Animation.AnimateRotate || !d.Animation.AnimateScale {
		t.Error("animations should be enabled")
	}
	if strings.Contains(buf.String(), "level=warning") {
		t.Errorf("unexpected warning: %s", buf.String())
	}
}

func TestRegister_Idempotent(t *testing.T) {
	reg := chart.NewRegistry()
	log, _ := quietLogger()

	Register(reg, log)
	res := Register(reg, log)

	if !res.Registered || !res.AlreadyPresent {
		t.Errorf("second Register() = %+v, want already present", res)
	}

	var gauges int
	for _, typ := range reg.Types() {
		if typ == TypeGauge {
			gauges++
		}
	}
	if gauges != 1 {
		t.Errorf("gauge registered %d times, want 1", gauges)
	}
}

func TestRegister_AlreadyPresentKeepsSettings(t *testing.T) {
	reg := chart.NewRegistry()
	log, buf := quietLogger()

	colors := gauge.RingColors{Accent: "#123456", Remainder: "#eeeeee"}
	Register(reg, log, WithClamp(true), WithRingColors(colors))
	buf.Reset()

	res := Register(reg, log, WithClamp(false))
	if !res.AlreadyPresent {
		t.Fatalf("Register() = %+v, want already present", res)
	}
	if !res.Clamp || res.Colors != colors {
		t.Errorf("effective settings = clamp %v, colors %+v; want the first registration's", res.Clamp, res.Colors)
	}
	if !strings.Contains(buf.String(), "ignoring controller options") {
		t.Errorf("ignored options not logged: %q", buf.String())
	}

	buf.Reset()
	Register(reg, log, WithClamp(true), WithRingColors(colors))
	if strings.Contains(buf.String(), "ignoring") {
		t.Errorf("matching options should not be reported: %q", buf.String())
	}
}

func TestRegister_Fallback(t *testing.T) {
	tests := []struct {
		name string
		host *chart.Registry
	}{
		{"no host", nil},
		{"host without plugin support", chart.NewRegistry(chart.WithoutControllerPlugins())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := quietLogger()
			res := Register(tt.host, log)

			if res.Registered {
				t.Error("Registered = true, want false")
			}
			if res.Fallback == nil {
				t.Fatal("Fallback is nil")
			}
			if !strings.Contains(buf.String(), "falling back to ring renderer") {
				t.Errorf("missing warning, log = %q", buf.String())
			}

			rec := canvas.NewRecorder(300, 200)
			ring, err := res.Fallback(rec, standalone.RingOptions{Value: ptr(0.25)})
			if err != nil {
				t.Fatalf("Fallback() error: %v", err)
			}
			if ring == nil || len(rec.Filter(canvas.OpArc)) != 2 {
				t.Errorf("fallback ring arcs = %d, want 2", len(rec.Filter(canvas.OpArc)))
			}
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// Controller
// ════════════════════════════════════════════════════════════════════

func TestController_DefaultRender(t *testing.T) {
	reg := chart.NewRegistry()
	log, _ := quietLogger()
	Register(reg, log)

	rec := canvas.NewRecorder(300, 200)
	c := newGauge(t, reg, rec, &chart.Dataset{Value: ptr(0.5)}, chart.Options{})
	if err := c.Render(); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	arcs := rec.Filter(canvas.OpArc)
	if len(arcs) != 2 {
		t.Fatalf("arcs = %d, want 2", len(arcs))
	}
	if arcs[0].Stroke.Color != gauge.DefaultRingColors.Accent {
		t.Errorf("filled color = %q, want accent", arcs[0].Stroke.Color)
	}
	if arcs[1].Stroke.Color != gauge.DefaultRingColors.Remainder {
		t.Errorf("remainder color = %q, want remainder", arcs[1].Stroke.Color)
	}

	texts := rec.Filter(canvas.OpText)
	if len(texts) != 1 {
		t.Fatalf("texts = %d, want 1", len(texts))
	}
	if texts[0].Text != "50.0%" {
		t.Errorf("text = %q, want %q", texts[0].Text, "50.0%")
	}
	if texts[0].X != 150 || texts[0].Y != 100 {
		t.Errorf("text at (%v, %v), want chart area centre (150, 100)", texts[0].X, texts[0].Y)
	}
	if texts[0].Style.Font.String() != "24px Arial, sans-serif" || texts[0].Style.Color != "#333" {
		t.Errorf("text style = %+v", texts[0].Style)
	}
}

func TestController_FormatterAndLabel(t *testing.T) {
	reg := chart.NewRegistry()
	log, _ := quietLogger()
	Register(reg, log)

	rec := canvas.NewRecorder(300, 200)
	c := newGauge(t, reg, rec, &chart.Dataset{Value: ptr(42), MinValue: ptr(0), MaxValue: ptr(100)}, chart.Options{
		ValueLabel: &chart.ValueLabel{
			Formatter: func(v float64) string { return "score " + gauge.PercentFormatter(0)(v/100) },
			Label:     "Confidence",
		},
	})
	if err := c.Render(); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	texts := rec.Filter(canvas.OpText)
	if len(texts) != 2 {
		t.Fatalf("texts = %d, want 2", len(texts))
	}
	if texts[0].Text != "score 42%" {
		t.Errorf("text = %q, want %q", texts[0].Text, "score 42%")
	}
	if texts[1].Text != "Confidence" || texts[1].Y != texts[0].Y+30 {
		t.Errorf("label = %q at y=%v", texts[1].Text, texts[1].Y)
	}
	if texts[1].Style.Color != "#777" {
		t.Errorf("label color = %q, want #777", texts[1].Style.Color)
	}
}

func TestController_MultipleDatasetsNoText(t *testing.T) {
	reg := chart.NewRegistry()
	log, _ := quietLogger()
	Register(reg, log)

	rec := canvas.NewRecorder(300, 200)
	c, err := chart.New(reg, rec, chart.Config{
		Type: TypeGauge,
		Data: chart.Data{Datasets: []*chart.Dataset{
			{Data: []float64{1, 1}},
			{Data: []float64{2, 1}},
		}},
	})
	if err != nil {
		t.Fatalf("chart.New() error: %v", err)
	}
	if err := c.Render(); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if n := len(rec.Filter(canvas.OpText)); n != 0 {
		t.Errorf("texts = %d, want 0", n)
	}
	if n := len(rec.Filter(canvas.OpArc)); n != 4 {
		t.Errorf("arcs = %d, want 4", n)
	}
}

func TestController_InvalidDomain(t *testing.T) {
	reg := chart.NewRegistry()
	log, _ := quietLogger()
	Register(reg, log)

	c := newGauge(t, reg, canvas.NewRecorder(300, 200),
		&chart.Dataset{Value: ptr(1), MinValue: ptr(2), MaxValue: ptr(2)}, chart.Options{})
	if err := c.Render(); !errors.Is(err, gauge.ErrInvalidDomain) {
		t.Errorf("Render() error = %v, want ErrInvalidDomain", err)
	}
}

func TestController_Clamp(t *testing.T) {
	reg := chart.NewRegistry()
	log, _ := quietLogger()
	Register(reg, log, WithClamp(true))

	rec := canvas.NewRecorder(300, 200)
	c := newGauge(t, reg, rec, &chart.Dataset{Value: ptr(1.5)}, chart.Options{})
	if err := c.Render(); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	// Clamped to a full ring: the remainder share is zero and skipped.
	if n := len(rec.Filter(canvas.OpArc)); n != 1 {
		t.Errorf("arcs = %d, want 1", n)
	}
	// The text shows the raw value.
	if got := rec.Filter(canvas.OpText)[0].Text; got != "150.0%" {
		t.Errorf("text = %q, want %q", got, "150.0%")
	}
}

func TestController_Overshoot(t *testing.T) {
	reg := chart.NewRegistry()
	log, _ := quietLogger()
	Register(reg, log)

	tests := []struct {
		name  string
		value float64
		arcs  int
	}{
		{"above range", 1.5, 1},
		{"below range", -0.5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := canvas.NewRecorder(300, 200)
			c := newGauge(t, reg, rec, &chart.Dataset{Value: ptr(tt.value)}, chart.Options{})
			if err := c.Render(); err != nil {
				t.Fatalf("Render() error: %v", err)
			}

			arcs := rec.Filter(canvas.OpArc)
			if len(arcs) != tt.arcs {
				t.Fatalf("arcs = %d, want %d", len(arcs), tt.arcs)
			}
			filled := arcs[len(arcs)-1]
			if filled.Stroke.Color != gauge.DefaultRingColors.Accent {
				t.Errorf("filled color = %q, want accent", filled.Stroke.Color)
			}
			from, to := canvas.ArcSweep(filled.Start, filled.End, filled.Anticlockwise)
			if math.Abs(to-from-3*math.Pi/2) > 1e-9 {
				t.Errorf("filled sweep = %v, want 3π/2", to-from)
			}
		})
	}
}

func TestGeometry(t *testing.T) {
	reg := chart.NewRegistry()
	log, _ := quietLogger()
	Register(reg, log, WithClamp(true))

	c := newGauge(t, reg, canvas.NewRecorder(300, 200), &chart.Dataset{Value: ptr(1.5)}, chart.Options{})
	g, err := Geometry(c)
	if err != nil {
		t.Fatalf("Geometry() error: %v", err)
	}
	if g.DisplayText != "150.0%" {
		t.Errorf("display text = %q, want 150.0%%", g.DisplayText)
	}
	if g.Center.X != 150 || g.Center.Y != 100 {
		t.Errorf("center = %+v, want chart area centre", g.Center)
	}
	if g.Normalized != 1 {
		t.Errorf("normalized = %v, want clamped 1", g.Normalized)
	}

	doughnut, err := chart.New(reg, canvas.NewRecorder(300, 200), chart.Config{
		Type: chart.TypeDoughnut,
		Data: chart.Data{Datasets: []*chart.Dataset{{Data: []float64{1}}}},
	})
	if err != nil {
		t.Fatalf("chart.New() error: %v", err)
	}
	if _, err := Geometry(doughnut); !errors.Is(err, chart.ErrUnknownType) {
		t.Errorf("doughnut Geometry() error = %v, want ErrUnknownType", err)
	}
}

// ════════════════════════════════════════════════════════════════════
// UpdateGauge
// ════════════════════════════════════════════════════════════════════

func TestUpdateGauge(t *testing.T) {
	reg := chart.NewRegistry()
	log, _ := quietLogger()
	Register(reg, log)

	rec := canvas.NewRecorder(300, 200)
	c := newGauge(t, reg, rec, &chart.Dataset{Value: ptr(0.1)}, chart.Options{})

	var updates int
	c.OnUpdate(func(*chart.Chart) { updates++ })

	if !UpdateGauge(c, 0.75) {
		t.Fatal("UpdateGauge() = false")
	}
	if *c.Data().Datasets[0].Value != 0.75 {
		t.Errorf("value = %v, want 0.75", *c.Data().Datasets[0].Value)
	}
	if updates != 1 {
		t.Errorf("updates = %d, want 1", updates)
	}
	if got := rec.Filter(canvas.OpText)[0].Text; got != "75.0%" {
		t.Errorf("text = %q, want %q", got, "75.0%")
	}
}

func TestUpdateGauge_NoOp(t *testing.T) {
	reg := chart.NewRegistry()
	log, _ := quietLogger()
	Register(reg, log)

	t.Run("non-gauge chart", func(t *testing.T) {
		ds := &chart.Dataset{Data: []float64{1, 2}}
		c, err := chart.New(reg, canvas.NewRecorder(100, 100), chart.Config{
			Type: chart.TypeDoughnut,
			Data: chart.Data{Datasets: []*chart.Dataset{ds}},
		})
		if err != nil {
			t.Fatalf("chart.New() error: %v", err)
		}
		if UpdateGauge(c, 0.5) {
			t.Error("UpdateGauge() = true on doughnut")
		}
		if ds.Value != nil || len(ds.Data) != 2 || ds.Data[0] != 1 {
			t.Errorf("dataset modified: %+v", ds)
		}
	})

	t.Run("no datasets", func(t *testing.T) {
		c, err := chart.New(reg, canvas.NewRecorder(100, 100), chart.Config{Type: TypeGauge})
		if err != nil {
			t.Fatalf("chart.New() error: %v", err)
		}
		if UpdateGauge(c, 0.5) {
			t.Error("UpdateGauge() = true without datasets")
		}
	})

	t.Run("nil chart", func(t *testing.T) {
		if UpdateGauge(nil, 0.5) {
			t.Error("UpdateGauge(nil) = true")
		}
	})
}

package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/seenimoa/confgauge/internal/canvas"
	"github.com/seenimoa/confgauge/internal/chart"
	"github.com/seenimoa/confgauge/internal/gauge"
	"github.com/seenimoa/confgauge/internal/gaugechart"
	"github.com/seenimoa/confgauge/internal/standalone"
)

func mustNew(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := New(opts)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return e
}

func testLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	return log, &buf
}

// ════════════════════════════════════════════════════════════════════
// Strategy selection
// ════════════════════════════════════════════════════════════════════

func TestNew_PluginStrategy(t *testing.T) {
	log, _ := testLogger()
	host := chart.NewRegistry()
	e := mustNew(t, Options{Host: host, Logger: log})

	if e.Strategy() != StrategyPlugin {
		t.Errorf("Strategy() = %q, want plugin", e.Strategy())
	}
	if e.Renderer().Name() != "plugin" {
		t.Errorf("Renderer().Name() = %q", e.Renderer().Name())
	}
	if e.Host() != host {
		t.Error("Host() should return the registry")
	}
	if _, ok := host.Controller(gaugechart.TypeGauge); !ok {
		t.Error("gauge type not registered")
	}
}

func TestNew_StandaloneStrategy(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"host disabled", Options{DisableHost: true}},
		{"host without plugins", Options{Host: chart.NewRegistry(chart.WithoutControllerPlugins())}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := testLogger()
			tt.opts.Logger = log
			e := mustNew(t, tt.opts)

			if e.Strategy() != StrategyStandalone {
				t.Errorf("Strategy() = %q, want standalone", e.Strategy())
			}
			if e.Host() != nil {
				t.Error("Host() should be nil on the standalone strategy")
			}
			if e.Registration().Fallback == nil {
				t.Error("fallback factory missing")
			}
			if !strings.Contains(buf.String(), "falling back") {
				t.Errorf("missing fallback warning: %q", buf.String())
			}
			if _, err := e.RendererFor(StrategyPlugin); !errors.Is(err, ErrPluginUnavailable) {
				t.Errorf("RendererFor(plugin) error = %v", err)
			}
		})
	}
}

func TestNew_SharedHostRegistersOnce(t *testing.T) {
	log, _ := testLogger()
	host := chart.NewRegistry()

	mustNew(t, Options{Host: host, Logger: log})
	e := mustNew(t, Options{Host: host, Logger: log})

	if !e.Registration().AlreadyPresent {
		t.Error("second engine should find the type already registered")
	}
	if got := len(host.Types()); got != 2 {
		t.Errorf("Types() = %v, want doughnut and gauge", host.Types())
	}
}

func TestRendererFor(t *testing.T) {
	log, _ := testLogger()
	e := mustNew(t, Options{Host: chart.NewRegistry(), Logger: log})

	for _, s := range []Strategy{"", StrategyPlugin, StrategyStandalone} {
		r, err := e.RendererFor(s)
		if err != nil || r == nil {
			t.Errorf("RendererFor(%q) = %v, %v", s, r, err)
		}
	}
	if _, err := e.RendererFor("radial"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

// ════════════════════════════════════════════════════════════════════
// Rendering
// ════════════════════════════════════════════════════════════════════

func TestRenderPrimitives_BothPathsAgreeOnText(t *testing.T) {
	log, _ := testLogger()
	plugin := mustNew(t, Options{Host: chart.NewRegistry(), Logger: log})
	alone := mustNew(t, Options{DisableHost: true, Logger: log})

	spec := gauge.NewSpec(0.5)

	p, err := plugin.RenderPrimitives(spec, 300, 200)
	if err != nil {
		t.Fatalf("plugin RenderPrimitives() error: %v", err)
	}
	s, err := alone.RenderPrimitives(spec, 300, 200)
	if err != nil {
		t.Fatalf("standalone RenderPrimitives() error: %v", err)
	}

	text := func(ops []canvas.Primitive) string {
		for _, op := range ops {
			if op.Op == canvas.OpText {
				return op.Text
			}
		}
		return ""
	}
	if got := text(p); got != "50.0%" {
		t.Errorf("plugin text = %q, want %q", got, "50.0%")
	}
	if got := text(s); got != "50%" {
		t.Errorf("standalone text = %q, want %q", got, "50%")
	}
}

func TestRenderSVG(t *testing.T) {
	log, _ := testLogger()
	e := mustNew(t, Options{DisableHost: true, Logger: log, Background: "#ffffff"})

	spec := gauge.NewSpec(0.9)
	spec.Fake = true
	out, err := e.RenderSVG(spec, 300, 0)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if h, _ := doc.Find("svg").Attr("height"); h != "200" {
		t.Errorf("height = %q, want 200", h)
	}
	if doc.Find("text").Text() != "90%" {
		t.Errorf("text = %q", doc.Find("text").Text())
	}

	var warning bool
	doc.Find("path").Each(func(_ int, s *goquery.Selection) {
		if style, _ := s.Attr("style"); strings.Contains(style, "stroke:#e74c3c") {
			warning = true
		}
	})
	if !warning {
		t.Error("value arc with the warning color missing")
	}
}

func TestRenderPNG(t *testing.T) {
	log, _ := testLogger()
	e := mustNew(t, Options{Host: chart.NewRegistry(), Logger: log})

	out, err := e.RenderPNG(gauge.NewSpec(0.3), 150, 100)
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
}

func TestRender_JSONAndErrors(t *testing.T) {
	log, _ := testLogger()
	e := mustNew(t, Options{DisableHost: true, Logger: log})

	out, err := e.Render(e.Renderer(), FormatJSON, gauge.NewSpec(0.5), 0, 0)
	if err != nil {
		t.Fatalf("Render(json) error: %v", err)
	}
	var ops []canvas.Primitive
	if err := json.Unmarshal(out, &ops); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(ops) != 6 {
		t.Errorf("ops = %d, want 6", len(ops))
	}

	_, err = e.RenderSVG(gauge.NewSpec(0.5).WithDomain(3, 3), 0, 0)
	if !errors.Is(err, gauge.ErrInvalidDomain) {
		t.Errorf("error = %v, want ErrInvalidDomain", err)
	}
	if _, err := e.Render(e.Renderer(), "gif", gauge.NewSpec(0.5), 0, 0); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestNewRing_UsesConfiguredColors(t *testing.T) {
	log, _ := testLogger()
	e := mustNew(t, Options{
		DisableHost: true,
		Logger:      log,
		RingColors:  gauge.RingColors{Accent: "#123456"},
	})

	rec := canvas.NewRecorder(300, 200)
	v := 0.4
	if _, err := e.NewRing(rec, standalone.RingOptions{Value: &v}); err != nil {
		t.Fatalf("NewRing() error: %v", err)
	}
	arcs := rec.Filter(canvas.OpArc)
	if len(arcs) != 2 || arcs[0].Stroke.Color != "#123456" {
		t.Errorf("arcs = %+v", arcs)
	}
	if arcs[1].Stroke.Color != gauge.DefaultRingColors.Remainder {
		t.Errorf("remainder = %q", arcs[1].Stroke.Color)
	}
}

func TestSize(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int
	}{
		{0, 0, DefaultWidth, DefaultHeight},
		{600, 0, 600, 400},
		{0, 100, 150, 100},
		{120, 90, 120, 90},
	}
	for _, tt := range tests {
		w, h := Size(tt.w, tt.h)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("Size(%d, %d) = (%d, %d), want (%d, %d)", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"svg", "png", "json", ""} {
		if _, err := ParseFormat(in); err != nil {
			t.Errorf("ParseFormat(%q) error: %v", in, err)
		}
	}
	if _, err := ParseFormat("bmp"); err == nil {
		t.Error("expected error for bmp")
	}
	if FormatPNG.ContentType() != "image/png" {
		t.Errorf("ContentType() = %q", FormatPNG.ContentType())
	}
}

func TestNew_Fonts(t *testing.T) {
	log, _ := testLogger()
	e := mustNew(t, Options{DisableHost: true, Logger: log, TextFont: "bold 30px Go"})

	ops, err := e.RenderPrimitives(gauge.NewSpec(0.5), 300, 200)
	if err != nil {
		t.Fatalf("RenderPrimitives() error: %v", err)
	}
	for _, op := range ops {
		if op.Op == canvas.OpText && op.Style.Font.Size != 30 {
			t.Errorf("font size = %v, want 30", op.Style.Font.Size)
		}
	}

	if _, err := New(Options{DisableHost: true, Logger: log, LabelFont: "huge"}); !errors.Is(err, canvas.ErrBadFont) {
		t.Errorf("New() error = %v, want ErrBadFont", err)
	}
}

func TestGeometry_CentresDial(t *testing.T) {
	log, _ := testLogger()
	e := mustNew(t, Options{DisableHost: true, Clamp: true, Logger: log})

	g, err := e.Geometry(gauge.NewSpec(1.5), 300, 200)
	if err != nil {
		t.Fatalf("Geometry() error: %v", err)
	}
	if g.Center.X != 150 || g.Center.Y != 100 {
		t.Errorf("center = %+v, want (150,100)", g.Center)
	}
	if g.Normalized != 1 {
		t.Errorf("normalized = %v, want clamped 1", g.Normalized)
	}
	if g.Radius != gauge.DefaultRadius {
		t.Errorf("radius = %v, want %v", g.Radius, gauge.DefaultRadius)
	}

	if _, err := e.Geometry(gauge.NewSpec(0.5).WithDomain(1, 1), 0, 0); !errors.Is(err, gauge.ErrInvalidDomain) {
		t.Errorf("err = %v, want ErrInvalidDomain", err)
	}
}

// valueSweep is the total sweep of the arcs stroked in color.
func valueSweep(ops []canvas.Primitive, color string) float64 {
	var total float64
	for _, op := range ops {
		if op.Op != canvas.OpArc || op.Stroke == nil || op.Stroke.Color != color {
			continue
		}
		from, to := canvas.ArcSweep(op.Start, op.End, op.Anticlockwise)
		total += to - from
	}
	return total
}

func TestRenderPrimitives_BothPathsShareClampPolicy(t *testing.T) {
	tests := []struct {
		name  string
		clamp bool
		value float64
		want  float64
	}{
		{"overshoot above", false, 1.5, 3 * math.Pi / 2},
		{"overshoot below", false, -0.5, 3 * math.Pi / 2},
		{"in range", false, 0.5, math.Pi / 2},
		{"clamped above", true, 1.5, math.Pi},
		{"clamped below", true, -0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, _ := testLogger()
			e := mustNew(t, Options{Host: chart.NewRegistry(), Clamp: tt.clamp, Logger: log})
			spec := gauge.NewSpec(tt.value)

			plugin, err := e.RendererFor(StrategyPlugin)
			if err != nil {
				t.Fatalf("RendererFor(plugin) error: %v", err)
			}
			alone, _ := e.RendererFor(StrategyStandalone)

			sweeps := map[string]float64{}
			for name, r := range map[string]Renderer{"plugin": plugin, "standalone": alone} {
				rec := canvas.NewRecorder(300, 200)
				if err := r.Render(rec, spec); err != nil {
					t.Fatalf("%s Render() error: %v", name, err)
				}
				color := gauge.DefaultPalette.Positive
				if name == "plugin" {
					color = gauge.DefaultRingColors.Accent
				}
				sweeps[name] = valueSweep(rec.Primitives(), color)
			}

			for name, got := range sweeps {
				if math.Abs(got-tt.want) > 1e-9 {
					t.Errorf("%s value sweep = %v, want %v", name, got, tt.want)
				}
			}
		})
	}
}

// ════════════════════════════════════════════════════════════════════
// Geometry
// ════════════════════════════════════════════════════════════════════

func TestGeometryFor_MatchesDrawnText(t *testing.T) {
	log, _ := testLogger()
	e := mustNew(t, Options{Host: chart.NewRegistry(), Logger: log})
	spec := gauge.NewSpec(0.5)

	for _, s := range []Strategy{StrategyPlugin, StrategyStandalone} {
		t.Run(string(s), func(t *testing.T) {
			r, err := e.RendererFor(s)
			if err != nil {
				t.Fatalf("RendererFor() error: %v", err)
			}
			g, err := e.GeometryFor(r, spec, 300, 200)
			if err != nil {
				t.Fatalf("GeometryFor() error: %v", err)
			}

			rec := canvas.NewRecorder(300, 200)
			if err := r.Render(rec, spec); err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			texts := rec.Filter(canvas.OpText)
			if len(texts) == 0 {
				t.Fatal("no text drawn")
			}
			if g.DisplayText != texts[0].Text {
				t.Errorf("display text = %q, drawn %q", g.DisplayText, texts[0].Text)
			}
			if g.Center.X != texts[0].X {
				t.Errorf("center x = %v, text x = %v", g.Center.X, texts[0].X)
			}
		})
	}

	plugin, _ := e.RendererFor(StrategyPlugin)
	g, err := e.GeometryFor(plugin, spec, 300, 200)
	if err != nil {
		t.Fatalf("GeometryFor() error: %v", err)
	}
	if g.Center.Y != 100 || g.DisplayText != "50.0%" {
		t.Errorf("plugin geometry = %+v, want centre y 100 and 50.0%%", g)
	}
}

func TestNew_SharedHostKeepsFirstClampPolicy(t *testing.T) {
	host := chart.NewRegistry()
	log, buf := testLogger()

	mustNew(t, Options{Host: host, Clamp: true, Logger: log})
	e := mustNew(t, Options{Host: host, Clamp: false, Logger: log})

	if !e.Clamp() {
		t.Error("Clamp() should report the policy of the registered controller")
	}
	if !strings.Contains(buf.String(), "another clamp policy") {
		t.Errorf("missing warning: %q", buf.String())
	}

	// Both paths clamp, so a value above the range stops at the dial end.
	g, err := e.GeometryFor(e.standalone, gauge.NewSpec(1.5), 300, 200)
	if err != nil {
		t.Fatalf("GeometryFor() error: %v", err)
	}
	if g.Normalized != 1 {
		t.Errorf("standalone normalized = %v, want 1", g.Normalized)
	}
}

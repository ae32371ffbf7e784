package engine

import (
	"github.com/seenimoa/confgauge/internal/canvas"
	"github.com/seenimoa/confgauge/internal/chart"
	"github.com/seenimoa/confgauge/internal/gauge"
	"github.com/seenimoa/confgauge/internal/gaugechart"
)

// PluginRenderer draws each gauge as a one-off chart of the gauge type.
type PluginRenderer struct {
	host *chart.Registry
}

// NewPluginRenderer returns a renderer creating charts on host.
func NewPluginRenderer(host *chart.Registry) *PluginRenderer {
	return &PluginRenderer{host: host}
}

func (p *PluginRenderer) Name() string { return string(StrategyPlugin) }

// Render builds a gauge chart for spec on surface and renders it once.
func (p *PluginRenderer) Render(surface canvas.Surface, spec gauge.Spec) error {
	c, err := chart.New(p.host, surface, ChartConfig(spec))
	if err != nil {
		return err
	}
	return c.Render()
}

// Geometry is the reading Render prints for spec on a w×h surface. The
// chart is built on a recorder and never drawn.
func (p *PluginRenderer) Geometry(spec gauge.Spec, w, h int) (gauge.Geometry, error) {
	c, err := chart.New(p.host, canvas.NewRecorder(w, h), ChartConfig(spec))
	if err != nil {
		return gauge.Geometry{}, err
	}
	return gaugechart.Geometry(c)
}

// ChartConfig is the gauge chart configuration showing spec.
func ChartConfig(spec gauge.Spec) chart.Config {
	value, lo, hi := spec.Value, spec.MinValue, spec.MaxValue
	return chart.Config{
		Type: gaugechart.TypeGauge,
		Data: chart.Data{Datasets: []*chart.Dataset{{
			Value:    &value,
			MinValue: &lo,
			MaxValue: &hi,
		}}},
		Options: chart.Options{
			ValueLabel: &chart.ValueLabel{
				Formatter: spec.Formatter,
				Label:     spec.Label,
			},
		},
	}
}

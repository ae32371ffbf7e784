// Package models defines the request and response types shared by the
// HTTP API and the CLI.
package models

import (
	"github.com/seenimoa/confgauge/internal/canvas"
	"github.com/seenimoa/confgauge/internal/gauge"
)

// GaugeRequest asks for one gauge render.
type GaugeRequest struct {
	Value    float64  `json:"value"`
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`
	Fake     bool     `json:"fake,omitempty"`
	Label    string   `json:"label,omitempty"`

	// Decimals overrides the renderer's default percentage precision.
	Decimals *int `json:"decimals,omitempty"`

	Strategy string `json:"strategy,omitempty"` // "plugin" or "standalone"; empty uses the selected one
	Format   string `json:"format,omitempty"`   // "svg", "png" or "json"
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// Spec converts the request into a gauge spec.
func (r GaugeRequest) Spec() gauge.Spec {
	s := gauge.NewSpec(r.Value)
	if r.MinValue != nil {
		s.MinValue = *r.MinValue
	}
	if r.MaxValue != nil {
		s.MaxValue = *r.MaxValue
	}
	s.Fake = r.Fake
	s.Label = r.Label
	if r.Decimals != nil {
		s.Formatter = gauge.PercentFormatter(*r.Decimals)
	}
	return s
}

// GaugeResponse is the JSON render of a gauge.
type GaugeResponse struct {
	Strategy   string             `json:"strategy"`
	Width      int                `json:"width"`
	Height     int                `json:"height"`
	Geometry   gauge.Geometry     `json:"geometry"`
	Primitives []canvas.Primitive `json:"primitives"`
}

// RingRequest asks for the two-segment fallback ring.
type RingRequest struct {
	Value    *float64 `json:"value,omitempty"`
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`
	Color    string   `json:"color,omitempty"`
	Format   string   `json:"format,omitempty"`
	Width    int      `json:"width,omitempty"`
	Height   int      `json:"height,omitempty"`
}

// ChartRequest creates a live gauge chart.
type ChartRequest struct {
	ID       string   `json:"id,omitempty"`
	Value    float64  `json:"value"`
	MinValue *float64 `json:"min_value,omitempty"`
	MaxValue *float64 `json:"max_value,omitempty"`
	Label    string   `json:"label,omitempty"`
	Width    int      `json:"width,omitempty"`
	Height   int      `json:"height,omitempty"`
}

// ChartInfo describes a live chart.
type ChartInfo struct {
	ID      string  `json:"id"`
	Type    string  `json:"type"`
	Value   float64 `json:"value"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Updates int     `json:"updates"`
}

// ValueUpdate carries a new reading for a live chart.
type ValueUpdate struct {
	Value float64 `json:"value"`
}

// GaugeEvent is broadcast to WebSocket clients after a live chart
// re-renders.
type GaugeEvent struct {
	ChartID string  `json:"chart_id"`
	Value   float64 `json:"value"`
	SVG     string  `json:"svg"`
}

// CanvasRequest creates or resizes a named canvas.
type CanvasRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DrawRequest draws a score on a named canvas.
type DrawRequest struct {
	Score  float64 `json:"score"`
	IsFake bool    `json:"isFake"`
}

// DrawResult reports whether a direct draw painted anything.
type DrawResult struct {
	ElementID string `json:"element_id"`
	Drawn     bool   `json:"drawn"`
}

// BatchItem is one entry of a batch render manifest.
type BatchItem struct {
	Name string `json:"name"`
	GaugeRequest
}

// BatchManifest lists gauges to render in one run.
type BatchManifest struct {
	Items []BatchItem `json:"items"`
}

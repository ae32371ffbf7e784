package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/seenimoa/confgauge/internal/canvas"
	"github.com/seenimoa/confgauge/internal/engine"
	"github.com/seenimoa/confgauge/internal/infra"
	"github.com/seenimoa/confgauge/internal/standalone"
	"github.com/seenimoa/confgauge/pkg/models"
	"github.com/seenimoa/confgauge/pkg/utils"
)

// maxSide bounds requested surface sizes.
const maxSide = 4096

// handleGaugeQuery renders a gauge described by query parameters:
//
//	GET /api/v1/gauge.svg?value=0.82&fake=true&label=Confidence
func (s *Server) handleGaugeQuery(format engine.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := gaugeRequestFromQuery(r.URL.Query())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.renderGauge(w, req, format)
	}
}

// handleGauge renders a gauge from a JSON body. The default format is the
// JSON breakdown: geometry plus drawing primitives.
func (s *Server) handleGauge(w http.ResponseWriter, r *http.Request) {
	var req models.GaugeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Format == "" {
		req.Format = string(engine.FormatJSON)
	}
	format, err := engine.ParseFormat(req.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := checkSize(req.Width, req.Height); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if format != engine.FormatJSON {
		s.renderGauge(w, req, format)
		return
	}

	renderer, err := s.rendererFor(req.Strategy)
	if err != nil {
		writeError(w, renderStatus(err), err.Error())
		return
	}

	spec := req.Spec()
	width, height := engine.Size(req.Width, req.Height)
	geom, err := s.engine.GeometryFor(renderer, spec, width, height)
	if err != nil {
		writeError(w, renderStatus(err), err.Error())
		return
	}
	rec := canvas.NewRecorder(width, height)
	if err := renderer.Render(rec, spec); err != nil {
		writeError(w, renderStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: models.GaugeResponse{
			Strategy:   renderer.Name(),
			Width:      width,
			Height:     height,
			Geometry:   geom,
			Primitives: rec.Primitives(),
		},
	})
}

// renderGauge encodes req in format, going through the render cache.
func (s *Server) renderGauge(w http.ResponseWriter, req models.GaugeRequest, format engine.Format) {
	renderer, err := s.rendererFor(req.Strategy)
	if err != nil {
		writeError(w, renderStatus(err), err.Error())
		return
	}

	key := gaugeCacheKey(req, format, renderer.Name())
	rendered, hit, err := s.cache.GetOrRender(key, func() (infra.Rendered, error) {
		body, err := s.engine.Render(renderer, format, req.Spec(), req.Width, req.Height)
		if err != nil {
			return infra.Rendered{}, err
		}
		return infra.Rendered{Body: body, ContentType: format.ContentType()}, nil
	})
	if err != nil {
		s.log.WithError(err).WithField("strategy", renderer.Name()).Debug("gauge render rejected")
		writeError(w, renderStatus(err), err.Error())
		return
	}

	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.Header().Set("X-Gauge-Strategy", renderer.Name())
	writeRendered(w, rendered)
}

// handleRing draws the two-segment fallback ring.
func (s *Server) handleRing(w http.ResponseWriter, r *http.Request) {
	var req models.RingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	format, err := engine.ParseFormat(req.Format)
	if err != nil || format == engine.FormatJSON {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported ring format %q", req.Format))
		return
	}
	if err := checkSize(req.Width, req.Height); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	width, height := engine.Size(req.Width, req.Height)
	opts := standalone.RingOptions{
		Value:    req.Value,
		MinValue: req.MinValue,
		MaxValue: req.MaxValue,
		Color:    req.Color,
	}

	var rendered infra.Rendered
	switch format {
	case engine.FormatPNG:
		surface := canvas.NewRaster(width, height, s.cfg.Render.Background)
		defer surface.Close()
		if _, err := s.engine.NewRing(surface, opts); err != nil {
			writeError(w, renderStatus(err), err.Error())
			return
		}
		var buf bytes.Buffer
		if err := surface.EncodePNG(&buf); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		rendered = infra.Rendered{Body: buf.Bytes(), ContentType: format.ContentType()}
	default:
		surface := canvas.NewSVG(width, height, s.cfg.Render.Background)
		if _, err := s.engine.NewRing(surface, opts); err != nil {
			writeError(w, renderStatus(err), err.Error())
			return
		}
		rendered = infra.Rendered{Body: surface.Bytes(), ContentType: format.ContentType()}
	}
	writeRendered(w, rendered)
}

func (s *Server) rendererFor(strategy string) (engine.Renderer, error) {
	switch engine.Strategy(strategy) {
	case "", engine.StrategyPlugin, engine.StrategyStandalone:
		return s.engine.RendererFor(engine.Strategy(strategy))
	}
	return nil, fmt.Errorf("%w: unknown strategy %q", errBadRequest, strategy)
}

// gaugeRequestFromQuery reads a gauge request from URL parameters. Only
// value is required.
func gaugeRequestFromQuery(q url.Values) (models.GaugeRequest, error) {
	var req models.GaugeRequest

	raw := q.Get("value")
	if raw == "" {
		return req, fmt.Errorf("value is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return req, fmt.Errorf("invalid value %q", raw)
	}
	req.Value = v

	if req.MinValue, err = optionalFloat(q, "min"); err != nil {
		return req, err
	}
	if req.MaxValue, err = optionalFloat(q, "max"); err != nil {
		return req, err
	}
	if f := q.Get("fake"); f != "" {
		if req.Fake, err = strconv.ParseBool(f); err != nil {
			return req, fmt.Errorf("invalid fake %q", f)
		}
	}
	if d := q.Get("decimals"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 0 || n > 10 {
			return req, fmt.Errorf("invalid decimals %q", d)
		}
		req.Decimals = &n
	}

	req.Label = q.Get("label")
	req.Strategy = q.Get("strategy")
	if req.Width, err = optionalInt(q, "width"); err != nil {
		return req, err
	}
	if req.Height, err = optionalInt(q, "height"); err != nil {
		return req, err
	}
	return req, checkSize(req.Width, req.Height)
}

func optionalFloat(q url.Values, key string) (*float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", key, raw)
	}
	return &v, nil
}

func optionalInt(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return v, nil
}

func checkSize(width, height int) error {
	if width < 0 || height < 0 || width > maxSide || height > maxSide {
		return fmt.Errorf("size %dx%d out of range (max %d)", width, height, maxSide)
	}
	return nil
}

// gaugeCacheKey identifies a render by everything that changes its output.
func gaugeCacheKey(req models.GaugeRequest, format engine.Format, renderer string) string {
	width, height := engine.Size(req.Width, req.Height)
	params := map[string]string{
		"format":   string(format),
		"renderer": renderer,
		"value":    utils.FormatFloat(req.Value),
		"fake":     strconv.FormatBool(req.Fake),
		"label":    url.QueryEscape(req.Label),
		"width":    strconv.Itoa(width),
		"height":   strconv.Itoa(height),
	}
	if req.MinValue != nil {
		params["min"] = utils.FormatFloat(*req.MinValue)
	}
	if req.MaxValue != nil {
		params["max"] = utils.FormatFloat(*req.MaxValue)
	}
	if req.Decimals != nil {
		params["decimals"] = strconv.Itoa(*req.Decimals)
	}
	return infra.CacheKey(params)
}

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/seenimoa/confgauge/internal/canvas"
	"github.com/seenimoa/confgauge/internal/chart"
	"github.com/seenimoa/confgauge/internal/engine"
	"github.com/seenimoa/confgauge/internal/gauge"
	"github.com/seenimoa/confgauge/internal/gaugechart"
	"github.com/seenimoa/confgauge/pkg/models"
)

// liveChart is a gauge chart kept on the server and redrawn on every value
// update. Its mutex guards the chart and its surface.
type liveChart struct {
	mu      sync.Mutex
	id      string
	chart   *chart.Chart
	surface *canvas.SVG
	updates int
}

func (lc *liveChart) value() float64 {
	ds := lc.chart.Data().Datasets
	if len(ds) == 0 || ds[0].Value == nil {
		return 0
	}
	return *ds[0].Value
}

// info must be called with lc.mu held.
func (lc *liveChart) info() models.ChartInfo {
	return models.ChartInfo{
		ID:      lc.id,
		Type:    lc.chart.Type(),
		Value:   lc.value(),
		Width:   lc.surface.Width(),
		Height:  lc.surface.Height(),
		Updates: lc.updates,
	}
}

// event must be called with lc.mu held or from an update listener.
func (lc *liveChart) event() models.GaugeEvent {
	return models.GaugeEvent{
		ChartID: lc.id,
		Value:   lc.value(),
		SVG:     string(lc.surface.Bytes()),
	}
}

type chartStore struct {
	mu     sync.RWMutex
	charts map[string]*liveChart
	seq    atomic.Int64
}

func newChartStore() *chartStore {
	return &chartStore{charts: make(map[string]*liveChart)}
}

func (cs *chartStore) get(id string) (*liveChart, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	lc, ok := cs.charts[id]
	return lc, ok
}

// add stores lc under its id, assigning one when empty. It reports false
// when the id is taken.
func (cs *chartStore) add(lc *liveChart) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if lc.id == "" {
		for {
			lc.id = fmt.Sprintf("chart-%d", cs.seq.Add(1))
			if _, taken := cs.charts[lc.id]; !taken {
				break
			}
		}
	}
	if _, taken := cs.charts[lc.id]; taken {
		return false
	}
	cs.charts[lc.id] = lc
	return true
}

func (cs *chartStore) remove(id string) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.charts[id]; !ok {
		return false
	}
	delete(cs.charts, id)
	return true
}

func (cs *chartStore) len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.charts)
}

func (cs *chartStore) list() []*liveChart {
	cs.mu.RLock()
	out := make([]*liveChart, 0, len(cs.charts))
	for _, lc := range cs.charts {
		out = append(out, lc)
	}
	cs.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// snapshot returns the current state of chart id as an update event.
func (cs *chartStore) snapshot(id string) (models.GaugeEvent, bool) {
	lc, ok := cs.get(id)
	if !ok {
		return models.GaugeEvent{}, false
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.event(), true
}

// ============================================================
// Handlers
// ============================================================

// handleCreateChart creates a live gauge chart. It needs the plugin path:
// with the standalone strategy there is no chart host to create it on.
func (s *Server) handleCreateChart(w http.ResponseWriter, r *http.Request) {
	host := s.engine.Host()
	if host == nil {
		writeError(w, http.StatusConflict, engine.ErrPluginUnavailable.Error())
		return
	}

	var req models.ChartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := checkSize(req.Width, req.Height); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	spec := gauge.NewSpec(req.Value)
	if req.MinValue != nil {
		spec.MinValue = *req.MinValue
	}
	if req.MaxValue != nil {
		spec.MaxValue = *req.MaxValue
	}
	spec.Label = req.Label

	width, height := engine.Size(req.Width, req.Height)
	surface := canvas.NewSVG(width, height, s.cfg.Render.Background)
	c, err := chart.New(host, surface, engine.ChartConfig(spec))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := c.Render(); err != nil {
		writeError(w, renderStatus(err), err.Error())
		return
	}

	lc := &liveChart{id: req.ID, chart: c, surface: surface}
	if !s.charts.add(lc) {
		writeError(w, http.StatusConflict, "chart already exists: "+req.ID)
		return
	}
	c.OnUpdate(func(*chart.Chart) {
		s.wsHub.Broadcast(WSMessage{Type: MsgGaugeUpdate, Data: lc.event()})
	})

	s.log.WithFields(logrus.Fields{"chart": lc.id, "value": req.Value}).Info("live chart created")

	lc.mu.Lock()
	info := lc.info()
	lc.mu.Unlock()
	writeJSON(w, http.StatusCreated, APIResponse{Success: true, Data: info})
}

func (s *Server) handleListCharts(w http.ResponseWriter, r *http.Request) {
	charts := s.charts.list()
	infos := make([]models.ChartInfo, 0, len(charts))
	for _, lc := range charts {
		lc.mu.Lock()
		infos = append(infos, lc.info())
		lc.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: infos})
}

// handleGetChart returns the chart as SVG, or its description with
// ?format=json.
func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lc, ok := s.charts.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "chart not found: "+id)
		return
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if r.URL.Query().Get("format") == string(engine.FormatJSON) {
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: lc.info()})
		return
	}
	w.Header().Set("Content-Type", engine.FormatSVG.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = lc.surface.WriteTo(w)
}

// handleUpdateChart stores a new value on a live chart, redraws it and
// pushes the result to WebSocket clients.
func (s *Server) handleUpdateChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	lc, ok := s.charts.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "chart not found: "+id)
		return
	}

	var req models.ValueUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()
	previous := lc.value()
	if !gaugechart.UpdateGauge(lc.chart, req.Value) {
		// Restore the last drawable reading.
		gaugechart.UpdateGauge(lc.chart, previous)
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("value %v cannot be drawn", req.Value))
		return
	}
	lc.updates++
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: lc.info()})
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.charts.remove(id) {
		writeError(w, http.StatusNotFound, "chart not found: "+id)
		return
	}
	s.wsHub.Broadcast(WSMessage{Type: MsgChartRemoved, Data: id})
	s.log.WithField("chart", id).Info("live chart removed")
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]string{"deleted": id}})
}

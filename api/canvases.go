package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/seenimoa/confgauge/internal/canvas"
	"github.com/seenimoa/confgauge/internal/engine"
	"github.com/seenimoa/confgauge/internal/standalone"
	"github.com/seenimoa/confgauge/pkg/models"
)

// canvasStore holds named SVG canvases. Surfaces are not safe for
// concurrent use, so draws and reads are serialised.
type canvasStore struct {
	doc    *canvas.Document
	drawMu sync.Mutex
}

func newCanvasStore() *canvasStore {
	return &canvasStore{doc: canvas.NewDocument()}
}

func (s *Server) handleListCanvases(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: s.canvases.doc.IDs()})
}

// handlePutCanvas creates or replaces a blank canvas.
func (s *Server) handlePutCanvas(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.CanvasRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := checkSize(req.Width, req.Height); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	width, height := engine.Size(req.Width, req.Height)
	s.canvases.drawMu.Lock()
	s.canvases.doc.Set(id, canvas.NewSVG(width, height, s.cfg.Render.Background))
	s.canvases.drawMu.Unlock()

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    models.CanvasRequest{Width: width, Height: height},
	})
}

// handleGetCanvas returns the canvas content as SVG.
func (s *Server) handleGetCanvas(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	surface, ok := s.canvases.doc.GetElementByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "canvas not found: "+id)
		return
	}
	svg, ok := surface.(*canvas.SVG)
	if !ok {
		writeError(w, http.StatusInternalServerError, "canvas is not an SVG surface: "+id)
		return
	}

	s.canvases.drawMu.Lock()
	body := svg.Bytes()
	s.canvases.drawMu.Unlock()

	w.Header().Set("Content-Type", engine.FormatSVG.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleDrawCanvas draws a score on a named canvas. A missing canvas is not
// an error: nothing is drawn and the result says so.
func (s *Server) handleDrawCanvas(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.DrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	s.canvases.drawMu.Lock()
	drawn := standalone.DrawGaugeChart(s.canvases.doc, id, req.Score, req.IsFake)
	s.canvases.drawMu.Unlock()

	if !drawn {
		s.log.WithField("canvas", id).Debug("direct draw skipped")
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    models.DrawResult{ElementID: id, Drawn: drawn},
	})
}

func (s *Server) handleDeleteCanvas(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.canvases.drawMu.Lock()
	removed := s.canvases.doc.Remove(id)
	s.canvases.drawMu.Unlock()
	if !removed {
		writeError(w, http.StatusNotFound, "canvas not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: map[string]string{"deleted": id}})
}

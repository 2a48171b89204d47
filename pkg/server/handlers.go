package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/roadsketch/roadsketch/pkg/render"
	"github.com/roadsketch/roadsketch/pkg/roads"
)

// handleCityRoads serves the extracted road network as JSON.
func (s *Server) handleCityRoads(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	city := r.URL.Query().Get("city")

	result, err := s.pipeline.Extract(r.Context(), city)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.Error("failed to encode roads response", "error", err)
	}
}

// handleCitySVG serves a rendered SVG map. With download=1 the response
// carries an attachment disposition using the sanitized city filename.
func (s *Server) handleCitySVG(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	city := r.URL.Query().Get("city")

	result, err := s.pipeline.Extract(r.Context(), city)
	if err != nil {
		s.writeError(w, err)
		return
	}

	paths := render.Project(result.Roads, result.Bounds)
	render.SortLayers(paths)
	doc := render.SVG(result.City, paths)

	w.Header().Set("Content-Type", "image/svg+xml")
	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", render.Filename(result.City)))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		s.logger.Error("failed to write svg response", "error", err)
	}
}

// writeError maps pipeline failures onto HTTP statuses with a JSON body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch roads.KindOf(err) {
	case roads.KindInvalidInput:
		status = http.StatusBadRequest
	case roads.KindCityNotFound, roads.KindEmptyRoadSet:
		status = http.StatusNotFound
	case roads.KindServiceBusy:
		status = http.StatusServiceUnavailable
	case roads.KindFetchFailed:
		status = http.StatusInternalServerError
	}

	if status >= 500 {
		s.logger.Error("extraction failed", "error", err)
	} else {
		s.logger.Info("extraction rejected", "error", err)
	}

	writeErrorBody(w, status, roads.UserMessage(err))
}

func writeErrorBody(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}

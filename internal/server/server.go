// Package server exposes the classifier over HTTP: single-point Köppen
// classification, model inference, label metadata, and run history.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/DylanKirbs/BiomeClassification/internal/bayes"
	"github.com/DylanKirbs/BiomeClassification/internal/feature"
	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
	"github.com/DylanKirbs/BiomeClassification/internal/store"
)

// Server wires the classification endpoints. The model and run store are
// optional; their endpoints answer 503 when absent.
type Server struct {
	extractor feature.Extractor
	model     *bayes.Model
	runs      store.Store
}

// New builds a server. model and runs may be nil.
func New(extractor feature.Extractor, model *bayes.Model, runs store.Store) *Server {
	return &Server{extractor: extractor, model: model, runs: runs}
}

// Router assembles the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/labels", s.handleLabels)
		r.Post("/koppen", s.handleKoppen)
		r.Post("/predict", s.handlePredict)
		r.Get("/runs", s.handleListRuns)
	})
	return r
}

// requestLogger logs each request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type labelInfo struct {
	Label koppen.Label `json:"label"`
	Code  int          `json:"code"`
	Color string       `json:"color"`
}

func (s *Server) handleLabels(w http.ResponseWriter, _ *http.Request) {
	out := make([]labelInfo, 0, len(koppen.Labels))
	for _, label := range koppen.Labels {
		out = append(out, labelInfo{Label: label, Code: label.Code(), Color: label.Color()})
	}
	writeJSON(w, http.StatusOK, out)
}

// climateRequest is the shared request body for classification endpoints.
type climateRequest struct {
	Temp []float64 `json:"temp"` // 12 monthly mean temperatures, Celsius
	Prec []float64 `json:"prec"` // 12 monthly precipitation totals, mm
	Lat  float64   `json:"lat"`
	// Passthrough carries additional feature values in schema order, used
	// only by /v1/predict.
	Passthrough []float64 `json:"passthrough,omitempty"`
}

func (s *Server) handleKoppen(w http.ResponseWriter, r *http.Request) {
	var req climateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := koppen.NewRecord(req.Temp, req.Prec, req.Lat)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	label := koppen.Classify(rec)
	writeJSON(w, http.StatusOK, labelInfo{Label: label, Code: label.Code(), Color: label.Color()})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if s.model == nil {
		writeError(w, http.StatusServiceUnavailable, "no model loaded")
		return
	}

	var req climateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := koppen.NewRecord(req.Temp, req.Prec, req.Lat)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	expected := len(s.extractor.Schema().Passthrough)
	if len(req.Passthrough) != expected {
		writeError(w, http.StatusUnprocessableEntity, "wrong passthrough length")
		return
	}

	vec := s.extractor.FromRecord(rec, req.Passthrough)
	pred, err := s.model.Predict(vec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"label":     pred.Label,
		"code":      pred.Label.Code(),
		"posterior": pred.Posterior,
	})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "no run store configured")
		return
	}

	filter := store.RunFilter{
		Kind:   store.RunKind(r.URL.Query().Get("kind")),
		Status: store.RunStatus(r.URL.Query().Get("status")),
	}
	runs, err := s.runs.ListRuns(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list runs failed")
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/studyplan/internal/model"
)

// Recommender builds a student's recommendation set.
type Recommender interface {
	Recommend(ctx context.Context, studentID string) (model.RecommendationSet, error)
}

// Analyzer builds a student's performance summary.
type Analyzer interface {
	Analyze(ctx context.Context, studentID string) (model.PerformanceSummary, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	recommender Recommender
	analyzer    Analyzer
	store       Pinger
}

// New creates a new Handler.
func New(r Recommender, a Analyzer, p Pinger) *Handler {
	return &Handler{recommender: r, analyzer: a, store: p}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
	r.Get("/api/recommendations/student/{studentID}", h.handleRecommendations)
	r.Get("/api/students/{studentID}/performance", h.handlePerformance)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	set, err := h.recommender.Recommend(r.Context(), studentID)
	if err != nil {
		slog.Error("recommendation failed", "student_id", studentID, "error", err)
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Recommendation process failed"})
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (h *Handler) handlePerformance(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	summary, err := h.analyzer.Analyze(r.Context(), studentID)
	if err != nil {
		slog.Error("performance analysis failed", "student_id", studentID, "error", err)
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Performance analysis failed"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

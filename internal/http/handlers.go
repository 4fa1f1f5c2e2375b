package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"tourism-system/internal/metrics"
	"tourism-system/internal/repo"
	"tourism-system/internal/services/tourism"
)

var validate = validator.New()

// QueryProcessor is the orchestration entry point the handler calls.
type QueryProcessor interface {
	Process(ctx context.Context, query, placeOverride string, limit int) *tourism.Answer
}

// TourismHandler handles tourism query and history HTTP requests
type TourismHandler struct {
	service QueryProcessor
	history repo.Repository
}

func NewTourismHandler(service QueryProcessor, history repo.Repository) *TourismHandler {
	return &TourismHandler{service: service, history: history}
}

// RegisterRoutes registers all tourism routes
func (h *TourismHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/tourism", func(r chi.Router) {
		r.Post("/query", h.Query)
		r.Get("/history", h.History)
		r.Get("/history/stats", h.HistoryStats)
		r.Get("/history/place/{name}", h.PlaceHistory)
	})
}

// Query answers a natural-language tourism query. Domain failures (unknown
// place, unavailable upstreams) come back as a structured answer with
// success=false, not as an HTTP error; 4xx is reserved for malformed input.
func (h *TourismHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req tourism.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	answer := h.service.Process(r.Context(), req.Query, req.Place, req.Limit)
	answer.Timestamp = time.Now().UTC()

	metrics.QueriesTotal.WithLabelValues(outcome(answer)).Inc()

	// Fire-and-forget: history failures never alter the answer.
	go h.saveInteraction(req.Query, r.RemoteAddr, answer)

	writeJSON(w, http.StatusOK, answer)
}

func outcome(answer *tourism.Answer) string {
	switch {
	case !answer.Success && answer.Error == tourism.ErrCodePlaceNotFound:
		return "place_not_found"
	case !answer.Success:
		return "internal_error"
	case answer.Places != nil && len(answer.Places) == 0:
		return "partial"
	default:
		return "success"
	}
}

func (h *TourismHandler) saveInteraction(query, userIP string, answer *tourism.Answer) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	params := repo.SaveInteractionParams{
		Query:       query,
		HasWeather:  answer.Weather != nil,
		HasPlaces:   len(answer.Places) > 0,
		PlacesCount: len(answer.Places),
		Success:     answer.Success,
	}
	if answer.PlaceName != "" {
		params.PlaceName = &answer.PlaceName
	}
	if userIP != "" {
		params.UserIP = &userIP
	}
	if answer.Weather != nil {
		params.WeatherTemp = &answer.Weather.Temperature
		params.WeatherRainProb = &answer.Weather.RainProbability
	}
	if answer.Error != "" {
		params.Error = &answer.Error
	}

	id, err := h.history.SaveInteraction(ctx, params)
	if err != nil {
		log.Error().Err(err).Msg("Failed to save query history")
		return
	}
	log.Debug().Int64("history_id", id).Msg("Saved query history")
}

// History returns recent interactions, optionally limited to the last N days.
func (h *TourismHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", 10, 100)
	days := parseIntParam(r, "days", 0, 365)

	history, err := h.history.GetRecent(r.Context(), limit, days)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch query history")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to fetch history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"count":   len(history),
		"history": history,
	})
}

func (h *TourismHandler) HistoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.history.GetStats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch query stats")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to fetch stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

func (h *TourismHandler) PlaceHistory(w http.ResponseWriter, r *http.Request) {
	placeName := chi.URLParam(r, "name")
	limit := parseIntParam(r, "limit", 5, 100)

	history, err := h.history.GetByPlace(r.Context(), placeName, limit)
	if err != nil {
		log.Error().Err(err).Str("place", placeName).Msg("Failed to fetch place history")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to fetch place history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"place_name": placeName,
		"count":      len(history),
		"history":    history,
	})
}

func parseIntParam(r *http.Request, name string, defaultValue, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 || value > max {
		return defaultValue
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}

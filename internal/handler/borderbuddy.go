package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/borderbuddy/travel-platform/internal/middleware"
	"github.com/borderbuddy/travel-platform/internal/model"
	"github.com/borderbuddy/travel-platform/internal/ratelimit"
	"github.com/borderbuddy/travel-platform/internal/service"
	"github.com/borderbuddy/travel-platform/pkg/logger"
	"github.com/borderbuddy/travel-platform/pkg/metrics"
)

// BuddyHandler handles the buddy enable, travel context and place
// suggestion endpoints.
type BuddyHandler struct {
	service        *service.BorderBuddyService
	limiter        *ratelimit.Limiter
	generateLimit  int
	generateWindow time.Duration
	logger         *logger.Logger
}

// NewBuddyHandler creates a new buddy handler.
func NewBuddyHandler(svc *service.BorderBuddyService, limiter *ratelimit.Limiter, generateLimit int, generateWindow time.Duration, log *logger.Logger) *BuddyHandler {
	return &BuddyHandler{
		service:        svc,
		limiter:        limiter,
		generateLimit:  generateLimit,
		generateWindow: generateWindow,
		logger:         log,
	}
}

// Enable handles POST /api/v1/trips/{id}/borderbuddy
func (h *BuddyHandler) Enable(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tripID := chi.URLParam(r, "id")

	res, err := h.service.Enable(r.Context(), tripID, userID)
	if err != nil {
		writeServiceError(w, err, "failed to enable borderbuddy")
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

// GetContext handles GET /api/v1/trips/{id}/borderbuddy/context
func (h *BuddyHandler) GetContext(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tripID := chi.URLParam(r, "id")

	tc, err := h.service.GetContext(r.Context(), tripID, userID)
	if err != nil {
		writeServiceError(w, err, "failed to load travel context")
		return
	}

	writeJSON(w, http.StatusOK, tc)
}

// SaveContext handles PUT /api/v1/trips/{id}/borderbuddy/context
func (h *BuddyHandler) SaveContext(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tripID := chi.URLParam(r, "id")

	var tc model.TravelContext
	if err := json.NewDecoder(r.Body).Decode(&tc); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.service.SaveContext(r.Context(), tripID, userID, &tc)
	if err != nil {
		writeServiceError(w, err, "failed to save travel context")
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// GetPlaces handles GET /api/v1/trips/{id}/borderbuddy/places
func (h *BuddyHandler) GetPlaces(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tripID := chi.URLParam(r, "id")

	set, err := h.service.GetPlaces(r.Context(), tripID, userID)
	if err != nil {
		writeServiceError(w, err, "failed to load places")
		return
	}

	writeJSON(w, http.StatusOK, set)
}

// GeneratePlaces handles POST /api/v1/trips/{id}/borderbuddy/places
func (h *BuddyHandler) GeneratePlaces(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tripID := chi.URLParam(r, "id")

	key := fmt.Sprintf("%s:%s:places:generate", userID, tripID)
	if !h.limiter.Consume(key, h.generateLimit, h.generateWindow) {
		metrics.RateLimitRejections.WithLabelValues("places:generate").Inc()
		writeError(w, http.StatusTooManyRequests, "too many generation requests, try again later")
		return
	}

	var req model.GeneratePlacesRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	set, err := h.service.GeneratePlaces(r.Context(), tripID, userID, req.Seed)
	if err != nil {
		writeServiceError(w, err, "failed to generate places")
		return
	}

	writeJSON(w, http.StatusOK, set)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/borderbuddy/travel-platform/internal/middleware"
	"github.com/borderbuddy/travel-platform/internal/model"
	"github.com/borderbuddy/travel-platform/internal/service"
	"github.com/borderbuddy/travel-platform/pkg/logger"
)

// TripHandler handles trip CRUD endpoints.
type TripHandler struct {
	service *service.TripService
	logger  *logger.Logger
}

// NewTripHandler creates a new trip handler.
func NewTripHandler(svc *service.TripService, log *logger.Logger) *TripHandler {
	return &TripHandler{
		service: svc,
		logger:  log,
	}
}

// Create handles POST /api/v1/trips
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req model.CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateTitle(req.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateTripDates(req.StartDate, req.EndDate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		writeServiceError(w, err, "failed to create trip")
		return
	}

	writeJSON(w, http.StatusCreated, trip)
}

// List handles GET /api/v1/trips
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	trips, err := h.service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "failed to list trips")
		return
	}

	writeJSON(w, http.StatusOK, model.ListTripsResponse{Trips: trips, Total: len(trips)})
}

// Get handles GET /api/v1/trips/{id}
func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tripID := chi.URLParam(r, "id")

	trip, err := h.service.Get(r.Context(), tripID, userID)
	if err != nil {
		writeServiceError(w, err, "failed to load trip")
		return
	}

	writeJSON(w, http.StatusOK, trip)
}

// Update handles PUT /api/v1/trips/{id}
func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tripID := chi.URLParam(r, "id")

	var req model.UpdateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title != "" {
		if err := middleware.ValidateTitle(req.Title); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := middleware.ValidateTripDates(req.StartDate, req.EndDate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	trip, err := h.service.Update(r.Context(), tripID, userID, &req)
	if err != nil {
		writeServiceError(w, err, "failed to update trip")
		return
	}

	writeJSON(w, http.StatusOK, trip)
}

// Delete handles DELETE /api/v1/trips/{id}
func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	tripID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), tripID, userID); err != nil {
		writeServiceError(w, err, "failed to delete trip")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

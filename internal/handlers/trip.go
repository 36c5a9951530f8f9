package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"wescape-backend/internal/apierr"
	"wescape-backend/internal/middleware"
	"wescape-backend/internal/models"
	"wescape-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// TripHandler handles trip HTTP requests
type TripHandler struct {
	tripService  *services.TripService
	coverService *services.CoverService
	hub          *services.CanvasHub
	debug        bool
}

// NewTripHandler creates a new trip handler
func NewTripHandler(tripService *services.TripService, coverService *services.CoverService, hub *services.CanvasHub, debug bool) *TripHandler {
	return &TripHandler{
		tripService:  tripService,
		coverService: coverService,
		hub:          hub,
		debug:        debug,
	}
}

// Create handles POST /trips
func (h *TripHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req models.TripCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apierr.BadRequest("Invalid request body"), h.debug)
		return
	}

	trip, err := h.tripService.Create(ctx, userID, &req)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create trip")
		respondError(w, err, h.debug)
		return
	}

	log.Info().Str("user_id", userID).Str("trip_id", trip.ID).Msg("Trip created")
	respondSuccess(w, "Trip created successfully", trip)
}

// List handles GET /trips?limit=&offset=
func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	limit := 50
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			respondError(w, apierr.BadRequest("limit must be an integer"), h.debug)
			return
		}
		limit = parsed
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil {
			respondError(w, apierr.BadRequest("offset must be an integer"), h.debug)
			return
		}
		offset = parsed
	}

	trips, err := h.tripService.List(ctx, userID, limit, offset)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to list trips")
		respondError(w, err, h.debug)
		return
	}

	respondSuccess(w, "Trips retrieved successfully", trips)
}

// Get handles GET /trips/{trip_id}
func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	tripID := chi.URLParam(r, "trip_id")

	trip, err := h.tripService.Get(ctx, userID, tripID)
	if err != nil {
		respondError(w, err, h.debug)
		return
	}

	respondSuccess(w, "Trip retrieved successfully", trip)
}

// GetFull handles GET /trips/{trip_id}/full
func (h *TripHandler) GetFull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	tripID := chi.URLParam(r, "trip_id")

	data, err := h.tripService.GetFullData(ctx, userID, tripID)
	if err != nil {
		respondError(w, err, h.debug)
		return
	}

	respondSuccess(w, "Trip data retrieved successfully", data)
}

// Update handles PUT /trips/{trip_id}
func (h *TripHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	tripID := chi.URLParam(r, "trip_id")

	var req models.TripUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apierr.BadRequest("Invalid request body"), h.debug)
		return
	}

	trip, err := h.tripService.Update(ctx, userID, tripID, &req)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("trip_id", tripID).Msg("Failed to update trip")
		respondError(w, err, h.debug)
		return
	}

	h.hub.Broadcast(tripID, services.CanvasEvent{Type: services.EventTripUpdated, Data: trip})
	respondSuccess(w, "Trip updated successfully", trip)
}

// Delete handles DELETE /trips/{trip_id}
func (h *TripHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	tripID := chi.URLParam(r, "trip_id")

	if err := h.tripService.Delete(ctx, userID, tripID); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("trip_id", tripID).Msg("Failed to delete trip")
		respondError(w, err, h.debug)
		return
	}

	log.Info().Str("user_id", userID).Str("trip_id", tripID).Msg("Trip deleted")
	h.hub.Broadcast(tripID, services.CanvasEvent{Type: services.EventTripDeleted})
	respondSuccess(w, "Trip deleted successfully", nil)
}

// DuplicateRequest is the optional body for POST /trips/{trip_id}/duplicate
type DuplicateRequest struct {
	NewTitle string `json:"new_title"`
}

// Duplicate handles POST /trips/{trip_id}/duplicate
func (h *TripHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	tripID := chi.URLParam(r, "trip_id")

	var req DuplicateRequest
	if r.Body != nil {
		// Body is optional.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.NewTitle == "" {
		req.NewTitle = r.URL.Query().Get("new_title")
	}

	trip, err := h.tripService.Duplicate(ctx, userID, tripID, req.NewTitle)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("trip_id", tripID).Msg("Failed to duplicate trip")
		respondError(w, err, h.debug)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("source_trip_id", tripID).
		Str("new_trip_id", trip.ID).
		Msg("Trip duplicated")
	respondSuccess(w, "Trip duplicated successfully", trip)
}

// CoverUpload handles POST /trips/{trip_id}/cover-upload
func (h *TripHandler) CoverUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	tripID := chi.URLParam(r, "trip_id")

	var req services.CoverUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apierr.BadRequest("Invalid request body"), h.debug)
		return
	}
	if req.Filename == "" {
		respondError(w, apierr.BadRequest("filename is required"), h.debug)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	resp, err := h.coverService.PresignCoverUpload(ctx, userID, tripID, req.Filename, req.ContentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("trip_id", tripID).Msg("Failed to presign cover upload")
		respondError(w, err, h.debug)
		return
	}

	respondSuccess(w, "Upload URL generated successfully", resp)
}

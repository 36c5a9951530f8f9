package handlers

import (
	"encoding/json"
	"net/http"

	"wescape-backend/internal/apierr"
	"wescape-backend/internal/middleware"
	"wescape-backend/internal/models"
	"wescape-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ConnectionHandler handles connection HTTP requests
type ConnectionHandler struct {
	connService *services.ConnectionService
	hub         *services.CanvasHub
	debug       bool
}

// NewConnectionHandler creates a new connection handler
func NewConnectionHandler(connService *services.ConnectionService, hub *services.CanvasHub, debug bool) *ConnectionHandler {
	return &ConnectionHandler{
		connService: connService,
		hub:         hub,
		debug:       debug,
	}
}

// Create handles POST /trips/{trip_id}/connections
func (h *ConnectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	tripID := chi.URLParam(r, "trip_id")

	var req models.ConnectionCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apierr.BadRequest("Invalid request body"), h.debug)
		return
	}

	conn, err := h.connService.Create(ctx, userID, tripID, &req)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("trip_id", tripID).Msg("Failed to create connection")
		respondError(w, err, h.debug)
		return
	}

	h.hub.Broadcast(tripID, services.CanvasEvent{Type: services.EventConnectionCreated, Data: conn})
	respondSuccess(w, "Connection created successfully", conn)
}

// List handles GET /trips/{trip_id}/connections
func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	tripID := chi.URLParam(r, "trip_id")

	connections, err := h.connService.ListByTrip(ctx, userID, tripID)
	if err != nil {
		respondError(w, err, h.debug)
		return
	}

	respondSuccess(w, "Connections retrieved successfully", connections)
}

// Get handles GET /trips/connections/{connection_id}
func (h *ConnectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	connectionID := chi.URLParam(r, "connection_id")

	conn, err := h.connService.Get(ctx, userID, connectionID)
	if err != nil {
		respondError(w, err, h.debug)
		return
	}

	respondSuccess(w, "Connection retrieved successfully", conn)
}

// Update handles PUT /trips/connections/{connection_id}
func (h *ConnectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	connectionID := chi.URLParam(r, "connection_id")

	var req models.ConnectionUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apierr.BadRequest("Invalid request body"), h.debug)
		return
	}

	conn, err := h.connService.Update(ctx, userID, connectionID, &req)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("connection_id", connectionID).Msg("Failed to update connection")
		respondError(w, err, h.debug)
		return
	}

	h.hub.Broadcast(conn.TripID, services.CanvasEvent{Type: services.EventConnectionUpdated, Data: conn})
	respondSuccess(w, "Connection updated successfully", conn)
}

// Delete handles DELETE /trips/connections/{connection_id}
func (h *ConnectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	connectionID := chi.URLParam(r, "connection_id")

	tripID, err := h.connService.Delete(ctx, userID, connectionID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("connection_id", connectionID).Msg("Failed to delete connection")
		respondError(w, err, h.debug)
		return
	}

	h.hub.Broadcast(tripID, services.CanvasEvent{Type: services.EventConnectionDeleted, Data: map[string]string{"id": connectionID}})
	respondSuccess(w, "Connection deleted successfully", nil)
}

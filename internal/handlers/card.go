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

// CardHandler handles card HTTP requests
type CardHandler struct {
	cardService *services.CardService
	hub         *services.CanvasHub
	debug       bool
}

// NewCardHandler creates a new card handler
func NewCardHandler(cardService *services.CardService, hub *services.CanvasHub, debug bool) *CardHandler {
	return &CardHandler{
		cardService: cardService,
		hub:         hub,
		debug:       debug,
	}
}

// Create handles POST /trips/{trip_id}/cards
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	tripID := chi.URLParam(r, "trip_id")

	var req models.CardCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apierr.BadRequest("Invalid request body"), h.debug)
		return
	}

	card, err := h.cardService.Create(ctx, userID, tripID, &req)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("trip_id", tripID).Msg("Failed to create card")
		respondError(w, err, h.debug)
		return
	}

	h.hub.Broadcast(tripID, services.CanvasEvent{Type: services.EventCardCreated, Data: card})
	respondSuccess(w, "Card created successfully", card)
}

// List handles GET /trips/{trip_id}/cards
func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	tripID := chi.URLParam(r, "trip_id")

	cards, err := h.cardService.ListByTrip(ctx, userID, tripID)
	if err != nil {
		respondError(w, err, h.debug)
		return
	}

	respondSuccess(w, "Cards retrieved successfully", cards)
}

// Get handles GET /trips/cards/{card_id}
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	cardID := chi.URLParam(r, "card_id")

	card, err := h.cardService.Get(ctx, userID, cardID)
	if err != nil {
		respondError(w, err, h.debug)
		return
	}

	respondSuccess(w, "Card retrieved successfully", card)
}

// Update handles PUT /trips/cards/{card_id}
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	cardID := chi.URLParam(r, "card_id")

	var req models.CardUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apierr.BadRequest("Invalid request body"), h.debug)
		return
	}

	card, err := h.cardService.Update(ctx, userID, cardID, &req)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("card_id", cardID).Msg("Failed to update card")
		respondError(w, err, h.debug)
		return
	}

	h.hub.Broadcast(card.TripID, services.CanvasEvent{Type: services.EventCardUpdated, Data: card})
	respondSuccess(w, "Card updated successfully", card)
}

// BulkUpdate handles PUT /trips/cards/bulk-update
func (h *CardHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var updates []models.CardBulkUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		respondError(w, apierr.BadRequest("Invalid request body"), h.debug)
		return
	}

	cards, err := h.cardService.BulkUpdate(ctx, userID, updates)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Int("count", len(updates)).Msg("Failed to bulk update cards")
		respondError(w, err, h.debug)
		return
	}

	// A batch may touch several trips; notify each canvas once.
	byTrip := map[string][]*models.Card{}
	for _, card := range cards {
		byTrip[card.TripID] = append(byTrip[card.TripID], card)
	}
	for tripID, tripCards := range byTrip {
		h.hub.Broadcast(tripID, services.CanvasEvent{Type: services.EventCardsBulkUpdated, Data: tripCards})
	}

	respondSuccess(w, "Cards updated successfully", cards)
}

// Delete handles DELETE /trips/cards/{card_id}
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	cardID := chi.URLParam(r, "card_id")

	tripID, err := h.cardService.Delete(ctx, userID, cardID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("card_id", cardID).Msg("Failed to delete card")
		respondError(w, err, h.debug)
		return
	}

	h.hub.Broadcast(tripID, services.CanvasEvent{Type: services.EventCardDeleted, Data: map[string]string{"id": cardID}})
	respondSuccess(w, "Card deleted successfully", nil)
}

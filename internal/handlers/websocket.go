package handlers

import (
	"net/http"

	"wescape-backend/internal/apierr"
	"wescape-backend/internal/middleware"
	"wescape-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades canvas subscriptions on /ws
type WebSocketHandler struct {
	hub         *services.CanvasHub
	verifier    middleware.TokenVerifier
	tripService *services.TripService
	debug       bool
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.CanvasHub, verifier middleware.TokenVerifier, tripService *services.TripService, debug bool) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		verifier:    verifier,
		tripService: tripService,
		debug:       debug,
	}
}

// HandleCanvas handles GET /ws?token=&trip_id=. The token travels as a query
// parameter because browsers cannot set headers on WebSocket upgrades.
func (h *WebSocketHandler) HandleCanvas(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, apierr.Unauthorized("token required"), h.debug)
		return
	}

	userID, err := h.verifier.Verify(r.Context(), token)
	if err != nil {
		respondError(w, apierr.Unauthorized("Invalid authentication token"), h.debug)
		return
	}

	tripID := r.URL.Query().Get("trip_id")
	if tripID == "" {
		respondError(w, apierr.BadRequest("trip_id is required"), h.debug)
		return
	}

	// Subscribing to a canvas follows the same ownership gate as reading it.
	if _, err := h.tripService.Get(r.Context(), userID, tripID); err != nil {
		respondError(w, err, h.debug)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(tripID, userID, conn)
	defer h.hub.Unregister(tripID, conn)

	log.Info().
		Str("user_id", userID).
		Str("trip_id", tripID).
		Msg("Canvas subscription established")

	// Clients only listen; drain until the peer goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("user_id", userID).Msg("WebSocket read error")
			}
			return
		}
	}
}

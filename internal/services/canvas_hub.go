package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Canvas event types broadcast to trip subscribers.
const (
	EventTripUpdated       = "trip_updated"
	EventTripDeleted       = "trip_deleted"
	EventCardCreated       = "card_created"
	EventCardUpdated       = "card_updated"
	EventCardDeleted       = "card_deleted"
	EventCardsBulkUpdated  = "cards_bulk_updated"
	EventConnectionCreated = "connection_created"
	EventConnectionUpdated = "connection_updated"
	EventConnectionDeleted = "connection_deleted"
)

// CanvasEvent is a message pushed to clients viewing a trip's canvas.
type CanvasEvent struct {
	Type    string `json:"type"`
	TripID  string `json:"trip_id,omitempty"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// CanvasHub tracks WebSocket subscribers per trip and fans mutation events
// out to them. This is the only in-process state kept between requests.
type CanvasHub struct {
	mu    sync.RWMutex
	trips map[string]map[*websocket.Conn]string
}

// NewCanvasHub creates a new canvas hub
func NewCanvasHub() *CanvasHub {
	return &CanvasHub{
		trips: make(map[string]map[*websocket.Conn]string),
	}
}

// Register subscribes a connection to a trip's events. One user may hold
// several connections (multiple tabs).
func (h *CanvasHub) Register(tripID, userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers, ok := h.trips[tripID]
	if !ok {
		subscribers = make(map[*websocket.Conn]string)
		h.trips[tripID] = subscribers
	}
	subscribers[conn] = userID

	log.Info().
		Str("trip_id", tripID).
		Str("user_id", userID).
		Msg("Canvas subscriber registered")
}

// Unregister removes a connection's subscription and closes it.
func (h *CanvasHub) Unregister(tripID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers, ok := h.trips[tripID]
	if !ok {
		return
	}
	if _, exists := subscribers[conn]; !exists {
		return
	}

	conn.Close()
	delete(subscribers, conn)
	if len(subscribers) == 0 {
		delete(h.trips, tripID)
	}

	log.Info().Str("trip_id", tripID).Msg("Canvas subscriber unregistered")
}

// SubscriberCount reports how many connections are watching a trip.
func (h *CanvasHub) SubscriberCount(tripID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.trips[tripID])
}

// Broadcast sends an event to every subscriber of a trip. Write failures
// drop the subscriber.
func (h *CanvasHub) Broadcast(tripID string, event CanvasEvent) {
	event.TripID = tripID

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("trip_id", tripID).Msg("Failed to marshal canvas event")
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.trips[tripID]))
	for conn := range h.trips[tripID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Warn().
				Err(err).
				Str("trip_id", tripID).
				Str("event", event.Type).
				Msg("Dropping canvas subscriber after write failure")
			h.Unregister(tripID, conn)
		}
	}
}

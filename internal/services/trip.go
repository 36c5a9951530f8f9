// Package services holds the business logic between handlers and
// repositories: input validation, the ownership gate and the error taxonomy.
package services

import (
	"context"
	"errors"

	"wescape-backend/internal/apierr"
	"wescape-backend/internal/models"
	"wescape-backend/internal/repository"

	"github.com/google/uuid"
)

// TripStore is the trip persistence surface the service depends on.
type TripStore interface {
	Create(ctx context.Context, trip *models.Trip) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Trip, error)
	GetByID(ctx context.Context, id, userID string) (*models.Trip, error)
	IsOwned(ctx context.Context, id, userID string) (bool, error)
	Update(ctx context.Context, id, userID string, upd *models.TripUpdate) (*models.Trip, error)
	Delete(ctx context.Context, id, userID string) error
	InsertTree(ctx context.Context, trip *models.Trip, cards []*models.Card, connections []*models.Connection) error
}

// CardStore is the card persistence surface.
type CardStore interface {
	Create(ctx context.Context, card *models.Card) error
	ListByTrip(ctx context.Context, tripID string) ([]*models.Card, error)
	GetByID(ctx context.Context, id, userID string) (*models.Card, error)
	Update(ctx context.Context, id, userID string, upd *models.CardUpdate) (*models.Card, error)
	UpdateBatch(ctx context.Context, userID string, updates []models.CardBulkUpdate) ([]*models.Card, error)
	Delete(ctx context.Context, id, userID string) (string, error)
}

// ConnectionStore is the connection persistence surface.
type ConnectionStore interface {
	Create(ctx context.Context, conn *models.Connection) error
	ListByTrip(ctx context.Context, tripID string) ([]*models.Connection, error)
	GetByID(ctx context.Context, id, userID string) (*models.Connection, error)
	Update(ctx context.Context, id, userID string, upd *models.ConnectionUpdate) (*models.Connection, error)
	Delete(ctx context.Context, id, userID string) (string, error)
}

// TripService handles trip business logic
type TripService struct {
	tripRepo TripStore
	cardRepo CardStore
	connRepo ConnectionStore
}

// NewTripService creates a new trip service
func NewTripService(tripRepo TripStore, cardRepo CardStore, connRepo ConnectionStore) *TripService {
	return &TripService{
		tripRepo: tripRepo,
		cardRepo: cardRepo,
		connRepo: connRepo,
	}
}

// Create creates a new trip owned by the user.
func (s *TripService) Create(ctx context.Context, userID string, req *models.TripCreate) (*models.Trip, error) {
	if req.Title == "" {
		return nil, apierr.BadRequest("title is required")
	}

	trip := tripFromCreate(userID, req)
	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, apierr.BadRequest("Failed to create trip").Wrap(err)
	}
	return trip, nil
}

// List returns the user's trips ordered by last update, newest first.
func (s *TripService) List(ctx context.Context, userID string, limit, offset int) ([]*models.Trip, error) {
	if limit < 1 || limit > 100 {
		return nil, apierr.BadRequest("limit must be between 1 and 100")
	}
	if offset < 0 {
		return nil, apierr.BadRequest("offset must not be negative")
	}

	trips, err := s.tripRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, apierr.BadRequest("Failed to fetch trips").Wrap(err)
	}
	return trips, nil
}

// Get returns a trip owned by the user.
func (s *TripService) Get(ctx context.Context, userID, tripID string) (*models.Trip, error) {
	trip, err := s.tripRepo.GetByID(ctx, tripID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierr.NotFound("Trip not found")
		}
		return nil, apierr.BadRequest("Failed to fetch trip").Wrap(err)
	}
	return trip, nil
}

// Update applies a partial patch to a trip owned by the user. At least one
// field must be supplied.
func (s *TripService) Update(ctx context.Context, userID, tripID string, upd *models.TripUpdate) (*models.Trip, error) {
	if *upd == (models.TripUpdate{}) {
		return nil, apierr.BadRequest("No valid fields to update")
	}

	trip, err := s.tripRepo.Update(ctx, tripID, userID, upd)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apierr.NotFound("Trip not found")
		case errors.Is(err, repository.ErrEmptyUpdate):
			return nil, apierr.BadRequest("No valid fields to update")
		}
		return nil, apierr.BadRequest("Failed to update trip").Wrap(err)
	}
	return trip, nil
}

// Delete removes a trip owned by the user; its cards and connections cascade.
func (s *TripService) Delete(ctx context.Context, userID, tripID string) error {
	if err := s.tripRepo.Delete(ctx, tripID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierr.NotFound("Trip not found")
		}
		return apierr.BadRequest("Failed to delete trip").Wrap(err)
	}
	return nil
}

// GetFullData returns a trip with all of its cards and connections. Empty
// canvases yield empty slices, not errors.
func (s *TripService) GetFullData(ctx context.Context, userID, tripID string) (*models.TripFullData, error) {
	trip, err := s.Get(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	cards, err := s.cardRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, apierr.BadRequest("Failed to fetch trip data").Wrap(err)
	}

	connections, err := s.connRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, apierr.BadRequest("Failed to fetch trip data").Wrap(err)
	}

	return &models.TripFullData{
		Trip:        trip,
		Cards:       cards,
		Connections: connections,
	}, nil
}

// Duplicate deep-copies a trip owned by the user: descriptive fields, every
// card and every connection, with fresh identifiers throughout. Connection
// endpoints are remapped through the card id map, and the whole tree is
// inserted in one transaction. The cover image is not copied.
func (s *TripService) Duplicate(ctx context.Context, userID, tripID, newTitle string) (*models.Trip, error) {
	source, err := s.GetFullData(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	title := newTitle
	if title == "" {
		title = source.Trip.Title + " (Copy)"
	}

	newTrip := &models.Trip{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: source.Trip.Description,
		Destination: source.Trip.Destination,
		StartDate:   source.Trip.StartDate,
		EndDate:     source.Trip.EndDate,
		Budget:      source.Trip.Budget,
		Currency:    source.Trip.Currency,
		Visibility:  source.Trip.Visibility,
		Settings:    source.Trip.Settings,
		Metadata:    source.Trip.Metadata,
	}

	idMap := make(map[string]string, len(source.Cards))
	newCards := make([]*models.Card, 0, len(source.Cards))
	for _, card := range source.Cards {
		newID := uuid.New().String()
		idMap[card.ID] = newID
		newCards = append(newCards, &models.Card{
			ID:       newID,
			TripID:   newTrip.ID,
			Type:     card.Type,
			Title:    card.Title,
			Content:  card.Content,
			Position: card.Position,
			Style:    card.Style,
		})
	}

	newConnections := make([]*models.Connection, 0, len(source.Connections))
	for _, conn := range source.Connections {
		from, fromOK := idMap[conn.FromCardID]
		to, toOK := idMap[conn.ToCardID]
		if !fromOK || !toOK {
			// Dangling edge in the source; skip rather than fail the copy.
			continue
		}
		newConnections = append(newConnections, &models.Connection{
			ID:         uuid.New().String(),
			TripID:     newTrip.ID,
			FromCardID: from,
			ToCardID:   to,
			Type:       conn.Type,
			Metadata:   conn.Metadata,
		})
	}

	if err := s.tripRepo.InsertTree(ctx, newTrip, newCards, newConnections); err != nil {
		return nil, apierr.BadRequest("Failed to duplicate trip").Wrap(err)
	}
	return newTrip, nil
}

func tripFromCreate(userID string, req *models.TripCreate) *models.Trip {
	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
	}
	settings := req.Settings
	if settings == nil {
		settings = map[string]any{}
	}
	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	return &models.Trip{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Destination: req.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Budget:      req.Budget,
		Currency:    currency,
		Visibility:  visibility,
		CoverImage:  req.CoverImage,
		Settings:    settings,
		Metadata:    metadata,
	}
}

package services

import (
	"context"
	"errors"

	"wescape-backend/internal/apierr"
	"wescape-backend/internal/models"
	"wescape-backend/internal/repository"

	"github.com/google/uuid"
)

// ConnectionService handles connection business logic
type ConnectionService struct {
	connRepo ConnectionStore
	tripRepo TripOwnershipChecker
}

// NewConnectionService creates a new connection service
func NewConnectionService(connRepo ConnectionStore, tripRepo TripOwnershipChecker) *ConnectionService {
	return &ConnectionService{
		connRepo: connRepo,
		tripRepo: tripRepo,
	}
}

// Create creates a connection between two cards of a trip owned by the user.
// The datastore trigger validates that both cards belong to the trip.
func (s *ConnectionService) Create(ctx context.Context, userID, tripID string, req *models.ConnectionCreate) (*models.Connection, error) {
	if req.FromCardID == "" || req.ToCardID == "" {
		return nil, apierr.BadRequest("from_card_id and to_card_id are required")
	}

	if err := s.requireOwnership(ctx, tripID, userID); err != nil {
		return nil, err
	}

	conn := connectionFromCreate(tripID, req)
	if err := s.connRepo.Create(ctx, conn); err != nil {
		return nil, apierr.BadRequest("Failed to create connection").Wrap(err)
	}
	return conn, nil
}

// ListByTrip returns a trip's connections ordered by creation time.
func (s *ConnectionService) ListByTrip(ctx context.Context, userID, tripID string) ([]*models.Connection, error) {
	if err := s.requireOwnership(ctx, tripID, userID); err != nil {
		return nil, err
	}

	connections, err := s.connRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, apierr.BadRequest("Failed to fetch connections").Wrap(err)
	}
	return connections, nil
}

// Get returns a connection whose parent trip belongs to the user.
func (s *ConnectionService) Get(ctx context.Context, userID, connectionID string) (*models.Connection, error) {
	conn, err := s.connRepo.GetByID(ctx, connectionID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierr.NotFound("Connection not found")
		}
		return nil, apierr.BadRequest("Failed to fetch connection").Wrap(err)
	}
	return conn, nil
}

// Update applies a type/metadata patch to a connection whose parent trip
// belongs to the user.
func (s *ConnectionService) Update(ctx context.Context, userID, connectionID string, upd *models.ConnectionUpdate) (*models.Connection, error) {
	if *upd == (models.ConnectionUpdate{}) {
		return nil, apierr.BadRequest("No valid fields to update")
	}

	conn, err := s.connRepo.Update(ctx, connectionID, userID, upd)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apierr.NotFound("Connection not found")
		case errors.Is(err, repository.ErrEmptyUpdate):
			return nil, apierr.BadRequest("No valid fields to update")
		}
		return nil, apierr.BadRequest("Failed to update connection").Wrap(err)
	}
	return conn, nil
}

// Delete removes a connection whose parent trip belongs to the user and
// returns the parent trip id.
func (s *ConnectionService) Delete(ctx context.Context, userID, connectionID string) (string, error) {
	tripID, err := s.connRepo.Delete(ctx, connectionID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apierr.NotFound("Connection not found")
		}
		return "", apierr.BadRequest("Failed to delete connection").Wrap(err)
	}
	return tripID, nil
}

func (s *ConnectionService) requireOwnership(ctx context.Context, tripID, userID string) error {
	owned, err := s.tripRepo.IsOwned(ctx, tripID, userID)
	if err != nil {
		return apierr.BadRequest("Failed to verify trip ownership").Wrap(err)
	}
	if !owned {
		return apierr.Forbidden("Access denied: Trip not found or not owned by user")
	}
	return nil
}

func connectionFromCreate(tripID string, req *models.ConnectionCreate) *models.Connection {
	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}
	connType := req.Type
	if connType == "" {
		connType = "default"
	}
	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}

	return &models.Connection{
		ID:         id,
		TripID:     tripID,
		FromCardID: req.FromCardID,
		ToCardID:   req.ToCardID,
		Type:       connType,
		Metadata:   metadata,
	}
}

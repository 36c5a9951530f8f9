package services

import (
	"context"
	"errors"

	"wescape-backend/internal/apierr"
	"wescape-backend/internal/models"
	"wescape-backend/internal/repository"

	"github.com/google/uuid"
)

// TripOwnershipChecker is the ownership-gate primitive: card and connection
// mutations are authorized transitively through the parent trip's owner.
type TripOwnershipChecker interface {
	IsOwned(ctx context.Context, id, userID string) (bool, error)
}

// CardService handles card business logic
type CardService struct {
	cardRepo CardStore
	tripRepo TripOwnershipChecker
}

// NewCardService creates a new card service
func NewCardService(cardRepo CardStore, tripRepo TripOwnershipChecker) *CardService {
	return &CardService{
		cardRepo: cardRepo,
		tripRepo: tripRepo,
	}
}

// Create creates a card under a trip owned by the user. The client may
// supply the card id; one is generated otherwise.
func (s *CardService) Create(ctx context.Context, userID, tripID string, req *models.CardCreate) (*models.Card, error) {
	if !req.Type.Valid() {
		return nil, apierr.BadRequest("invalid card type")
	}
	if req.Title == "" {
		return nil, apierr.BadRequest("title is required")
	}

	if err := s.requireOwnership(ctx, tripID, userID); err != nil {
		return nil, err
	}

	card := cardFromCreate(tripID, req)
	if err := s.cardRepo.Create(ctx, card); err != nil {
		return nil, apierr.BadRequest("Failed to create card").Wrap(err)
	}
	return card, nil
}

// ListByTrip returns a trip's cards ordered by creation time.
func (s *CardService) ListByTrip(ctx context.Context, userID, tripID string) ([]*models.Card, error) {
	if err := s.requireOwnership(ctx, tripID, userID); err != nil {
		return nil, err
	}

	cards, err := s.cardRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return nil, apierr.BadRequest("Failed to fetch cards").Wrap(err)
	}
	return cards, nil
}

// Get returns a card whose parent trip belongs to the user.
func (s *CardService) Get(ctx context.Context, userID, cardID string) (*models.Card, error) {
	card, err := s.cardRepo.GetByID(ctx, cardID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierr.NotFound("Card not found")
		}
		return nil, apierr.BadRequest("Failed to fetch card").Wrap(err)
	}
	return card, nil
}

// Update applies a partial patch to a card whose parent trip belongs to the
// user.
func (s *CardService) Update(ctx context.Context, userID, cardID string, upd *models.CardUpdate) (*models.Card, error) {
	if *upd == (models.CardUpdate{}) {
		return nil, apierr.BadRequest("No valid fields to update")
	}

	card, err := s.cardRepo.Update(ctx, cardID, userID, upd)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apierr.NotFound("Card not found")
		case errors.Is(err, repository.ErrEmptyUpdate):
			return nil, apierr.BadRequest("No valid fields to update")
		}
		return nil, apierr.BadRequest("Failed to update card").Wrap(err)
	}
	return card, nil
}

// BulkUpdate applies the updates atomically: a failure anywhere in the batch
// rolls back every update already applied.
func (s *CardService) BulkUpdate(ctx context.Context, userID string, updates []models.CardBulkUpdate) ([]*models.Card, error) {
	if len(updates) == 0 {
		return nil, apierr.BadRequest("No updates provided")
	}
	for _, upd := range updates {
		if upd.ID == "" {
			return nil, apierr.BadRequest("every update requires an id")
		}
		if upd.CardUpdate == (models.CardUpdate{}) {
			return nil, apierr.BadRequest("No valid fields to update for card " + upd.ID)
		}
	}

	cards, err := s.cardRepo.UpdateBatch(ctx, userID, updates)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apierr.NotFound("Card not found")
		}
		return nil, apierr.BadRequest("Failed to bulk update cards").Wrap(err)
	}
	return cards, nil
}

// Delete removes a card whose parent trip belongs to the user and returns
// the parent trip id.
func (s *CardService) Delete(ctx context.Context, userID, cardID string) (string, error) {
	tripID, err := s.cardRepo.Delete(ctx, cardID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apierr.NotFound("Card not found")
		}
		return "", apierr.BadRequest("Failed to delete card").Wrap(err)
	}
	return tripID, nil
}

func (s *CardService) requireOwnership(ctx context.Context, tripID, userID string) error {
	owned, err := s.tripRepo.IsOwned(ctx, tripID, userID)
	if err != nil {
		return apierr.BadRequest("Failed to verify trip ownership").Wrap(err)
	}
	if !owned {
		return apierr.Forbidden("Access denied: Trip not found or not owned by user")
	}
	return nil
}

func cardFromCreate(tripID string, req *models.CardCreate) *models.Card {
	id := req.ID
	if id == "" {
		id = uuid.New().String()
	}
	content := req.Content
	if content == nil {
		content = map[string]any{}
	}
	style := req.Style
	if style == nil {
		style = map[string]any{}
	}
	position := models.Position{}
	if req.Position != nil {
		position = *req.Position
	}

	return &models.Card{
		ID:       id,
		TripID:   tripID,
		Type:     req.Type,
		Title:    req.Title,
		Content:  content,
		Position: position,
		Style:    style,
	}
}

package services

import (
	"context"
	"errors"

	"wescape-backend/internal/apierr"
	"wescape-backend/internal/models"
	"wescape-backend/internal/repository"
)

// ProfileStore is the profile persistence surface.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*models.UserProfile, error)
	CreateDefault(ctx context.Context, id string) (*models.UserProfile, error)
	Update(ctx context.Context, id string, upd *models.UserProfileUpdate) (*models.UserProfile, error)
}

// ProfileService handles user-profile business logic
type ProfileService struct {
	profileRepo ProfileStore
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo ProfileStore) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// Get returns the user's profile, creating a default row on first read.
// Registration may end in pending-confirmation with no session, so profile
// rows are created lazily here rather than during signup.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apierr.BadRequest("Failed to fetch profile").Wrap(err)
	}

	profile, err = s.profileRepo.CreateDefault(ctx, userID)
	if err != nil {
		return nil, apierr.BadRequest("Failed to create profile").Wrap(err)
	}
	return profile, nil
}

// Update applies a partial patch to the user's profile.
func (s *ProfileService) Update(ctx context.Context, userID string, upd *models.UserProfileUpdate) (*models.UserProfile, error) {
	if *upd == (models.UserProfileUpdate{}) {
		return nil, apierr.BadRequest("No valid fields to update")
	}

	profile, err := s.profileRepo.Update(ctx, userID, upd)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, apierr.NotFound("Profile not found")
		case errors.Is(err, repository.ErrEmptyUpdate):
			return nil, apierr.BadRequest("No valid fields to update")
		}
		return nil, apierr.BadRequest("Failed to update profile").Wrap(err)
	}
	return profile, nil
}

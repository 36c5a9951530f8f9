package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"wescape-backend/internal/models"
	"wescape-backend/internal/repository"

	"github.com/stretchr/testify/require"
)

type profileStoreMock struct {
	getFunc           func(ctx context.Context, id string) (*models.UserProfile, error)
	createDefaultFunc func(ctx context.Context, id string) (*models.UserProfile, error)
	updateFunc        func(ctx context.Context, id string, upd *models.UserProfileUpdate) (*models.UserProfile, error)
}

func (m *profileStoreMock) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	return m.getFunc(ctx, id)
}

func (m *profileStoreMock) CreateDefault(ctx context.Context, id string) (*models.UserProfile, error) {
	return m.createDefaultFunc(ctx, id)
}

func (m *profileStoreMock) Update(ctx context.Context, id string, upd *models.UserProfileUpdate) (*models.UserProfile, error) {
	return m.updateFunc(ctx, id, upd)
}

func TestProfileService_Get_Existing(t *testing.T) {
	profiles := &profileStoreMock{
		getFunc: func(ctx context.Context, id string) (*models.UserProfile, error) {
			return &models.UserProfile{ID: id, SubscriptionTier: models.TierPro}, nil
		},
	}
	s := NewProfileService(profiles)

	profile, err := s.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, models.TierPro, profile.SubscriptionTier)
}

func TestProfileService_Get_CreatesOnFirstRead(t *testing.T) {
	created := false
	profiles := &profileStoreMock{
		getFunc: func(ctx context.Context, id string) (*models.UserProfile, error) {
			return nil, repository.ErrNotFound
		},
		createDefaultFunc: func(ctx context.Context, id string) (*models.UserProfile, error) {
			created = true
			return &models.UserProfile{ID: id, SubscriptionTier: models.TierFree}, nil
		},
	}
	s := NewProfileService(profiles)

	profile, err := s.Get(context.Background(), "user-1")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "user-1", profile.ID)
	require.Equal(t, models.TierFree, profile.SubscriptionTier)
}

func TestProfileService_Get_FetchFailure(t *testing.T) {
	profiles := &profileStoreMock{
		getFunc: func(ctx context.Context, id string) (*models.UserProfile, error) {
			return nil, errors.New("connection refused")
		},
	}
	s := NewProfileService(profiles)

	_, err := s.Get(context.Background(), "user-1")
	requireStatus(t, err, http.StatusBadRequest)
}

func TestProfileService_Update_EmptyPatch(t *testing.T) {
	s := NewProfileService(nil)

	_, err := s.Update(context.Background(), "user-1", &models.UserProfileUpdate{})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestProfileService_Update(t *testing.T) {
	profiles := &profileStoreMock{
		updateFunc: func(ctx context.Context, id string, upd *models.UserProfileUpdate) (*models.UserProfile, error) {
			return &models.UserProfile{ID: id, Username: upd.Username}, nil
		},
	}
	s := NewProfileService(profiles)

	username := "wanderer"
	profile, err := s.Update(context.Background(), "user-1", &models.UserProfileUpdate{Username: &username})
	require.NoError(t, err)
	require.NotNil(t, profile.Username)
	require.Equal(t, "wanderer", *profile.Username)
}

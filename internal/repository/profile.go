package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wescape-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const profileColumns = `id, username, full_name, avatar_url, bio, travel_style, preferences,
		onboarding_completed, subscription_tier, subscription_expires_at, created_at, updated_at`

// ProfileRepository handles database operations for user profiles
type ProfileRepository struct {
	db DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByID retrieves a profile by the provider-issued user id.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.UserProfile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM user_profiles
		WHERE id = $1
	`
	profile, err := scanProfile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// CreateDefault inserts a fresh profile row on the free tier.
func (r *ProfileRepository) CreateDefault(ctx context.Context, id string) (*models.UserProfile, error) {
	query := `
		INSERT INTO user_profiles (id, travel_style, preferences, onboarding_completed, subscription_tier)
		VALUES ($1, $2, $3, false, $4)
		RETURNING ` + profileColumns
	profile, err := scanProfile(r.db.QueryRow(ctx, query,
		id, []string{}, map[string]any{}, models.TierFree,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return profile, nil
}

// Update applies the supplied fields to a profile.
func (r *ProfileRepository) Update(ctx context.Context, id string, upd *models.UserProfileUpdate) (*models.UserProfile, error) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Username != nil {
		add("username", *upd.Username)
	}
	if upd.FullName != nil {
		add("full_name", *upd.FullName)
	}
	if upd.AvatarURL != nil {
		add("avatar_url", *upd.AvatarURL)
	}
	if upd.Bio != nil {
		add("bio", *upd.Bio)
	}
	if upd.TravelStyle != nil {
		add("travel_style", *upd.TravelStyle)
	}
	if upd.Preferences != nil {
		add("preferences", *upd.Preferences)
	}
	if upd.OnboardingCompleted != nil {
		add("onboarding_completed", *upd.OnboardingCompleted)
	}

	if len(sets) == 0 {
		return nil, ErrEmptyUpdate
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE user_profiles SET %s
		WHERE id = $%d
		RETURNING `+profileColumns,
		strings.Join(sets, ", "), len(args))

	profile, err := scanProfile(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

func scanProfile(row pgx.Row) (*models.UserProfile, error) {
	var profile models.UserProfile
	err := row.Scan(
		&profile.ID, &profile.Username, &profile.FullName, &profile.AvatarURL, &profile.Bio,
		&profile.TravelStyle, &profile.Preferences, &profile.OnboardingCompleted,
		&profile.SubscriptionTier, &profile.SubscriptionExpiresAt,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

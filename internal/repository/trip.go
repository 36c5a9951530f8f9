package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wescape-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const tripColumns = `id, user_id, title, description, destination, start_date, end_date,
		budget, currency, visibility, cover_image, settings, metadata, created_at, updated_at`

// TripRepository handles database operations for trips
type TripRepository struct {
	db DB
}

// NewTripRepository creates a new trip repository
func NewTripRepository(db DB) *TripRepository {
	return &TripRepository{db: db}
}

// Create inserts a new trip. Timestamps come from the database.
func (r *TripRepository) Create(ctx context.Context, trip *models.Trip) error {
	query := `
		INSERT INTO trips (id, user_id, title, description, destination, start_date, end_date,
			budget, currency, visibility, cover_image, settings, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		trip.ID, trip.UserID, trip.Title, trip.Description, trip.Destination,
		trip.StartDate, trip.EndDate, trip.Budget, trip.Currency, trip.Visibility,
		trip.CoverImage, trip.Settings, trip.Metadata,
	).Scan(&trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}
	return nil
}

// ListByUser retrieves the user's trips ordered by last update, newest first.
func (r *TripRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*models.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer rows.Close()

	trips := []*models.Trip{}
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, trip)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trips: %w", err)
	}

	return trips, nil
}

// GetByID retrieves a trip owned by the given user.
func (r *TripRepository) GetByID(ctx context.Context, id, userID string) (*models.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE id = $1 AND user_id = $2
	`
	trip, err := scanTrip(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	return trip, nil
}

// IsOwned reports whether the trip exists and belongs to the user.
func (r *TripRepository) IsOwned(ctx context.Context, id, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM trips WHERE id = $1 AND user_id = $2)`
	var owned bool
	err := r.db.QueryRow(ctx, query, id, userID).Scan(&owned)
	if err != nil {
		return false, fmt.Errorf("failed to check trip ownership: %w", err)
	}
	return owned, nil
}

// Update applies the supplied fields to a trip owned by the user. Zero
// matched rows map to ErrNotFound so "not yours" and "does not exist" read
// the same.
func (r *TripRepository) Update(ctx context.Context, id, userID string, upd *models.TripUpdate) (*models.Trip, error) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Destination != nil {
		add("destination", *upd.Destination)
	}
	if upd.StartDate != nil {
		add("start_date", *upd.StartDate)
	}
	if upd.EndDate != nil {
		add("end_date", *upd.EndDate)
	}
	if upd.Budget != nil {
		add("budget", *upd.Budget)
	}
	if upd.Currency != nil {
		add("currency", *upd.Currency)
	}
	if upd.Visibility != nil {
		add("visibility", *upd.Visibility)
	}
	if upd.CoverImage != nil {
		add("cover_image", *upd.CoverImage)
	}
	if upd.Settings != nil {
		add("settings", *upd.Settings)
	}
	if upd.Metadata != nil {
		add("metadata", *upd.Metadata)
	}

	if len(sets) == 0 {
		return nil, ErrEmptyUpdate
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id, userID)
	query := fmt.Sprintf(`
		UPDATE trips SET %s
		WHERE id = $%d AND user_id = $%d
		RETURNING `+tripColumns,
		strings.Join(sets, ", "), len(args)-1, len(args))

	trip, err := scanTrip(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update trip: %w", err)
	}
	return trip, nil
}

// Delete removes a trip owned by the user. Cards and connections cascade via
// foreign keys.
func (r *TripRepository) Delete(ctx context.Context, id, userID string) error {
	query := `DELETE FROM trips WHERE id = $1 AND user_id = $2`
	result, err := r.db.Exec(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertTree inserts a trip together with its cards and connections in a
// single transaction. Used by duplication so a failure leaves nothing behind.
func (r *TripRepository) InsertTree(ctx context.Context, trip *models.Trip, cards []*models.Card, connections []*models.Connection) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tripQuery := `
		INSERT INTO trips (id, user_id, title, description, destination, start_date, end_date,
			budget, currency, visibility, cover_image, settings, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRow(ctx, tripQuery,
		trip.ID, trip.UserID, trip.Title, trip.Description, trip.Destination,
		trip.StartDate, trip.EndDate, trip.Budget, trip.Currency, trip.Visibility,
		trip.CoverImage, trip.Settings, trip.Metadata,
	).Scan(&trip.CreatedAt, &trip.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}

	cardQuery := `
		INSERT INTO cards (id, trip_id, type, title, content, position, style)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, card := range cards {
		if _, err := tx.Exec(ctx, cardQuery,
			card.ID, card.TripID, card.Type, card.Title, card.Content, card.Position, card.Style,
		); err != nil {
			return fmt.Errorf("failed to insert card: %w", err)
		}
	}

	connQuery := `
		INSERT INTO connections (id, trip_id, from_card_id, to_card_id, type, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, conn := range connections {
		if _, err := tx.Exec(ctx, connQuery,
			conn.ID, conn.TripID, conn.FromCardID, conn.ToCardID, conn.Type, conn.Metadata,
		); err != nil {
			return fmt.Errorf("failed to insert connection: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func scanTrip(row pgx.Row) (*models.Trip, error) {
	var trip models.Trip
	err := row.Scan(
		&trip.ID, &trip.UserID, &trip.Title, &trip.Description, &trip.Destination,
		&trip.StartDate, &trip.EndDate, &trip.Budget, &trip.Currency, &trip.Visibility,
		&trip.CoverImage, &trip.Settings, &trip.Metadata, &trip.CreatedAt, &trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

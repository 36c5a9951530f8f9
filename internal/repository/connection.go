package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wescape-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const connectionColumns = `connections.id, connections.trip_id, connections.from_card_id,
		connections.to_card_id, connections.type, connections.metadata, connections.created_at`

// ConnectionRepository handles database operations for connections
type ConnectionRepository struct {
	db DB
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// Create inserts a new connection. The caller has already verified trip
// ownership; a database trigger validates that both cards belong to the trip.
func (r *ConnectionRepository) Create(ctx context.Context, conn *models.Connection) error {
	query := `
		INSERT INTO connections (id, trip_id, from_card_id, to_card_id, type, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query,
		conn.ID, conn.TripID, conn.FromCardID, conn.ToCardID, conn.Type, conn.Metadata,
	).Scan(&conn.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create connection: %w", err)
	}
	return nil
}

// ListByTrip retrieves a trip's connections ordered by creation time.
func (r *ConnectionRepository) ListByTrip(ctx context.Context, tripID string) ([]*models.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		WHERE trip_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer rows.Close()

	connections := []*models.Connection{}
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		connections = append(connections, conn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connections: %w", err)
	}

	return connections, nil
}

// GetByID retrieves a connection whose parent trip belongs to the user.
func (r *ConnectionRepository) GetByID(ctx context.Context, id, userID string) (*models.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		JOIN trips ON trips.id = connections.trip_id
		WHERE connections.id = $1 AND trips.user_id = $2
	`
	conn, err := scanConnection(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return conn, nil
}

// Update applies type/metadata changes to a connection whose parent trip
// belongs to the user.
func (r *ConnectionRepository) Update(ctx context.Context, id, userID string, upd *models.ConnectionUpdate) (*models.Connection, error) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Type != nil {
		add("type", *upd.Type)
	}
	if upd.Metadata != nil {
		add("metadata", *upd.Metadata)
	}

	if len(sets) == 0 {
		return nil, ErrEmptyUpdate
	}

	args = append(args, id, userID)
	query := fmt.Sprintf(`
		UPDATE connections SET %s
		FROM trips
		WHERE trips.id = connections.trip_id AND connections.id = $%d AND trips.user_id = $%d
		RETURNING `+connectionColumns,
		strings.Join(sets, ", "), len(args)-1, len(args))

	conn, err := scanConnection(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update connection: %w", err)
	}
	return conn, nil
}

// Delete removes a connection whose parent trip belongs to the user and
// returns the parent trip id.
func (r *ConnectionRepository) Delete(ctx context.Context, id, userID string) (string, error) {
	query := `
		DELETE FROM connections
		USING trips
		WHERE trips.id = connections.trip_id AND connections.id = $1 AND trips.user_id = $2
		RETURNING connections.trip_id
	`
	var tripID string
	err := r.db.QueryRow(ctx, query, id, userID).Scan(&tripID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to delete connection: %w", err)
	}
	return tripID, nil
}

func scanConnection(row pgx.Row) (*models.Connection, error) {
	var conn models.Connection
	err := row.Scan(
		&conn.ID, &conn.TripID, &conn.FromCardID, &conn.ToCardID,
		&conn.Type, &conn.Metadata, &conn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wescape-backend/internal/models"

	"github.com/jackc/pgx/v5"
)

const cardColumns = `cards.id, cards.trip_id, cards.type, cards.title, cards.content,
		cards.position, cards.style, cards.created_at, cards.updated_at`

// CardRepository handles database operations for cards
type CardRepository struct {
	db DB
}

// NewCardRepository creates a new card repository
func NewCardRepository(db DB) *CardRepository {
	return &CardRepository{db: db}
}

// Create inserts a new card. The caller has already verified trip ownership.
func (r *CardRepository) Create(ctx context.Context, card *models.Card) error {
	query := `
		INSERT INTO cards (id, trip_id, type, title, content, position, style)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		card.ID, card.TripID, card.Type, card.Title, card.Content, card.Position, card.Style,
	).Scan(&card.CreatedAt, &card.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	return nil
}

// ListByTrip retrieves a trip's cards ordered by creation time.
func (r *CardRepository) ListByTrip(ctx context.Context, tripID string) ([]*models.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE trip_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	cards := []*models.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cards: %w", err)
	}

	return cards, nil
}

// GetByID retrieves a card whose parent trip belongs to the user.
func (r *CardRepository) GetByID(ctx context.Context, id, userID string) (*models.Card, error) {
	query := `
		SELECT ` + cardColumns + `
		FROM cards
		JOIN trips ON trips.id = cards.trip_id
		WHERE cards.id = $1 AND trips.user_id = $2
	`
	card, err := scanCard(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

// Update applies the supplied fields to a card whose parent trip belongs to
// the user.
func (r *CardRepository) Update(ctx context.Context, id, userID string, upd *models.CardUpdate) (*models.Card, error) {
	card, err := updateCard(ctx, r.db, id, userID, upd)
	if err != nil {
		return nil, err
	}
	return card, nil
}

// UpdateBatch applies the updates in order inside one transaction. The first
// failure rolls back everything already applied.
func (r *CardRepository) UpdateBatch(ctx context.Context, userID string, updates []models.CardBulkUpdate) ([]*models.Card, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	cards := make([]*models.Card, 0, len(updates))
	for _, upd := range updates {
		card, err := updateCard(ctx, tx, upd.ID, userID, &upd.CardUpdate)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return cards, nil
}

// Delete removes a card whose parent trip belongs to the user and returns
// the parent trip id.
func (r *CardRepository) Delete(ctx context.Context, id, userID string) (string, error) {
	query := `
		DELETE FROM cards
		USING trips
		WHERE trips.id = cards.trip_id AND cards.id = $1 AND trips.user_id = $2
		RETURNING cards.trip_id
	`
	var tripID string
	err := r.db.QueryRow(ctx, query, id, userID).Scan(&tripID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to delete card: %w", err)
	}
	return tripID, nil
}

// querier is the subset shared by DB and pgx.Tx that updateCard needs.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func updateCard(ctx context.Context, q querier, id, userID string, upd *models.CardUpdate) (*models.Card, error) {
	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Content != nil {
		add("content", *upd.Content)
	}
	if upd.Position != nil {
		add("position", *upd.Position)
	}
	if upd.Style != nil {
		add("style", *upd.Style)
	}

	if len(sets) == 0 {
		return nil, ErrEmptyUpdate
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id, userID)
	query := fmt.Sprintf(`
		UPDATE cards SET %s
		FROM trips
		WHERE trips.id = cards.trip_id AND cards.id = $%d AND trips.user_id = $%d
		RETURNING `+cardColumns,
		strings.Join(sets, ", "), len(args)-1, len(args))

	card, err := scanCard(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update card: %w", err)
	}
	return card, nil
}

func scanCard(row pgx.Row) (*models.Card, error) {
	var card models.Card
	err := row.Scan(
		&card.ID, &card.TripID, &card.Type, &card.Title, &card.Content,
		&card.Position, &card.Style, &card.CreatedAt, &card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &card, nil
}

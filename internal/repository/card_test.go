package repository

import (
	"context"
	"testing"
	"time"

	"wescape-backend/internal/models"

	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func cardRow(card *models.Card) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "trip_id", "type", "title", "content", "position", "style",
		"created_at", "updated_at",
	}).AddRow(
		card.ID, card.TripID, card.Type, card.Title, card.Content,
		card.Position, card.Style, card.CreatedAt, card.UpdatedAt,
	)
}

func sampleCard() *models.Card {
	now := time.Now()
	return &models.Card{
		ID:        "card-1",
		TripID:    "trip-1",
		Type:      models.NodeDestination,
		Title:     "Oslo",
		Content:   map[string]any{},
		Position:  models.Position{X: 100, Y: 200},
		Style:     map[string]any{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestCardRepository_Create(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewCardRepository(mock)

	card := sampleCard()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO cards`).
		WithArgs(card.ID, card.TripID, card.Type, card.Title, card.Content, card.Position, card.Style).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	err := r.Create(context.Background(), card)
	require.NoError(t, err)
	require.Equal(t, now, card.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepository_GetByID_JoinsOwnership(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewCardRepository(mock)

	card := sampleCard()
	mock.ExpectQuery(`FROM cards\s+JOIN trips ON trips\.id = cards\.trip_id\s+WHERE cards\.id = \$1 AND trips\.user_id = \$2`).
		WithArgs("card-1", "user-1").
		WillReturnRows(cardRow(card))

	got, err := r.GetByID(context.Background(), "card-1", "user-1")
	require.NoError(t, err)
	require.Equal(t, "trip-1", got.TripID)
	require.Equal(t, models.NodeDestination, got.Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepository_GetByID_NotOwned(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewCardRepository(mock)

	mock.ExpectQuery(`FROM cards`).
		WithArgs("card-1", "intruder").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "trip_id", "type", "title", "content", "position", "style",
			"created_at", "updated_at",
		}))

	_, err := r.GetByID(context.Background(), "card-1", "intruder")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCardRepository_Update_PositionOnly(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewCardRepository(mock)

	card := sampleCard()
	card.Position = models.Position{X: 300, Y: 400}
	pos := models.Position{X: 300, Y: 400}

	mock.ExpectQuery(`UPDATE cards SET position = \$1, updated_at = now\(\)\s+FROM trips\s+WHERE trips\.id = cards\.trip_id AND cards\.id = \$2 AND trips\.user_id = \$3`).
		WithArgs(pos, "card-1", "user-1").
		WillReturnRows(cardRow(card))

	got, err := r.Update(context.Background(), "card-1", "user-1", &models.CardUpdate{Position: &pos})
	require.NoError(t, err)
	require.Equal(t, 300.0, got.Position.X)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepository_Update_Empty(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewCardRepository(mock)

	_, err := r.Update(context.Background(), "card-1", "user-1", &models.CardUpdate{})
	require.ErrorIs(t, err, ErrEmptyUpdate)
}

func TestCardRepository_UpdateBatch_Commits(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewCardRepository(mock)

	first := sampleCard()
	second := sampleCard()
	second.ID = "card-2"

	titleA := "Bergen"
	titleB := "Tromso"

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE cards SET title = \$1`).
		WithArgs(titleA, "card-1", "user-1").
		WillReturnRows(cardRow(first))
	mock.ExpectQuery(`UPDATE cards SET title = \$1`).
		WithArgs(titleB, "card-2", "user-1").
		WillReturnRows(cardRow(second))
	mock.ExpectCommit()

	cards, err := r.UpdateBatch(context.Background(), "user-1", []models.CardBulkUpdate{
		{ID: "card-1", CardUpdate: models.CardUpdate{Title: &titleA}},
		{ID: "card-2", CardUpdate: models.CardUpdate{Title: &titleB}},
	})
	require.NoError(t, err)
	require.Len(t, cards, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepository_UpdateBatch_RollsBackOnMiss(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewCardRepository(mock)

	first := sampleCard()
	titleA := "Bergen"
	titleB := "Tromso"

	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE cards SET title = \$1`).
		WithArgs(titleA, "card-1", "user-1").
		WillReturnRows(cardRow(first))
	mock.ExpectQuery(`UPDATE cards SET title = \$1`).
		WithArgs(titleB, "missing", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "trip_id", "type", "title", "content", "position", "style",
			"created_at", "updated_at",
		}))
	mock.ExpectRollback()

	_, err := r.UpdateBatch(context.Background(), "user-1", []models.CardBulkUpdate{
		{ID: "card-1", CardUpdate: models.CardUpdate{Title: &titleA}},
		{ID: "missing", CardUpdate: models.CardUpdate{Title: &titleB}},
	})
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCardRepository_Delete_ReturnsTripID(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewCardRepository(mock)

	mock.ExpectQuery(`DELETE FROM cards\s+USING trips\s+WHERE trips\.id = cards\.trip_id AND cards\.id = \$1 AND trips\.user_id = \$2`).
		WithArgs("card-1", "user-1").
		WillReturnRows(pgxmock.NewRows([]string{"trip_id"}).AddRow("trip-1"))

	tripID, err := r.Delete(context.Background(), "card-1", "user-1")
	require.NoError(t, err)
	require.Equal(t, "trip-1", tripID)
}

func TestCardRepository_Delete_NotOwned(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	r := NewCardRepository(mock)

	mock.ExpectQuery(`DELETE FROM cards`).
		WithArgs("card-1", "intruder").
		WillReturnRows(pgxmock.NewRows([]string{"trip_id"}))

	_, err := r.Delete(context.Background(), "card-1", "intruder")
	require.ErrorIs(t, err, ErrNotFound)
}

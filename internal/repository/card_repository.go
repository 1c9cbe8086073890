package repository

import (
	"context"
	"database/sql"

	"github.com/matiloti/flashcards-backend-sub001/internal/model"
)

// CardRepo provides CRUD operations for cards.
type CardRepo struct{ DB *sql.DB }

func NewCardRepo(db *sql.DB) *CardRepo { return &CardRepo{DB: db} }

const cardColumns = "id,deck_id,front_text,back_text,created_at,updated_at"

func scanCard(scan func(dest ...any) error) (model.Card, error) {
	var cd model.Card
	err := scan(&cd.ID, &cd.DeckID, &cd.FrontText, &cd.BackText, &cd.CreatedAt, &cd.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Card{}, ErrNotFound
	}
	return cd, err
}

// Create inserts a card and populates its generated ID.
func (r *CardRepo) Create(ctx context.Context, cd *model.Card) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO cards (deck_id, front_text, back_text) VALUES (?,?,?)",
		cd.DeckID, cd.FrontText, cd.BackText)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	cd.ID = uint64(id)
	return nil
}

// GetByID fetches a card by id.
func (r *CardRepo) GetByID(ctx context.Context, id uint64) (model.Card, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+cardColumns+" FROM cards WHERE id=? LIMIT 1", id)
	return scanCard(row.Scan)
}

// ListByDeck returns all cards of a deck in insertion order.
func (r *CardRepo) ListByDeck(ctx context.Context, deckID uint64) ([]model.Card, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+cardColumns+" FROM cards WHERE deck_id=? ORDER BY id", deckID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cards := []model.Card{}
	for rows.Next() {
		cd, err := scanCard(rows.Scan)
		if err != nil {
			return nil, err
		}
		cards = append(cards, cd)
	}
	return cards, rows.Err()
}

// Update changes the front and back text of a card.
func (r *CardRepo) Update(ctx context.Context, id uint64, front, back string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE cards SET front_text=?, back_text=? WHERE id=?", front, back, id)
	return err
}

// Delete removes a card; its reviews are cascade-deleted by the
// foreign key, which is what keeps missed-card lookups free of
// dangling card IDs.
func (r *CardRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM cards WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

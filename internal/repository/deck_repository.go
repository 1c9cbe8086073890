package repository

import (
	"context"
	"database/sql"

	"github.com/matiloti/flashcards-backend-sub001/internal/model"
)

// DeckRepo provides CRUD operations for decks.
type DeckRepo struct{ DB *sql.DB }

func NewDeckRepo(db *sql.DB) *DeckRepo { return &DeckRepo{DB: db} }

const deckColumns = "id,user_id,title,description,created_at,updated_at"

func scanDeck(scan func(dest ...any) error) (model.Deck, error) {
	var (
		d    model.Deck
		desc sql.NullString
	)
	err := scan(&d.ID, &d.UserID, &d.Title, &desc, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Deck{}, ErrNotFound
	}
	if err != nil {
		return model.Deck{}, err
	}
	if desc.Valid {
		s := desc.String
		d.Description = &s
	}
	return d, nil
}

// Create inserts a deck and populates its generated ID.
func (r *DeckRepo) Create(ctx context.Context, d *model.Deck) error {
	var desc sql.NullString
	if d.Description != nil {
		desc = sql.NullString{String: *d.Description, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO decks (user_id, title, description) VALUES (?,?,?)",
		d.UserID, d.Title, desc)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return nil
}

// GetByID fetches a deck by id.
func (r *DeckRepo) GetByID(ctx context.Context, id uint64) (model.Deck, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+deckColumns+" FROM decks WHERE id=? LIMIT 1", id)
	return scanDeck(row.Scan)
}

// ListByUser returns all decks owned by a user, newest first.
func (r *DeckRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Deck, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+deckColumns+" FROM decks WHERE user_id=? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	decks := []model.Deck{}
	for rows.Next() {
		d, err := scanDeck(rows.Scan)
		if err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// Update changes the title and description of a deck.
func (r *DeckRepo) Update(ctx context.Context, id uint64, title string, description *string) error {
	var desc sql.NullString
	if description != nil {
		desc = sql.NullString{String: *description, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE decks SET title=?, description=? WHERE id=?", title, desc, id)
	return err
}

// Delete removes a deck; cards and their reviews go with it through
// the cascading foreign keys.
func (r *DeckRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM decks WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountCards returns the number of cards in a deck.
func (r *DeckRepo) CountCards(ctx context.Context, deckID uint64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM cards WHERE deck_id=?", deckID).Scan(&n)
	return n, err
}

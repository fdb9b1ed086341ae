package store

import (
	"context"

	"github.com/Ghost247-bot/ulster-sub001/internal/models"
)

type CardStore struct {
	db DB
}

func NewCardStore(db DB) *CardStore {
	return &CardStore{db: db}
}

type CardInput struct {
	ID          string
	UserID      string
	AccountID   string
	CardNumber  string
	CardType    string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
	HolderName  string
}

func (s *CardStore) Insert(ctx context.Context, tx Execer, input CardInput) error {
	query := `
		INSERT INTO cards (id, user_id, account_id, card_number, card_type, expiry_month, expiry_year, cvv, holder_name, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.AccountID, input.CardNumber, input.CardType,
		input.ExpiryMonth, input.ExpiryYear, input.CVV, input.HolderName)
	return err
}

func (s *CardStore) ListByUser(ctx context.Context, userID string) ([]models.Card, error) {
	var rows []models.Card
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, account_id, card_number, card_type, expiry_month, expiry_year, cvv, holder_name, is_active, created_at, updated_at
		FROM cards
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CardStore) GetByID(ctx context.Context, cardID string) (models.Card, error) {
	var row models.Card
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, account_id, card_number, card_type, expiry_month, expiry_year, cvv, holder_name, is_active, created_at, updated_at
		FROM cards
		WHERE id = $1
	`, cardID)
	if err != nil {
		return models.Card{}, err
	}
	return row, nil
}

func (s *CardStore) SetActive(ctx context.Context, cardID string, active bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE cards
		SET is_active = $1, updated_at = NOW()
		WHERE id = $2
	`, active, cardID)
	return err
}

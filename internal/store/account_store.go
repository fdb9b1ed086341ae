package store

import (
	"context"

	"github.com/Ghost247-bot/ulster-sub001/internal/models"
)

type AccountStore struct {
	db DB
}

func NewAccountStore(db DB) *AccountStore {
	return &AccountStore{db: db}
}

type AccountInput struct {
	ID            string
	UserID        string
	AccountType   string
	AccountNumber string
	RoutingNumber string
	Balance       int64
}

func (s *AccountStore) Create(ctx context.Context, tx Execer, input AccountInput) error {
	query := `
		INSERT INTO accounts (id, user_id, account_type, account_number, routing_number, balance)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := tx.ExecContext(ctx, query,
		input.ID, input.UserID, input.AccountType, input.AccountNumber, input.RoutingNumber, input.Balance)
	return err
}

func (s *AccountStore) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	var row models.Account
	err := s.db.GetContext(ctx, &row, `
		SELECT id, user_id, account_type, account_number, routing_number, balance, is_frozen, frozen_by_admin, created_at
		FROM accounts
		WHERE id = $1
	`, accountID)
	if err != nil {
		return models.Account{}, err
	}
	return row, nil
}

func (s *AccountStore) ListByUser(ctx context.Context, userID string) ([]models.Account, error) {
	var rows []models.Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, account_type, account_number, routing_number, balance, is_frozen, frozen_by_admin, created_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AccountStore) IDsByUser(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `
		SELECT id FROM accounts WHERE user_id = $1 ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *AccountStore) ListAll(ctx context.Context) ([]models.Account, error) {
	var rows []models.Account
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, account_type, account_number, routing_number, balance, is_frozen, frozen_by_admin, created_at
		FROM accounts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SetFrozen flips the user-visible frozen flag only; frozen_by_admin is left
// untouched.
func (s *AccountStore) SetFrozen(ctx context.Context, accountID string, frozen bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET is_frozen = $1, updated_at = NOW()
		WHERE id = $2
	`, frozen, accountID)
	return err
}

// SetAdminFrozen sets both flags together: an admin freeze marks the account
// frozen and records that an admin did it; an admin unfreeze clears both.
func (s *AccountStore) SetAdminFrozen(ctx context.Context, accountID string, frozen bool) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE accounts
		SET is_frozen = $1, frozen_by_admin = $1, updated_at = NOW()
		WHERE id = $2
	`, frozen, accountID)
	return err
}

func (s *AccountStore) UpdateBalance(ctx context.Context, tx Execer, accountID string, balance int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`, balance, accountID)
	return err
}

func (s *AccountStore) AdjustBalance(ctx context.Context, tx Execer, accountID string, delta int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`, delta, accountID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

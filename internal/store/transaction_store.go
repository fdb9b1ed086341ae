package store

import (
	"context"
	"strings"

	"github.com/lib/pq"

	"github.com/Ghost247-bot/ulster-sub001/internal/models"
)

type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

type TransactionInput struct {
	ID          string
	AccountID   string
	Amount      int64
	Description string
	Type        string
}

func (s *TransactionStore) Insert(ctx context.Context, tx Execer, input TransactionInput) error {
	query := `
		INSERT INTO transactions (id, account_id, amount, description, transaction_type)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := tx.ExecContext(ctx, query, input.ID, input.AccountID, input.Amount, input.Description, input.Type)
	return err
}

func (s *TransactionStore) ListByAccounts(ctx context.Context, accountIDs []string, filter TransactionFilter, opts FetchOptions) ([]models.Transaction, error) {
	conds := []string{"account_id = ANY($1)"}
	args := []any{pq.Array(accountIDs)}
	conds, args = filter.apply(conds, args)
	query := `
		SELECT id, account_id, amount, description, transaction_type, created_at
		FROM transactions
		WHERE ` + strings.Join(conds, " AND ")
	query, args, err := opts.apply(query, args)
	if err != nil {
		return nil, err
	}
	var rows []models.Transaction
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *TransactionStore) CountByAccounts(ctx context.Context, accountIDs []string, filter TransactionFilter) (int, error) {
	conds := []string{"account_id = ANY($1)"}
	args := []any{pq.Array(accountIDs)}
	conds, args = filter.apply(conds, args)
	query := `SELECT COUNT(*) FROM transactions WHERE ` + strings.Join(conds, " AND ")
	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *TransactionStore) GetByID(ctx context.Context, transactionID string) (models.Transaction, error) {
	var row models.Transaction
	err := s.db.GetContext(ctx, &row, `
		SELECT id, account_id, amount, description, transaction_type, created_at
		FROM transactions
		WHERE id = $1
	`, transactionID)
	if err != nil {
		return models.Transaction{}, err
	}
	return row, nil
}

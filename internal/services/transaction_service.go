package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Ghost247-bot/ulster-sub001/internal/batch"
	"github.com/Ghost247-bot/ulster-sub001/internal/models"
	"github.com/Ghost247-bot/ulster-sub001/internal/store"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrSameAccountTransfer = errors.New("cannot transfer to same account")
	ErrInsufficientFunds   = errors.New("insufficient funds")
)

type TransactionStore interface {
	Insert(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	ListByAccounts(ctx context.Context, accountIDs []string, filter store.TransactionFilter, opts store.FetchOptions) ([]models.Transaction, error)
	CountByAccounts(ctx context.Context, accountIDs []string, filter store.TransactionFilter) (int, error)
}

type AccountReader interface {
	GetByID(ctx context.Context, accountID string) (models.Account, error)
	IDsByUser(ctx context.Context, userID string) ([]string, error)
	AdjustBalance(ctx context.Context, tx store.Execer, accountID string, delta int64) (int64, error)
}

type TransactionService struct {
	db           store.Execer
	accounts     AccountReader
	transactions TransactionStore
}

func NewTransactionService(db store.Execer, accounts AccountReader, transactions TransactionStore) *TransactionService {
	return &TransactionService{db: db, accounts: accounts, transactions: transactions}
}

// GetUserTransactions resolves the caller's accounts first. A user with no
// accounts gets an empty list without a transaction query being issued.
func (s *TransactionService) GetUserTransactions(ctx context.Context, userID string, filter store.TransactionFilter, opts store.FetchOptions) ([]models.Transaction, error) {
	accountIDs, err := s.accounts.IDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(accountIDs) == 0 {
		return []models.Transaction{}, nil
	}
	rows, err := s.transactions.ListByAccounts(ctx, accountIDs, filter, opts)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []models.Transaction{}
	}
	return rows, nil
}

type TransactionPage struct {
	Data        []models.Transaction `json:"data"`
	TotalCount  int                  `json:"total_count"`
	TotalPages  int                  `json:"total_pages"`
	CurrentPage int                  `json:"current_page"`
}

// GetUserTransactionsPaginated issues a count query and a data query with
// identical filters. TotalPages is ceil(TotalCount / pageSize); a zero count
// still yields a well-formed page.
func (s *TransactionService) GetUserTransactionsPaginated(ctx context.Context, userID string, filter store.TransactionFilter, page, pageSize int) (TransactionPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	result := TransactionPage{Data: []models.Transaction{}, CurrentPage: page}
	accountIDs, err := s.accounts.IDsByUser(ctx, userID)
	if err != nil {
		return TransactionPage{}, err
	}
	if len(accountIDs) == 0 {
		return result, nil
	}
	total, err := s.transactions.CountByAccounts(ctx, accountIDs, filter)
	if err != nil {
		return TransactionPage{}, err
	}
	result.TotalCount = total
	result.TotalPages = (total + pageSize - 1) / pageSize
	if total == 0 {
		return result, nil
	}
	rows, err := s.transactions.ListByAccounts(ctx, accountIDs, filter, store.FetchOptions{
		Limit:   pageSize,
		Offset:  (page - 1) * pageSize,
		OrderBy: "created_at",
	})
	if err != nil {
		return TransactionPage{}, err
	}
	if rows != nil {
		result.Data = rows
	}
	return result, nil
}

type TransactionStats struct {
	TotalDeposits    int64 `json:"total_deposits"`
	TotalWithdrawals int64 `json:"total_withdrawals"`
	NetAmount        int64 `json:"net_amount"`
	TransactionCount int   `json:"transaction_count"`
}

// GetTransactionStats folds the filtered transaction list in one pass.
// Transfers count toward TransactionCount but toward neither total.
func (s *TransactionService) GetTransactionStats(ctx context.Context, userID string, filter store.TransactionFilter) (TransactionStats, error) {
	rows, err := s.GetUserTransactions(ctx, userID, filter, store.FetchOptions{})
	if err != nil {
		return TransactionStats{}, err
	}
	var stats TransactionStats
	for _, tx := range rows {
		switch tx.Type {
		case models.TransactionTypeDeposit:
			stats.TotalDeposits += tx.Amount
		case models.TransactionTypeWithdrawal:
			stats.TotalWithdrawals += tx.Amount
		}
		stats.TransactionCount++
	}
	stats.NetAmount = stats.TotalDeposits - stats.TotalWithdrawals
	return stats, nil
}

type TransferRequest struct {
	UserID        string
	FromAccountID string
	ToAccountID   string
	Amount        int64
	Description   string
}

// Transfer records a transaction on each side and moves both balances. The
// four writes run strictly in order through the batch runner with no rollback;
// the transaction rows go first so a partial failure never leaves a balance
// moved without a row explaining it.
func (s *TransactionService) Transfer(ctx context.Context, req TransferRequest) (string, error) {
	if req.Amount <= 0 {
		return "", ErrInvalidAmount
	}
	if req.FromAccountID == req.ToAccountID {
		return "", ErrSameAccountTransfer
	}
	fromAccount, err := s.accounts.GetByID(ctx, req.FromAccountID)
	if err != nil {
		return "", err
	}
	if fromAccount.UserID != req.UserID {
		return "", ErrUnauthorizedAccount
	}
	if fromAccount.IsFrozen {
		return "", ErrAccountFrozen
	}
	if fromAccount.Balance < req.Amount {
		return "", ErrInsufficientFunds
	}
	toAccount, err := s.accounts.GetByID(ctx, req.ToAccountID)
	if err != nil {
		return "", err
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Transfer to account ending in %s", lastFour(toAccount.AccountNumber))
	}
	debitID := uuid.NewString()
	creditID := uuid.NewString()
	err = batch.Run(ctx,
		batch.Step{Name: "insert_debit_transaction", Run: func(ctx context.Context) error {
			return s.transactions.Insert(ctx, s.db, store.TransactionInput{
				ID:          debitID,
				AccountID:   req.FromAccountID,
				Amount:      req.Amount,
				Description: description,
				Type:        models.TransactionTypeTransfer,
			})
		}},
		batch.Step{Name: "insert_credit_transaction", Run: func(ctx context.Context) error {
			return s.transactions.Insert(ctx, s.db, store.TransactionInput{
				ID:          creditID,
				AccountID:   req.ToAccountID,
				Amount:      req.Amount,
				Description: fmt.Sprintf("Transfer from account ending in %s", lastFour(fromAccount.AccountNumber)),
				Type:        models.TransactionTypeTransfer,
			})
		}},
		batch.Step{Name: "debit_balance", Run: func(ctx context.Context) error {
			_, err := s.accounts.AdjustBalance(ctx, s.db, req.FromAccountID, -req.Amount)
			return err
		}},
		batch.Step{Name: "credit_balance", Run: func(ctx context.Context) error {
			_, err := s.accounts.AdjustBalance(ctx, s.db, req.ToAccountID, req.Amount)
			return err
		}},
	)
	if err != nil {
		return "", err
	}
	return debitID, nil
}

// Deposit credits an account, pairing the balance change with its transaction
// row through the batch runner.
func (s *TransactionService) Deposit(ctx context.Context, userID, accountID string, amount int64, description string) (string, error) {
	return s.applySingle(ctx, userID, accountID, amount, description, models.TransactionTypeDeposit)
}

func (s *TransactionService) Withdraw(ctx context.Context, userID, accountID string, amount int64, description string) (string, error) {
	return s.applySingle(ctx, userID, accountID, amount, description, models.TransactionTypeWithdrawal)
}

func (s *TransactionService) applySingle(ctx context.Context, userID, accountID string, amount int64, description, txType string) (string, error) {
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	if account.UserID != userID {
		return "", ErrUnauthorizedAccount
	}
	if account.IsFrozen {
		return "", ErrAccountFrozen
	}
	delta := amount
	if txType == models.TransactionTypeWithdrawal {
		if account.Balance < amount {
			return "", ErrInsufficientFunds
		}
		delta = -amount
	}
	if description == "" {
		description = txType
	}
	transactionID := uuid.NewString()
	err = batch.Run(ctx,
		batch.Step{Name: "insert_transaction", Run: func(ctx context.Context) error {
			return s.transactions.Insert(ctx, s.db, store.TransactionInput{
				ID:          transactionID,
				AccountID:   accountID,
				Amount:      amount,
				Description: description,
				Type:        txType,
			})
		}},
		batch.Step{Name: "apply_balance", Run: func(ctx context.Context) error {
			_, err := s.accounts.AdjustBalance(ctx, s.db, accountID, delta)
			return err
		}},
	)
	if err != nil {
		return "", err
	}
	return transactionID, nil
}

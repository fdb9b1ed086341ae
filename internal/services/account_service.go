package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Ghost247-bot/ulster-sub001/internal/batch"
	"github.com/Ghost247-bot/ulster-sub001/internal/models"
	"github.com/Ghost247-bot/ulster-sub001/internal/money"
	"github.com/Ghost247-bot/ulster-sub001/internal/store"
)

var (
	ErrUnauthorizedAccount = errors.New("account does not belong to user")
	ErrFrozenByAdmin       = errors.New("cannot freeze account already frozen by admin")
	ErrAccountFrozen       = errors.New("account is frozen")
	ErrNegativeBalance     = errors.New("balance cannot be negative")
)

type AccountStore interface {
	Create(ctx context.Context, tx store.Execer, input store.AccountInput) error
	GetByID(ctx context.Context, accountID string) (models.Account, error)
	ListByUser(ctx context.Context, userID string) ([]models.Account, error)
	ListAll(ctx context.Context) ([]models.Account, error)
	SetFrozen(ctx context.Context, accountID string, frozen bool) error
	SetAdminFrozen(ctx context.Context, accountID string, frozen bool) error
	UpdateBalance(ctx context.Context, tx store.Execer, accountID string, balance int64) error
}

type NotificationStore interface {
	Insert(ctx context.Context, tx store.Execer, input store.NotificationInput) error
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

type AccountService struct {
	db            store.Execer
	accounts      AccountStore
	notifications NotificationStore
	audit         AuditStore
}

func NewAccountService(db store.Execer, accounts AccountStore, notifications NotificationStore, audit AuditStore) *AccountService {
	return &AccountService{
		db:            db,
		accounts:      accounts,
		notifications: notifications,
		audit:         audit,
	}
}

func (s *AccountService) ListByUser(ctx context.Context, userID string) ([]models.Account, error) {
	return s.accounts.ListByUser(ctx, userID)
}

func (s *AccountService) ListAll(ctx context.Context) ([]models.Account, error) {
	return s.accounts.ListAll(ctx)
}

func (s *AccountService) GetOwned(ctx context.Context, userID, accountID string) (models.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return models.Account{}, err
	}
	if account.UserID != userID {
		return models.Account{}, ErrUnauthorizedAccount
	}
	return account, nil
}

// FreezeByUser refuses to stack a user freeze on top of an admin freeze; the
// admin flag takes precedence and only an admin can clear it.
func (s *AccountService) FreezeByUser(ctx context.Context, userID, accountID string) error {
	account, err := s.GetOwned(ctx, userID, accountID)
	if err != nil {
		return err
	}
	if account.FrozenByAdmin {
		return ErrFrozenByAdmin
	}
	return s.accounts.SetFrozen(ctx, accountID, true)
}

// UnfreezeByUser clears is_frozen without consulting frozen_by_admin,
// matching the behavior signed off for the user path.
func (s *AccountService) UnfreezeByUser(ctx context.Context, userID, accountID string) error {
	if _, err := s.GetOwned(ctx, userID, accountID); err != nil {
		return err
	}
	return s.accounts.SetFrozen(ctx, accountID, false)
}

func (s *AccountService) FreezeByAdmin(ctx context.Context, actorID, accountID string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.accounts.SetAdminFrozen(ctx, accountID, true); err != nil {
		return err
	}
	if err := s.notifications.Insert(ctx, s.db, store.NotificationInput{
		ID:      uuid.NewString(),
		UserID:  account.UserID,
		Title:   "Account Frozen",
		Message: fmt.Sprintf("Your %s account ending in %s has been frozen by an administrator.", account.AccountType, lastFour(account.AccountNumber)),
		Type:    models.NotificationWarning,
	}); err != nil {
		return err
	}
	return s.auditAccountAction(ctx, actorID, "freeze_account", account.ID)
}

func (s *AccountService) UnfreezeByAdmin(ctx context.Context, actorID, accountID string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if err := s.accounts.SetAdminFrozen(ctx, accountID, false); err != nil {
		return err
	}
	if err := s.notifications.Insert(ctx, s.db, store.NotificationInput{
		ID:      uuid.NewString(),
		UserID:  account.UserID,
		Title:   "Account Unfrozen",
		Message: fmt.Sprintf("Your %s account ending in %s has been unfrozen.", account.AccountType, lastFour(account.AccountNumber)),
		Type:    models.NotificationSuccess,
	}); err != nil {
		return err
	}
	return s.auditAccountAction(ctx, actorID, "unfreeze_account", account.ID)
}

// AdjustBalance sets an account's balance and records the matching transaction
// and notification. The three writes run through the batch runner: there is no
// rollback, and a returned *batch.PartialError tells the caller how far the
// operation got.
func (s *AccountService) AdjustBalance(ctx context.Context, actorID, accountID string, newBalance int64, reason string) (string, error) {
	if newBalance < 0 {
		return "", ErrNegativeBalance
	}
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return "", err
	}
	delta := newBalance - account.Balance
	// An unchanged balance is a no-op: a zero-amount transaction row would
	// violate the positive-amount check, so nothing is written.
	if delta == 0 {
		return "", nil
	}
	txType := models.TransactionTypeDeposit
	amount := delta
	if delta < 0 {
		txType = models.TransactionTypeWithdrawal
		amount = -delta
	}
	description := reason
	if description == "" {
		description = "Balance adjustment"
	}
	transactionID := uuid.NewString()
	err = batch.Run(ctx,
		batch.Step{Name: "update_balance", Run: func(ctx context.Context) error {
			return s.accounts.UpdateBalance(ctx, s.db, accountID, newBalance)
		}},
		batch.Step{Name: "insert_transaction", Run: func(ctx context.Context) error {
			_, err := s.db.ExecContext(ctx, `
				INSERT INTO transactions (id, account_id, amount, description, transaction_type)
				VALUES ($1, $2, $3, $4, $5)
			`, transactionID, accountID, amount, description, txType)
			return err
		}},
		batch.Step{Name: "insert_notification", Run: func(ctx context.Context) error {
			return s.notifications.Insert(ctx, s.db, store.NotificationInput{
				ID:      uuid.NewString(),
				UserID:  account.UserID,
				Title:   "Balance Adjusted",
				Message: fmt.Sprintf("The balance of your %s account ending in %s is now %s.", account.AccountType, lastFour(account.AccountNumber), money.FormatMinor(newBalance)),
				Type:    models.NotificationInfo,
			})
		}},
	)
	if err != nil {
		return "", err
	}
	data, _ := json.Marshal(map[string]string{
		"transaction_id": transactionID,
		"new_balance":    money.FormatMinor(newBalance),
		"reason":         description,
	})
	if err := s.audit.Log(ctx, s.db, actorID, "adjust_balance", "account", accountID, string(data)); err != nil {
		return "", err
	}
	return transactionID, nil
}

func (s *AccountService) auditAccountAction(ctx context.Context, actorID, action, accountID string) error {
	data, _ := json.Marshal(map[string]string{"account_id": accountID})
	return s.audit.Log(ctx, s.db, actorID, action, "account", accountID, string(data))
}

func lastFour(number string) string {
	if len(number) <= 4 {
		return number
	}
	return number[len(number)-4:]
}

package services

import (
	"context"
	"database/sql"

	"github.com/Ghost247-bot/ulster-sub001/internal/models"
	"github.com/Ghost247-bot/ulster-sub001/internal/store"
)

type stubExecer struct {
	execFn func(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s stubExecer) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if s.execFn == nil {
		return stubResult{rows: 1}, nil
	}
	return s.execFn(ctx, query, args...)
}

type stubResult struct {
	rows int64
	err  error
}

func (r stubResult) LastInsertId() (int64, error) { return 0, r.err }
func (r stubResult) RowsAffected() (int64, error) { return r.rows, r.err }

type stubAccountStore struct {
	createFn         func(ctx context.Context, tx store.Execer, input store.AccountInput) error
	getByIDFn        func(ctx context.Context, accountID string) (models.Account, error)
	listByUserFn     func(ctx context.Context, userID string) ([]models.Account, error)
	listAllFn        func(ctx context.Context) ([]models.Account, error)
	setFrozenFn      func(ctx context.Context, accountID string, frozen bool) error
	setAdminFrozenFn func(ctx context.Context, accountID string, frozen bool) error
	updateBalanceFn  func(ctx context.Context, tx store.Execer, accountID string, balance int64) error
}

func (s stubAccountStore) Create(ctx context.Context, tx store.Execer, input store.AccountInput) error {
	return s.createFn(ctx, tx, input)
}

func (s stubAccountStore) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	return s.getByIDFn(ctx, accountID)
}

func (s stubAccountStore) ListByUser(ctx context.Context, userID string) ([]models.Account, error) {
	return s.listByUserFn(ctx, userID)
}

func (s stubAccountStore) ListAll(ctx context.Context) ([]models.Account, error) {
	return s.listAllFn(ctx)
}

func (s stubAccountStore) SetFrozen(ctx context.Context, accountID string, frozen bool) error {
	return s.setFrozenFn(ctx, accountID, frozen)
}

func (s stubAccountStore) SetAdminFrozen(ctx context.Context, accountID string, frozen bool) error {
	return s.setAdminFrozenFn(ctx, accountID, frozen)
}

func (s stubAccountStore) UpdateBalance(ctx context.Context, tx store.Execer, accountID string, balance int64) error {
	return s.updateBalanceFn(ctx, tx, accountID, balance)
}

type stubAccountReader struct {
	getByIDFn       func(ctx context.Context, accountID string) (models.Account, error)
	idsByUserFn     func(ctx context.Context, userID string) ([]string, error)
	adjustBalanceFn func(ctx context.Context, tx store.Execer, accountID string, delta int64) (int64, error)
}

func (s stubAccountReader) GetByID(ctx context.Context, accountID string) (models.Account, error) {
	return s.getByIDFn(ctx, accountID)
}

func (s stubAccountReader) IDsByUser(ctx context.Context, userID string) ([]string, error) {
	return s.idsByUserFn(ctx, userID)
}

func (s stubAccountReader) AdjustBalance(ctx context.Context, tx store.Execer, accountID string, delta int64) (int64, error) {
	if s.adjustBalanceFn == nil {
		return 1, nil
	}
	return s.adjustBalanceFn(ctx, tx, accountID, delta)
}

type stubTransactionStore struct {
	insertFn          func(ctx context.Context, tx store.Execer, input store.TransactionInput) error
	listByAccountsFn  func(ctx context.Context, accountIDs []string, filter store.TransactionFilter, opts store.FetchOptions) ([]models.Transaction, error)
	countByAccountsFn func(ctx context.Context, accountIDs []string, filter store.TransactionFilter) (int, error)
}

func (s stubTransactionStore) Insert(ctx context.Context, tx store.Execer, input store.TransactionInput) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, tx, input)
}

func (s stubTransactionStore) ListByAccounts(ctx context.Context, accountIDs []string, filter store.TransactionFilter, opts store.FetchOptions) ([]models.Transaction, error) {
	return s.listByAccountsFn(ctx, accountIDs, filter, opts)
}

func (s stubTransactionStore) CountByAccounts(ctx context.Context, accountIDs []string, filter store.TransactionFilter) (int, error) {
	return s.countByAccountsFn(ctx, accountIDs, filter)
}

type stubNotificationStore struct {
	insertFn func(ctx context.Context, tx store.Execer, input store.NotificationInput) error
}

func (s stubNotificationStore) Insert(ctx context.Context, tx store.Execer, input store.NotificationInput) error {
	if s.insertFn == nil {
		return nil
	}
	return s.insertFn(ctx, tx, input)
}

type stubAuditStore struct {
	logFn func(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error
}

func (s stubAuditStore) Log(ctx context.Context, tx store.Execer, actorID, action, entityType, entityID, data string) error {
	if s.logFn == nil {
		return nil
	}
	return s.logFn(ctx, tx, actorID, action, entityType, entityID, data)
}

type stubEditorStore struct {
	countRowsFn     func(ctx context.Context, table string) (int, error)
	countFilteredFn func(ctx context.Context, table string, searchCols []string, search string) (int, error)
	selectRowsFn    func(ctx context.Context, table string, searchCols []string, search, sortBy, sortOrder string, limit, offset int) ([]map[string]any, error)
	insertRowFn     func(ctx context.Context, table string, columns []string, values []any) error
	updateRowFn     func(ctx context.Context, table, id string, columns []string, values []any) (int64, error)
	deleteRowFn     func(ctx context.Context, table, id string) (int64, error)
}

func (s stubEditorStore) CountRows(ctx context.Context, table string) (int, error) {
	return s.countRowsFn(ctx, table)
}

func (s stubEditorStore) CountFiltered(ctx context.Context, table string, searchCols []string, search string) (int, error) {
	return s.countFilteredFn(ctx, table, searchCols, search)
}

func (s stubEditorStore) SelectRows(ctx context.Context, table string, searchCols []string, search, sortBy, sortOrder string, limit, offset int) ([]map[string]any, error) {
	return s.selectRowsFn(ctx, table, searchCols, search, sortBy, sortOrder, limit, offset)
}

func (s stubEditorStore) InsertRow(ctx context.Context, table string, columns []string, values []any) error {
	return s.insertRowFn(ctx, table, columns, values)
}

func (s stubEditorStore) UpdateRow(ctx context.Context, table, id string, columns []string, values []any) (int64, error) {
	return s.updateRowFn(ctx, table, id, columns, values)
}

func (s stubEditorStore) DeleteRow(ctx context.Context, table, id string) (int64, error) {
	return s.deleteRowFn(ctx, table, id)
}

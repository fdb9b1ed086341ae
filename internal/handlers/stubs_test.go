package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Ghost247-bot/ulster-sub001/internal/middleware"
	"github.com/Ghost247-bot/ulster-sub001/internal/models"
	"github.com/Ghost247-bot/ulster-sub001/internal/services"
	"github.com/Ghost247-bot/ulster-sub001/internal/store"
)

func readerOf(body string) *strings.Reader {
	return strings.NewReader(body)
}

func authedRequest(method, target, body, userID string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

type stubTxRunner struct {
	err error
}

func (s stubTxRunner) WithTx(_ context.Context, fn func(*sqlx.Tx) error) error {
	if s.err != nil {
		return s.err
	}
	return fn(nil)
}

type stubAccountService struct {
	listByUserFn     func(ctx context.Context, userID string) ([]models.Account, error)
	getOwnedFn       func(ctx context.Context, userID, accountID string) (models.Account, error)
	freezeByUserFn   func(ctx context.Context, userID, accountID string) error
	unfreezeByUserFn func(ctx context.Context, userID, accountID string) error
}

func (s stubAccountService) ListByUser(ctx context.Context, userID string) ([]models.Account, error) {
	return s.listByUserFn(ctx, userID)
}

func (s stubAccountService) GetOwned(ctx context.Context, userID, accountID string) (models.Account, error) {
	return s.getOwnedFn(ctx, userID, accountID)
}

func (s stubAccountService) FreezeByUser(ctx context.Context, userID, accountID string) error {
	return s.freezeByUserFn(ctx, userID, accountID)
}

func (s stubAccountService) UnfreezeByUser(ctx context.Context, userID, accountID string) error {
	return s.unfreezeByUserFn(ctx, userID, accountID)
}

type stubTransactionService struct {
	listFn      func(ctx context.Context, userID string, filter store.TransactionFilter, opts store.FetchOptions) ([]models.Transaction, error)
	paginatedFn func(ctx context.Context, userID string, filter store.TransactionFilter, page, pageSize int) (services.TransactionPage, error)
	statsFn     func(ctx context.Context, userID string, filter store.TransactionFilter) (services.TransactionStats, error)
	transferFn  func(ctx context.Context, req services.TransferRequest) (string, error)
	depositFn   func(ctx context.Context, userID, accountID string, amount int64, description string) (string, error)
	withdrawFn  func(ctx context.Context, userID, accountID string, amount int64, description string) (string, error)
}

func (s stubTransactionService) GetUserTransactions(ctx context.Context, userID string, filter store.TransactionFilter, opts store.FetchOptions) ([]models.Transaction, error) {
	return s.listFn(ctx, userID, filter, opts)
}

func (s stubTransactionService) GetUserTransactionsPaginated(ctx context.Context, userID string, filter store.TransactionFilter, page, pageSize int) (services.TransactionPage, error) {
	return s.paginatedFn(ctx, userID, filter, page, pageSize)
}

func (s stubTransactionService) GetTransactionStats(ctx context.Context, userID string, filter store.TransactionFilter) (services.TransactionStats, error) {
	return s.statsFn(ctx, userID, filter)
}

func (s stubTransactionService) Transfer(ctx context.Context, req services.TransferRequest) (string, error) {
	return s.transferFn(ctx, req)
}

func (s stubTransactionService) Deposit(ctx context.Context, userID, accountID string, amount int64, description string) (string, error) {
	return s.depositFn(ctx, userID, accountID, amount, description)
}

func (s stubTransactionService) Withdraw(ctx context.Context, userID, accountID string, amount int64, description string) (string, error) {
	return s.withdrawFn(ctx, userID, accountID, amount, description)
}

type stubTableEditor struct {
	listTablesFn   func(ctx context.Context) []services.TableSummary
	getTableDataFn func(ctx context.Context, table string, page, pageSize int, search, sortBy, sortOrder string) (services.TableData, error)
	insertRowFn    func(ctx context.Context, table string, values map[string]any) error
	updateRowFn    func(ctx context.Context, table, id string, values map[string]any) error
	deleteRowFn    func(ctx context.Context, table, id string) error
}

func (s stubTableEditor) ListTables(ctx context.Context) []services.TableSummary {
	return s.listTablesFn(ctx)
}

func (s stubTableEditor) GetTableData(ctx context.Context, table string, page, pageSize int, search, sortBy, sortOrder string) (services.TableData, error) {
	return s.getTableDataFn(ctx, table, page, pageSize, search, sortBy, sortOrder)
}

func (s stubTableEditor) InsertRow(ctx context.Context, table string, values map[string]any) error {
	return s.insertRowFn(ctx, table, values)
}

func (s stubTableEditor) UpdateRow(ctx context.Context, table, id string, values map[string]any) error {
	return s.updateRowFn(ctx, table, id, values)
}

func (s stubTableEditor) DeleteRow(ctx context.Context, table, id string) error {
	return s.deleteRowFn(ctx, table, id)
}

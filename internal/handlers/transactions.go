package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Ghost247-bot/ulster-sub001/internal/batch"
	"github.com/Ghost247-bot/ulster-sub001/internal/middleware"
	"github.com/Ghost247-bot/ulster-sub001/internal/models"
	"github.com/Ghost247-bot/ulster-sub001/internal/services"
	"github.com/Ghost247-bot/ulster-sub001/internal/store"
)

type TransactionService interface {
	GetUserTransactions(ctx context.Context, userID string, filter store.TransactionFilter, opts store.FetchOptions) ([]models.Transaction, error)
	GetUserTransactionsPaginated(ctx context.Context, userID string, filter store.TransactionFilter, page, pageSize int) (services.TransactionPage, error)
	GetTransactionStats(ctx context.Context, userID string, filter store.TransactionFilter) (services.TransactionStats, error)
	Transfer(ctx context.Context, req services.TransferRequest) (string, error)
	Deposit(ctx context.Context, userID, accountID string, amount int64, description string) (string, error)
	Withdraw(ctx context.Context, userID, accountID string, amount int64, description string) (string, error)
}

type TransactionHandler struct {
	transactions TransactionService
}

func NewTransactionHandler(transactions TransactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

// filterFromQuery builds a transaction filter from the request query string.
// Absent parameters add no constraint.
func filterFromQuery(r *http.Request) (store.TransactionFilter, error) {
	q := r.URL.Query()
	var filter store.TransactionFilter
	if raw := q.Get("start_date"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("start_date must be RFC 3339")
		}
		filter.StartDate = &parsed
	}
	if raw := q.Get("end_date"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, errors.New("end_date must be RFC 3339")
		}
		filter.EndDate = &parsed
	}
	filter.AccountID = q.Get("account_id")
	filter.Type = q.Get("type")
	filter.Description = q.Get("search")
	if raw := q.Get("min_amount"); raw != "" {
		minor, err := parseAmountMinor(raw)
		if err != nil {
			return filter, err
		}
		filter.MinAmount = &minor
	}
	if raw := q.Get("max_amount"); raw != "" {
		minor, err := parseAmountMinor(raw)
		if err != nil {
			return filter, err
		}
		filter.MaxAmount = &minor
	}
	return filter, nil
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	filter, err := filterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts := store.FetchOptions{OrderBy: "created_at"}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		opts.Limit = parsePositiveInt(raw, 0)
	}
	rows, err := h.transactions.GetUserTransactions(r.Context(), userID, filter, opts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *TransactionHandler) ListPaginated(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	filter, err := filterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	page := parsePositiveInt(r.URL.Query().Get("page"), 1)
	pageSize := parsePositiveInt(r.URL.Query().Get("page_size"), 20)
	result, err := h.transactions.GetUserTransactionsPaginated(r.Context(), userID, filter, page, pageSize)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *TransactionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	filter, err := filterFromQuery(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	stats, err := h.transactions.GetTransactionStats(r.Context(), userID, filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

type transferBody struct {
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body transferBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := parseAmountMinor(body.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	transactionID, err := h.transactions.Transfer(r.Context(), services.TransferRequest{
		UserID:        userID,
		FromAccountID: body.FromAccountID,
		ToAccountID:   body.ToAccountID,
		Amount:        amount,
		Description:   body.Description,
	})
	h.respondMutation(w, transactionID, err)
}

type movementBody struct {
	AccountID   string `json:"account_id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.applyMovement(w, r, h.transactions.Deposit)
}

func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.applyMovement(w, r, h.transactions.Withdraw)
}

func (h *TransactionHandler) applyMovement(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, userID, accountID string, amount int64, description string) (string, error)) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body movementBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	amount, err := parseAmountMinor(body.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	transactionID, err := apply(r.Context(), userID, body.AccountID, amount, body.Description)
	h.respondMutation(w, transactionID, err)
}

// respondMutation maps service errors to statuses. A partial apply is its own
// case: the client has to know some writes landed.
func (h *TransactionHandler) respondMutation(w http.ResponseWriter, transactionID string, err error) {
	var partial *batch.PartialError
	switch {
	case err == nil:
		respondJSON(w, http.StatusCreated, map[string]string{"transaction_id": transactionID})
	case errors.As(err, &partial):
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"error":         "operation partially applied",
			"failed_step":   partial.Step,
			"applied_steps": partial.Applied,
		})
	case errors.Is(err, services.ErrInvalidAmount):
		respondError(w, http.StatusBadRequest, "amount must be positive")
	case errors.Is(err, services.ErrSameAccountTransfer):
		respondError(w, http.StatusBadRequest, "cannot transfer to the same account")
	case errors.Is(err, services.ErrUnauthorizedAccount):
		respondError(w, http.StatusForbidden, "account does not belong to user")
	case errors.Is(err, services.ErrAccountFrozen):
		respondError(w, http.StatusConflict, "account is frozen")
	case errors.Is(err, services.ErrInsufficientFunds):
		respondError(w, http.StatusUnprocessableEntity, "insufficient funds")
	default:
		respondError(w, http.StatusInternalServerError, "failed to apply transaction")
	}
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Ghost247-bot/ulster-sub001/internal/middleware"
	"github.com/Ghost247-bot/ulster-sub001/internal/models"
	"github.com/Ghost247-bot/ulster-sub001/internal/services"
)

type AccountService interface {
	ListByUser(ctx context.Context, userID string) ([]models.Account, error)
	GetOwned(ctx context.Context, userID, accountID string) (models.Account, error)
	FreezeByUser(ctx context.Context, userID, accountID string) error
	UnfreezeByUser(ctx context.Context, userID, accountID string) error
}

type AccountHandler struct {
	accounts AccountService
}

func NewAccountHandler(accounts AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accounts, err := h.accounts.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	respondJSON(w, http.StatusOK, accounts)
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	account, err := h.accounts.GetOwned(r.Context(), userID, chi.URLParam(r, "accountID"))
	if err != nil {
		if errors.Is(err, services.ErrUnauthorizedAccount) {
			respondError(w, http.StatusForbidden, "account does not belong to user")
			return
		}
		respondError(w, http.StatusNotFound, "account not found")
		return
	}
	respondJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) Freeze(w http.ResponseWriter, r *http.Request) {
	h.setFrozen(w, r, true)
}

func (h *AccountHandler) Unfreeze(w http.ResponseWriter, r *http.Request) {
	h.setFrozen(w, r, false)
}

func (h *AccountHandler) setFrozen(w http.ResponseWriter, r *http.Request, freeze bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accountID := chi.URLParam(r, "accountID")
	var err error
	if freeze {
		err = h.accounts.FreezeByUser(r.Context(), userID, accountID)
	} else {
		err = h.accounts.UnfreezeByUser(r.Context(), userID, accountID)
	}
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]bool{"is_frozen": freeze})
	case errors.Is(err, services.ErrUnauthorizedAccount):
		respondError(w, http.StatusForbidden, "account does not belong to user")
	case errors.Is(err, services.ErrFrozenByAdmin):
		respondError(w, http.StatusConflict, "account is frozen by an administrator")
	default:
		respondError(w, http.StatusInternalServerError, "failed to update account")
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Ghost247-bot/ulster-sub001/internal/auth"
	"github.com/Ghost247-bot/ulster-sub001/internal/batch"
	"github.com/Ghost247-bot/ulster-sub001/internal/db"
	"github.com/Ghost247-bot/ulster-sub001/internal/middleware"
	"github.com/Ghost247-bot/ulster-sub001/internal/models"
	"github.com/Ghost247-bot/ulster-sub001/internal/services"
	"github.com/Ghost247-bot/ulster-sub001/internal/store"
	"github.com/Ghost247-bot/ulster-sub001/internal/validator"
)

type AdminAccountService interface {
	ListAll(ctx context.Context) ([]models.Account, error)
	FreezeByAdmin(ctx context.Context, actorID, accountID string) error
	UnfreezeByAdmin(ctx context.Context, actorID, accountID string) error
	AdjustBalance(ctx context.Context, actorID, accountID string, newBalance int64, reason string) (string, error)
}

type AuditLog interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, data string) error
	List(ctx context.Context, limit, offset int) ([]map[string]any, error)
}

// UserAdminStore is the user surface available through the privileged handle.
type UserAdminStore interface {
	UserStore
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Delete(ctx context.Context, tx store.Execer, userID string) error
}

// Provisioner manages users through the privileged database handle. It is nil
// when SERVICE_DATABASE_URL is not configured, and the user management routes
// are not mounted.
type Provisioner struct {
	Tx       db.TxRunner
	Users    UserAdminStore
	Profiles ProfileStore
	Accounts AccountCreator
}

type AdminHandler struct {
	accounts    AdminAccountService
	audit       AuditLog
	provisioner *Provisioner
}

func NewAdminHandler(accounts AdminAccountService, audit AuditLog, provisioner *Provisioner) *AdminHandler {
	return &AdminHandler{accounts: accounts, audit: audit, provisioner: provisioner}
}

func (h *AdminHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list accounts")
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	respondJSON(w, http.StatusOK, accounts)
}

func (h *AdminHandler) FreezeAccount(w http.ResponseWriter, r *http.Request) {
	h.setFrozen(w, r, true)
}

func (h *AdminHandler) UnfreezeAccount(w http.ResponseWriter, r *http.Request) {
	h.setFrozen(w, r, false)
}

func (h *AdminHandler) setFrozen(w http.ResponseWriter, r *http.Request, freeze bool) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	accountID := chi.URLParam(r, "accountID")
	var err error
	if freeze {
		err = h.accounts.FreezeByAdmin(r.Context(), actorID, accountID)
	} else {
		err = h.accounts.UnfreezeByAdmin(r.Context(), actorID, accountID)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update account")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"is_frozen": freeze})
}

type adjustBalanceBody struct {
	Balance string `json:"balance"`
	Reason  string `json:"reason"`
}

func (h *AdminHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body adjustBalanceBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	balance, err := parseAmountMinor(body.Balance)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	transactionID, err := h.accounts.AdjustBalance(r.Context(), actorID, chi.URLParam(r, "accountID"), balance, body.Reason)
	var partial *batch.PartialError
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]string{"transaction_id": transactionID})
	case errors.As(err, &partial):
		respondJSON(w, http.StatusInternalServerError, map[string]any{
			"error":         "operation partially applied",
			"failed_step":   partial.Step,
			"applied_steps": partial.Applied,
		})
	case errors.Is(err, services.ErrNegativeBalance):
		respondError(w, http.StatusBadRequest, "balance cannot be negative")
	default:
		respondError(w, http.StatusInternalServerError, "failed to adjust balance")
	}
}

func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := parsePositiveInt(r.URL.Query().Get("limit"), 100)
	page := parsePositiveInt(r.URL.Query().Get("page"), 1)
	logs, err := h.audit.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list audit logs")
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

type provisionUserBody struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsAdmin   bool   `json:"is_admin"`
	Role      string `json:"role"`
}

// ProvisionUser creates a user through the privileged handle.
func (h *AdminHandler) ProvisionUser(w http.ResponseWriter, r *http.Request) {
	if h.provisioner == nil {
		respondError(w, http.StatusServiceUnavailable, "user provisioning is not configured")
		return
	}
	var body provisionUserBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	if err := validator.ValidateEmail(body.Email); err != nil {
		respondError(w, http.StatusBadRequest, "invalid email")
		return
	}
	if err := validator.ValidatePassword(body.Password); err != nil {
		respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to provision user")
		return
	}
	role := body.Role
	if role == "" {
		role = roleFor(body.IsAdmin)
	}
	userID := uuid.NewString()
	err = h.provisioner.Tx.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.provisioner.Users.Create(r.Context(), tx, userID, body.Email, hash); err != nil {
			return err
		}
		if err := h.provisioner.Profiles.Create(r.Context(), tx, store.ProfileInput{
			ID:        userID,
			Email:     body.Email,
			FirstName: body.FirstName,
			LastName:  body.LastName,
			IsAdmin:   body.IsAdmin,
			Role:      role,
		}); err != nil {
			return err
		}
		return h.provisioner.Accounts.Create(r.Context(), tx, store.AccountInput{
			ID:            uuid.NewString(),
			UserID:        userID,
			AccountType:   models.AccountTypeChecking,
			AccountNumber: randomAccountNumber(),
			RoutingNumber: defaultRoutingNumber,
			Balance:       0,
		})
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to provision user")
		return
	}
	actorID, _ := middleware.UserIDFromContext(r.Context())
	data, _ := json.Marshal(map[string]string{"email": body.Email})
	_ = h.audit.Record(r.Context(), actorID, "provision_user", "user", userID, string(data))
	respondJSON(w, http.StatusCreated, map[string]string{"id": userID, "email": body.Email})
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if h.provisioner == nil {
		respondError(w, http.StatusServiceUnavailable, "user management is not configured")
		return
	}
	limit := parsePositiveInt(r.URL.Query().Get("limit"), 100)
	page := parsePositiveInt(r.URL.Query().Get("page"), 1)
	users, err := h.provisioner.Users.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	respondJSON(w, http.StatusOK, users)
}

// DeleteUser removes a user; dependent rows go with it via cascading foreign
// keys. Admins cannot delete themselves.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if h.provisioner == nil {
		respondError(w, http.StatusServiceUnavailable, "user management is not configured")
		return
	}
	actorID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID := chi.URLParam(r, "userID")
	if userID == actorID {
		respondError(w, http.StatusBadRequest, "cannot delete your own user")
		return
	}
	err := h.provisioner.Tx.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		return h.provisioner.Users.Delete(r.Context(), tx, userID)
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	_ = h.audit.Record(r.Context(), actorID, "delete_user", "user", userID, "{}")
	w.WriteHeader(http.StatusNoContent)
}

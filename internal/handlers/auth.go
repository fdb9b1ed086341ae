package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Ghost247-bot/ulster-sub001/internal/auth"
	"github.com/Ghost247-bot/ulster-sub001/internal/db"
	"github.com/Ghost247-bot/ulster-sub001/internal/middleware"
	"github.com/Ghost247-bot/ulster-sub001/internal/models"
	"github.com/Ghost247-bot/ulster-sub001/internal/store"
	"github.com/Ghost247-bot/ulster-sub001/internal/validator"
)

type UserStore interface {
	Create(ctx context.Context, tx store.Execer, id, email, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, userID string) (models.User, error)
	Count(ctx context.Context) (int, error)
}

type ProfileStore interface {
	Create(ctx context.Context, tx store.Execer, input store.ProfileInput) error
	Get(ctx context.Context, userID string) (models.Profile, error)
	Update(ctx context.Context, input store.ProfileInput) error
}

type AccountCreator interface {
	Create(ctx context.Context, tx store.Execer, input store.AccountInput) error
}

type NotificationInserter interface {
	Insert(ctx context.Context, tx store.Execer, input store.NotificationInput) error
}

type AuthHandler struct {
	jwtSecret string
	tokenTTL  time.Duration
	tx        db.TxRunner
	users     UserStore
	profiles  ProfileStore
	accounts  AccountCreator
	notes     NotificationInserter
}

func NewAuthHandler(jwtSecret string, tokenTTL time.Duration, tx db.TxRunner, users UserStore, profiles ProfileStore, accounts AccountCreator, notes NotificationInserter) *AuthHandler {
	return &AuthHandler{
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		tx:        tx,
		users:     users,
		profiles:  profiles,
		accounts:  accounts,
		notes:     notes,
	}
}

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Register creates the user, their profile, and a starter checking account in
// one transaction. The first registered user becomes an admin.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.ValidateEmail(req.Email); err != nil {
		respondError(w, http.StatusBadRequest, "invalid email")
		return
	}
	if err := validator.ValidatePassword(req.Password); err != nil {
		respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if _, err := h.users.GetByEmail(r.Context(), req.Email); err == nil {
		respondError(w, http.StatusConflict, "email already registered")
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to register")
		return
	}
	existing, err := h.users.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to register")
		return
	}
	userID := uuid.NewString()
	err = h.tx.WithTx(r.Context(), func(tx *sqlx.Tx) error {
		if err := h.users.Create(r.Context(), tx, userID, req.Email, hash); err != nil {
			return err
		}
		if err := h.profiles.Create(r.Context(), tx, store.ProfileInput{
			ID:        userID,
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			IsAdmin:   existing == 0,
			Role:      roleFor(existing == 0),
		}); err != nil {
			return err
		}
		if err := h.accounts.Create(r.Context(), tx, store.AccountInput{
			ID:            uuid.NewString(),
			UserID:        userID,
			AccountType:   models.AccountTypeChecking,
			AccountNumber: randomAccountNumber(),
			RoutingNumber: defaultRoutingNumber,
			Balance:       0,
		}); err != nil {
			return err
		}
		return h.notes.Insert(r.Context(), tx, store.NotificationInput{
			ID:      uuid.NewString(),
			UserID:  userID,
			Title:   "Welcome",
			Message: "Your account is ready. A checking account has been opened for you.",
			Type:    models.NotificationSuccess,
		})
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to register")
		return
	}
	token, err := auth.GenerateToken(h.jwtSecret, userID, h.tokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to register")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  map[string]string{"id": userID, "email": req.Email},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := auth.GenerateToken(h.jwtSecret, user.ID, h.tokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  map[string]string{"id": user.ID, "email": user.Email},
	})
}

// Me returns the caller's user and profile. Accounts predating the profiles
// table get a profile created on first read.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusNotFound, "user not found")
		return
	}
	profile, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		created := store.ProfileInput{ID: userID, Email: user.Email, Role: "customer"}
		err = h.tx.WithTx(r.Context(), func(tx *sqlx.Tx) error {
			return h.profiles.Create(r.Context(), tx, created)
		})
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to load profile")
			return
		}
		profile = models.Profile{ID: userID, Email: user.Email, Role: "customer"}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"user":    user,
		"profile": profile,
	})
}

func roleFor(admin bool) string {
	if admin {
		return "admin"
	}
	return "customer"
}

const defaultRoutingNumber = "021000021"

func randomAccountNumber() string {
	return fmt.Sprintf("%010d", rand.Int63n(1_000_000_0000))
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Ghost247-bot/ulster-sub001/internal/middleware"
	"github.com/Ghost247-bot/ulster-sub001/internal/models"
	"github.com/Ghost247-bot/ulster-sub001/internal/services"
	"github.com/Ghost247-bot/ulster-sub001/internal/store"
)

type CardStore interface {
	Insert(ctx context.Context, tx store.Execer, input store.CardInput) error
	ListByUser(ctx context.Context, userID string) ([]models.Card, error)
	GetByID(ctx context.Context, cardID string) (models.Card, error)
	SetActive(ctx context.Context, cardID string, active bool) error
}

type AccountOwnership interface {
	GetOwned(ctx context.Context, userID, accountID string) (models.Account, error)
}

type CardHandler struct {
	db       store.Execer
	cards    CardStore
	accounts AccountOwnership
}

func NewCardHandler(db store.Execer, cards CardStore, accounts AccountOwnership) *CardHandler {
	return &CardHandler{db: db, cards: cards, accounts: accounts}
}

func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	cards, err := h.cards.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list cards")
		return
	}
	if cards == nil {
		cards = []models.Card{}
	}
	respondJSON(w, http.StatusOK, cards)
}

type createCardBody struct {
	AccountID  string `json:"account_id"`
	CardType   string `json:"card_type"`
	HolderName string `json:"holder_name"`
}

// Create issues a card against one of the caller's accounts. Numbers are
// generated server-side.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body createCardBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.CardType != "debit" && body.CardType != "credit" {
		respondError(w, http.StatusBadRequest, "card_type must be debit or credit")
		return
	}
	if _, err := h.accounts.GetOwned(r.Context(), userID, body.AccountID); err != nil {
		if errors.Is(err, services.ErrUnauthorizedAccount) {
			respondError(w, http.StatusForbidden, "account does not belong to user")
			return
		}
		respondError(w, http.StatusNotFound, "account not found")
		return
	}
	expiry := time.Now().AddDate(4, 0, 0)
	input := store.CardInput{
		ID:          uuid.NewString(),
		UserID:      userID,
		AccountID:   body.AccountID,
		CardNumber:  randomCardNumber(),
		CardType:    body.CardType,
		ExpiryMonth: int(expiry.Month()),
		ExpiryYear:  expiry.Year(),
		CVV:         fmt.Sprintf("%03d", rand.Intn(1000)),
		HolderName:  body.HolderName,
	}
	if err := h.cards.Insert(r.Context(), h.db, input); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create card")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": input.ID})
}

func (h *CardHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *CardHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *CardHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	cardID := chi.URLParam(r, "cardID")
	card, err := h.cards.GetByID(r.Context(), cardID)
	if err != nil {
		respondError(w, http.StatusNotFound, "card not found")
		return
	}
	if card.UserID != userID {
		respondError(w, http.StatusForbidden, "card does not belong to user")
		return
	}
	if err := h.cards.SetActive(r.Context(), cardID, active); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update card")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"is_active": active})
}

func randomCardNumber() string {
	return fmt.Sprintf("4%015d", rand.Int63n(1_000_000_000_000_000))
}

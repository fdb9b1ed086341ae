package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Ghost247-bot/ulster-sub001/internal/middleware"
	"github.com/Ghost247-bot/ulster-sub001/internal/store"
	"github.com/Ghost247-bot/ulster-sub001/internal/validator"
)

type ProfileHandler struct {
	profiles ProfileStore
}

func NewProfileHandler(profiles ProfileStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	profile, err := h.profiles.Get(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusNotFound, "profile not found")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

type updateProfileBody struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var body updateProfileBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.FirstName != "" {
		if err := validator.ValidateName(body.FirstName); err != nil {
			respondError(w, http.StatusBadRequest, "invalid first name")
			return
		}
	}
	if body.LastName != "" {
		if err := validator.ValidateName(body.LastName); err != nil {
			respondError(w, http.StatusBadRequest, "invalid last name")
			return
		}
	}
	err := h.profiles.Update(r.Context(), store.ProfileInput{
		ID:        userID,
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Address:   body.Address,
		City:      body.City,
		State:     body.State,
		ZipCode:   body.ZipCode,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

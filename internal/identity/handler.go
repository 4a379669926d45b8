// internal/identity/handler.go
package identity

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	directory Directory
}

func NewHandler(directory Directory) *Handler {
	return &Handler{directory: directory}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/profiles/{id}", h.handleGetProfile)
	r.Post("/profiles", h.handleRegister)
	return r
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.directory.Profile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(profile)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var profile Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if profile.ID == "" || profile.Name == "" || !profile.Role.Valid() {
		http.Error(w, "id, name and a valid role are required", http.StatusBadRequest)
		return
	}

	if err := h.directory.Register(r.Context(), profile); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(profile)
}

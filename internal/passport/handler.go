// internal/passport/handler.go
package passport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ecopass/internal/platform/metrics"
)

// Handler is the thin HTTP layer over the lifecycle service. Authorization
// is expected to have happened upstream; requests carry the acting identity
// by display name.
type Handler struct {
	service Service
	metrics *metrics.Metrics
}

func NewHandler(service Service, m *metrics.Metrics) *Handler {
	return &Handler{service: service, metrics: m}
}

// Routes mounts all passport endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/items", h.handleSubmit)
	r.Get("/items", h.handleListAll)
	r.Get("/items/{id}", h.handleGetItem)
	r.Get("/items/{id}/history", h.handleGetHistory)
	r.Post("/items/{id}/given", h.handleMarkGiven)
	r.Post("/items/{id}/expedite", h.handleExpedite)
	r.Post("/items/{id}/verify", h.handleVerify)
	r.Post("/items/{id}/bid", h.handleBid)
	r.Post("/items/{id}/pickup", h.handlePickup)
	r.Get("/citizens/{id}/items", h.handleListByOwner)
	return r
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &ValidationError{Field: "body", Reason: err.Error()})
		return
	}

	item, err := h.service.Submit(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.ItemSubmitted()
	h.metrics.TransitionApplied(string(item.Status))
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Item(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.Item(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item.History)
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.AllItems(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) handleListByOwner(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ItemsByOwner(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type actorRequest struct {
	ActorName string `json:"actor_name"`
}

func (h *Handler) handleMarkGiven(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.MarkGivenByCitizen)
}

func (h *Handler) handleExpedite(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.ExpediteCollection)
}

func (h *Handler) handlePickup(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.ConfirmPickup)
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, itemID, actorName string) (*Item, error)) {
	var req actorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &ValidationError{Field: "body", Reason: err.Error()})
		return
	}

	item, err := op(r.Context(), chi.URLParam(r, "id"), req.ActorName)
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.TransitionApplied(string(item.Status))
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ActorName              string          `json:"actor_name"`
		ClassificationOverride *Classification `json:"classification_override,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &ValidationError{Field: "body", Reason: err.Error()})
		return
	}

	item, err := h.service.VerifyCollection(r.Context(), chi.URLParam(r, "id"), req.ActorName, req.ClassificationOverride)
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.TransitionApplied(string(item.Status))
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) handleBid(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BidderName string  `json:"bidder_name"`
		BidAmount  float64 `json:"bid_amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &ValidationError{Field: "body", Reason: err.Error()})
		return
	}

	item, err := h.service.PlaceBindingBid(r.Context(), chi.URLParam(r, "id"), req.BidderName, req.BidAmount)
	if err != nil {
		writeError(w, err)
		return
	}

	h.metrics.TransitionApplied(string(item.Status))
	writeJSON(w, http.StatusOK, item)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var validationErr *ValidationError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrInvalidTransition):
		status = http.StatusConflict
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

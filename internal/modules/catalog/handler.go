package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/framecraft-backend/internal/apperror"
	"github.com/georgemunganga/framecraft-backend/internal/modules/pricing"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/frames", h.listFrames)
		r.Get("/sizes", h.listSizes)
		r.Post("/quote", h.quote)
	})
}

// QuoteRequest is the payload for pricing a cart.
type QuoteRequest struct {
	Items []pricing.Item `json:"items"`
}

func (h *Handler) listFrames(w http.ResponseWriter, r *http.Request) {
	frames, err := h.service.ListFrames(r.Context())
	if err != nil {
		respond(w, apperror.StatusCode(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, frames)
}

func (h *Handler) listSizes(w http.ResponseWriter, r *http.Request) {
	sizes, err := h.service.ListSizes(r.Context())
	if err != nil {
		respond(w, apperror.StatusCode(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, sizes)
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	q, err := h.service.Quote(r.Context(), req.Items)
	if err != nil {
		respond(w, apperror.StatusCode(err), map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, q)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

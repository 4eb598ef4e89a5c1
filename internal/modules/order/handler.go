package order

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/georgemunganga/framecraft-backend/internal/apperror"
	"github.com/georgemunganga/framecraft-backend/internal/authctx"
)

// Handler exposes order HTTP endpoints. Routes expect the auth middleware upstream.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)                             // POST   /api/v1/orders
		r.Get("/", h.listAll)                                  // GET    /api/v1/orders
		r.Get("/customer/{customer_id}", h.listCustomerOrders) // GET    /api/v1/orders/customer/{customer_id}
		r.Get("/vendor/{vendor_id}", h.listVendorOrders)       // GET    /api/v1/orders/vendor/{vendor_id}
		r.Get("/{id}", h.getOrder)                             // GET    /api/v1/orders/{id}
		r.Get("/{id}/status", h.getStatus)                     // GET    /api/v1/orders/{id}/status
		r.Patch("/{id}/status", h.updateStatus)                // PATCH  /api/v1/orders/{id}/status
		r.Put("/{id}/vendor", h.assignVendor)                  // PUT    /api/v1/orders/{id}/vendor
		r.Post("/{id}/cancel", h.cancelOrder)                  // POST   /api/v1/orders/{id}/cancel
		r.Delete("/{id}", h.cancelOrder)                       // DELETE /api/v1/orders/{id}
	})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.CreateOrder(r.Context(), actor, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	orders, err := h.service.ListAll(r.Context(), actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) listCustomerOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	orders, err := h.service.ListForCustomer(r.Context(), actor, chi.URLParam(r, "customer_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) listVendorOrders(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	orders, err := h.service.ListForVendor(r.Context(), actor, chi.URLParam(r, "vendor_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	o, err := h.service.GetOrder(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	snap, err := h.service.GetStatus(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, snap)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	target, err := ParseStatus(req.Status)
	if err != nil {
		respondError(w, err)
		return
	}
	o, err := h.service.TransitionStatus(r.Context(), chi.URLParam(r, "id"), actor, target)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) assignVendor(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req AssignVendorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	o, err := h.service.AssignVendor(r.Context(), chi.URLParam(r, "id"), actor, req.VendorID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	o, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func requireActor(w http.ResponseWriter, r *http.Request) (authctx.Actor, bool) {
	actor, ok := authctx.FromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}
	return actor, ok
}

func respondError(w http.ResponseWriter, err error) {
	body := map[string]interface{}{"error": err.Error()}
	if apperror.IsRetryable(err) {
		body["retryable"] = true
	}
	respond(w, apperror.StatusCode(err), body)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

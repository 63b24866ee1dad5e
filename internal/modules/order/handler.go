package order

import (
	"encoding/json"
	"net/http"

	"github.com/georgemunganga/tablepos/internal/platform/apperrors"
	"github.com/go-chi/chi/v5"
)

// Handler exposes order HTTP endpoints.
type Handler struct{ ledger *Ledger }

func NewHandler(ledger *Ledger) *Handler { return &Handler{ledger: ledger} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Get("/", h.list)                        // GET    /api/v1/orders?status=&paymentStatus=&staffId=&search=
		r.Post("/", h.add)                        // POST   /api/v1/orders
		r.Get("/stats", h.stats)                  // GET    /api/v1/orders/stats
		r.Post("/quote", h.quote)                 // POST   /api/v1/orders/quote
		r.Get("/selected", h.selected)            // GET    /api/v1/orders/selected
		r.Put("/selected", h.selectOrder)         // PUT    /api/v1/orders/selected
		r.Get("/{id}", h.get)                     // GET    /api/v1/orders/{id}
		r.Patch("/{id}/status", h.updateStatus)   // PATCH  /api/v1/orders/{id}/status
		r.Patch("/{id}/payment", h.updatePayment) // PATCH  /api/v1/orders/{id}/payment
		r.Delete("/{id}", h.delete)               // DELETE /api/v1/orders/{id}
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	respond(w, http.StatusOK, h.ledger.FilterOrders(Filter{
		Status:        Status(q.Get("status")),
		PaymentStatus: PaymentStatus(q.Get("paymentStatus")),
		StaffID:       q.Get("staffId"),
		Search:        q.Get("search"),
	}))
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req NewOrder
	if !decode(w, r, &req) {
		return
	}
	o, err := h.ledger.AddOrder(req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items    []Item   `json:"items"`
		Discount Discount `json:"discount"`
	}
	if !decode(w, r, &req) {
		return
	}
	q, err := Price(req.Items, req.Discount)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, q)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.ledger.Stats(h.ledger.opts.Now()))
}

func (h *Handler) selected(w http.ResponseWriter, r *http.Request) {
	o, ok := h.ledger.SelectedOrder()
	if !ok {
		respond(w, http.StatusOK, nil)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) selectOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"orderId"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.ledger.SelectOrder(req.OrderID); err != nil {
		fail(w, err)
		return
	}
	h.selected(w, r)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	o, ok := h.ledger.Order(id)
	if !ok {
		fail(w, apperrors.NotFound("order", id))
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status Status `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	o, err := h.ledger.UpdateOrderStatus(chi.URLParam(r, "id"), req.Status)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) updatePayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentStatus PaymentStatus `json:"paymentStatus"`
	}
	if !decode(w, r, &req) {
		return
	}
	o, err := h.ledger.UpdatePaymentStatus(chi.URLParam(r, "id"), req.PaymentStatus)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteOrder(chi.URLParam(r, "id")); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

func fail(w http.ResponseWriter, err error) {
	respond(w, apperrors.HTTPStatus(err), map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

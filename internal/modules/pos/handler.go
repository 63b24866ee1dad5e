package pos

import (
	"encoding/json"
	"net/http"

	"github.com/georgemunganga/tablepos/internal/modules/order"
	"github.com/georgemunganga/tablepos/internal/platform/apperrors"
	"github.com/go-chi/chi/v5"
)

// Handler exposes POS HTTP endpoints.
type Handler struct{ checkout *Checkout }

func NewHandler(checkout *Checkout) *Handler { return &Handler{checkout: checkout} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/pos", func(r chi.Router) {
		r.Get("/tables/{table_id}/cart", h.getCart)                       // GET    /api/v1/pos/tables/{id}/cart
		r.Delete("/tables/{table_id}/cart", h.clearCart)                  // DELETE /api/v1/pos/tables/{id}/cart
		r.Post("/tables/{table_id}/cart/items", h.addItem)                // POST   /api/v1/pos/tables/{id}/cart/items
		r.Patch("/tables/{table_id}/cart/items/{line_id}", h.updateLine)  // PATCH  /api/v1/pos/tables/{id}/cart/items/{line}
		r.Delete("/tables/{table_id}/cart/items/{line_id}", h.removeLine) // DELETE /api/v1/pos/tables/{id}/cart/items/{line}
		r.Post("/tables/{table_id}/cart/quote", h.quote)                  // POST   /api/v1/pos/tables/{id}/cart/quote
		r.Post("/tables/{table_id}/checkout", h.placeOrder)               // POST   /api/v1/pos/tables/{id}/checkout
		r.Post("/orders/{order_id}/settle", h.settle)                     // POST   /api/v1/pos/orders/{id}/settle
		r.Post("/orders/{order_id}/cancel", h.cancel)                     // POST   /api/v1/pos/orders/{id}/cancel
		r.Post("/orders/{order_id}/refund", h.refund)                     // POST   /api/v1/pos/orders/{id}/refund
	})
}

type cartResponse struct {
	Items         []CartItem `json:"items"`
	TotalQuantity int        `json:"totalQuantity"`
}

func (h *Handler) cartView(tableID string) cartResponse {
	cart := h.checkout.Cart(tableID)
	return cartResponse{Items: cart.Items(), TotalQuantity: cart.TotalQuantity()}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.cartView(chi.URLParam(r, "table_id")))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	h.checkout.Cart(chi.URLParam(r, "table_id")).Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MenuItemID string `json:"menuItemId"`
		Quantity   int    `json:"quantity"`
		Note       string `json:"note"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	tableID := chi.URLParam(r, "table_id")
	if _, err := h.checkout.AddToCart(tableID, req.MenuItemID, req.Quantity, req.Note); err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, h.cartView(tableID))
}

func (h *Handler) updateLine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity *int    `json:"quantity"`
		Note     *string `json:"note"`
	}
	if !decode(w, r, &req) {
		return
	}
	tableID := chi.URLParam(r, "table_id")
	lineID := chi.URLParam(r, "line_id")
	cart := h.checkout.Cart(tableID)
	if req.Note != nil {
		if err := cart.SetNote(lineID, *req.Note); err != nil {
			fail(w, err)
			return
		}
	}
	if req.Quantity != nil {
		if err := cart.SetQuantity(lineID, *req.Quantity); err != nil {
			fail(w, err)
			return
		}
	}
	respond(w, http.StatusOK, h.cartView(tableID))
}

func (h *Handler) removeLine(w http.ResponseWriter, r *http.Request) {
	tableID := chi.URLParam(r, "table_id")
	if err := h.checkout.Cart(tableID).Remove(chi.URLParam(r, "line_id")); err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, h.cartView(tableID))
}

func (h *Handler) quote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Discount order.Discount `json:"discount"`
	}
	if !decode(w, r, &req) {
		return
	}
	q, err := h.checkout.Cart(chi.URLParam(r, "table_id")).Quote(req.Discount)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, q)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if !decode(w, r, &req) {
		return
	}
	req.TableID = chi.URLParam(r, "table_id")
	o, err := h.checkout.PlaceOrder(req)
	if err != nil && o.ID != "" {
		// The order exists; only the table update failed.
		respond(w, http.StatusCreated, map[string]interface{}{"order": o, "warning": err.Error()})
		return
	}
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, map[string]interface{}{"order": o})
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	var req SettleRequest
	if !decode(w, r, &req) {
		return
	}
	receipt, err := h.checkout.SettleOrder(chi.URLParam(r, "order_id"), req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, receipt)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	o, err := h.checkout.CancelOrder(chi.URLParam(r, "order_id"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) refund(w http.ResponseWriter, r *http.Request) {
	o, err := h.checkout.RefundOrder(chi.URLParam(r, "order_id"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, o)
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

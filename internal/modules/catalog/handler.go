package catalog

import (
	"encoding/json"
	"net/http"

	"github.com/georgemunganga/tablepos/internal/platform/apperrors"
	"github.com/go-chi/chi/v5"
)

// Handler exposes catalog HTTP endpoints.
type Handler struct{ store *Store }

func NewHandler(store *Store) *Handler { return &Handler{store: store} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/items", h.listItems)                   // GET    /api/v1/catalog/items?category=&status=&search=
		r.Post("/items", h.addItem)                    // POST   /api/v1/catalog/items
		r.Get("/items/{id}", h.getItem)                // GET    /api/v1/catalog/items/{id}
		r.Patch("/items/{id}", h.updateItem)           // PATCH  /api/v1/catalog/items/{id}
		r.Delete("/items/{id}", h.deleteItem)          // DELETE /api/v1/catalog/items/{id}
		r.Post("/items/{id}/toggle", h.toggleItem)     // POST   /api/v1/catalog/items/{id}/toggle
		r.Put("/items/{id}/status", h.setItemStatus)   // PUT    /api/v1/catalog/items/{id}/status
		r.Put("/items/{id}/stock", h.setStock)         // PUT    /api/v1/catalog/items/{id}/stock
		r.Post("/items/bulk/delete", h.bulkDelete)     // POST   /api/v1/catalog/items/bulk/delete
		r.Post("/items/bulk/status", h.bulkStatus)     // POST   /api/v1/catalog/items/bulk/status
		r.Post("/items/bulk/category", h.bulkCategory) // POST   /api/v1/catalog/items/bulk/category
		r.Get("/categories", h.listCategories)         // GET    /api/v1/catalog/categories
		r.Post("/categories", h.addCategory)           // POST   /api/v1/catalog/categories
		r.Patch("/categories/{id}", h.updateCategory)  // PATCH  /api/v1/catalog/categories/{id}
		r.Delete("/categories/{id}", h.deleteCategory) // DELETE /api/v1/catalog/categories/{id}
		r.Get("/counts", h.counts)                     // GET    /api/v1/catalog/counts
	})
}

type bulkRequest struct {
	IDs        []string   `json:"ids"`
	Status     ItemStatus `json:"status"`
	CategoryID string     `json:"categoryId"`
}

func (h *Handler) listItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	respond(w, http.StatusOK, h.store.FilterItems(Filter{
		Category: q.Get("category"),
		Status:   ItemStatus(q.Get("status")),
		Search:   q.Get("search"),
	}))
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req NewMenuItem
	if !decode(w, r, &req) {
		return
	}
	item, err := h.store.AddMenuItem(req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, item)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, ok := h.store.MenuItem(id)
	if !ok {
		fail(w, apperrors.NotFound("menu item", id))
		return
	}
	respond(w, http.StatusOK, item)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req MenuItemUpdate
	if !decode(w, r, &req) {
		return
	}
	item, err := h.store.UpdateMenuItem(chi.URLParam(r, "id"), req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, item)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteMenuItem(chi.URLParam(r, "id")); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggleItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.store.ToggleMenuItemAvailability(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, item)
}

func (h *Handler) setItemStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status ItemStatus `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	item, err := h.store.SetMenuItemStatus(chi.URLParam(r, "id"), req.Status)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, item)
}

func (h *Handler) setStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if !decode(w, r, &req) {
		return
	}
	item, err := h.store.UpdateStockQuantity(chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, item)
}

func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := h.store.BulkDeleteMenuItems(req.IDs)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"affected": n})
}

func (h *Handler) bulkStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := h.store.BulkToggleAvailability(req.IDs, req.Status)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"affected": n})
}

func (h *Handler) bulkCategory(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := h.store.BulkUpdateCategory(req.IDs, req.CategoryID)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"affected": n})
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.store.Categories())
}

func (h *Handler) addCategory(w http.ResponseWriter, r *http.Request) {
	var req NewCategory
	if !decode(w, r, &req) {
		return
	}
	c, err := h.store.AddCategory(req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, c)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryUpdate
	if !decode(w, r, &req) {
		return
	}
	c, err := h.store.UpdateCategory(chi.URLParam(r, "id"), req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, c)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCategory(chi.URLParam(r, "id")); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) counts(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]interface{}{
		"status":     h.store.Counts(),
		"byCategory": h.store.CountByCategory(),
	})
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

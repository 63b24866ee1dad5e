package roster

import (
	"encoding/json"
	"net/http"

	"github.com/georgemunganga/tablepos/internal/platform/apperrors"
	"github.com/go-chi/chi/v5"
)

// Handler exposes staff HTTP endpoints.
type Handler struct{ store *Store }

func NewHandler(store *Store) *Handler { return &Handler{store: store} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/staff", func(r chi.Router) {
		r.Get("/", h.list)                   // GET    /api/v1/staff?role=&status=&search=
		r.Post("/", h.add)                   // POST   /api/v1/staff
		r.Get("/counts", h.counts)           // GET    /api/v1/staff/counts
		r.Post("/bulk/delete", h.bulkDelete) // POST   /api/v1/staff/bulk/delete
		r.Post("/bulk/role", h.bulkRole)     // POST   /api/v1/staff/bulk/role
		r.Post("/bulk/status", h.bulkStatus) // POST   /api/v1/staff/bulk/status
		r.Get("/{id}", h.get)                // GET    /api/v1/staff/{id}
		r.Patch("/{id}", h.update)           // PATCH  /api/v1/staff/{id}
		r.Delete("/{id}", h.delete)          // DELETE /api/v1/staff/{id}
		r.Post("/{id}/toggle", h.toggle)     // POST   /api/v1/staff/{id}/toggle
		r.Put("/{id}/status", h.setStatus)   // PUT    /api/v1/staff/{id}/status
	})
}

// staffView adds today's worked time to a record.
type staffView struct {
	Staff
	WorkedMinutes int     `json:"workedMinutes"`
	HoursWorked   float64 `json:"hoursWorked"`
}

func (h *Handler) view(st Staff) staffView {
	minutes := h.store.WorkedMinutes(st)
	return staffView{Staff: st, WorkedMinutes: minutes, HoursWorked: hoursFromMinutes(minutes)}
}

type bulkRequest struct {
	IDs    []string `json:"ids"`
	Role   Role     `json:"role"`
	Status Status   `json:"status"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	members := h.store.FilterStaff(Filter{
		Role:   Role(q.Get("role")),
		Status: Status(q.Get("status")),
		Search: q.Get("search"),
	})
	out := make([]staffView, 0, len(members))
	for _, st := range members {
		out = append(out, h.view(st))
	}
	respond(w, http.StatusOK, out)
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	var req NewStaff
	if !decode(w, r, &req) {
		return
	}
	st, err := h.store.AddStaff(req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, h.view(st))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, ok := h.store.Member(id)
	if !ok {
		fail(w, apperrors.NotFound("staff", id))
		return
	}
	respond(w, http.StatusOK, h.view(st))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req StaffUpdate
	if !decode(w, r, &req) {
		return
	}
	st, err := h.store.UpdateStaff(chi.URLParam(r, "id"), req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, h.view(st))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteStaff(chi.URLParam(r, "id")); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.ToggleStaffStatus(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, h.view(st))
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status Status `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	st, err := h.store.SetStaffStatus(chi.URLParam(r, "id"), req.Status)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, h.view(st))
}

func (h *Handler) bulkDelete(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := h.store.BulkDeleteStaff(req.IDs)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"affected": n})
}

func (h *Handler) bulkRole(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !decode(w, r, &req) {
		return
	}
	n, err := h.store.BulkUpdateRole(req.IDs, req.Role)
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
	n, err := h.store.BulkUpdateStatus(req.IDs, req.Status)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{"affected": n})
}

func (h *Handler) counts(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.store.Counts())
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

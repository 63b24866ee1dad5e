package floorplan

import (
	"encoding/json"
	"net/http"

	"github.com/georgemunganga/tablepos/internal/platform/apperrors"
	"github.com/go-chi/chi/v5"
)

// Handler exposes floor plan HTTP endpoints.
type Handler struct{ store *Store }

func NewHandler(store *Store) *Handler { return &Handler{store: store} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/floorplan", func(r chi.Router) {
		r.Get("/", h.state)                            // GET    /api/v1/floorplan
		r.Put("/selection", h.selectTable)             // PUT    /api/v1/floorplan/selection
		r.Get("/tables", h.listTables)                 // GET    /api/v1/floorplan/tables?floor=&status=
		r.Post("/tables", h.addTable)                  // POST   /api/v1/floorplan/tables
		r.Get("/tables/options", h.tableOptions)       // GET    /api/v1/floorplan/tables/options
		r.Get("/tables/{id}", h.getTable)              // GET    /api/v1/floorplan/tables/{id}
		r.Patch("/tables/{id}", h.updateTable)         // PATCH  /api/v1/floorplan/tables/{id}
		r.Delete("/tables/{id}", h.deleteTable)        // DELETE /api/v1/floorplan/tables/{id}
		r.Put("/tables/{id}/position", h.moveTable)    // PUT    /api/v1/floorplan/tables/{id}/position
		r.Put("/tables/{id}/status", h.setTableStatus) // PUT    /api/v1/floorplan/tables/{id}/status
		r.Put("/tables/{id}/server", h.assignServer)   // PUT    /api/v1/floorplan/tables/{id}/server
		r.Post("/tables/{id}/order", h.assignOrder)    // POST   /api/v1/floorplan/tables/{id}/order
		r.Delete("/tables/{id}/order", h.clearOrder)   // DELETE /api/v1/floorplan/tables/{id}/order
		r.Get("/floors", h.listFloors)                 // GET    /api/v1/floorplan/floors
		r.Post("/floors", h.addFloor)                  // POST   /api/v1/floorplan/floors
		r.Put("/floors/current", h.setCurrentFloor)    // PUT    /api/v1/floorplan/floors/current
		r.Patch("/floors/{id}", h.renameFloor)         // PATCH  /api/v1/floorplan/floors/{id}
		r.Delete("/floors/{id}", h.deleteFloor)        // DELETE /api/v1/floorplan/floors/{id}
	})
}

type stateResponse struct {
	Snapshot
	SelectedTable *Table `json:"selectedTable"`
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	resp := stateResponse{Snapshot: h.store.Snapshot()}
	if t, ok := h.store.SelectedTable(); ok {
		resp.SelectedTable = &t
	}
	respond(w, http.StatusOK, resp)
}

func (h *Handler) selectTable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TableID string `json:"tableId"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.SelectTable(req.TableID); err != nil {
		fail(w, err)
		return
	}
	h.state(w, r)
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) {
	floor := r.URL.Query().Get("floor")
	status := TableStatus(r.URL.Query().Get("status"))
	var tables []Table
	if floor != "" {
		tables = h.store.TablesByFloor(floor)
	} else {
		tables = h.store.Tables()
	}
	if status != "" {
		kept := tables[:0]
		for _, t := range tables {
			if t.Status == status {
				kept = append(kept, t)
			}
		}
		tables = kept
	}
	respond(w, http.StatusOK, tables)
}

func (h *Handler) addTable(w http.ResponseWriter, r *http.Request) {
	var req NewTable
	if !decode(w, r, &req) {
		return
	}
	t, err := h.store.AddTable(req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, t)
}

func (h *Handler) tableOptions(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.store.TableOptions())
}

func (h *Handler) getTable(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t, ok := h.store.Table(id)
	if !ok {
		fail(w, apperrors.NotFound("table", id))
		return
	}
	respond(w, http.StatusOK, t)
}

func (h *Handler) updateTable(w http.ResponseWriter, r *http.Request) {
	var req TableUpdate
	if !decode(w, r, &req) {
		return
	}
	t, err := h.store.UpdateTable(chi.URLParam(r, "id"), req)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, t)
}

func (h *Handler) deleteTable(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteTable(chi.URLParam(r, "id")); err != nil {
		fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) moveTable(w http.ResponseWriter, r *http.Request) {
	var req Position
	if !decode(w, r, &req) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.store.UpdateTablePosition(id, req); err != nil {
		fail(w, err)
		return
	}
	h.getTable(w, r)
}

func (h *Handler) setTableStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status TableStatus `json:"status"`
	}
	if !decode(w, r, &req) {
		return
	}
	t, err := h.store.SetTableStatus(chi.URLParam(r, "id"), req.Status)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, t)
}

func (h *Handler) assignServer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	t, err := h.store.AssignServer(chi.URLParam(r, "id"), req.Name)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, t)
}

func (h *Handler) assignOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID   string `json:"orderId"`
		Occupancy *int   `json:"occupancy"`
	}
	if !decode(w, r, &req) {
		return
	}
	t, err := h.store.AssignOrder(chi.URLParam(r, "id"), req.OrderID, req.Occupancy)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, t)
}

func (h *Handler) clearOrder(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.ClearOrder(chi.URLParam(r, "id"))
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, t)
}

func (h *Handler) listFloors(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, h.store.Floors())
}

func (h *Handler) addFloor(w http.ResponseWriter, r *http.Request) {
	f, err := h.store.AddFloor()
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusCreated, f)
}

func (h *Handler) setCurrentFloor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FloorID string `json:"floorId"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.SetCurrentFloor(req.FloorID); err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, h.store.CurrentFloor())
}

func (h *Handler) renameFloor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	f, err := h.store.RenameFloor(chi.URLParam(r, "id"), req.Name)
	if err != nil {
		fail(w, err)
		return
	}
	respond(w, http.StatusOK, f)
}

func (h *Handler) deleteFloor(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteFloor(chi.URLParam(r, "id")); err != nil {
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

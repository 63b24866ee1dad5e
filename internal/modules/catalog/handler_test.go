package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(t *testing.T) (*chi.Mux, *Store) {
	t.Helper()
	s := newTestStore(t)
	r := chi.NewRouter()
	NewHandler(s).RegisterRoutes(r)
	return r, s
}

func do(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerItemLifecycle(t *testing.T) {
	r, s := newTestRouter(t)
	c := mustCategory(t, s, "Main")

	rec := do(t, r, http.MethodPost, "/api/v1/catalog/items", `{"name":"Phở bò","price":"65000","category":"`+c.ID+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}
	var created MenuItem
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = do(t, r, http.MethodPost, "/api/v1/catalog/items", `{"name":"phở bò","price":1,"category":"`+c.ID+`"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", rec.Code)
	}

	rec = do(t, r, http.MethodPut, "/api/v1/catalog/items/"+created.ID+"/stock", `{"quantity":5}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"low_stock"`) {
		t.Fatalf("stock status = %d, body %s", rec.Code, rec.Body)
	}

	rec = do(t, r, http.MethodGet, "/api/v1/catalog/items?search=pho", "")
	var found []MenuItem
	if err := json.NewDecoder(rec.Body).Decode(&found); err != nil || len(found) != 1 {
		t.Fatalf("search = %v, %v", found, err)
	}

	rec = do(t, r, http.MethodDelete, "/api/v1/catalog/categories/"+c.ID, "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete category in use = %d, want 409", rec.Code)
	}

	rec = do(t, r, http.MethodDelete, "/api/v1/catalog/items/"+created.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = do(t, r, http.MethodGet, "/api/v1/catalog/items/"+created.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get deleted = %d, want 404", rec.Code)
	}
}

func TestHandlerRejectsMalformedJSON(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := do(t, r, http.MethodPost, "/api/v1/catalog/categories", `{"name":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerBulkStatus(t *testing.T) {
	r, s := newTestRouter(t)
	c := mustCategory(t, s, "Main")
	a := mustItem(t, s, "A", c.ID, 10)
	b := mustItem(t, s, "B", c.ID, 10)

	rec := do(t, r, http.MethodPost, "/api/v1/catalog/items/bulk/status",
		`{"ids":["`+a.ID+`","`+b.ID+`"],"status":"unavailable"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"affected":2`) {
		t.Fatalf("bulk = %d, body %s", rec.Code, rec.Body)
	}
}

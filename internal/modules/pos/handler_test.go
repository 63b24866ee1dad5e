package pos

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestHandlerCartToSettlement(t *testing.T) {
	f := newFixture(t)
	r := chi.NewRouter()
	NewHandler(f.checkout).RegisterRoutes(r)
	base := "/api/v1/pos/tables/" + f.tableID

	rec := serve(r, http.MethodPost, base+"/cart/items", `{"menuItemId":"`+f.phoID+`","quantity":2}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add item = %d, body %s", rec.Code, rec.Body)
	}
	rec = serve(r, http.MethodPost, base+"/cart/items", `{"menuItemId":"`+f.bunChaID+`"}`)
	var cart cartResponse
	if err := json.NewDecoder(rec.Body).Decode(&cart); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	if len(cart.Items) != 2 || cart.TotalQuantity != 3 {
		t.Fatalf("cart = %+v", cart)
	}

	rec = serve(r, http.MethodPost, base+"/cart/quote", `{"discount":{"type":"percent","value":"10"}}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"total":"173250"`) {
		t.Fatalf("quote = %d, body %s", rec.Code, rec.Body)
	}

	rec = serve(r, http.MethodPost, base+"/checkout",
		`{"staffId":"`+f.waiterID+`","discount":{"type":"percent","value":"10"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout = %d, body %s", rec.Code, rec.Body)
	}
	var placed struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&placed); err != nil {
		t.Fatalf("decode order: %v", err)
	}

	rec = serve(r, http.MethodPost, "/api/v1/pos/orders/"+placed.Order.ID+"/settle", `{"method":"cash","tendered":"200000"}`)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"change":"26750"`) {
		t.Fatalf("settle = %d, body %s", rec.Code, rec.Body)
	}

	rec = serve(r, http.MethodPost, "/api/v1/pos/orders/"+placed.Order.ID+"/cancel", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("cancel completed = %d, want 409", rec.Code)
	}
}

func TestHandlerCartLineEdits(t *testing.T) {
	f := newFixture(t)
	r := chi.NewRouter()
	NewHandler(f.checkout).RegisterRoutes(r)
	base := "/api/v1/pos/tables/" + f.tableID

	line, err := f.checkout.AddToCart(f.tableID, f.phoID, 1, "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	rec := serve(r, http.MethodPatch, base+"/cart/items/"+line.ID, `{"quantity":5,"note":"less salt"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch = %d, body %s", rec.Code, rec.Body)
	}
	items := f.checkout.Cart(f.tableID).Items()
	if items[0].Quantity != 5 || items[0].Note != "less salt" {
		t.Fatalf("line = %+v", items[0])
	}

	if rec := serve(r, http.MethodDelete, base+"/cart/items/missing", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("delete missing = %d", rec.Code)
	}
	if rec := serve(r, http.MethodDelete, base+"/cart", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("clear = %d", rec.Code)
	}
	if rec := serve(r, http.MethodPost, base+"/checkout", `{"staffId":"`+f.waiterID+`"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty checkout = %d, want 400", rec.Code)
	}
	if rec := serve(r, http.MethodPost, base+"/cart/items", `{bad`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json = %d", rec.Code)
	}
}

package order

import (
	"errors"
	"testing"

	"github.com/georgemunganga/tablepos/internal/platform/apperrors"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func scenarioLines() []Item {
	return []Item{
		{Name: "Phở bò", Quantity: 2, Price: d("65000")},
		{Name: "Bún chả", Quantity: 1, Price: d("45000")},
	}
}

func TestPriceScenario(t *testing.T) {
	q, err := Price(scenarioLines(), Discount{Type: DiscountPercent, Value: d("10")})
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	want := Quote{Subtotal: d("175000"), Discount: d("17500"), Tax: d("15750"), Total: d("173250")}
	if !q.Subtotal.Equal(want.Subtotal) || !q.Discount.Equal(want.Discount) || !q.Tax.Equal(want.Tax) || !q.Total.Equal(want.Total) {
		t.Fatalf("quote = %+v, want %+v", q, want)
	}
}

func TestPriceDiscounts(t *testing.T) {
	tests := []struct {
		name     string
		discount Discount
		wantDisc string
		wantTax  string
	}{
		{name: "none", discount: Discount{}, wantDisc: "0", wantTax: "17500"},
		{name: "flat", discount: Discount{Type: DiscountFlat, Value: d("25000")}, wantDisc: "25000", wantTax: "15000"},
		{name: "flat capped", discount: Discount{Type: DiscountFlat, Value: d("999999")}, wantDisc: "175000", wantTax: "0"},
		{name: "full percent", discount: Discount{Type: DiscountPercent, Value: d("100")}, wantDisc: "175000", wantTax: "0"},
		{name: "fractional percent", discount: Discount{Type: DiscountPercent, Value: d("3.3333")}, wantDisc: "5833.28", wantTax: "16916.67"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Price(scenarioLines(), tt.discount)
			if err != nil {
				t.Fatalf("price: %v", err)
			}
			if !q.Discount.Equal(d(tt.wantDisc)) || !q.Tax.Equal(d(tt.wantTax)) {
				t.Fatalf("discount/tax = %s/%s, want %s/%s", q.Discount, q.Tax, tt.wantDisc, tt.wantTax)
			}
			if !q.Total.Equal(q.Subtotal.Sub(q.Discount).Add(q.Tax)) {
				t.Fatalf("total %s != subtotal - discount + tax", q.Total)
			}
		})
	}
}

func TestPriceIsIdempotent(t *testing.T) {
	lines := scenarioLines()
	disc := Discount{Type: DiscountPercent, Value: d("7.5")}
	first, err := Price(lines, disc)
	if err != nil {
		t.Fatalf("price: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, _ := Price(lines, disc)
		if !again.Subtotal.Equal(first.Subtotal) || !again.Discount.Equal(first.Discount) ||
			!again.Tax.Equal(first.Tax) || !again.Total.Equal(first.Total) {
			t.Fatalf("run %d = %+v, want %+v", i, again, first)
		}
	}
}

func TestPriceRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		lines []Item
		disc  Discount
	}{
		{name: "no lines", lines: nil},
		{name: "zero quantity", lines: []Item{{Name: "A", Quantity: 0, Price: d("1")}}},
		{name: "negative discount", lines: scenarioLines(), disc: Discount{Type: DiscountFlat, Value: d("-1")}},
		{name: "percent over 100", lines: scenarioLines(), disc: Discount{Type: DiscountPercent, Value: d("101")}},
		{name: "unknown type", lines: scenarioLines(), disc: Discount{Type: "bogo", Value: d("1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Price(tt.lines, tt.disc); !errors.Is(err, apperrors.ErrValidation) {
				t.Fatalf("err = %v, want validation", err)
			}
		})
	}
}

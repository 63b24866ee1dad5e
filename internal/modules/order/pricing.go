package order

import (
	"github.com/georgemunganga/tablepos/internal/platform/apperrors"
	"github.com/shopspring/decimal"
)

// DiscountType selects how Discount.Value is read.
type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFlat    DiscountType = "flat"
)

// TaxRate applies to the discounted subtotal.
var TaxRate = decimal.NewFromInt(10).Div(decimal.NewFromInt(100))

var hundred = decimal.NewFromInt(100)

// Discount is either a percentage of the subtotal or a flat amount.
type Discount struct {
	Type  DiscountType    `json:"type"`
	Value decimal.Decimal `json:"value"`
}

// Quote is the priced breakdown of a set of lines.
type Quote struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Subtotal sums price times quantity over lines.
func Subtotal(lines []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

// Price computes the quote for lines under d. A zero Discount means no discount.
// Flat discounts are capped at the subtotal; discount and tax are rounded to cents,
// and Total is their exact combination.
func Price(lines []Item, d Discount) (Quote, error) {
	if err := validateLines(lines); err != nil {
		return Quote{}, err
	}
	if d.Value.IsNegative() {
		return Quote{}, apperrors.Validation("discount", "discount must not be negative")
	}
	sub := Subtotal(lines)

	var disc decimal.Decimal
	switch d.Type {
	case "", DiscountPercent:
		if d.Value.GreaterThan(hundred) {
			return Quote{}, apperrors.Validation("discount", "percentage discount must be at most 100")
		}
		disc = sub.Mul(d.Value).Div(hundred)
	case DiscountFlat:
		disc = decimal.Min(d.Value, sub)
	default:
		return Quote{}, apperrors.Validationf("discount", "unknown discount type %q", d.Type)
	}
	disc = disc.Round(2)
	tax := sub.Sub(disc).Mul(TaxRate).Round(2)

	return Quote{
		Subtotal: sub,
		Discount: disc,
		Tax:      tax,
		Total:    sub.Sub(disc).Add(tax),
	}, nil
}

// checkQuote rejects a quote that does not add up for lines.
func checkQuote(lines []Item, q Quote) error {
	if !q.Subtotal.Equal(Subtotal(lines)) {
		return apperrors.Validationf("subtotal", "subtotal %s does not match line items %s", q.Subtotal, Subtotal(lines))
	}
	if q.Discount.IsNegative() || q.Discount.GreaterThan(q.Subtotal) {
		return apperrors.Validation("discount", "discount must be between 0 and the subtotal")
	}
	if q.Tax.IsNegative() {
		return apperrors.Validation("tax", "tax must not be negative")
	}
	if !q.Total.Equal(q.Subtotal.Sub(q.Discount).Add(q.Tax)) {
		return apperrors.Validation("total", "total must equal subtotal - discount + tax")
	}
	return nil
}

func validateLines(lines []Item) error {
	if len(lines) == 0 {
		return apperrors.Validation("items", "order must contain at least one item")
	}
	for _, l := range lines {
		if l.Name == "" {
			return apperrors.Validation("items", "line item name is required")
		}
		if l.Quantity < 1 {
			return apperrors.Validationf("items", "quantity for %s must be at least 1", l.Name)
		}
		if l.Price.IsNegative() {
			return apperrors.Validationf("items", "price for %s must not be negative", l.Name)
		}
	}
	return nil
}

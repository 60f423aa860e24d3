package pricing

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary amount in display units.
type Money = decimal.Decimal

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty       int
	UnitPrice Money
}

// Totals aggregates every figure derived from the cart and the summary inputs.
type Totals struct {
	TotalItems int
	Subtotal   Money
	Discount   Money
	Payment    Money
	FinalTotal Money
	Change     Money
}

// Compute calculates cart totals given the provided inputs.
func Compute(items []Item, discount, payment Money) Totals {
	subtotal := decimal.Zero
	count := 0
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		count += it.Qty
		subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	final := decimal.Max(subtotal.Sub(discount), decimal.Zero)
	change := decimal.Max(payment.Sub(final), decimal.Zero)
	return Totals{
		TotalItems: count,
		Subtotal:   subtotal,
		Discount:   discount,
		Payment:    payment,
		FinalTotal: final,
		Change:     change,
	}
}

// LineSubtotal returns price multiplied by quantity.
func LineSubtotal(price Money, qty int) Money {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

const (
	// MaxIntegerDigits bounds accepted amounts below 10^15. Larger inputs
	// read as zero, like a non-numeric field.
	MaxIntegerDigits = 15
	// amountScale is the fraction precision kept from parsed input.
	amountScale = 6
)

// ParseAmount reads the leading numeric prefix of raw. Anything unparseable or
// out of range is zero. Values are rounded to six fraction digits so later
// arithmetic stays cheap whatever exponent the input carried.
func ParseAmount(raw string) Money {
	match := numericPrefix.FindString(strings.TrimSpace(raw))
	if match == "" {
		return decimal.Zero
	}
	v, err := decimal.NewFromString(match)
	if err != nil || v.IsZero() {
		return decimal.Zero
	}
	magnitude := int64(v.NumDigits()) + int64(v.Exponent())
	switch {
	case magnitude > MaxIntegerDigits:
		return decimal.Zero
	case magnitude < -amountScale:
		return decimal.Zero
	}
	return v.Round(amountScale)
}

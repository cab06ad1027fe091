// Package calc computes line and invoice monetary totals.
//
// All functions are pure: they hold no state, never mutate their inputs and
// never format values for display. The same functions back the live preview,
// the persisted snapshot, document rendering and e-invoice submission, so a
// recomputation over the same items always yields identical results.
package calc

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is the number of fraction digits every monetary component is rounded
// to when it is produced. Rounding is half away from zero.
const Scale int32 = 2

// InputScale is the most fraction digits a quantity, unit price or rate may
// carry. Item columns store exactly this many, so a validated item reads back
// unchanged and recomputes to the same totals.
const InputScale int32 = 4

var (
	hundred = decimal.NewFromInt(100)

	// ErrInvalidInput reports a line item outside the calculation preconditions.
	ErrInvalidInput = errors.New("invalid_input")
)

// LineItem is one product or service entry of an invoice or sale.
type LineItem struct {
	Name         string          `json:"name,omitempty"`
	Description  string          `json:"description,omitempty"`
	ProductRef   string          `json:"product_ref,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
}

// LineItemTotals is derived from a LineItem and never stored on its own.
type LineItemTotals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

// InputError identifies the field that violated a precondition.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput.Error(), e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// Validate checks the Calculate preconditions: non-negative quantity and unit
// price, and tax and discount rates within [0,100]. Inputs must also fit
// InputScale.
func Validate(item LineItem) error {
	if item.Quantity.IsNegative() {
		return &InputError{Field: "quantity", Reason: "must not be negative"}
	}
	if item.UnitPrice.IsNegative() {
		return &InputError{Field: "unit_price", Reason: "must not be negative"}
	}
	if !inPercentRange(item.TaxRate) {
		return &InputError{Field: "tax_rate", Reason: "must be between 0 and 100"}
	}
	if !inPercentRange(item.DiscountRate) {
		return &InputError{Field: "discount_rate", Reason: "must be between 0 and 100"}
	}
	for _, f := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"quantity", item.Quantity},
		{"unit_price", item.UnitPrice},
		{"tax_rate", item.TaxRate},
		{"discount_rate", item.DiscountRate},
	} {
		if !f.value.Equal(f.value.Truncate(InputScale)) {
			return &InputError{Field: f.name, Reason: "must have at most 4 decimal places"}
		}
	}
	return nil
}

// ValidateAll validates every item and reports the first failure with its index.
func ValidateAll(items []LineItem) error {
	for i, item := range items {
		if err := Validate(item); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	return nil
}

// Calculate prices a single line. Discount applies to the pre-tax subtotal and
// tax applies to the discounted base. The result is only defined for items
// that pass Validate; Calculate itself never clamps.
func Calculate(item LineItem) LineItemTotals {
	subtotal := round(item.Quantity.Mul(item.UnitPrice))
	discount := round(subtotal.Mul(item.DiscountRate).Div(hundred))
	taxable := subtotal.Sub(discount)
	tax := round(taxable.Mul(item.TaxRate).Div(hundred))

	return LineItemTotals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		Total:          taxable.Add(tax),
	}
}

func round(value decimal.Decimal) decimal.Decimal {
	return value.Round(Scale)
}

func inPercentRange(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(hundred)
}

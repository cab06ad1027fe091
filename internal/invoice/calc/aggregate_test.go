package calc

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAggregateTwoItems(t *testing.T) {
	got := Aggregate([]LineItem{
		item("3", "10000", "19", "10"),
		item("1", "5000", "0", "0"),
	})

	assertAmount(t, "subtotal", got.Subtotal, "35000")
	assertAmount(t, "discount", got.TotalDiscount, "3000")
	assertAmount(t, "tax", got.TotalTax, "5130")
	assertAmount(t, "total", got.Total, "37130")

	if len(got.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got.Lines))
	}
	assertAmount(t, "line 2 total", got.Lines[1].Total, "5000")
}

func TestAggregateEmpty(t *testing.T) {
	for _, items := range [][]LineItem{nil, {}} {
		got := Aggregate(items)
		for name, value := range map[string]decimal.Decimal{
			"subtotal": got.Subtotal,
			"discount": got.TotalDiscount,
			"tax":      got.TotalTax,
			"total":    got.Total,
		} {
			if !value.IsZero() {
				t.Fatalf("expected zero %s, got %s", name, value)
			}
		}
		if len(got.Lines) != 0 {
			t.Fatalf("expected no lines, got %d", len(got.Lines))
		}
	}
}

func TestAggregateIsAdditive(t *testing.T) {
	items := []LineItem{
		item("1", "0.333", "19", "0"),
		item("1", "0.333", "19", "0"),
		item("1", "0.333", "19", "0"),
		item("12", "1499.5", "5", "12.5"),
		item("0.75", "88.88", "8", "3"),
	}

	got := Aggregate(items)

	sum := decimal.Zero
	for _, in := range items {
		sum = sum.Add(Calculate(in).Total)
	}
	if !got.Total.Equal(sum) {
		t.Fatalf("expected total %s, got %s", sum, got.Total)
	}
	if !got.Total.Equal(got.Subtotal.Sub(got.TotalDiscount).Add(got.TotalTax)) {
		t.Fatalf("invoice identity broken: %+v", got)
	}

	// Per-line rounding: three lines of 0.333 contribute 0.99, not 1.00.
	first := Aggregate(items[:3])
	assertAmount(t, "subtotal", first.Subtotal, "0.99")
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	items := []LineItem{item("3", "10000", "19", "10")}
	before := items[0]

	Aggregate(items)

	if !items[0].Quantity.Equal(before.Quantity) || !items[0].UnitPrice.Equal(before.UnitPrice) ||
		!items[0].TaxRate.Equal(before.TaxRate) || !items[0].DiscountRate.Equal(before.DiscountRate) {
		t.Fatalf("input item was mutated: %+v", items[0])
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	build := func() []LineItem {
		return []LineItem{
			item("3", "10000", "19", "10"),
			item("1.5", "3333.33", "19", "2.5"),
			item("1", "5000", "0", "0"),
		}
	}

	first, err := json.Marshal(Aggregate(build()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(Aggregate(build()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical output:\n%s\n%s", first, second)
	}
}

func TestSumAddsInvoiceTotals(t *testing.T) {
	a := Aggregate([]LineItem{item("3", "10000", "19", "10")})
	b := Aggregate([]LineItem{item("1", "5000", "0", "0")})

	got := Sum(a, b)
	want := Aggregate([]LineItem{item("3", "10000", "19", "10"), item("1", "5000", "0", "0")})
	if !got.Equal(want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if got.Lines != nil {
		t.Fatalf("expected no lines on summed totals")
	}
}

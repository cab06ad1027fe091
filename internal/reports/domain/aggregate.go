package domain

import (
	"sort"

	cashdomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/cashsession/domain"
	invoicedomain "github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/domain"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var salesStatuses = map[invoicedomain.InvoiceStatus]bool{
	invoicedomain.InvoiceStatusIssued:  true,
	invoicedomain.InvoiceStatusPaid:    true,
	invoicedomain.InvoiceStatusOverdue: true,
}

// AggregateSales buckets issued, paid and overdue invoices by issue month and
// currency. Drafts and cancelled invoices are not sales.
func AggregateSales(invoices []InvoiceSnapshot) []MonthlySales {
	sold := lo.Filter(invoices, func(inv InvoiceSnapshot, _ int) bool {
		return salesStatuses[inv.Status] && inv.IssuedAt != nil
	})
	byMonth := lo.GroupBy(sold, func(inv InvoiceSnapshot) monthCurrency {
		return monthCurrency{month: inv.IssuedAt.UTC().Format(MonthLayout), currency: inv.Currency}
	})

	keys := lo.Keys(byMonth)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].month != keys[j].month {
			return keys[i].month < keys[j].month
		}
		return keys[i].currency < keys[j].currency
	})
	out := make([]MonthlySales, 0, len(keys))
	for _, k := range keys {
		group := byMonth[k]
		paid := lo.Filter(group, func(inv InvoiceSnapshot, _ int) bool {
			return inv.Status == invoicedomain.InvoiceStatusPaid
		})
		total := sum(group, func(inv InvoiceSnapshot) decimal.Decimal { return inv.TotalAmount })
		collected := sum(paid, func(inv InvoiceSnapshot) decimal.Decimal { return inv.TotalAmount })
		out = append(out, MonthlySales{
			Month:       k.month,
			Currency:    k.currency,
			Invoices:    len(group),
			Subtotal:    sum(group, func(inv InvoiceSnapshot) decimal.Decimal { return inv.SubtotalAmount }),
			Discount:    sum(group, func(inv InvoiceSnapshot) decimal.Decimal { return inv.DiscountAmount }),
			Tax:         sum(group, func(inv InvoiceSnapshot) decimal.Decimal { return inv.TaxAmount }),
			Total:       total,
			Collected:   collected,
			Outstanding: total.Sub(collected),
		})
	}
	return out
}

// AggregateStatuses counts invoices per status in lifecycle order, with one
// row per currency inside a status.
func AggregateStatuses(invoices []InvoiceSnapshot) []StatusBreakdown {
	byStatus := lo.GroupBy(invoices, func(inv InvoiceSnapshot) invoicedomain.InvoiceStatus {
		return inv.Status
	})
	out := make([]StatusBreakdown, 0, len(byStatus))
	for _, status := range invoicedomain.Statuses {
		group, ok := byStatus[status]
		if !ok {
			continue
		}
		byCurrency := lo.GroupBy(group, func(inv InvoiceSnapshot) string { return inv.Currency })
		currencies := lo.Keys(byCurrency)
		sort.Strings(currencies)
		for _, currency := range currencies {
			rows := byCurrency[currency]
			out = append(out, StatusBreakdown{
				Status:   status,
				Currency: currency,
				Count:    len(rows),
				Total:    sum(rows, func(inv InvoiceSnapshot) decimal.Decimal { return inv.TotalAmount }),
			})
		}
	}
	return out
}

type monthCurrency struct {
	month    string
	currency string
}

// AggregateCashFlow buckets register movements by month. Sales count every
// payment method; income and expenses are the manual drawer movements.
func AggregateCashFlow(movements []cashdomain.CashMovement) []CashFlow {
	byMonth := lo.GroupBy(movements, func(m cashdomain.CashMovement) string {
		return m.OccurredAt.UTC().Format(MonthLayout)
	})

	months := lo.Keys(byMonth)
	sort.Strings(months)
	out := make([]CashFlow, 0, len(months))
	for _, month := range months {
		flow := CashFlow{
			Month:    month,
			Sales:    decimal.Zero,
			Income:   decimal.Zero,
			Expenses: decimal.Zero,
		}
		for _, m := range byMonth[month] {
			switch m.Kind {
			case cashdomain.MovementKindSale:
				flow.Sales = flow.Sales.Add(m.Amount)
			case cashdomain.MovementKindIncome:
				flow.Income = flow.Income.Add(m.Amount)
			case cashdomain.MovementKindExpense:
				flow.Expenses = flow.Expenses.Add(m.Amount)
			}
		}
		flow.Net = flow.Sales.Add(flow.Income).Sub(flow.Expenses)
		out = append(out, flow)
	}
	return out
}

func sum[T any](items []T, amount func(T) decimal.Decimal) decimal.Decimal {
	return lo.Reduce(items, func(acc decimal.Decimal, item T, _ int) decimal.Decimal {
		return acc.Add(amount(item))
	}, decimal.Zero)
}

// Package money renders monetary amounts for receipts and invoice documents.
package money

import (
	"strings"

	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter prints amounts using a locale's separators.
type Formatter struct {
	tag         language.Tag
	group       string
	decimalMark string
}

// NewFormatter returns a formatter for a BCP 47 locale such as "es-CO".
// Unparseable locales fall back to Colombian Spanish.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.MustParse("es-CO")
	}
	group, decimalMark := separators(message.NewPrinter(tag))
	return &Formatter{tag: tag, group: group, decimalMark: decimalMark}
}

// separators reads the locale's grouping and decimal marks off a sample
// number printed by x/text.
func separators(p *message.Printer) (group, decimalMark string) {
	sample := p.Sprint(number.Decimal(1234567.5, number.Scale(1)))
	one, two := strings.Index(sample, "1"), strings.Index(sample, "2")
	seven, five := strings.Index(sample, "7"), strings.LastIndex(sample, "5")
	if one < 0 || two <= one || seven < 0 || five <= seven {
		return ",", "."
	}
	return sample[one+1 : two], sample[seven+1 : five]
}

// Locale returns the resolved language tag.
func (f *Formatter) Locale() string {
	return f.tag.String()
}

// Number prints amount rounded to two decimals with locale grouping. The
// digits come from the decimal value itself, so large amounts keep full
// precision.
func (f *Formatter) Number(amount decimal.Decimal) string {
	fixed := amount.Round(calc.Scale).StringFixed(calc.Scale)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(f.group)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString(f.decimalMark)
		b.WriteString(frac)
	}
	return b.String()
}

// Format prints amount prefixed with its ISO 4217 code, e.g. "COP 32.130,00".
// Unknown codes are printed as given.
func (f *Formatter) Format(amount decimal.Decimal, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if unit, err := currency.ParseISO(code); err == nil {
		code = unit.String()
	}
	if code == "" {
		return f.Number(amount)
	}
	return code + " " + f.Number(amount)
}

// Percent prints a rate expressed in percent, e.g. "19%".
func (f *Formatter) Percent(rate decimal.Decimal) string {
	return rate.Round(calc.Scale).String() + "%"
}

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/money"
	"github.com/urfave/cli/v2"
)

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "price a list of line items without touching the database",
		ArgsUsage: "<items.json|->",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "currency", Usage: "ISO 4217 code, defaults to INVOICE_DEFAULT_CURRENCY"},
			&cli.StringFlag{Name: "locale", Usage: "BCP 47 locale, defaults to INVOICE_DEFAULT_LOCALE"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("expected exactly one items file", 1)
			}
			raw, err := readInput(c.Args().First(), c.App.Reader)
			if err != nil {
				return err
			}
			items, err := parseItems(raw)
			if err != nil {
				return err
			}

			cfg := config.Load()
			currency := c.String("currency")
			if currency == "" {
				currency = cfg.Invoicing.DefaultCurrency
			}
			locale := c.String("locale")
			if locale == "" {
				locale = cfg.Invoicing.DefaultLocale
			}
			return writePreview(c.App.Writer, items, money.NewFormatter(locale), currency)
		},
	}
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// parseItems accepts either a bare JSON array of items or {"items": [...]}.
func parseItems(raw []byte) ([]calc.LineItem, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("items file is empty")
	}

	var items []calc.LineItem
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
	} else {
		var doc struct {
			Items []calc.LineItem `json:"items"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}
		items = doc.Items
	}

	if err := calc.ValidateAll(items); err != nil {
		return nil, err
	}
	return items, nil
}

func writePreview(w io.Writer, items []calc.LineItem, f *money.Formatter, currency string) error {
	totals := calc.Aggregate(items)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tItem\tQty\tUnit price\tDiscount\tTax\tTotal\t")
	for i, item := range items {
		line := totals.Lines[i]
		name := item.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s (%s)\t%s\t\n",
			i+1,
			name,
			item.Quantity.String(),
			f.Format(item.UnitPrice, currency),
			f.Format(line.DiscountAmount, currency),
			f.Format(line.TaxAmount, currency),
			f.Percent(item.TaxRate),
			f.Format(line.Total, currency),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Subtotal:  %s\n", f.Format(totals.Subtotal, currency))
	fmt.Fprintf(w, "Discount: -%s\n", f.Format(totals.TotalDiscount, currency))
	fmt.Fprintf(w, "Tax:       %s\n", f.Format(totals.TotalTax, currency))
	fmt.Fprintf(w, "Total:     %s\n", f.Format(totals.Total, currency))
	return nil
}

package render

import (
	"bytes"
	"html/template"
	"regexp"
	"strings"
	"time"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="{{.Template.Locale}}">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.Invoice.Number}}</title>
  <style>
    :root {
      --primary: {{.Template.PrimaryColor}};
      --font: "{{.Template.FontFamily}}";
    }
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 32px;
      font-family: var(--font), "Helvetica Neue", Arial, sans-serif;
      color: #111827;
      background: #ffffff;
    }
    .invoice {
      max-width: 820px;
      margin: 0 auto;
    }
    .header {
      display: flex;
      justify-content: space-between;
      align-items: flex-start;
      border-bottom: 2px solid var(--primary);
      padding-bottom: 16px;
      margin-bottom: 24px;
    }
    .brand {
      display: flex;
      align-items: center;
      gap: 12px;
    }
    .brand img {
      max-height: 48px;
    }
    .meta {
      text-align: right;
      font-size: 14px;
    }
    .meta .label {
      color: #6b7280;
      text-transform: uppercase;
      letter-spacing: 0.04em;
      font-size: 11px;
    }
    .section {
      margin-bottom: 24px;
    }
    table {
      width: 100%;
      border-collapse: collapse;
      font-size: 14px;
    }
    th, td {
      padding: 10px;
      border-bottom: 1px solid #e5e7eb;
      text-align: left;
    }
    th {
      text-transform: uppercase;
      font-size: 11px;
      letter-spacing: 0.04em;
      color: #6b7280;
    }
    .num {
      text-align: right;
      white-space: nowrap;
    }
    .muted {
      color: #6b7280;
      font-size: 12px;
    }
    .summary {
      width: 320px;
      margin: 12px 0 0 auto;
    }
    .summary .grand td {
      font-weight: 700;
      font-size: 16px;
      border-bottom: 2px solid var(--primary);
    }
    .footer {
      border-top: 1px solid #e5e7eb;
      padding-top: 16px;
      font-size: 12px;
      color: #6b7280;
    }
  </style>
</head>
<body>
  <div class="invoice">
    <div class="header">
      <div class="brand">
        {{if .Template.LogoURL}}
        <img src="{{.Template.LogoURL}}" alt="Company logo" />
        {{end}}
        <div>
          <div><strong>{{.Template.CompanyName}}</strong></div>
          {{if .Template.CompanyTaxID}}<div>NIT {{.Template.CompanyTaxID}}</div>{{end}}
        </div>
      </div>
      <div class="meta">
        <div class="label">Invoice</div>
        <div><strong>{{.Invoice.Number}}</strong></div>
        <div>Status: {{.Invoice.Status}}</div>
        <div>Issued: {{formatDate .Invoice.IssuedAt}}</div>
        <div>Due: {{formatDate .Invoice.DueAt}}</div>
      </div>
    </div>

    <div class="section">
      <div class="label">Bill to</div>
      <div>{{.Customer.Name}}</div>
      {{if .Customer.TaxID}}<div>NIT/CC {{.Customer.TaxID}}</div>{{end}}
      {{if .Customer.Email}}<div>{{.Customer.Email}}</div>{{end}}
    </div>

    <div class="section">
      <table>
        <thead>
          <tr>
            <th>#</th>
            <th>Item</th>
            <th class="num">Qty</th>
            <th class="num">Unit price</th>
            <th class="num">Discount</th>
            <th class="num">Tax</th>
            <th class="num">Total</th>
          </tr>
        </thead>
        <tbody>
          {{range .Items}}
          <tr>
            <td>{{.Position}}</td>
            <td>{{.Name}}{{if .Description}}<div class="muted">{{.Description}}</div>{{end}}</td>
            <td class="num">{{.Quantity}}</td>
            <td class="num">{{.UnitPrice}}</td>
            <td class="num">{{.Discount}} <span class="muted">({{.DiscountRate}})</span></td>
            <td class="num">{{.Tax}} <span class="muted">({{.TaxRate}})</span></td>
            <td class="num">{{.Total}}</td>
          </tr>
          {{end}}
        </tbody>
      </table>
      <table class="summary">
        <tr><td>Subtotal</td><td class="num">{{.Invoice.Subtotal}}</td></tr>
        <tr><td>Discount</td><td class="num">-{{.Invoice.TotalDiscount}}</td></tr>
        <tr><td>Tax</td><td class="num">{{.Invoice.TotalTax}}</td></tr>
        <tr class="grand"><td>Total</td><td class="num">{{.Invoice.Total}}</td></tr>
      </table>
      {{if .Invoice.Notes}}<p class="muted">{{.Invoice.Notes}}</p>{{end}}
    </div>

    <div class="footer">
      {{if .Template.FooterNotes}}<div>{{.Template.FooterNotes}}</div>{{end}}
      {{if .Template.FooterLegal}}<div>{{.Template.FooterLegal}}</div>{{end}}
    </div>
  </div>
</body>
</html>
`

var (
	hexColorPattern  = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	fontFamilyFilter = regexp.MustCompile(`^[A-Za-z0-9 \-]+$`)
)

type HTMLRenderer struct {
	tpl *template.Template
}

func NewRenderer() Renderer {
	funcs := template.FuncMap{
		"formatDate": formatDate,
	}
	return &HTMLRenderer{
		tpl: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
	}
}

func (r *HTMLRenderer) RenderHTML(input RenderInput) (string, error) {
	input.Template.PrimaryColor = sanitizeColor(input.Template.PrimaryColor)
	input.Template.FontFamily = sanitizeFont(input.Template.FontFamily)
	if input.Template.CompanyName == "" {
		input.Template.CompanyName = "Factura de venta"
	}

	var buf bytes.Buffer
	if err := r.tpl.Execute(&buf, input); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatDate(value *time.Time) string {
	if value == nil || value.IsZero() {
		return "-"
	}
	return value.UTC().Format("2006-01-02")
}

func sanitizeColor(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "#111827"
	}
	if hexColorPattern.MatchString(trimmed) {
		return trimmed
	}
	return "#111827"
}

func sanitizeFont(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "Space Grotesk"
	}
	if fontFamilyFilter.MatchString(trimmed) {
		return trimmed
	}
	return "Space Grotesk"
}

// Package dataico submits electronic invoices to the Dataico API.
package dataico

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/config"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/einvoice/domain"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/observability/tracing"
)

const Provider = "dataico"

const maxErrorBody = 4 << 10

type Client struct {
	baseURL string
	token   string
	http    *http.Client
	now     func() time.Time
}

// New builds a client from the e-invoice configuration. The HTTP client is
// traced so submissions show up as client spans.
func New(cfg config.Config) *Client {
	timeout := cfg.EInvoice.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return NewWithClient(cfg.EInvoice.BaseURL, cfg.EInvoice.Token, tracing.WrapHTTPClient(&http.Client{Timeout: timeout}))
}

func NewWithClient(baseURL, token string, client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    client,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (c *Client) Provider() string { return Provider }

type invoiceRequest struct {
	Actions actions     `json:"actions"`
	Invoice invoiceBody `json:"invoice"`
}

type actions struct {
	SendDIAN  bool `json:"send_dian"`
	SendEmail bool `json:"send_email"`
}

type invoiceBody struct {
	Number        string   `json:"number"`
	Prefix        string   `json:"prefix,omitempty"`
	IssueDate     string   `json:"issue_date"`
	PaymentDate   string   `json:"payment_date,omitempty"`
	Currency      string   `json:"currency"`
	Notes         []string `json:"notes,omitempty"`
	Customer      customer `json:"customer"`
	Items         []item   `json:"items"`
	Taxes         []tax    `json:"taxes"`
	Subtotal      string   `json:"subtotal"`
	TotalDiscount string   `json:"total_discount"`
	TotalTax      string   `json:"total_tax"`
	Total         string   `json:"total"`
}

type customer struct {
	CompanyName string `json:"company_name"`
	Email       string `json:"email,omitempty"`
	PartyIDType string `json:"party_identification_type,omitempty"`
	PartyID     string `json:"party_identification,omitempty"`
}

type item struct {
	SKU          string `json:"sku,omitempty"`
	Description  string `json:"description"`
	Quantity     string `json:"quantity"`
	Price        string `json:"price"`
	DiscountRate string `json:"discount_rate"`
	TaxRate      string `json:"tax_rate"`
	TaxAmount    string `json:"tax_amount"`
	LineTotal    string `json:"line_total"`
}

type tax struct {
	Rate   string `json:"tax_rate"`
	Base   string `json:"taxable_amount"`
	Amount string `json:"tax_amount"`
}

type invoiceResponse struct {
	UUID   string `json:"uuid"`
	CUFE   string `json:"cufe"`
	Status string `json:"dian_status"`
	Number string `json:"number"`
}

type errorResponse struct {
	Errors []struct {
		Error string `json:"error"`
	} `json:"errors"`
	Message string `json:"message"`
}

func (c *Client) Submit(ctx context.Context, submission *domain.Submission) (*domain.Receipt, error) {
	body, err := json.Marshal(toRequest(submission))
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/invoices", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("auth-token", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.ProviderError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	var out invoiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrProviderUnavailable, err)
	}
	if out.UUID == "" {
		return nil, errors.New("einvoice_missing_external_id")
	}
	status := strings.ToLower(strings.TrimSpace(out.Status))
	if status == "" {
		status = "submitted"
	}
	return &domain.Receipt{
		Provider:    Provider,
		ExternalID:  out.UUID,
		Status:      status,
		Reference:   out.CUFE,
		SubmittedAt: c.now(),
	}, nil
}

func toRequest(s *domain.Submission) invoiceRequest {
	body := invoiceBody{
		Number:        s.Number,
		Prefix:        s.Prefix,
		IssueDate:     s.IssueDate.UTC().Format("02/01/2006"),
		Currency:      s.Currency,
		Subtotal:      s.Subtotal.StringFixed(calc.Scale),
		TotalDiscount: s.Discount.StringFixed(calc.Scale),
		TotalTax:      s.Tax.StringFixed(calc.Scale),
		Total:         s.Total.StringFixed(calc.Scale),
		Customer: customer{
			CompanyName: s.Customer.Name,
			Email:       s.Customer.Email,
			PartyID:     s.Customer.TaxID,
		},
		Items: make([]item, 0, len(s.Lines)),
		Taxes: make([]tax, 0, len(s.Taxes)),
	}
	if s.Customer.TaxID != "" {
		body.Customer.PartyIDType = "NIT"
	}
	if s.DueDate != nil {
		body.PaymentDate = s.DueDate.UTC().Format("02/01/2006")
	}
	if s.Notes != "" {
		body.Notes = []string{s.Notes}
	}
	for _, l := range s.Lines {
		description := l.Name
		if l.Description != "" {
			description = l.Name + " - " + l.Description
		}
		body.Items = append(body.Items, item{
			SKU:          l.ProductRef,
			Description:  description,
			Quantity:     l.Quantity.String(),
			Price:        l.UnitPrice.StringFixed(calc.Scale),
			DiscountRate: l.DiscountRate.String(),
			TaxRate:      l.TaxRate.String(),
			TaxAmount:    l.Tax.StringFixed(calc.Scale),
			LineTotal:    l.Total.StringFixed(calc.Scale),
		})
	}
	for _, t := range s.Taxes {
		body.Taxes = append(body.Taxes, tax{
			Rate:   t.Rate.String(),
			Base:   t.Base.StringFixed(calc.Scale),
			Amount: t.Amount.StringFixed(calc.Scale),
		})
	}
	return invoiceRequest{Actions: actions{SendDIAN: true, SendEmail: s.Customer.Email != ""}, Invoice: body}
}

func errorMessage(raw []byte) string {
	var parsed errorResponse
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if len(parsed.Errors) > 0 && parsed.Errors[0].Error != "" {
			return parsed.Errors[0].Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

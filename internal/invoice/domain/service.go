package domain

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
	"github.com/luisk202009/kuppel-dine-ease-sub001/pkg/db/pagination"
)

type CreateRequest struct {
	Prefix        string          `json:"prefix"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerTaxID string          `json:"customer_tax_id"`
	Currency      string          `json:"currency"`
	Notes         string          `json:"notes"`
	Items         []calc.LineItem `json:"items"`
}

type ListRequest struct {
	pagination.Pagination
	Status     string     `form:"status"`
	IssuedFrom *time.Time `form:"-"`
	IssuedTo   *time.Time `form:"-"`
}

type IssueRequest struct {
	DueAt *time.Time `json:"due_at"`
}

type ItemResponse struct {
	ID       string              `json:"id"`
	Position int                 `json:"position"`
	Item     calc.LineItem       `json:"item"`
	Totals   calc.LineItemTotals `json:"totals"`
}

type Response struct {
	ID            string             `json:"id"`
	OrgID         string             `json:"organization_id"`
	Prefix        string             `json:"prefix"`
	Number        string             `json:"number,omitempty"`
	Status        InvoiceStatus      `json:"status"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email,omitempty"`
	CustomerTaxID string             `json:"customer_tax_id,omitempty"`
	Currency      string             `json:"currency"`
	Notes         string             `json:"notes,omitempty"`
	Totals        calc.InvoiceTotals `json:"totals"`
	Items         []ItemResponse     `json:"items"`
	CanEditItems  bool               `json:"can_edit_items"`
	IssuedAt      *time.Time         `json:"issued_at,omitempty"`
	DueAt         *time.Time         `json:"due_at,omitempty"`
	PaidAt        *time.Time         `json:"paid_at,omitempty"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
	OverdueAt     *time.Time         `json:"overdue_at,omitempty"`
	CancelReason  string             `json:"cancel_reason,omitempty"`
	Metadata      map[string]any     `json:"metadata,omitempty"`
	Version       int64              `json:"version"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

type ListResponse struct {
	pagination.PageInfo
	Invoices []Response `json:"invoices"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	Preview(ctx context.Context, items []calc.LineItem) (calc.InvoiceTotals, error)

	AddItem(ctx context.Context, invoiceID string, item calc.LineItem) (*Response, error)
	UpdateItem(ctx context.Context, invoiceID, itemID string, item calc.LineItem) (*Response, error)
	RemoveItem(ctx context.Context, invoiceID, itemID string) (*Response, error)
	ReorderItems(ctx context.Context, invoiceID string, itemIDs []string) (*Response, error)

	Issue(ctx context.Context, invoiceID string, req IssueRequest) (*Response, error)
	Cancel(ctx context.Context, invoiceID string, reason string) (*Response, error)
	MarkPaid(ctx context.Context, invoiceID string) (*Response, error)
	MarkOverdue(ctx context.Context, invoiceID string) (*Response, error)

	// Load returns the invoice entity with its items for internal callers.
	Load(ctx context.Context, invoiceID string) (*Invoice, error)
	// ListPastDue returns issued invoices of any organization due before now.
	ListPastDue(ctx context.Context, now time.Time, limit int) ([]Invoice, error)
}

func ParseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

// NumberString formats the invoice number with its prefix, or "" for drafts.
func (inv *Invoice) NumberString() string {
	if inv.Number == nil {
		return ""
	}
	if inv.Prefix == "" {
		return *inv.Number
	}
	return inv.Prefix + "-" + *inv.Number
}

// ToResponse renders the invoice with totals recomputed from its items.
func ToResponse(inv *Invoice) *Response {
	totals := inv.Totals()
	items := make([]ItemResponse, 0, len(inv.Items))
	for i, item := range inv.Items {
		items = append(items, ItemResponse{
			ID:       item.ID.String(),
			Position: item.Position,
			Item:     item.LineItem(),
			Totals:   totals.Lines[i],
		})
	}
	totals.Lines = nil

	resp := &Response{
		ID:            inv.ID.String(),
		OrgID:         inv.OrgID.String(),
		Prefix:        inv.Prefix,
		Number:        inv.NumberString(),
		Status:        inv.Status,
		CustomerName:  inv.CustomerName,
		CustomerEmail: inv.CustomerEmail,
		CustomerTaxID: inv.CustomerTaxID,
		Currency:      inv.Currency,
		Notes:         inv.Notes,
		Totals:        totals,
		Items:         items,
		CanEditItems:  CanModifyItems(inv.Status),
		IssuedAt:      inv.IssuedAt,
		DueAt:         inv.DueAt,
		PaidAt:        inv.PaidAt,
		CancelledAt:   inv.CancelledAt,
		OverdueAt:     inv.OverdueAt,
		Metadata:      inv.Metadata,
		Version:       inv.Version,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
	if inv.CancelReason != nil {
		resp.CancelReason = *inv.CancelReason
	}
	return resp
}

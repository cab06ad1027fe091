package domain

import (
	"context"
	"time"

	"github.com/luisk202009/kuppel-dine-ease-sub001/internal/invoice/calc"
	"github.com/shopspring/decimal"
)

type OpenRequest struct {
	RegisterID    string          `json:"register_id"`
	Currency      string          `json:"currency"`
	OpeningAmount decimal.Decimal `json:"opening_amount"`
	OpenedBy      string          `json:"opened_by"`
	Notes         string          `json:"notes"`
}

type SaleRequest struct {
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Description   string          `json:"description"`
	Items         []calc.LineItem `json:"items"`
}

type MovementRequest struct {
	Kind        MovementKind    `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
}

type CloseRequest struct {
	CountedAmount decimal.Decimal `json:"counted_amount"`
	ClosedBy      string          `json:"closed_by"`
	Notes         string          `json:"notes"`
}

type MovementResponse struct {
	ID            string          `json:"id"`
	Kind          MovementKind    `json:"kind"`
	Direction     string          `json:"direction"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	Category      string          `json:"category,omitempty"`
	Description   string          `json:"description,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	Tax           decimal.Decimal `json:"tax"`
	Amount        decimal.Decimal `json:"amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type Response struct {
	ID         string             `json:"id"`
	RegisterID string             `json:"register_id"`
	Status     SessionStatus      `json:"status"`
	Currency   string             `json:"currency"`
	Summary    Summary            `json:"summary"`
	Counted    *decimal.Decimal   `json:"counted_amount,omitempty"`
	Variance   *Variance          `json:"variance,omitempty"`
	OpenedBy   string             `json:"opened_by,omitempty"`
	ClosedBy   string             `json:"closed_by,omitempty"`
	Notes      string             `json:"notes,omitempty"`
	OpenedAt   time.Time          `json:"opened_at"`
	ClosedAt   *time.Time         `json:"closed_at,omitempty"`
	Movements  []MovementResponse `json:"movements"`
}

type Service interface {
	Open(ctx context.Context, req OpenRequest) (*Response, error)
	RecordSale(ctx context.Context, sessionID string, req SaleRequest) (*MovementResponse, error)
	RecordMovement(ctx context.Context, sessionID string, req MovementRequest) (*MovementResponse, error)
	Close(ctx context.Context, sessionID string, req CloseRequest) (*Response, error)
	Get(ctx context.Context, sessionID string) (*Response, error)
	// MovementsBetween lists the organization's movements in [from, to).
	MovementsBetween(ctx context.Context, from, to time.Time) ([]CashMovement, error)
}

func ToMovementResponse(m CashMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID.String(),
		Kind:          m.Kind,
		Direction:     m.Direction,
		PaymentMethod: m.PaymentMethod,
		Category:      m.Category,
		Description:   m.Description,
		Subtotal:      m.SubtotalAmount,
		Discount:      m.DiscountAmount,
		Tax:           m.TaxAmount,
		Amount:        m.Amount,
		OccurredAt:    m.OccurredAt,
	}
}

func ToResponse(session *CashSession, movements []CashMovement) *Response {
	resp := &Response{
		ID:         session.ID.String(),
		RegisterID: session.RegisterID,
		Status:     session.Status,
		Currency:   session.Currency,
		Summary:    Summarize(session.OpeningAmount, movements),
		Counted:    session.CountedAmount,
		OpenedBy:   session.OpenedBy,
		ClosedBy:   session.ClosedBy,
		Notes:      session.Notes,
		OpenedAt:   session.OpenedAt,
		ClosedAt:   session.ClosedAt,
		Movements:  make([]MovementResponse, 0, len(movements)),
	}
	if session.Difference != nil && session.DifferencePercent != nil && session.Alert != nil {
		resp.Variance = &Variance{
			Difference: *session.Difference,
			Percent:    *session.DifferencePercent,
			Alert:      *session.Alert,
		}
	}
	for _, m := range movements {
		resp.Movements = append(resp.Movements, ToMovementResponse(m))
	}
	return resp
}

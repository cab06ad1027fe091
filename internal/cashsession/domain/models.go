package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type SessionStatus string

const (
	SessionStatusOpen   SessionStatus = "open"
	SessionStatusClosed SessionStatus = "closed"
)

// MovementKind classifies a register movement.
type MovementKind string

const (
	MovementKindSale    MovementKind = "sale"
	MovementKindIncome  MovementKind = "income"
	MovementKindExpense MovementKind = "expense"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return true
	}
	return false
}

// CashSession is one shift of a cash register, from opening float to the
// counted closing amount.
type CashSession struct {
	ID                snowflake.ID     `gorm:"primaryKey"`
	OrgID             snowflake.ID     `gorm:"not null;index"`
	RegisterID        string           `gorm:"type:text;not null;index"`
	Status            SessionStatus    `gorm:"type:text;not null;index;default:'open'"`
	Currency          string           `gorm:"type:text;not null"`
	OpeningAmount     decimal.Decimal  `gorm:"type:numeric(18,2);not null;default:0"`
	ExpectedAmount    *decimal.Decimal `gorm:"type:numeric(18,2)"`
	CountedAmount     *decimal.Decimal `gorm:"type:numeric(18,2)"`
	Difference        *decimal.Decimal `gorm:"type:numeric(18,2)"`
	DifferencePercent *decimal.Decimal `gorm:"type:numeric(9,2)"`
	Alert             *VarianceAlert   `gorm:"type:text"`
	OpenedBy          string           `gorm:"type:text"`
	ClosedBy          string           `gorm:"type:text"`
	Notes             string           `gorm:"type:text"`
	OpenedAt          time.Time        `gorm:"not null"`
	ClosedAt          *time.Time
	Version           int64     `gorm:"not null;default:1"`
	CreatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CashSession) TableName() string { return "cash_sessions" }

// CashMovement is an append-only register entry. Amount is always positive;
// Direction says whether money entered or left the register.
type CashMovement struct {
	ID             snowflake.ID    `gorm:"primaryKey"`
	OrgID          snowflake.ID    `gorm:"not null;index"`
	SessionID      snowflake.ID    `gorm:"not null;index"`
	Kind           MovementKind    `gorm:"type:text;not null"`
	Direction      string          `gorm:"type:text;not null"`
	PaymentMethod  PaymentMethod   `gorm:"type:text;not null"`
	Category       string          `gorm:"type:text"`
	Description    string          `gorm:"type:text"`
	SubtotalAmount decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	Amount         decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	OccurredAt     time.Time       `gorm:"not null;index"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CashMovement) TableName() string { return "cash_movements" }

const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Signed returns the amount with its drawer direction applied.
func (m CashMovement) Signed() decimal.Decimal {
	if m.Direction == DirectionOut {
		return m.Amount.Neg()
	}
	return m.Amount
}

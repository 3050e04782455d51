package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CreditKindCharge    = "charge"
	CreditKindRepayment = "repayment"
)

// CreditLedgerEntry is an immutable event in a customer's credit journal.
// Amount is signed: charges are positive, repayments negative. BalanceAfter is
// the customer balance immediately after this entry, so the customer's balance
// always equals the sum of their entry amounts.
// Entries are NEVER modified or deleted — corrections create inverse entries.
type CreditLedgerEntry struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Kind       string          `gorm:"type:varchar(20);not null"` // "charge" | "repayment"
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// SaleID links charge entries to the originating sale
	SaleID    *uuid.UUID `gorm:"type:uuid"`
	ActorID   *uuid.UUID `gorm:"type:uuid"`
	Note      string
	CreatedAt time.Time
}

func (CreditLedgerEntry) TableName() string { return "credit_ledger" }

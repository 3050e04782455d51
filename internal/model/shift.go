package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ShiftStatusOpen   = "open"
	ShiftStatusClosed = "closed"
)

const (
	VarianceNormal   = "normal"
	VarianceWarning  = "warning"
	VarianceCritical = "critical"
)

// Shift is one bounded work session for a staff member. Running totals are
// incremented in place as sales commit; closing freezes them and records the
// expected-vs-declared cash variance.
// At most one open shift per staff member at a time.
type Shift struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;index"`
	StaffID   uuid.UUID `gorm:"type:uuid;not null;index"`
	StaffName string    `gorm:"not null"`
	OpeningCash decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	ClosingCash *decimal.Decimal `gorm:"type:decimal(12,2)"`

	TotalSales  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CashSales   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CardSales   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CreditSales decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MobileSales decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	// Computed on close: ExpectedCash = OpeningCash + CashSales
	ExpectedCash *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Variance     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	VariancePct  *decimal.Decimal `gorm:"type:decimal(5,2)"`
	// VarianceLevel: "normal" | "warning" | "critical"
	VarianceLevel *string `gorm:"type:varchar(20)"`

	Status   string `gorm:"type:varchar(20);not null;default:'open'"`
	OpenedAt time.Time
	ClosedAt *time.Time
}

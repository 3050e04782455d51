package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ChannelWalkIn = "walk-in"
	ChannelMember = "member"
	ChannelStaff  = "staff"
)

const (
	RiskNormal = "normal"
	RiskWatch  = "watch"
	RiskHigh   = "high"
)

// Customer is the single customer aggregate for a store. Channel tags where the
// record originated ("walk-in" | "member" | "staff") instead of keeping a
// parallel staff-as-customer lookup path.
// Balance is a projection of the credit ledger; only the credit ledger writes it.
type Customer struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name    string    `gorm:"index;not null"`
	Phone   *string
	// CreditLimit 0 means unlimited
	CreditLimit decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Balance     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	RiskLevel   string          `gorm:"type:varchar(20);not null;default:'normal'"` // normal | watch | high
	Channel     string          `gorm:"type:varchar(20);not null;default:'walk-in'"`
	Active      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

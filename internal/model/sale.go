package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment methods accepted at checkout.
const (
	PayCash   = "cash"
	PayCard   = "card"
	PayCredit = "credit"
	PayMobile = "mobile"
)

// Sale statuses. A committed sale is immutable except for the bounded
// "pending" → "delivered" transition driven by the delivery workflow.
const (
	SaleStatusCompleted = "completed"
	SaleStatusPending   = "pending"
	SaleStatusDelivered = "delivered"
)

// Sale is one committed checkout.
type Sale struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TicketNo   int        `gorm:"uniqueIndex;not null"`
	StoreID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	ShiftID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	StaffID    uuid.UUID  `gorm:"type:uuid;not null"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Discount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Tax        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string `gorm:"type:varchar(20);not null"` // cash | card | credit | mobile
	PaymentStatus string `gorm:"type:varchar(20);not null"` // paid | on-credit
	Status        string `gorm:"type:varchar(20);not null;default:'completed'"`
	CreatedAt     time.Time

	Items    []SaleItem `gorm:"foreignKey:SaleID"`
	Customer *Customer  `gorm:"foreignKey:CustomerID"`
	Staff    *Staff     `gorm:"foreignKey:StaffID"`
}

// SaleItem is one line of a sale.
type SaleItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  int             `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

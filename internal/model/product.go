package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog item scoped to one store.
// Stock is never written directly — every change goes through the stock ledger
// so that each mutation leaves a matching InventoryLogEntry.
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"index;not null"`
	UnitPrice decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	UnitCost  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Stock     int              `gorm:"not null;default:0"` // invariant: stock >= 0
	MinStock  int              `gorm:"not null;default:5"`
	Unit      string           `gorm:"not null;default:'unit'"`
	Active    bool             `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

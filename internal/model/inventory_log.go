package model

import (
	"time"

	"github.com/google/uuid"
)

// Adjustment kinds recorded in the inventory log.
const (
	StockKindStockIn    = "stock-in"
	StockKindSale       = "sale"
	StockKindAdjustment = "adjustment"
)

// InventoryLogEntry records one stock change on a product.
// Entries are append-only — never modified or deleted. CurrentStock is the
// product stock immediately after applying Quantity, so for a given product
// each entry's CurrentStock equals the previous entry's plus its Quantity.
type InventoryLogEntry struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Kind         string    `gorm:"not null"` // "stock-in" | "sale" | "adjustment"
	Quantity     int       `gorm:"not null"` // signed: positive = in, negative = out
	CurrentStock int       `gorm:"not null"`
	Reason       string
	ActorID      *uuid.UUID `gorm:"type:uuid"`
	ActorName    string
	// ReferenceID links to the originating Sale for sale-kind entries
	ReferenceID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName overrides GORM's default pluralization (inventory_log_entries → inventory_log).
func (InventoryLogEntry) TableName() string { return "inventory_log" }

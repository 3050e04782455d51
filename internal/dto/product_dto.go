package dto

import "github.com/shopspring/decimal"

// ─── Filter ──────────────────────────────────────────────────────────────────

type ProductFilter struct {
	StoreID string `form:"store_id"`
	Name    string `form:"name"`
	Active  string `form:"active"` // "false" = archived, "all" = everything, default active
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	StoreID   string           `json:"store_id"   validate:"required,uuid"`
	Name      string           `json:"name"       validate:"required,min=2"`
	UnitPrice decimal.Decimal  `json:"unit_price" validate:"required"`
	UnitCost  *decimal.Decimal `json:"unit_cost"`
	Stock     int              `json:"stock"      validate:"min=0"`
	MinStock  int              `json:"min_stock"  validate:"min=0"`
	Unit      string           `json:"unit"`
}

type UpdateProductRequest struct {
	Name      string           `json:"name"       validate:"required,min=2"`
	UnitPrice decimal.Decimal  `json:"unit_price" validate:"required"`
	UnitCost  *decimal.Decimal `json:"unit_cost"`
	MinStock  int              `json:"min_stock"  validate:"min=0"`
	Unit      string           `json:"unit"`
}

// StockAdjustmentRequest drives a manual stock movement through the ledger.
type StockAdjustmentRequest struct {
	Quantity int    `json:"quantity" validate:"required"` // signed delta
	Kind     string `json:"kind"     validate:"required,oneof=stock-in adjustment"`
	Reason   string `json:"reason"   validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID        string           `json:"id"`
	StoreID   string           `json:"store_id"`
	Name      string           `json:"name"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	UnitCost  *decimal.Decimal `json:"unit_cost"`
	Stock     int              `json:"stock"`
	MinStock  int              `json:"min_stock"`
	Unit      string           `json:"unit"`
	Active    bool             `json:"active"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type StockAdjustmentResponse struct {
	Product  ProductResponse   `json:"product"`
	LogEntry InventoryLogEntry `json:"log_entry"`
}

type InventoryLogEntry struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	Kind         string `json:"kind"`
	Quantity     int    `json:"quantity"`
	CurrentStock int    `json:"current_stock"`
	Reason       string `json:"reason"`
	CreatedAt    string `json:"created_at"`
}

type InventoryLogListResponse struct {
	Data  []InventoryLogEntry `json:"data"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SaleFilter is bound from the query string of GET /v1/sales.
type SaleFilter struct {
	Date    string `form:"date"`                      // YYYY-MM-DD; empty = today
	Status  string `form:"status,default=completed"`  // completed | pending | delivered | all
	Method  string `form:"method"`                    // cash | card | credit | mobile
	ShiftID string `form:"shift_id"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
	// UnitPrice overrides the catalog price when positive (price negotiated at
	// the counter); zero means use the product's current price.
	UnitPrice decimal.Decimal `json:"unit_price" validate:"min=0"`
}

type SaleRequest struct {
	ShiftID       string            `json:"shift_id"       validate:"required,uuid"`
	StoreID       string            `json:"store_id"       validate:"required,uuid"`
	Items         []SaleItemRequest `json:"items"          validate:"required,min=1,dive"`
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=cash card credit mobile"`
	CustomerID    *string           `json:"customer_id"    validate:"omitempty,uuid"`
	Discount      decimal.Decimal   `json:"discount"       validate:"min=0"`
	Tax           decimal.Decimal   `json:"tax"            validate:"min=0"`
	// Delivery marks the sale as pending until the delivery workflow confirms it.
	Delivery bool `json:"delivery"`
}

type SaleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=delivered"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductID string          `json:"product_id"`
	Product   string          `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type SaleResponse struct {
	ID            string             `json:"id"`
	TicketNo      int                `json:"ticket_no"`
	ShiftID       string             `json:"shift_id"`
	StoreID       string             `json:"store_id"`
	Items         []SaleItemResponse `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Discount      decimal.Decimal    `json:"discount"`
	Tax           decimal.Decimal    `json:"tax"`
	Total         decimal.Decimal    `json:"total"`
	PaymentMethod string             `json:"payment_method"`
	PaymentStatus string             `json:"payment_status"`
	Status        string             `json:"status"`
	CustomerID    *string            `json:"customer_id"`
	CreatedAt     string             `json:"created_at"`
}

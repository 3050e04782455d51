package dto

import "github.com/shopspring/decimal"

// ─── Filter ──────────────────────────────────────────────────────────────────

type CustomerFilter struct {
	StoreID string `form:"store_id"`
	Name    string `form:"name"`
	Channel string `form:"channel"` // walk-in | member | staff
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateCustomerRequest struct {
	StoreID     string          `json:"store_id"     validate:"required,uuid"`
	Name        string          `json:"name"         validate:"required,min=2"`
	Phone       *string         `json:"phone"`
	CreditLimit decimal.Decimal `json:"credit_limit" validate:"min=0"` // 0 = unlimited
	Channel     string          `json:"channel"      validate:"omitempty,oneof=walk-in member staff"`
}

type RepaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Note   string          `json:"note"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type CustomerResponse struct {
	ID          string          `json:"id"`
	StoreID     string          `json:"store_id"`
	Name        string          `json:"name"`
	Phone       *string         `json:"phone"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
	Balance     decimal.Decimal `json:"balance"`
	RiskLevel   string          `json:"risk_level"`
	Channel     string          `json:"channel"`
}

type CustomerListResponse struct {
	Data  []CustomerResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type LedgerEntryResponse struct {
	ID           string          `json:"id"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	SaleID       *string         `json:"sale_id"`
	Note         string          `json:"note"`
	CreatedAt    string          `json:"created_at"`
}

// StatementResponse is the customer's credit account view: current projection
// plus the journal it derives from.
type StatementResponse struct {
	Customer CustomerResponse      `json:"customer"`
	Entries  []LedgerEntryResponse `json:"entries"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	Limit    int                   `json:"limit"`
}

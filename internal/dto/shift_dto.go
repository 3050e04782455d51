package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenShiftRequest struct {
	StoreID     string          `json:"store_id"     validate:"required,uuid"`
	OpeningCash decimal.Decimal `json:"opening_cash" validate:"min=0"`
}

type CloseShiftRequest struct {
	ShiftID     string          `json:"shift_id"     validate:"required,uuid"`
	ClosingCash decimal.Decimal `json:"closing_cash" validate:"min=0"`
	Notes       *string         `json:"notes"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// MethodTotals breaks the running totals down by payment method.
type MethodTotals struct {
	Cash   decimal.Decimal `json:"cash"`
	Card   decimal.Decimal `json:"card"`
	Credit decimal.Decimal `json:"credit"`
	Mobile decimal.Decimal `json:"mobile"`
	Total  decimal.Decimal `json:"total"`
}

type VarianceResponse struct {
	ExpectedCash decimal.Decimal `json:"expected_cash"`
	ClosingCash  decimal.Decimal `json:"closing_cash"`
	Amount       decimal.Decimal `json:"amount"`
	Percent      decimal.Decimal `json:"percent"`
	Level        string          `json:"level"` // normal | warning | critical
}

type ShiftResponse struct {
	ID          string            `json:"id"`
	StoreID     string            `json:"store_id"`
	StaffID     string            `json:"staff_id"`
	StaffName   string            `json:"staff_name"`
	OpeningCash decimal.Decimal   `json:"opening_cash"`
	Totals      MethodTotals      `json:"totals"`
	Variance    *VarianceResponse `json:"variance"`
	Status      string            `json:"status"`
	OpenedAt    string            `json:"opened_at"`
	ClosedAt    *string           `json:"closed_at"`
}

type ShiftListResponse struct {
	Data  []ShiftResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

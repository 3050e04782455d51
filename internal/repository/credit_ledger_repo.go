package repository

import (
	"context"

	"agartpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreditLedgerRepository interface {
	CreateTx(tx *gorm.DB, e *model.CreditLedgerEntry) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, page, limit int) ([]model.CreditLedgerEntry, int64, error)
	// SumByCustomer returns the sum of all entry amounts — the authoritative
	// balance the projection on Customer must agree with.
	SumByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
}

type creditLedgerRepo struct{ db *gorm.DB }

func NewCreditLedgerRepository(db *gorm.DB) CreditLedgerRepository {
	return &creditLedgerRepo{db: db}
}

func (r *creditLedgerRepo) CreateTx(tx *gorm.DB, e *model.CreditLedgerEntry) error {
	return tx.Create(e).Error
}

func (r *creditLedgerRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, page, limit int) ([]model.CreditLedgerEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.CreditLedgerEntry{}).Where("customer_id = ?", customerID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	offset := (page - 1) * limit

	var entries []model.CreditLedgerEntry
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, total, err
}

func (r *creditLedgerRepo) SumByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	err := r.db.WithContext(ctx).Model(&model.CreditLedgerEntry{}).
		Where("customer_id = ?", customerID).
		Select("SUM(amount)").Scan(&sum).Error
	if err != nil || !sum.Valid {
		return decimal.Zero, err
	}
	return sum.Decimal, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"agartpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ShiftRepository interface {
	Create(ctx context.Context, s *model.Shift) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shift, error)
	FindOpenByStaff(ctx context.Context, staffID uuid.UUID) (*model.Shift, error)
	Update(ctx context.Context, s *model.Shift) error
	ListClosed(ctx context.Context, storeID *uuid.UUID, page, limit int) ([]model.Shift, int64, error)
	// IncrementTotals adds amount to total_sales and to the bucket for method,
	// in place, guarded by the shift still being open. This is NOT a
	// read-modify-write: concurrent sales never lose updates.
	IncrementTotals(ctx context.Context, shiftID uuid.UUID, amount decimal.Decimal, method string) (bool, error)
	// CloseOpen freezes an open shift in one conditional update. Expected cash
	// and variance are computed by the database against the totals the row
	// holds at freeze time, so a sale racing the close is either counted in
	// full or rejected by the open guard — never silently dropped. Returns
	// false when the shift was not open (including a second close).
	CloseOpen(ctx context.Context, shiftID uuid.UUID, closingCash decimal.Decimal, closedAt time.Time) (bool, error)
	// SetVarianceAssessment records the percentage and level derived from the
	// frozen expected/variance columns. Only called on an already-closed row.
	SetVarianceAssessment(ctx context.Context, shiftID uuid.UUID, pct decimal.Decimal, level string) error
}

type shiftRepo struct{ db *gorm.DB }

func NewShiftRepository(db *gorm.DB) ShiftRepository { return &shiftRepo{db: db} }

func (r *shiftRepo) Create(ctx context.Context, s *model.Shift) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *shiftRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *shiftRepo) FindOpenByStaff(ctx context.Context, staffID uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := r.db.WithContext(ctx).Where("staff_id = ? AND status = 'open'", staffID).First(&s).Error
	return &s, err
}

func (r *shiftRepo) Update(ctx context.Context, s *model.Shift) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *shiftRepo) ListClosed(ctx context.Context, storeID *uuid.UUID, page, limit int) ([]model.Shift, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Shift{}).Where("status = 'closed'")
	if storeID != nil {
		q = q.Where("store_id = ?", *storeID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	var shifts []model.Shift
	err := q.Order("closed_at DESC").Offset(offset).Limit(limit).Find(&shifts).Error
	return shifts, total, err
}

// bucketColumn maps a payment method to its shift totals column.
func bucketColumn(method string) (string, error) {
	switch method {
	case model.PayCash:
		return "cash_sales", nil
	case model.PayCard:
		return "card_sales", nil
	case model.PayCredit:
		return "credit_sales", nil
	case model.PayMobile:
		return "mobile_sales", nil
	default:
		return "", fmt.Errorf("unknown payment method %q", method)
	}
}

func (r *shiftRepo) IncrementTotals(ctx context.Context, shiftID uuid.UUID, amount decimal.Decimal, method string) (bool, error) {
	col, err := bucketColumn(method)
	if err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).Model(&model.Shift{}).
		Where("id = ? AND status = 'open'", shiftID).
		Updates(map[string]interface{}{
			"total_sales": gorm.Expr("total_sales + ?", amount),
			col:           gorm.Expr(col+" + ?", amount),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *shiftRepo) CloseOpen(ctx context.Context, shiftID uuid.UUID, closingCash decimal.Decimal, closedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Shift{}).
		Where("id = ? AND status = 'open'", shiftID).
		Updates(map[string]interface{}{
			"status":        model.ShiftStatusClosed,
			"closing_cash":  closingCash,
			"closed_at":     closedAt,
			"expected_cash": gorm.Expr("opening_cash + cash_sales"),
			"variance":      gorm.Expr("? - (opening_cash + cash_sales)", closingCash),
		})
	return res.RowsAffected > 0, res.Error
}

func (r *shiftRepo) SetVarianceAssessment(ctx context.Context, shiftID uuid.UUID, pct decimal.Decimal, level string) error {
	return r.db.WithContext(ctx).Model(&model.Shift{}).
		Where("id = ?", shiftID).
		Updates(map[string]interface{}{
			"variance_pct":   pct,
			"variance_level": level,
		}).Error
}

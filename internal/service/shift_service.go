package service

import (
	"context"
	"errors"
	"fmt"

	"agartpos/internal/dto"
	"agartpos/internal/model"
	"agartpos/internal/repository"
	"agartpos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Variance thresholds, as a percentage of expected cash.
var (
	varianceWarnPct     = decimal.NewFromInt(1)
	varianceCriticalPct = decimal.NewFromInt(5)
)

// ShiftService enforces the one-open-shift-per-staff rule and keeps the
// per-payment-method running totals that a closing reconciliation is read
// against.
type ShiftService interface {
	Open(ctx context.Context, staffID uuid.UUID, staffName string, req dto.OpenShiftRequest) (*dto.ShiftResponse, error)
	Close(ctx context.Context, req dto.CloseShiftRequest) (*dto.ShiftResponse, error)
	// OnSaleCommitted rolls a committed sale into the shift's method bucket.
	OnSaleCommitted(ctx context.Context, shiftID uuid.UUID, amount decimal.Decimal, method string) error
	// RequireOpen fails unless the shift exists and is open.
	RequireOpen(ctx context.Context, shiftID uuid.UUID) error
	Active(ctx context.Context, staffID uuid.UUID) (*dto.ShiftResponse, error)
	Report(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftResponse, error)
	History(ctx context.Context, storeID *uuid.UUID, page, limit int) (*dto.ShiftListResponse, error)
}

type shiftService struct {
	repo       repository.ShiftRepository
	dispatcher *worker.Dispatcher
}

func NewShiftService(repo repository.ShiftRepository, dispatcher *worker.Dispatcher) ShiftService {
	return &shiftService{repo: repo, dispatcher: dispatcher}
}

func (s *shiftService) Open(ctx context.Context, staffID uuid.UUID, staffName string, req dto.OpenShiftRequest) (*dto.ShiftResponse, error) {
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, fmt.Errorf("invalid store_id: %w", err)
	}
	if req.OpeningCash.IsNegative() {
		return nil, fmt.Errorf("opening cash cannot be negative, got %s", req.OpeningCash)
	}

	if existing, err := s.repo.FindOpenByStaff(ctx, staffID); err == nil && existing != nil {
		return nil, &ShiftAlreadyOpenError{StaffName: existing.StaffName, ShiftID: existing.ID}
	}

	shift := &model.Shift{
		StoreID:     storeID,
		StaffID:     staffID,
		StaffName:   staffName,
		OpeningCash: req.OpeningCash,
		Status:      model.ShiftStatusOpen,
		OpenedAt:    timeNow(),
	}
	if err := s.repo.Create(ctx, shift); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race to a concurrent open: the partial unique index on
			// open shifts caught what the pre-check above could not.
			if existing, ferr := s.repo.FindOpenByStaff(ctx, staffID); ferr == nil && existing != nil {
				return nil, &ShiftAlreadyOpenError{StaffName: existing.StaffName, ShiftID: existing.ID}
			}
			return nil, &ShiftAlreadyOpenError{StaffName: staffName}
		}
		return nil, err
	}
	return shiftToResponse(shift), nil
}

func (s *shiftService) OnSaleCommitted(ctx context.Context, shiftID uuid.UUID, amount decimal.Decimal, method string) error {
	ok, err := s.repo.IncrementTotals(ctx, shiftID, amount, method)
	if err != nil {
		return err
	}
	if !ok {
		return &NoActiveShiftError{ShiftID: shiftID}
	}
	return nil
}

func (s *shiftService) RequireOpen(ctx context.Context, shiftID uuid.UUID) error {
	shift, err := s.repo.FindByID(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NoActiveShiftError{ShiftID: shiftID}
		}
		return err
	}
	if shift.Status != model.ShiftStatusOpen {
		return &NoActiveShiftError{ShiftID: shiftID}
	}
	return nil
}

// Close reconciles counted cash against expected cash and freezes the shift.
// Expected cash covers the cash bucket only: card, credit and mobile sales
// never touch the drawer.
func (s *shiftService) Close(ctx context.Context, req dto.CloseShiftRequest) (*dto.ShiftResponse, error) {
	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("invalid shift_id: %w", err)
	}
	if req.ClosingCash.IsNegative() {
		return nil, fmt.Errorf("closing cash cannot be negative, got %s", req.ClosingCash)
	}

	// Freezing is a single conditional update, not a read-then-write: the
	// database computes expected cash and variance from the totals the row
	// holds at that instant, and the open guard means a concurrent close or a
	// sale landing mid-close can never erase a committed increment.
	ok, err := s.repo.CloseOpen(ctx, shiftID, req.ClosingCash, timeNow())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &NoActiveShiftError{ShiftID: shiftID}
	}

	shift, err := s.repo.FindByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	expected := *shift.ExpectedCash
	variance := *shift.Variance
	pct := decimal.Zero
	if !expected.IsZero() {
		pct = variance.Div(expected).Mul(decimal.NewFromInt(100)).Abs()
	} else if !variance.IsZero() {
		// Nothing expected but cash counted: flag it at full severity.
		pct = decimal.NewFromInt(100)
	}
	level := classifyVariance(pct)
	shift.VariancePct = &pct
	shift.VarianceLevel = &level

	// The row is frozen now, so this second write cannot race anything.
	if err := s.repo.SetVarianceAssessment(ctx, shiftID, pct, level); err != nil {
		return nil, err
	}

	if level == model.VarianceCritical {
		log.Warn().
			Str("shift_id", shift.ID.String()).
			Str("staff", shift.StaffName).
			Str("variance", variance.String()).
			Str("pct", pct.String()).
			Msg("critical cash variance at shift close")
		if s.dispatcher != nil {
			_ = s.dispatcher.EnqueueVarianceAlert(ctx, worker.VarianceAlertPayload{
				ShiftID:   shift.ID.String(),
				StaffName: shift.StaffName,
				Expected:  expected.String(),
				Counted:   req.ClosingCash.String(),
				Variance:  variance.String(),
				Percent:   pct.String(),
			})
		}
	}

	return shiftToResponse(shift), nil
}

func (s *shiftService) Active(ctx context.Context, staffID uuid.UUID) (*dto.ShiftResponse, error) {
	shift, err := s.repo.FindOpenByStaff(ctx, staffID)
	if err != nil || shift == nil {
		return nil, errors.New("no open shift for staff")
	}
	return shiftToResponse(shift), nil
}

func (s *shiftService) Report(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftResponse, error) {
	shift, err := s.repo.FindByID(ctx, shiftID)
	if err != nil {
		return nil, &NoActiveShiftError{ShiftID: shiftID}
	}
	return shiftToResponse(shift), nil
}

func (s *shiftService) History(ctx context.Context, storeID *uuid.UUID, page, limit int) (*dto.ShiftListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	shifts, total, err := s.repo.ListClosed(ctx, storeID, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		items = append(items, *shiftToResponse(&shifts[i]))
	}
	return &dto.ShiftListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

func classifyVariance(pct decimal.Decimal) string {
	switch {
	case pct.LessThanOrEqual(varianceWarnPct):
		return model.VarianceNormal
	case pct.LessThanOrEqual(varianceCriticalPct):
		return model.VarianceWarning
	default:
		return model.VarianceCritical
	}
}

func shiftToResponse(v *model.Shift) *dto.ShiftResponse {
	resp := &dto.ShiftResponse{
		ID:          v.ID.String(),
		StoreID:     v.StoreID.String(),
		StaffID:     v.StaffID.String(),
		StaffName:   v.StaffName,
		OpeningCash: v.OpeningCash,
		Totals: dto.MethodTotals{
			Cash:   v.CashSales,
			Card:   v.CardSales,
			Credit: v.CreditSales,
			Mobile: v.MobileSales,
			Total:  v.TotalSales,
		},
		Status:   v.Status,
		OpenedAt: v.OpenedAt.Format("2006-01-02T15:04:05Z"),
	}
	if v.ClosedAt != nil {
		closedAt := v.ClosedAt.Format("2006-01-02T15:04:05Z")
		resp.ClosedAt = &closedAt
	}
	if v.Status == model.ShiftStatusClosed && v.Variance != nil {
		resp.Variance = &dto.VarianceResponse{
			ExpectedCash: *v.ExpectedCash,
			ClosingCash:  *v.ClosingCash,
			Amount:       *v.Variance,
			Percent:      *v.VariancePct,
			Level:        *v.VarianceLevel,
		}
	}
	return resp
}

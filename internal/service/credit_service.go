package service

import (
	"context"
	"errors"
	"fmt"

	"agartpos/internal/dto"
	"agartpos/internal/model"
	"agartpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreditService owns the customer credit journal and is the only code path
// allowed to move Customer.Balance. The ledger entry is always written before
// the balance projection is updated: after a crash between the two writes the
// journal is the authoritative record and a replay reconstructs the balance.
type CreditService interface {
	// PrecheckCharge validates a would-be charge without writing anything.
	PrecheckCharge(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) error
	// ChargeTx posts a charge inside a live transaction (sale commit path).
	ChargeTx(tx *gorm.DB, customerID uuid.UUID, amount decimal.Decimal, saleID, actorID *uuid.UUID, note string) (*model.CreditLedgerEntry, error)
	Repay(ctx context.Context, customerID uuid.UUID, req dto.RepaymentRequest, actorID *uuid.UUID) (*dto.StatementResponse, error)
	Statement(ctx context.Context, customerID uuid.UUID, page, limit int) (*dto.StatementResponse, error)
}

type creditService struct {
	customers repository.CustomerRepository
	ledger    repository.CreditLedgerRepository
}

func NewCreditService(customers repository.CustomerRepository, ledger repository.CreditLedgerRepository) CreditService {
	return &creditService{customers: customers, ledger: ledger}
}

func (s *creditService) PrecheckCharge(ctx context.Context, customerID uuid.UUID, amount decimal.Decimal) error {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return &CustomerNotFoundError{CustomerID: customerID}
	}
	newBalance := customer.Balance.Add(amount)
	if customer.CreditLimit.IsPositive() && newBalance.GreaterThan(customer.CreditLimit) {
		return &CreditLimitExceededError{
			CustomerName: customer.Name,
			Limit:        customer.CreditLimit,
			NewBalance:   newBalance,
		}
	}
	return nil
}

func (s *creditService) ChargeTx(tx *gorm.DB, customerID uuid.UUID, amount decimal.Decimal, saleID, actorID *uuid.UUID, note string) (*model.CreditLedgerEntry, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("charge amount must be positive, got %s", amount)
	}

	// Lock the row before computing the snapshot: a concurrent charge that
	// committed after a plain read would leave this entry's balance_after
	// pointing at a balance the customer never held.
	customer, err := s.customers.FindByIDForUpdateTx(tx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &CustomerNotFoundError{CustomerID: customerID}
		}
		return nil, err
	}

	newBalance := customer.Balance.Add(amount)
	if customer.CreditLimit.IsPositive() && newBalance.GreaterThan(customer.CreditLimit) {
		return nil, &CreditLimitExceededError{
			CustomerName: customer.Name,
			Limit:        customer.CreditLimit,
			NewBalance:   newBalance,
		}
	}

	// Journal first, projection second.
	entry := &model.CreditLedgerEntry{
		CustomerID:   customerID,
		Kind:         model.CreditKindCharge,
		Amount:       amount,
		BalanceAfter: newBalance,
		SaleID:       saleID,
		ActorID:      actorID,
		Note:         note,
	}
	if err := s.ledger.CreateTx(tx, entry); err != nil {
		return nil, err
	}

	// The conditional update re-checks the limit at write time, so a
	// concurrent charge that slipped past the read above still cannot blow
	// the limit — this tx rolls back instead.
	applied, err := s.customers.ApplyBalanceDeltaTx(tx, customerID, amount)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, &CreditLimitExceededError{
			CustomerName: customer.Name,
			Limit:        customer.CreditLimit,
			NewBalance:   newBalance,
		}
	}
	return entry, nil
}

// Repay applies a repayment, capped to the outstanding balance so the
// ledger-sum == balance invariant holds with no clamp gap. A repayment against
// a zero balance records nothing and returns the current statement.
func (s *creditService) Repay(ctx context.Context, customerID uuid.UUID, req dto.RepaymentRequest, actorID *uuid.UUID) (*dto.StatementResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("repayment amount must be positive, got %s", req.Amount)
	}

	txErr := runTx(ctx, s.customers.DB(), func(tx *gorm.DB) error {
		// Same locking discipline as the charge path: the capped amount and
		// the snapshot both derive from the balance read here.
		customer, err := s.customers.FindByIDForUpdateTx(tx, customerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &CustomerNotFoundError{CustomerID: customerID}
			}
			return err
		}

		applied := decimal.Min(req.Amount, customer.Balance)
		if applied.IsZero() {
			return nil
		}

		entry := &model.CreditLedgerEntry{
			CustomerID:   customerID,
			Kind:         model.CreditKindRepayment,
			Amount:       applied.Neg(),
			BalanceAfter: customer.Balance.Sub(applied),
			ActorID:      actorID,
			Note:         req.Note,
		}
		if err := s.ledger.CreateTx(tx, entry); err != nil {
			return err
		}

		ok, err := s.customers.ApplyBalanceDeltaTx(tx, customerID, applied.Neg())
		if err != nil {
			return err
		}
		if !ok {
			// A concurrent repayment already consumed the balance we read.
			return fmt.Errorf("repayment conflict for customer %s, retry", customerID)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.Statement(ctx, customerID, 1, 50)
}

func (s *creditService) Statement(ctx context.Context, customerID uuid.UUID, page, limit int) (*dto.StatementResponse, error) {
	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, &CustomerNotFoundError{CustomerID: customerID}
	}
	entries, total, err := s.ledger.ListByCustomer(ctx, customerID, page, limit)
	if err != nil {
		return nil, err
	}

	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		var saleID *string
		if e.SaleID != nil {
			v := e.SaleID.String()
			saleID = &v
		}
		items = append(items, dto.LedgerEntryResponse{
			ID:           e.ID.String(),
			Kind:         e.Kind,
			Amount:       e.Amount,
			BalanceAfter: e.BalanceAfter,
			SaleID:       saleID,
			Note:         e.Note,
			CreatedAt:    e.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return &dto.StatementResponse{
		Customer: customerToResponse(customer),
		Entries:  items,
		Total:    total,
		Page:     page,
		Limit:    limit,
	}, nil
}

func customerToResponse(c *model.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:          c.ID.String(),
		StoreID:     c.StoreID.String(),
		Name:        c.Name,
		Phone:       c.Phone,
		CreditLimit: c.CreditLimit,
		Balance:     c.Balance,
		RiskLevel:   c.RiskLevel,
		Channel:     c.Channel,
	}
}

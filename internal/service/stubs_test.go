package service_test

import (
	"context"
	"sync"
	"time"

	"agartpos/internal/dto"
	"agartpos/internal/model"
	"agartpos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Product / inventory stubs ────────────────────────────────────────────────

// stubProductRepo is an in-memory ProductRepository. AdjustStockTx holds a
// mutex so concurrency tests exercise the same lose-the-race semantics the
// conditional SQL update gives in production.
type stubProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) add(p *model.Product) *model.Product {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return p
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.add(p)
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	return r.FindByIDTx(nil, id)
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *stubProductRepo) Archive(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = false
	}
	return nil
}

func (r *stubProductRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	if p, ok := r.products[id]; ok {
		p.Active = true
	}
	return nil
}

func (r *stubProductRepo) LowStock(_ context.Context, _ uuid.UUID) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if p.Active && p.Stock <= p.MinStock {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProductRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubProductRepo) AdjustStockTx(_ *gorm.DB, id uuid.UUID, delta int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return false, nil
	}
	if delta < 0 && p.Stock < -delta {
		return false, nil
	}
	p.Stock += delta
	return true, nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

type stubInventoryLogRepo struct {
	mu      sync.Mutex
	entries []model.InventoryLogEntry
}

func (r *stubInventoryLogRepo) Create(_ context.Context, e *model.InventoryLogEntry) error {
	return r.CreateTx(nil, e)
}

func (r *stubInventoryLogRepo) CreateTx(_ *gorm.DB, e *model.InventoryLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *stubInventoryLogRepo) List(_ context.Context, filter repository.InventoryLogFilter) ([]model.InventoryLogEntry, int64, error) {
	var out []model.InventoryLogEntry
	for _, e := range r.entries {
		if filter.ProductID != nil && e.ProductID != *filter.ProductID {
			continue
		}
		if filter.Kind != "" && e.Kind != filter.Kind {
			continue
		}
		out = append(out, e)
	}
	return out, int64(len(out)), nil
}

var _ repository.InventoryLogRepository = (*stubInventoryLogRepo)(nil)

// ── Customer / credit stubs ──────────────────────────────────────────────────

type stubCustomerRepo struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*model.Customer
	// lockedReads counts FindByIDForUpdateTx calls so tests can check that
	// balance snapshots come from the locking read, not a plain one.
	lockedReads int
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) add(c *model.Customer) *model.Customer {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.customers[c.ID] = c
	return c
}

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	r.add(c)
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	return r.FindByIDTx(nil, id)
}

func (r *stubCustomerRepo) List(_ context.Context, _ dto.CustomerFilter) ([]model.Customer, int64, error) {
	var out []model.Customer
	for _, c := range r.customers {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *stubCustomerRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *stubCustomerRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	r.mu.Lock()
	r.lockedReads++
	r.mu.Unlock()
	return r.FindByIDTx(tx, id)
}

func (r *stubCustomerRepo) ApplyBalanceDeltaTx(_ *gorm.DB, id uuid.UUID, delta decimal.Decimal) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return false, nil
	}
	next := c.Balance.Add(delta)
	if delta.IsPositive() {
		if c.CreditLimit.IsPositive() && next.GreaterThan(c.CreditLimit) {
			return false, nil
		}
	} else if next.IsNegative() {
		return false, nil
	}
	c.Balance = next
	return true, nil
}

func (r *stubCustomerRepo) DB() *gorm.DB { return nil }

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

type stubCreditLedgerRepo struct {
	mu      sync.Mutex
	entries []model.CreditLedgerEntry
}

func (r *stubCreditLedgerRepo) CreateTx(_ *gorm.DB, e *model.CreditLedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.entries = append(r.entries, *e)
	return nil
}

func (r *stubCreditLedgerRepo) ListByCustomer(_ context.Context, customerID uuid.UUID, _, _ int) ([]model.CreditLedgerEntry, int64, error) {
	var out []model.CreditLedgerEntry
	for _, e := range r.entries {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubCreditLedgerRepo) SumByCustomer(_ context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range r.entries {
		if e.CustomerID == customerID {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

var _ repository.CreditLedgerRepository = (*stubCreditLedgerRepo)(nil)

// ── Sale / shift stubs ───────────────────────────────────────────────────────

type stubSaleRepo struct {
	mu        sync.Mutex
	sales     map[uuid.UUID]*model.Sale
	ticketSeq int
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.sales[s.ID] = s
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSaleRepo) List(_ context.Context, _ dto.SaleFilter) ([]model.Sale, int64, error) {
	var out []model.Sale
	for _, s := range r.sales {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *stubSaleRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	return true, nil
}

func (r *stubSaleRepo) NextTicketNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticketSeq++
	return r.ticketSeq, nil
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

type stubShiftRepo struct {
	mu     sync.Mutex
	shifts map[uuid.UUID]*model.Shift
}

func newStubShiftRepo() *stubShiftRepo {
	return &stubShiftRepo{shifts: make(map[uuid.UUID]*model.Shift)}
}

func (r *stubShiftRepo) add(s *model.Shift) *model.Shift {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.shifts[s.ID] = s
	return s
}

func (r *stubShiftRepo) Create(_ context.Context, s *model.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Mirrors the partial unique index on open shifts.
	if s.Status == model.ShiftStatusOpen {
		for _, existing := range r.shifts {
			if existing.StaffID == s.StaffID && existing.Status == model.ShiftStatusOpen {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	r.add(s)
	return nil
}

func (r *stubShiftRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shifts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubShiftRepo) FindOpenByStaff(_ context.Context, staffID uuid.UUID) (*model.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.shifts {
		if s.StaffID == staffID && s.Status == model.ShiftStatusOpen {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubShiftRepo) Update(_ context.Context, s *model.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shifts[s.ID] = s
	return nil
}

func (r *stubShiftRepo) ListClosed(_ context.Context, _ *uuid.UUID, _, _ int) ([]model.Shift, int64, error) {
	var out []model.Shift
	for _, s := range r.shifts {
		if s.Status == model.ShiftStatusClosed {
			out = append(out, *s)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubShiftRepo) IncrementTotals(_ context.Context, shiftID uuid.UUID, amount decimal.Decimal, method string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shifts[shiftID]
	if !ok || s.Status != model.ShiftStatusOpen {
		return false, nil
	}
	s.TotalSales = s.TotalSales.Add(amount)
	switch method {
	case model.PayCash:
		s.CashSales = s.CashSales.Add(amount)
	case model.PayCard:
		s.CardSales = s.CardSales.Add(amount)
	case model.PayCredit:
		s.CreditSales = s.CreditSales.Add(amount)
	case model.PayMobile:
		s.MobileSales = s.MobileSales.Add(amount)
	default:
		return false, nil
	}
	return true, nil
}

func (r *stubShiftRepo) CloseOpen(_ context.Context, shiftID uuid.UUID, closingCash decimal.Decimal, closedAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shifts[shiftID]
	if !ok || s.Status != model.ShiftStatusOpen {
		return false, nil
	}
	// Freeze against the totals held right now, like the conditional UPDATE.
	expected := s.OpeningCash.Add(s.CashSales)
	variance := closingCash.Sub(expected)
	cc := closingCash
	at := closedAt
	s.ClosingCash = &cc
	s.ExpectedCash = &expected
	s.Variance = &variance
	s.ClosedAt = &at
	s.Status = model.ShiftStatusClosed
	return true, nil
}

func (r *stubShiftRepo) SetVarianceAssessment(_ context.Context, shiftID uuid.UUID, pct decimal.Decimal, level string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.shifts[shiftID]; ok {
		p := pct
		l := level
		s.VariancePct = &p
		s.VarianceLevel = &l
	}
	return nil
}

var _ repository.ShiftRepository = (*stubShiftRepo)(nil)

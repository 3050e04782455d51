package repository

import (
	"context"

	"agartpos/internal/dto"
	"agartpos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, filter dto.CustomerFilter) ([]model.Customer, int64, error)
	Update(ctx context.Context, c *model.Customer) error

	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Customer, error)
	// FindByIDForUpdateTx reads the customer row under FOR UPDATE. Ledger
	// entries snapshot the balance at read time, so the row must stay locked
	// until the tx commits or two concurrent charges both record a
	// balance_after the committed balance never held.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Customer, error)
	// ApplyBalanceDeltaTx moves the balance projection in place. For positive
	// deltas the update is guarded by the credit limit (limit 0 = unlimited);
	// for negative deltas it is guarded by balance >= |delta| so the projection
	// can never go below zero. Returns false when the guard rejected the write.
	ApplyBalanceDeltaTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) (bool, error)

	DB() *gorm.DB
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *customerRepo) List(ctx context.Context, filter dto.CustomerFilter) ([]model.Customer, int64, error) {
	var customers []model.Customer
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Customer{}).Where("active = true")
	if filter.StoreID != "" {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Channel != "" {
		q = q.Where("channel = ?", filter.Channel)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&customers).Error
	return customers, total, err
}

func (r *customerRepo) Update(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *customerRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := tx.First(&c, id).Error
	return &c, err
}

func (r *customerRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error
	return &c, err
}

func (r *customerRepo) ApplyBalanceDeltaTx(tx *gorm.DB, id uuid.UUID, delta decimal.Decimal) (bool, error) {
	q := tx.Model(&model.Customer{}).Where("id = ?", id)
	if delta.IsPositive() {
		q = q.Where("credit_limit = 0 OR balance + ? <= credit_limit", delta)
	} else {
		q = q.Where("balance >= ?", delta.Neg())
	}
	res := q.Update("balance", gorm.Expr("balance + ?", delta))
	return res.RowsAffected > 0, res.Error
}

func (r *customerRepo) DB() *gorm.DB { return r.db }

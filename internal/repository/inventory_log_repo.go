package repository

import (
	"context"

	"agartpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryLogFilter defines filters for listing inventory log entries.
// ProductID is parsed by the handler, not bound from the query string.
type InventoryLogFilter struct {
	ProductID *uuid.UUID `form:"-"`
	Kind      string     `form:"kind"`
	Page      int        `form:"page,default=1"`
	Limit     int        `form:"limit,default=100"`
}

type InventoryLogRepository interface {
	Create(ctx context.Context, e *model.InventoryLogEntry) error
	CreateTx(tx *gorm.DB, e *model.InventoryLogEntry) error
	List(ctx context.Context, filter InventoryLogFilter) ([]model.InventoryLogEntry, int64, error)
}

type inventoryLogRepo struct{ db *gorm.DB }

func NewInventoryLogRepository(db *gorm.DB) InventoryLogRepository {
	return &inventoryLogRepo{db: db}
}

func (r *inventoryLogRepo) Create(ctx context.Context, e *model.InventoryLogEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *inventoryLogRepo) CreateTx(tx *gorm.DB, e *model.InventoryLogEntry) error {
	return tx.Create(e).Error
}

func (r *inventoryLogRepo) List(ctx context.Context, filter InventoryLogFilter) ([]model.InventoryLogEntry, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryLogEntry{}).Preload("Product")
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", filter.Kind)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var entries []model.InventoryLogEntry
	err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, total, err
}

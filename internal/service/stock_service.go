package service

import (
	"context"
	"errors"

	"agartpos/internal/dto"
	"agartpos/internal/infra"
	"agartpos/internal/model"
	"agartpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockService is the only code path allowed to mutate Product.Stock.
// Every change applies a signed delta and appends one InventoryLogEntry whose
// CurrentStock snapshots the stock after the delta — both inside one
// transaction, so no observer ever sees one without the other.
type StockService interface {
	ApplyAdjustment(ctx context.Context, productID uuid.UUID, req dto.StockAdjustmentRequest, actorID *uuid.UUID) (*dto.StockAdjustmentResponse, error)
	// ApplyAdjustmentTx is called inside a sale transaction — requires the live tx.
	ApplyAdjustmentTx(tx *gorm.DB, productID uuid.UUID, delta int, kind, reason string, actorID, referenceID *uuid.UUID) (*model.Product, *model.InventoryLogEntry, error)
	ListMovements(ctx context.Context, filter repository.InventoryLogFilter) (*dto.InventoryLogListResponse, error)
}

type stockService struct {
	products repository.ProductRepository
	logRepo  repository.InventoryLogRepository
	cache    *infra.ProductCache
}

func NewStockService(products repository.ProductRepository, logRepo repository.InventoryLogRepository, cache *infra.ProductCache) StockService {
	return &stockService{products: products, logRepo: logRepo, cache: cache}
}

func (s *stockService) ApplyAdjustment(ctx context.Context, productID uuid.UUID, req dto.StockAdjustmentRequest, actorID *uuid.UUID) (*dto.StockAdjustmentResponse, error) {
	var (
		product *model.Product
		entry   *model.InventoryLogEntry
	)
	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		var err error
		product, entry, err = s.ApplyAdjustmentTx(tx, productID, req.Quantity, req.Kind, req.Reason, actorID, nil)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	// The mutation committed — drop the cached read so the staleness window
	// ends with this request.
	if s.cache != nil {
		s.cache.Invalidate(ctx, productID)
	}

	return &dto.StockAdjustmentResponse{
		Product:  productToResponse(product),
		LogEntry: logEntryToResponse(entry),
	}, nil
}

func (s *stockService) ApplyAdjustmentTx(tx *gorm.DB, productID uuid.UUID, delta int, kind, reason string, actorID, referenceID *uuid.UUID) (*model.Product, *model.InventoryLogEntry, error) {
	product, err := s.products.FindByIDTx(tx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &ProductNotFoundError{ProductID: productID}
		}
		return nil, nil, err
	}

	// The conditional update is the correctness guard; the read above only
	// supplies the numbers for the error message. Stock never goes negative,
	// regardless of kind — manual corrections included.
	applied, err := s.products.AdjustStockTx(tx, productID, delta)
	if err != nil {
		return nil, nil, err
	}
	if !applied {
		return nil, nil, &InsufficientStockError{
			ProductName: product.Name,
			Available:   product.Stock,
			Requested:   -delta,
		}
	}

	// Re-read inside the tx for the post-delta snapshot.
	product, err = s.products.FindByIDTx(tx, productID)
	if err != nil {
		return nil, nil, err
	}

	entry := &model.InventoryLogEntry{
		ProductID:    productID,
		Kind:         kind,
		Quantity:     delta,
		CurrentStock: product.Stock,
		Reason:       reason,
		ActorID:      actorID,
		ReferenceID:  referenceID,
	}
	if err := s.logRepo.CreateTx(tx, entry); err != nil {
		return nil, nil, err
	}
	return product, entry, nil
}

func (s *stockService) ListMovements(ctx context.Context, filter repository.InventoryLogFilter) (*dto.InventoryLogListResponse, error) {
	entries, total, err := s.logRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InventoryLogEntry, 0, len(entries))
	for i := range entries {
		items = append(items, logEntryToResponse(&entries[i]))
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 100
	}
	return &dto.InventoryLogListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

func logEntryToResponse(e *model.InventoryLogEntry) dto.InventoryLogEntry {
	return dto.InventoryLogEntry{
		ID:           e.ID.String(),
		ProductID:    e.ProductID.String(),
		Kind:         e.Kind,
		Quantity:     e.Quantity,
		CurrentStock: e.CurrentStock,
		Reason:       e.Reason,
		CreatedAt:    e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

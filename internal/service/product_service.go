package service

import (
	"context"
	"errors"
	"fmt"

	"agartpos/internal/dto"
	"agartpos/internal/infra"
	"agartpos/internal/model"
	"agartpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ProductService owns the catalog. Stock is deliberately absent from its write
// surface: every stock mutation goes through StockService so it lands in the
// movement log.
type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Archive(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
	LowStock(ctx context.Context, storeID uuid.UUID) ([]dto.ProductResponse, error)
}

type productService struct {
	repo  repository.ProductRepository
	cache *infra.ProductCache
}

func NewProductService(repo repository.ProductRepository, cache *infra.ProductCache) ProductService {
	return &productService{repo: repo, cache: cache}
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, fmt.Errorf("invalid store_id: %w", err)
	}
	if req.UnitPrice.IsNegative() {
		return nil, errors.New("unit price cannot be negative")
	}

	p := &model.Product{
		StoreID:   storeID,
		Name:      req.Name,
		UnitPrice: req.UnitPrice,
		UnitCost:  req.UnitCost,
		Stock:     req.Stock,
		MinStock:  req.MinStock,
		Unit:      req.Unit,
		Active:    true,
	}
	if p.Unit == "" {
		p.Unit = "unit"
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := productToResponse(p)
	return &resp, nil
}

// Get serves reads through the cache. A miss (or an unavailable cache) falls
// through to Postgres and repopulates; writes invalidate, so the worst case is
// one TTL of staleness on a node that missed the invalidation.
func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, id); ok {
			return cached, nil
		}
	}

	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, &ProductNotFoundError{ProductID: id}
	}
	resp := productToResponse(p)
	if s.cache != nil {
		s.cache.Set(ctx, id, &resp)
	}
	return &resp, nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ProductNotFoundError{ProductID: id}
		}
		return nil, err
	}
	if req.UnitPrice.IsNegative() {
		return nil, errors.New("unit price cannot be negative")
	}

	p.Name = req.Name
	p.UnitPrice = req.UnitPrice
	p.UnitCost = req.UnitCost
	p.MinStock = req.MinStock
	if req.Unit != "" {
		p.Unit = req.Unit
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Archive(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return &ProductNotFoundError{ProductID: id}
	}
	if err := s.repo.Archive(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	return nil
}

func (s *productService) Reactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return &ProductNotFoundError{ProductID: id}
	}
	if err := s.repo.Reactivate(ctx, id); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
	return nil
}

func (s *productService) LowStock(ctx context.Context, storeID uuid.UUID) ([]dto.ProductResponse, error) {
	products, err := s.repo.LowStock(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if len(products) > 0 {
		log.Info().Int("count", len(products)).Str("store_id", storeID.String()).Msg("products at or below minimum stock")
	}
	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, productToResponse(&products[i]))
	}
	return items, nil
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:        p.ID.String(),
		StoreID:   p.StoreID.String(),
		Name:      p.Name,
		UnitPrice: p.UnitPrice,
		UnitCost:  p.UnitCost,
		Stock:     p.Stock,
		MinStock:  p.MinStock,
		Unit:      p.Unit,
		Active:    p.Active,
	}
}

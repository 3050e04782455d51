package service

import (
	"context"
	"errors"
	"fmt"

	"agartpos/internal/dto"
	"agartpos/internal/infra"
	"agartpos/internal/model"
	"agartpos/internal/repository"
	"agartpos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleService coordinates one checkout. Per call the flow is a short state
// machine: validate stock → validate credit → atomic commit (stock deltas +
// credit charge + sale row) → notify the open shift. Any validation failure
// aborts with zero persisted side effects; a failure inside the commit phase
// rolls the whole transaction back.
type SaleService interface {
	ProcessSale(ctx context.Context, staffID uuid.UUID, req dto.SaleRequest) (*dto.SaleResponse, error)
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) error
}

type saleService struct {
	repo       repository.SaleRepository
	products   repository.ProductRepository
	stock      StockService
	credit     CreditService
	shifts     ShiftService
	dispatcher *worker.Dispatcher
	cache      *infra.ProductCache
}

func NewSaleService(
	repo repository.SaleRepository,
	products repository.ProductRepository,
	stock StockService,
	credit CreditService,
	shifts ShiftService,
	dispatcher *worker.Dispatcher,
	cache *infra.ProductCache,
) SaleService {
	return &saleService{
		repo:       repo,
		products:   products,
		stock:      stock,
		credit:     credit,
		shifts:     shifts,
		dispatcher: dispatcher,
		cache:      cache,
	}
}

func (s *saleService) ProcessSale(ctx context.Context, staffID uuid.UUID, req dto.SaleRequest) (*dto.SaleResponse, error) {
	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		return nil, fmt.Errorf("invalid shift_id: %w", err)
	}
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, fmt.Errorf("invalid store_id: %w", err)
	}

	// 1. The caller's shift must be open before anything else.
	if err := s.shifts.RequireOpen(ctx, shiftID); err != nil {
		return nil, err
	}

	// 2. Resolve products and pre-check stock (outside the tx — nothing has
	// been written yet, so any rejection here has zero side effects).
	type resolvedItem struct {
		productID uuid.UUID
		name      string
		price     decimal.Decimal
		quantity  int
		lineTotal decimal.Decimal
	}

	var resolved []resolvedItem
	subtotal := decimal.Zero

	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("invalid product_id: %w", err)
		}
		p, err := s.products.FindByID(ctx, pid)
		if err != nil {
			return nil, &ProductNotFoundError{ProductID: pid}
		}
		if !p.Active {
			return nil, fmt.Errorf("product %q is archived and cannot be sold", p.Name)
		}
		if p.Stock < item.Quantity {
			return nil, &InsufficientStockError{
				ProductName: p.Name,
				Available:   p.Stock,
				Requested:   item.Quantity,
			}
		}
		price := p.UnitPrice
		if item.UnitPrice.IsPositive() {
			price = item.UnitPrice
		}
		lineTotal := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		resolved = append(resolved, resolvedItem{
			productID: pid,
			name:      p.Name,
			price:     price,
			quantity:  item.Quantity,
			lineTotal: lineTotal,
		})
	}

	if req.Discount.GreaterThan(subtotal) {
		return nil, fmt.Errorf("discount %s exceeds subtotal %s", req.Discount, subtotal)
	}
	total := subtotal.Sub(req.Discount).Add(req.Tax)

	// 3. Pre-check credit (still nothing written).
	var customerID *uuid.UUID
	if req.CustomerID != nil {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("invalid customer_id: %w", err)
		}
		customerID = &cid
	}
	if req.PaymentMethod == model.PayCredit {
		if customerID == nil {
			return nil, &CustomerRequiredError{}
		}
		if err := s.credit.PrecheckCharge(ctx, *customerID, total); err != nil {
			return nil, err
		}
	}

	status := model.SaleStatusCompleted
	if req.Delivery {
		status = model.SaleStatusPending
	}
	paymentStatus := "paid"
	if req.PaymentMethod == model.PayCredit {
		paymentStatus = "on-credit"
	}

	// 4. Atomic commit: sale row, conditional stock deltas with their log
	// entries, and the credit charge either all land or none do. The
	// conditional updates inside re-check what the pre-flight checked, so a
	// concurrent sale that won the race makes this one roll back cleanly.
	var sale model.Sale
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ticketNo, err := s.repo.NextTicketNumber(ctx, tx)
		if err != nil {
			return err
		}

		sale = model.Sale{
			TicketNo:      ticketNo,
			StoreID:       storeID,
			ShiftID:       shiftID,
			StaffID:       staffID,
			CustomerID:    customerID,
			Subtotal:      subtotal,
			Discount:      req.Discount,
			Tax:           req.Tax,
			Total:         total,
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: paymentStatus,
			Status:        status,
		}
		for _, r := range resolved {
			sale.Items = append(sale.Items, model.SaleItem{
				ProductID: r.productID,
				Quantity:  r.quantity,
				UnitPrice: r.price,
				LineTotal: r.lineTotal,
			})
		}
		if err := s.repo.Create(ctx, tx, &sale); err != nil {
			return err
		}

		saleRef := sale.ID
		for _, r := range resolved {
			reason := fmt.Sprintf("Sale #%d", ticketNo)
			if _, _, err := s.stock.ApplyAdjustmentTx(tx, r.productID, -r.quantity, model.StockKindSale, reason, &staffID, &saleRef); err != nil {
				return err
			}
		}

		if req.PaymentMethod == model.PayCredit {
			note := fmt.Sprintf("Sale #%d", ticketNo)
			if _, err := s.credit.ChargeTx(tx, *customerID, total, &saleRef, &staffID, note); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// 5. The sale is final. Rolling it into the shift totals is best-effort:
	// a failed increment is logged and repaired asynchronously, never
	// propagated — losing a receipt is worse than a temporarily imprecise
	// shift summary.
	if err := s.shifts.OnSaleCommitted(ctx, shiftID, total, req.PaymentMethod); err != nil {
		log.Error().
			Str("sale_id", sale.ID.String()).
			Str("shift_id", shiftID.String()).
			Str("total", total.String()).
			Err(err).
			Msg("shift totals increment failed after committed sale — enqueueing repair")
		if s.dispatcher != nil {
			_ = s.dispatcher.EnqueueShiftRepair(ctx, worker.ShiftRepairPayload{
				ShiftID: shiftID.String(),
				SaleID:  sale.ID.String(),
				Amount:  total.String(),
				Method:  req.PaymentMethod,
			})
		}
	}

	if s.cache != nil {
		for _, r := range resolved {
			s.cache.Invalidate(ctx, r.productID)
		}
	}

	resp := saleToResponse(&sale)
	for i, r := range resolved {
		resp.Items[i].Product = r.name
	}
	return resp, nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("sale not found")
	}
	return saleToResponse(sale), nil
}

func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Status == "" {
		filter.Status = model.SaleStatusCompleted
	}
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// MarkDelivered performs the single permitted post-commit transition.
func (s *saleService) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.UpdateStatus(ctx, id, model.SaleStatusPending, model.SaleStatusDelivered)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("sale is not pending delivery")
	}
	return nil
}

func saleToResponse(v *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(v.Items))
	for _, item := range v.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		items = append(items, dto.SaleItemResponse{
			ProductID: item.ProductID.String(),
			Product:   name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	var customerID *string
	if v.CustomerID != nil {
		id := v.CustomerID.String()
		customerID = &id
	}
	return &dto.SaleResponse{
		ID:            v.ID.String(),
		TicketNo:      v.TicketNo,
		ShiftID:       v.ShiftID.String(),
		StoreID:       v.StoreID.String(),
		Items:         items,
		Subtotal:      v.Subtotal,
		Discount:      v.Discount,
		Tax:           v.Tax,
		Total:         v.Total,
		PaymentMethod: v.PaymentMethod,
		PaymentStatus: v.PaymentStatus,
		Status:        v.Status,
		CustomerID:    customerID,
		CreatedAt:     v.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

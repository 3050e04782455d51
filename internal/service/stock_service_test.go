package service_test

import (
	"context"
	"sync"
	"testing"

	"agartpos/internal/dto"
	"agartpos/internal/model"
	"agartpos/internal/repository"
	"agartpos/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStockFixture() (*stubProductRepo, *stubInventoryLogRepo, service.StockService) {
	products := newStubProductRepo()
	logs := &stubInventoryLogRepo{}
	return products, logs, service.NewStockService(products, logs, nil)
}

func TestStockAdjustmentAppliesDeltaAndLogsSnapshot(t *testing.T) {
	products, logs, svc := newStockFixture()
	p := products.add(&model.Product{
		Name:      "Rice 5kg",
		UnitPrice: decimal.NewFromInt(12),
		Stock:     10,
		Active:    true,
	})

	resp, err := svc.ApplyAdjustment(context.Background(), p.ID, dto.StockAdjustmentRequest{
		Quantity: 15,
		Kind:     model.StockKindStockIn,
		Reason:   "weekly delivery",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, 25, resp.Product.Stock)
	require.Len(t, logs.entries, 1)
	assert.Equal(t, model.StockKindStockIn, logs.entries[0].Kind)
	assert.Equal(t, 15, logs.entries[0].Quantity)
	assert.Equal(t, 25, logs.entries[0].CurrentStock)
	assert.Equal(t, "weekly delivery", logs.entries[0].Reason)
}

func TestStockAdjustmentNeverGoesNegative(t *testing.T) {
	products, logs, svc := newStockFixture()
	p := products.add(&model.Product{
		Name:      "Rice 5kg",
		UnitPrice: decimal.NewFromInt(12),
		Stock:     3,
		Active:    true,
	})

	_, err := svc.ApplyAdjustment(context.Background(), p.ID, dto.StockAdjustmentRequest{
		Quantity: -5,
		Kind:     model.StockKindAdjustment,
		Reason:   "spoilage recount",
	}, nil)

	var insufficientErr *service.InsufficientStockError
	require.ErrorAs(t, err, &insufficientErr)
	assert.Equal(t, "Rice 5kg", insufficientErr.ProductName)
	assert.Equal(t, 3, insufficientErr.Available)
	assert.Equal(t, 5, insufficientErr.Requested)

	// Rejection left no trace: stock unchanged, no log entry.
	got, _ := products.FindByID(context.Background(), p.ID)
	assert.Equal(t, 3, got.Stock)
	assert.Empty(t, logs.entries)
}

func TestStockAdjustmentUnknownProduct(t *testing.T) {
	_, _, svc := newStockFixture()

	_, err := svc.ApplyAdjustment(context.Background(), uuid.New(), dto.StockAdjustmentRequest{
		Quantity: 5,
		Kind:     model.StockKindStockIn,
		Reason:   "delivery",
	}, nil)

	var notFound *service.ProductNotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestStockLogSnapshotsChain(t *testing.T) {
	products, logs, svc := newStockFixture()
	p := products.add(&model.Product{
		Name:      "Milk 1L",
		UnitPrice: decimal.NewFromInt(2),
		Stock:     0,
		Active:    true,
	})

	deltas := []int{10, -4, 7, -3}
	kinds := []string{model.StockKindStockIn, model.StockKindAdjustment, model.StockKindStockIn, model.StockKindAdjustment}
	for i, d := range deltas {
		_, err := svc.ApplyAdjustment(context.Background(), p.ID, dto.StockAdjustmentRequest{
			Quantity: d,
			Kind:     kinds[i],
			Reason:   "recount",
		}, nil)
		require.NoError(t, err)
	}

	// Each entry's snapshot equals the previous snapshot plus its delta.
	require.Len(t, logs.entries, len(deltas))
	prev := 0
	for _, e := range logs.entries {
		assert.Equal(t, prev+e.Quantity, e.CurrentStock)
		prev = e.CurrentStock
	}
	got, _ := products.FindByID(context.Background(), p.ID)
	assert.Equal(t, prev, got.Stock)
}

func TestConcurrentDeductionsSingleWinner(t *testing.T) {
	products, logs, svc := newStockFixture()
	p := products.add(&model.Product{
		Name:      "Last One",
		UnitPrice: decimal.NewFromInt(9),
		Stock:     1,
		Active:    true,
	})

	const attempts = 20
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := svc.ApplyAdjustmentTx(nil, p.ID, -1, model.StockKindSale, "Sale #1", nil, nil)
			results[i] = err
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			var insufficientErr *service.InsufficientStockError
			assert.ErrorAs(t, err, &insufficientErr)
		}
	}
	assert.Equal(t, 1, succeeded)

	got, _ := products.FindByID(context.Background(), p.ID)
	assert.Equal(t, 0, got.Stock)
	assert.Len(t, logs.entries, 1)
}

func TestListMovementsFiltersByKind(t *testing.T) {
	products, _, svc := newStockFixture()
	p := products.add(&model.Product{
		Name:      "Soap",
		UnitPrice: decimal.NewFromInt(1),
		Stock:     50,
		Active:    true,
	})

	for _, req := range []dto.StockAdjustmentRequest{
		{Quantity: 10, Kind: model.StockKindStockIn, Reason: "delivery"},
		{Quantity: -2, Kind: model.StockKindAdjustment, Reason: "damaged"},
		{Quantity: 5, Kind: model.StockKindStockIn, Reason: "delivery"},
	} {
		_, err := svc.ApplyAdjustment(context.Background(), p.ID, req, nil)
		require.NoError(t, err)
	}

	resp, err := svc.ListMovements(context.Background(), repository.InventoryLogFilter{
		ProductID: &p.ID,
		Kind:      model.StockKindStockIn,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 2)
	for _, e := range resp.Data {
		assert.Equal(t, model.StockKindStockIn, e.Kind)
	}
}

package inventory_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

func TestReplenishment_OrdenaPorCobertura(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "P1", CompanyID: "T1", SKU: "GUANTE", Name: "Guante"}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "P2", CompanyID: "T1", SKU: "BOTA", Name: "Bota"}))

	for _, b := range []*entity.StockBalance{
		{CompanyID: "T1", ProductID: "P1", WarehouseID: "W1", Quantity: d("8"), UnitCost: d("2"), MinStock: d("10"), MaxStock: d("30")},
		{CompanyID: "T1", ProductID: "P2", WarehouseID: "W1", Quantity: d("1"), UnitCost: d("50"), MinStock: d("4")},
		{CompanyID: "T1", ProductID: "P3", WarehouseID: "W1", Quantity: d("9"), UnitCost: d("1"), MinStock: d("5")},
	} {
		require.NoError(t, repos.Stock.Upsert(ctx, b))
	}

	uc := inventory.NewReplenishmentUseCase(repos.Stock, repos.Products)
	list, err := uc.GenerateReplenishmentList(ctx, "T1", "W1")
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "BOTA", list[0].SKU)
	assert.Equal(t, 1, list[0].Priority)
	assert.True(t, list[0].IdealStock.Equal(d("6")), "sin máximo: mínimo * 1.5")
	assert.True(t, list[0].SuggestedOrderQty.Equal(d("5")))
	assert.True(t, list[0].EstimatedOrderCost.Equal(d("250")))

	assert.Equal(t, "GUANTE", list[1].SKU)
	assert.True(t, list[1].SuggestedOrderQty.Equal(d("22")))
	assert.True(t, list[1].CoveragePct.Equal(d("80")))
}

func TestSetStockLimits_AlimentaReposicion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "P1", CompanyID: "T1", SKU: "CASCO", Name: "Casco"}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: "W1", CompanyID: "T1", Name: "Principal"}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: "W9", CompanyID: "T2", Name: "Ajena"}))

	uc := inventory.NewMovementUseCase(store, repos.Movements, repos.Stock, repos.Kardex, inventory.Options{}, zerolog.Nop())
	key := entity.BalanceKey{CompanyID: "T1", ProductID: "P1", WarehouseID: "W1"}

	_, err := uc.SetStockLimits(ctx, key, d("10"), d("5"))
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.SetStockLimits(ctx, entity.BalanceKey{CompanyID: "T1", ProductID: "P1", WarehouseID: "W9"}, d("1"), d("2"))
	require.ErrorIs(t, err, domain.ErrCrossTenantReference)

	b, err := uc.SetStockLimits(ctx, key, d("10"), d("20"))
	require.NoError(t, err)
	assert.True(t, b.Quantity.IsZero())

	list, err := inventory.NewReplenishmentUseCase(repos.Stock, repos.Products).GenerateReplenishmentList(ctx, "T1", "W1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].SuggestedOrderQty.Equal(d("20")))
}

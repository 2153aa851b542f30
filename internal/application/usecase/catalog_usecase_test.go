package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

func TestProductUseCase_SKUUnicoPorEmpresa(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewProductUseCase(memory.NewStore().Repos().Products)

	p, err := uc.Create(ctx, "T1", dto.CreateProductRequest{SKU: "GUA-01", Name: "Guante"})
	require.NoError(t, err)
	assert.Equal(t, "UND", p.UnitMeasure)

	_, err = uc.Create(ctx, "T1", dto.CreateProductRequest{SKU: "GUA-01", Name: "Otro"})
	require.ErrorIs(t, err, domain.ErrDuplicate)

	// el mismo SKU en otra empresa es válido
	_, err = uc.Create(ctx, "T2", dto.CreateProductRequest{SKU: "GUA-01", Name: "Guante"})
	require.NoError(t, err)

	_, err = uc.GetByID(ctx, "T2", p.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	list, err := uc.List(ctx, "T1", dto.NewPageRequest(0, 0))
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.False(t, list.Page.HasMore)
}

func TestWarehouseUseCase(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewWarehouseUseCase(memory.NewStore().Repos().Warehouses)

	_, err := uc.Create(ctx, "T1", dto.CreateWarehouseRequest{})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	w, err := uc.Create(ctx, "T1", dto.CreateWarehouseRequest{Name: "Principal", CostCenterID: "CC-OBRA"})
	require.NoError(t, err)

	got, err := uc.GetByID(ctx, "T1", w.ID)
	require.NoError(t, err)
	assert.Equal(t, "CC-OBRA", got.CostCenterID)

	_, err = uc.GetByID(ctx, "T9", w.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

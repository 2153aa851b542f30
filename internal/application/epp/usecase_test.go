package epp_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/epp"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T) (*epp.UseCase, *inventory.MovementUseCase) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "BOTA", CompanyID: "T1", SKU: "BOTA-40", Name: "Bota de seguridad"}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: "W1", CompanyID: "T1", Name: "Principal"}))

	movements := inventory.NewMovementUseCase(store, repos.Movements, repos.Stock, repos.Kardex, inventory.Options{}, zerolog.Nop())
	_, err := movements.Create(ctx, inventory.MovementInput{
		CompanyID: "T1", Type: entity.MovementTypeENTRY, DestWarehouseID: "W1",
		Lines: []inventory.MovementLineInput{{ProductID: "BOTA", Quantity: d("3"), UnitCost: d("85000")}},
	})
	require.NoError(t, err)
	return epp.NewUseCase(movements, repos.EppIssuances, zerolog.Nop()), movements
}

func TestIssueYRenovacion(t *testing.T) {
	uc, movements := setup(t)
	ctx := context.Background()

	first, err := uc.Issue(ctx, epp.IssueInput{
		CompanyID: "T1", UserID: "U1", WarehouseID: "W1", WorkerID: "CC-1020",
		Lines: []epp.LineInput{{ProductID: "BOTA", Quantity: d("1"), Size: "40"}},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^EPP-\d{6}-000001$`, first.Issuance.Number)
	assert.Equal(t, first.Movement.ID, first.Issuance.MovementID)
	assert.Equal(t, entity.SubtypeEppIssue, first.Movement.Subtype)
	require.NotNil(t, first.Movement.Receptor)
	assert.Equal(t, entity.Worker("CC-1020"), *first.Movement.Receptor)
	require.NotNil(t, first.Movement.Reference)
	assert.Equal(t, entity.RefEppIssuance, first.Movement.Reference.Kind)

	renewal, err := uc.Renew(ctx, epp.RenewInput{CompanyID: "T1", UserID: "U1", IssuanceID: first.Issuance.ID})
	require.NoError(t, err)
	assert.Equal(t, first.Issuance.ID, renewal.Issuance.RenewalOf)
	assert.Equal(t, entity.SubtypeEppRenewal, renewal.Movement.Subtype)
	require.Len(t, renewal.Issuance.Lines, 1)
	assert.Equal(t, "40", renewal.Issuance.Lines[0].Size)

	history, err := uc.History(ctx, "T1", "CC-1020")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	b, err := movements.GetBalance(ctx, entity.BalanceKey{CompanyID: "T1", ProductID: "BOTA", WarehouseID: "W1"})
	require.NoError(t, err)
	assert.True(t, b.Quantity.Equal(d("1")))
}

func TestIssue_SinStockNoRegistraEntrega(t *testing.T) {
	uc, movements := setup(t)
	ctx := context.Background()

	_, err := uc.Issue(ctx, epp.IssueInput{
		CompanyID: "T1", WarehouseID: "W1", WorkerID: "CC-1",
		Lines: []epp.LineInput{{ProductID: "BOTA", Quantity: d("4")}},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	history, err := uc.History(ctx, "T1", "CC-1")
	require.NoError(t, err)
	assert.Empty(t, history)

	list, err := movements.List(ctx, repository.MovementFilter{CompanyID: "T1", Type: entity.MovementTypeEXIT})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIssue_Validaciones(t *testing.T) {
	uc, _ := setup(t)
	ctx := context.Background()

	_, err := uc.Issue(ctx, epp.IssueInput{CompanyID: "T1", WarehouseID: "W1", Lines: []epp.LineInput{{ProductID: "BOTA", Quantity: d("1")}}})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Renew(ctx, epp.RenewInput{CompanyID: "T1", IssuanceID: "no-existe"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

package purchasing_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/purchasing"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type env struct {
	uc        *purchasing.UseCase
	movements *inventory.MovementUseCase
	store     *memory.Store
}

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "P1", CompanyID: "T1", SKU: "CEMENTO", Name: "Cemento"}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "P2", CompanyID: "T1", SKU: "ARENA", Name: "Arena"}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: "W1", CompanyID: "T1", Name: "Principal"}))

	movements := inventory.NewMovementUseCase(store, repos.Movements, repos.Stock, repos.Kardex, inventory.Options{}, zerolog.Nop())
	return &env{
		uc:        purchasing.NewUseCase(movements, repos.PurchaseOrders, zerolog.Nop()),
		movements: movements,
		store:     store,
	}
}

func (e *env) approvedOrder(t *testing.T) *entity.PurchaseOrder {
	t.Helper()
	ctx := context.Background()
	order, err := e.uc.CreatePurchaseOrder(ctx, purchasing.CreateOrderInput{
		CompanyID:   "T1",
		UserID:      "U1",
		SupplierID:  "S1",
		WarehouseID: "W1",
		Lines: []purchasing.OrderLineInput{
			{ProductID: "P1", Quantity: d("10"), UnitCost: d("30000")},
			{ProductID: "P2", Quantity: d("4"), UnitCost: d("12000")},
		},
	})
	require.NoError(t, err)
	assert.Regexp(t, `^OC-\d{4}-000001$`, order.Number)
	assert.Equal(t, entity.PurchaseOrderDraft, order.Status)

	order, err = e.uc.ApprovePurchaseOrder(ctx, "T1", order.ID)
	require.NoError(t, err)
	return order
}

func TestReceive_ParcialYTotal(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	order := e.approvedOrder(t)

	res, err := e.uc.ReceivePurchaseOrder(ctx, purchasing.ReceiveInput{
		CompanyID: "T1", UserID: "U1", OrderID: order.ID,
		Lines: []purchasing.ReceiptLineInput{{LineID: order.Lines[0].ID, Quantity: d("6")}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderPartiallyReceived, res.Order.Status)
	assert.Equal(t, entity.SubtypePurchase, res.Movement.Subtype)
	assert.Equal(t, "S1", res.Movement.SupplierID)
	require.NotNil(t, res.Movement.Reference)
	assert.Equal(t, entity.RefPurchaseOrder, res.Movement.Reference.Kind)
	assert.Equal(t, order.ID, res.Movement.Reference.ID)

	b, err := e.movements.GetBalance(ctx, entity.BalanceKey{CompanyID: "T1", ProductID: "P1", WarehouseID: "W1"})
	require.NoError(t, err)
	assert.True(t, b.Quantity.Equal(d("6")))
	assert.True(t, b.UnitCost.Equal(d("30000")))

	res, err = e.uc.ReceivePurchaseOrder(ctx, purchasing.ReceiveInput{
		CompanyID: "T1", UserID: "U1", OrderID: order.ID,
		Lines: []purchasing.ReceiptLineInput{
			{LineID: order.Lines[0].ID, Quantity: d("4")},
			{LineID: order.Lines[1].ID, Quantity: d("4")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderReceived, res.Order.Status)

	_, err = e.uc.ReceivePurchaseOrder(ctx, purchasing.ReceiveInput{
		CompanyID: "T1", OrderID: order.ID,
		Lines: []purchasing.ReceiptLineInput{{LineID: order.Lines[1].ID, Quantity: d("1")}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestReceive_SuperarPedidoRevierteTodo(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	order := e.approvedOrder(t)

	_, err := e.uc.ReceivePurchaseOrder(ctx, purchasing.ReceiveInput{
		CompanyID: "T1", OrderID: order.ID,
		Lines: []purchasing.ReceiptLineInput{
			{LineID: order.Lines[0].ID, Quantity: d("2")},
			{LineID: order.Lines[1].ID, Quantity: d("5")},
		},
	})
	require.ErrorIs(t, err, domain.ErrCeilingExceeded)

	stored, err := e.uc.GetPurchaseOrder(ctx, "T1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PurchaseOrderApproved, stored.Status)
	assert.True(t, stored.Lines[0].ReceivedQuantity.IsZero())

	list, err := e.movements.List(ctx, repository.MovementFilter{CompanyID: "T1"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReceive_OrdenEnBorrador(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	order, err := e.uc.CreatePurchaseOrder(ctx, purchasing.CreateOrderInput{
		CompanyID: "T1", SupplierID: "S1", WarehouseID: "W1",
		Lines: []purchasing.OrderLineInput{{ProductID: "P1", Quantity: d("1"), UnitCost: d("1")}},
	})
	require.NoError(t, err)

	_, err = e.uc.ReceivePurchaseOrder(ctx, purchasing.ReceiveInput{
		CompanyID: "T1", OrderID: order.ID,
		Lines: []purchasing.ReceiptLineInput{{LineID: order.Lines[0].ID, Quantity: d("1")}},
	})
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	_, err = e.uc.ReceivePurchaseOrder(ctx, purchasing.ReceiveInput{
		CompanyID: "T2", OrderID: order.ID,
		Lines: []purchasing.ReceiptLineInput{{LineID: order.Lines[0].ID, Quantity: d("1")}},
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateQuotation_Numeracion(t *testing.T) {
	e := setup(t)
	q1, err := e.uc.CreateQuotation(context.Background(), "T1", "S1")
	require.NoError(t, err)
	q2, err := e.uc.CreateQuotation(context.Background(), "T1", "S2")
	require.NoError(t, err)
	assert.Regexp(t, `^COT-\d{4}-000001$`, q1.Number)
	assert.Regexp(t, `^COT-\d{4}-000002$`, q2.Number)
}

func TestReceive_MovimientoNoSeAnulaDesdeInventario(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	order := e.approvedOrder(t)

	res, err := e.uc.ReceivePurchaseOrder(ctx, purchasing.ReceiveInput{
		CompanyID: "T1", UserID: "U1", OrderID: order.ID,
		Lines: []purchasing.ReceiptLineInput{{LineID: order.Lines[0].ID, Quantity: d("10")}},
	})
	require.NoError(t, err)
	assert.True(t, res.Movement.GeneratedByDocument())

	_, err = e.movements.Void(ctx, "T1", "U1", res.Movement.ID, "recepción duplicada")
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	stored, err := e.movements.Get(ctx, "T1", res.Movement.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusCompleted, stored.Status)
	b, err := e.movements.GetBalance(ctx, entity.BalanceKey{CompanyID: "T1", ProductID: "P1", WarehouseID: "W1"})
	require.NoError(t, err)
	assert.True(t, b.Quantity.Equal(d("10")))
	order, err = e.uc.GetPurchaseOrder(ctx, "T1", order.ID)
	require.NoError(t, err)
	assert.True(t, order.Lines[0].ReceivedQuantity.Equal(d("10")))
}

package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store   *memory.Store
	uc      *inventory.MovementUseCase
	company string
	product string
	whA     string
	whB     string
}

func newFixture(t *testing.T, opts inventory.Options) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	repos := store.Repos()
	f := &fixture{store: store, company: "T1", product: "P1", whA: "W1", whB: "W2"}

	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: f.product, CompanyID: f.company, SKU: "CASCO-01", Name: "Casco", UnitMeasure: "UND"}))
	require.NoError(t, repos.Products.Create(ctx, &entity.Product{ID: "P-OTRA", CompanyID: "T2", SKU: "X", Name: "Ajeno", UnitMeasure: "UND"}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: f.whA, CompanyID: f.company, Name: "Principal"}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: f.whB, CompanyID: f.company, Name: "Obra"}))
	require.NoError(t, repos.Warehouses.Create(ctx, &entity.Warehouse{ID: "W-OTRA", CompanyID: "T2", Name: "Ajena"}))

	f.uc = inventory.NewMovementUseCase(store, repos.Movements, repos.Stock, repos.Kardex, opts, zerolog.Nop())
	return f
}

func (f *fixture) entry(t *testing.T, warehouseID, qty, cost string) *entity.InventoryMovement {
	t.Helper()
	m, err := f.uc.Create(context.Background(), inventory.MovementInput{
		CompanyID:       f.company,
		UserID:          "U1",
		Type:            entity.MovementTypeENTRY,
		DestWarehouseID: warehouseID,
		Lines:           []inventory.MovementLineInput{{ProductID: f.product, Quantity: d(qty), UnitCost: d(cost)}},
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) exit(warehouseID, qty string) (*entity.InventoryMovement, error) {
	return f.uc.Create(context.Background(), inventory.MovementInput{
		CompanyID:         f.company,
		UserID:            "U1",
		Type:              entity.MovementTypeEXIT,
		SourceWarehouseID: warehouseID,
		Lines:             []inventory.MovementLineInput{{ProductID: f.product, Quantity: d(qty)}},
	})
}

func (f *fixture) transfer(qty string) (*entity.InventoryMovement, error) {
	return f.uc.Create(context.Background(), inventory.MovementInput{
		CompanyID:         f.company,
		UserID:            "U1",
		Type:              entity.MovementTypeTRANSFER,
		SourceWarehouseID: f.whA,
		DestWarehouseID:   f.whB,
		Lines:             []inventory.MovementLineInput{{ProductID: f.product, Quantity: d(qty)}},
	})
}

func (f *fixture) balance(t *testing.T, warehouseID string) *entity.StockBalance {
	t.Helper()
	b, err := f.uc.GetBalance(context.Background(), entity.BalanceKey{CompanyID: f.company, ProductID: f.product, WarehouseID: warehouseID})
	require.NoError(t, err)
	return b
}

func (f *fixture) kardex(t *testing.T, warehouseID string) []*entity.KardexEntry {
	t.Helper()
	list, err := f.uc.ListKardex(context.Background(), repository.KardexFilter{CompanyID: f.company, ProductID: f.product, WarehouseID: warehouseID, Limit: 1000})
	require.NoError(t, err)
	return list
}

func assertBalance(t *testing.T, b *entity.StockBalance, qty, cost string) {
	t.Helper()
	assert.True(t, b.Quantity.Equal(d(qty)), "cantidad: esperado %s, obtenido %s", qty, b.Quantity)
	assert.True(t, b.UnitCost.Equal(d(cost)), "costo: esperado %s, obtenido %s", cost, b.UnitCost)
}

// assertContinuity verifica que cada registro encadene con el anterior de la misma bodega.
func assertContinuity(t *testing.T, entries []*entity.KardexEntry) {
	t.Helper()
	prev := map[string]decimal.Decimal{}
	for _, e := range entries {
		want := prev[e.WarehouseID].Sub(e.Quantity)
		if e.Increases() {
			want = prev[e.WarehouseID].Add(e.Quantity)
		}
		assert.True(t, e.BalanceQuantity.Equal(want), "seq %d: saldo %s, esperado %s", e.Seq, e.BalanceQuantity, want)
		assert.False(t, e.BalanceQuantity.IsNegative())
		prev[e.WarehouseID] = e.BalanceQuantity
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Escenario completo
// ────────────────────────────────────────────────────────────────────────────

func TestEscenario_EntradaSalidaEntradaYAnulacion(t *testing.T) {
	f := newFixture(t, inventory.Options{AllowOutOfOrderVoid: true})
	ctx := context.Background()

	first := f.entry(t, f.whA, "100", "10.00")
	assertBalance(t, f.balance(t, f.whA), "100", "10")
	assert.Regexp(t, `^ENT-\d{6}-000001$`, first.Number)
	assert.Equal(t, entity.MovementStatusCompleted, first.Status)

	out, err := f.exit(f.whA, "30")
	require.NoError(t, err)
	assert.True(t, out.Lines[0].UnitCost.Equal(d("10")), "costo consumido")
	assert.True(t, out.Lines[0].TotalCost.Equal(d("300")))
	assert.Regexp(t, `^SAL-\d{6}-000001$`, out.Number)
	assertBalance(t, f.balance(t, f.whA), "70", "10")

	f.entry(t, f.whA, "50", "16.00")
	assertBalance(t, f.balance(t, f.whA), "120", "12.5")

	voided, err := f.uc.Void(ctx, f.company, "U2", first.ID, "error de digitación")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusVoided, voided.Status)
	assert.Equal(t, "U2", voided.VoidedBy)
	require.NotNil(t, voided.VoidedAt)
	assert.Contains(t, voided.Notes, "[ANULADO")
	assert.Contains(t, voided.Notes, "error de digitación")
	assertBalance(t, f.balance(t, f.whA), "20", "12.5")

	entries := f.kardex(t, f.whA)
	require.Len(t, entries, 4)
	assert.Equal(t, entity.KardexOpExit, entries[3].Operation)
	assert.Equal(t, first.ID, entries[3].MovementID)
	assertContinuity(t, entries)

	stored, err := f.uc.Get(ctx, f.company, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusVoided, stored.Status)
	require.Len(t, stored.Lines, 1)
	assert.True(t, stored.Lines[0].Quantity.Equal(d("100")), "las líneas no se reescriben")
}

// ────────────────────────────────────────────────────────────────────────────
// Propiedades
// ────────────────────────────────────────────────────────────────────────────

func TestSalida_SinStockSeRechazaSinCambios(t *testing.T) {
	f := newFixture(t, inventory.Options{})
	f.entry(t, f.whA, "5", "20")
	before := f.kardex(t, f.whA)

	_, err := f.exit(f.whA, "6")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.True(t, stockErr.Available.Equal(d("5")))

	assertBalance(t, f.balance(t, f.whA), "5", "20")
	assert.Len(t, f.kardex(t, f.whA), len(before))

	list, err := f.uc.List(context.Background(), repository.MovementFilter{CompanyID: f.company})
	require.NoError(t, err)
	assert.Len(t, list, 1, "no debe quedar cabecera huérfana")
}

func TestSalida_VariasLineasRevierteTodoSiUnaFalla(t *testing.T) {
	f := newFixture(t, inventory.Options{})
	f.entry(t, f.whA, "10", "4")

	_, err := f.uc.Create(context.Background(), inventory.MovementInput{
		CompanyID:         f.company,
		Type:              entity.MovementTypeEXIT,
		SourceWarehouseID: f.whA,
		Lines: []inventory.MovementLineInput{
			{ProductID: f.product, Quantity: d("6")},
			{ProductID: f.product, Quantity: d("6")},
		},
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assertBalance(t, f.balance(t, f.whA), "10", "4")
	assert.Len(t, f.kardex(t, f.whA), 1)

	// el consecutivo consumido también se revierte
	out, err := f.exit(f.whA, "1")
	require.NoError(t, err)
	assert.Regexp(t, `-000001$`, out.Number)
}

func TestEntrada_PromedioPonderado(t *testing.T) {
	f := newFixture(t, inventory.Options{})
	f.entry(t, f.whA, "10", "100")
	f.entry(t, f.whA, "10", "200")
	assertBalance(t, f.balance(t, f.whA), "20", "150")
}

func TestKardex_Continuidad(t *testing.T) {
	f := newFixture(t, inventory.Options{AllowOutOfOrderVoid: true})
	ctx := context.Background()

	e1 := f.entry(t, f.whA, "40", "3")
	_, err := f.exit(f.whA, "15")
	require.NoError(t, err)
	tr, err := f.transfer("10")
	require.NoError(t, err)
	_, err = f.uc.ConfirmTransferReceipt(ctx, f.company, "U1", tr.ID)
	require.NoError(t, err)
	_, err = f.uc.Create(ctx, inventory.MovementInput{
		CompanyID:       f.company,
		Type:            entity.MovementTypeADJUSTMENT,
		DestWarehouseID: f.whB,
		Lines:           []inventory.MovementLineInput{{ProductID: f.product, Quantity: d("2"), Direction: entity.DirectionDecrease}},
	})
	require.NoError(t, err)
	_, err = f.uc.Void(ctx, f.company, "U1", e1.ID, "prueba")
	require.NoError(t, err)

	assertContinuity(t, f.kardex(t, ""))
	assertBalance(t, f.balance(t, f.whA), "0", "3")
	assertBalance(t, f.balance(t, f.whB), "8", "3")
}

func TestTraslado_IdaYConfirmacion(t *testing.T) {
	f := newFixture(t, inventory.Options{})
	ctx := context.Background()
	f.entry(t, f.whA, "10", "7.5")
	f.entry(t, f.whB, "4", "1")

	tr, err := f.transfer("5")
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusPending, tr.Status)
	assert.Regexp(t, `^TRF-\d{6}-000001$`, tr.Number)
	assertBalance(t, f.balance(t, f.whA), "5", "7.5")
	assertBalance(t, f.balance(t, f.whB), "4", "1")

	done, err := f.uc.ConfirmTransferReceipt(ctx, f.company, "U3", tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStatusCompleted, done.Status)
	assertBalance(t, f.balance(t, f.whA), "5", "7.5")
	// el destino recibe al costo de origen: (4*1 + 5*7.5) / 9
	assertBalance(t, f.balance(t, f.whB), "9", "4.6111")

	var own []*entity.KardexEntry
	for _, e := range f.kardex(t, "") {
		if e.MovementID == tr.ID {
			own = append(own, e)
		}
	}
	require.Len(t, own, 2)
	assert.Equal(t, entity.KardexOpExit, own[0].Operation)
	assert.Equal(t, f.whA, own[0].WarehouseID)
	assert.Equal(t, entity.KardexOpEntry, own[1].Operation)
	assert.Equal(t, f.whB, own[1].WarehouseID)

	_, err = f.uc.ConfirmTransferReceipt(ctx, f.company, "U3", tr.ID)
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestConfirmar_SoloTrasladosPendientes(t *testing.T) {
	f := newFixture(t, inventory.Options{})
	e := f.entry(t, f.whA, "1", "1")
	_, err := f.uc.ConfirmTransferReceipt(context.Background(), f.company, "U1", e.ID)
	var stErr *domain.StateTransitionError
	require.ErrorAs(t, err, &stErr)
	assert.Equal(t, entity.MovementStatusCompleted, stErr.From)

	_, err = f.uc.ConfirmTransferReceipt(context.Background(), f.company, "U1", "no-existe")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnular_RestauraSaldos(t *testing.T) {
	tests := []struct {
		name string
		run  func(t *testing.T, f *fixture) *entity.InventoryMovement
	}{
		{"entrada", func(t *testing.T, f *fixture) *entity.InventoryMovement {
			return f.entry(t, f.whA, "3", "10")
		}},
		{"salida", func(t *testing.T, f *fixture) *entity.InventoryMovement {
			m, err := f.exit(f.whA, "4")
			require.NoError(t, err)
			return m
		}},
		{"traslado completado", func(t *testing.T, f *fixture) *entity.InventoryMovement {
			m, err := f.transfer("6")
			require.NoError(t, err)
			m, err = f.uc.ConfirmTransferReceipt(context.Background(), f.company, "U1", m.ID)
			require.NoError(t, err)
			return m
		}},
		{"traslado pendiente", func(t *testing.T, f *fixture) *entity.InventoryMovement {
			m, err := f.transfer("6")
			require.NoError(t, err)
			return m
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, inventory.Options{})
			f.entry(t, f.whA, "10", "10")
			f.entry(t, f.whB, "2", "10")
			beforeA, beforeB := f.balance(t, f.whA), f.balance(t, f.whB)

			m := tt.run(t, f)
			_, err := f.uc.Void(context.Background(), f.company, "U1", m.ID, "revertir")
			require.NoError(t, err)

			assertBalance(t, f.balance(t, f.whA), beforeA.Quantity.String(), beforeA.UnitCost.String())
			assertBalance(t, f.balance(t, f.whB), beforeB.Quantity.String(), beforeB.UnitCost.String())
			assertContinuity(t, f.kardex(t, ""))
		})
	}
}

func TestAnular_DosVecesFalla(t *testing.T) {
	f := newFixture(t, inventory.Options{})
	e := f.entry(t, f.whA, "2", "1")
	_, err := f.uc.Void(context.Background(), f.company, "U1", e.ID, "primera")
	require.NoError(t, err)

	_, err = f.uc.Void(context.Background(), f.company, "U1", e.ID, "segunda")
	require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	assertBalance(t, f.balance(t, f.whA), "0", "1")
}

func TestAnular_RequiereMotivo(t *testing.T) {
	f := newFixture(t, inventory.Options{})
	e := f.entry(t, f.whA, "2", "1")
	_, err := f.uc.Void(context.Background(), f.company, "U1", e.ID, "  ")
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnular_FueraDeOrden(t *testing.T) {
	t.Run("rechazada si no se permite", func(t *testing.T) {
		f := newFixture(t, inventory.Options{AllowOutOfOrderVoid: false})
		first := f.entry(t, f.whA, "100", "10")
		f.entry(t, f.whA, "50", "16")

		_, err := f.uc.Void(context.Background(), f.company, "U1", first.ID, "tarde")
		require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
		assertBalance(t, f.balance(t, f.whA), "150", "12")
	})

	t.Run("en orden inverso tras anular la posterior", func(t *testing.T) {
		f := newFixture(t, inventory.Options{AllowOutOfOrderVoid: false})
		ctx := context.Background()
		first := f.entry(t, f.whA, "10", "10")
		second := f.entry(t, f.whA, "5", "10")

		_, err := f.uc.Void(ctx, f.company, "U1", second.ID, "duplicada")
		require.NoError(t, err)
		assertBalance(t, f.balance(t, f.whA), "10", "10")

		_, err = f.uc.Void(ctx, f.company, "U1", first.ID, "error de digitación")
		require.NoError(t, err)
		assertBalance(t, f.balance(t, f.whA), "0", "10")
		assertContinuity(t, f.kardex(t, f.whA))
	})

	t.Run("una salida vigente posterior sigue bloqueando", func(t *testing.T) {
		f := newFixture(t, inventory.Options{AllowOutOfOrderVoid: false})
		ctx := context.Background()
		first := f.entry(t, f.whA, "10", "10")
		second := f.entry(t, f.whA, "5", "10")
		_, err := f.exit(f.whA, "2")
		require.NoError(t, err)

		_, err = f.uc.Void(ctx, f.company, "U1", second.ID, "duplicada")
		require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
		_, err = f.uc.Void(ctx, f.company, "U1", first.ID, "duplicada")
		require.ErrorIs(t, err, domain.ErrInvalidStateTransition)
		assertBalance(t, f.balance(t, f.whA), "13", "10")
	})

	t.Run("limitada a cero si se permite", func(t *testing.T) {
		f := newFixture(t, inventory.Options{AllowOutOfOrderVoid: true})
		first := f.entry(t, f.whA, "10", "10")
		_, err := f.exit(f.whA, "8")
		require.NoError(t, err)

		_, err = f.uc.Void(context.Background(), f.company, "U1", first.ID, "tarde")
		require.NoError(t, err)
		assertBalance(t, f.balance(t, f.whA), "0", "10")
		entries := f.kardex(t, f.whA)
		last := entries[len(entries)-1]
		assert.True(t, last.Quantity.Equal(d("2")), "el registro compensatorio refleja lo efectivamente restado")
		assertContinuity(t, entries)
	})
}

func TestAjuste_PositivoYNegativo(t *testing.T) {
	f := newFixture(t, inventory.Options{})
	ctx := context.Background()
	adjust := func(qty, cost, dir string) (*entity.InventoryMovement, error) {
		return f.uc.Create(ctx, inventory.MovementInput{
			CompanyID:         f.company,
			Type:              entity.MovementTypeADJUSTMENT,
			SourceWarehouseID: f.whA,
			Lines:             []inventory.MovementLineInput{{ProductID: f.product, Quantity: d(qty), UnitCost: d(cost), Direction: dir}},
		})
	}

	m, err := adjust("8", "5", entity.DirectionIncrease)
	require.NoError(t, err)
	assert.Regexp(t, `^AJU-`, m.Number)
	assertBalance(t, f.balance(t, f.whA), "8", "5")

	m, err = adjust("3", "999", entity.DirectionDecrease)
	require.NoError(t, err)
	assert.True(t, m.Lines[0].UnitCost.Equal(d("5")), "la rama negativa ignora el costo recibido")
	assertBalance(t, f.balance(t, f.whA), "5", "5")

	_, err = adjust("6", "0", entity.DirectionDecrease)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	entries := f.kardex(t, f.whA)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.KardexOpPositiveAdjust, entries[0].Operation)
	assert.Equal(t, entity.KardexOpNegativeAdjust, entries[1].Operation)
}

func TestCrear_Validaciones(t *testing.T) {
	f := newFixture(t, inventory.Options{})
	line := []inventory.MovementLineInput{{ProductID: f.product, Quantity: d("1"), UnitCost: d("1")}}
	tests := []struct {
		name string
		in   inventory.MovementInput
		want error
	}{
		{"tipo desconocido", inventory.MovementInput{CompanyID: f.company, Type: "IN", DestWarehouseID: f.whA, Lines: line}, domain.ErrInvalidInput},
		{"sin líneas", inventory.MovementInput{CompanyID: f.company, Type: entity.MovementTypeENTRY, DestWarehouseID: f.whA}, domain.ErrInvalidInput},
		{"entrada sin destino", inventory.MovementInput{CompanyID: f.company, Type: entity.MovementTypeENTRY, Lines: line}, domain.ErrInvalidInput},
		{"traslado misma bodega", inventory.MovementInput{CompanyID: f.company, Type: entity.MovementTypeTRANSFER, SourceWarehouseID: f.whA, DestWarehouseID: f.whA, Lines: line}, domain.ErrInvalidInput},
		{"cantidad cero", inventory.MovementInput{CompanyID: f.company, Type: entity.MovementTypeENTRY, DestWarehouseID: f.whA,
			Lines: []inventory.MovementLineInput{{ProductID: f.product, Quantity: decimal.Zero}}}, domain.ErrInvalidInput},
		{"ajuste sin dirección", inventory.MovementInput{CompanyID: f.company, Type: entity.MovementTypeADJUSTMENT, DestWarehouseID: f.whA, Lines: line}, domain.ErrInvalidInput},
		{"referencia incompleta", inventory.MovementInput{CompanyID: f.company, Type: entity.MovementTypeENTRY, DestWarehouseID: f.whA, Lines: line,
			Reference: &entity.DocumentReference{Kind: entity.RefPurchaseOrder}}, domain.ErrInvalidInput},
		{"bodega de otra empresa", inventory.MovementInput{CompanyID: f.company, Type: entity.MovementTypeENTRY, DestWarehouseID: "W-OTRA", Lines: line}, domain.ErrCrossTenantReference},
		{"producto de otra empresa", inventory.MovementInput{CompanyID: f.company, Type: entity.MovementTypeENTRY, DestWarehouseID: f.whA,
			Lines: []inventory.MovementLineInput{{ProductID: "P-OTRA", Quantity: d("1")}}}, domain.ErrCrossTenantReference},
		{"bodega inexistente", inventory.MovementInput{CompanyID: f.company, Type: entity.MovementTypeENTRY, DestWarehouseID: "W-X", Lines: line}, domain.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Create(context.Background(), tt.in)
			require.ErrorIs(t, err, tt.want)
		})
	}
	assertBalance(t, f.balance(t, f.whA), "0", "0")
}

func TestGet_OtraEmpresaNoEncuentra(t *testing.T) {
	f := newFixture(t, inventory.Options{})
	e := f.entry(t, f.whA, "1", "1")
	_, err := f.uc.Get(context.Background(), "T2", e.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

// ────────────────────────────────────────────────────────────────────────────
// Métricas y publicación de saldos
// ────────────────────────────────────────────────────────────────────────────

type recorder struct {
	recorded, voided, rejected, clamped, confirmed int
}

func (r *recorder) MovementRecorded(string, string) { r.recorded++ }
func (r *recorder) TransferConfirmed()              { r.confirmed++ }
func (r *recorder) MovementVoided(string)           { r.voided++ }
func (r *recorder) StockRejected()                  { r.rejected++ }
func (r *recorder) ReversalClamped()                { r.clamped++ }

type publisher struct{ published []*entity.StockBalance }

func (p *publisher) Publish(_ context.Context, b []*entity.StockBalance) {
	p.published = append(p.published, b...)
}

func TestHooks_SoloTrasCommit(t *testing.T) {
	f := newFixture(t, inventory.Options{AllowOutOfOrderVoid: true})
	rec, pub := &recorder{}, &publisher{}
	f.uc.WithMetrics(rec).WithBalancePublisher(pub)

	e := f.entry(t, f.whA, "3", "2")
	_, err := f.exit(f.whA, "2")
	require.NoError(t, err)
	_, err = f.exit(f.whA, "5")
	require.Error(t, err)
	_, err = f.uc.Void(context.Background(), f.company, "U1", e.ID, "x")
	require.NoError(t, err)

	assert.Equal(t, 2, rec.recorded)
	assert.Equal(t, 1, rec.rejected)
	assert.Equal(t, 1, rec.voided)
	assert.Equal(t, 1, rec.clamped)
	require.Len(t, pub.published, 3)
	assert.True(t, pub.published[2].Quantity.IsZero())
}

func TestCreate_FechaExplicita(t *testing.T) {
	f := newFixture(t, inventory.Options{})
	at := time.Date(2025, time.December, 31, 8, 0, 0, 0, time.UTC)
	m, err := f.uc.Create(context.Background(), inventory.MovementInput{
		CompanyID:       f.company,
		Type:            entity.MovementTypeENTRY,
		DestWarehouseID: f.whA,
		Date:            at,
		Lines:           []inventory.MovementLineInput{{ProductID: f.product, Quantity: d("1"), UnitCost: d("1")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ENT-202512-000001", m.Number)
	assert.True(t, m.Date.Equal(at))
}

func TestAnular_ManualConReferenciaSePermite(t *testing.T) {
	f := newFixture(t, inventory.Options{})
	ctx := context.Background()
	m, err := f.uc.Create(ctx, inventory.MovementInput{
		CompanyID:       f.company,
		UserID:          "U1",
		Type:            entity.MovementTypeENTRY,
		Subtype:         entity.SubtypeManual,
		DestWarehouseID: f.whA,
		Reference:       &entity.DocumentReference{Kind: entity.RefPurchaseOrder, ID: "OC-EXTERNA"},
		Lines:           []inventory.MovementLineInput{{ProductID: f.product, Quantity: d("3"), UnitCost: d("5")}},
	})
	require.NoError(t, err)
	assert.False(t, m.GeneratedByDocument())

	_, err = f.uc.Void(ctx, f.company, "U1", m.ID, "referencia equivocada")
	require.NoError(t, err)
	assertBalance(t, f.balance(t, f.whA), "0", "5")
}

package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// CostingEngine aplica entradas y salidas sobre los saldos con costo promedio ponderado.
// Cada operación bloquea la fila del saldo (GetForUpdate) antes de leer y escribir.
type CostingEngine struct {
	now func() time.Time
}

// NewCostingEngine construye el motor de costeo.
func NewCostingEngine() *CostingEngine {
	return &CostingEngine{now: time.Now}
}

// ApplyReceipt suma qty al saldo y recalcula el costo promedio.
func (e *CostingEngine) ApplyReceipt(ctx context.Context, stock repository.StockRepository, key entity.BalanceKey, qty, unitCost decimal.Decimal) (*entity.StockBalance, error) {
	balance, err := stock.GetForUpdate(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := inventory.Receive(balance, qty, unitCost); err != nil {
		return nil, err
	}
	return balance, e.save(ctx, stock, balance)
}

// ApplyIssue resta qty del saldo y devuelve el costo unitario consumido (el promedio vigente).
// Con stock insuficiente devuelve InsufficientStockError sin tocar el saldo.
func (e *CostingEngine) ApplyIssue(ctx context.Context, stock repository.StockRepository, key entity.BalanceKey, qty decimal.Decimal) (*entity.StockBalance, decimal.Decimal, error) {
	balance, err := stock.GetForUpdate(ctx, key)
	if err != nil {
		return nil, decimal.Zero, err
	}
	consumed, err := inventory.Issue(balance, qty)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return balance, consumed, e.save(ctx, stock, balance)
}

// ApplyAdjustment enruta a entrada (signedQty > 0) o salida (signedQty < 0).
// unitCost solo aplica a la rama positiva; en la negativa se devuelve el costo consumido.
func (e *CostingEngine) ApplyAdjustment(ctx context.Context, stock repository.StockRepository, key entity.BalanceKey, signedQty, unitCost decimal.Decimal) (*entity.StockBalance, decimal.Decimal, error) {
	if signedQty.IsPositive() {
		b, err := e.ApplyReceipt(ctx, stock, key, signedQty, unitCost)
		return b, unitCost, err
	}
	return e.ApplyIssue(ctx, stock, key, signedQty.Abs())
}

// ApplyReversalDecrease resta hasta qty sin bajar de cero y sin cambiar el costo.
// Devuelve el saldo y la cantidad efectivamente restada.
func (e *CostingEngine) ApplyReversalDecrease(ctx context.Context, stock repository.StockRepository, key entity.BalanceKey, qty decimal.Decimal) (*entity.StockBalance, decimal.Decimal, error) {
	balance, err := stock.GetForUpdate(ctx, key)
	if err != nil {
		return nil, decimal.Zero, err
	}
	removed := inventory.Decrease(balance, qty)
	if removed.IsZero() {
		return balance, removed, nil
	}
	return balance, removed, e.save(ctx, stock, balance)
}

func (e *CostingEngine) save(ctx context.Context, stock repository.StockRepository, balance *entity.StockBalance) error {
	balance.UpdatedAt = e.now()
	return stock.Upsert(ctx, balance)
}

package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar saldos por (empresa, producto, bodega).
// Las escrituras solo ocurren dentro de una transacción y después de GetForUpdate.
type StockRepository interface {
	// Get devuelve el saldo o un saldo en cero (sin ID) si aún no existe.
	Get(ctx context.Context, key entity.BalanceKey) (*entity.StockBalance, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE), creándola en cero si no existe.
	GetForUpdate(ctx context.Context, key entity.BalanceKey) (*entity.StockBalance, error)
	Upsert(ctx context.Context, balance *entity.StockBalance) error
	ListByWarehouse(ctx context.Context, companyID, warehouseID string) ([]*entity.StockBalance, error)
	ListBelowMinimum(ctx context.Context, companyID, warehouseID string) ([]*entity.StockBalance, error)
}

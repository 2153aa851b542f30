package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// KardexFilter filtra el kardex de un producto. WarehouseID vacío incluye todas las bodegas.
type KardexFilter struct {
	CompanyID   string
	ProductID   string
	WarehouseID string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// KardexRepository es el libro de movimientos valorizado. Solo admite inserciones.
type KardexRepository interface {
	// Append inserta el registro y le asigna Seq.
	Append(ctx context.Context, entry *entity.KardexEntry) error
	// List devuelve los registros ordenados por (fecha, seq).
	List(ctx context.Context, filter KardexFilter) ([]*entity.KardexEntry, error)
	// MovementsAfter devuelve los movimientos con registros en el saldo posteriores al último
	// registro de movementID. Los registros sin movimiento aparecen como "".
	MovementsAfter(ctx context.Context, key entity.BalanceKey, movementID string) ([]string, error)
}

package repository

import (
	"context"
	"time"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// MovementFilter filtra el listado de movimientos. Campos vacíos no filtran.
type MovementFilter struct {
	CompanyID   string
	WarehouseID string // origen o destino
	Type        string
	Status      string
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}

// InventoryMovementRepository define el puerto de persistencia para movimientos de inventario (cabecera + líneas).
type InventoryMovementRepository interface {
	// Create persiste la cabecera y sus líneas.
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	// GetByID devuelve nil, nil si no existe en la empresa.
	GetByID(ctx context.Context, companyID, id string) (*entity.InventoryMovement, error)
	// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE) y carga las líneas.
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.InventoryMovement, error)
	// UpdateStatus persiste estado, notas y datos de anulación.
	UpdateStatus(ctx context.Context, movement *entity.InventoryMovement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.InventoryMovement, error)
}

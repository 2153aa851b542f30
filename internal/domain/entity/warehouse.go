package entity

import "time"

// Warehouse representa una bodega donde se almacena inventario.
// CostCenterID es opcional (bodegas asignadas a un centro de costo).
type Warehouse struct {
	ID           string
	CompanyID    string
	CostCenterID string
	Name         string
	Address      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package dto

import "time"

// CreateWarehouseRequest entrada para crear una bodega.
type CreateWarehouseRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=200"`
	Address      string `json:"address" validate:"max=300"`
	CostCenterID string `json:"cost_center_id"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	CostCenterID string    `json:"cost_center_id,omitempty"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WarehouseListResponse lista paginada de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la orden de compra.
const (
	PurchaseOrderDraft             = "DRAFT"
	PurchaseOrderApproved          = "APPROVED"
	PurchaseOrderPartiallyReceived = "PARTIALLY_RECEIVED"
	PurchaseOrderReceived          = "RECEIVED"
	PurchaseOrderCancelled         = "CANCELLED"
)

// PurchaseOrder es una orden de compra a proveedor (OC-2026-000001).
type PurchaseOrder struct {
	ID          string
	CompanyID   string
	Number      string
	SupplierID  string
	WarehouseID string // bodega de recepción por defecto
	Status      string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Lines       []*PurchaseOrderLine
}

// PurchaseOrderLine: Quantity es el tope aprobado; ReceivedQuantity se acumula en cada recepción parcial.
type PurchaseOrderLine struct {
	ID               string
	OrderID          string
	ProductID        string
	Quantity         decimal.Decimal
	ReceivedQuantity decimal.Decimal
	UnitCost         decimal.Decimal
}

// Quotation es una cotización de proveedor; solo se usa aquí para su numeración (COT-2026-000001).
type Quotation struct {
	ID         string
	CompanyID  string
	Number     string
	SupplierID string
	CreatedAt  time.Time
}

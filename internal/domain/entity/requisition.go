package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de la requisición.
const (
	RequisitionPending         = "PENDING"
	RequisitionApproved        = "APPROVED"
	RequisitionPartiallyServed = "PARTIALLY_SERVED"
	RequisitionServed          = "SERVED"
	RequisitionRejected        = "REJECTED"
)

// Requisition es una solicitud interna de materiales de un centro de costo (REQ-202601-000001).
type Requisition struct {
	ID           string
	CompanyID    string
	Number       string
	CostCenterID string
	Requester    Receptor
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Lines        []*RequisitionLine
}

// RequisitionLine: ApprovedQuantity es el tope; DeliveredQuantity se acumula con los vales de salida.
type RequisitionLine struct {
	ID                string
	RequisitionID     string
	ProductID         string
	RequestedQuantity decimal.Decimal
	ApprovedQuantity  decimal.Decimal
	DeliveredQuantity decimal.Decimal
}

// Estados del vale de salida.
const (
	ExitVoucherPending   = "PENDING"
	ExitVoucherPartial   = "PARTIAL"
	ExitVoucherDelivered = "DELIVERED"
)

// ExitVoucher (vale de salida) autoriza la entrega de lo aprobado en una requisición (VS-202601-000001).
type ExitVoucher struct {
	ID            string
	CompanyID     string
	Number        string
	RequisitionID string
	WarehouseID   string
	Receptor      Receptor
	Status        string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Lines         []*ExitVoucherLine
}

// ExitVoucherLine: Quantity es el tope del vale; DeliveredQuantity se acumula en cada entrega.
type ExitVoucherLine struct {
	ID                string
	VoucherID         string
	RequisitionLineID string
	ProductID         string
	Quantity          decimal.Decimal
	DeliveredQuantity decimal.Decimal
}

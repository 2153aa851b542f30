package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeENTRY      = "ENTRY"      // entrada
	MovementTypeEXIT       = "EXIT"       // salida
	MovementTypeTRANSFER   = "TRANSFER"   // traslado entre bodegas
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste (+/-)
)

// Estados del movimiento. PENDING solo aplica a traslados en tránsito.
const (
	MovementStatusPending   = "PENDING"
	MovementStatusCompleted = "COMPLETED"
	MovementStatusVoided    = "VOIDED"
)

// Subtipos usados por los puntos de integración (texto libre en BD).
const (
	SubtypeManual           = "manual"
	SubtypePurchase         = "purchase"
	SubtypeRequisitionIssue = "requisition-issue"
	SubtypeEppIssue         = "epp-issue"
	SubtypeEppRenewal       = "epp-renewal"
	SubtypeLoan             = "loan"
	SubtypeLoanReturn       = "loan-return"
)

// Dirección de una línea respecto al saldo afectado.
const (
	DirectionIncrease = "INCREASE"
	DirectionDecrease = "DECREASE"
)

// InventoryMovement es la cabecera de un evento de inventario (entrada, salida, traslado o ajuste).
// Una vez VOIDED es inmutable.
type InventoryMovement struct {
	ID                string
	CompanyID         string
	Number            string // ENT-202601-000001, SAL-..., TRF-..., AJU-...
	Type              string
	Subtype           string
	SourceWarehouseID string // obligatorio en EXIT y TRANSFER
	DestWarehouseID   string // obligatorio en ENTRY y TRANSFER
	SupplierID        string
	CostCenterID      string
	Reference         *DocumentReference
	Receptor          *Receptor
	Date              time.Time
	Status            string
	Notes             string
	CreatedBy         string
	VoidedBy          string
	VoidedAt          *time.Time
	VoidReason        string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Lines             []*MovementLine
}

// IsTransfer indica si el movimiento es un traslado.
func (m *InventoryMovement) IsTransfer() bool { return m.Type == MovementTypeTRANSFER }

// GeneratedByDocument indica si el movimiento lo registró un documento que lleva contadores de
// avance (recepción de compra, vale de salida, EPP o préstamo).
func (m *InventoryMovement) GeneratedByDocument() bool {
	if m.Reference == nil {
		return false
	}
	switch m.Subtype {
	case SubtypePurchase, SubtypeRequisitionIssue, SubtypeEppIssue, SubtypeEppRenewal, SubtypeLoan, SubtypeLoanReturn:
		return true
	}
	return false
}

// AdjustedWarehouseID es la bodega afectada por un ajuste: destino si viene, si no origen.
func (m *InventoryMovement) AdjustedWarehouseID() string {
	if m.DestWarehouseID != "" {
		return m.DestWarehouseID
	}
	return m.SourceWarehouseID
}

// MovementLine es una línea de producto del movimiento.
// En EXIT y TRANSFER, UnitCost es el costo promedio consumido en la bodega origen.
type MovementLine struct {
	ID         string
	MovementID string
	LineNo     int
	ProductID  string
	Quantity   decimal.Decimal // siempre > 0
	UnitCost   decimal.Decimal
	TotalCost  decimal.Decimal
	Direction  string // INCREASE / DECREASE
	LotNumber  string
	ExpiryDate *time.Time
}

// SignedQuantity devuelve la cantidad con signo según la dirección.
func (l *MovementLine) SignedQuantity() decimal.Decimal {
	if l.Direction == DirectionDecrease {
		return l.Quantity.Neg()
	}
	return l.Quantity
}

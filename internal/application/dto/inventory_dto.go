package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// MovementLineRequest línea de un movimiento.
type MovementLineRequest struct {
	ProductID  string          `json:"product_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Direction  string          `json:"direction,omitempty" validate:"omitempty,oneof=INCREASE DECREASE"`
	LotNumber  string          `json:"lot_number,omitempty" validate:"max=100"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
}

// ReferenceRequest documento que origina el movimiento.
type ReferenceRequest struct {
	Kind string `json:"kind" validate:"required,oneof=PURCHASE_ORDER REQUISITION EXIT_VOUCHER LOAN EPP_ISSUANCE"`
	ID   string `json:"id" validate:"required"`
}

// ReceptorRequest persona que recibe: trabajador o usuario del sistema.
type ReceptorRequest struct {
	Kind string `json:"kind" validate:"required,oneof=WORKER SYSTEM_USER"`
	ID   string `json:"id" validate:"required"`
}

// ToEntity convierte el receptor del request.
func (r *ReceptorRequest) ToEntity() *entity.Receptor {
	if r == nil {
		return nil
	}
	return &entity.Receptor{Kind: entity.ReceptorKind(r.Kind), ID: r.ID}
}

// CreateMovementRequest body para POST /api/inventory/movements.
type CreateMovementRequest struct {
	Type              string                `json:"type" validate:"required,oneof=ENTRY EXIT TRANSFER ADJUSTMENT"`
	Subtype           string                `json:"subtype,omitempty" validate:"max=50"`
	SourceWarehouseID string                `json:"source_warehouse_id,omitempty"`
	DestWarehouseID   string                `json:"dest_warehouse_id,omitempty"`
	SupplierID        string                `json:"supplier_id,omitempty"`
	CostCenterID      string                `json:"cost_center_id,omitempty"`
	Reference         *ReferenceRequest     `json:"reference,omitempty"`
	Receptor          *ReceptorRequest      `json:"receptor,omitempty"`
	Date              *time.Time            `json:"date,omitempty"`
	Notes             string                `json:"notes,omitempty" validate:"max=2000"`
	Lines             []MovementLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// VoidMovementRequest body para POST /api/inventory/movements/:id/void.
type VoidMovementRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// MovementLineResponse línea de un movimiento.
type MovementLineResponse struct {
	ID         string          `json:"id"`
	LineNo     int             `json:"line_no"`
	ProductID  string          `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	TotalCost  decimal.Decimal `json:"total_cost"`
	Direction  string          `json:"direction"`
	LotNumber  string          `json:"lot_number,omitempty"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
}

// ReferenceResponse documento origen.
type ReferenceResponse struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

// MovementResponse salida de un movimiento con sus líneas.
type MovementResponse struct {
	ID                string                 `json:"id"`
	Number            string                 `json:"number"`
	Type              string                 `json:"type"`
	Subtype           string                 `json:"subtype"`
	Status            string                 `json:"status"`
	SourceWarehouseID string                 `json:"source_warehouse_id,omitempty"`
	DestWarehouseID   string                 `json:"dest_warehouse_id,omitempty"`
	SupplierID        string                 `json:"supplier_id,omitempty"`
	CostCenterID      string                 `json:"cost_center_id,omitempty"`
	Reference         *ReferenceResponse     `json:"reference,omitempty"`
	Receptor          *ReferenceResponse     `json:"receptor,omitempty"`
	Date              time.Time              `json:"date"`
	Notes             string                 `json:"notes,omitempty"`
	CreatedBy         string                 `json:"created_by,omitempty"`
	VoidedBy          string                 `json:"voided_by,omitempty"`
	VoidedAt          *time.Time             `json:"voided_at,omitempty"`
	VoidReason        string                 `json:"void_reason,omitempty"`
	TotalCost         decimal.Decimal        `json:"total_cost"`
	Lines             []MovementLineResponse `json:"lines"`
	CreatedAt         time.Time              `json:"created_at"`
	UpdatedAt         time.Time              `json:"updated_at"`
}

// NewMovementResponse mapea la entidad a la respuesta.
func NewMovementResponse(m *entity.InventoryMovement) *MovementResponse {
	if m == nil {
		return nil
	}
	out := &MovementResponse{
		ID:                m.ID,
		Number:            m.Number,
		Type:              m.Type,
		Subtype:           m.Subtype,
		Status:            m.Status,
		SourceWarehouseID: m.SourceWarehouseID,
		DestWarehouseID:   m.DestWarehouseID,
		SupplierID:        m.SupplierID,
		CostCenterID:      m.CostCenterID,
		Date:              m.Date,
		Notes:             m.Notes,
		CreatedBy:         m.CreatedBy,
		VoidedBy:          m.VoidedBy,
		VoidedAt:          m.VoidedAt,
		VoidReason:        m.VoidReason,
		TotalCost:         decimal.Zero,
		Lines:             make([]MovementLineResponse, 0, len(m.Lines)),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
	if m.Reference != nil {
		out.Reference = &ReferenceResponse{Kind: string(m.Reference.Kind), ID: m.Reference.ID}
	}
	if m.Receptor != nil {
		out.Receptor = &ReferenceResponse{Kind: string(m.Receptor.Kind), ID: m.Receptor.ID}
	}
	for _, l := range m.Lines {
		out.TotalCost = out.TotalCost.Add(l.TotalCost)
		out.Lines = append(out.Lines, MovementLineResponse{
			ID:         l.ID,
			LineNo:     l.LineNo,
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			UnitCost:   l.UnitCost,
			TotalCost:  l.TotalCost,
			Direction:  l.Direction,
			LotNumber:  l.LotNumber,
			ExpiryDate: l.ExpiryDate,
		})
	}
	return out
}

// MovementListResponse lista paginada de movimientos (sin líneas).
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// KardexEntryResponse registro del kardex.
type KardexEntryResponse struct {
	ID              string          `json:"id"`
	Seq             int64           `json:"seq"`
	WarehouseID     string          `json:"warehouse_id"`
	MovementID      string          `json:"movement_id,omitempty"`
	Date            time.Time       `json:"date"`
	Operation       string          `json:"operation"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	BalanceQuantity decimal.Decimal `json:"balance_quantity"`
	BalanceUnitCost decimal.Decimal `json:"balance_unit_cost"`
	BalanceTotal    decimal.Decimal `json:"balance_total"`
	Description     string          `json:"description"`
}

// NewKardexEntryResponse mapea un registro del kardex.
func NewKardexEntryResponse(e *entity.KardexEntry) KardexEntryResponse {
	return KardexEntryResponse{
		ID:              e.ID,
		Seq:             e.Seq,
		WarehouseID:     e.WarehouseID,
		MovementID:      e.MovementID,
		Date:            e.Date,
		Operation:       e.Operation,
		Quantity:        e.Quantity,
		UnitCost:        e.UnitCost,
		TotalCost:       e.TotalCost,
		BalanceQuantity: e.BalanceQuantity,
		BalanceUnitCost: e.BalanceUnitCost,
		BalanceTotal:    e.BalanceTotal,
		Description:     e.Description,
	}
}

// StockBalanceResponse saldo de un producto en una bodega.
type StockBalanceResponse struct {
	ProductID   string          `json:"product_id"`
	WarehouseID string          `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalValue  decimal.Decimal `json:"total_value"`
	MinStock    decimal.Decimal `json:"min_stock"`
	MaxStock    decimal.Decimal `json:"max_stock"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewStockBalanceResponse mapea un saldo.
func NewStockBalanceResponse(b *entity.StockBalance) StockBalanceResponse {
	return StockBalanceResponse{
		ProductID:   b.ProductID,
		WarehouseID: b.WarehouseID,
		Quantity:    b.Quantity,
		UnitCost:    b.UnitCost,
		TotalValue:  b.TotalValue(),
		MinStock:    b.MinStock,
		MaxStock:    b.MaxStock,
		UpdatedAt:   b.UpdatedAt,
	}
}

// ReplenishmentSuggestionDTO representa una sugerencia de reposición para un producto
// que se encuentra por debajo de su stock mínimo.
type ReplenishmentSuggestionDTO struct {
	ProductID          string          `json:"product_id"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"product_name"`
	WarehouseID        string          `json:"warehouse_id"`
	CurrentStock       decimal.Decimal `json:"current_stock"`
	MinStock           decimal.Decimal `json:"min_stock"`
	MaxStock           decimal.Decimal `json:"max_stock"`
	IdealStock         decimal.Decimal `json:"ideal_stock"`          // MaxStock o MinStock * 1.5
	SuggestedOrderQty  decimal.Decimal `json:"suggested_order_qty"`  // IdealStock - CurrentStock
	UnitCost           decimal.Decimal `json:"unit_cost"`            // costo promedio ponderado
	EstimatedOrderCost decimal.Decimal `json:"estimated_order_cost"` // SuggestedOrderQty * UnitCost
	CoveragePct        decimal.Decimal `json:"coverage_pct"`         // % del mínimo cubierto
	Priority           int             `json:"priority"`             // 1 = más urgente
}

// StockLimitsRequest body para PUT /api/inventory/balances/:warehouse_id/:product_id/limits.
type StockLimitsRequest struct {
	MinStock decimal.Decimal `json:"min_stock"`
	MaxStock decimal.Decimal `json:"max_stock"`
}

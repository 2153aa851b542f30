package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ─── Compras ──────────────────────────────────────────────────────────────────

// PurchaseOrderLineRequest línea de una orden de compra.
type PurchaseOrderLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID  string                     `json:"supplier_id" validate:"required"`
	WarehouseID string                     `json:"warehouse_id" validate:"required"`
	Lines       []PurchaseOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReceiptLineRequest cantidad recibida de una línea de la orden.
type ReceiptLineRequest struct {
	LineID     string          `json:"line_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	LotNumber  string          `json:"lot_number,omitempty" validate:"max=100"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
}

// ReceivePurchaseOrderRequest body para POST /api/purchase-orders/:id/receipts.
type ReceivePurchaseOrderRequest struct {
	WarehouseID string               `json:"warehouse_id,omitempty"`
	Notes       string               `json:"notes,omitempty" validate:"max=2000"`
	Lines       []ReceiptLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CreateQuotationRequest body para POST /api/quotations.
type CreateQuotationRequest struct {
	SupplierID string `json:"supplier_id" validate:"required"`
}

// PurchaseOrderLineResponse línea con su avance de recepción.
type PurchaseOrderLineResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
}

// PurchaseOrderResponse salida de una orden de compra.
type PurchaseOrderResponse struct {
	ID          string                      `json:"id"`
	Number      string                      `json:"number"`
	SupplierID  string                      `json:"supplier_id"`
	WarehouseID string                      `json:"warehouse_id"`
	Status      string                      `json:"status"`
	CreatedBy   string                      `json:"created_by,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	Lines       []PurchaseOrderLineResponse `json:"lines"`
}

// NewPurchaseOrderResponse mapea la orden.
func NewPurchaseOrderResponse(o *entity.PurchaseOrder) *PurchaseOrderResponse {
	out := &PurchaseOrderResponse{
		ID:          o.ID,
		Number:      o.Number,
		SupplierID:  o.SupplierID,
		WarehouseID: o.WarehouseID,
		Status:      o.Status,
		CreatedBy:   o.CreatedBy,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		Lines:       make([]PurchaseOrderLineResponse, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		out.Lines = append(out.Lines, PurchaseOrderLineResponse{
			ID:               l.ID,
			ProductID:        l.ProductID,
			Quantity:         l.Quantity,
			ReceivedQuantity: l.ReceivedQuantity,
			UnitCost:         l.UnitCost,
		})
	}
	return out
}

// QuotationResponse salida de una cotización.
type QuotationResponse struct {
	ID         string    `json:"id"`
	Number     string    `json:"number"`
	SupplierID string    `json:"supplier_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// ─── Requisiciones y vales de salida ──────────────────────────────────────────

// RequisitionLineRequest producto y cantidad solicitada.
type RequisitionLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// CreateRequisitionRequest body para POST /api/requisitions.
type CreateRequisitionRequest struct {
	CostCenterID string                   `json:"cost_center_id" validate:"required"`
	Requester    *ReceptorRequest         `json:"requester,omitempty"`
	Lines        []RequisitionLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ApprovalLineRequest cantidad aprobada de una línea.
type ApprovalLineRequest struct {
	LineID   string          `json:"line_id" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ApproveRequisitionRequest body para POST /api/requisitions/:id/approve. Sin líneas se aprueba lo solicitado.
type ApproveRequisitionRequest struct {
	Lines []ApprovalLineRequest `json:"lines,omitempty" validate:"dive"`
}

// RequisitionLineResponse línea con cantidades solicitada, aprobada y entregada.
type RequisitionLineResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	RequestedQuantity decimal.Decimal `json:"requested_quantity"`
	ApprovedQuantity  decimal.Decimal `json:"approved_quantity"`
	DeliveredQuantity decimal.Decimal `json:"delivered_quantity"`
}

// RequisitionResponse salida de una requisición.
type RequisitionResponse struct {
	ID           string                    `json:"id"`
	Number       string                    `json:"number"`
	CostCenterID string                    `json:"cost_center_id"`
	Requester    ReferenceResponse         `json:"requester"`
	Status       string                    `json:"status"`
	CreatedAt    time.Time                 `json:"created_at"`
	UpdatedAt    time.Time                 `json:"updated_at"`
	Lines        []RequisitionLineResponse `json:"lines"`
}

// NewRequisitionResponse mapea la requisición.
func NewRequisitionResponse(r *entity.Requisition) *RequisitionResponse {
	out := &RequisitionResponse{
		ID:           r.ID,
		Number:       r.Number,
		CostCenterID: r.CostCenterID,
		Requester:    ReferenceResponse{Kind: string(r.Requester.Kind), ID: r.Requester.ID},
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		Lines:        make([]RequisitionLineResponse, 0, len(r.Lines)),
	}
	for _, l := range r.Lines {
		out.Lines = append(out.Lines, RequisitionLineResponse{
			ID:                l.ID,
			ProductID:         l.ProductID,
			RequestedQuantity: l.RequestedQuantity,
			ApprovedQuantity:  l.ApprovedQuantity,
			DeliveredQuantity: l.DeliveredQuantity,
		})
	}
	return out
}

// VoucherLineRequest línea de requisición a incluir en el vale.
type VoucherLineRequest struct {
	RequisitionLineID string          `json:"requisition_line_id" validate:"required"`
	Quantity          decimal.Decimal `json:"quantity"`
}

// CreateExitVoucherRequest body para POST /api/requisitions/:id/vouchers. Sin líneas toma todo lo pendiente.
type CreateExitVoucherRequest struct {
	WarehouseID string               `json:"warehouse_id" validate:"required"`
	Receptor    *ReceptorRequest     `json:"receptor,omitempty"`
	Lines       []VoucherLineRequest `json:"lines,omitempty" validate:"dive"`
}

// DeliveryLineRequest cantidad entregada de una línea del vale.
type DeliveryLineRequest struct {
	VoucherLineID string          `json:"voucher_line_id" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// DeliverExitVoucherRequest body para POST /api/exit-vouchers/:id/deliveries. Sin líneas entrega todo.
type DeliverExitVoucherRequest struct {
	Notes string                `json:"notes,omitempty" validate:"max=2000"`
	Lines []DeliveryLineRequest `json:"lines,omitempty" validate:"dive"`
}

// ExitVoucherLineResponse línea del vale con su avance.
type ExitVoucherLineResponse struct {
	ID                string          `json:"id"`
	RequisitionLineID string          `json:"requisition_line_id"`
	ProductID         string          `json:"product_id"`
	Quantity          decimal.Decimal `json:"quantity"`
	DeliveredQuantity decimal.Decimal `json:"delivered_quantity"`
}

// ExitVoucherResponse salida de un vale de salida.
type ExitVoucherResponse struct {
	ID            string                    `json:"id"`
	Number        string                    `json:"number"`
	RequisitionID string                    `json:"requisition_id"`
	WarehouseID   string                    `json:"warehouse_id"`
	Receptor      ReferenceResponse         `json:"receptor"`
	Status        string                    `json:"status"`
	CreatedBy     string                    `json:"created_by,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
	Lines         []ExitVoucherLineResponse `json:"lines"`
}

// NewExitVoucherResponse mapea el vale.
func NewExitVoucherResponse(v *entity.ExitVoucher) *ExitVoucherResponse {
	out := &ExitVoucherResponse{
		ID:            v.ID,
		Number:        v.Number,
		RequisitionID: v.RequisitionID,
		WarehouseID:   v.WarehouseID,
		Receptor:      ReferenceResponse{Kind: string(v.Receptor.Kind), ID: v.Receptor.ID},
		Status:        v.Status,
		CreatedBy:     v.CreatedBy,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
		Lines:         make([]ExitVoucherLineResponse, 0, len(v.Lines)),
	}
	for _, l := range v.Lines {
		out.Lines = append(out.Lines, ExitVoucherLineResponse{
			ID:                l.ID,
			RequisitionLineID: l.RequisitionLineID,
			ProductID:         l.ProductID,
			Quantity:          l.Quantity,
			DeliveredQuantity: l.DeliveredQuantity,
		})
	}
	return out
}

// ─── EPP ──────────────────────────────────────────────────────────────────────

// EppLineRequest elemento de protección entregado.
type EppLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	Size      string          `json:"size,omitempty" validate:"max=20"`
}

// IssueEppRequest body para POST /api/epp/issuances.
type IssueEppRequest struct {
	WarehouseID string           `json:"warehouse_id" validate:"required"`
	WorkerID    string           `json:"worker_id" validate:"required"`
	Notes       string           `json:"notes,omitempty" validate:"max=2000"`
	Lines       []EppLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// RenewEppRequest body para POST /api/epp/issuances/:id/renewals. Vacío repite la entrega anterior.
type RenewEppRequest struct {
	WarehouseID string           `json:"warehouse_id,omitempty"`
	Notes       string           `json:"notes,omitempty" validate:"max=2000"`
	Lines       []EppLineRequest `json:"lines,omitempty" validate:"dive"`
}

// EppLineResponse elemento entregado.
type EppLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Size      string          `json:"size,omitempty"`
}

// EppIssuanceResponse salida de una entrega de EPP.
type EppIssuanceResponse struct {
	ID          string            `json:"id"`
	Number      string            `json:"number"`
	WarehouseID string            `json:"warehouse_id"`
	WorkerID    string            `json:"worker_id"`
	RenewalOf   string            `json:"renewal_of,omitempty"`
	MovementID  string            `json:"movement_id"`
	IssuedAt    time.Time         `json:"issued_at"`
	Lines       []EppLineResponse `json:"lines"`
}

// NewEppIssuanceResponse mapea la entrega.
func NewEppIssuanceResponse(i *entity.EppIssuance) EppIssuanceResponse {
	out := EppIssuanceResponse{
		ID:          i.ID,
		Number:      i.Number,
		WarehouseID: i.WarehouseID,
		WorkerID:    i.Worker.ID,
		RenewalOf:   i.RenewalOf,
		MovementID:  i.MovementID,
		IssuedAt:    i.IssuedAt,
		Lines:       make([]EppLineResponse, 0, len(i.Lines)),
	}
	for _, l := range i.Lines {
		out.Lines = append(out.Lines, EppLineResponse{ID: l.ID, ProductID: l.ProductID, Quantity: l.Quantity, Size: l.Size})
	}
	return out
}

// ─── Préstamos ────────────────────────────────────────────────────────────────

// LoanLineRequest equipo y cantidad prestada.
type LoanLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// LendRequest body para POST /api/loans.
type LendRequest struct {
	WarehouseID string            `json:"warehouse_id" validate:"required"`
	Borrower    ReceptorRequest   `json:"borrower"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	Notes       string            `json:"notes,omitempty" validate:"max=2000"`
	Lines       []LoanLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReturnLineRequest cantidad devuelta de una línea del préstamo.
type ReturnLineRequest struct {
	LoanLineID string          `json:"loan_line_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// ReturnLoanRequest body para POST /api/loans/:id/returns. Sin líneas devuelve todo lo pendiente.
type ReturnLoanRequest struct {
	Notes string              `json:"notes,omitempty" validate:"max=2000"`
	Lines []ReturnLineRequest `json:"lines,omitempty" validate:"dive"`
}

// LoanLineResponse línea con su avance de devolución.
type LoanLineResponse struct {
	ID               string          `json:"id"`
	ProductID        string          `json:"product_id"`
	Quantity         decimal.Decimal `json:"quantity"`
	ReturnedQuantity decimal.Decimal `json:"returned_quantity"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
}

// LoanResponse salida de un préstamo.
type LoanResponse struct {
	ID          string             `json:"id"`
	Number      string             `json:"number"`
	WarehouseID string             `json:"warehouse_id"`
	Borrower    ReferenceResponse  `json:"borrower"`
	Status      string             `json:"status"`
	DueDate     *time.Time         `json:"due_date,omitempty"`
	MovementID  string             `json:"movement_id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Lines       []LoanLineResponse `json:"lines"`
}

// NewLoanResponse mapea el préstamo.
func NewLoanResponse(l *entity.EquipmentLoan) *LoanResponse {
	out := &LoanResponse{
		ID:          l.ID,
		Number:      l.Number,
		WarehouseID: l.WarehouseID,
		Borrower:    ReferenceResponse{Kind: string(l.Borrower.Kind), ID: l.Borrower.ID},
		Status:      l.Status,
		DueDate:     l.DueDate,
		MovementID:  l.MovementID,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
		Lines:       make([]LoanLineResponse, 0, len(l.Lines)),
	}
	for _, ln := range l.Lines {
		out.Lines = append(out.Lines, LoanLineResponse{
			ID:               ln.ID,
			ProductID:        ln.ProductID,
			Quantity:         ln.Quantity,
			ReturnedQuantity: ln.ReturnedQuantity,
			UnitCost:         ln.UnitCost,
		})
	}
	return out
}

// DocumentMovementResponse documento actualizado junto con el movimiento que generó.
type DocumentMovementResponse struct {
	Document any               `json:"document"`
	Movement *MovementResponse `json:"movement"`
}

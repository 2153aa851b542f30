// Package purchasing maneja órdenes de compra, cotizaciones y la recepción de mercancía en bodega.
package purchasing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/fulfillment"
	domaininv "github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// receiving lleva lo recibido por línea contra lo pedido.
var receiving = fulfillment.Tracker[entity.PurchaseOrderLine, string]{
	Ceiling:     func(l *entity.PurchaseOrderLine) decimal.Decimal { return l.Quantity },
	Progress:    func(l *entity.PurchaseOrderLine) decimal.Decimal { return l.ReceivedQuantity },
	SetProgress: func(l *entity.PurchaseOrderLine, v decimal.Decimal) { l.ReceivedQuantity = v },
	Full:        entity.PurchaseOrderReceived,
	Partial:     entity.PurchaseOrderPartiallyReceived,
}

// UseCase casos de uso de compras.
type UseCase struct {
	movements *inventory.MovementUseCase
	orders    repository.PurchaseOrderRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso. orders se usa solo para lecturas fuera de transacción.
func NewUseCase(movements *inventory.MovementUseCase, orders repository.PurchaseOrderRepository, log zerolog.Logger) *UseCase {
	return &UseCase{movements: movements, orders: orders, log: log, now: time.Now}
}

// OrderLineInput línea de la orden.
type OrderLineInput struct {
	ProductID string
	Quantity  decimal.Decimal
	UnitCost  decimal.Decimal
}

// CreateOrderInput entrada para crear una orden de compra en borrador.
type CreateOrderInput struct {
	CompanyID   string
	UserID      string
	SupplierID  string
	WarehouseID string
	Lines       []OrderLineInput
}

// CreatePurchaseOrder crea la orden en DRAFT con número OC-YYYY-000000.
func (uc *UseCase) CreatePurchaseOrder(ctx context.Context, in CreateOrderInput) (*entity.PurchaseOrder, error) {
	if in.SupplierID == "" {
		return nil, domain.Invalid("supplier_id", "requerido")
	}
	if in.WarehouseID == "" {
		return nil, domain.Invalid("warehouse_id", "requerido")
	}
	if len(in.Lines) == 0 {
		return nil, domain.Invalid("lines", "debe tener al menos una línea")
	}
	for i, l := range in.Lines {
		if l.ProductID == "" || !l.Quantity.IsPositive() || l.UnitCost.IsNegative() {
			return nil, domain.Invalid(fmt.Sprintf("lines[%d]", i), "producto, cantidad > 0 y costo >= 0 son requeridos")
		}
	}

	now := uc.now()
	order := &entity.PurchaseOrder{
		ID:          uuid.New().String(),
		CompanyID:   in.CompanyID,
		SupplierID:  in.SupplierID,
		WarehouseID: in.WarehouseID,
		Status:      entity.PurchaseOrderDraft,
		CreatedBy:   in.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, l := range in.Lines {
		order.Lines = append(order.Lines, &entity.PurchaseOrderLine{
			ID:               uuid.New().String(),
			OrderID:          order.ID,
			ProductID:        l.ProductID,
			Quantity:         l.Quantity,
			ReceivedQuantity: decimal.Zero,
			UnitCost:         l.UnitCost,
		})
	}

	err := uc.movements.TxRunner().Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		if err := ownWarehouse(ctx, repos, in.CompanyID, in.WarehouseID); err != nil {
			return err
		}
		number, err := uc.movements.Sequencer().Next(ctx, repos, in.CompanyID, domaininv.DocPurchaseOrder, now)
		if err != nil {
			return err
		}
		order.Number = number
		return repos.PurchaseOrders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ApprovePurchaseOrder pasa la orden de DRAFT a APPROVED; solo entonces puede recibirse.
func (uc *UseCase) ApprovePurchaseOrder(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	var order *entity.PurchaseOrder
	err := uc.movements.TxRunner().Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		var err error
		order, err = lockOrder(ctx, repos, companyID, id)
		if err != nil {
			return err
		}
		if order.Status != entity.PurchaseOrderDraft {
			return fmt.Errorf("%w: orden %s en estado %s", domain.ErrInvalidStateTransition, order.Number, order.Status)
		}
		order.Status = entity.PurchaseOrderApproved
		order.UpdatedAt = uc.now()
		return repos.PurchaseOrders.UpdateProgress(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// CreateQuotation registra una cotización de proveedor con número COT-YYYY-000000.
func (uc *UseCase) CreateQuotation(ctx context.Context, companyID, supplierID string) (*entity.Quotation, error) {
	if supplierID == "" {
		return nil, domain.Invalid("supplier_id", "requerido")
	}
	now := uc.now()
	q := &entity.Quotation{ID: uuid.New().String(), CompanyID: companyID, SupplierID: supplierID, CreatedAt: now}
	err := uc.movements.TxRunner().Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		number, err := uc.movements.Sequencer().Next(ctx, repos, companyID, domaininv.DocQuotation, now)
		if err != nil {
			return err
		}
		q.Number = number
		return repos.PurchaseOrders.CreateQuotation(ctx, q)
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// GetPurchaseOrder obtiene la orden con sus líneas.
func (uc *UseCase) GetPurchaseOrder(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	order, err := uc.orders.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, domain.ErrNotFound
	}
	return order, nil
}

// ReceiptLineInput cantidad recibida de una línea de la orden.
type ReceiptLineInput struct {
	LineID     string
	Quantity   decimal.Decimal
	LotNumber  string
	ExpiryDate *time.Time
}

// ReceiveInput entrada para recibir mercancía de una orden. WarehouseID vacío usa la bodega de la orden.
type ReceiveInput struct {
	CompanyID   string
	UserID      string
	OrderID     string
	WarehouseID string
	Notes       string
	Lines       []ReceiptLineInput
}

// ReceiptResult orden actualizada y movimiento de entrada generado.
type ReceiptResult struct {
	Order    *entity.PurchaseOrder
	Movement *entity.InventoryMovement
}

// ReceivePurchaseOrder registra una recepción (total o parcial) en una sola transacción:
// avance por línea, entrada de inventario al costo de la orden y nuevo estado de la orden.
func (uc *UseCase) ReceivePurchaseOrder(ctx context.Context, in ReceiveInput) (*ReceiptResult, error) {
	if len(in.Lines) == 0 {
		return nil, domain.Invalid("lines", "debe tener al menos una línea")
	}
	var (
		order *entity.PurchaseOrder
		res   *inventory.MovementResult
	)
	err := uc.movements.TxRunner().Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		var err error
		order, err = lockOrder(ctx, repos, in.CompanyID, in.OrderID)
		if err != nil {
			return err
		}
		if order.Status != entity.PurchaseOrderApproved && order.Status != entity.PurchaseOrderPartiallyReceived {
			return fmt.Errorf("%w: orden %s en estado %s", domain.ErrInvalidStateTransition, order.Number, order.Status)
		}

		byID := make(map[string]*entity.PurchaseOrderLine, len(order.Lines))
		for _, l := range order.Lines {
			byID[l.ID] = l
		}
		movLines := make([]inventory.MovementLineInput, 0, len(in.Lines))
		for i, rl := range in.Lines {
			line, ok := byID[rl.LineID]
			if !ok {
				return domain.Invalid(fmt.Sprintf("lines[%d].line_id", i), "no pertenece a la orden")
			}
			if err := receiving.Record(line, rl.Quantity); err != nil {
				return fmt.Errorf("línea %s: %w", line.ProductID, err)
			}
			movLines = append(movLines, inventory.MovementLineInput{
				ProductID:  line.ProductID,
				Quantity:   rl.Quantity,
				UnitCost:   line.UnitCost,
				LotNumber:  rl.LotNumber,
				ExpiryDate: rl.ExpiryDate,
			})
		}

		warehouseID := in.WarehouseID
		if warehouseID == "" {
			warehouseID = order.WarehouseID
		}
		res, err = uc.movements.CreateInTx(ctx, repos, inventory.MovementInput{
			CompanyID:       in.CompanyID,
			UserID:          in.UserID,
			Type:            entity.MovementTypeENTRY,
			Subtype:         entity.SubtypePurchase,
			DestWarehouseID: warehouseID,
			SupplierID:      order.SupplierID,
			Reference:       &entity.DocumentReference{Kind: entity.RefPurchaseOrder, ID: order.ID},
			Notes:           in.Notes,
			Lines:           movLines,
		})
		if err != nil {
			return err
		}

		order.Status = receiving.Resolve(order.Lines, order.Status)
		order.UpdatedAt = uc.now()
		return repos.PurchaseOrders.UpdateProgress(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	uc.movements.AfterCommit(ctx, res)
	uc.log.Info().
		Str("company_id", in.CompanyID).
		Str("order", order.Number).
		Str("movement", res.Movement.Number).
		Str("status", order.Status).
		Msg("recepción de orden de compra")
	return &ReceiptResult{Order: order, Movement: res.Movement}, nil
}

func lockOrder(ctx context.Context, repos inventory.TxRepos, companyID, id string) (*entity.PurchaseOrder, error) {
	order, err := repos.PurchaseOrders.GetForUpdate(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("orden de compra %s: %w", id, domain.ErrNotFound)
	}
	return order, nil
}

func ownWarehouse(ctx context.Context, repos inventory.TxRepos, companyID, id string) error {
	wh, err := repos.Warehouses.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if wh == nil {
		return fmt.Errorf("bodega %s: %w", id, domain.ErrNotFound)
	}
	if wh.CompanyID != companyID {
		return fmt.Errorf("bodega %s: %w", id, domain.ErrCrossTenantReference)
	}
	return nil
}

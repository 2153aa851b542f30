// Package requisition maneja requisiciones internas y los vales de salida que las atienden.
package requisition

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

// serving lleva lo entregado de cada línea de requisición contra lo aprobado.
var serving = fulfillment.Tracker[entity.RequisitionLine, string]{
	Ceiling:     func(l *entity.RequisitionLine) decimal.Decimal { return l.ApprovedQuantity },
	Progress:    func(l *entity.RequisitionLine) decimal.Decimal { return l.DeliveredQuantity },
	SetProgress: func(l *entity.RequisitionLine, v decimal.Decimal) { l.DeliveredQuantity = v },
	Full:        entity.RequisitionServed,
	Partial:     entity.RequisitionPartiallyServed,
}

// delivering lleva lo entregado de cada línea del vale contra su cantidad.
var delivering = fulfillment.Tracker[entity.ExitVoucherLine, string]{
	Ceiling:     func(l *entity.ExitVoucherLine) decimal.Decimal { return l.Quantity },
	Progress:    func(l *entity.ExitVoucherLine) decimal.Decimal { return l.DeliveredQuantity },
	SetProgress: func(l *entity.ExitVoucherLine, v decimal.Decimal) { l.DeliveredQuantity = v },
	Full:        entity.ExitVoucherDelivered,
	Partial:     entity.ExitVoucherPartial,
}

// UseCase casos de uso de requisiciones y vales de salida.
type UseCase struct {
	movements    *inventory.MovementUseCase
	requisitions repository.RequisitionRepository
	vouchers     repository.ExitVoucherRepository
	log          zerolog.Logger
	now          func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	movements *inventory.MovementUseCase,
	requisitions repository.RequisitionRepository,
	vouchers repository.ExitVoucherRepository,
	log zerolog.Logger,
) *UseCase {
	return &UseCase{movements: movements, requisitions: requisitions, vouchers: vouchers, log: log, now: time.Now}
}

// LineInput producto y cantidad solicitada.
type LineInput struct {
	ProductID string
	Quantity  decimal.Decimal
}

// CreateInput entrada para crear una requisición.
type CreateInput struct {
	CompanyID    string
	CostCenterID string
	Requester    entity.Receptor
	Lines        []LineInput
}

// CreateRequisition crea la requisición en PENDING con número REQ-YYYYMM-000000.
func (uc *UseCase) CreateRequisition(ctx context.Context, in CreateInput) (*entity.Requisition, error) {
	if !in.Requester.Valid() {
		return nil, domain.Invalid("requester", "tipo o id de solicitante inválido")
	}
	if len(in.Lines) == 0 {
		return nil, domain.Invalid("lines", "debe tener al menos una línea")
	}
	now := uc.now()
	req := &entity.Requisition{
		ID:           uuid.New().String(),
		CompanyID:    in.CompanyID,
		CostCenterID: in.CostCenterID,
		Requester:    in.Requester,
		Status:       entity.RequisitionPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for i, l := range in.Lines {
		if l.ProductID == "" || !l.Quantity.IsPositive() {
			return nil, domain.Invalid(fmt.Sprintf("lines[%d]", i), "producto y cantidad > 0 son requeridos")
		}
		req.Lines = append(req.Lines, &entity.RequisitionLine{
			ID:                uuid.New().String(),
			RequisitionID:     req.ID,
			ProductID:         l.ProductID,
			RequestedQuantity: l.Quantity,
			ApprovedQuantity:  decimal.Zero,
			DeliveredQuantity: decimal.Zero,
		})
	}

	err := uc.movements.TxRunner().Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		for _, l := range req.Lines {
			p, err := repos.Products.GetByID(ctx, l.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("producto %s: %w", l.ProductID, domain.ErrNotFound)
			}
			if p.CompanyID != in.CompanyID {
				return fmt.Errorf("producto %s: %w", l.ProductID, domain.ErrCrossTenantReference)
			}
		}
		number, err := uc.movements.Sequencer().Next(ctx, repos, in.CompanyID, domaininv.DocRequisition, now)
		if err != nil {
			return err
		}
		req.Number = number
		return repos.Requisitions.Create(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ApprovalLine cantidad aprobada de una línea.
type ApprovalLine struct {
	LineID   string
	Quantity decimal.Decimal
}

// Approve aprueba una requisición PENDING. Sin líneas se aprueba todo lo solicitado;
// las líneas no mencionadas quedan con aprobado 0.
func (uc *UseCase) Approve(ctx context.Context, companyID, id string, lines []ApprovalLine) (*entity.Requisition, error) {
	var req *entity.Requisition
	err := uc.movements.TxRunner().Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		var err error
		req, err = lockRequisition(ctx, repos, companyID, id)
		if err != nil {
			return err
		}
		if req.Status != entity.RequisitionPending {
			return fmt.Errorf("%w: requisición %s en estado %s", domain.ErrInvalidStateTransition, req.Number, req.Status)
		}
		if len(lines) == 0 {
			for _, l := range req.Lines {
				l.ApprovedQuantity = l.RequestedQuantity
			}
		} else {
			byID := make(map[string]*entity.RequisitionLine, len(req.Lines))
			for _, l := range req.Lines {
				byID[l.ID] = l
			}
			for i, a := range lines {
				l, ok := byID[a.LineID]
				if !ok {
					return domain.Invalid(fmt.Sprintf("lines[%d].line_id", i), "no pertenece a la requisición")
				}
				if a.Quantity.IsNegative() || a.Quantity.GreaterThan(l.RequestedQuantity) {
					return domain.Invalid(fmt.Sprintf("lines[%d].quantity", i), "debe estar entre 0 y lo solicitado")
				}
				l.ApprovedQuantity = a.Quantity
			}
		}
		req.Status = entity.RequisitionApproved
		req.UpdatedAt = uc.now()
		return repos.Requisitions.Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Reject rechaza una requisición PENDING.
func (uc *UseCase) Reject(ctx context.Context, companyID, id string) (*entity.Requisition, error) {
	var req *entity.Requisition
	err := uc.movements.TxRunner().Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		var err error
		req, err = lockRequisition(ctx, repos, companyID, id)
		if err != nil {
			return err
		}
		if req.Status != entity.RequisitionPending {
			return fmt.Errorf("%w: requisición %s en estado %s", domain.ErrInvalidStateTransition, req.Number, req.Status)
		}
		req.Status = entity.RequisitionRejected
		req.UpdatedAt = uc.now()
		return repos.Requisitions.Update(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// GetRequisition obtiene la requisición con sus líneas.
func (uc *UseCase) GetRequisition(ctx context.Context, companyID, id string) (*entity.Requisition, error) {
	req, err := uc.requisitions.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// GetExitVoucher obtiene el vale con sus líneas.
func (uc *UseCase) GetExitVoucher(ctx context.Context, companyID, id string) (*entity.ExitVoucher, error) {
	v, err := uc.vouchers.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

// VoucherLineInput cantidad de una línea de requisición a incluir en el vale.
type VoucherLineInput struct {
	RequisitionLineID string
	Quantity          decimal.Decimal
}

// CreateVoucherInput entrada para emitir un vale de salida.
// Receptor nil usa el solicitante de la requisición; Lines vacío toma todo lo pendiente.
type CreateVoucherInput struct {
	CompanyID     string
	UserID        string
	RequisitionID string
	WarehouseID   string
	Receptor      *entity.Receptor
	Lines         []VoucherLineInput
}

// CreateExitVoucher emite un vale VS-YYYYMM-000000 sobre una requisición aprobada.
// No mueve inventario; la salida se registra al entregar.
func (uc *UseCase) CreateExitVoucher(ctx context.Context, in CreateVoucherInput) (*entity.ExitVoucher, error) {
	if in.WarehouseID == "" {
		return nil, domain.Invalid("warehouse_id", "requerido")
	}
	if in.Receptor != nil && !in.Receptor.Valid() {
		return nil, domain.Invalid("receptor", "tipo o id de receptor inválido")
	}
	now := uc.now()
	var v *entity.ExitVoucher
	err := uc.movements.TxRunner().Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		req, err := lockRequisition(ctx, repos, in.CompanyID, in.RequisitionID)
		if err != nil {
			return err
		}
		if req.Status != entity.RequisitionApproved && req.Status != entity.RequisitionPartiallyServed {
			return fmt.Errorf("%w: requisición %s en estado %s", domain.ErrInvalidStateTransition, req.Number, req.Status)
		}
		if err := ownWarehouse(ctx, repos, in.CompanyID, in.WarehouseID); err != nil {
			return err
		}

		receptor := req.Requester
		if in.Receptor != nil {
			receptor = *in.Receptor
		}
		v = &entity.ExitVoucher{
			ID:            uuid.New().String(),
			CompanyID:     in.CompanyID,
			RequisitionID: req.ID,
			WarehouseID:   in.WarehouseID,
			Receptor:      receptor,
			Status:        entity.ExitVoucherPending,
			CreatedBy:     in.UserID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		committed, err := repos.ExitVouchers.OpenByRequisitionLine(ctx, in.CompanyID, req.ID)
		if err != nil {
			return err
		}
		available := func(l *entity.RequisitionLine) decimal.Decimal {
			return serving.Remaining(l).Sub(committed[l.ID])
		}
		add := func(l *entity.RequisitionLine, qty decimal.Decimal) {
			v.Lines = append(v.Lines, &entity.ExitVoucherLine{
				ID:                uuid.New().String(),
				VoucherID:         v.ID,
				RequisitionLineID: l.ID,
				ProductID:         l.ProductID,
				Quantity:          qty,
				DeliveredQuantity: decimal.Zero,
			})
		}
		if len(in.Lines) == 0 {
			for _, l := range req.Lines {
				if rem := available(l); rem.IsPositive() {
					add(l, rem)
				}
			}
		} else {
			byID := make(map[string]*entity.RequisitionLine, len(req.Lines))
			for _, l := range req.Lines {
				byID[l.ID] = l
			}
			for i, vl := range in.Lines {
				l, ok := byID[vl.RequisitionLineID]
				if !ok {
					return domain.Invalid(fmt.Sprintf("lines[%d].requisition_line_id", i), "no pertenece a la requisición")
				}
				if !vl.Quantity.IsPositive() {
					return domain.Invalid(fmt.Sprintf("lines[%d].quantity", i), "debe ser mayor que cero")
				}
				if rem := available(l); vl.Quantity.GreaterThan(rem) {
					return fmt.Errorf("%w: línea %s disponible %s (ya en vales abiertos %s), solicitado %s",
						domain.ErrCeilingExceeded, l.ProductID, rem.String(), committed[l.ID].String(), vl.Quantity.String())
				}
				add(l, vl.Quantity)
			}
		}
		if len(v.Lines) == 0 {
			return domain.Invalid("lines", "la requisición no tiene cantidades pendientes fuera de vales abiertos")
		}

		number, err := uc.movements.Sequencer().Next(ctx, repos, in.CompanyID, domaininv.DocExitVoucher, now)
		if err != nil {
			return err
		}
		v.Number = number
		return repos.ExitVouchers.Create(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// DeliveryLineInput cantidad entregada de una línea del vale.
type DeliveryLineInput struct {
	VoucherLineID string
	Quantity      decimal.Decimal
}

// DeliverInput entrada para entregar un vale. Lines vacío entrega todo lo pendiente.
type DeliverInput struct {
	CompanyID string
	UserID    string
	VoucherID string
	Notes     string
	Lines     []DeliveryLineInput
}

// DeliveryResult vale, requisición y salida de inventario resultantes.
type DeliveryResult struct {
	Voucher     *entity.ExitVoucher
	Requisition *entity.Requisition
	Movement    *entity.InventoryMovement
}

// DeliverExitVoucher registra una entrega (total o parcial) del vale: salida de inventario
// imputada al centro de costo, avance del vale y avance de la requisición, todo en una transacción.
func (uc *UseCase) DeliverExitVoucher(ctx context.Context, in DeliverInput) (*DeliveryResult, error) {
	var (
		out = &DeliveryResult{}
		res *inventory.MovementResult
	)
	err := uc.movements.TxRunner().Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		v, err := repos.ExitVouchers.GetForUpdate(ctx, in.CompanyID, in.VoucherID)
		if err != nil {
			return err
		}
		if v == nil {
			return fmt.Errorf("vale %s: %w", in.VoucherID, domain.ErrNotFound)
		}
		if v.Status == entity.ExitVoucherDelivered {
			return fmt.Errorf("%w: vale %s ya entregado", domain.ErrInvalidStateTransition, v.Number)
		}
		req, err := lockRequisition(ctx, repos, in.CompanyID, v.RequisitionID)
		if err != nil {
			return err
		}

		reqLines := make(map[string]*entity.RequisitionLine, len(req.Lines))
		for _, l := range req.Lines {
			reqLines[l.ID] = l
		}
		deliveries := in.Lines
		if len(deliveries) == 0 {
			for _, vl := range v.Lines {
				if rem := delivering.Remaining(vl); rem.IsPositive() {
					deliveries = append(deliveries, DeliveryLineInput{VoucherLineID: vl.ID, Quantity: rem})
				}
			}
		}
		voucherLines := make(map[string]*entity.ExitVoucherLine, len(v.Lines))
		for _, vl := range v.Lines {
			voucherLines[vl.ID] = vl
		}

		movLines := make([]inventory.MovementLineInput, 0, len(deliveries))
		for i, dl := range deliveries {
			vl, ok := voucherLines[dl.VoucherLineID]
			if !ok {
				return domain.Invalid(fmt.Sprintf("lines[%d].voucher_line_id", i), "no pertenece al vale")
			}
			if err := delivering.Record(vl, dl.Quantity); err != nil {
				return fmt.Errorf("vale %s línea %s: %w", v.Number, vl.ProductID, err)
			}
			rl, ok := reqLines[vl.RequisitionLineID]
			if !ok {
				return fmt.Errorf("línea de requisición %s: %w", vl.RequisitionLineID, domain.ErrNotFound)
			}
			if err := serving.Record(rl, dl.Quantity); err != nil {
				return fmt.Errorf("requisición %s línea %s: %w", req.Number, rl.ProductID, err)
			}
			movLines = append(movLines, inventory.MovementLineInput{ProductID: vl.ProductID, Quantity: dl.Quantity})
		}

		receptor := v.Receptor
		res, err = uc.movements.CreateInTx(ctx, repos, inventory.MovementInput{
			CompanyID:         in.CompanyID,
			UserID:            in.UserID,
			Type:              entity.MovementTypeEXIT,
			Subtype:           entity.SubtypeRequisitionIssue,
			SourceWarehouseID: v.WarehouseID,
			CostCenterID:      req.CostCenterID,
			Reference:         &entity.DocumentReference{Kind: entity.RefExitVoucher, ID: v.ID},
			Receptor:          &receptor,
			Notes:             in.Notes,
			Lines:             movLines,
		})
		if err != nil {
			return err
		}

		now := uc.now()
		v.Status = delivering.Resolve(v.Lines, v.Status)
		v.UpdatedAt = now
		if err := repos.ExitVouchers.UpdateProgress(ctx, v); err != nil {
			return err
		}
		req.Status = serving.Resolve(req.Lines, req.Status)
		req.UpdatedAt = now
		if err := repos.Requisitions.Update(ctx, req); err != nil {
			return err
		}
		out.Voucher, out.Requisition = v, req
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.movements.AfterCommit(ctx, res)
	out.Movement = res.Movement
	uc.log.Info().
		Str("company_id", in.CompanyID).
		Str("voucher", out.Voucher.Number).
		Str("requisition", out.Requisition.Number).
		Str("movement", res.Movement.Number).
		Msg("entrega de vale de salida")
	return out, nil
}

func lockRequisition(ctx context.Context, repos inventory.TxRepos, companyID, id string) (*entity.Requisition, error) {
	req, err := repos.Requisitions.GetForUpdate(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("requisición %s: %w", id, domain.ErrNotFound)
	}
	return req, nil
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

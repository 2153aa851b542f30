// Package epp registra entregas y renovaciones de elementos de protección personal a trabajadores.
package epp

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
	domaininv "github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// UseCase casos de uso de EPP.
type UseCase struct {
	movements *inventory.MovementUseCase
	issuances repository.EppIssuanceRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(movements *inventory.MovementUseCase, issuances repository.EppIssuanceRepository, log zerolog.Logger) *UseCase {
	return &UseCase{movements: movements, issuances: issuances, log: log, now: time.Now}
}

// LineInput elemento a entregar.
type LineInput struct {
	ProductID string
	Quantity  decimal.Decimal
	Size      string
}

// IssueInput entrada para una entrega de EPP. El receptor siempre es un trabajador.
type IssueInput struct {
	CompanyID   string
	UserID      string
	WarehouseID string
	WorkerID    string
	Notes       string
	Lines       []LineInput
}

// RenewInput entrada para renovar una entrega. WarehouseID vacío usa la bodega original;
// Lines vacío repite los elementos de la entrega anterior.
type RenewInput struct {
	CompanyID   string
	UserID      string
	IssuanceID  string
	WarehouseID string
	Notes       string
	Lines       []LineInput
}

// IssueResult entrega registrada y salida de inventario.
type IssueResult struct {
	Issuance *entity.EppIssuance
	Movement *entity.InventoryMovement
}

// Issue entrega EPP a un trabajador: salida de inventario más el registro EPP-YYYYMM-000000.
func (uc *UseCase) Issue(ctx context.Context, in IssueInput) (*IssueResult, error) {
	if in.WorkerID == "" {
		return nil, domain.Invalid("worker_id", "requerido")
	}
	if in.WarehouseID == "" {
		return nil, domain.Invalid("warehouse_id", "requerido")
	}
	return uc.issue(ctx, in.CompanyID, in.UserID, in.WarehouseID, entity.Worker(in.WorkerID), "", entity.SubtypeEppIssue, in.Notes, in.Lines)
}

// Renew registra una nueva entrega enlazada a una anterior del mismo trabajador.
func (uc *UseCase) Renew(ctx context.Context, in RenewInput) (*IssueResult, error) {
	prev, err := uc.issuances.GetByID(ctx, in.CompanyID, in.IssuanceID)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, fmt.Errorf("entrega EPP %s: %w", in.IssuanceID, domain.ErrNotFound)
	}
	warehouseID := in.WarehouseID
	if warehouseID == "" {
		warehouseID = prev.WarehouseID
	}
	lines := in.Lines
	if len(lines) == 0 {
		for _, l := range prev.Lines {
			lines = append(lines, LineInput{ProductID: l.ProductID, Quantity: l.Quantity, Size: l.Size})
		}
	}
	return uc.issue(ctx, in.CompanyID, in.UserID, warehouseID, prev.Worker, prev.ID, entity.SubtypeEppRenewal, in.Notes, lines)
}

// History lista las entregas de un trabajador, la más reciente primero.
func (uc *UseCase) History(ctx context.Context, companyID, workerID string) ([]*entity.EppIssuance, error) {
	if workerID == "" {
		return nil, domain.Invalid("worker_id", "requerido")
	}
	return uc.issuances.ListByWorker(ctx, companyID, workerID)
}

func (uc *UseCase) issue(
	ctx context.Context,
	companyID, userID, warehouseID string,
	worker entity.Receptor,
	renewalOf, subtype, notes string,
	lines []LineInput,
) (*IssueResult, error) {
	if len(lines) == 0 {
		return nil, domain.Invalid("lines", "debe tener al menos una línea")
	}
	now := uc.now()
	iss := &entity.EppIssuance{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		WarehouseID: warehouseID,
		Worker:      worker,
		RenewalOf:   renewalOf,
		IssuedAt:    now,
		CreatedBy:   userID,
		CreatedAt:   now,
	}
	movLines := make([]inventory.MovementLineInput, 0, len(lines))
	for _, l := range lines {
		iss.Lines = append(iss.Lines, &entity.EppIssuanceLine{
			ID:         uuid.New().String(),
			IssuanceID: iss.ID,
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			Size:       l.Size,
		})
		movLines = append(movLines, inventory.MovementLineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	var res *inventory.MovementResult
	err := uc.movements.TxRunner().Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		var err error
		res, err = uc.movements.CreateInTx(ctx, repos, inventory.MovementInput{
			CompanyID:         companyID,
			UserID:            userID,
			Type:              entity.MovementTypeEXIT,
			Subtype:           subtype,
			SourceWarehouseID: warehouseID,
			Reference:         &entity.DocumentReference{Kind: entity.RefEppIssuance, ID: iss.ID},
			Receptor:          &worker,
			Notes:             notes,
			Lines:             movLines,
		})
		if err != nil {
			return err
		}
		number, err := uc.movements.Sequencer().Next(ctx, repos, companyID, domaininv.DocEppIssuance, now)
		if err != nil {
			return err
		}
		iss.Number = number
		iss.MovementID = res.Movement.ID
		return repos.EppIssuances.Create(ctx, iss)
	})
	if err != nil {
		return nil, err
	}
	uc.movements.AfterCommit(ctx, res)
	uc.log.Info().
		Str("company_id", companyID).
		Str("issuance", iss.Number).
		Str("worker", worker.ID).
		Str("renewal_of", renewalOf).
		Msg("entrega de EPP")
	return &IssueResult{Issuance: iss, Movement: res.Movement}, nil
}

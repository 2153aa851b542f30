// Package loans maneja préstamos de equipos y herramientas y su devolución a bodega.
package loans

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

var returning = fulfillment.Tracker[entity.EquipmentLoanLine, string]{
	Ceiling:     func(l *entity.EquipmentLoanLine) decimal.Decimal { return l.Quantity },
	Progress:    func(l *entity.EquipmentLoanLine) decimal.Decimal { return l.ReturnedQuantity },
	SetProgress: func(l *entity.EquipmentLoanLine, v decimal.Decimal) { l.ReturnedQuantity = v },
	Full:        entity.LoanReturned,
	Partial:     entity.LoanPartiallyReturned,
}

// UseCase casos de uso de préstamos.
type UseCase struct {
	movements *inventory.MovementUseCase
	loans     repository.EquipmentLoanRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(movements *inventory.MovementUseCase, loans repository.EquipmentLoanRepository, log zerolog.Logger) *UseCase {
	return &UseCase{movements: movements, loans: loans, log: log, now: time.Now}
}

// LineInput equipo y cantidad a prestar.
type LineInput struct {
	ProductID string
	Quantity  decimal.Decimal
}

// LendInput entrada para un préstamo.
type LendInput struct {
	CompanyID   string
	UserID      string
	WarehouseID string
	Borrower    entity.Receptor
	DueDate     *time.Time
	Notes       string
	Lines       []LineInput
}

// LoanResult préstamo y movimiento generado.
type LoanResult struct {
	Loan     *entity.EquipmentLoan
	Movement *entity.InventoryMovement
}

// Lend presta equipos: salida de inventario y préstamo PRE-YYYYMM-000000 en ACTIVE.
// Cada línea guarda el costo consumido para reingresar a ese mismo costo.
func (uc *UseCase) Lend(ctx context.Context, in LendInput) (*LoanResult, error) {
	if !in.Borrower.Valid() {
		return nil, domain.Invalid("borrower", "tipo o id de receptor inválido")
	}
	if in.WarehouseID == "" {
		return nil, domain.Invalid("warehouse_id", "requerido")
	}
	if len(in.Lines) == 0 {
		return nil, domain.Invalid("lines", "debe tener al menos una línea")
	}
	now := uc.now()
	if in.DueDate != nil && in.DueDate.Before(now) {
		return nil, domain.Invalid("due_date", "no puede estar en el pasado")
	}
	loan := &entity.EquipmentLoan{
		ID:          uuid.New().String(),
		CompanyID:   in.CompanyID,
		WarehouseID: in.WarehouseID,
		Borrower:    in.Borrower,
		Status:      entity.LoanActive,
		DueDate:     in.DueDate,
		CreatedBy:   in.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	movLines := make([]inventory.MovementLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		movLines = append(movLines, inventory.MovementLineInput{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	var res *inventory.MovementResult
	err := uc.movements.TxRunner().Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		var err error
		res, err = uc.movements.CreateInTx(ctx, repos, inventory.MovementInput{
			CompanyID:         in.CompanyID,
			UserID:            in.UserID,
			Type:              entity.MovementTypeEXIT,
			Subtype:           entity.SubtypeLoan,
			SourceWarehouseID: in.WarehouseID,
			Reference:         &entity.DocumentReference{Kind: entity.RefLoan, ID: loan.ID},
			Receptor:          &loan.Borrower,
			Notes:             in.Notes,
			Lines:             movLines,
		})
		if err != nil {
			return err
		}
		for _, ml := range res.Movement.Lines {
			loan.Lines = append(loan.Lines, &entity.EquipmentLoanLine{
				ID:               uuid.New().String(),
				LoanID:           loan.ID,
				ProductID:        ml.ProductID,
				Quantity:         ml.Quantity,
				ReturnedQuantity: decimal.Zero,
				UnitCost:         ml.UnitCost,
			})
		}
		number, err := uc.movements.Sequencer().Next(ctx, repos, in.CompanyID, domaininv.DocEquipmentLoan, now)
		if err != nil {
			return err
		}
		loan.Number = number
		loan.MovementID = res.Movement.ID
		return repos.Loans.Create(ctx, loan)
	})
	if err != nil {
		return nil, err
	}
	uc.movements.AfterCommit(ctx, res)
	return &LoanResult{Loan: loan, Movement: res.Movement}, nil
}

// ReturnLineInput cantidad devuelta de una línea del préstamo.
type ReturnLineInput struct {
	LoanLineID string
	Quantity   decimal.Decimal
}

// ReturnInput entrada para una devolución. Lines vacío devuelve todo lo pendiente.
type ReturnInput struct {
	CompanyID string
	UserID    string
	LoanID    string
	Notes     string
	Lines     []ReturnLineInput
}

// Return registra una devolución total o parcial: entrada a la bodega del préstamo
// al costo con que salió cada equipo.
func (uc *UseCase) Return(ctx context.Context, in ReturnInput) (*LoanResult, error) {
	var (
		loan *entity.EquipmentLoan
		res  *inventory.MovementResult
	)
	err := uc.movements.TxRunner().Run(ctx, func(ctx context.Context, repos inventory.TxRepos) error {
		var err error
		loan, err = repos.Loans.GetForUpdate(ctx, in.CompanyID, in.LoanID)
		if err != nil {
			return err
		}
		if loan == nil {
			return fmt.Errorf("préstamo %s: %w", in.LoanID, domain.ErrNotFound)
		}
		if loan.Status == entity.LoanReturned {
			return fmt.Errorf("%w: préstamo %s ya devuelto", domain.ErrInvalidStateTransition, loan.Number)
		}

		byID := make(map[string]*entity.EquipmentLoanLine, len(loan.Lines))
		for _, l := range loan.Lines {
			byID[l.ID] = l
		}
		returns := in.Lines
		if len(returns) == 0 {
			for _, l := range loan.Lines {
				if rem := returning.Remaining(l); rem.IsPositive() {
					returns = append(returns, ReturnLineInput{LoanLineID: l.ID, Quantity: rem})
				}
			}
		}
		movLines := make([]inventory.MovementLineInput, 0, len(returns))
		for i, r := range returns {
			l, ok := byID[r.LoanLineID]
			if !ok {
				return domain.Invalid(fmt.Sprintf("lines[%d].loan_line_id", i), "no pertenece al préstamo")
			}
			if err := returning.Record(l, r.Quantity); err != nil {
				return fmt.Errorf("préstamo %s línea %s: %w", loan.Number, l.ProductID, err)
			}
			movLines = append(movLines, inventory.MovementLineInput{ProductID: l.ProductID, Quantity: r.Quantity, UnitCost: l.UnitCost})
		}

		res, err = uc.movements.CreateInTx(ctx, repos, inventory.MovementInput{
			CompanyID:       in.CompanyID,
			UserID:          in.UserID,
			Type:            entity.MovementTypeENTRY,
			Subtype:         entity.SubtypeLoanReturn,
			DestWarehouseID: loan.WarehouseID,
			Reference:       &entity.DocumentReference{Kind: entity.RefLoan, ID: loan.ID},
			Receptor:        &loan.Borrower,
			Notes:           in.Notes,
			Lines:           movLines,
		})
		if err != nil {
			return err
		}
		loan.Status = returning.Resolve(loan.Lines, loan.Status)
		loan.UpdatedAt = uc.now()
		return repos.Loans.UpdateProgress(ctx, loan)
	})
	if err != nil {
		return nil, err
	}
	uc.movements.AfterCommit(ctx, res)
	uc.log.Info().
		Str("company_id", in.CompanyID).
		Str("loan", loan.Number).
		Str("status", loan.Status).
		Msg("devolución de préstamo")
	return &LoanResult{Loan: loan, Movement: res.Movement}, nil
}

// Get obtiene el préstamo con sus líneas.
func (uc *UseCase) Get(ctx context.Context, companyID, id string) (*entity.EquipmentLoan, error) {
	loan, err := uc.loans.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, domain.ErrNotFound
	}
	return loan, nil
}

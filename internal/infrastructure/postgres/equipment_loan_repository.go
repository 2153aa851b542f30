package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.EquipmentLoanRepository = (*EquipmentLoanRepo)(nil)

// EquipmentLoanRepo préstamos de equipos sobre PostgreSQL.
type EquipmentLoanRepo struct {
	q Querier
}

// NewEquipmentLoanRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEquipmentLoanRepository(q Querier) *EquipmentLoanRepo {
	return &EquipmentLoanRepo{q: q}
}

// Create persiste el préstamo con sus líneas.
func (r *EquipmentLoanRepo) Create(ctx context.Context, l *entity.EquipmentLoan) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO equipment_loans (id, company_id, number, warehouse_id, borrower_kind, borrower_id, status, due_date, movement_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		l.ID, l.CompanyID, l.Number, l.WarehouseID, string(l.Borrower.Kind), l.Borrower.ID, l.Status,
		l.DueDate, nullIfEmpty(l.MovementID), nullIfEmpty(l.CreatedBy), l.CreatedAt, l.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("préstamo %s: %w", l.Number, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert equipment loan: %w", err)
	}
	for _, line := range l.Lines {
		if line.ID == "" {
			line.ID = uuid.New().String()
		}
		line.LoanID = l.ID
		if _, err := r.q.Exec(ctx, `
			INSERT INTO equipment_loan_lines (id, loan_id, product_id, quantity, returned_quantity, unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			line.ID, line.LoanID, line.ProductID, line.Quantity, line.ReturnedQuantity, line.UnitCost); err != nil {
			return fmt.Errorf("insert equipment loan line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el préstamo con sus líneas; nil, nil si no existe.
func (r *EquipmentLoanRepo) GetByID(ctx context.Context, companyID, id string) (*entity.EquipmentLoan, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate bloquea la cabecera del préstamo.
func (r *EquipmentLoanRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.EquipmentLoan, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *EquipmentLoanRepo) get(ctx context.Context, companyID, id, lock string) (*entity.EquipmentLoan, error) {
	var (
		l                     entity.EquipmentLoan
		kind                  string
		movementID, createdBy *string
		dueDate               *time.Time
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, number, warehouse_id, borrower_kind, borrower_id, status, due_date, movement_id, created_by, created_at, updated_at
		FROM equipment_loans WHERE company_id = $1 AND id = $2`+lock, companyID, id).Scan(
		&l.ID, &l.CompanyID, &l.Number, &l.WarehouseID, &kind, &l.Borrower.ID, &l.Status,
		&dueDate, &movementID, &createdBy, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get equipment loan: %w", err)
	}
	l.Borrower.Kind = entity.ReceptorKind(kind)
	l.DueDate = dueDate
	l.MovementID, l.CreatedBy = deref(movementID), deref(createdBy)

	rows, err := r.q.Query(ctx, `
		SELECT id, loan_id, product_id, quantity, returned_quantity, unit_cost
		FROM equipment_loan_lines WHERE loan_id = $1 ORDER BY pos`, l.ID)
	if err != nil {
		return nil, fmt.Errorf("list equipment loan lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var line entity.EquipmentLoanLine
		if err := rows.Scan(&line.ID, &line.LoanID, &line.ProductID, &line.Quantity, &line.ReturnedQuantity, &line.UnitCost); err != nil {
			return nil, fmt.Errorf("scan equipment loan line: %w", err)
		}
		l.Lines = append(l.Lines, &line)
	}
	return &l, rows.Err()
}

// UpdateProgress persiste el estado y lo devuelto por línea.
func (r *EquipmentLoanRepo) UpdateProgress(ctx context.Context, l *entity.EquipmentLoan) error {
	if _, err := r.q.Exec(ctx, `UPDATE equipment_loans SET status = $2, updated_at = $3 WHERE id = $1`,
		l.ID, l.Status, l.UpdatedAt); err != nil {
		return fmt.Errorf("update equipment loan: %w", err)
	}
	for _, line := range l.Lines {
		if _, err := r.q.Exec(ctx, `UPDATE equipment_loan_lines SET returned_quantity = $2 WHERE id = $1`,
			line.ID, line.ReturnedQuantity); err != nil {
			return fmt.Errorf("update equipment loan line: %w", err)
		}
	}
	return nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.RequisitionRepository = (*RequisitionRepo)(nil)
	_ repository.ExitVoucherRepository = (*ExitVoucherRepo)(nil)
)

// RequisitionRepo requisiciones internas sobre PostgreSQL.
type RequisitionRepo struct {
	q Querier
}

// NewRequisitionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRequisitionRepository(q Querier) *RequisitionRepo {
	return &RequisitionRepo{q: q}
}

// Create persiste la requisición con sus líneas.
func (r *RequisitionRepo) Create(ctx context.Context, req *entity.Requisition) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO requisitions (id, company_id, number, cost_center_id, requester_kind, requester_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		req.ID, req.CompanyID, req.Number, nullIfEmpty(req.CostCenterID),
		string(req.Requester.Kind), req.Requester.ID, req.Status, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("requisición %s: %w", req.Number, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert requisition: %w", err)
	}
	for _, l := range req.Lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.RequisitionID = req.ID
		if _, err := r.q.Exec(ctx, `
			INSERT INTO requisition_lines (id, requisition_id, product_id, requested_quantity, approved_quantity, delivered_quantity)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.RequisitionID, l.ProductID, l.RequestedQuantity, l.ApprovedQuantity, l.DeliveredQuantity); err != nil {
			return fmt.Errorf("insert requisition line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la requisición con sus líneas; nil, nil si no existe.
func (r *RequisitionRepo) GetByID(ctx context.Context, companyID, id string) (*entity.Requisition, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate bloquea la cabecera de la requisición.
func (r *RequisitionRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.Requisition, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *RequisitionRepo) get(ctx context.Context, companyID, id, lock string) (*entity.Requisition, error) {
	var (
		req        entity.Requisition
		costCenter *string
		kind       string
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, number, cost_center_id, requester_kind, requester_id, status, created_at, updated_at
		FROM requisitions WHERE company_id = $1 AND id = $2`+lock, companyID, id).Scan(
		&req.ID, &req.CompanyID, &req.Number, &costCenter, &kind, &req.Requester.ID, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get requisition: %w", err)
	}
	req.CostCenterID = deref(costCenter)
	req.Requester.Kind = entity.ReceptorKind(kind)

	rows, err := r.q.Query(ctx, `
		SELECT id, requisition_id, product_id, requested_quantity, approved_quantity, delivered_quantity
		FROM requisition_lines WHERE requisition_id = $1 ORDER BY pos`, req.ID)
	if err != nil {
		return nil, fmt.Errorf("list requisition lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.RequisitionLine
		if err := rows.Scan(&l.ID, &l.RequisitionID, &l.ProductID, &l.RequestedQuantity, &l.ApprovedQuantity, &l.DeliveredQuantity); err != nil {
			return nil, fmt.Errorf("scan requisition line: %w", err)
		}
		req.Lines = append(req.Lines, &l)
	}
	return &req, rows.Err()
}

// Update persiste estado, cantidades aprobadas y entregadas.
func (r *RequisitionRepo) Update(ctx context.Context, req *entity.Requisition) error {
	if _, err := r.q.Exec(ctx, `UPDATE requisitions SET status = $2, updated_at = $3 WHERE id = $1`,
		req.ID, req.Status, req.UpdatedAt); err != nil {
		return fmt.Errorf("update requisition: %w", err)
	}
	for _, l := range req.Lines {
		if _, err := r.q.Exec(ctx, `
			UPDATE requisition_lines SET approved_quantity = $2, delivered_quantity = $3 WHERE id = $1`,
			l.ID, l.ApprovedQuantity, l.DeliveredQuantity); err != nil {
			return fmt.Errorf("update requisition line: %w", err)
		}
	}
	return nil
}

// ExitVoucherRepo vales de salida sobre PostgreSQL.
type ExitVoucherRepo struct {
	q Querier
}

// NewExitVoucherRepository construye el adaptador. Pasar pool o tx (Querier).
func NewExitVoucherRepository(q Querier) *ExitVoucherRepo {
	return &ExitVoucherRepo{q: q}
}

// Create persiste el vale con sus líneas.
func (r *ExitVoucherRepo) Create(ctx context.Context, v *entity.ExitVoucher) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO exit_vouchers (id, company_id, number, requisition_id, warehouse_id, receptor_kind, receptor_id, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		v.ID, v.CompanyID, v.Number, v.RequisitionID, v.WarehouseID,
		string(v.Receptor.Kind), v.Receptor.ID, v.Status, nullIfEmpty(v.CreatedBy), v.CreatedAt, v.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("vale %s: %w", v.Number, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert exit voucher: %w", err)
	}
	for _, l := range v.Lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.VoucherID = v.ID
		if _, err := r.q.Exec(ctx, `
			INSERT INTO exit_voucher_lines (id, voucher_id, requisition_line_id, product_id, quantity, delivered_quantity)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.VoucherID, l.RequisitionLineID, l.ProductID, l.Quantity, l.DeliveredQuantity); err != nil {
			return fmt.Errorf("insert exit voucher line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene el vale con sus líneas; nil, nil si no existe.
func (r *ExitVoucherRepo) GetByID(ctx context.Context, companyID, id string) (*entity.ExitVoucher, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate bloquea la cabecera del vale.
func (r *ExitVoucherRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.ExitVoucher, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *ExitVoucherRepo) get(ctx context.Context, companyID, id, lock string) (*entity.ExitVoucher, error) {
	var (
		v         entity.ExitVoucher
		kind      string
		createdBy *string
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, number, requisition_id, warehouse_id, receptor_kind, receptor_id, status, created_by, created_at, updated_at
		FROM exit_vouchers WHERE company_id = $1 AND id = $2`+lock, companyID, id).Scan(
		&v.ID, &v.CompanyID, &v.Number, &v.RequisitionID, &v.WarehouseID, &kind, &v.Receptor.ID,
		&v.Status, &createdBy, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get exit voucher: %w", err)
	}
	v.Receptor.Kind = entity.ReceptorKind(kind)
	v.CreatedBy = deref(createdBy)

	rows, err := r.q.Query(ctx, `
		SELECT id, voucher_id, requisition_line_id, product_id, quantity, delivered_quantity
		FROM exit_voucher_lines WHERE voucher_id = $1 ORDER BY pos`, v.ID)
	if err != nil {
		return nil, fmt.Errorf("list exit voucher lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.ExitVoucherLine
		if err := rows.Scan(&l.ID, &l.VoucherID, &l.RequisitionLineID, &l.ProductID, &l.Quantity, &l.DeliveredQuantity); err != nil {
			return nil, fmt.Errorf("scan exit voucher line: %w", err)
		}
		v.Lines = append(v.Lines, &l)
	}
	return &v, rows.Err()
}

// UpdateProgress persiste el estado y lo entregado por línea.
func (r *ExitVoucherRepo) UpdateProgress(ctx context.Context, v *entity.ExitVoucher) error {
	if _, err := r.q.Exec(ctx, `UPDATE exit_vouchers SET status = $2, updated_at = $3 WHERE id = $1`,
		v.ID, v.Status, v.UpdatedAt); err != nil {
		return fmt.Errorf("update exit voucher: %w", err)
	}
	for _, l := range v.Lines {
		if _, err := r.q.Exec(ctx, `UPDATE exit_voucher_lines SET delivered_quantity = $2 WHERE id = $1`,
			l.ID, l.DeliveredQuantity); err != nil {
			return fmt.Errorf("update exit voucher line: %w", err)
		}
	}
	return nil
}

// OpenByRequisitionLine suma lo pendiente por entregar en vales abiertos de la requisición.
func (r *ExitVoucherRepo) OpenByRequisitionLine(ctx context.Context, companyID, requisitionID string) (map[string]decimal.Decimal, error) {
	rows, err := r.q.Query(ctx, `
		SELECT l.requisition_line_id, SUM(l.quantity - l.delivered_quantity)
		FROM exit_voucher_lines l
		JOIN exit_vouchers v ON v.id = l.voucher_id
		WHERE v.company_id = $1 AND v.requisition_id = $2 AND v.status <> $3
		GROUP BY l.requisition_line_id`, companyID, requisitionID, entity.ExitVoucherDelivered)
	if err != nil {
		return nil, fmt.Errorf("open exit voucher quantities: %w", err)
	}
	defer rows.Close()
	open := make(map[string]decimal.Decimal)
	for rows.Next() {
		var (
			lineID string
			qty    decimal.Decimal
		)
		if err := rows.Scan(&lineID, &qty); err != nil {
			return nil, fmt.Errorf("scan open exit voucher quantity: %w", err)
		}
		open[lineID] = qty
	}
	return open, rows.Err()
}

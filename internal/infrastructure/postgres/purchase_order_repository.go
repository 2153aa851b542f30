package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

// PurchaseOrderRepo órdenes de compra y cotizaciones sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create persiste la orden con sus líneas.
func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_orders (id, company_id, number, supplier_id, warehouse_id, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.CompanyID, o.Number, o.SupplierID, o.WarehouseID, o.Status, nullIfEmpty(o.CreatedBy), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("orden %s: %w", o.Number, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert purchase order: %w", err)
	}
	for _, l := range o.Lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.OrderID = o.ID
		if _, err := r.q.Exec(ctx, `
			INSERT INTO purchase_order_lines (id, order_id, product_id, quantity, received_quantity, unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.OrderID, l.ProductID, l.Quantity, l.ReceivedQuantity, l.UnitCost); err != nil {
			return fmt.Errorf("insert purchase order line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la orden con sus líneas; nil, nil si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate bloquea la cabecera de la orden.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *PurchaseOrderRepo) get(ctx context.Context, companyID, id, lock string) (*entity.PurchaseOrder, error) {
	var (
		o         entity.PurchaseOrder
		createdBy *string
	)
	err := r.q.QueryRow(ctx, `
		SELECT id, company_id, number, supplier_id, warehouse_id, status, created_by, created_at, updated_at
		FROM purchase_orders WHERE company_id = $1 AND id = $2`+lock, companyID, id).Scan(
		&o.ID, &o.CompanyID, &o.Number, &o.SupplierID, &o.WarehouseID, &o.Status, &createdBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	o.CreatedBy = deref(createdBy)

	rows, err := r.q.Query(ctx, `
		SELECT id, order_id, product_id, quantity, received_quantity, unit_cost
		FROM purchase_order_lines WHERE order_id = $1 ORDER BY pos`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("list purchase order lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.PurchaseOrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.ReceivedQuantity, &l.UnitCost); err != nil {
			return nil, fmt.Errorf("scan purchase order line: %w", err)
		}
		o.Lines = append(o.Lines, &l)
	}
	return &o, rows.Err()
}

// UpdateProgress persiste el estado y lo recibido por línea.
func (r *PurchaseOrderRepo) UpdateProgress(ctx context.Context, o *entity.PurchaseOrder) error {
	if _, err := r.q.Exec(ctx, `UPDATE purchase_orders SET status = $2, updated_at = $3 WHERE id = $1`,
		o.ID, o.Status, o.UpdatedAt); err != nil {
		return fmt.Errorf("update purchase order: %w", err)
	}
	for _, l := range o.Lines {
		if _, err := r.q.Exec(ctx, `UPDATE purchase_order_lines SET received_quantity = $2 WHERE id = $1`,
			l.ID, l.ReceivedQuantity); err != nil {
			return fmt.Errorf("update purchase order line: %w", err)
		}
	}
	return nil
}

// CreateQuotation persiste una cotización.
func (r *PurchaseOrderRepo) CreateQuotation(ctx context.Context, q *entity.Quotation) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO quotations (id, company_id, number, supplier_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		q.ID, q.CompanyID, q.Number, q.SupplierID, q.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("cotización %s: %w", q.Number, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert quotation: %w", err)
	}
	return nil
}

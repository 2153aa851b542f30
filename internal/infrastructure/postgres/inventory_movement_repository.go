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

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

const movementColumns = `id, company_id, number, type, subtype, source_warehouse_id, dest_warehouse_id,
	supplier_id, cost_center_id, reference_kind, reference_id, receptor_kind, receptor_id,
	date, status, notes, created_by, voided_by, voided_at, void_reason, created_at, updated_at`

// Create persiste la cabecera y sus líneas. El número es único por empresa.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	var refKind, refID, recKind, recID *string
	if m.Reference != nil {
		refKind, refID = nullIfEmpty(string(m.Reference.Kind)), nullIfEmpty(m.Reference.ID)
	}
	if m.Receptor != nil {
		recKind, recID = nullIfEmpty(string(m.Receptor.Kind)), nullIfEmpty(m.Receptor.ID)
	}
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.CompanyID, m.Number, m.Type, m.Subtype,
		nullIfEmpty(m.SourceWarehouseID), nullIfEmpty(m.DestWarehouseID),
		nullIfEmpty(m.SupplierID), nullIfEmpty(m.CostCenterID),
		refKind, refID, recKind, recID,
		m.Date, m.Status, m.Notes, nullIfEmpty(m.CreatedBy),
		nullIfEmpty(m.VoidedBy), m.VoidedAt, nullIfEmpty(m.VoidReason),
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("movimiento %s: %w", m.Number, domain.ErrDuplicate)
		}
		return fmt.Errorf("create inventory movement: %w", err)
	}

	lineQuery := `
		INSERT INTO inventory_movement_lines (id, movement_id, line_no, product_id, quantity, unit_cost, total_cost, direction, lot_number, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, l := range m.Lines {
		if l.ID == "" {
			l.ID = uuid.New().String()
		}
		l.MovementID = m.ID
		if _, err := r.q.Exec(ctx, lineQuery,
			l.ID, l.MovementID, l.LineNo, l.ProductID, l.Quantity, l.UnitCost, l.TotalCost,
			l.Direction, nullIfEmpty(l.LotNumber), l.ExpiryDate,
		); err != nil {
			return fmt.Errorf("create movement line %d: %w", l.LineNo, err)
		}
	}
	return nil
}

// GetByID obtiene un movimiento de la empresa con sus líneas; nil, nil si no existe.
func (r *InventoryMovementRepo) GetByID(ctx context.Context, companyID, id string) (*entity.InventoryMovement, error) {
	return r.get(ctx, companyID, id, "")
}

// GetForUpdate bloquea la cabecera (SELECT FOR UPDATE) y carga las líneas.
func (r *InventoryMovementRepo) GetForUpdate(ctx context.Context, companyID, id string) (*entity.InventoryMovement, error) {
	return r.get(ctx, companyID, id, " FOR UPDATE")
}

func (r *InventoryMovementRepo) get(ctx context.Context, companyID, id, lock string) (*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE company_id = $1 AND id = $2` + lock
	m, err := scanMovement(r.q.QueryRow(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	lines, err := r.lines(ctx, []string{m.ID})
	if err != nil {
		return nil, err
	}
	m.Lines = lines[m.ID]
	return m, nil
}

// UpdateStatus persiste estado, notas y datos de anulación.
func (r *InventoryMovementRepo) UpdateStatus(ctx context.Context, m *entity.InventoryMovement) error {
	query := `
		UPDATE inventory_movements
		SET status = $3, notes = $4, voided_by = $5, voided_at = $6, void_reason = $7, updated_at = $8
		WHERE company_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, m.CompanyID, m.ID, m.Status, m.Notes,
		nullIfEmpty(m.VoidedBy), m.VoidedAt, nullIfEmpty(m.VoidReason), m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update movement status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("movimiento %s: %w", m.ID, domain.ErrNotFound)
	}
	return nil
}

// List lista movimientos por fecha descendente con sus líneas.
func (r *InventoryMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	w := &whereBuilder{}
	w.add("company_id = ?", f.CompanyID)
	if f.WarehouseID != "" {
		p := w.next(f.WarehouseID)
		w.clauses = append(w.clauses, fmt.Sprintf("(source_warehouse_id = %s OR dest_warehouse_id = %s)", p, p))
	}
	if f.Type != "" {
		w.add("type = ?", f.Type)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.From != nil {
		w.add("date >= ?", *f.From)
	}
	if f.To != nil {
		w.add("date <= ?", *f.To)
	}
	query := `SELECT ` + movementColumns + ` FROM inventory_movements` + w.sql() + " ORDER BY date DESC, number DESC" +
		pageSQL(w, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	var (
		list []*entity.InventoryMovement
		ids  []string
	)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
		ids = append(ids, m.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	if len(ids) == 0 {
		return list, nil
	}
	lines, err := r.lines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, m := range list {
		m.Lines = lines[m.ID]
	}
	return list, nil
}

func (r *InventoryMovementRepo) lines(ctx context.Context, movementIDs []string) (map[string][]*entity.MovementLine, error) {
	query := `
		SELECT id, movement_id, line_no, product_id, quantity, unit_cost, total_cost, direction, lot_number, expiry_date
		FROM inventory_movement_lines WHERE movement_id = ANY($1) ORDER BY movement_id, line_no`
	rows, err := r.q.Query(ctx, query, movementIDs)
	if err != nil {
		return nil, fmt.Errorf("list movement lines: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]*entity.MovementLine, len(movementIDs))
	for rows.Next() {
		var (
			l   entity.MovementLine
			lot *string
		)
		if err := rows.Scan(&l.ID, &l.MovementID, &l.LineNo, &l.ProductID, &l.Quantity, &l.UnitCost,
			&l.TotalCost, &l.Direction, &lot, &l.ExpiryDate); err != nil {
			return nil, fmt.Errorf("scan movement line: %w", err)
		}
		l.LotNumber = deref(lot)
		out[l.MovementID] = append(out[l.MovementID], &l)
	}
	return out, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var (
		m                               entity.InventoryMovement
		src, dst, supplier, costCenter  *string
		refKind, refID, recKind, recID  *string
		createdBy, voidedBy, voidReason *string
		voidedAt                        *time.Time
	)
	err := row.Scan(&m.ID, &m.CompanyID, &m.Number, &m.Type, &m.Subtype, &src, &dst,
		&supplier, &costCenter, &refKind, &refID, &recKind, &recID,
		&m.Date, &m.Status, &m.Notes, &createdBy, &voidedBy, &voidedAt, &voidReason,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.SourceWarehouseID, m.DestWarehouseID = deref(src), deref(dst)
	m.SupplierID, m.CostCenterID = deref(supplier), deref(costCenter)
	m.CreatedBy, m.VoidedBy, m.VoidReason = deref(createdBy), deref(voidedBy), deref(voidReason)
	m.VoidedAt = voidedAt
	if refKind != nil {
		m.Reference = &entity.DocumentReference{Kind: entity.ReferenceKind(*refKind), ID: deref(refID)}
	}
	if recKind != nil {
		m.Receptor = &entity.Receptor{Kind: entity.ReceptorKind(*recKind), ID: deref(recID)}
	}
	return &m, nil
}

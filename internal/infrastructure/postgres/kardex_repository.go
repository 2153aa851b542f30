package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.KardexRepository = (*KardexRepo)(nil)

// KardexRepo libro valorizado sobre PostgreSQL. La tabla no admite UPDATE ni DELETE.
type KardexRepo struct {
	q Querier
}

// NewKardexRepository construye el adaptador. Pasar pool o tx (Querier).
func NewKardexRepository(q Querier) *KardexRepo {
	return &KardexRepo{q: q}
}

const kardexColumns = `id, seq, company_id, product_id, warehouse_id, movement_id, date, operation,
	quantity, unit_cost, total_cost, balance_quantity, balance_unit_cost, balance_total, description, created_at`

// Append inserta el registro; seq lo asigna la identidad de la tabla.
func (r *KardexRepo) Append(ctx context.Context, e *entity.KardexEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO kardex_entries (id, company_id, product_id, warehouse_id, movement_id, date, operation,
			quantity, unit_cost, total_cost, balance_quantity, balance_unit_cost, balance_total, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING seq`
	err := r.q.QueryRow(ctx, query,
		e.ID, e.CompanyID, e.ProductID, e.WarehouseID, nullIfEmpty(e.MovementID), e.Date, e.Operation,
		e.Quantity, e.UnitCost, e.TotalCost, e.BalanceQuantity, e.BalanceUnitCost, e.BalanceTotal,
		e.Description, e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		return fmt.Errorf("append kardex: %w", err)
	}
	return nil
}

// List devuelve el kardex de un producto ordenado por (fecha, seq).
func (r *KardexRepo) List(ctx context.Context, f repository.KardexFilter) ([]*entity.KardexEntry, error) {
	w := &whereBuilder{}
	w.add("company_id = ?", f.CompanyID)
	w.add("product_id = ?", f.ProductID)
	if f.WarehouseID != "" {
		w.add("warehouse_id = ?", f.WarehouseID)
	}
	if f.From != nil {
		w.add("date >= ?", *f.From)
	}
	if f.To != nil {
		w.add("date <= ?", *f.To)
	}
	query := `SELECT ` + kardexColumns + ` FROM kardex_entries` + w.sql() + " ORDER BY date, seq" +
		pageSQL(w, f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list kardex: %w", err)
	}
	defer rows.Close()
	var list []*entity.KardexEntry
	for rows.Next() {
		e, err := scanKardex(rows)
		if err != nil {
			return nil, fmt.Errorf("scan kardex: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// MovementsAfter lista los movimientos con registros posteriores (por seq) al último de movementID en el saldo.
func (r *KardexRepo) MovementsAfter(ctx context.Context, key entity.BalanceKey, movementID string) ([]string, error) {
	query := `
		SELECT DISTINCT COALESCE(movement_id, '') FROM kardex_entries
		WHERE company_id = $1 AND product_id = $2 AND warehouse_id = $3
		  AND seq > (
			SELECT COALESCE(MAX(seq), 0) FROM kardex_entries
			WHERE company_id = $1 AND product_id = $2 AND warehouse_id = $3 AND movement_id = $4)
		  AND movement_id IS DISTINCT FROM $4`
	rows, err := r.q.Query(ctx, query, key.CompanyID, key.ProductID, key.WarehouseID, movementID)
	if err != nil {
		return nil, fmt.Errorf("kardex movements after: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan kardex movement: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanKardex(row pgx.Row) (*entity.KardexEntry, error) {
	var (
		e          entity.KardexEntry
		movementID *string
	)
	err := row.Scan(&e.ID, &e.Seq, &e.CompanyID, &e.ProductID, &e.WarehouseID, &movementID, &e.Date, &e.Operation,
		&e.Quantity, &e.UnitCost, &e.TotalCost, &e.BalanceQuantity, &e.BalanceUnitCost, &e.BalanceTotal,
		&e.Description, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.MovementID = deref(movementID)
	return &e, nil
}

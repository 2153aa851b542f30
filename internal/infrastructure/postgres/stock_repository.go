package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `id, company_id, product_id, warehouse_id, quantity, unit_cost, min_stock, max_stock, created_at, updated_at`

func scanBalance(row pgx.Row) (*entity.StockBalance, error) {
	var b entity.StockBalance
	err := row.Scan(&b.ID, &b.CompanyID, &b.ProductID, &b.WarehouseID,
		&b.Quantity, &b.UnitCost, &b.MinStock, &b.MaxStock, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Get obtiene el saldo actual; si no existe devuelve un saldo en cero sin ID.
func (r *StockRepo) Get(ctx context.Context, key entity.BalanceKey) (*entity.StockBalance, error) {
	query := `SELECT ` + stockColumns + `
		FROM stock_balances WHERE company_id = $1 AND product_id = $2 AND warehouse_id = $3`
	b, err := scanBalance(r.q.QueryRow(ctx, query, key.CompanyID, key.ProductID, key.WarehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zeroBalance(key), nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return b, nil
}

// GetForUpdate crea la fila en cero si no existe y la bloquea (SELECT FOR UPDATE).
// Insertar primero garantiza que el bloqueo exista también para el primer movimiento del producto.
func (r *StockRepo) GetForUpdate(ctx context.Context, key entity.BalanceKey) (*entity.StockBalance, error) {
	now := time.Now()
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_balances (id, company_id, product_id, warehouse_id, quantity, unit_cost, min_stock, max_stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, 0, 0, 0, $5, $5)
		ON CONFLICT (company_id, product_id, warehouse_id) DO NOTHING`,
		uuid.New().String(), key.CompanyID, key.ProductID, key.WarehouseID, now)
	if err != nil {
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}
	query := `SELECT ` + stockColumns + `
		FROM stock_balances WHERE company_id = $1 AND product_id = $2 AND warehouse_id = $3
		FOR UPDATE`
	b, err := scanBalance(r.q.QueryRow(ctx, query, key.CompanyID, key.ProductID, key.WarehouseID))
	if err != nil {
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return b, nil
}

// Upsert inserta o actualiza cantidad, costo y umbrales del saldo.
func (r *StockRepo) Upsert(ctx context.Context, b *entity.StockBalance) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	query := `
		INSERT INTO stock_balances (` + stockColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (company_id, product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, unit_cost = EXCLUDED.unit_cost,
			min_stock = EXCLUDED.min_stock, max_stock = EXCLUDED.max_stock, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, b.ID, b.CompanyID, b.ProductID, b.WarehouseID,
		b.Quantity, b.UnitCost, b.MinStock, b.MaxStock, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

// ListByWarehouse lista los saldos de una bodega.
func (r *StockRepo) ListByWarehouse(ctx context.Context, companyID, warehouseID string) ([]*entity.StockBalance, error) {
	query := `SELECT ` + stockColumns + `
		FROM stock_balances WHERE company_id = $1 AND warehouse_id = $2 ORDER BY product_id`
	return r.list(ctx, "list stock by warehouse", query, companyID, warehouseID)
}

// ListBelowMinimum lista saldos bajo el mínimo. warehouseID vacío incluye todas las bodegas.
func (r *StockRepo) ListBelowMinimum(ctx context.Context, companyID, warehouseID string) ([]*entity.StockBalance, error) {
	query := `SELECT ` + stockColumns + `
		FROM stock_balances
		WHERE company_id = $1 AND ($2 = '' OR warehouse_id::text = $2)
		  AND min_stock > 0 AND quantity < min_stock
		ORDER BY warehouse_id, product_id`
	return r.list(ctx, "list stock below minimum", query, companyID, warehouseID)
}

func (r *StockRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.StockBalance, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var list []*entity.StockBalance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func zeroBalance(key entity.BalanceKey) *entity.StockBalance {
	return &entity.StockBalance{
		CompanyID:   key.CompanyID,
		ProductID:   key.ProductID,
		WarehouseID: key.WarehouseID,
		Quantity:    decimal.Zero,
		UnitCost:    decimal.Zero,
		MinStock:    decimal.Zero,
		MaxStock:    decimal.Zero,
	}
}

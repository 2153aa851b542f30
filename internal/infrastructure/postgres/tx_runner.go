package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Los bloqueos de fila (saldo, cabecera, contador) se liberan al terminar.
func (r *TxRunner) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// NewRepos construye todos los repositorios sobre un Querier (pool para lecturas, tx dentro de Run).
func NewRepos(q Querier) inventory.TxRepos {
	return inventory.TxRepos{
		Movements:      NewInventoryMovementRepository(q),
		Stock:          NewStockRepository(q),
		Kardex:         NewKardexRepository(q),
		Sequences:      NewSequenceRepository(q),
		Products:       NewProductRepository(q),
		Warehouses:     NewWarehouseRepository(q),
		PurchaseOrders: NewPurchaseOrderRepository(q),
		Requisitions:   NewRequisitionRepository(q),
		ExitVouchers:   NewExitVoucherRepository(q),
		EppIssuances:   NewEppIssuanceRepository(q),
		Loans:          NewEquipmentLoanRepository(q),
	}
}

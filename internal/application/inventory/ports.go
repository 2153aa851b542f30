package inventory

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRepos agrupa los repositorios atados a una misma transacción.
type TxRepos struct {
	Movements      repository.InventoryMovementRepository
	Stock          repository.StockRepository
	Kardex         repository.KardexRepository
	Sequences      repository.SequenceRepository
	Products       repository.ProductRepository
	Warehouses     repository.WarehouseRepository
	PurchaseOrders repository.PurchaseOrderRepository
	Requisitions   repository.RequisitionRepository
	ExitVouchers   repository.ExitVoucherRepository
	EppIssuances   repository.EppIssuanceRepository
	Loans          repository.EquipmentLoanRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback de todo: cabecera, líneas, saldos y kardex.
type TxRunner interface {
	Run(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}

// MetricsRecorder recibe eventos del motor para métricas operativas.
type MetricsRecorder interface {
	MovementRecorded(movementType, subtype string)
	TransferConfirmed()
	MovementVoided(movementType string)
	StockRejected()
	ReversalClamped()
}

// BalancePublisher recibe los saldos afectados una vez confirmada la transacción.
type BalancePublisher interface {
	Publish(ctx context.Context, balances []*entity.StockBalance)
}

type nopMetrics struct{}

func (nopMetrics) MovementRecorded(string, string) {}
func (nopMetrics) TransferConfirmed()              {}
func (nopMetrics) MovementVoided(string)           {}
func (nopMetrics) StockRejected()                  {}
func (nopMetrics) ReversalClamped()                {}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, []*entity.StockBalance) {}

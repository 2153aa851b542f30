package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// KardexEvent describe una afectación ya aplicada a un saldo.
type KardexEvent struct {
	MovementID  string
	Date        time.Time
	Operation   string
	Quantity    decimal.Decimal
	UnitCost    decimal.Decimal
	Description string
}

// KardexAppender escribe un registro por cada mutación de saldo, justo después de aplicarla,
// con la foto del saldo resultante. Así el orden del kardex refleja el orden de las mutaciones.
type KardexAppender struct {
	now func() time.Time
}

// NewKardexAppender construye el escritor del kardex.
func NewKardexAppender() *KardexAppender {
	return &KardexAppender{now: time.Now}
}

// Append registra ev sobre el saldo b (ya mutado).
func (a *KardexAppender) Append(ctx context.Context, repo repository.KardexRepository, b *entity.StockBalance, ev KardexEvent) (*entity.KardexEntry, error) {
	entry := &entity.KardexEntry{
		ID:              uuid.New().String(),
		CompanyID:       b.CompanyID,
		ProductID:       b.ProductID,
		WarehouseID:     b.WarehouseID,
		MovementID:      ev.MovementID,
		Date:            ev.Date,
		Operation:       ev.Operation,
		Quantity:        ev.Quantity,
		UnitCost:        ev.UnitCost,
		TotalCost:       ev.Quantity.Mul(ev.UnitCost),
		BalanceQuantity: b.Quantity,
		BalanceUnitCost: b.UnitCost,
		BalanceTotal:    b.TotalValue(),
		Description:     ev.Description,
		CreatedAt:       a.now(),
	}
	if err := repo.Append(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

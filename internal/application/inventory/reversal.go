package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// ReversalEngine deshace el efecto de un movimiento sobre los saldos y escribe
// un registro compensatorio en el kardex por cada saldo que toca.
//
//	ENTRY               resta en destino (piso 0, costo sin cambio)
//	EXIT                reingresa en origen al costo consumido
//	TRANSFER PENDING    reingresa en origen
//	TRANSFER COMPLETED  reingresa en origen y resta en destino
//	ADJUSTMENT          como ENTRY o EXIT según la dirección de cada línea
type ReversalEngine struct {
	costing         *CostingEngine
	ledger          *KardexAppender
	allowOutOfOrder bool
	metrics         MetricsRecorder
	log             zerolog.Logger
	now             func() time.Time
}

// Reverse aplica la reversión de mov (ya bloqueado con FOR UPDATE). No cambia el estado del movimiento.
func (r *ReversalEngine) Reverse(ctx context.Context, repos TxRepos, mov *entity.InventoryMovement, res *MovementResult) error {
	if mov.Status == entity.MovementStatusVoided {
		return &domain.StateTransitionError{MovementID: mov.ID, From: mov.Status, Action: "anular"}
	}
	if !r.allowOutOfOrder {
		if err := r.ensureLatest(ctx, repos, mov); err != nil {
			return err
		}
	}
	for _, line := range mov.Lines {
		var err error
		switch mov.Type {
		case entity.MovementTypeENTRY:
			err = r.decrease(ctx, repos, mov, line, mov.DestWarehouseID, entity.KardexOpExit, res)
		case entity.MovementTypeEXIT:
			err = r.increase(ctx, repos, mov, line, mov.SourceWarehouseID, entity.KardexOpEntry, res)
		case entity.MovementTypeTRANSFER:
			err = r.increase(ctx, repos, mov, line, mov.SourceWarehouseID, entity.KardexOpEntry, res)
			if err == nil && mov.Status == entity.MovementStatusCompleted {
				err = r.decrease(ctx, repos, mov, line, mov.DestWarehouseID, entity.KardexOpExit, res)
			}
		case entity.MovementTypeADJUSTMENT:
			if line.Direction == entity.DirectionIncrease {
				err = r.decrease(ctx, repos, mov, line, mov.AdjustedWarehouseID(), entity.KardexOpNegativeAdjust, res)
			} else {
				err = r.increase(ctx, repos, mov, line, mov.AdjustedWarehouseID(), entity.KardexOpPositiveAdjust, res)
			}
		default:
			err = domain.Invalid("type", "tipo de movimiento desconocido")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *ReversalEngine) increase(ctx context.Context, repos TxRepos, mov *entity.InventoryMovement, line *entity.MovementLine, warehouseID, op string, res *MovementResult) error {
	key := entity.BalanceKey{CompanyID: mov.CompanyID, ProductID: line.ProductID, WarehouseID: warehouseID}
	balance, err := r.costing.ApplyReceipt(ctx, repos.Stock, key, line.Quantity, line.UnitCost)
	if err != nil {
		return err
	}
	if _, err := r.ledger.Append(ctx, repos.Kardex, balance, KardexEvent{
		MovementID:  mov.ID,
		Date:        r.now(),
		Operation:   op,
		Quantity:    line.Quantity,
		UnitCost:    line.UnitCost,
		Description: "Anulación " + mov.Number,
	}); err != nil {
		return err
	}
	res.touch(balance)
	return nil
}

func (r *ReversalEngine) decrease(ctx context.Context, repos TxRepos, mov *entity.InventoryMovement, line *entity.MovementLine, warehouseID, op string, res *MovementResult) error {
	key := entity.BalanceKey{CompanyID: mov.CompanyID, ProductID: line.ProductID, WarehouseID: warehouseID}
	balance, removed, err := r.costing.ApplyReversalDecrease(ctx, repos.Stock, key, line.Quantity)
	if err != nil {
		return err
	}
	if removed.LessThan(line.Quantity) {
		r.metrics.ReversalClamped()
		r.log.Warn().
			Str("company_id", mov.CompanyID).
			Str("movement_id", mov.ID).
			Str("number", mov.Number).
			Str("product_id", line.ProductID).
			Str("warehouse_id", warehouseID).
			Str("requested", line.Quantity.String()).
			Str("removed", removed.String()).
			Msg("reversión limitada por saldo insuficiente")
	}
	if removed.IsZero() {
		return nil
	}
	if _, err := r.ledger.Append(ctx, repos.Kardex, balance, KardexEvent{
		MovementID:  mov.ID,
		Date:        r.now(),
		Operation:   op,
		Quantity:    removed,
		UnitCost:    balance.UnitCost,
		Description: "Anulación " + mov.Number,
	}); err != nil {
		return err
	}
	res.touch(balance)
	return nil
}

// ensureLatest rechaza la anulación si algún saldo afectado tiene registros posteriores
// de movimientos vigentes. Los registros de movimientos ya anulados (y sus compensaciones) no cuentan.
func (r *ReversalEngine) ensureLatest(ctx context.Context, repos TxRepos, mov *entity.InventoryMovement) error {
	for _, line := range mov.Lines {
		for _, wh := range touchedWarehouses(mov) {
			key := entity.BalanceKey{CompanyID: mov.CompanyID, ProductID: line.ProductID, WarehouseID: wh}
			later, err := repos.Kardex.MovementsAfter(ctx, key, mov.ID)
			if err != nil {
				return err
			}
			for _, id := range later {
				voided, err := isVoided(ctx, repos, mov.CompanyID, id)
				if err != nil {
					return err
				}
				if !voided {
					return fmt.Errorf("%w: producto %s en bodega %s tiene movimientos posteriores",
						&domain.StateTransitionError{MovementID: mov.ID, From: mov.Status, Action: "anular"},
						line.ProductID, wh)
				}
			}
		}
	}
	return nil
}

func isVoided(ctx context.Context, repos TxRepos, companyID, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	other, err := repos.Movements.GetByID(ctx, companyID, id)
	if err != nil {
		return false, err
	}
	return other != nil && other.Status == entity.MovementStatusVoided, nil
}

func touchedWarehouses(mov *entity.InventoryMovement) []string {
	switch mov.Type {
	case entity.MovementTypeENTRY:
		return []string{mov.DestWarehouseID}
	case entity.MovementTypeEXIT:
		return []string{mov.SourceWarehouseID}
	case entity.MovementTypeTRANSFER:
		if mov.Status == entity.MovementStatusCompleted {
			return []string{mov.SourceWarehouseID, mov.DestWarehouseID}
		}
		return []string{mov.SourceWarehouseID}
	}
	return []string{mov.AdjustedWarehouseID()}
}

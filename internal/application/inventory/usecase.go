package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// Options ajusta el comportamiento del motor.
type Options struct {
	SequenceMaxAttempts int
	// AllowOutOfOrderVoid permite anular un movimiento que ya no es el último en el kardex de algún saldo.
	AllowOutOfOrderVoid bool
}

// MovementUseCase registra, confirma y anula movimientos de inventario de forma transaccional
// (ENTRY, EXIT, TRANSFER, ADJUSTMENT) con bloqueo de fila (SELECT FOR UPDATE) y Commit/Rollback.
type MovementUseCase struct {
	txRunner  TxRunner
	movements repository.InventoryMovementRepository
	stock     repository.StockRepository
	kardex    repository.KardexRepository

	sequencer *Sequencer
	costing   *CostingEngine
	ledger    *KardexAppender
	reversal  *ReversalEngine

	metrics   MetricsRecorder
	publisher BalancePublisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewMovementUseCase construye el caso de uso. Los repositorios sueltos se usan solo para lecturas.
func NewMovementUseCase(
	txRunner TxRunner,
	movements repository.InventoryMovementRepository,
	stock repository.StockRepository,
	kardex repository.KardexRepository,
	opts Options,
	log zerolog.Logger,
) *MovementUseCase {
	costing := NewCostingEngine()
	ledger := NewKardexAppender()
	uc := &MovementUseCase{
		txRunner:  txRunner,
		movements: movements,
		stock:     stock,
		kardex:    kardex,
		sequencer: NewSequencer(opts.SequenceMaxAttempts),
		costing:   costing,
		ledger:    ledger,
		metrics:   nopMetrics{},
		publisher: nopPublisher{},
		log:       log,
		now:       time.Now,
	}
	uc.reversal = &ReversalEngine{
		costing:         costing,
		ledger:          ledger,
		allowOutOfOrder: opts.AllowOutOfOrderVoid,
		metrics:         uc.metrics,
		log:             log,
		now:             time.Now,
	}
	return uc
}

// WithMetrics registra el receptor de métricas.
func (uc *MovementUseCase) WithMetrics(m MetricsRecorder) *MovementUseCase {
	if m != nil {
		uc.metrics = m
		uc.reversal.metrics = m
	}
	return uc
}

// WithBalancePublisher registra el destino de los saldos tras cada commit (ej. caché).
func (uc *MovementUseCase) WithBalancePublisher(p BalancePublisher) *MovementUseCase {
	if p != nil {
		uc.publisher = p
	}
	return uc
}

// Sequencer expone el generador de consecutivos para los documentos de los puntos de integración.
func (uc *MovementUseCase) Sequencer() *Sequencer { return uc.sequencer }

// TxRunner expone el runner para que los puntos de integración abran su propia transacción.
func (uc *MovementUseCase) TxRunner() TxRunner { return uc.txRunner }

// MovementLineInput es una línea del movimiento a registrar.
// UnitCost aplica a ENTRY y ajustes positivos; en salidas se toma el costo promedio vigente.
// Direction solo aplica a ADJUSTMENT.
type MovementLineInput struct {
	ProductID  string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	Direction  string
	LotNumber  string
	ExpiryDate *time.Time
}

// MovementInput entrada para registrar un movimiento de inventario.
// ENTRY: DestWarehouseID. EXIT: SourceWarehouseID. TRANSFER: ambas y distintas.
// ADJUSTMENT: una de las dos (la bodega ajustada).
type MovementInput struct {
	CompanyID         string
	UserID            string
	Type              string
	Subtype           string
	SourceWarehouseID string
	DestWarehouseID   string
	SupplierID        string
	CostCenterID      string
	Reference         *entity.DocumentReference
	Receptor          *entity.Receptor
	Date              time.Time
	Notes             string
	Lines             []MovementLineInput
}

// MovementResult es el movimiento persistido y los saldos que quedaron afectados, en orden de mutación.
type MovementResult struct {
	Movement *entity.InventoryMovement
	Balances []*entity.StockBalance
	voided   bool
}

func (r *MovementResult) touch(b *entity.StockBalance) {
	for i, prev := range r.Balances {
		if prev.Key() == b.Key() {
			r.Balances[i] = b
			return
		}
	}
	r.Balances = append(r.Balances, b)
}

// Create registra el movimiento en su propia transacción.
func (uc *MovementUseCase) Create(ctx context.Context, in MovementInput) (*entity.InventoryMovement, error) {
	var res *MovementResult
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		var err error
		res, err = uc.CreateInTx(ctx, repos, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.AfterCommit(ctx, res)
	return res.Movement, nil
}

// CreateInTx registra el movimiento usando los repositorios de la transacción del caller
// (recepción de órdenes de compra, vales de salida, EPP, préstamos).
// El caller debe invocar AfterCommit con el resultado tras confirmar su transacción.
func (uc *MovementUseCase) CreateInTx(ctx context.Context, repos TxRepos, in MovementInput) (*MovementResult, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	if err := checkTenant(ctx, repos, in); err != nil {
		return nil, err
	}

	now := uc.now()
	date := in.Date
	if date.IsZero() {
		date = now
	}
	kind, _ := inventory.MovementDocumentKind(in.Type)
	number, err := uc.sequencer.Next(ctx, repos, in.CompanyID, kind, date)
	if err != nil {
		return nil, err
	}

	subtype := in.Subtype
	if subtype == "" {
		subtype = entity.SubtypeManual
	}
	status := entity.MovementStatusCompleted
	if in.Type == entity.MovementTypeTRANSFER {
		status = entity.MovementStatusPending
	}
	mov := &entity.InventoryMovement{
		ID:                uuid.New().String(),
		CompanyID:         in.CompanyID,
		Number:            number,
		Type:              in.Type,
		Subtype:           subtype,
		SourceWarehouseID: in.SourceWarehouseID,
		DestWarehouseID:   in.DestWarehouseID,
		SupplierID:        in.SupplierID,
		CostCenterID:      in.CostCenterID,
		Reference:         in.Reference,
		Receptor:          in.Receptor,
		Date:              date,
		Status:            status,
		Notes:             in.Notes,
		CreatedBy:         in.UserID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	// solo los traslados usan ambas bodegas
	switch in.Type {
	case entity.MovementTypeENTRY:
		mov.SourceWarehouseID = ""
	case entity.MovementTypeEXIT:
		mov.DestWarehouseID = ""
	}

	res := &MovementResult{Movement: mov}
	for i, li := range in.Lines {
		line := &entity.MovementLine{
			ID:         uuid.New().String(),
			MovementID: mov.ID,
			LineNo:     i + 1,
			ProductID:  li.ProductID,
			Quantity:   li.Quantity,
			UnitCost:   li.UnitCost,
			Direction:  li.Direction,
			LotNumber:  li.LotNumber,
			ExpiryDate: li.ExpiryDate,
		}
		if err := uc.applyLine(ctx, repos, mov, line, res); err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				uc.metrics.StockRejected()
			}
			return nil, err
		}
		line.TotalCost = line.Quantity.Mul(line.UnitCost)
		mov.Lines = append(mov.Lines, line)
	}

	if err := repos.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return res, nil
}

// applyLine despacha la línea al motor de costeo y escribe el kardex inmediatamente después de cada mutación.
func (uc *MovementUseCase) applyLine(ctx context.Context, repos TxRepos, mov *entity.InventoryMovement, line *entity.MovementLine, res *MovementResult) error {
	key := func(warehouseID string) entity.BalanceKey {
		return entity.BalanceKey{CompanyID: mov.CompanyID, ProductID: line.ProductID, WarehouseID: warehouseID}
	}
	var (
		balance *entity.StockBalance
		op      string
		err     error
	)
	switch mov.Type {
	case entity.MovementTypeENTRY:
		line.Direction = entity.DirectionIncrease
		op = entity.KardexOpEntry
		balance, err = uc.costing.ApplyReceipt(ctx, repos.Stock, key(mov.DestWarehouseID), line.Quantity, line.UnitCost)
	case entity.MovementTypeEXIT, entity.MovementTypeTRANSFER:
		// el traslado solo descuenta el origen; el destino se aplica al confirmar
		line.Direction = entity.DirectionDecrease
		op = entity.KardexOpExit
		balance, line.UnitCost, err = uc.costing.ApplyIssue(ctx, repos.Stock, key(mov.SourceWarehouseID), line.Quantity)
	case entity.MovementTypeADJUSTMENT:
		op = entity.KardexOpPositiveAdjust
		if line.Direction == entity.DirectionDecrease {
			op = entity.KardexOpNegativeAdjust
		}
		balance, line.UnitCost, err = uc.costing.ApplyAdjustment(ctx, repos.Stock, key(mov.AdjustedWarehouseID()), line.SignedQuantity(), line.UnitCost)
	default:
		return domain.Invalid("type", "tipo de movimiento desconocido")
	}
	if err != nil {
		return err
	}
	if _, err := uc.ledger.Append(ctx, repos.Kardex, balance, KardexEvent{
		MovementID:  mov.ID,
		Date:        uc.now(),
		Operation:   op,
		Quantity:    line.Quantity,
		UnitCost:    line.UnitCost,
		Description: describe(mov),
	}); err != nil {
		return err
	}
	res.touch(balance)
	return nil
}

// ConfirmTransferReceipt confirma la llegada de un traslado PENDING a la bodega destino.
// El destino recibe al costo con que la mercancía salió del origen.
func (uc *MovementUseCase) ConfirmTransferReceipt(ctx context.Context, companyID, actorID, id string) (*entity.InventoryMovement, error) {
	var res *MovementResult
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		mov, err := lockMovement(ctx, repos, companyID, id)
		if err != nil {
			return err
		}
		if !mov.IsTransfer() || mov.Status != entity.MovementStatusPending {
			return &domain.StateTransitionError{MovementID: mov.ID, From: mov.Status, Action: "confirmar"}
		}
		res = &MovementResult{Movement: mov}
		for _, line := range mov.Lines {
			key := entity.BalanceKey{CompanyID: mov.CompanyID, ProductID: line.ProductID, WarehouseID: mov.DestWarehouseID}
			balance, err := uc.costing.ApplyReceipt(ctx, repos.Stock, key, line.Quantity, line.UnitCost)
			if err != nil {
				return err
			}
			if _, err := uc.ledger.Append(ctx, repos.Kardex, balance, KardexEvent{
				MovementID:  mov.ID,
				Date:        uc.now(),
				Operation:   entity.KardexOpEntry,
				Quantity:    line.Quantity,
				UnitCost:    line.UnitCost,
				Description: describe(mov),
			}); err != nil {
				return err
			}
			res.touch(balance)
		}
		mov.Status = entity.MovementStatusCompleted
		mov.UpdatedAt = uc.now()
		return repos.Movements.UpdateStatus(ctx, mov)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.TransferConfirmed()
	uc.log.Info().
		Str("company_id", companyID).
		Str("movement_id", id).
		Str("number", res.Movement.Number).
		Str("actor_id", actorID).
		Msg("traslado recibido en destino")
	uc.publisher.Publish(ctx, res.Balances)
	return res.Movement, nil
}

// Void anula el movimiento en su propia transacción. Los movimientos generados por un documento
// (GeneratedByDocument) se rechazan: sus contadores de avance quedarían desalineados.
func (uc *MovementUseCase) Void(ctx context.Context, companyID, actorID, id, reason string) (*entity.InventoryMovement, error) {
	var res *MovementResult
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		var err error
		res, err = uc.voidInTx(ctx, repos, companyID, actorID, id, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.AfterCommit(ctx, res)
	return res.Movement, nil
}

// voidInTx revierte los saldos del movimiento y lo deja en VOIDED con actor, fecha y motivo.
// Las líneas y registros de kardex existentes no se modifican; la reversión agrega registros compensatorios.
func (uc *MovementUseCase) voidInTx(ctx context.Context, repos TxRepos, companyID, actorID, id, reason string) (*MovementResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.Invalid("reason", "el motivo de anulación es obligatorio")
	}
	mov, err := lockMovement(ctx, repos, companyID, id)
	if err != nil {
		return nil, err
	}
	if mov.GeneratedByDocument() {
		return nil, fmt.Errorf("%w: %s pertenece a %s %s; se anula desde el documento",
			&domain.StateTransitionError{MovementID: mov.ID, From: mov.Status, Action: "anular"},
			mov.Number, mov.Reference.Kind, mov.Reference.ID)
	}
	res := &MovementResult{Movement: mov, voided: true}
	if err := uc.reversal.Reverse(ctx, repos, mov, res); err != nil {
		return nil, err
	}
	now := uc.now()
	mov.Status = entity.MovementStatusVoided
	mov.VoidedBy = actorID
	mov.VoidedAt = &now
	mov.VoidReason = reason
	note := fmt.Sprintf("[ANULADO %s por %s] %s", now.Format("2006-01-02 15:04"), actorID, reason)
	mov.Notes = strings.TrimSpace(mov.Notes + "\n" + note)
	mov.UpdatedAt = now
	if err := repos.Movements.UpdateStatus(ctx, mov); err != nil {
		return nil, err
	}
	return res, nil
}

// AfterCommit registra métricas, log y publica saldos de resultados ya confirmados.
func (uc *MovementUseCase) AfterCommit(ctx context.Context, results ...*MovementResult) {
	for _, res := range results {
		if res == nil {
			continue
		}
		mov := res.Movement
		if res.voided {
			uc.metrics.MovementVoided(mov.Type)
			uc.log.Info().
				Str("company_id", mov.CompanyID).
				Str("movement_id", mov.ID).
				Str("number", mov.Number).
				Str("type", mov.Type).
				Str("voided_by", mov.VoidedBy).
				Msg("movimiento anulado")
		} else {
			uc.metrics.MovementRecorded(mov.Type, mov.Subtype)
			uc.log.Info().
				Str("company_id", mov.CompanyID).
				Str("movement_id", mov.ID).
				Str("number", mov.Number).
				Str("type", mov.Type).
				Str("subtype", mov.Subtype).
				Str("status", mov.Status).
				Int("lines", len(mov.Lines)).
				Msg("movimiento registrado")
		}
		uc.publisher.Publish(ctx, res.Balances)
	}
}

// Get obtiene un movimiento con sus líneas.
func (uc *MovementUseCase) Get(ctx context.Context, companyID, id string) (*entity.InventoryMovement, error) {
	mov, err := uc.movements.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	return mov, nil
}

// List lista movimientos de la empresa.
func (uc *MovementUseCase) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	if filter.CompanyID == "" {
		return nil, domain.Invalid("company_id", "requerido")
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return uc.movements.List(ctx, filter)
}

// ListKardex devuelve el kardex de un producto ordenado por (fecha, seq).
func (uc *MovementUseCase) ListKardex(ctx context.Context, filter repository.KardexFilter) ([]*entity.KardexEntry, error) {
	if filter.CompanyID == "" || filter.ProductID == "" {
		return nil, domain.Invalid("product_id", "requerido")
	}
	if filter.Limit <= 0 || filter.Limit > 1000 {
		filter.Limit = 200
	}
	return uc.kardex.List(ctx, filter)
}

// GetBalance devuelve el saldo actual (en cero si nunca ha tenido movimientos).
func (uc *MovementUseCase) GetBalance(ctx context.Context, key entity.BalanceKey) (*entity.StockBalance, error) {
	if key.CompanyID == "" || key.ProductID == "" || key.WarehouseID == "" {
		return nil, domain.Invalid("key", "empresa, producto y bodega son requeridos")
	}
	return uc.stock.Get(ctx, key)
}

// ListBalances devuelve los saldos de una bodega.
func (uc *MovementUseCase) ListBalances(ctx context.Context, companyID, warehouseID string) ([]*entity.StockBalance, error) {
	if warehouseID == "" {
		return nil, domain.Invalid("warehouse_id", "requerido")
	}
	return uc.stock.ListByWarehouse(ctx, companyID, warehouseID)
}

// SetStockLimits fija mínimo y máximo del saldo para la lista de reposición. No toca cantidad ni costo.
// max en cero deja el máximo sin configurar.
func (uc *MovementUseCase) SetStockLimits(ctx context.Context, key entity.BalanceKey, min, max decimal.Decimal) (*entity.StockBalance, error) {
	if min.IsNegative() || max.IsNegative() {
		return nil, domain.Invalid("min_stock", "no puede ser negativo")
	}
	if max.IsPositive() && max.LessThan(min) {
		return nil, domain.Invalid("max_stock", "debe ser mayor o igual al mínimo")
	}
	var balance *entity.StockBalance
	err := uc.txRunner.Run(ctx, func(ctx context.Context, repos TxRepos) error {
		if err := checkTenant(ctx, repos, MovementInput{
			CompanyID:       key.CompanyID,
			DestWarehouseID: key.WarehouseID,
			Lines:           []MovementLineInput{{ProductID: key.ProductID}},
		}); err != nil {
			return err
		}
		var err error
		balance, err = repos.Stock.GetForUpdate(ctx, key)
		if err != nil {
			return err
		}
		balance.MinStock = min
		balance.MaxStock = max
		balance.UpdatedAt = uc.now()
		return repos.Stock.Upsert(ctx, balance)
	})
	if err != nil {
		return nil, err
	}
	uc.publisher.Publish(ctx, []*entity.StockBalance{balance})
	return balance, nil
}

func lockMovement(ctx context.Context, repos TxRepos, companyID, id string) (*entity.InventoryMovement, error) {
	mov, err := repos.Movements.GetForUpdate(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNotFound
	}
	return mov, nil
}

func describe(mov *entity.InventoryMovement) string {
	return fmt.Sprintf("%s (%s)", mov.Number, mov.Subtype)
}

func validateMovement(in MovementInput) error {
	if in.CompanyID == "" {
		return domain.Invalid("company_id", "requerido")
	}
	switch in.Type {
	case entity.MovementTypeENTRY:
		if in.DestWarehouseID == "" {
			return domain.Invalid("dest_warehouse_id", "requerido para entradas")
		}
	case entity.MovementTypeEXIT:
		if in.SourceWarehouseID == "" {
			return domain.Invalid("source_warehouse_id", "requerido para salidas")
		}
	case entity.MovementTypeTRANSFER:
		if in.SourceWarehouseID == "" || in.DestWarehouseID == "" {
			return domain.Invalid("warehouse", "el traslado requiere bodega origen y destino")
		}
		if in.SourceWarehouseID == in.DestWarehouseID {
			return domain.Invalid("dest_warehouse_id", "debe ser distinta a la bodega origen")
		}
	case entity.MovementTypeADJUSTMENT:
		if in.SourceWarehouseID == "" && in.DestWarehouseID == "" {
			return domain.Invalid("warehouse", "el ajuste requiere una bodega")
		}
		if in.SourceWarehouseID != "" && in.DestWarehouseID != "" && in.SourceWarehouseID != in.DestWarehouseID {
			return domain.Invalid("warehouse", "el ajuste afecta una sola bodega")
		}
	default:
		return domain.Invalid("type", "debe ser ENTRY, EXIT, TRANSFER o ADJUSTMENT")
	}
	if in.Reference != nil && !in.Reference.Valid() {
		return domain.Invalid("reference", "tipo o id de referencia inválido")
	}
	if in.Receptor != nil && !in.Receptor.Valid() {
		return domain.Invalid("receptor", "tipo o id de receptor inválido")
	}
	if len(in.Lines) == 0 {
		return domain.Invalid("lines", "debe tener al menos una línea")
	}
	for i, l := range in.Lines {
		field := fmt.Sprintf("lines[%d]", i)
		if l.ProductID == "" {
			return domain.Invalid(field+".product_id", "requerido")
		}
		if !l.Quantity.IsPositive() {
			return domain.Invalid(field+".quantity", "debe ser mayor que cero")
		}
		if l.UnitCost.IsNegative() {
			return domain.Invalid(field+".unit_cost", "no puede ser negativo")
		}
		if in.Type == entity.MovementTypeADJUSTMENT &&
			l.Direction != entity.DirectionIncrease && l.Direction != entity.DirectionDecrease {
			return domain.Invalid(field+".direction", "debe ser INCREASE o DECREASE")
		}
	}
	return nil
}

// checkTenant valida que productos y bodegas existan y pertenezcan a la empresa del movimiento.
func checkTenant(ctx context.Context, repos TxRepos, in MovementInput) error {
	for _, id := range []string{in.SourceWarehouseID, in.DestWarehouseID} {
		if id == "" {
			continue
		}
		wh, err := repos.Warehouses.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if wh == nil {
			return fmt.Errorf("bodega %s: %w", id, domain.ErrNotFound)
		}
		if wh.CompanyID != in.CompanyID {
			return fmt.Errorf("bodega %s: %w", id, domain.ErrCrossTenantReference)
		}
	}
	seen := make(map[string]bool, len(in.Lines))
	for _, l := range in.Lines {
		if seen[l.ProductID] {
			continue
		}
		seen[l.ProductID] = true
		p, err := repos.Products.GetByID(ctx, l.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("producto %s: %w", l.ProductID, domain.ErrNotFound)
		}
		if p.CompanyID != in.CompanyID {
			return fmt.Errorf("producto %s: %w", l.ProductID, domain.ErrCrossTenantReference)
		}
	}
	return nil
}

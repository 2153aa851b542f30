// Package memory implementa los repositorios en memoria del proceso.
// Las transacciones se serializan con un mutex y, si fn falla, se restaura la foto previa:
// ninguna escritura parcial queda visible. Útil en pruebas y con STORE_DRIVER=memory.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

var _ inventory.TxRunner = (*Store)(nil)

type state struct {
	products       map[string]entity.Product
	warehouses     map[string]entity.Warehouse
	balances       map[entity.BalanceKey]entity.StockBalance
	movements      map[string]entity.InventoryMovement
	kardex         []entity.KardexEntry
	kardexSeq      int64
	sequences      map[string]int64
	purchaseOrders map[string]entity.PurchaseOrder
	quotations     map[string]entity.Quotation
	requisitions   map[string]entity.Requisition
	vouchers       map[string]entity.ExitVoucher
	eppIssuances   map[string]entity.EppIssuance
	loans          map[string]entity.EquipmentLoan
}

func newState() *state {
	return &state{
		products:       map[string]entity.Product{},
		warehouses:     map[string]entity.Warehouse{},
		balances:       map[entity.BalanceKey]entity.StockBalance{},
		movements:      map[string]entity.InventoryMovement{},
		sequences:      map[string]int64{},
		purchaseOrders: map[string]entity.PurchaseOrder{},
		quotations:     map[string]entity.Quotation{},
		requisitions:   map[string]entity.Requisition{},
		vouchers:       map[string]entity.ExitVoucher{},
		eppIssuances:   map[string]entity.EppIssuance{},
		loans:          map[string]entity.EquipmentLoan{},
	}
}

// snapshot copia los índices. Los valores guardados nunca se modifican en sitio
// (se clonan al escribir y al leer), así que basta una copia superficial de cada mapa.
func (st *state) snapshot() *state {
	cp := &state{
		products:       copyMap(st.products),
		warehouses:     copyMap(st.warehouses),
		balances:       copyMap(st.balances),
		movements:      copyMap(st.movements),
		kardex:         append([]entity.KardexEntry(nil), st.kardex...),
		kardexSeq:      st.kardexSeq,
		sequences:      copyMap(st.sequences),
		purchaseOrders: copyMap(st.purchaseOrders),
		quotations:     copyMap(st.quotations),
		requisitions:   copyMap(st.requisitions),
		vouchers:       copyMap(st.vouchers),
		eppIssuances:   copyMap(st.eppIssuances),
		loans:          copyMap(st.loans),
	}
	return cp
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store guarda todo el estado del almacén en memoria.
type Store struct {
	mu   sync.Mutex
	data *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Run ejecuta fn como una transacción: exclusiva frente a cualquier otro acceso
// y con rollback completo si fn devuelve error.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, repos inventory.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.data.snapshot()
	if err := fn(ctx, s.repos(true)); err != nil {
		s.data = before
		return err
	}
	return nil
}

// Repos devuelve repositorios fuera de transacción; cada llamada toma el lock del store.
// No usarlos dentro de Run.
func (s *Store) Repos() inventory.TxRepos { return s.repos(false) }

func (s *Store) repos(inTx bool) inventory.TxRepos {
	b := base{s: s, inTx: inTx}
	return inventory.TxRepos{
		Movements:      &MovementRepo{b},
		Stock:          &StockRepo{b},
		Kardex:         &KardexRepo{b},
		Sequences:      &SequenceRepo{b},
		Products:       &ProductRepo{b},
		Warehouses:     &WarehouseRepo{b},
		PurchaseOrders: &PurchaseOrderRepo{b},
		Requisitions:   &RequisitionRepo{b},
		ExitVouchers:   &ExitVoucherRepo{b},
		EppIssuances:   &EppIssuanceRepo{b},
		Loans:          &EquipmentLoanRepo{b},
	}
}

type base struct {
	s    *Store
	inTx bool
}

// lock toma el mutex del store salvo que ya se esté dentro de Run. Uso: defer r.lock()().
func (b base) lock() func() {
	if b.inTx {
		return func() {}
	}
	b.s.mu.Lock()
	return b.s.mu.Unlock
}

func (b base) st() *state { return b.s.data }

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

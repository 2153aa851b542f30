package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.StockRepository             = (*StockRepo)(nil)
	_ repository.InventoryMovementRepository = (*MovementRepo)(nil)
	_ repository.KardexRepository            = (*KardexRepo)(nil)
	_ repository.SequenceRepository          = (*SequenceRepo)(nil)
)

// ────────────────────────────────────────────────────────────────────────────
// Saldos
// ────────────────────────────────────────────────────────────────────────────

// StockRepo saldos en memoria.
type StockRepo struct{ base }

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

func (r *StockRepo) Get(_ context.Context, key entity.BalanceKey) (*entity.StockBalance, error) {
	defer r.lock()()
	if b, ok := r.st().balances[key]; ok {
		return &b, nil
	}
	return zeroBalance(key), nil
}

func (r *StockRepo) GetForUpdate(_ context.Context, key entity.BalanceKey) (*entity.StockBalance, error) {
	defer r.lock()()
	if b, ok := r.st().balances[key]; ok {
		return &b, nil
	}
	b := zeroBalance(key)
	b.ID = uuid.New().String()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	r.st().balances[key] = *b
	return b, nil
}

func (r *StockRepo) Upsert(_ context.Context, balance *entity.StockBalance) error {
	defer r.lock()()
	if balance.Quantity.IsNegative() {
		return fmt.Errorf("upsert stock: cantidad negativa para %s/%s", balance.ProductID, balance.WarehouseID)
	}
	if balance.ID == "" {
		balance.ID = uuid.New().String()
	}
	if balance.CreatedAt.IsZero() {
		balance.CreatedAt = time.Now()
	}
	r.st().balances[balance.Key()] = *balance
	return nil
}

func (r *StockRepo) ListByWarehouse(_ context.Context, companyID, warehouseID string) ([]*entity.StockBalance, error) {
	defer r.lock()()
	return r.filter(func(b entity.StockBalance) bool {
		return b.CompanyID == companyID && b.WarehouseID == warehouseID
	}), nil
}

func (r *StockRepo) ListBelowMinimum(_ context.Context, companyID, warehouseID string) ([]*entity.StockBalance, error) {
	defer r.lock()()
	return r.filter(func(b entity.StockBalance) bool {
		return b.CompanyID == companyID && (warehouseID == "" || b.WarehouseID == warehouseID) && b.BelowMinimum()
	}), nil
}

func (r *StockRepo) filter(keep func(entity.StockBalance) bool) []*entity.StockBalance {
	var out []*entity.StockBalance
	for _, b := range r.st().balances {
		if keep(b) {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].WarehouseID != out[j].WarehouseID {
			return out[i].WarehouseID < out[j].WarehouseID
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}

// ────────────────────────────────────────────────────────────────────────────
// Movimientos
// ────────────────────────────────────────────────────────────────────────────

// MovementRepo movimientos en memoria. El número es único por empresa.
type MovementRepo struct{ base }

func (r *MovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	defer r.lock()()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	for _, other := range r.st().movements {
		if other.CompanyID == m.CompanyID && other.Number == m.Number {
			return fmt.Errorf("create inventory movement %s: %w", m.Number, domain.ErrDuplicate)
		}
	}
	r.st().movements[m.ID] = cloneMovement(*m)
	return nil
}

func (r *MovementRepo) GetByID(_ context.Context, companyID, id string) (*entity.InventoryMovement, error) {
	defer r.lock()()
	return r.get(companyID, id), nil
}

func (r *MovementRepo) GetForUpdate(_ context.Context, companyID, id string) (*entity.InventoryMovement, error) {
	defer r.lock()()
	return r.get(companyID, id), nil
}

func (r *MovementRepo) get(companyID, id string) *entity.InventoryMovement {
	m, ok := r.st().movements[id]
	if !ok || m.CompanyID != companyID {
		return nil
	}
	cp := cloneMovement(m)
	return &cp
}

func (r *MovementRepo) UpdateStatus(_ context.Context, m *entity.InventoryMovement) error {
	defer r.lock()()
	stored, ok := r.st().movements[m.ID]
	if !ok || stored.CompanyID != m.CompanyID {
		return fmt.Errorf("update movement status: %w", domain.ErrNotFound)
	}
	stored = cloneMovement(stored)
	stored.Status = m.Status
	stored.Notes = m.Notes
	stored.VoidedBy = m.VoidedBy
	stored.VoidReason = m.VoidReason
	if m.VoidedAt != nil {
		at := *m.VoidedAt
		stored.VoidedAt = &at
	}
	stored.UpdatedAt = m.UpdatedAt
	r.st().movements[m.ID] = stored
	return nil
}

func (r *MovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	defer r.lock()()
	var out []*entity.InventoryMovement
	for _, m := range r.st().movements {
		if m.CompanyID != f.CompanyID ||
			(f.Type != "" && m.Type != f.Type) ||
			(f.Status != "" && m.Status != f.Status) ||
			(f.WarehouseID != "" && m.SourceWarehouseID != f.WarehouseID && m.DestWarehouseID != f.WarehouseID) ||
			(f.From != nil && m.Date.Before(*f.From)) ||
			(f.To != nil && m.Date.After(*f.To)) {
			continue
		}
		cp := cloneMovement(m)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Number > out[j].Number
	})
	return paginate(out, f.Limit, f.Offset), nil
}

// ────────────────────────────────────────────────────────────────────────────
// Kardex
// ────────────────────────────────────────────────────────────────────────────

// KardexRepo kardex en memoria; Seq es el orden de inserción global.
type KardexRepo struct{ base }

func (r *KardexRepo) Append(_ context.Context, e *entity.KardexEntry) error {
	defer r.lock()()
	st := r.st()
	st.kardexSeq++
	e.Seq = st.kardexSeq
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	st.kardex = append(st.kardex, *e)
	return nil
}

func (r *KardexRepo) List(_ context.Context, f repository.KardexFilter) ([]*entity.KardexEntry, error) {
	defer r.lock()()
	var out []*entity.KardexEntry
	for _, e := range r.st().kardex {
		if e.CompanyID != f.CompanyID || e.ProductID != f.ProductID ||
			(f.WarehouseID != "" && e.WarehouseID != f.WarehouseID) ||
			(f.From != nil && e.Date.Before(*f.From)) ||
			(f.To != nil && e.Date.After(*f.To)) {
			continue
		}
		e := e
		out = append(out, &e)
	}
	sortKardex(out)
	return paginate(out, f.Limit, f.Offset), nil
}

func (r *KardexRepo) MovementsAfter(_ context.Context, key entity.BalanceKey, movementID string) ([]string, error) {
	defer r.lock()()
	var own int64
	for _, e := range r.st().kardex {
		if e.CompanyID == key.CompanyID && e.ProductID == key.ProductID && e.WarehouseID == key.WarehouseID &&
			e.MovementID == movementID && e.Seq > own {
			own = e.Seq
		}
	}
	seen := make(map[string]bool)
	var ids []string
	for _, e := range r.st().kardex {
		if e.CompanyID != key.CompanyID || e.ProductID != key.ProductID || e.WarehouseID != key.WarehouseID ||
			e.Seq <= own || e.MovementID == movementID || seen[e.MovementID] {
			continue
		}
		seen[e.MovementID] = true
		ids = append(ids, e.MovementID)
	}
	return ids, nil
}

func kardexBefore(a, b *entity.KardexEntry) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	return a.Seq < b.Seq
}

func sortKardex(entries []*entity.KardexEntry) {
	sort.Slice(entries, func(i, j int) bool { return kardexBefore(entries[i], entries[j]) })
}

// ────────────────────────────────────────────────────────────────────────────
// Consecutivos
// ────────────────────────────────────────────────────────────────────────────

// SequenceRepo contadores por (empresa, prefijo).
type SequenceRepo struct{ base }

func (r *SequenceRepo) Next(_ context.Context, companyID, prefix string) (int64, error) {
	defer r.lock()()
	key := companyID + "|" + prefix
	r.st().sequences[key]++
	return r.st().sequences[key], nil
}

func (r *SequenceRepo) Exists(_ context.Context, companyID, kind, number string) (bool, error) {
	defer r.lock()()
	st := r.st()
	match := func(c, n string) bool { return c == companyID && n == number }
	switch strings.ToUpper(kind) {
	case "ENT", "SAL", "TRF", "AJU":
		for _, m := range st.movements {
			if match(m.CompanyID, m.Number) {
				return true, nil
			}
		}
	case "OC":
		for _, o := range st.purchaseOrders {
			if match(o.CompanyID, o.Number) {
				return true, nil
			}
		}
	case "COT":
		for _, q := range st.quotations {
			if match(q.CompanyID, q.Number) {
				return true, nil
			}
		}
	case "REQ":
		for _, rq := range st.requisitions {
			if match(rq.CompanyID, rq.Number) {
				return true, nil
			}
		}
	case "VS":
		for _, v := range st.vouchers {
			if match(v.CompanyID, v.Number) {
				return true, nil
			}
		}
	case "EPP":
		for _, i := range st.eppIssuances {
			if match(i.CompanyID, i.Number) {
				return true, nil
			}
		}
	case "PRE":
		for _, l := range st.loans {
			if match(l.CompanyID, l.Number) {
				return true, nil
			}
		}
	default:
		return false, fmt.Errorf("sequence exists: serie desconocida %q", kind)
	}
	return false, nil
}

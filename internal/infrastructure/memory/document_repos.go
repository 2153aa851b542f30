package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)
	_ repository.RequisitionRepository   = (*RequisitionRepo)(nil)
	_ repository.ExitVoucherRepository   = (*ExitVoucherRepo)(nil)
	_ repository.EppIssuanceRepository   = (*EppIssuanceRepo)(nil)
	_ repository.EquipmentLoanRepository = (*EquipmentLoanRepo)(nil)
)

func notFound(what string) error { return fmt.Errorf("%s: %w", what, domain.ErrNotFound) }

// ────────────────────────────────────────────────────────────────────────────
// Órdenes de compra y cotizaciones
// ────────────────────────────────────────────────────────────────────────────

// PurchaseOrderRepo órdenes de compra en memoria.
type PurchaseOrderRepo struct{ base }

func (r *PurchaseOrderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	defer r.lock()()
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	r.st().purchaseOrders[o.ID] = clonePurchaseOrder(*o)
	return nil
}

func (r *PurchaseOrderRepo) GetByID(_ context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	defer r.lock()()
	return r.get(companyID, id), nil
}

func (r *PurchaseOrderRepo) GetForUpdate(_ context.Context, companyID, id string) (*entity.PurchaseOrder, error) {
	defer r.lock()()
	return r.get(companyID, id), nil
}

func (r *PurchaseOrderRepo) get(companyID, id string) *entity.PurchaseOrder {
	o, ok := r.st().purchaseOrders[id]
	if !ok || o.CompanyID != companyID {
		return nil
	}
	cp := clonePurchaseOrder(o)
	return &cp
}

func (r *PurchaseOrderRepo) UpdateProgress(_ context.Context, o *entity.PurchaseOrder) error {
	defer r.lock()()
	if _, ok := r.st().purchaseOrders[o.ID]; !ok {
		return notFound("update purchase order")
	}
	r.st().purchaseOrders[o.ID] = clonePurchaseOrder(*o)
	return nil
}

func (r *PurchaseOrderRepo) CreateQuotation(_ context.Context, q *entity.Quotation) error {
	defer r.lock()()
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	r.st().quotations[q.ID] = *q
	return nil
}

// ────────────────────────────────────────────────────────────────────────────
// Requisiciones y vales de salida
// ────────────────────────────────────────────────────────────────────────────

// RequisitionRepo requisiciones en memoria.
type RequisitionRepo struct{ base }

func (r *RequisitionRepo) Create(_ context.Context, rq *entity.Requisition) error {
	defer r.lock()()
	if rq.ID == "" {
		rq.ID = uuid.New().String()
	}
	r.st().requisitions[rq.ID] = cloneRequisition(*rq)
	return nil
}

func (r *RequisitionRepo) GetByID(_ context.Context, companyID, id string) (*entity.Requisition, error) {
	defer r.lock()()
	return r.get(companyID, id), nil
}

func (r *RequisitionRepo) GetForUpdate(_ context.Context, companyID, id string) (*entity.Requisition, error) {
	defer r.lock()()
	return r.get(companyID, id), nil
}

func (r *RequisitionRepo) get(companyID, id string) *entity.Requisition {
	rq, ok := r.st().requisitions[id]
	if !ok || rq.CompanyID != companyID {
		return nil
	}
	cp := cloneRequisition(rq)
	return &cp
}

func (r *RequisitionRepo) Update(_ context.Context, rq *entity.Requisition) error {
	defer r.lock()()
	if _, ok := r.st().requisitions[rq.ID]; !ok {
		return notFound("update requisition")
	}
	r.st().requisitions[rq.ID] = cloneRequisition(*rq)
	return nil
}

// ExitVoucherRepo vales de salida en memoria.
type ExitVoucherRepo struct{ base }

func (r *ExitVoucherRepo) Create(_ context.Context, v *entity.ExitVoucher) error {
	defer r.lock()()
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	r.st().vouchers[v.ID] = cloneVoucher(*v)
	return nil
}

func (r *ExitVoucherRepo) GetByID(_ context.Context, companyID, id string) (*entity.ExitVoucher, error) {
	defer r.lock()()
	return r.get(companyID, id), nil
}

func (r *ExitVoucherRepo) GetForUpdate(_ context.Context, companyID, id string) (*entity.ExitVoucher, error) {
	defer r.lock()()
	return r.get(companyID, id), nil
}

func (r *ExitVoucherRepo) get(companyID, id string) *entity.ExitVoucher {
	v, ok := r.st().vouchers[id]
	if !ok || v.CompanyID != companyID {
		return nil
	}
	cp := cloneVoucher(v)
	return &cp
}

func (r *ExitVoucherRepo) UpdateProgress(_ context.Context, v *entity.ExitVoucher) error {
	defer r.lock()()
	if _, ok := r.st().vouchers[v.ID]; !ok {
		return notFound("update exit voucher")
	}
	r.st().vouchers[v.ID] = cloneVoucher(*v)
	return nil
}

func (r *ExitVoucherRepo) OpenByRequisitionLine(_ context.Context, companyID, requisitionID string) (map[string]decimal.Decimal, error) {
	defer r.lock()()
	open := make(map[string]decimal.Decimal)
	for _, v := range r.st().vouchers {
		if v.CompanyID != companyID || v.RequisitionID != requisitionID || v.Status == entity.ExitVoucherDelivered {
			continue
		}
		for _, l := range v.Lines {
			open[l.RequisitionLineID] = open[l.RequisitionLineID].Add(l.Quantity.Sub(l.DeliveredQuantity))
		}
	}
	return open, nil
}

// ────────────────────────────────────────────────────────────────────────────
// EPP y préstamos
// ────────────────────────────────────────────────────────────────────────────

// EppIssuanceRepo entregas de EPP en memoria.
type EppIssuanceRepo struct{ base }

func (r *EppIssuanceRepo) Create(_ context.Context, i *entity.EppIssuance) error {
	defer r.lock()()
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	r.st().eppIssuances[i.ID] = cloneIssuance(*i)
	return nil
}

func (r *EppIssuanceRepo) GetByID(_ context.Context, companyID, id string) (*entity.EppIssuance, error) {
	defer r.lock()()
	i, ok := r.st().eppIssuances[id]
	if !ok || i.CompanyID != companyID {
		return nil, nil
	}
	cp := cloneIssuance(i)
	return &cp, nil
}

func (r *EppIssuanceRepo) ListByWorker(_ context.Context, companyID, workerID string) ([]*entity.EppIssuance, error) {
	defer r.lock()()
	var out []*entity.EppIssuance
	for _, i := range r.st().eppIssuances {
		if i.CompanyID == companyID && i.Worker.ID == workerID {
			cp := cloneIssuance(i)
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].IssuedAt.After(out[b].IssuedAt) })
	return out, nil
}

// EquipmentLoanRepo préstamos en memoria.
type EquipmentLoanRepo struct{ base }

func (r *EquipmentLoanRepo) Create(_ context.Context, l *entity.EquipmentLoan) error {
	defer r.lock()()
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	r.st().loans[l.ID] = cloneLoan(*l)
	return nil
}

func (r *EquipmentLoanRepo) GetByID(_ context.Context, companyID, id string) (*entity.EquipmentLoan, error) {
	defer r.lock()()
	return r.get(companyID, id), nil
}

func (r *EquipmentLoanRepo) GetForUpdate(_ context.Context, companyID, id string) (*entity.EquipmentLoan, error) {
	defer r.lock()()
	return r.get(companyID, id), nil
}

func (r *EquipmentLoanRepo) get(companyID, id string) *entity.EquipmentLoan {
	l, ok := r.st().loans[id]
	if !ok || l.CompanyID != companyID {
		return nil
	}
	cp := cloneLoan(l)
	return &cp
}

func (r *EquipmentLoanRepo) UpdateProgress(_ context.Context, l *entity.EquipmentLoan) error {
	defer r.lock()()
	if _, ok := r.st().loans[l.ID]; !ok {
		return notFound("update equipment loan")
	}
	r.st().loans[l.ID] = cloneLoan(*l)
	return nil
}

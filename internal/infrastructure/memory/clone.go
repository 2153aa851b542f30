package memory

import "github.com/jhoicas/almacen-api/internal/domain/entity"

func cloneMovement(m entity.InventoryMovement) entity.InventoryMovement {
	if m.Reference != nil {
		ref := *m.Reference
		m.Reference = &ref
	}
	if m.Receptor != nil {
		rec := *m.Receptor
		m.Receptor = &rec
	}
	if m.VoidedAt != nil {
		at := *m.VoidedAt
		m.VoidedAt = &at
	}
	m.Lines = cloneLines(m.Lines)
	return m
}

func cloneLines[L any](lines []*L) []*L {
	if lines == nil {
		return nil
	}
	out := make([]*L, len(lines))
	for i, l := range lines {
		cp := *l
		out[i] = &cp
	}
	return out
}

func clonePurchaseOrder(o entity.PurchaseOrder) entity.PurchaseOrder {
	o.Lines = cloneLines(o.Lines)
	return o
}

func cloneRequisition(r entity.Requisition) entity.Requisition {
	r.Lines = cloneLines(r.Lines)
	return r
}

func cloneVoucher(v entity.ExitVoucher) entity.ExitVoucher {
	v.Lines = cloneLines(v.Lines)
	return v
}

func cloneIssuance(i entity.EppIssuance) entity.EppIssuance {
	i.Lines = cloneLines(i.Lines)
	return i
}

func cloneLoan(l entity.EquipmentLoan) entity.EquipmentLoan {
	if l.DueDate != nil {
		due := *l.DueDate
		l.DueDate = &due
	}
	l.Lines = cloneLines(l.Lines)
	return l
}

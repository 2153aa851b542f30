package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// PurchaseOrderRepository persiste órdenes de compra y cotizaciones.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *entity.PurchaseOrder) error
	GetByID(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.PurchaseOrder, error)
	// UpdateProgress persiste el estado y las cantidades recibidas por línea.
	UpdateProgress(ctx context.Context, order *entity.PurchaseOrder) error
	CreateQuotation(ctx context.Context, q *entity.Quotation) error
}

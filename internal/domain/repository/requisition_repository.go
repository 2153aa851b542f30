package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// RequisitionRepository persiste requisiciones internas.
type RequisitionRepository interface {
	Create(ctx context.Context, r *entity.Requisition) error
	GetByID(ctx context.Context, companyID, id string) (*entity.Requisition, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.Requisition, error)
	// Update persiste estado, cantidades aprobadas y entregadas.
	Update(ctx context.Context, r *entity.Requisition) error
}

// ExitVoucherRepository persiste vales de salida.
type ExitVoucherRepository interface {
	Create(ctx context.Context, v *entity.ExitVoucher) error
	GetByID(ctx context.Context, companyID, id string) (*entity.ExitVoucher, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.ExitVoucher, error)
	UpdateProgress(ctx context.Context, v *entity.ExitVoucher) error
	// OpenByRequisitionLine suma lo pendiente de entregar (cantidad - entregado) en vales
	// no entregados de la requisición, por línea de requisición.
	OpenByRequisitionLine(ctx context.Context, companyID, requisitionID string) (map[string]decimal.Decimal, error)
}

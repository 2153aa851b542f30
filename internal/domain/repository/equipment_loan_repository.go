package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// EquipmentLoanRepository persiste préstamos de equipos.
type EquipmentLoanRepository interface {
	Create(ctx context.Context, loan *entity.EquipmentLoan) error
	GetByID(ctx context.Context, companyID, id string) (*entity.EquipmentLoan, error)
	GetForUpdate(ctx context.Context, companyID, id string) (*entity.EquipmentLoan, error)
	UpdateProgress(ctx context.Context, loan *entity.EquipmentLoan) error
}

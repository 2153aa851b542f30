package repository

import (
	"context"

	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// EppIssuanceRepository persiste entregas de EPP.
type EppIssuanceRepository interface {
	Create(ctx context.Context, issuance *entity.EppIssuance) error
	GetByID(ctx context.Context, companyID, id string) (*entity.EppIssuance, error)
	ListByWorker(ctx context.Context, companyID, workerID string) ([]*entity.EppIssuance, error)
}

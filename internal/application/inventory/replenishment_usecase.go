package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición para una bodega
// a partir de los saldos por debajo del stock mínimo.
type ReplenishmentUseCase struct {
	stock    repository.StockRepository
	products repository.ProductRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(stock repository.StockRepository, products repository.ProductRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{stock: stock, products: products}
}

// GenerateReplenishmentList devuelve los productos bajo mínimo con la cantidad sugerida de pedido.
// El stock ideal es MaxStock si está configurado; si no, MinStock * 1.5.
// warehouseID puede ser vacío para considerar todas las bodegas de la empresa.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context, companyID, warehouseID string) ([]dto.ReplenishmentSuggestionDTO, error) {
	if companyID == "" {
		return nil, domain.Invalid("company_id", "requerido")
	}
	balances, err := uc.stock.ListBelowMinimum(ctx, companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	if len(balances) == 0 {
		return []dto.ReplenishmentSuggestionDTO{}, nil
	}

	hundred := decimal.NewFromInt(100)
	factor := decimal.RequireFromString("1.5")
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(balances))
	for _, b := range balances {
		ideal := b.MaxStock
		if !ideal.IsPositive() {
			ideal = b.MinStock.Mul(factor)
		}
		suggested := ideal.Sub(b.Quantity)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		coverage := decimal.Zero
		if b.MinStock.IsPositive() {
			coverage = b.Quantity.Div(b.MinStock).Mul(hundred).Round(2)
		}
		s := dto.ReplenishmentSuggestionDTO{
			ProductID:          b.ProductID,
			WarehouseID:        b.WarehouseID,
			CurrentStock:       b.Quantity,
			MinStock:           b.MinStock,
			MaxStock:           b.MaxStock,
			IdealStock:         ideal,
			SuggestedOrderQty:  suggested,
			UnitCost:           b.UnitCost,
			EstimatedOrderCost: suggested.Mul(b.UnitCost),
			CoveragePct:        coverage,
		}
		// Sin producto (borrado del catálogo) la sugerencia sale sin SKU ni nombre.
		if p, err := uc.products.GetByID(ctx, b.ProductID); err == nil && p != nil {
			s.SKU = p.SKU
			s.ProductName = p.Name
		}
		suggestions = append(suggestions, s)
	}

	// Primero menor cobertura del mínimo, luego mayor costo estimado.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if !a.CoveragePct.Equal(b.CoveragePct) {
			return a.CoveragePct.LessThan(b.CoveragePct)
		}
		return a.EstimatedOrderCost.GreaterThan(b.EstimatedOrderCost)
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

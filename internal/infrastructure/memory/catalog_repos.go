package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
)

// ProductRepo catálogo de productos en memoria. SKU único por empresa.
type ProductRepo struct{ base }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	defer r.lock()()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	for _, other := range r.st().products {
		if other.CompanyID == p.CompanyID && other.SKU == p.SKU {
			return fmt.Errorf("create product %s: %w", p.SKU, domain.ErrDuplicate)
		}
	}
	r.st().products[p.ID] = *p
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.lock()()
	if p, ok := r.st().products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *ProductRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	defer r.lock()()
	for _, p := range r.st().products {
		if p.CompanyID == companyID && p.SKU == sku {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *ProductRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	defer r.lock()()
	var out []*entity.Product
	for _, p := range r.st().products {
		if p.CompanyID == companyID {
			p := p
			out = append(out, &p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return paginate(out, limit, offset), nil
}

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct{ base }

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	defer r.lock()()
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	r.st().warehouses[w.ID] = *w
	return nil
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	defer r.lock()()
	if w, ok := r.st().warehouses[id]; ok {
		return &w, nil
	}
	return nil, nil
}

func (r *WarehouseRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	defer r.lock()()
	var out []*entity.Warehouse
	for _, w := range r.st().warehouses {
		if w.CompanyID == companyID {
			w := w
			out = append(out, &w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), nil
}

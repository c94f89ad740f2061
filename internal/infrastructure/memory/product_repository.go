package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/insumos-api/internal/domain"
	"github.com/jhoicas/insumos-api/internal/domain/entity"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en memoria; con tx participa de la unidad de trabajo.
type ProductRepo struct {
	s  *Store
	tx *txn
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	cp := *product
	return r.s.write(r.tx, []string{productKey(cp.ID)},
		func() error {
			if _, ok := r.s.products[cp.ID]; ok {
				return domain.ErrDuplicate
			}
			return nil
		},
		func() { r.s.products[cp.ID] = &cp },
	)
}

// GetByID obtiene una copia del producto; (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.s.read(r.tx, productKey(id), func() {
		if p, ok := r.s.products[id]; ok {
			cp := *p
			out = &cp
		}
	})
	return out, err
}

// GetForUpdate igual que GetByID; la versión leída queda en el read-set de la tx.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

// Update actualiza los datos descriptivos.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	cp := *product
	return r.s.write(r.tx, []string{productKey(cp.ID)},
		func() error { return r.exists(cp.ID) },
		func() {
			p := r.s.products[cp.ID]
			p.Name = cp.Name
			p.Category = cp.Category
			p.Location = cp.Location
			p.UpdatedAt = cp.UpdatedAt
		},
	)
}

// UpdateStock fija el stock actual.
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, stock int64) error {
	return r.s.write(r.tx, []string{productKey(id)},
		func() error { return r.exists(id) },
		func() {
			p := r.s.products[id]
			p.CurrentStock = stock
			p.UpdatedAt = r.s.now()
		},
	)
}

// List lista productos por nombre; search filtra por código o nombre sin distinguir mayúsculas.
func (r *ProductRepo) List(ctx context.Context, search string, limit, offset int) ([]*entity.Product, error) {
	needle := strings.ToLower(search)
	r.s.mu.RLock()
	list := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if needle != "" && !strings.Contains(strings.ToLower(p.Code), needle) && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		cp := *p
		list = append(list, &cp)
	}
	r.s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return page(list, limit, offset), nil
}

// Delete elimina el producto.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(r.tx, []string{productKey(id)},
		func() error { return r.exists(id) },
		func() { delete(r.s.products, id) },
	)
}

// exists se invoca con el lock tomado.
func (r *ProductRepo) exists(id string) error {
	if _, ok := r.s.products[id]; !ok {
		return domain.ErrNotFound
	}
	return nil
}

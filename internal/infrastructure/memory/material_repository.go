package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/insumos-api/internal/domain"
	"github.com/jhoicas/insumos-api/internal/domain/entity"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo insumos en memoria. Los códigos son únicos.
type MaterialRepo struct {
	s  *Store
	tx *txn
}

// Create persiste un nuevo insumo.
func (r *MaterialRepo) Create(ctx context.Context, material *entity.Material) error {
	cp := *material
	return r.s.write(r.tx, []string{materialKey(cp.ID), keyMaterials},
		func() error {
			if _, ok := r.s.materials[cp.ID]; ok {
				return domain.ErrDuplicate
			}
			return r.uniqueCode(cp.ID, cp.Code)
		},
		func() { r.s.materials[cp.ID] = &cp },
	)
}

// GetByID obtiene una copia del insumo; (nil, nil) si no existe.
func (r *MaterialRepo) GetByID(ctx context.Context, id string) (*entity.Material, error) {
	var out *entity.Material
	err := r.s.read(r.tx, materialKey(id), func() {
		if m, ok := r.s.materials[id]; ok {
			cp := *m
			out = &cp
		}
	})
	return out, err
}

// GetForUpdate igual que GetByID; la versión leída queda en el read-set de la tx.
func (r *MaterialRepo) GetForUpdate(ctx context.Context, id string) (*entity.Material, error) {
	return r.GetByID(ctx, id)
}

// Update reemplaza el insumo conservando CreatedAt.
func (r *MaterialRepo) Update(ctx context.Context, material *entity.Material) error {
	cp := *material
	return r.s.write(r.tx, []string{materialKey(cp.ID), keyMaterials},
		func() error {
			if err := r.exists(cp.ID); err != nil {
				return err
			}
			return r.uniqueCode(cp.ID, cp.Code)
		},
		func() {
			cp.CreatedAt = r.s.materials[cp.ID].CreatedAt
			r.s.materials[cp.ID] = &cp
		},
	)
}

// UpdateStock fija el stock en unidad menor.
func (r *MaterialRepo) UpdateStock(ctx context.Context, id string, stock int64) error {
	return r.s.write(r.tx, []string{materialKey(id)},
		func() error { return r.exists(id) },
		func() {
			m := r.s.materials[id]
			m.Stock = stock
			m.UpdatedAt = r.s.now()
		},
	)
}

// List lista insumos por nombre aplicando búsqueda y filtro de stock bajo.
func (r *MaterialRepo) List(ctx context.Context, filter repository.MaterialFilter) ([]*entity.Material, error) {
	needle := strings.ToLower(filter.Search)
	r.s.mu.RLock()
	list := make([]*entity.Material, 0, len(r.s.materials))
	for _, m := range r.s.materials {
		if needle != "" && !strings.Contains(strings.ToLower(m.Code), needle) && !strings.Contains(strings.ToLower(m.Name), needle) {
			continue
		}
		if filter.LowStock && !m.IsLowStock() {
			continue
		}
		cp := *m
		list = append(list, &cp)
	}
	r.s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return page(list, filter.Limit, filter.Offset), nil
}

// Delete elimina el insumo; las recetas que lo referencian no se tocan.
func (r *MaterialRepo) Delete(ctx context.Context, id string) error {
	return r.s.write(r.tx, []string{materialKey(id), keyMaterials},
		func() error { return r.exists(id) },
		func() { delete(r.s.materials, id) },
	)
}

func (r *MaterialRepo) exists(id string) error {
	if _, ok := r.s.materials[id]; !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MaterialRepo) uniqueCode(id, code string) error {
	for _, m := range r.s.materials {
		if m.ID != id && m.Code == code {
			return domain.ErrDuplicate
		}
	}
	return nil
}

package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/insumos-api/internal/domain/entity"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
)

var _ repository.FabricationRepository = (*FabricationRepo)(nil)

// FabricationRepo registros de fabricación en memoria.
type FabricationRepo struct {
	s  *Store
	tx *txn
}

// Create agrega el registro; con tx se persiste al confirmar.
func (r *FabricationRepo) Create(ctx context.Context, fabrication *entity.Fabrication) error {
	cp := *fabrication
	cp.MaterialsConsumed = append([]entity.ConsumedMaterial(nil), fabrication.MaterialsConsumed...)
	return r.s.write(r.tx, nil, nil, func() { r.s.fabrications = append(r.s.fabrications, cp) })
}

// GetByID obtiene un registro; (nil, nil) si no existe.
func (r *FabricationRepo) GetByID(ctx context.Context, id string) (*entity.Fabrication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.fabrications {
		if r.s.fabrications[i].ID == id {
			f := r.s.fabrications[i]
			return &f, nil
		}
	}
	return nil, nil
}

// List historial completo, del más reciente al más antiguo.
func (r *FabricationRepo) List(ctx context.Context, limit, offset int) ([]*entity.Fabrication, error) {
	return r.list("", limit, offset), nil
}

// ListByProduct historial de un producto.
func (r *FabricationRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.Fabrication, error) {
	return r.list(productID, limit, offset), nil
}

func (r *FabricationRepo) list(productID string, limit, offset int) []*entity.Fabrication {
	r.s.mu.RLock()
	list := make([]*entity.Fabrication, 0, len(r.s.fabrications))
	for i := range r.s.fabrications {
		f := r.s.fabrications[i]
		if productID != "" && f.ProductID != productID {
			continue
		}
		list = append(list, &f)
	}
	r.s.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Date.After(list[j].Date)
	})
	return page(list, limit, offset)
}

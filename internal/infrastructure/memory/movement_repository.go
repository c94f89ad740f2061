package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/insumos-api/internal/domain/entity"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo movimientos en memoria (solo inserción).
type MovementRepo struct {
	s  *Store
	tx *txn
}

// Create agrega el movimiento; con tx se persiste al confirmar.
func (r *MovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	cp := *movement
	return r.s.write(r.tx, nil, nil, func() { r.s.movements = append(r.s.movements, cp) })
}

// List devuelve los movimientos del más reciente al más antiguo.
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.Movement, error) {
	r.s.mu.RLock()
	list := make([]*entity.Movement, 0, len(r.s.movements))
	for i := range r.s.movements {
		m := r.s.movements[i]
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.From != nil && m.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.Date.After(*filter.To) {
			continue
		}
		list = append(list, &m)
	}
	r.s.mu.RUnlock()

	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.After(list[j].Date)
		}
		return list[i].ID < list[j].ID
	})
	return page(list, filter.Limit, filter.Offset), nil
}

// ExistsForProduct indica si el producto tiene movimientos.
func (r *MovementRepo) ExistsForProduct(ctx context.Context, productID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

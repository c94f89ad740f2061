package repository

import (
	"context"

	"github.com/jhoicas/insumos-api/internal/domain/entity"
)

// MaterialFilter filtros para listar insumos.
type MaterialFilter struct {
	Search   string
	LowStock bool
	Limit    int
	Offset   int
}

// MaterialRepository define el puerto de persistencia para insumos.
// GetByID y GetForUpdate devuelven (nil, nil) si el insumo no existe (referencia débil).
type MaterialRepository interface {
	Create(ctx context.Context, material *entity.Material) error
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Material, error)
	Update(ctx context.Context, material *entity.Material) error
	UpdateStock(ctx context.Context, id string, stock int64) error
	List(ctx context.Context, filter MaterialFilter) ([]*entity.Material, error)
	Delete(ctx context.Context, id string) error
}

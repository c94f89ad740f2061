package repository

import (
	"context"

	"github.com/jhoicas/insumos-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para productos terminados (DIP).
// GetByID devuelve (nil, nil) si el producto no existe.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// GetForUpdate lee el producto dentro de una unidad de trabajo, registrándolo en el read-set.
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	UpdateStock(ctx context.Context, id string, stock int64) error
	List(ctx context.Context, search string, limit, offset int) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
}

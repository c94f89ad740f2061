package repository

import (
	"context"

	"github.com/jhoicas/insumos-api/internal/domain/entity"
)

// FabricationRepository persistencia de registros de fabricación. Solo inserción y lectura.
type FabricationRepository interface {
	Create(ctx context.Context, fabrication *entity.Fabrication) error
	GetByID(ctx context.Context, id string) (*entity.Fabrication, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Fabrication, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.Fabrication, error)
}

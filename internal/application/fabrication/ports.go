package fabrication

import (
	"context"

	"github.com/jhoicas/insumos-api/internal/domain/repository"
)

// TxRunner ejecuta fn como una unidad de trabajo atómica con repositorios atados a ella.
// Ante un conflicto de concurrencia la implementación puede re-ejecutar fn completa;
// fn no debe acumular estado fuera de su propio cuerpo. Si fn devuelve error nada se persiste.
type TxRunner interface {
	RunFabrication(ctx context.Context, fn func(
		productRepo repository.ProductRepository,
		materialRepo repository.MaterialRepository,
		fabricationRepo repository.FabricationRepository,
	) error) error
}

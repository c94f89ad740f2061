package fabrication

import (
	"context"

	"github.com/jhoicas/insumos-api/internal/application/dto"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
)

// HistoryUseCase consultas sobre el historial de fabricaciones (solo lectura).
type HistoryUseCase struct {
	repo repository.FabricationRepository
}

// NewHistoryUseCase construye el caso de uso.
func NewHistoryUseCase(repo repository.FabricationRepository) *HistoryUseCase {
	return &HistoryUseCase{repo: repo}
}

// List devuelve las fabricaciones más recientes primero.
func (uc *HistoryUseCase) List(ctx context.Context, limit, offset int) (*dto.FabricationListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.ToFabricationList(list, limit, offset), nil
}

// ListByProduct historial de un producto.
func (uc *HistoryUseCase) ListByProduct(ctx context.Context, productID string, limit, offset int) (*dto.FabricationListResponse, error) {
	list, err := uc.repo.ListByProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, err
	}
	return dto.ToFabricationList(list, limit, offset), nil
}

// GetByID obtiene una fabricación; (nil, nil) si no existe.
func (uc *HistoryUseCase) GetByID(ctx context.Context, id string) (*dto.FabricationResponse, error) {
	fab, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if fab == nil {
		return nil, nil
	}
	return dto.ToFabricationResponse(fab), nil
}

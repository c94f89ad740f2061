package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/insumos-api/internal/application/dto"
	"github.com/jhoicas/insumos-api/internal/domain"
	"github.com/jhoicas/insumos-api/internal/domain/entity"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
)

// MaterialUseCase casos de uso CRUD para insumos.
type MaterialUseCase struct {
	repo repository.MaterialRepository
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(repo repository.MaterialRepository) *MaterialUseCase {
	return &MaterialUseCase{repo: repo}
}

// Create crea un insumo. El factor de conversión debe ser positivo; si no se informa vale 1.
func (uc *MaterialUseCase) Create(ctx context.Context, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	if in.ConversionFactor.IsZero() {
		in.ConversionFactor = decimalOne
	}
	if in.ConversionFactor.Sign() < 0 || in.Stock < 0 {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	m := &entity.Material{
		ID:               uuid.New().String(),
		Code:             strings.TrimSpace(in.Code),
		Name:             strings.TrimSpace(in.Name),
		Category:         strings.TrimSpace(in.Category),
		Unit:             strings.TrimSpace(in.Unit),
		MajorUnit:        strings.TrimSpace(in.MajorUnit),
		ConversionFactor: in.ConversionFactor,
		Location:         strings.TrimSpace(in.Location),
		Stock:            in.Stock,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if m.Code == "" || m.Name == "" || m.Unit == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return dto.ToMaterialResponse(m), nil
}

// GetByID obtiene un insumo; (nil, nil) si no existe.
func (uc *MaterialUseCase) GetByID(ctx context.Context, id string) (*dto.MaterialResponse, error) {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ToMaterialResponse(m), nil
}

// Update actualización parcial; (nil, nil) si no existe.
func (uc *MaterialUseCase) Update(ctx context.Context, id string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}
	if in.Code != nil {
		m.Code = strings.TrimSpace(*in.Code)
	}
	if in.Name != nil {
		m.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		m.Category = strings.TrimSpace(*in.Category)
	}
	if in.Unit != nil {
		m.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.MajorUnit != nil {
		m.MajorUnit = strings.TrimSpace(*in.MajorUnit)
	}
	if in.ConversionFactor != nil {
		if in.ConversionFactor.Sign() <= 0 {
			return nil, domain.ErrInvalidInput
		}
		m.ConversionFactor = *in.ConversionFactor
	}
	if in.Location != nil {
		m.Location = strings.TrimSpace(*in.Location)
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, domain.ErrInvalidInput
		}
		m.Stock = *in.Stock
	}
	if m.Code == "" || m.Name == "" || m.Unit == "" {
		return nil, domain.ErrInvalidInput
	}
	m.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return dto.ToMaterialResponse(m), nil
}

// List lista insumos con filtros de búsqueda y stock bajo.
func (uc *MaterialUseCase) List(ctx context.Context, filter repository.MaterialFilter) (*dto.MaterialListResponse, error) {
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *dto.ToMaterialResponse(m))
	}
	return &dto.MaterialListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// Delete elimina un insumo. Las recetas que lo referencian quedan con referencia colgante.
func (uc *MaterialUseCase) Delete(ctx context.Context, id string) error {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

// BulkDelete elimina varios insumos; devuelve cuántos existían y fueron eliminados.
func (uc *MaterialUseCase) BulkDelete(ctx context.Context, ids []string) (int, error) {
	deleted := 0
	for _, id := range ids {
		err := uc.Delete(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

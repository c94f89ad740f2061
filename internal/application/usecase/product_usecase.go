package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/insumos-api/internal/application/dto"
	"github.com/jhoicas/insumos-api/internal/domain"
	"github.com/jhoicas/insumos-api/internal/domain/entity"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock se maneja vía movimientos y fabricación.
type ProductUseCase struct {
	repo       repository.ProductRepository
	movRepo    repository.MovementRepository
	recipeRepo repository.RecipeRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	repo repository.ProductRepository,
	movRepo repository.MovementRepository,
	recipeRepo repository.RecipeRepository,
) *ProductUseCase {
	return &ProductUseCase{repo: repo, movRepo: movRepo, recipeRepo: recipeRepo}
}

// Create crea un nuevo producto cuyo ID es el código normalizado (unicidad por código).
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	code := entity.NormalizeCode(in.Code)
	name := strings.TrimSpace(in.Name)
	location := strings.TrimSpace(in.Location)
	if code == "" || name == "" || location == "" || in.CurrentStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.repo.GetByID(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	product := &entity.Product{
		ID:           code,
		Code:         code,
		Name:         name,
		Category:     strings.TrimSpace(in.Category),
		Location:     location,
		CurrentStock: in.CurrentStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID; (nil, nil) si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product), nil
}

// Update actualiza datos descriptivos. No permite modificar el stock.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		product.Category = strings.TrimSpace(*in.Category)
	}
	if in.Location != nil {
		product.Location = strings.TrimSpace(*in.Location)
	}
	if product.Name == "" || product.Location == "" {
		return nil, domain.ErrInvalidInput
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product), nil
}

// List lista productos; search filtra por nombre o código.
func (uc *ProductUseCase) List(ctx context.Context, search string, limit, offset int) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx, strings.TrimSpace(search), limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *dto.ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina un producto sin movimientos registrados junto con su receta.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	hasMovements, err := uc.movRepo.ExistsForProduct(ctx, id)
	if err != nil {
		return err
	}
	if hasMovements {
		return domain.ErrProductHasMovements
	}
	if err := uc.recipeRepo.DeleteByProduct(ctx, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

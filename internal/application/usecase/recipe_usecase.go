package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/insumos-api/internal/application/dto"
	"github.com/jhoicas/insumos-api/internal/domain"
	"github.com/jhoicas/insumos-api/internal/domain/entity"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
)

var decimalOne = decimal.NewFromInt(1)

// RecipeUseCase asignación de recetas (insumos por unidad de producto).
type RecipeUseCase struct {
	recipeRepo   repository.RecipeRepository
	productRepo  repository.ProductRepository
	materialRepo repository.MaterialRepository
}

// NewRecipeUseCase construye el caso de uso.
func NewRecipeUseCase(
	recipeRepo repository.RecipeRepository,
	productRepo repository.ProductRepository,
	materialRepo repository.MaterialRepository,
) *RecipeUseCase {
	return &RecipeUseCase{recipeRepo: recipeRepo, productRepo: productRepo, materialRepo: materialRepo}
}

// Get devuelve la receta del producto (vacía si no tiene).
func (uc *RecipeUseCase) Get(ctx context.Context, productID string) (*dto.RecipeResponse, error) {
	lines, err := uc.recipeRepo.GetRecipe(ctx, productID)
	if err != nil {
		return nil, err
	}
	return dto.ToRecipeResponse(productID, lines), nil
}

// AddLine agrega un insumo a la receta guardando una copia de su nombre.
func (uc *RecipeUseCase) AddLine(ctx context.Context, productID string, in dto.AddRecipeLineRequest) (*dto.RecipeLineResponse, error) {
	unit := strings.TrimSpace(in.Unit)
	if in.MaterialID == "" || unit == "" || in.Quantity.Sign() <= 0 {
		return nil, domain.ErrInvalidInput
	}
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}
	name := entity.UnknownMaterialName
	material, err := uc.materialRepo.GetByID(ctx, in.MaterialID)
	if err != nil {
		return nil, err
	}
	if material != nil && material.Name != "" {
		name = material.Name
	}
	line := &entity.RecipeLine{
		ID:                   uuid.New().String(),
		ProductID:            productID,
		MaterialID:           in.MaterialID,
		Quantity:             in.Quantity,
		Unit:                 unit,
		MaterialNameSnapshot: name,
		CreatedAt:            time.Now(),
	}
	if err := uc.recipeRepo.AddLine(ctx, line); err != nil {
		return nil, err
	}
	out := dto.ToRecipeLineResponse(*line)
	return &out, nil
}

// RemoveLine elimina una línea de la receta.
func (uc *RecipeUseCase) RemoveLine(ctx context.Context, productID, lineID string) error {
	ok, err := uc.recipeRepo.RemoveLine(ctx, productID, lineID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

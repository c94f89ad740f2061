package repository

import (
	"context"

	"github.com/jhoicas/insumos-api/internal/domain/entity"
)

// RecipeRepository lectura y mantenimiento de recetas.
// GetRecipe devuelve las líneas en orden de creación; una receta vacía no es error.
type RecipeRepository interface {
	GetRecipe(ctx context.Context, productID string) ([]entity.RecipeLine, error)
	AddLine(ctx context.Context, line *entity.RecipeLine) error
	RemoveLine(ctx context.Context, productID, lineID string) (bool, error)
	DeleteByProduct(ctx context.Context, productID string) error
}

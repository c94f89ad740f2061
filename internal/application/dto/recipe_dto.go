package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/insumos-api/internal/domain/entity"
)

// AddRecipeLineRequest body para agregar un insumo a la receta de un producto.
type AddRecipeLineRequest struct {
	MaterialID string          `json:"material_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit" validate:"required,max=20"`
}

// RecipeLineResponse línea de receta.
type RecipeLineResponse struct {
	ID           string          `json:"id"`
	MaterialID   string          `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
}

// RecipeResponse receta completa de un producto.
type RecipeResponse struct {
	ProductID string               `json:"product_id"`
	Lines     []RecipeLineResponse `json:"lines"`
}

// ToRecipeResponse mapea las líneas de receta.
func ToRecipeResponse(productID string, lines []entity.RecipeLine) *RecipeResponse {
	out := &RecipeResponse{ProductID: productID, Lines: make([]RecipeLineResponse, 0, len(lines))}
	for _, l := range lines {
		out.Lines = append(out.Lines, ToRecipeLineResponse(l))
	}
	return out
}

// ToRecipeLineResponse mapea una línea.
func ToRecipeLineResponse(l entity.RecipeLine) RecipeLineResponse {
	return RecipeLineResponse{
		ID:           l.ID,
		MaterialID:   l.MaterialID,
		MaterialName: l.MaterialNameSnapshot,
		Quantity:     l.Quantity,
		Unit:         l.Unit,
	}
}

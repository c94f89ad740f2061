package memory

import (
	"context"

	"github.com/jhoicas/insumos-api/internal/domain/entity"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo recetas en memoria, en orden de inserción.
type RecipeRepo struct {
	s *Store
}

// GetRecipe devuelve una copia de las líneas del producto.
func (r *RecipeRepo) GetRecipe(ctx context.Context, productID string) ([]entity.RecipeLine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	lines := r.s.recipes[productID]
	out := make([]entity.RecipeLine, len(lines))
	copy(out, lines)
	return out, nil
}

// AddLine agrega una línea al final de la receta.
func (r *RecipeRepo) AddLine(ctx context.Context, line *entity.RecipeLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.recipes[line.ProductID] = append(r.s.recipes[line.ProductID], *line)
	return nil
}

// RemoveLine elimina la línea; false si no pertenece al producto.
func (r *RecipeRepo) RemoveLine(ctx context.Context, productID, lineID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lines := r.s.recipes[productID]
	for i, l := range lines {
		if l.ID == lineID {
			r.s.recipes[productID] = append(lines[:i:i], lines[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// DeleteByProduct elimina la receta completa.
func (r *RecipeRepo) DeleteByProduct(ctx context.Context, productID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.recipes, productID)
	return nil
}

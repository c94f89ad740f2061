package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/insumos-api/internal/domain/entity"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo líneas de receta sobre PostgreSQL. material_id no tiene FK: el insumo puede borrarse.
type RecipeRepo struct {
	q Querier
}

// NewRecipeRepository construye el adaptador. Pasar pool o tx.
func NewRecipeRepository(q Querier) *RecipeRepo {
	return &RecipeRepo{q: q}
}

// GetRecipe devuelve las líneas del producto en orden de creación.
func (r *RecipeRepo) GetRecipe(ctx context.Context, productID string) ([]entity.RecipeLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, material_id, quantity, unit, material_name, created_at
		FROM recipe_lines WHERE product_id = $1 ORDER BY created_at, id`, productID)
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	defer rows.Close()

	var lines []entity.RecipeLine
	for rows.Next() {
		var l entity.RecipeLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.MaterialID, &l.Quantity, &l.Unit, &l.MaterialNameSnapshot, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recipe line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// AddLine agrega una línea a la receta.
func (r *RecipeRepo) AddLine(ctx context.Context, line *entity.RecipeLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO recipe_lines (id, product_id, material_id, quantity, unit, material_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		line.ID, line.ProductID, line.MaterialID, line.Quantity, line.Unit, line.MaterialNameSnapshot, line.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert recipe line: %w", err)
	}
	return nil
}

// RemoveLine elimina una línea; devuelve false si no pertenece al producto.
func (r *RecipeRepo) RemoveLine(ctx context.Context, productID, lineID string) (bool, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM recipe_lines WHERE product_id = $1 AND id = $2`, productID, lineID)
	if err != nil {
		return false, fmt.Errorf("delete recipe line: %w", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// DeleteByProduct elimina la receta completa del producto.
func (r *RecipeRepo) DeleteByProduct(ctx context.Context, productID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM recipe_lines WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}

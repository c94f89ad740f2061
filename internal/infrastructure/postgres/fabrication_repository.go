package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/insumos-api/internal/domain/entity"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
)

var _ repository.FabricationRepository = (*FabricationRepo)(nil)

// FabricationRepo registros de fabricación; los insumos consumidos se guardan como JSONB.
type FabricationRepo struct {
	q Querier
}

// NewFabricationRepository construye el adaptador. Pasar pool o tx.
func NewFabricationRepository(q Querier) *FabricationRepo {
	return &FabricationRepo{q: q}
}

const fabricationColumns = `id, product_id, product_name, quantity, materials_consumed, date, user_email`

// Create inserta el registro de fabricación.
func (r *FabricationRepo) Create(ctx context.Context, f *entity.Fabrication) error {
	consumed, err := json.Marshal(f.MaterialsConsumed)
	if err != nil {
		return fmt.Errorf("marshal materials consumed: %w", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO fabrications (`+fabricationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		f.ID, f.ProductID, f.ProductName, f.Quantity, consumed, f.Date, f.UserEmail,
	)
	if err != nil {
		return fmt.Errorf("insert fabrication: %w", err)
	}
	return nil
}

// GetByID obtiene un registro por ID; (nil, nil) si no existe.
func (r *FabricationRepo) GetByID(ctx context.Context, id string) (*entity.Fabrication, error) {
	f, err := scanFabrication(r.q.QueryRow(ctx, `SELECT `+fabricationColumns+` FROM fabrications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get fabrication: %w", err)
	}
	return f, nil
}

// List devuelve el historial del más reciente al más antiguo.
func (r *FabricationRepo) List(ctx context.Context, limit, offset int) ([]*entity.Fabrication, error) {
	return r.list(ctx, `SELECT `+fabricationColumns+` FROM fabrications
		ORDER BY date DESC, id LIMIT $1 OFFSET $2`, limit, offset)
}

// ListByProduct historial de un producto.
func (r *FabricationRepo) ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.Fabrication, error) {
	return r.list(ctx, `SELECT `+fabricationColumns+` FROM fabrications WHERE product_id = $1
		ORDER BY date DESC, id LIMIT $2 OFFSET $3`, productID, limit, offset)
}

func (r *FabricationRepo) list(ctx context.Context, query string, args ...any) ([]*entity.Fabrication, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list fabrications: %w", err)
	}
	defer rows.Close()

	var list []*entity.Fabrication
	for rows.Next() {
		f, err := scanFabrication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fabrication: %w", err)
		}
		list = append(list, f)
	}
	return list, rows.Err()
}

func scanFabrication(row pgx.Row) (*entity.Fabrication, error) {
	var f entity.Fabrication
	var consumed []byte
	if err := row.Scan(&f.ID, &f.ProductID, &f.ProductName, &f.Quantity, &consumed, &f.Date, &f.UserEmail); err != nil {
		return nil, err
	}
	if len(consumed) > 0 {
		if err := json.Unmarshal(consumed, &f.MaterialsConsumed); err != nil {
			return nil, fmt.Errorf("unmarshal materials consumed: %w", err)
		}
	}
	return &f, nil
}

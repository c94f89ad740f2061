package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/insumos-api/internal/application/dto"
	"github.com/jhoicas/insumos-api/internal/application/usecase"
	"github.com/jhoicas/insumos-api/internal/domain"
	"github.com/jhoicas/insumos-api/internal/domain/entity"
	"github.com/jhoicas/insumos-api/internal/infrastructure/memory"
)

func TestProductUseCase_CreateNormalizesCode(t *testing.T) {
	store := memory.New()
	uc := usecase.NewProductUseCase(store.Products(), store.Movements(), store.Recipes())
	ctx := context.Background()

	p, err := uc.Create(ctx, dto.CreateProductRequest{Code: "  JAB-01 ", Name: "Jabón", Location: "Bodega"})
	require.NoError(t, err)
	assert.Equal(t, "jab-01", p.ID)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "jab-01", Name: "Otro", Location: "Bodega"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "x", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUseCase_DeleteGuardedByMovements(t *testing.T) {
	store := memory.New()
	uc := usecase.NewProductUseCase(store.Products(), store.Movements(), store.Recipes())
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{Code: "a", Name: "A", Location: "B"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Code: "b", Name: "B", Location: "B"})
	require.NoError(t, err)
	require.NoError(t, store.Movements().Create(ctx, &entity.Movement{ID: "m", ProductID: "a", Type: entity.MovementTypeEntry, Quantity: 1}))
	require.NoError(t, store.Recipes().AddLine(ctx, &entity.RecipeLine{ID: "l", ProductID: "b", MaterialID: "x"}))

	assert.ErrorIs(t, uc.Delete(ctx, "a"), domain.ErrProductHasMovements)
	assert.ErrorIs(t, uc.Delete(ctx, "zzz"), domain.ErrNotFound)

	require.NoError(t, uc.Delete(ctx, "b"))
	lines, _ := store.Recipes().GetRecipe(ctx, "b")
	assert.Empty(t, lines)
	got, err := uc.GetByID(ctx, "b")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMaterialUseCase_CreateAndBulkDelete(t *testing.T) {
	store := memory.New()
	uc := usecase.NewMaterialUseCase(store.Materials())
	ctx := context.Background()

	m, err := uc.Create(ctx, dto.CreateMaterialRequest{Code: "HAR", Name: "Harina", Unit: "g", MajorUnit: "kg", ConversionFactor: decimal.NewFromInt(1000), Stock: 2500})
	require.NoError(t, err)
	assert.Equal(t, "2500 g (2 kg y 500 g)", m.StockDisplay)
	assert.False(t, m.LowStock)

	other, err := uc.Create(ctx, dto.CreateMaterialRequest{Code: "SAL", Name: "Sal", Unit: "g"})
	require.NoError(t, err)
	assert.True(t, other.ConversionFactor.Equal(decimal.NewFromInt(1)))

	n, err := uc.BulkDelete(ctx, []string{m.ID, "inexistente", other.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRecipeUseCase_AddLineSnapshotsName(t *testing.T) {
	store := memory.New()
	ctx := context.Background()
	products := usecase.NewProductUseCase(store.Products(), store.Movements(), store.Recipes())
	materials := usecase.NewMaterialUseCase(store.Materials())
	recipes := usecase.NewRecipeUseCase(store.Recipes(), store.Products(), store.Materials())

	_, err := products.Create(ctx, dto.CreateProductRequest{Code: "pan", Name: "Pan", Location: "B"})
	require.NoError(t, err)
	har, err := materials.Create(ctx, dto.CreateMaterialRequest{Code: "HAR", Name: "Harina", Unit: "g", MajorUnit: "kg", ConversionFactor: decimal.NewFromInt(1000)})
	require.NoError(t, err)

	line, err := recipes.AddLine(ctx, "pan", dto.AddRecipeLineRequest{MaterialID: har.ID, Quantity: decimal.NewFromInt(2), Unit: "kg"})
	require.NoError(t, err)
	assert.Equal(t, "Harina", line.MaterialName)

	ghost, err := recipes.AddLine(ctx, "pan", dto.AddRecipeLineRequest{MaterialID: "borrado", Quantity: decimal.NewFromInt(1), Unit: "g"})
	require.NoError(t, err)
	assert.Equal(t, entity.UnknownMaterialName, ghost.MaterialName)

	_, err = recipes.AddLine(ctx, "nada", dto.AddRecipeLineRequest{MaterialID: har.ID, Quantity: decimal.NewFromInt(1), Unit: "g"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = recipes.AddLine(ctx, "pan", dto.AddRecipeLineRequest{MaterialID: har.ID, Quantity: decimal.Zero, Unit: "g"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	recipe, err := recipes.Get(ctx, "pan")
	require.NoError(t, err)
	require.Len(t, recipe.Lines, 2)

	require.NoError(t, recipes.RemoveLine(ctx, "pan", ghost.ID))
	assert.ErrorIs(t, recipes.RemoveLine(ctx, "pan", ghost.ID), domain.ErrNotFound)
}

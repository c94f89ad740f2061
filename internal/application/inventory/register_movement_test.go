package inventory_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/insumos-api/internal/application/dto"
	"github.com/jhoicas/insumos-api/internal/application/inventory"
	"github.com/jhoicas/insumos-api/internal/domain"
	"github.com/jhoicas/insumos-api/internal/domain/entity"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
	"github.com/jhoicas/insumos-api/internal/infrastructure/memory"
)

func setup(t *testing.T) (*memory.Store, *inventory.RegisterMovementUseCase) {
	t.Helper()
	store := memory.New(memory.WithRetry(3, 0))
	require.NoError(t, store.Products().Create(context.Background(), &entity.Product{
		ID: "jabon", Code: "jabon", Name: "Jabón de avena", CurrentStock: 5,
	}))
	return store, inventory.NewRegisterMovementUseCase(store, store.Movements(), store.Products())
}

func TestRegisterMovement_EntryAndExit(t *testing.T) {
	store, uc := setup(t)
	ctx := context.Background()

	_, err := uc.RegisterMovement(ctx, inventory.MovementInput{
		ProductID: "jabon", Type: entity.MovementTypeEntry, Quantity: decimal.NewFromInt(3), Reason: "compra",
	})
	require.NoError(t, err)
	_, err = uc.RegisterMovement(ctx, inventory.MovementInput{
		ProductID: "jabon", Type: entity.MovementTypeExit, Quantity: decimal.NewFromInt(8), Reason: "venta",
	})
	require.NoError(t, err)

	p, _ := store.Products().GetByID(ctx, "jabon")
	assert.Equal(t, int64(0), p.CurrentStock)
}

func TestRegisterMovement_ExitBeyondStock(t *testing.T) {
	store, uc := setup(t)
	ctx := context.Background()

	_, err := uc.RegisterMovement(ctx, inventory.MovementInput{
		ProductID: "jabon", Type: entity.MovementTypeExit, Quantity: decimal.NewFromInt(6), Reason: "venta",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	p, _ := store.Products().GetByID(ctx, "jabon")
	assert.Equal(t, int64(5), p.CurrentStock)
	exists, _ := store.Movements().ExistsForProduct(ctx, "jabon")
	assert.False(t, exists)
}

func TestRegisterMovement_InvalidInput(t *testing.T) {
	_, uc := setup(t)
	ctx := context.Background()

	_, err := uc.RegisterMovement(ctx, inventory.MovementInput{ProductID: "jabon", Type: "ajuste", Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.RegisterMovement(ctx, inventory.MovementInput{ProductID: "jabon", Type: entity.MovementTypeEntry, Quantity: decimal.RequireFromString("1.5")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = uc.RegisterMovement(ctx, inventory.MovementInput{ProductID: "nada", Type: entity.MovementTypeEntry, Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestRegisterMovement_EntryOverflowIsInvalidQuantity(t *testing.T) {
	store, uc := setup(t)
	ctx := context.Background()

	_, err := uc.RegisterMovement(ctx, inventory.MovementInput{
		ProductID: "jabon", Type: entity.MovementTypeEntry, Quantity: decimal.NewFromInt(math.MaxInt64 - 4), Reason: "compra",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = uc.RegisterMovement(ctx, inventory.MovementInput{
		ProductID: "jabon", Type: entity.MovementTypeEntry, Quantity: decimal.RequireFromString("1e30"), Reason: "compra",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	p, _ := store.Products().GetByID(ctx, "jabon")
	assert.Equal(t, int64(5), p.CurrentStock)
	exists, _ := store.Movements().ExistsForProduct(ctx, "jabon")
	assert.False(t, exists)

	// justo hasta el máximo sí entra
	_, err = uc.RegisterMovement(ctx, inventory.MovementInput{
		ProductID: "jabon", Type: entity.MovementTypeEntry, Quantity: decimal.NewFromInt(math.MaxInt64 - 5), Reason: "compra",
	})
	require.NoError(t, err)
	p, _ = store.Products().GetByID(ctx, "jabon")
	assert.Equal(t, int64(math.MaxInt64), p.CurrentStock)
}

// brokenLookup falla al resolver el nombre del producto después del registro.
type brokenLookup struct {
	repository.ProductRepository
}

func (brokenLookup) GetByID(context.Context, string) (*entity.Product, error) {
	return nil, errors.New("conexión cerrada")
}

func TestRegisterMovementFromRequest_PropagatesLookupError(t *testing.T) {
	store, _ := setup(t)
	uc := inventory.NewRegisterMovementUseCase(store, store.Movements(), brokenLookup{store.Products()})

	_, err := uc.RegisterMovementFromRequest(context.Background(), "op@taller.test", dto.RegisterMovementRequest{
		ProductID: "jabon", Type: entity.MovementTypeEntry, Quantity: decimal.NewFromInt(1), Reason: "compra",
	})
	assert.EqualError(t, err, "conexión cerrada")
}

func TestListMovements_DeletedProductName(t *testing.T) {
	store, uc := setup(t)
	ctx := context.Background()

	resp, err := uc.RegisterMovementFromRequest(ctx, "ana@example.com", dto.RegisterMovementRequest{
		ProductID: "jabon", Type: entity.MovementTypeEntry, Quantity: decimal.NewFromInt(1), Reason: "ajuste",
	})
	require.NoError(t, err)
	assert.Equal(t, "Jabón de avena", resp.ProductName)
	assert.Equal(t, "ana@example.com", resp.UserEmail)

	require.NoError(t, store.Products().Delete(ctx, "jabon"))

	list, err := uc.ListMovements(ctx, repository.MovementFilter{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Eliminado", list.Items[0].ProductName)

	_, err = uc.ListMovements(ctx, repository.MovementFilter{Type: "otro"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

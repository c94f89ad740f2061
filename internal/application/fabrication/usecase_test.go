package fabrication_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/insumos-api/internal/application/fabrication"
	"github.com/jhoicas/insumos-api/internal/domain"
	"github.com/jhoicas/insumos-api/internal/domain/entity"
	domainfab "github.com/jhoicas/insumos-api/internal/domain/fabrication"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
	"github.com/jhoicas/insumos-api/internal/infrastructure/memory"
)

// countingRunner cuenta las unidades de trabajo abiertas.
type countingRunner struct {
	inner fabrication.TxRunner
	calls atomic.Int64
}

func (c *countingRunner) RunFabrication(ctx context.Context, fn func(
	repository.ProductRepository, repository.MaterialRepository, repository.FabricationRepository,
) error) error {
	c.calls.Add(1)
	return c.inner.RunFabrication(ctx, fn)
}

// conflictRunner simula una unidad de trabajo que agotó sus reintentos.
type conflictRunner struct{}

func (conflictRunner) RunFabrication(context.Context, func(
	repository.ProductRepository, repository.MaterialRepository, repository.FabricationRepository,
) error) error {
	return fmt.Errorf("commit: %w", domain.ErrStorageConflict)
}

type fixture struct {
	store  *memory.Store
	runner *countingRunner
	uc     *fabrication.ManufactureUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New(memory.WithRetry(50, 0))
	runner := &countingRunner{inner: store}
	return &fixture{
		store:  store,
		runner: runner,
		uc:     fabrication.NewManufactureUseCase(runner, store.Recipes(), nil),
	}
}

func (f *fixture) product(t *testing.T, id string, stock int64) {
	t.Helper()
	require.NoError(t, f.store.Products().Create(context.Background(), &entity.Product{
		ID: id, Code: id, Name: "Producto " + id, CurrentStock: stock,
	}))
}

func (f *fixture) material(t *testing.T, id, name, unit, major string, factor, stock int64) {
	t.Helper()
	require.NoError(t, f.store.Materials().Create(context.Background(), &entity.Material{
		ID: id, Code: id, Name: name, Unit: unit, MajorUnit: major,
		ConversionFactor: decimal.NewFromInt(factor), Stock: stock,
	}))
}

func (f *fixture) line(t *testing.T, productID, lineID, materialID, name, qty, unit string) {
	t.Helper()
	require.NoError(t, f.store.Recipes().AddLine(context.Background(), &entity.RecipeLine{
		ID: lineID, ProductID: productID, MaterialID: materialID,
		Quantity: decimal.RequireFromString(qty), Unit: unit, MaterialNameSnapshot: name,
	}))
}

func (f *fixture) stockOfMaterial(t *testing.T, id string) int64 {
	t.Helper()
	m, err := f.store.Materials().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m.Stock
}

func (f *fixture) stockOfProduct(t *testing.T, id string) int64 {
	t.Helper()
	p, err := f.store.Products().GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.CurrentStock
}

func (f *fixture) fabrications(t *testing.T) []*entity.Fabrication {
	t.Helper()
	list, err := f.store.Fabrications().List(context.Background(), 0, 0)
	require.NoError(t, err)
	return list
}

func units(n string) decimal.Decimal { return decimal.RequireFromString(n) }

func TestManufacture_InvalidQuantity(t *testing.T) {
	f := newFixture(t)
	f.product(t, "pan", 0)
	f.material(t, "harina", "Harina", "g", "kg", 1000, 10000)
	f.line(t, "pan", "l1", "harina", "Harina", "1", "kg")

	for _, q := range []string{"0", "-1", "1.5", "0.2"} {
		_, err := f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{ProductID: "pan", Units: units(q)})
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, q)
	}
	assert.Zero(t, f.runner.calls.Load())
	assert.Equal(t, int64(10000), f.stockOfMaterial(t, "harina"))
	assert.Empty(t, f.fabrications(t))
}

func TestManufacture_NoRecipe(t *testing.T) {
	f := newFixture(t)
	f.product(t, "pan", 0)

	_, err := f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{ProductID: "pan", Units: units("1")})
	assert.ErrorIs(t, err, domain.ErrNoRecipeAssigned)
	assert.Zero(t, f.runner.calls.Load())
}

func TestManufacture_ProductNotFound(t *testing.T) {
	f := newFixture(t)
	f.material(t, "harina", "Harina", "g", "kg", 1000, 10000)
	f.line(t, "fantasma", "l1", "harina", "Harina", "1", "kg")

	_, err := f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{ProductID: "fantasma", Units: units("1")})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, int64(10000), f.stockOfMaterial(t, "harina"))
	assert.Empty(t, f.fabrications(t))
}

func TestManufacture_Success(t *testing.T) {
	f := newFixture(t)
	f.product(t, "pan", 4)
	f.material(t, "harina", "Harina", "g", "kg", 1000, 10000)
	f.material(t, "sal", "Sal", "g", "kg", 1000, 100)
	f.line(t, "pan", "l1", "harina", "Harina", "2", "kg")
	f.line(t, "pan", "l2", "sal", "Sal", "2", "g")

	fab, err := f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{
		ProductID: "pan", Units: units("3"), UserEmail: "ana@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(7), f.stockOfProduct(t, "pan"))
	assert.Equal(t, int64(4000), f.stockOfMaterial(t, "harina")) // 2 kg * 1000 * 3
	assert.Equal(t, int64(94), f.stockOfMaterial(t, "sal"))      // 2 g * 3, sin factor

	assert.Equal(t, "pan", fab.ProductID)
	assert.Equal(t, "Producto pan", fab.ProductName)
	assert.Equal(t, int64(3), fab.Quantity)
	assert.Equal(t, "ana@example.com", fab.UserEmail)
	require.Len(t, fab.MaterialsConsumed, 2)
	assert.True(t, fab.MaterialsConsumed[0].Quantity.Equal(units("6")))
	assert.Equal(t, "kg", fab.MaterialsConsumed[0].Unit)
	assert.True(t, fab.MaterialsConsumed[1].Quantity.Equal(units("6")))
	assert.Equal(t, "g", fab.MaterialsConsumed[1].Unit)

	stored := f.fabrications(t)
	require.Len(t, stored, 1)
	assert.Equal(t, fab.ID, stored[0].ID)
}

func TestManufacture_AnonymousUser(t *testing.T) {
	f := newFixture(t)
	f.product(t, "pan", 0)
	f.material(t, "harina", "Harina", "g", "kg", 1000, 10000)
	f.line(t, "pan", "l1", "harina", "Harina", "1", "kg")

	fab, err := f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{ProductID: "pan", Units: units("1")})
	require.NoError(t, err)
	assert.Equal(t, entity.AnonymousUser, fab.UserEmail)
}

func TestManufacture_TruncatesRequired(t *testing.T) {
	f := newFixture(t)
	f.product(t, "vela", 0)
	f.material(t, "cera", "Cera", "g", "kg", 1, 1)
	f.line(t, "vela", "l1", "cera", "Cera", "1.5", "g")

	_, err := f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{ProductID: "vela", Units: units("1")})
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.stockOfMaterial(t, "cera"))
}

func TestManufacture_AbortsWithAllReasons(t *testing.T) {
	f := newFixture(t)
	f.product(t, "pan", 2)
	f.material(t, "harina", "Harina", "g", "kg", 1000, 500)
	f.material(t, "agua", "Agua", "ml", "l", 1000, 100000)
	f.material(t, "sal", "Sal", "g", "kg", 1000, 1)
	f.line(t, "pan", "l1", "harina", "Harina", "1", "kg")
	f.line(t, "pan", "l2", "agua", "Agua", "1", "l")
	f.line(t, "pan", "l3", "borrado", "Levadura", "10", "g")
	f.line(t, "pan", "l4", "sal", "Sal", "5", "g")

	_, err := f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{ProductID: "pan", Units: units("1")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFabricationAborted)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.ErrorIs(t, err, domain.ErrMaterialNotFound)

	var aborted *domainfab.AbortedError
	require.True(t, errors.As(err, &aborted))
	assert.Equal(t, []string{
		"Harina: requiere 1000 g, hay 500 g",
		"Insumo inexistente: Levadura",
		"Sal: requiere 5 g, hay 1 g",
	}, aborted.Messages())

	// nada cambió, ni siquiera el insumo con stock suficiente
	assert.Equal(t, int64(2), f.stockOfProduct(t, "pan"))
	assert.Equal(t, int64(500), f.stockOfMaterial(t, "harina"))
	assert.Equal(t, int64(100000), f.stockOfMaterial(t, "agua"))
	assert.Equal(t, int64(1), f.stockOfMaterial(t, "sal"))
	assert.Empty(t, f.fabrications(t))
}

func TestManufacture_RepeatedMaterialLines(t *testing.T) {
	f := newFixture(t)
	f.product(t, "pan", 0)
	f.material(t, "harina", "Harina", "g", "kg", 1000, 1500)
	f.line(t, "pan", "l1", "harina", "Harina", "1", "kg")
	f.line(t, "pan", "l2", "harina", "Harina", "1", "kg")

	_, err := f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{ProductID: "pan", Units: units("1")})
	require.ErrorIs(t, err, domain.ErrFabricationAborted)
	assert.Equal(t, "Harina: requiere 1000 g, hay 500 g", err.Error())
	assert.Equal(t, int64(1500), f.stockOfMaterial(t, "harina"))

	f.material(t, "azucar", "Azúcar", "g", "kg", 1000, 3000)
	f.line(t, "torta", "t1", "azucar", "Azúcar", "1", "kg")
	f.line(t, "torta", "t2", "azucar", "Azúcar", "500", "g")
	f.product(t, "torta", 0)
	_, err = f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{ProductID: "torta", Units: units("2")})
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.stockOfMaterial(t, "azucar"))
}

func TestManufacture_SequentialRunsAccumulate(t *testing.T) {
	f := newFixture(t)
	f.product(t, "pan", 0)
	f.material(t, "harina", "Harina", "g", "kg", 1000, 10000)
	f.line(t, "pan", "l1", "harina", "Harina", "2", "kg")

	first, err := f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{ProductID: "pan", Units: units("1")})
	require.NoError(t, err)
	second, err := f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{ProductID: "pan", Units: units("2")})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, f.fabrications(t), 2)
	assert.Equal(t, int64(3), f.stockOfProduct(t, "pan"))
	assert.Equal(t, int64(4000), f.stockOfMaterial(t, "harina"))
}

func TestManufacture_ConcurrentRunsNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	f.product(t, "pan", 0)
	f.material(t, "harina", "Harina", "g", "kg", 1000, 10000)
	f.line(t, "pan", "l1", "harina", "Harina", "1", "kg")

	const workers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		aborted   int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{ProductID: "pan", Units: units("1")})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrFabricationAborted):
				aborted++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 10, aborted)
	assert.Equal(t, int64(0), f.stockOfMaterial(t, "harina"))
	assert.Equal(t, int64(10), f.stockOfProduct(t, "pan"))
	assert.Len(t, f.fabrications(t), 10)
}

func TestManufacture_RequirementBeyondInt64Aborts(t *testing.T) {
	f := newFixture(t)
	f.product(t, "pan", 0)
	f.material(t, "sal", "Sal", "g", "kg", 1000, 100)
	f.line(t, "pan", "l1", "sal", "Sal", "3", "g")

	_, err := f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{
		ProductID: "pan", Units: decimal.NewFromInt(1 << 62),
	})
	assert.ErrorIs(t, err, domain.ErrFabricationAborted)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, int64(100), f.stockOfMaterial(t, "sal"))
	assert.Equal(t, int64(0), f.stockOfProduct(t, "pan"))
	assert.Empty(t, f.fabrications(t))
}

func TestManufacture_ProductStockOverflowIsInvalidQuantity(t *testing.T) {
	f := newFixture(t)
	f.product(t, "pan", math.MaxInt64-1)
	f.material(t, "sal", "Sal", "g", "kg", 1000, 100)
	f.line(t, "pan", "l1", "sal", "Sal", "1", "g")

	_, err := f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{ProductID: "pan", Units: units("2")})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, int64(100), f.stockOfMaterial(t, "sal"))
	assert.Equal(t, int64(math.MaxInt64-1), f.stockOfProduct(t, "pan"))
	assert.Empty(t, f.fabrications(t))
}

func TestManufacture_UnitsBeyondInt64AreInvalid(t *testing.T) {
	f := newFixture(t)
	f.product(t, "pan", 0)
	f.material(t, "sal", "Sal", "g", "kg", 1000, 100)
	f.line(t, "pan", "l1", "sal", "Sal", "1", "g")

	_, err := f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{
		ProductID: "pan", Units: units("100000000000000000000000000000"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Zero(t, f.runner.calls.Load())
}

func TestManufacture_NamesWithoutSnapshot(t *testing.T) {
	f := newFixture(t)
	f.product(t, "pan", 0)
	f.material(t, "harina", "Harina", "g", "kg", 1000, 5000)
	f.line(t, "pan", "l1", "harina", "", "1", "kg")

	fab, err := f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{ProductID: "pan", Units: units("1")})
	require.NoError(t, err)
	require.Len(t, fab.MaterialsConsumed, 1)
	assert.Equal(t, "Harina", fab.MaterialsConsumed[0].Name)

	f.line(t, "pan", "l2", "borrado", "", "1", "g")
	_, err = f.uc.Manufacture(context.Background(), fabrication.ManufactureInput{ProductID: "pan", Units: units("1")})
	var aborted *domainfab.AbortedError
	require.True(t, errors.As(err, &aborted))
	assert.Equal(t, []string{"Insumo inexistente: borrado"}, aborted.Messages())
}

func TestManufacture_StorageConflictIsSurfaced(t *testing.T) {
	f := newFixture(t)
	f.product(t, "pan", 0)
	f.material(t, "harina", "Harina", "g", "kg", 1000, 5000)
	f.line(t, "pan", "l1", "harina", "Harina", "1", "kg")

	uc := fabrication.NewManufactureUseCase(conflictRunner{}, f.store.Recipes(), nil)
	_, err := uc.Manufacture(context.Background(), fabrication.ManufactureInput{ProductID: "pan", Units: units("1")})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStorageConflict)
	assert.NotErrorIs(t, err, domain.ErrFabricationAborted)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
}

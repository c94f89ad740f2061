package postgres_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/insumos-api/internal/application/fabrication"
	"github.com/jhoicas/insumos-api/internal/domain"
	"github.com/jhoicas/insumos-api/internal/domain/entity"
	"github.com/jhoicas/insumos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/insumos-api/migrations"
	"github.com/jhoicas/insumos-api/pkg/config"
	"github.com/jhoicas/insumos-api/pkg/migrator"
)

// openTestPool conecta a TEST_DATABASE_URL y aplica las migraciones. Sin la variable el test se omite.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL no definida")
	}
	require.NoError(t, migrator.RunMigrations(dbURL, migrations.FS))

	pool, err := postgres.NewPool(context.Background(), config.DBConfig{DatabaseURL: dbURL})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

// seed crea un producto con una receta de un insumo y devuelve sus IDs.
func seed(t *testing.T, pool *pgxpool.Pool, materialStock int64) (productID, materialID string) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()
	suffix := uuid.NewString()[:8]
	productID = "prod-" + suffix
	materialID = uuid.NewString()

	require.NoError(t, postgres.NewProductRepository(pool).Create(ctx, &entity.Product{
		ID: productID, Code: productID, Name: "Pan " + suffix, Location: "A1",
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, postgres.NewMaterialRepository(pool).Create(ctx, &entity.Material{
		ID: materialID, Code: "har-" + suffix, Name: "Harina", Unit: "g", MajorUnit: "kg",
		ConversionFactor: decimal.NewFromInt(1000), Stock: materialStock,
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, postgres.NewRecipeRepository(pool).AddLine(ctx, &entity.RecipeLine{
		ID: uuid.NewString(), ProductID: productID, MaterialID: materialID,
		Quantity: decimal.RequireFromString("0.5"), Unit: "KG", MaterialNameSnapshot: "Harina",
		CreatedAt: now,
	}))
	return productID, materialID
}

func TestIntegration_ManufactureCommitsEverything(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	productID, materialID := seed(t, pool, 2000)

	uc := fabrication.NewManufactureUseCase(postgres.NewTxRunner(pool), postgres.NewRecipeRepository(pool), nil)
	fab, err := uc.Manufacture(ctx, fabrication.ManufactureInput{
		ProductID: productID, Units: decimal.NewFromInt(3), UserEmail: "op@test.local",
	})
	require.NoError(t, err)

	m, err := postgres.NewMaterialRepository(pool).GetByID(ctx, materialID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), m.Stock)

	p, err := postgres.NewProductRepository(pool).GetByID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.CurrentStock)

	stored, err := postgres.NewFabricationRepository(pool).GetByID(ctx, fab.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.MaterialsConsumed, 1)
	assert.True(t, decimal.RequireFromString("1.5").Equal(stored.MaterialsConsumed[0].Quantity))
	assert.Equal(t, "op@test.local", stored.UserEmail)
}

func TestIntegration_ManufactureAbortLeavesNoTrace(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	productID, materialID := seed(t, pool, 400)

	uc := fabrication.NewManufactureUseCase(postgres.NewTxRunner(pool), postgres.NewRecipeRepository(pool), nil)
	_, err := uc.Manufacture(ctx, fabrication.ManufactureInput{ProductID: productID, Units: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, domain.ErrFabricationAborted)

	m, err := postgres.NewMaterialRepository(pool).GetByID(ctx, materialID)
	require.NoError(t, err)
	assert.Equal(t, int64(400), m.Stock)

	list, err := postgres.NewFabricationRepository(pool).ListByProduct(ctx, productID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestIntegration_ConcurrentManufactureNeverOverdraws(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	productID, materialID := seed(t, pool, 2000)

	runner := postgres.NewTxRunner(pool, postgres.WithRetry(50, 2*time.Millisecond))
	uc := fabrication.NewManufactureUseCase(runner, postgres.NewRecipeRepository(pool), nil)

	const workers = 8
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Manufacture(ctx, fabrication.ManufactureInput{ProductID: productID, Units: decimal.NewFromInt(1)})
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// 2000 g alcanzan para 4 unidades de 500 g.
	assert.Equal(t, 4, ok)
	m, err := postgres.NewMaterialRepository(pool).GetByID(ctx, materialID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), m.Stock)
	p, err := postgres.NewProductRepository(pool).GetByID(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), p.CurrentStock)
}

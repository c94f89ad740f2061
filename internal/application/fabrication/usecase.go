package fabrication

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/insumos-api/internal/domain"
	"github.com/jhoicas/insumos-api/internal/domain/entity"
	domainfab "github.com/jhoicas/insumos-api/internal/domain/fabrication"
	"github.com/jhoicas/insumos-api/internal/domain/repository"
	"github.com/jhoicas/insumos-api/pkg/logger"
	"github.com/jhoicas/insumos-api/pkg/metrics"
)

// ManufactureUseCase motor de fabricación: descuenta insumos según receta, suma stock
// al producto terminado y deja un registro de auditoría, todo en una única transacción.
type ManufactureUseCase struct {
	txRunner   TxRunner
	recipeRepo repository.RecipeRepository
	log        *logger.Logger
	now        func() time.Time
}

// NewManufactureUseCase construye el caso de uso.
func NewManufactureUseCase(txRunner TxRunner, recipeRepo repository.RecipeRepository, log *logger.Logger) *ManufactureUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ManufactureUseCase{
		txRunner:   txRunner,
		recipeRepo: recipeRepo,
		log:        log,
		now:        time.Now,
	}
}

// ManufactureInput entrada de una fabricación. Units debe ser un entero positivo.
type ManufactureInput struct {
	ProductID string
	Units     decimal.Decimal
	UserEmail string
}

// stockUpdate descuento de insumo calculado en la fase de lectura, escrito después.
type stockUpdate struct {
	materialID string
	newStock   int64
}

// Manufacture fabrica Units unidades del producto.
//
// La receta se lee fuera de la transacción. Dentro de ella primero se leen el producto y
// todos los insumos, se validan todas las líneas acumulando los problemas y, solo si no hay
// ninguno, se escriben los descuentos, el incremento de stock del producto y el registro.
func (uc *ManufactureUseCase) Manufacture(ctx context.Context, in ManufactureInput) (*entity.Fabrication, error) {
	units, err := unitsToManufacture(in.Units)
	if err != nil {
		metrics.ObserveFabrication(metrics.ResultInvalid)
		return nil, err
	}

	recipe, err := uc.recipeRepo.GetRecipe(ctx, in.ProductID)
	if err != nil {
		metrics.ObserveFabrication(metrics.ResultError)
		return nil, err
	}
	if len(recipe) == 0 {
		metrics.ObserveFabrication(metrics.ResultInvalid)
		return nil, domain.ErrNoRecipeAssigned
	}

	user := in.UserEmail
	if user == "" {
		user = entity.AnonymousUser
	}

	var result *entity.Fabrication
	err = uc.txRunner.RunFabrication(ctx, func(
		productRepo repository.ProductRepository,
		materialRepo repository.MaterialRepository,
		fabricationRepo repository.FabricationRepository,
	) error {
		// 1) Lecturas: producto
		product, err := productRepo.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}
		if units > math.MaxInt64-product.CurrentStock {
			return domain.ErrInvalidQuantity
		}

		// 1b) Lecturas: todos los insumos de la receta
		var failures domainfab.Failures
		updates := make([]stockUpdate, 0, len(recipe))
		staged := make(map[string]int, len(recipe)) // materialID -> índice en updates
		materials := make(map[string]*entity.Material, len(recipe))
		names := make([]string, len(recipe))

		for i, line := range recipe {
			material, seen := materials[line.MaterialID]
			if !seen {
				material, err = materialRepo.GetForUpdate(ctx, line.MaterialID)
				if err != nil {
					return err
				}
				materials[line.MaterialID] = material
			}
			names[i] = line.DisplayName()
			if material == nil {
				failures.MaterialNotFound(line.MaterialID, names[i])
				continue
			}
			if line.MaterialNameSnapshot == "" && material.Name != "" {
				names[i] = material.Name
			}

			// fits=false: el requerido excede int64 y por lo tanto cualquier stock
			required, fits := domainfab.RequiredMinorUnits(material, line, units)
			available := material.Stock
			idx, pending := staged[material.ID]
			if pending {
				available = updates[idx].newStock
			}
			if !fits || available < required {
				failures.InsufficientStock(material.ID, names[i], required, available, material.Unit)
				continue
			}

			if pending {
				updates[idx].newStock = available - required
			} else {
				staged[material.ID] = len(updates)
				updates = append(updates, stockUpdate{materialID: material.ID, newStock: available - required})
			}
		}

		// Si falla alguna validación se aborta sin escribir
		if err := failures.Err(); err != nil {
			return err
		}

		// 2) Escrituras
		for _, u := range updates {
			if err := materialRepo.UpdateStock(ctx, u.materialID, u.newStock); err != nil {
				return err
			}
		}
		if err := productRepo.UpdateStock(ctx, product.ID, product.CurrentStock+units); err != nil {
			return err
		}

		consumed := make([]entity.ConsumedMaterial, 0, len(recipe))
		for i, line := range recipe {
			consumed = append(consumed, entity.ConsumedMaterial{
				Name:     names[i],
				Quantity: domainfab.DeclaredConsumption(line, units),
				Unit:     line.Unit,
			})
		}
		fab := &entity.Fabrication{
			ID:                uuid.New().String(),
			ProductID:         product.ID,
			ProductName:       product.Name,
			Quantity:          units,
			MaterialsConsumed: consumed,
			Date:              uc.now(),
			UserEmail:         user,
		}
		if err := fabricationRepo.Create(ctx, fab); err != nil {
			return err
		}
		result = fab
		return nil
	})
	if err != nil {
		uc.observeFailure(in.ProductID, units, user, err)
		return nil, err
	}

	metrics.ObserveFabrication(metrics.ResultOK)
	uc.log.Info().
		Str("fabrication_id", result.ID).
		Str("product_id", result.ProductID).
		Int64("units", units).
		Str("user", user).
		Msg("fabricación registrada")
	return result, nil
}

func (uc *ManufactureUseCase) observeFailure(productID string, units int64, user string, err error) {
	switch {
	case errors.Is(err, domain.ErrFabricationAborted):
		metrics.ObserveFabrication(metrics.ResultAborted)
		uc.log.Warn().Str("product_id", productID).Int64("units", units).Str("user", user).
			Str("reasons", err.Error()).Msg("fabricación abortada")
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrInvalidQuantity):
		metrics.ObserveFabrication(metrics.ResultInvalid)
	case errors.Is(err, domain.ErrStorageConflict):
		metrics.ObserveFabrication(metrics.ResultConflict)
		uc.log.Warn().Err(err).Str("product_id", productID).Msg("fabricación en conflicto de concurrencia")
	default:
		metrics.ObserveFabrication(metrics.ResultError)
		uc.log.Error().Err(err).Str("product_id", productID).Msg("fabricación fallida")
	}
}

// unitsToManufacture valida que la cantidad sea un entero positivo representable.
func unitsToManufacture(q decimal.Decimal) (int64, error) {
	if q.Sign() <= 0 || q.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, domain.ErrInvalidQuantity
	}
	n := q.IntPart()
	if !q.Equal(decimal.NewFromInt(n)) {
		return 0, domain.ErrInvalidQuantity
	}
	return n, nil
}

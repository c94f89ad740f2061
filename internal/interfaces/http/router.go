package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/insumos-api/internal/application/fabrication"
	"github.com/jhoicas/insumos-api/internal/application/inventory"
	"github.com/jhoicas/insumos-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC        *usecase.ProductUseCase
	MaterialUC       *usecase.MaterialUseCase
	RecipeUC         *usecase.RecipeUseCase
	RegisterMovement *inventory.RegisterMovementUseCase
	Manufacture      *fabrication.ManufactureUseCase
	History          *fabrication.HistoryUseCase
	JWTSecret        string
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(RoleAdmin)

	fabricationHandler := NewFabricationHandler(deps.Manufacture, deps.History)
	productHandler := NewProductHandler(deps.ProductUC)
	recipeHandler := NewRecipeHandler(deps.RecipeUC)
	materialHandler := NewMaterialHandler(deps.MaterialUC)
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement)

	// Fabricación
	fabrications := protected.Group("/fabrications")
	fabrications.Post("/", fabricationHandler.Manufacture)
	fabrications.Get("/", fabricationHandler.List)
	fabrications.Get("/:id", fabricationHandler.GetByID)

	// Productos y recetas
	products := protected.Group("/products")
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)
	products.Get("/:id/fabrications", fabricationHandler.ListByProduct)
	products.Get("/:id/recipe", recipeHandler.Get)
	products.Post("/:id/recipe", recipeHandler.AddLine)
	products.Delete("/:id/recipe/:lineId", recipeHandler.RemoveLine)

	// Insumos
	materials := protected.Group("/materials")
	materials.Post("/", materialHandler.Create)
	materials.Get("/", materialHandler.List)
	materials.Post("/bulk-delete", adminOnly, materialHandler.BulkDelete)
	materials.Get("/:id", materialHandler.GetByID)
	materials.Put("/:id", materialHandler.Update)
	materials.Delete("/:id", adminOnly, materialHandler.Delete)

	// Movimientos
	invGroup := protected.Group("/inventory")
	invGroup.Post("/movements", inventoryHandler.RegisterMovement)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
}

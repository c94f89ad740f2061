package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrProductHasMovements = errors.New("el producto tiene movimientos registrados")

	// Fabricación.
	ErrInvalidQuantity    = errors.New("la cantidad debe ser un entero mayor a cero")
	ErrNoRecipeAssigned   = errors.New("este producto no tiene receta asignada")
	ErrProductNotFound    = errors.New("producto inexistente")
	ErrMaterialNotFound   = errors.New("insumo inexistente")
	ErrFabricationAborted = errors.New("fabricación abortada")

	// ErrStorageConflict conflicto transitorio de concurrencia en el almacenamiento; reintentable.
	ErrStorageConflict = errors.New("conflicto de concurrencia en el almacenamiento")
	// ErrReadAfterWrite una unidad de trabajo intentó leer después de escribir.
	ErrReadAfterWrite = errors.New("lectura después de escritura en la transacción")
)

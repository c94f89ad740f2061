package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnonymousUser usuario registrado cuando no se conoce la identidad.
const AnonymousUser = "anónimo"

// ConsumedMaterial línea de auditoría: cantidad declarada en la receta por las unidades fabricadas.
type ConsumedMaterial struct {
	Name     string          `json:"nombre"`
	Quantity decimal.Decimal `json:"cantidad"`
	Unit     string          `json:"unidad"`
}

// Fabrication registro inmutable de una fabricación exitosa.
type Fabrication struct {
	ID                string
	ProductID         string
	ProductName       string
	Quantity          int64
	MaterialsConsumed []ConsumedMaterial
	Date              time.Time
	UserEmail         string
}
